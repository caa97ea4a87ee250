// Package vecluster groups free-text notes into themed clusters.
//
// Texts are turned into term-frequency vectors over a shared vocabulary and
// partitioned with deterministic k-means. Every cluster carries a cohesion
// score and a two-sentence summary. Summaries come from an OpenAI-compatible
// chat completion API when one is configured and from keyword rules otherwise;
// a remote failure never fails the call.
//
//	client, _ := vecluster.New(
//	    vecluster.WithOpenAI(os.Getenv("OPENAI_API_KEY"), "gpt-4o-mini"),
//	    vecluster.WithSummaryTimeout(5*time.Second),
//	)
//	res, _ := client.ClusterTexts(ctx, notes, 0)
//	for _, c := range res.Clusters {
//	    fmt.Println(c.ID, c.SimilarityScore, c.Summary)
//	}
//
// Without WithOpenAI or WithSummarizer the client works offline with
// rule-based summaries only.
package vecluster
