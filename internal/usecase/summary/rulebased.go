package summary

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/kailas-cloud/vecluster/internal/domain"
)

const (
	keywordMinLength = 4
	keywordCount     = 3
)

// NeutralSummary is returned when the text carries no usable keyword.
const NeutralSummary = "These responses do not share a dominant theme. " +
	"Reviewing them individually may reveal more specific needs."

type theme struct {
	name     string
	keywords []string
	summary  string
}

// themes are matched in order; the first hit wins.
var themes = []theme{
	{
		name:     "trust_safety",
		keywords: []string{"background check", "trust", "safety", "safe", "verified", "vetted", "reliable"},
		summary: "Users struggle to trust caregivers they have not met and worry about safety. " +
			"Verified background checks and visible references are an opportunity to build confidence.",
	},
	{
		name:     "communication",
		keywords: []string{"communication", "communicate", "update", "message", "respond", "informed", "in touch"},
		summary: "Users feel out of the loop when they do not hear back during the day. " +
			"Built-in messaging with regular updates is an opportunity to keep them informed.",
	},
	{
		name:     "scheduling",
		keywords: []string{"schedule", "scheduling", "availability", "available", "booking", "last minute", "calendar", "flexible"},
		summary: "Users find it hard to line up availability and last-minute changes break their plans. " +
			"Flexible booking with shared calendars is an opportunity to reduce scheduling friction.",
	},
	{
		name:     "cost",
		keywords: []string{"cost", "price", "pricing", "expensive", "afford", "fees", "budget", "cheap"},
		summary: "Users consider the current pricing too high and are surprised by extra fees. " +
			"Transparent pricing and flexible plans are an opportunity to win cost-sensitive customers.",
	},
}

var wordPattern = regexp.MustCompile(`\w+`)

// RuleBasedSummarizer labels a cluster from keyword rules.
// It performs no I/O and never fails.
type RuleBasedSummarizer struct{}

// NewRuleBasedSummarizer creates the keyword tier.
func NewRuleBasedSummarizer() *RuleBasedSummarizer {
	return &RuleBasedSummarizer{}
}

// Summarize implements domain.Summarizer.
func (RuleBasedSummarizer) Summarize(_ context.Context, texts []string) (domain.Summary, error) {
	return domain.Summary{
		Text:   Describe(texts),
		Source: domain.SourceRuleBased,
	}, nil
}

// Describe returns the keyword summary for texts.
func Describe(texts []string) string {
	text := strings.ToLower(strings.Join(texts, " "))

	if t, ok := matchTheme(text); ok {
		return t.summary
	}

	words := topWords(text, keywordCount)
	if len(words) == 0 {
		return NeutralSummary
	}
	return "Participants repeatedly bring up " + joinWords(words) + ", which points to a shared pain point. " +
		"Addressing these topics directly is an opportunity to improve their experience."
}

// ThemeOf returns the name of the first theme matching texts, or "".
func ThemeOf(texts []string) string {
	t, ok := matchTheme(strings.ToLower(strings.Join(texts, " ")))
	if !ok {
		return ""
	}
	return t.name
}

func matchTheme(text string) (theme, bool) {
	for _, t := range themes {
		for _, kw := range t.keywords {
			if strings.Contains(text, kw) {
				return t, true
			}
		}
	}
	return theme{}, false
}

// topWords returns the n most frequent words of at least keywordMinLength
// runes. Equal counts keep first-occurrence order.
func topWords(text string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, w := range wordPattern.FindAllString(text, -1) {
		if len([]rune(w)) < keywordMinLength {
			continue
		}
		if _, seen := counts[w]; !seen {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

func joinWords(words []string) string {
	switch len(words) {
	case 1:
		return words[0]
	case 2:
		return words[0] + " and " + words[1]
	default:
		return strings.Join(words[:len(words)-1], ", ") + ", and " + words[len(words)-1]
	}
}
