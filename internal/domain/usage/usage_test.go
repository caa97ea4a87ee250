package usage

import "testing"

func TestNewReport(t *testing.T) {
	b := NewBudget(1000000, 615800, false, 1700000000000)
	r := NewReport(PeriodMonth, 1700000000, 1702600000, "openai", 384200, b)

	if r.Period() != PeriodMonth {
		t.Errorf("Period() = %q", r.Period())
	}
	if r.PeriodStart() != 1700000000 {
		t.Errorf("PeriodStart() = %d", r.PeriodStart())
	}
	if r.PeriodEnd() != 1702600000 {
		t.Errorf("PeriodEnd() = %d", r.PeriodEnd())
	}
	if r.Provider() != "openai" {
		t.Errorf("Provider() = %q", r.Provider())
	}
	if r.Tokens() != 384200 {
		t.Errorf("Tokens() = %d", r.Tokens())
	}
	if r.Budget().TokensLimit() != 1000000 {
		t.Errorf("Budget().TokensLimit() = %d", r.Budget().TokensLimit())
	}
	if r.Budget().TokensRemaining() != 615800 {
		t.Errorf("Budget().TokensRemaining() = %d", r.Budget().TokensRemaining())
	}
	if r.Budget().IsExhausted() {
		t.Error("Budget().IsExhausted() = true")
	}
	if r.Budget().ResetsAt() != 1700000000000 {
		t.Errorf("Budget().ResetsAt() = %d", r.Budget().ResetsAt())
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
		ok   bool
	}{
		{"", PeriodMonth, true},
		{"day", PeriodDay, true},
		{"month", PeriodMonth, true},
		{"total", PeriodTotal, true},
		{"week", "", false},
	}
	for _, tc := range tests {
		got, ok := ParsePeriod(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParsePeriod(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
