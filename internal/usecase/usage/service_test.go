package usage

import (
	"context"
	"testing"
	"time"

	domusage "github.com/kailas-cloud/vecluster/internal/domain/usage"
)

// --- Mock ---

type mockBudgetReader struct {
	dailyLimit       int64
	monthlyLimit     int64
	dailyUsed        int64
	monthlyUsed      int64
	remainingDaily   int64
	remainingMonthly int64
}

func (m *mockBudgetReader) Provider() string        { return "openai" }
func (m *mockBudgetReader) DailyLimit() int64       { return m.dailyLimit }
func (m *mockBudgetReader) MonthlyLimit() int64     { return m.monthlyLimit }
func (m *mockBudgetReader) DailyUsed() int64        { return m.dailyUsed }
func (m *mockBudgetReader) MonthlyUsed() int64      { return m.monthlyUsed }
func (m *mockBudgetReader) RemainingDaily() int64   { return m.remainingDaily }
func (m *mockBudgetReader) RemainingMonthly() int64 { return m.remainingMonthly }

var fixedNow = time.Date(2026, 2, 14, 15, 30, 0, 0, time.UTC)

func newTestService(br BudgetReader) *Service {
	s := New(br)
	s.now = func() time.Time { return fixedNow }
	return s
}

// --- Tests ---

func TestGetReport_DailyPeriod(t *testing.T) {
	br := &mockBudgetReader{
		dailyLimit:       10000,
		dailyUsed:        3000,
		remainingDaily:   7000,
		monthlyLimit:     100000,
		monthlyUsed:      50000,
		remainingMonthly: 50000,
	}
	r := newTestService(br).GetReport(context.Background(), domusage.PeriodDay)

	if r.Period() != domusage.PeriodDay {
		t.Errorf("expected period %q, got %q", domusage.PeriodDay, r.Period())
	}
	dayStart := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart() != dayStart.UnixMilli() {
		t.Errorf("expected period start %d, got %d", dayStart.UnixMilli(), r.PeriodStart())
	}
	if r.PeriodEnd() != dayStart.Add(24*time.Hour).UnixMilli() {
		t.Errorf("unexpected period end %d", r.PeriodEnd())
	}
	if r.Budget().TokensLimit() != 10000 || r.Budget().TokensRemaining() != 7000 {
		t.Errorf("unexpected budget %+v", r.Budget())
	}
	if r.Budget().IsExhausted() {
		t.Error("budget should not be exhausted")
	}
	if r.Tokens() != 3000 {
		t.Errorf("expected tokens 3000, got %d", r.Tokens())
	}
	if r.Provider() != "openai" {
		t.Errorf("expected provider openai, got %q", r.Provider())
	}
}

func TestGetReport_MonthlyPeriod(t *testing.T) {
	br := &mockBudgetReader{
		monthlyLimit:     100000,
		monthlyUsed:      100000,
		remainingMonthly: 0,
	}
	r := newTestService(br).GetReport(context.Background(), domusage.PeriodMonth)

	monthStart := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart() != monthStart.UnixMilli() {
		t.Errorf("expected period start %d, got %d", monthStart.UnixMilli(), r.PeriodStart())
	}
	if r.PeriodEnd() != time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli() {
		t.Errorf("unexpected period end %d", r.PeriodEnd())
	}
	if !r.Budget().IsExhausted() {
		t.Error("budget should be exhausted")
	}
	if r.Budget().ResetsAt() != r.PeriodEnd() {
		t.Errorf("resets at %d, want period end", r.Budget().ResetsAt())
	}
}

func TestGetReport_TotalPeriod(t *testing.T) {
	br := &mockBudgetReader{monthlyUsed: 1234, remainingMonthly: -1}
	r := newTestService(br).GetReport(context.Background(), domusage.PeriodTotal)

	if r.PeriodStart() != 0 || r.PeriodEnd() != 0 {
		t.Errorf("total period has no bounds, got %d..%d", r.PeriodStart(), r.PeriodEnd())
	}
	if r.Tokens() != 1234 {
		t.Errorf("expected tokens 1234, got %d", r.Tokens())
	}
	if r.Budget().IsExhausted() {
		t.Error("unlimited budget is never exhausted")
	}
}

func TestGetReport_NilBudgetReader(t *testing.T) {
	r := newTestService(nil).GetReport(context.Background(), domusage.PeriodDay)

	if r.Budget().TokensLimit() != 0 || r.Budget().TokensRemaining() != -1 {
		t.Errorf("unexpected budget %+v", r.Budget())
	}
	if r.Tokens() != 0 || r.Provider() != "" {
		t.Errorf("unexpected report tokens=%d provider=%q", r.Tokens(), r.Provider())
	}
}
