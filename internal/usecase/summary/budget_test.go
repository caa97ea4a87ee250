package summary

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecluster/internal/domain"
)

type mockBudgetStore struct {
	mu     sync.Mutex
	data   map[string]int64
	getErr error
	incErr error
}

func newMockBudgetStore() *mockBudgetStore {
	return &mockBudgetStore{data: make(map[string]int64)}
}

func (m *mockBudgetStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incErr != nil {
		return m.incErr
	}
	m.data[key] += val
	return nil
}

func (m *mockBudgetStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

func TestBudget_UnlimitedAlwaysPasses(t *testing.T) {
	bt := NewBudgetTracker("openai", 0, 0, BudgetActionReject, zap.NewNop())
	bt.Record(1_000_000)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bt.RemainingDaily() != -1 || bt.RemainingMonthly() != -1 {
		t.Errorf("unlimited budget should report -1, got %d/%d", bt.RemainingDaily(), bt.RemainingMonthly())
	}
}

func TestBudget_RejectWhenDailyExceeded(t *testing.T) {
	bt := NewBudgetTracker("openai", 100, 0, BudgetActionReject, zap.NewNop())
	bt.Record(60)
	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("under limit: %v", err)
	}
	bt.Record(40)

	err := bt.Check(context.Background())
	if !errors.Is(err, domain.ErrSummaryQuotaExceeded) {
		t.Fatalf("expected ErrSummaryQuotaExceeded, got %v", err)
	}
	if bt.RemainingDaily() != 0 {
		t.Errorf("remaining daily = %d, want 0", bt.RemainingDaily())
	}
}

func TestBudget_RejectWhenMonthlyExceeded(t *testing.T) {
	bt := NewBudgetTracker("openai", 0, 50, BudgetActionReject, zap.NewNop())
	bt.Record(75)

	if err := bt.Check(context.Background()); !errors.Is(err, domain.ErrSummaryQuotaExceeded) {
		t.Fatalf("expected ErrSummaryQuotaExceeded, got %v", err)
	}
}

func TestBudget_WarnLetsCallsThrough(t *testing.T) {
	bt := NewBudgetTracker("openai", 10, 10, BudgetActionWarn, zap.NewNop())
	bt.Record(20)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("warn action must not fail: %v", err)
	}
}

func TestBudget_DailyRollover(t *testing.T) {
	now := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
	bt := NewBudgetTracker("openai", 100, 1000, BudgetActionReject, zap.NewNop())
	bt.now = func() time.Time { return now }
	bt.lastDayReset = truncateToDay(now)
	bt.lastMonthReset = truncateToMonth(now)

	bt.Record(100)
	if err := bt.Check(context.Background()); err == nil {
		t.Fatal("expected rejection before rollover")
	}

	now = now.Add(2 * time.Hour)
	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected pass after day rollover: %v", err)
	}
	if bt.DailyUsed() != 0 {
		t.Errorf("daily used = %d, want 0", bt.DailyUsed())
	}
	if bt.MonthlyUsed() != 100 {
		t.Errorf("monthly used = %d, want 100", bt.MonthlyUsed())
	}
}

func TestBudget_PersistsToStore(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("openai", 0, 0, BudgetActionWarn, zap.NewNop()).
		WithStore(context.Background(), store)

	bt.Record(42)
	bt.Record(8)

	now := bt.now()
	if got := store.data[bt.dailyKey(now)]; got != 50 {
		t.Errorf("daily key = %d, want 50", got)
	}
	if got := store.data[bt.monthlyKey(now)]; got != 50 {
		t.Errorf("monthly key = %d, want 50", got)
	}
}

func TestBudget_LoadsFromStore(t *testing.T) {
	store := newMockBudgetStore()
	probe := NewBudgetTracker("openai", 0, 0, BudgetActionWarn, zap.NewNop())
	now := probe.now()
	store.data[probe.dailyKey(now)] = 70
	store.data[probe.monthlyKey(now)] = 300

	bt := NewBudgetTracker("openai", 100, 0, BudgetActionReject, zap.NewNop()).
		WithStore(context.Background(), store)

	if bt.DailyUsed() != 70 || bt.MonthlyUsed() != 300 {
		t.Fatalf("loaded %d/%d, want 70/300", bt.DailyUsed(), bt.MonthlyUsed())
	}
	if bt.RemainingDaily() != 30 {
		t.Errorf("remaining daily = %d, want 30", bt.RemainingDaily())
	}
}

func TestBudget_StoreErrorsAreNotFatal(t *testing.T) {
	store := newMockBudgetStore()
	store.getErr = errors.New("connection refused")
	store.incErr = errors.New("connection refused")

	bt := NewBudgetTracker("openai", 100, 0, BudgetActionReject, zap.NewNop()).
		WithStore(context.Background(), store)
	bt.Record(10)

	if bt.DailyUsed() != 10 {
		t.Errorf("in-memory counter should still advance, got %d", bt.DailyUsed())
	}
	if err := bt.Check(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBudget_KeyFormat(t *testing.T) {
	bt := NewBudgetTracker("openai", 0, 0, BudgetActionWarn, zap.NewNop())
	ts := time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)

	if got, want := bt.dailyKey(ts), "vecluster:budget:openai:daily:2026-02-05"; got != want {
		t.Errorf("daily key = %q, want %q", got, want)
	}
	if got, want := bt.monthlyKey(ts), "vecluster:budget:openai:monthly:2026-02"; got != want {
		t.Errorf("monthly key = %q, want %q", got, want)
	}

	bt.WithKeyPrefix("staging:")
	if got, want := bt.dailyKey(ts), "staging:budget:openai:daily:2026-02-05"; got != want {
		t.Errorf("prefixed daily key = %q, want %q", got, want)
	}
}

func TestBudget_ConcurrentRecord(t *testing.T) {
	bt := NewBudgetTracker("openai", 0, 0, BudgetActionWarn, zap.NewNop())

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bt.Record(2)
		}()
	}
	wg.Wait()

	if bt.DailyUsed() != 100 {
		t.Errorf("daily used = %d, want 100", bt.DailyUsed())
	}
}
