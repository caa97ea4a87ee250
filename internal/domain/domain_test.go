package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestValidationError_UnwrapsToInvalidInput(t *testing.T) {
	err := NewValidationError("data_points", "must be a non-empty array")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err.Error() != "data_points: must be a non-empty array" {
		t.Errorf("Error() = %q", err.Error())
	}

	wrapped := fmt.Errorf("parse request: %w", err)
	var ve *ValidationError
	if !errors.As(wrapped, &ve) {
		t.Fatal("expected errors.As to find ValidationError")
	}
	if ve.Field != "data_points" {
		t.Errorf("Field = %q", ve.Field)
	}
}

func TestValidationError_NoField(t *testing.T) {
	err := NewValidationError("", "request body is empty")
	if err.Error() != "request body is empty" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIsExternal(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrSummarizerUnavailable, true},
		{fmt.Errorf("chat: %w", ErrSummarizerProviderError), true},
		{ErrSummaryQuotaExceeded, true},
		{ErrInvalidInput, false},
		{errors.New("boom"), false},
	}
	for _, tc := range tests {
		if got := IsExternal(tc.err); got != tc.want {
			t.Errorf("IsExternal(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestSummaryUsage_RecordConcurrent(t *testing.T) {
	ctx, usage := NewContextWithUsage(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := SourceRemote
			if i%2 == 0 {
				src = SourceRuleBased
			}
			UsageFromContext(ctx).Record(Summary{Text: "x", Source: src, TotalTokens: 3})
		}(i)
	}
	wg.Wait()

	if usage.TotalTokens() != 30 {
		t.Errorf("TotalTokens() = %d, want 30", usage.TotalTokens())
	}
	if usage.Remote() != 5 || usage.Fallbacks() != 5 {
		t.Errorf("Remote() = %d, Fallbacks() = %d, want 5/5", usage.Remote(), usage.Fallbacks())
	}
}

func TestSummaryUsage_NilSafe(t *testing.T) {
	u := UsageFromContext(context.Background())
	if u != nil {
		t.Fatal("expected nil usage without collector")
	}
	u.Record(Summary{TotalTokens: 10})
	if u.TotalTokens() != 0 || u.Fallbacks() != 0 || u.Remote() != 0 {
		t.Error("nil usage should report zeros")
	}
}
