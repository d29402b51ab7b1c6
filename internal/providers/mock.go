package providers

import (
	"context"
	"time"

	"github.com/iconiconii/FxxkLc-sub005/internal/candidates"
)

// MockProvider returns the first opts.Limit candidates with neutral scores.
// Used in tests and local development in place of a real LLM call.
type MockProvider struct {
	ProviderName string
	Strategy     string
}

// NewMockProvider constructs a MockProvider; an empty name defaults to
// "mock", and the strategy is always "mock".
func NewMockProvider(name string) *MockProvider {
	if name == "" {
		name = "mock"
	}
	return &MockProvider{ProviderName: name, Strategy: "mock"}
}

func (m *MockProvider) Name() string { return m.ProviderName }

func (m *MockProvider) Rank(ctx context.Context, cands []candidates.ProblemCandidate, opts RankOptions) (RankResult, error) {
	start := time.Now()
	select {
	case <-ctx.Done():
		return RankResult{Success: false, Error: ErrTimeout, Provider: m.ProviderName}, ctx.Err()
	default:
	}

	limit := opts.Limit
	if limit <= 0 || limit > len(cands) {
		limit = len(cands)
	}
	items := make([]RankedItem, 0, limit)
	for i := 0; i < limit; i++ {
		items = append(items, RankedItem{
			ProblemID:  cands[i].ProblemID,
			Reason:     "candidate surfaced by FSRS urgency ranking",
			Confidence: 0.5,
			Score:      0.5,
			Strategy:   m.Strategy,
		})
	}
	if len(items) == 0 {
		return RankResult{Success: false, Error: ErrOther, Provider: m.ProviderName, LatencyMs: time.Since(start).Milliseconds()}, nil
	}
	return RankResult{
		Success:   true,
		Model:     m.ProviderName,
		Items:     items,
		LatencyMs: time.Since(start).Milliseconds(),
		Provider:  m.ProviderName,
	}, nil
}
