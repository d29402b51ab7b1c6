package providers

import (
	"context"

	"github.com/iconiconii/FxxkLc-sub005/internal/candidates"
)

// Strategy values a DefaultProvider signals, mirroring the
// `llm.defaultProvider.strategy` deployment configuration.
const (
	StrategyFSRSFallback = "fsrs_fallback"
	StrategyBusyMessage  = "busy_message"
)

// DefaultProvider is the terminal, always-present chain node. It never
// succeeds; its only purpose is to carry a strategy string (via the
// RankResult's Error field, reusing ErrorClass as a free-form string slot)
// telling the recommendation service which fallback to apply.
type DefaultProvider struct {
	Strategy string
}

// NewDefaultProvider constructs a DefaultProvider with the configured
// fallback strategy. An unrecognized strategy is treated as fsrs_fallback.
func NewDefaultProvider(strategy string) *DefaultProvider {
	if strategy != StrategyFSRSFallback && strategy != StrategyBusyMessage {
		strategy = StrategyFSRSFallback
	}
	return &DefaultProvider{Strategy: strategy}
}

func (d *DefaultProvider) Name() string { return "default" }

func (d *DefaultProvider) Rank(ctx context.Context, cands []candidates.ProblemCandidate, opts RankOptions) (RankResult, error) {
	return RankResult{
		Success:  false,
		Error:    ErrorClass(d.Strategy),
		Items:    nil,
		Provider: "default",
	}, nil
}
