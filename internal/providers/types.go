// Package providers defines the ranking-provider interface LLM backends
// implement, the error taxonomy the provider chain uses to decide descent,
// and the concrete OpenAI-compatible, mock and default implementations.
package providers

import (
	"context"
	"time"

	"github.com/iconiconii/FxxkLc-sub005/internal/candidates"
)

// ErrorClass is the provider failure taxonomy the chain consults to decide
// whether to descend to the next node.
type ErrorClass string

const (
	ErrAPIKeyMissing ErrorClass = "API_KEY_MISSING"
	ErrTimeout       ErrorClass = "TIMEOUT"
	ErrHTTP5xx       ErrorClass = "HTTP_5XX"
	ErrHTTP4xx       ErrorClass = "HTTP_4XX"
	ErrParse         ErrorClass = "PARSE_ERROR"
	ErrRateLimited   ErrorClass = "RATE_LIMITED"
	ErrNetwork       ErrorClass = "NETWORK"
	ErrOther         ErrorClass = "OTHER"
)

// RankedItem is a single LLM-recommended problem.
type RankedItem struct {
	ProblemID  string
	Reason     string
	Confidence float64
	Score      float64
	Strategy   string
}

// RankOptions carries the per-request preferences a provider may use to
// shape ranking, plus the already-templated prompt (internal/prompt owns
// templating; providers only consume its output).
type RankOptions struct {
	Limit                int
	PromptVersion        string
	Objective            string
	TargetDomains        []string
	DifficultyPreference string
	TimeboxMinutes       int
	SystemMessage        string
	UserMessage          string
}

// RankResult is the outcome of one provider invocation. Success=false with
// a populated Error communicates a domain-level failure (bad API key,
// malformed response, ...) without forcing callers to inspect a Go error;
// Rank's Go error return is reserved for failures the chain cannot classify
// (e.g. a canceled context it did not itself time out).
type RankResult struct {
	Success   bool
	Model     string
	Error     ErrorClass
	Items     []RankedItem
	LatencyMs int64
	Provider  string
}

// Provider is the common interface every ranking backend implements.
type Provider interface {
	Name() string
	Rank(ctx context.Context, cands []candidates.ProblemCandidate, opts RankOptions) (RankResult, error)
}

// AsyncProvider is implemented by providers that can hand back a
// future-like value instead of blocking the caller's goroutine; the
// default implementation for any Provider is RankAsync below, which simply
// runs Rank on its own goroutine.
type AsyncProvider interface {
	Provider
	RankAsync(ctx context.Context, cands []candidates.ProblemCandidate, opts RankOptions) <-chan RankOutcome
}

// RankOutcome pairs a RankResult with its Go error for the async channel.
type RankOutcome struct {
	Result RankResult
	Err    error
}

// RankAsync runs p.Rank on its own goroutine and returns a channel with its
// outcome, giving any Provider a future-like async call without requiring
// it to hand-roll one. Cancellation of ctx propagates into the in-flight
// Rank call because Rank implementations are required to select on
// ctx.Done().
func RankAsync(ctx context.Context, p Provider, cands []candidates.ProblemCandidate, opts RankOptions) <-chan RankOutcome {
	out := make(chan RankOutcome, 1)
	go func() {
		start := time.Now()
		result, err := p.Rank(ctx, cands, opts)
		if result.LatencyMs == 0 {
			result.LatencyMs = time.Since(start).Milliseconds()
		}
		out <- RankOutcome{Result: result, Err: err}
	}()
	return out
}
