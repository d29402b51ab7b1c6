package chain

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/iconiconii/FxxkLc-sub005/internal/candidates"
	"github.com/iconiconii/FxxkLc-sub005/internal/providers"
)

// transient is the set of error classes eligible for in-node retry
// (distinct from OnErrorsToNext, which governs cross-node descent).
var transient = map[providers.ErrorClass]bool{
	providers.ErrTimeout:     true,
	providers.ErrNetwork:     true,
	providers.ErrHTTP5xx:     true,
	providers.ErrRateLimited: true,
}

// retryBaseDelay is the constant backoff between in-node retry attempts.
const retryBaseDelay = 20 * time.Millisecond

// ProviderLatency records one provider invocation's observed latency, for
// callers that want to emit it as a metric.
type ProviderLatency struct {
	Provider  string
	Success   bool
	LatencyMs int64
}

// Result is the outcome of one chain execution: the mapped items on
// success, the hops visited along the way, and (on a default) the reason
// the chain gave up descending.
type Result struct {
	Success           bool
	Items             []providers.RankedItem
	Hops              []string
	Provider          string
	DefaultReason     string
	ChainID           string
	ProviderLatencies []ProviderLatency
}

// Chain dispatches nodes in configured order, applying per-node resilience
// (timeout, retry, circuit breaking, rate limiting) and descending to the
// next node only for error classes that node is configured to tolerate.
type Chain struct {
	config          Config
	catalog         map[string]providers.Provider
	defaultProvider providers.Provider
	limiters        *limiterSet
	breakers        map[string]*gobreaker.CircuitBreaker[providers.RankResult]
	logger          *zap.Logger
}

// New constructs a Chain. catalog maps a configured node Name to its
// Provider implementation; names absent from catalog are skipped during
// execution rather than erroring.
func New(config Config, catalog map[string]providers.Provider, defaultProvider providers.Provider, rlConfig RateLimiterConfig, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	breakers := make(map[string]*gobreaker.CircuitBreaker[providers.RankResult], len(config.Nodes))
	for _, n := range config.Nodes {
		name := n.Name
		breakers[name] = gobreaker.NewCircuitBreaker[providers.RankResult](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
	}
	return &Chain{
		config:          config,
		catalog:         catalog,
		defaultProvider: defaultProvider,
		limiters:        newLimiterSet(rlConfig),
		breakers:        breakers,
		logger:          logger,
	}
}

// Enabled reports the configured feature toggle, for callers (the
// recommendation service's metrics) that need it without re-deriving it
// from a separate config copy.
func (c *Chain) Enabled() bool { return c.config.Enabled }

// Execute runs the configured chain to completion: it walks nodes in
// order, applies rate limiting and per-node timeout/retry/circuit-breaking,
// and descends to the next node only when that node's configured error
// classes allow it; otherwise it hands off to the default provider.
func (c *Chain) Execute(ctx context.Context, userID string, cands []candidates.ProblemCandidate, opts providers.RankOptions) Result {
	if !c.config.Enabled {
		return Result{Success: false, DefaultReason: "llm_disabled", Hops: []string{}, ChainID: c.config.ChainID}
	}
	if len(c.config.Nodes) == 0 {
		return Result{Success: false, DefaultReason: "chain_empty", Hops: []string{}, ChainID: c.config.ChainID}
	}

	hops := make([]string, 0, len(c.config.Nodes)+1)
	latencies := make([]ProviderLatency, 0, len(c.config.Nodes))
	var lastReason string

	for _, node := range c.config.Nodes {
		if !node.Enabled {
			continue
		}
		provider, ok := c.catalog[node.Name]
		if !ok {
			continue
		}
		hops = append(hops, node.Name)

		if !c.limiters.Allow(userID) {
			lastReason = string(providers.ErrRateLimited)
			c.logger.Debug("chain node rate limited", zap.String("node", node.Name), zap.String("user_id", userID))
			if node.AllowsNext(providers.ErrRateLimited) {
				continue
			}
			return c.runDefault(ctx, cands, opts, hops, lastReason, latencies)
		}

		nodeCtx := ctx
		var cancel context.CancelFunc
		if node.Timeout > 0 {
			nodeCtx, cancel = context.WithTimeout(ctx, node.Timeout)
		}
		result, err := c.invoke(nodeCtx, node, provider, cands, opts)
		if cancel != nil {
			cancel()
		}

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				// An open breaker fails closed to default regardless of
				// onErrorsToNext.
				c.logger.Debug("chain node circuit open", zap.String("node", node.Name))
				return c.runDefault(ctx, cands, opts, hops, string(providers.ErrOther), latencies)
			}
			lastReason = string(classifyGoError(err))
			if node.AllowsNext(providers.ErrorClass(lastReason)) {
				continue
			}
			return c.runDefault(ctx, cands, opts, hops, lastReason, latencies)
		}

		latencies = append(latencies, ProviderLatency{Provider: node.Name, Success: result.Success, LatencyMs: result.LatencyMs})

		if result.Success {
			return Result{Success: true, Items: result.Items, Hops: hops, Provider: node.Name, ChainID: c.config.ChainID, ProviderLatencies: latencies}
		}

		lastReason = string(result.Error)
		if node.AllowsNext(result.Error) {
			continue
		}
		return c.runDefault(ctx, cands, opts, hops, lastReason, latencies)
	}

	return c.runDefault(ctx, cands, opts, hops, lastReason, latencies)
}

// ExecuteAsync runs Execute on its own goroutine and returns a channel with
// its result; cancelling ctx propagates into whatever provider call is in
// flight because Execute threads ctx through every node invocation.
func (c *Chain) ExecuteAsync(ctx context.Context, userID string, cands []candidates.ProblemCandidate, opts providers.RankOptions) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		out <- c.Execute(ctx, userID, cands, opts)
	}()
	return out
}

func (c *Chain) runDefault(ctx context.Context, cands []candidates.ProblemCandidate, opts providers.RankOptions, hops []string, reason string, latencies []ProviderLatency) Result {
	finalHops := append(append([]string{}, hops...), "default")
	result, _ := c.defaultProvider.Rank(ctx, cands, opts)
	if reason == "" {
		reason = string(result.Error)
	}
	return Result{Success: false, Hops: finalHops, DefaultReason: reason, ChainID: c.config.ChainID, ProviderLatencies: latencies}
}

// invoke wraps a provider call in its circuit breaker and node-scoped
// retry: up to node.RetryAttempts tries on transient error classes or on a
// Go error from Rank, all of them together bounded by the node's timeout
// context.
func (c *Chain) invoke(ctx context.Context, node Node, provider providers.Provider, cands []candidates.ProblemCandidate, opts providers.RankOptions) (providers.RankResult, error) {
	breaker := c.breakers[node.Name]
	if breaker == nil {
		return c.retryInvoke(ctx, node, provider, cands, opts)
	}
	return breaker.Execute(func() (providers.RankResult, error) {
		return c.retryInvoke(ctx, node, provider, cands, opts)
	})
}

func (c *Chain) retryInvoke(ctx context.Context, node Node, provider providers.Provider, cands []candidates.ProblemCandidate, opts providers.RankOptions) (providers.RankResult, error) {
	attempts := node.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var result providers.RankResult
	var rankErr error

	operation := func() error {
		result, rankErr = provider.Rank(ctx, cands, opts)
		if rankErr != nil {
			return rankErr
		}
		if !result.Success && transient[result.Error] {
			return errors.New(string(result.Error))
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(retryBaseDelay), uint64(attempts-1)), ctx)
	_ = backoff.Retry(operation, bo)

	return result, rankErr
}

// classifyGoError maps a Go-level error (not a domain RankResult.Error)
// into the chain's error-class taxonomy so OnErrorsToNext can still apply.
func classifyGoError(err error) providers.ErrorClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return providers.ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return providers.ErrTimeout
	}
	return providers.ErrNetwork
}
