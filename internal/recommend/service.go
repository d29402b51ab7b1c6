package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iconiconii/FxxkLc-sub005/internal/candidates"
	"github.com/iconiconii/FxxkLc-sub005/internal/chain"
	"github.com/iconiconii/FxxkLc-sub005/internal/metrics"
	"github.com/iconiconii/FxxkLc-sub005/internal/prompt"
	"github.com/iconiconii/FxxkLc-sub005/internal/providers"
)

const (
	minLimit = 1
	maxLimit = 50

	minTimeboxMinutes = 5
	maxTimeboxMinutes = 240
)

// Config wires a Service's dependencies and deployment-level policy.
type Config struct {
	Builder  *candidates.Builder
	Chain    *chain.Chain
	Cache    *Cache
	Metrics  *metrics.Recorder
	Logger   *zap.Logger
	ChainID  string

	// DefaultStrategy mirrors `llm.defaultProvider.strategy`: which
	// fallback applies when the chain defaults, independent of *why* it
	// defaulted.
	DefaultStrategy string

	// DomainWhitelist is derived from `userProfiling.tagDomainMapping`'s
	// values; a request's TargetDomains are filtered against it. A nil or
	// empty whitelist disables filtering (accepts any domain).
	DomainWhitelist map[string]bool

	// ValidObjectives/ValidDifficulties gate Request.Objective and
	// Request.DifficultyPreference; an empty set disables validation for
	// that field (accepts any non-empty string), matching a deployment
	// that hasn't configured a closed vocabulary yet.
	ValidObjectives   map[string]bool
	ValidDifficulties map[string]bool
}

// Service orchestrates the full recommendation pipeline.
type Service struct {
	cfg Config
}

// NewService constructs a Service. A nil Logger falls back to zap.NewNop().
func NewService(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Cache == nil {
		cfg.Cache = NewCache(DefaultTTL)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRecorder()
	}
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = providers.StrategyFSRSFallback
	}
	return &Service{cfg: cfg}
}

// sanitize clamps and filters a Request to the service's configured bounds
// and vocabularies.
func (s *Service) sanitize(req Request) Request {
	if req.Limit < minLimit {
		req.Limit = minLimit
	} else if req.Limit > maxLimit {
		req.Limit = maxLimit
	}

	if req.TimeboxMinutes != 0 {
		if req.TimeboxMinutes < minTimeboxMinutes {
			req.TimeboxMinutes = minTimeboxMinutes
		} else if req.TimeboxMinutes > maxTimeboxMinutes {
			req.TimeboxMinutes = maxTimeboxMinutes
		}
	}

	if len(s.cfg.DomainWhitelist) > 0 {
		filtered := make([]string, 0, len(req.TargetDomains))
		for _, d := range req.TargetDomains {
			if s.cfg.DomainWhitelist[d] {
				filtered = append(filtered, d)
			}
		}
		req.TargetDomains = filtered
	}

	if len(s.cfg.ValidObjectives) > 0 && !s.cfg.ValidObjectives[req.Objective] {
		req.Objective = ""
	}
	if len(s.cfg.ValidDifficulties) > 0 && !s.cfg.ValidDifficulties[req.DifficultyPreference] {
		req.DifficultyPreference = ""
	}

	return req
}

// Recommend runs the full pipeline: check the cache, build candidates,
// render the prompt, execute the provider chain, map the outcome into a
// response, cache it, and record metrics. It never returns an error for
// LLM-path failures (those degrade to a fallback strategy); it returns an
// error only when candidate construction or prompt rendering fails. The
// FSRS-backed builder already guards against the first via its own
// fallback, so in practice that path is reserved for a store failure.
func (s *Service) Recommend(ctx context.Context, req Request) (Response, error) {
	req = s.sanitize(req)
	traceID := uuid.NewString()
	promptVersion := prompt.CurrentVersion()
	key := cacheKey(req, promptVersion, s.cfg.ChainID)

	if cached, ok := s.cfg.Cache.Get(key); ok {
		s.cfg.Metrics.RecordCache(true)
		cached.Meta.Cached = true
		cached.Meta.TraceID = traceID
		return cached, nil
	}
	s.cfg.Metrics.RecordCache(false)

	cands, err := s.cfg.Builder.Build(req.UserID, req.Limit, time.Now())
	if err != nil {
		return Response{}, fmt.Errorf("recommend: build candidates: %w", err)
	}

	promptResult, err := prompt.Build(promptVersion, cands, prompt.Options{
		Limit:                req.Limit,
		PromptVersion:        promptVersion,
		Objective:            req.Objective,
		TargetDomains:        req.TargetDomains,
		DifficultyPreference: req.DifficultyPreference,
		TimeboxMinutes:       req.TimeboxMinutes,
	})
	if err != nil {
		return Response{}, fmt.Errorf("recommend: build prompt: %w", err)
	}

	opts := providers.RankOptions{
		Limit:                req.Limit,
		PromptVersion:        promptVersion,
		Objective:            req.Objective,
		TargetDomains:        req.TargetDomains,
		DifficultyPreference: req.DifficultyPreference,
		TimeboxMinutes:       req.TimeboxMinutes,
		SystemMessage:        promptResult.SystemMessage,
		UserMessage:          promptResult.UserMessage,
	}

	s.cfg.Metrics.RecordToggle(s.cfg.Chain.Enabled())
	chainResult := s.cfg.Chain.Execute(ctx, req.UserID, cands, opts)
	s.cfg.Metrics.RecordChainHops(len(chainResult.Hops))
	s.cfg.Metrics.RecordFallbackReason(chainResult.DefaultReason)
	for _, pl := range chainResult.ProviderLatencies {
		s.cfg.Metrics.RecordProviderLatency(pl.Provider, pl.Success, pl.LatencyMs)
	}

	resp := s.buildResponse(traceID, promptVersion, req.Limit, cands, chainResult)
	s.cfg.Cache.Set(key, resp)
	return resp, nil
}

func (s *Service) buildResponse(traceID, promptVersion string, limit int, cands []candidates.ProblemCandidate, chainResult chain.Result) Response {
	meta := Meta{
		TraceID:        traceID,
		Cached:         false,
		ChainHops:      chainResult.Hops,
		FallbackReason: chainResult.DefaultReason,
		ChainID:        s.cfg.ChainID,
		PromptVersion:  promptVersion,
	}

	if chainResult.Success {
		byID := indexByID(cands)
		items := make([]Item, 0, len(chainResult.Items))
		for _, ranked := range chainResult.Items {
			cand := byID[ranked.ProblemID]
			items = append(items, Item{
				ProblemID:  ranked.ProblemID,
				Title:      cand.Title,
				Difficulty: cand.Difficulty,
				Reason:     ranked.Reason,
				Confidence: ranked.Confidence,
				Score:      ranked.Score,
				Source:     chainResult.Provider,
			})
		}
		meta.Strategy = "llm"
		s.cfg.Metrics.RecordStrategy("llm")
		return Response{Items: items, Meta: meta}
	}

	if s.cfg.DefaultStrategy == providers.StrategyBusyMessage {
		meta.Strategy = "busy_message"
		s.cfg.Metrics.RecordStrategy("busy_message")
		return Response{Items: []Item{}, Meta: meta}
	}

	truncated := cands
	if limit > 0 && len(truncated) > limit {
		truncated = truncated[:limit]
	}
	items := make([]Item, 0, len(truncated))
	for _, c := range truncated {
		items = append(items, Item{
			ProblemID:  c.ProblemID,
			Title:      c.Title,
			Difficulty: c.Difficulty,
			Reason:     fsrsFallbackReason(c),
			Confidence: c.UrgencyScore,
			Score:      c.UrgencyScore,
			Source:     "FSRS",
		})
	}
	meta.Strategy = "fsrs_fallback"
	s.cfg.Metrics.RecordStrategy("fsrs_fallback")
	return Response{Items: items, Meta: meta}
}

func indexByID(cands []candidates.ProblemCandidate) map[string]candidates.ProblemCandidate {
	out := make(map[string]candidates.ProblemCandidate, len(cands))
	for _, c := range cands {
		out[c.ProblemID] = c
	}
	return out
}

// fsrsFallbackReason renders a short human-readable reason from a
// candidate's own urgency signals, since there is no LLM to generate one.
func fsrsFallbackReason(c candidates.ProblemCandidate) string {
	if c.DaysOverdue > 0 {
		return fmt.Sprintf("%d day(s) overdue, %d prior attempt(s)", c.DaysOverdue, c.Attempts)
	}
	if c.Attempts == 0 {
		return "not yet attempted"
	}
	return fmt.Sprintf("%d prior attempt(s), recent accuracy %.0f%%", c.Attempts, c.RecentAccuracy*100)
}
