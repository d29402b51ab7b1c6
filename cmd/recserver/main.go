// Command recserver is a wiring demonstration: it constructs every
// component of the recommendation core (FSRS engine, candidate builder,
// provider chain, recommendation service, metrics, feedback store) against
// an in-memory problem catalog and walks through one review submission and
// one recommendation request. It is not an HTTP server: transport and
// authentication are external collaborators.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iconiconii/FxxkLc-sub005/internal/candidates"
	"github.com/iconiconii/FxxkLc-sub005/internal/cards"
	"github.com/iconiconii/FxxkLc-sub005/internal/chain"
	"github.com/iconiconii/FxxkLc-sub005/internal/feedback"
	"github.com/iconiconii/FxxkLc-sub005/internal/fsrs"
	"github.com/iconiconii/FxxkLc-sub005/internal/metrics"
	"github.com/iconiconii/FxxkLc-sub005/internal/providers"
	"github.com/iconiconii/FxxkLc-sub005/internal/recommend"
)

func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	logger, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		os.Stdout.WriteString("zap init failed, falling back to Nop logger: " + err.Error() + "\n")
		return zap.NewNop()
	}
	return logger
}

func seedProblems() []cards.Problem {
	return []cards.Problem{
		{ID: "two-sum", Title: "Two Sum", Difficulty: cards.DifficultyEasy, Tags: []string{"array", "hash-table"}},
		{ID: "lru-cache", Title: "LRU Cache", Difficulty: cards.DifficultyMedium, Tags: []string{"design", "linked-list"}},
		{ID: "word-ladder", Title: "Word Ladder", Difficulty: cards.DifficultyHard, Tags: []string{"graph", "bfs"}},
		{ID: "merge-intervals", Title: "Merge Intervals", Difficulty: cards.DifficultyMedium, Tags: []string{"array", "sorting"}},
	}
}

// buildChain assembles the provider chain: an OpenAI-compatible primary
// node falling through to the in-process mock. OPENAI_API_KEY is read
// indirectly, by name only, via OpenAIConfig.APIKeyEnv.
func buildChain(logger *zap.Logger) *chain.Chain {
	openai := providers.NewOpenAIProvider("openai", providers.OpenAIConfig{
		BaseURL:   "https://api.openai.com/v1",
		Model:     "gpt-4o-mini",
		APIKeyEnv: "OPENAI_API_KEY",
		Timeout:   2 * time.Second,
	}, &http.Client{})
	mock := providers.NewMockProvider("mock")

	cfg := chain.Config{
		Enabled: true,
		ChainID: "default-v1",
		Nodes: []chain.Node{
			{
				Name:          "openai",
				Enabled:       true,
				Timeout:       2 * time.Second,
				RetryAttempts: 2,
				OnErrorsToNext: map[providers.ErrorClass]bool{
					providers.ErrAPIKeyMissing: true,
					providers.ErrTimeout:       true,
					providers.ErrHTTP5xx:       true,
					providers.ErrNetwork:       true,
					providers.ErrRateLimited:   true,
				},
			},
			{
				Name:           "mock",
				Enabled:        true,
				Timeout:        time.Second,
				RetryAttempts:  1,
				OnErrorsToNext: map[providers.ErrorClass]bool{},
			},
		},
	}
	catalog := map[string]providers.Provider{"openai": openai, "mock": mock}
	rl := chain.RateLimiterConfig{GlobalRPS: 10, GlobalBurst: 10, PerUserRPS: 2, PerUserBurst: 2}

	return chain.New(cfg, catalog, providers.NewDefaultProvider(providers.StrategyFSRSFallback), rl, logger)
}

func main() {
	logger := newLogger()
	defer logger.Sync() //nolint:errcheck

	store := cards.NewMemoryStore(seedProblems())
	builder := candidates.NewBuilder(store, logger)
	recorder := metrics.NewRecorder()
	recorder.MustRegister(prometheus.DefaultRegisterer)
	feedbackStore := feedback.NewStore()

	recChain := buildChain(logger)
	svc := recommend.NewService(recommend.Config{
		Builder:         builder,
		Chain:           recChain,
		Cache:           recommend.NewCache(recommend.DefaultTTL),
		Metrics:         recorder,
		Logger:          logger,
		ChainID:         "default-v1",
		DefaultStrategy: providers.StrategyFSRSFallback,
		DomainWhitelist: map[string]bool{"array": true, "design": true, "graph": true},
	})

	now := time.Now()
	userID := "demo-user"
	params := fsrs.DefaultParameters()

	submission, err := cards.SubmitReview(store, userID, "two-sum", fsrs.Good, fsrs.ReviewTypeScheduled, params, now)
	if err != nil {
		logger.Error("review submission failed", zap.Error(err))
	} else {
		logger.Info("review submitted",
			zap.String("user_id", userID),
			zap.String("new_state", submission.NewState.String()),
			zap.Time("next_review", submission.NextReviewDate),
			zap.Ints("interval_previews", submission.Intervals[:]),
		)
		recorder.RecordReviewSubmitted(submission.NewState.String())
	}

	if logs, err := store.ListReviewLogsForUser(userID); err != nil {
		logger.Error("listing review logs for optimizer failed", zap.Error(err))
	} else {
		samples := make([]fsrs.ReviewLogSample, 0, len(logs))
		for _, l := range logs {
			samples = append(samples, fsrs.ReviewLogSample{
				PreReviewStability: l.PreReviewStability,
				ElapsedDays:        l.ElapsedDays,
				Rating:             l.Rating,
			})
		}
		fitted, outcome := fsrs.OptimizeParameters(samples, params)
		recorder.RecordOptimizerRun(outcome)
		logger.Info("optimizer run", zap.String("outcome", outcome), zap.Int("log_count", len(samples)))
		if outcome == fsrs.OptimizerApplied {
			if err := store.SetParameters(userID, fitted); err != nil {
				logger.Error("persisting optimized parameters failed", zap.Error(err))
			}
		}
	}

	summary, err := builder.BuildQueueSummary(userID, now)
	if err != nil {
		logger.Error("queue summary failed", zap.Error(err))
	} else {
		logger.Info("review queue summary",
			zap.Int("new", summary.NewCards),
			zap.Int("learning", summary.LearningCards),
			zap.Int("review", summary.ReviewCards),
			zap.Int("relearning", summary.RelearningCards),
			zap.Int("total", summary.TotalCount),
		)
	}

	resp, err := svc.Recommend(context.Background(), recommend.Request{
		UserID:    userID,
		Limit:     3,
		Objective: "interview-prep",
	})
	if err != nil {
		logger.Error("recommendation failed", zap.Error(err))
		return
	}
	logger.Info("recommendation produced",
		zap.String("strategy", resp.Meta.Strategy),
		zap.Strings("chain_hops", resp.Meta.ChainHops),
		zap.String("fallback_reason", resp.Meta.FallbackReason),
		zap.Int("item_count", len(resp.Items)),
	)

	if len(resp.Items) > 0 {
		_, err := feedbackStore.Record(userID, resp.Items[0].ProblemID, feedback.KindHelpful, "good pick", now)
		if err != nil {
			logger.Error("feedback recording failed", zap.Error(err))
		}
	}
}
