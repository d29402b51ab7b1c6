package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iconiconii/FxxkLc-sub005/internal/candidates"
	"github.com/iconiconii/FxxkLc-sub005/internal/cards"
	"github.com/iconiconii/FxxkLc-sub005/internal/chain"
	"github.com/iconiconii/FxxkLc-sub005/internal/providers"
)

func seedStore() *cards.MemoryStore {
	return cards.NewMemoryStore([]cards.Problem{
		{ID: "p1", Title: "Two Sum", Difficulty: cards.DifficultyEasy, Tags: []string{"array"}},
		{ID: "p2", Title: "LRU Cache", Difficulty: cards.DifficultyMedium, Tags: []string{"design"}},
	})
}

type stubRankProvider struct {
	name   string
	result providers.RankResult
}

func (s *stubRankProvider) Name() string { return s.name }
func (s *stubRankProvider) Rank(ctx context.Context, cands []candidates.ProblemCandidate, opts providers.RankOptions) (providers.RankResult, error) {
	return s.result, nil
}

func newChain(t *testing.T, enabled bool, provider providers.Provider, defaultStrategy string) *chain.Chain {
	t.Helper()
	nodes := []chain.Node{{Name: "p", Enabled: true, Timeout: time.Second, RetryAttempts: 1, OnErrorsToNext: map[providers.ErrorClass]bool{}}}
	cfg := chain.Config{Enabled: enabled, ChainID: "test-chain", Nodes: nodes}
	catalog := map[string]providers.Provider{"p": provider}
	return chain.New(cfg, catalog, providers.NewDefaultProvider(defaultStrategy), chain.RateLimiterConfig{}, nil)
}

func TestRecommend_LLMSuccessMapsItemsAndCaches(t *testing.T) {
	store := seedStore()
	builder := candidates.NewBuilder(store, nil)
	provider := &stubRankProvider{name: "p", result: providers.RankResult{
		Success: true,
		Items:   []providers.RankedItem{{ProblemID: "p1", Reason: "weak spot", Confidence: 0.9, Score: 0.8}},
	}}
	c := newChain(t, true, provider, providers.StrategyFSRSFallback)
	svc := NewService(Config{Builder: builder, Chain: c, ChainID: "test-chain"})

	resp, err := svc.Recommend(context.Background(), Request{UserID: "u1", Limit: 5})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "p1", resp.Items[0].ProblemID)
	assert.Equal(t, "Two Sum", resp.Items[0].Title)
	assert.Equal(t, "llm", resp.Meta.Strategy)
	assert.False(t, resp.Meta.Cached)
	assert.Equal(t, []string{"p"}, resp.Meta.ChainHops)

	resp2, err := svc.Recommend(context.Background(), Request{UserID: "u1", Limit: 5})
	require.NoError(t, err)
	assert.True(t, resp2.Meta.Cached)
	assert.Equal(t, resp.Items, resp2.Items)
}

func TestRecommend_ToggleOffFallsBackToFSRS(t *testing.T) {
	store := seedStore()
	builder := candidates.NewBuilder(store, nil)
	provider := &stubRankProvider{name: "p", result: providers.RankResult{Success: true}}
	c := newChain(t, false, provider, providers.StrategyFSRSFallback)
	svc := NewService(Config{Builder: builder, Chain: c, ChainID: "test-chain"})

	resp, err := svc.Recommend(context.Background(), Request{UserID: "u1", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, "fsrs_fallback", resp.Meta.Strategy)
	assert.Equal(t, "llm_disabled", resp.Meta.FallbackReason)
	assert.Empty(t, resp.Meta.ChainHops)
	assert.NotEmpty(t, resp.Items)
	for _, item := range resp.Items {
		assert.Equal(t, "FSRS", item.Source)
	}
}

func TestRecommend_BusyMessageStrategyReturnsEmptyItems(t *testing.T) {
	store := seedStore()
	builder := candidates.NewBuilder(store, nil)
	provider := &stubRankProvider{name: "p", result: providers.RankResult{Success: false, Error: providers.ErrOther}}
	c := newChain(t, true, provider, providers.StrategyBusyMessage)
	svc := NewService(Config{Builder: builder, Chain: c, ChainID: "test-chain"})

	resp, err := svc.Recommend(context.Background(), Request{UserID: "u1", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, "busy_message", resp.Meta.Strategy)
	assert.Empty(t, resp.Items)
}

func TestRecommend_InvalidDomainsDroppedFromCacheKey(t *testing.T) {
	store := seedStore()
	builder := candidates.NewBuilder(store, nil)
	provider := &stubRankProvider{name: "p", result: providers.RankResult{Success: true, Items: []providers.RankedItem{{ProblemID: "p1"}}}}
	c := newChain(t, true, provider, providers.StrategyFSRSFallback)
	svc := NewService(Config{
		Builder:         builder,
		Chain:           c,
		ChainID:         "test-chain",
		DomainWhitelist: map[string]bool{"arrays": true},
	})

	resp, err := svc.Recommend(context.Background(), Request{UserID: "u1", Limit: 5, TargetDomains: []string{"arrays", "bogus-domain"}})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Items)

	// The same request without the invalid domain must hit the same cache entry.
	resp2, err := svc.Recommend(context.Background(), Request{UserID: "u1", Limit: 5, TargetDomains: []string{"arrays"}})
	require.NoError(t, err)
	assert.True(t, resp2.Meta.Cached)
}

func TestRecommend_LimitAndTimeboxClamped(t *testing.T) {
	store := seedStore()
	builder := candidates.NewBuilder(store, nil)
	provider := &stubRankProvider{name: "p", result: providers.RankResult{Success: true, Items: []providers.RankedItem{{ProblemID: "p1"}}}}
	c := newChain(t, true, provider, providers.StrategyFSRSFallback)
	svc := NewService(Config{Builder: builder, Chain: c, ChainID: "test-chain"})

	req := svc.sanitize(Request{UserID: "u1", Limit: 1000, TimeboxMinutes: 1})
	assert.Equal(t, 50, req.Limit)
	assert.Equal(t, 5, req.TimeboxMinutes)
}
