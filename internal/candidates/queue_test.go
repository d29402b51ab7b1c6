package candidates

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/iconiconii/FxxkLc-sub005/internal/cards"
	"github.com/iconiconii/FxxkLc-sub005/internal/fsrs"
	"github.com/stretchr/testify/require"
)

func TestBuildQueueSummary_CountsCohorts(t *testing.T) {
	store := cards.NewMemoryStore(seedProblems())
	now := time.Now()
	past := now.Add(-48 * time.Hour)

	learning, _ := store.GetOrCreateCard("u1", "p1")
	learning.FSRS = fsrs.Card{State: fsrs.Learning, Stability: 1, Difficulty: 5}
	require.NoError(t, store.UpdateCard(learning))

	dueReview, _ := store.GetOrCreateCard("u1", "p2")
	dueReview.FSRS = fsrs.Card{State: fsrs.Review, Stability: 10, Difficulty: 5, LastReview: &past, Due: now.Add(-time.Hour)}
	require.NoError(t, store.UpdateCard(dueReview))

	b := NewBuilder(store, nil)
	summary, err := b.BuildQueueSummary("u1", now)
	require.NoError(t, err)

	require.Equal(t, 1, summary.LearningCards)
	require.Equal(t, 1, summary.ReviewCards)
	require.Equal(t, 1, summary.NewCards) // p3 never touched
	require.Equal(t, summary.TotalCount, summary.NewCards+summary.LearningCards+summary.ReviewCards+summary.RelearningCards)

	want := QueueSummary{NewCards: 1, LearningCards: 1, ReviewCards: 1, RelearningCards: 0, TotalCount: 3}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("queue summary mismatch (-want +got):\n%s", diff)
	}
}
