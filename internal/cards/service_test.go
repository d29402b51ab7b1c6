package cards

import (
	"testing"
	"time"

	"github.com/iconiconii/FxxkLc-sub005/internal/fsrs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitReview_NewCardGoodRatingTransitionsToLearning(t *testing.T) {
	store := NewMemoryStore([]Problem{{ID: "p1", Title: "Two Sum", Difficulty: DifficultyEasy}})
	now := time.Now()

	result, err := SubmitReview(store, "u1", "p1", fsrs.Good, fsrs.ReviewTypeScheduled, fsrs.DefaultParameters(), now)
	require.NoError(t, err)
	assert.Equal(t, fsrs.Learning, result.NewState)
	assert.True(t, result.NextReviewDate.After(now))

	card, ok := store.GetCard("u1", "p1")
	require.True(t, ok)
	assert.Equal(t, fsrs.Learning, card.FSRS.State)
	assert.Equal(t, 1, card.FSRS.Reps)

	logs, err := store.ListReviewLogs("u1", "p1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, fsrs.Good, logs[0].Rating)
}

func TestSubmitReview_LapseIncrementsLapses(t *testing.T) {
	store := NewMemoryStore([]Problem{{ID: "p1", Title: "Two Sum", Difficulty: DifficultyEasy}})
	now := time.Now()
	past := now.Add(-5 * 24 * time.Hour)

	card, _ := store.GetOrCreateCard("u1", "p1")
	card.FSRS = fsrs.Card{State: fsrs.Review, Stability: 20, Difficulty: 5, Reps: 10, Lapses: 2, LastReview: &past, Due: now.Add(-time.Hour)}
	require.NoError(t, store.UpdateCard(card))

	result, err := SubmitReview(store, "u1", "p1", fsrs.Again, fsrs.ReviewTypeScheduled, fsrs.DefaultParameters(), now)
	require.NoError(t, err)
	assert.Equal(t, fsrs.Relearning, result.NewState)

	updated, ok := store.GetCard("u1", "p1")
	require.True(t, ok)
	assert.Equal(t, 3, updated.FSRS.Lapses)
}

func TestSubmitReview_InvalidRatingPropagates(t *testing.T) {
	store := NewMemoryStore([]Problem{{ID: "p1", Title: "Two Sum", Difficulty: DifficultyEasy}})
	_, err := SubmitReview(store, "u1", "p1", fsrs.Rating(9), fsrs.ReviewTypeScheduled, fsrs.DefaultParameters(), time.Now())
	assert.ErrorIs(t, err, fsrs.ErrInvalidRating)
}
