package cards

import (
	"time"

	"github.com/iconiconii/FxxkLc-sub005/internal/fsrs"
)

// SubmitResult is the outcome of one review submission: the schedule a
// caller would render back to the reviewer.
type SubmitResult struct {
	NextReviewDate time.Time
	NewState       fsrs.State
	Intervals      [4]int
}

// SubmitReview applies a single review to a user's card: it serializes the
// read-modify-write under the store's per-card lock so concurrent reviews
// of the same card never race, calls the FSRS engine, persists the
// resulting card and an append-only ReviewLog entry, and returns the
// schedule the caller would render. Engine errors (invalid rating, invalid
// card, calculation failure) propagate unwrapped so a calling layer can map
// them to the appropriate response.
func SubmitReview(store Store, userID, problemID string, rating fsrs.Rating, reviewType fsrs.ReviewType, params fsrs.Parameters, now time.Time) (SubmitResult, error) {
	var result SubmitResult
	err := store.WithCardLock(userID, problemID, func() error {
		card, err := store.GetOrCreateCard(userID, problemID)
		if err != nil {
			return err
		}

		preStability := card.FSRS.Stability
		preDifficulty := card.FSRS.Difficulty

		reviewOutcome, err := fsrs.CalculateNextReview(&card.FSRS, rating, params, now)
		if err != nil {
			return err
		}

		intervals, err := fsrs.CalculateAllIntervals(&card.FSRS, params, now)
		if err != nil {
			return err
		}

		nextCard := fsrs.NextCard(&card.FSRS, rating, reviewOutcome, now)
		card.FSRS = nextCard
		if err := store.UpdateCard(card); err != nil {
			return err
		}

		elapsed := float64(reviewOutcome.ElapsedDays)
		if err := store.AppendReviewLog(ReviewLog{
			UserID:             userID,
			ProblemID:          problemID,
			Rating:             rating,
			ReviewType:         reviewType,
			ElapsedDays:        elapsed,
			PreReviewStability: preStability,
			PreReviewDifficulty: preDifficulty,
			ReviewedAt:         now,
		}); err != nil {
			return err
		}

		result = SubmitResult{
			NextReviewDate: reviewOutcome.NextReviewTime,
			NewState:       reviewOutcome.NewState,
			Intervals:      intervals,
		}
		return nil
	})
	return result, err
}
