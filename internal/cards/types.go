// Package cards holds the data model the FSRS engine schedules: Card,
// ReviewLog, FSRSParameters and Problem, plus a read-only store boundary
// that candidate building and recommendation consult. Persistent storage
// (SQL for cards/reviews/problems) is an external collaborator; this
// package's MemoryStore is the in-process stand-in used by tests and by
// cmd/recserver's wiring demonstration.
package cards

import (
	"time"

	"github.com/iconiconii/FxxkLc-sub005/internal/fsrs"
)

// Card is one (user, problem) memory record, owned exclusively by the
// FSRS engine's persistence. It is never deleted.
type Card struct {
	ID        string
	UserID    string
	ProblemID string
	FSRS      fsrs.Card
}

// ReviewLog is an append-only audit record of a single review.
type ReviewLog struct {
	ID                 string
	UserID             string
	ProblemID          string
	Rating             fsrs.Rating
	ReviewType         fsrs.ReviewType
	ElapsedDays        float64
	PreReviewStability float64
	PreReviewDifficulty float64
	ReviewedAt         time.Time
}

// ProblemDifficulty is the coarse, author-assigned difficulty tier, distinct
// from the FSRS-calculated per-user Difficulty.
type ProblemDifficulty string

const (
	DifficultyEasy   ProblemDifficulty = "EASY"
	DifficultyMedium ProblemDifficulty = "MEDIUM"
	DifficultyHard   ProblemDifficulty = "HARD"
)

// Problem is immutable to the core; it is read, never written, by this
// codebase.
type Problem struct {
	ID         string
	Title      string
	Difficulty ProblemDifficulty
	Tags       []string
	Categories []string
}
