// Package fsrs implements the Free Spaced Repetition Scheduler memory
// model: the pure, synchronous calculator that turns a card's current
// memory state plus a user rating into its next review schedule.
package fsrs

import "time"

// State is a card's position in the FSRS learning lifecycle.
//
// Mirrors the enum shape of github.com/open-spaced-repetition/go-fsrs
// (New=0, Learning=1, Review=2, Relearning=3) so callers already familiar
// with that library read this one at a glance.
type State int8

const (
	New State = iota
	Learning
	Review
	Relearning
)

func (s State) String() string {
	switch s {
	case New:
		return "NEW"
	case Learning:
		return "LEARNING"
	case Review:
		return "REVIEW"
	case Relearning:
		return "RELEARNING"
	default:
		return "UNKNOWN"
	}
}

// Rating is the user's self-assessment of a single review.
type Rating int8

const (
	Again Rating = iota + 1
	Hard
	Good
	Easy
)

func (r Rating) Valid() bool {
	return r >= Again && r <= Easy
}

// ReviewType records why a review happened, for audit purposes only; it
// does not affect scheduling math.
type ReviewType string

const (
	ReviewTypeScheduled ReviewType = "SCHEDULED"
	ReviewTypeExtra     ReviewType = "EXTRA"
	ReviewTypeCram      ReviewType = "CRAM"
	ReviewTypeManual    ReviewType = "MANUAL"
	ReviewTypeBulk      ReviewType = "BULK"
)

// Clamp bounds enforced on every Card and Parameters value.
const (
	MinStability  = 0.01
	MaxStability  = 36500.0
	MinDifficulty = 1.0
	MaxDifficulty = 10.0
	MinInterval   = 1
	MaxInterval   = 36500
)

// Card is one (user, problem) memory record. State=New implies
// LastReview is nil and Reps is 0; Lapses is monotonically non-decreasing.
// The engine never deletes a Card; it only returns the next version of one.
type Card struct {
	State      State
	Stability  float64
	Difficulty float64
	Reps       int
	Lapses     int
	LastReview *time.Time
	Due        time.Time
}

// Parameters holds the 17 FSRS weights plus the target retention used to
// schedule reviews. Absent users get DefaultParameters().
type Parameters struct {
	W                [17]float64
	RequestRetention float64
}

// Result is the outcome of calculating a single review.
type Result struct {
	NewState       State
	NewDifficulty  float64
	NewStability   float64
	NextReviewTime time.Time
	IntervalDays   int
	ElapsedDays    int
}

// DefaultParameters returns the reference weight set new users start from.
// Values follow the published FSRS-4.5 defaults, reshaped to this engine's
// 17-weight layout (w0..w3 initial stabilities, w4..w16 the difficulty and
// review-update coefficients consumed by calculateNextReview).
func DefaultParameters() Parameters {
	return Parameters{
		W: [17]float64{
			0.4, 0.6, 2.4, 5.8, // w0..w3: initial stability by rating
			4.93,                                    // w4: initial difficulty anchor
			0.94,                                     // w5: difficulty update slope
			0.86, 0.01,                               // w6, w7: learning/relearning stability growth
			1.49, 0.14, 0.94,                         // w8, w9, w10: review rating factors
			2.18, 0.05, 0.34,                         // w11, w12, w13: lapse + difficulty decay
			1.26, 0.29, 2.61,                         // w14, w15, w16: retrievability/lapse/elapsed decay
		},
		RequestRetention: 0.9,
	}
}
