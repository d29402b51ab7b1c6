package fsrs

import (
	"math"
	"time"
)

// transitions is the FSRS state machine table: for each current state and
// rating, which state a review transitions the card into.
var transitions = map[State]map[Rating]State{
	New: {
		Again: New,
		Hard:  New,
		Good:  Learning,
		Easy:  Learning,
	},
	Learning: {
		Again: New,
		Hard:  Learning,
		Good:  Review,
		Easy:  Review,
	},
	Review: {
		Again: Relearning,
		Hard:  Review,
		Good:  Review,
		Easy:  Review,
	},
	Relearning: {
		Again: Relearning,
		Hard:  Relearning,
		Good:  Review,
		Easy:  Review,
	},
}

func nextState(from State, rating Rating) (State, bool) {
	row, ok := transitions[from]
	if !ok {
		return New, false
	}
	to, ok := row[rating]
	return to, ok
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CalculateInitialDifficulty implements D0 = w4 - exp(w4)*(rating-3)/exp(w4),
// preserved literally rather than algebraically simplified to document the
// intended formula exactly.
func CalculateInitialDifficulty(rating Rating, params Parameters) float64 {
	w4 := params.W[4]
	d0 := w4 - math.Exp(w4)*(float64(rating)-3)/math.Exp(w4)
	return clamp(d0, MinDifficulty, MaxDifficulty)
}

// CalculateInitialStability returns the seed stability for a first review.
func CalculateInitialStability(rating Rating, params Parameters) float64 {
	var s float64
	switch rating {
	case Again:
		s = params.W[0]
	case Hard:
		s = params.W[1]
	case Good:
		s = params.W[2]
	case Easy:
		s = params.W[3]
	}
	return clamp(s, MinStability, MaxStability)
}

// CalculateRetrievability returns the predicted probability of recall right
// now. A card with no LastReview is treated as never forgotten (R=1); a
// card with non-positive stability is treated as fully forgotten (R=0).
func CalculateRetrievability(card *Card, params Parameters, now time.Time) float64 {
	if card == nil || card.LastReview == nil {
		return 1.0
	}
	if card.Stability <= 0 {
		return 0.0
	}
	elapsed := elapsedDays(*card.LastReview, now)
	r := math.Pow(0.9, float64(elapsed)/card.Stability)
	return clamp(r, 0, 1)
}

// PredictOptimalInterval returns the number of days until retrievability is
// expected to fall to targetRetention, clamped to [1, 36500].
func PredictOptimalInterval(stability, targetRetention float64) int {
	interval := stability * math.Log(targetRetention) / math.Log(0.9)
	return clampInterval(interval)
}

func clampInterval(days float64) int {
	if !finite(days) {
		return MinInterval
	}
	rounded := math.Round(days)
	if rounded < MinInterval {
		return MinInterval
	}
	if rounded > MaxInterval {
		return MaxInterval
	}
	return int(rounded)
}

func elapsedDays(last, now time.Time) int {
	days := now.Sub(last).Hours() / 24.0
	if days < 0 {
		return 0
	}
	return int(math.Floor(days))
}

// updateDifficulty implements D_new = D - w5*(rating-3), clamped. Used for
// every transition except out of NEW, where CalculateInitialDifficulty
// seeds the value instead.
func updateDifficulty(d float64, rating Rating, params Parameters) float64 {
	newD := d - params.W[5]*(float64(rating)-3)
	return clamp(newD, MinDifficulty, MaxDifficulty)
}

// updateStability implements the per-state stability update formulas: a
// fresh seed out of NEW, a multiplicative bump through LEARNING/RELEARNING,
// and the full recall/lapse formula for REVIEW.
func updateStability(card Card, rating Rating, elapsed int, params Parameters) float64 {
	w := params.W
	switch card.State {
	case New:
		return CalculateInitialStability(rating, params)

	case Learning, Relearning:
		var k float64
		switch rating {
		case Again:
			k = w[6]
		case Hard:
			k = 1.2 * w[6]
		case Good:
			k = 1.5 * w[6]
		case Easy:
			k = 2.0 * w[6]
		}
		s := card.Stability * (1 + k + w[7])
		if card.State == Relearning {
			s *= 0.8
		}
		return clamp(s, MinStability, MaxStability)

	case Review:
		if rating == Again {
			s := card.Stability * math.Pow(w[11], float64(card.Lapses)) * w[12]
			return clamp(s, MinStability, MaxStability)
		}
		var ratingFactor float64
		switch rating {
		case Hard:
			ratingFactor = w[8]
		case Good:
			ratingFactor = w[9]
		case Easy:
			ratingFactor = w[10]
		}
		r := math.Pow(0.9, float64(elapsed)/card.Stability)
		elapsedTerm := 1.0
		if elapsed > 0 {
			elapsedTerm = 1 + w[16]*float64(elapsed)/card.Stability
		}
		mult := ratingFactor *
			math.Exp((1-card.Difficulty)*w[13]) *
			math.Exp((1-r)*w[14]) *
			math.Pow(w[15], float64(card.Lapses)) *
			elapsedTerm
		s := card.Stability * mult
		return clamp(s, MinStability, MaxStability)
	}
	return clamp(card.Stability, MinStability, MaxStability)
}

// CalculateNextReview computes the next review schedule for a card given a
// user rating. It is a pure function: identical inputs always produce
// identical outputs, and it never performs I/O.
func CalculateNextReview(card *Card, rating Rating, params Parameters, now time.Time) (Result, error) {
	if !rating.Valid() {
		return Result{}, ErrInvalidRating
	}
	if card == nil || card.State < New || card.State > Relearning {
		return Result{}, ErrInvalidCard
	}

	to, ok := nextState(card.State, rating)
	if !ok {
		return Result{}, ErrInvalidCard
	}

	elapsed := 0
	if card.LastReview != nil {
		elapsed = elapsedDays(*card.LastReview, now)
	}

	var newDifficulty float64
	if card.State == New {
		newDifficulty = CalculateInitialDifficulty(rating, params)
	} else {
		newDifficulty = updateDifficulty(card.Difficulty, rating, params)
	}

	newStability := updateStability(*card, rating, elapsed, params)

	if !finite(newDifficulty) || !finite(newStability) {
		return Result{}, &CalculationError{Op: "CalculateNextReview", Err: errNonFinite}
	}

	intervalDays := clampInterval(math.Max(1, math.Round(
		float64(PredictOptimalInterval(newStability, params.RequestRetention)))))
	nextReview := now.AddDate(0, 0, intervalDays)

	return Result{
		NewState:       to,
		NewDifficulty:  newDifficulty,
		NewStability:   newStability,
		NextReviewTime: nextReview,
		IntervalDays:   intervalDays,
		ElapsedDays:    elapsed,
	}, nil
}

// CalculateAllIntervals previews the interval (in days) that would result
// from each of the four ratings, without mutating the card. Used to show a
// user "Again / Hard / Good / Easy" choices before they rate.
func CalculateAllIntervals(card *Card, params Parameters, now time.Time) ([4]int, error) {
	var out [4]int
	for i, rating := range []Rating{Again, Hard, Good, Easy} {
		result, err := CalculateNextReview(card, rating, params, now)
		if err != nil {
			return out, err
		}
		out[i] = result.IntervalDays
	}
	return out, nil
}

// NextCard derives the persisted Card that should follow a review: applies
// the engine's Result to state/stability/difficulty/due, and bumps Reps and
// Lapses (reps counts every review that leaves the card outside NEW, Again
// included; lapses counts Again-from-REVIEW demotions). A card that ends up
// NEW (Again/Hard on a first review, Again from LEARNING) has reps reset to
// 0 and lastReview unset, since NEW means "never successfully reviewed".
func NextCard(card *Card, rating Rating, result Result, now time.Time) Card {
	lapses := card.Lapses
	if card.State == Review && rating == Again {
		lapses++
	}

	if result.NewState == New {
		return Card{
			State:      New,
			Stability:  result.NewStability,
			Difficulty: result.NewDifficulty,
			Reps:       0,
			Lapses:     lapses,
			LastReview: nil,
			Due:        result.NextReviewTime,
		}
	}

	reviewed := now
	return Card{
		State:      result.NewState,
		Stability:  result.NewStability,
		Difficulty: result.NewDifficulty,
		Reps:       card.Reps + 1,
		Lapses:     lapses,
		LastReview: &reviewed,
		Due:        result.NextReviewTime,
	}
}

// ValidateParameters checks that a Parameters set is well-formed: every
// weight finite and within its bound, and RequestRetention in (0.7, 0.99).
func ValidateParameters(params Parameters) bool {
	if !finite(params.RequestRetention) || params.RequestRetention <= 0.7 || params.RequestRetention >= 0.99 {
		return false
	}
	for i, w := range params.W {
		if !finite(w) {
			return false
		}
		if i < 4 {
			if w < 0.01 || w > 100 {
				return false
			}
		} else {
			if w < -10 || w > 10 {
				return false
			}
		}
	}
	return true
}
