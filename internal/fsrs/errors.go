package fsrs

import "errors"

// ErrInvalidRating is returned when a rating falls outside {1,2,3,4}.
var ErrInvalidRating = errors.New("fsrs: invalid rating")

// ErrInvalidCard is returned when a card or its state is absent.
var ErrInvalidCard = errors.New("fsrs: invalid card")

// CalculationError wraps an arithmetic failure (NaN/Inf) surfaced during
// scheduling. Clamping is silent; only non-finite results are reported.
type CalculationError struct {
	Op  string
	Err error
}

func (e *CalculationError) Error() string {
	return "fsrs: calculation failed in " + e.Op + ": " + e.Err.Error()
}

func (e *CalculationError) Unwrap() error { return e.Err }

var errNonFinite = errors.New("non-finite result")
