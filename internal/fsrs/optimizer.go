package fsrs

import "math"

// minLogsForOptimization is the minimum review history size before a fit
// is attempted; below this, the current parameters are returned unchanged.
const minLogsForOptimization = 30

// optimizerLearningRate, optimizerMaxIterations, optimizerEpsilon,
// optimizerGradTolerance tune the gradient descent below.
const (
	optimizerLearningRate  = 0.01
	optimizerMaxIterations = 100
	optimizerEpsilon       = 1e-6
	optimizerGradTolerance = 1e-6
)

// ReviewLogSample is the minimal slice of a ReviewLog the optimizer needs:
// the stability the card had going into the review, the elapsed days since
// the prior review, and whether the rating counted as a successful recall.
type ReviewLogSample struct {
	PreReviewStability float64
	ElapsedDays        float64
	Rating             Rating
}

// Optimizer outcome labels, suitable for direct use as a metrics label
// value (see internal/metrics.Recorder.RecordOptimizerRun).
const (
	OptimizerApplied                 = "applied"
	OptimizerSkippedInsufficientData = "skipped_insufficient_data"
	OptimizerSkippedInvalid          = "skipped_invalid"
)

// OptimizeParameters fits params to a user's review history by gradient
// descent on the mean-squared error between predicted retrievability and
// observed recall success. It returns currentParams unchanged, with an
// outcome describing why, whenever there are fewer than 30 logs or the
// optimization does not converge to a valid parameter set.
func OptimizeParameters(logs []ReviewLogSample, currentParams Parameters) (Parameters, string) {
	if len(logs) < minLogsForOptimization {
		return currentParams, OptimizerSkippedInsufficientData
	}

	result := func() (out Parameters, ok bool) {
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		return gradientDescent(logs, currentParams), true
	}
	params, ok := result()
	if !ok {
		return currentParams, OptimizerSkippedInvalid
	}
	if !ValidateParameters(params) {
		return currentParams, OptimizerSkippedInvalid
	}
	return params, OptimizerApplied
}

func loss(logs []ReviewLogSample, params Parameters) float64 {
	var sumSq float64
	for _, l := range logs {
		predicted := math.Pow(0.9, l.ElapsedDays/l.PreReviewStability)
		observed := 0.0
		if l.Rating >= Good {
			observed = 1.0
		}
		diff := predicted - observed
		sumSq += diff * diff
	}
	return sumSq / float64(len(logs))
}

// gradientDescent runs central-difference numerical gradient descent over
// the 17 weights (RequestRetention is left untouched; it is a policy
// choice, not a fitted memory parameter).
func gradientDescent(logs []ReviewLogSample, params Parameters) Parameters {
	current := params
	for iter := 0; iter < optimizerMaxIterations; iter++ {
		grad, norm := numericalGradient(logs, current)
		if norm < optimizerGradTolerance {
			break
		}
		for i := range current.W {
			current.W[i] -= optimizerLearningRate * grad[i]
		}
	}
	return current
}

func numericalGradient(logs []ReviewLogSample, params Parameters) (grad [17]float64, norm float64) {
	for i := range params.W {
		plus := params
		plus.W[i] += optimizerEpsilon
		minus := params
		minus.W[i] -= optimizerEpsilon

		g := (loss(logs, plus) - loss(logs, minus)) / (2 * optimizerEpsilon)
		grad[i] = g
		norm += g * g
	}
	norm = math.Sqrt(norm)
	return grad, norm
}
