package candidates

import (
	"time"

	"github.com/iconiconii/FxxkLc-sub005/internal/fsrs"
)

// QueueSummary is the thin aggregation behind an endpoint like
// `GET /review/queue`: counts of each cohort the candidate builder draws
// from, without building full ProblemCandidate records for all of them.
type QueueSummary struct {
	NewCards        int
	LearningCards   int
	ReviewCards     int
	RelearningCards int
	TotalCount      int
}

// BuildQueueSummary counts a user's cards by cohort: LEARNING/RELEARNING
// cards are always "ready"; REVIEW cards only count once due; NEW counts
// both explicitly-created NEW cards and problems the user has never
// touched at all.
func (b *Builder) BuildQueueSummary(userID string, now time.Time) (QueueSummary, error) {
	var summary QueueSummary

	userCards, err := b.Store.ListCardsForUser(userID)
	if err != nil {
		return QueueSummary{}, err
	}
	seen := make(map[string]bool, len(userCards))
	for _, c := range userCards {
		seen[c.ProblemID] = true
		switch c.FSRS.State {
		case fsrs.New:
			summary.NewCards++
		case fsrs.Learning:
			summary.LearningCards++
		case fsrs.Relearning:
			summary.RelearningCards++
		case fsrs.Review:
			if !c.FSRS.Due.After(now) {
				summary.ReviewCards++
			}
		}
	}

	problems, err := b.Store.ListProblems()
	if err != nil {
		return QueueSummary{}, err
	}
	for _, p := range problems {
		if !seen[p.ID] {
			summary.NewCards++
		}
	}

	summary.TotalCount = summary.NewCards + summary.LearningCards + summary.ReviewCards + summary.RelearningCards
	return summary, nil
}
