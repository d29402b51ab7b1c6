// Package candidates builds the per-request ProblemCandidate set the
// provider chain ranks: FSRS-derived urgency signals enriched with problem
// metadata. Candidates are constructed per request and discarded; they are
// never persisted.
package candidates

// ProblemCandidate is a problem enriched with FSRS-derived urgency signals,
// ready to hand to a ranking provider.
type ProblemCandidate struct {
	ProblemID            string
	Title                string
	Topic                string
	Difficulty           string
	Tags                 []string
	Attempts             int
	RecentAccuracy       float64
	RetentionProbability float64
	DaysOverdue          int
	UrgencyScore         float64
}
