package candidates

import (
	"math"
	"sort"
	"time"

	"github.com/iconiconii/FxxkLc-sub005/internal/cards"
	"github.com/iconiconii/FxxkLc-sub005/internal/fsrs"
	"go.uber.org/zap"
)

const (
	minLimit = 1
	maxLimit = 50
)

func clampLimit(limit int) int {
	if limit < minLimit {
		return minLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Builder assembles ProblemCandidate records for a user from the FSRS card
// store. It never mutates cards; it only reads them.
type Builder struct {
	Store  cards.Store
	Logger *zap.Logger
}

// NewBuilder constructs a Builder; a nil logger falls back to zap.NewNop().
func NewBuilder(store cards.Store, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{Store: store, Logger: logger}
}

// Build produces up to limit candidates for userID, ordered urgent-first
// (least-practiced, weakest first). Any failure in the primary path
// degrades to the recent-problems fallback.
func (b *Builder) Build(userID string, limit int, now time.Time) ([]ProblemCandidate, error) {
	limit = clampLimit(limit)

	out, err := b.buildFromCards(userID, limit, now)
	if err != nil {
		b.Logger.Warn("candidate build degraded to recent-problems fallback",
			zap.String("user_id", userID), zap.Error(err))
		out = nil
	}
	if len(out) == 0 {
		out, err = b.fallbackRecent(limit)
		if err != nil {
			return nil, err
		}
	}
	b.enrichTags(out)
	return out, nil
}

func (b *Builder) buildFromCards(userID string, limit int, now time.Time) ([]ProblemCandidate, error) {
	userCards, err := b.Store.ListCardsForUser(userID)
	if err != nil {
		return nil, err
	}
	// A user with no card history yields nothing here, so Build falls back
	// to the most recent problems.
	if len(userCards) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(userCards))
	out := make([]ProblemCandidate, 0, limit)
	for _, c := range userCards {
		seen[c.ProblemID] = true
		if !b.isDueOrActive(c.FSRS, now) {
			continue
		}
		cand, ok := b.fromCard(c, now)
		if !ok {
			continue
		}
		out = append(out, cand)
	}

	// Problems never touched by this user are treated as NEW candidates.
	problems, err := b.Store.ListProblems()
	if err != nil {
		return nil, err
	}
	for _, p := range problems {
		if seen[p.ID] {
			continue
		}
		out = append(out, ProblemCandidate{
			ProblemID:            p.ID,
			Title:                p.Title,
			Difficulty:           string(p.Difficulty),
			Tags:                 append([]string(nil), p.Tags...),
			Attempts:             0,
			RecentAccuracy:       0.5,
			RetentionProbability: 0,
			DaysOverdue:          0,
			UrgencyScore:         0.5,
		})
	}

	sortByUrgency(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// isDueOrActive reports whether a card belongs in the candidate set right
// now: LEARNING/RELEARNING cards are always ready, REVIEW cards only once
// due, and NEW cards (created but never reviewed) are always eligible.
func (b *Builder) isDueOrActive(c fsrs.Card, now time.Time) bool {
	switch c.State {
	case fsrs.New, fsrs.Learning, fsrs.Relearning:
		return true
	case fsrs.Review:
		return !c.Due.After(now)
	default:
		return false
	}
}

func (b *Builder) fromCard(c cards.Card, now time.Time) (ProblemCandidate, bool) {
	problem, ok := b.Store.GetProblem(c.ProblemID)
	if !ok {
		return ProblemCandidate{}, false
	}

	fc := c.FSRS
	elapsed := 0
	if fc.LastReview != nil {
		days := now.Sub(*fc.LastReview).Hours() / 24.0
		if days > 0 {
			elapsed = int(math.Floor(days))
		}
	}

	acc := 0.3 +
		math.Min(fc.Stability/30, 1)*0.7 -
		math.Min(fc.Difficulty/10, 0.5) +
		math.Min(float64(fc.Reps)*0.02, 0.2) -
		math.Min(float64(fc.Lapses)*0.1, 0.4)
	acc = clamp01(acc)

	retention := 0.0
	if fc.Stability > 0 {
		retention = clamp01(math.Exp(-float64(elapsed) / fc.Stability))
	}

	daysOverdue := 0
	if fc.Due.Before(now) {
		daysOverdue = int(math.Floor(now.Sub(fc.Due).Hours() / 24.0))
		if daysOverdue < 0 {
			daysOverdue = 0
		}
	}

	urgency := clamp01((1 - retention) + math.Min(0.3, math.Log(float64(daysOverdue)+1)/10))

	return ProblemCandidate{
		ProblemID:            problem.ID,
		Title:                problem.Title,
		Difficulty:           string(problem.Difficulty),
		Tags:                 append([]string(nil), problem.Tags...),
		Attempts:             fc.Reps,
		RecentAccuracy:       acc,
		RetentionProbability: retention,
		DaysOverdue:          daysOverdue,
		UrgencyScore:         urgency,
	}, true
}

// sortByUrgency orders least-practiced, weakest-first: ascending attempts,
// then ascending recent accuracy.
func sortByUrgency(out []ProblemCandidate) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Attempts != out[j].Attempts {
			return out[i].Attempts < out[j].Attempts
		}
		return out[i].RecentAccuracy < out[j].RecentAccuracy
	})
}

// fallbackRecent degrades to the most recently added problems with neutral
// priors, used for new users with no card history (or any primary-path
// failure).
func (b *Builder) fallbackRecent(limit int) ([]ProblemCandidate, error) {
	problems, err := b.Store.ListRecentProblems(limit)
	if err != nil {
		return nil, err
	}
	out := make([]ProblemCandidate, 0, len(problems))
	for _, p := range problems {
		out = append(out, ProblemCandidate{
			ProblemID:            p.ID,
			Title:                p.Title,
			Difficulty:           string(p.Difficulty),
			Tags:                 append([]string(nil), p.Tags...),
			Attempts:             0,
			RecentAccuracy:       0.5,
			RetentionProbability: 0,
			DaysOverdue:          0,
			UrgencyScore:         0.5,
		})
	}
	return out, nil
}

// enrichTags fills in tags for every candidate that has none, in a single
// pass over the candidates. A candidate whose problem is not found keeps its
// tags as-is; a panic during enrichment is recovered with a warning.
func (b *Builder) enrichTags(out []ProblemCandidate) {
	defer func() {
		if r := recover(); r != nil {
			b.Logger.Warn("tag enrichment panicked, leaving tags as-is", zap.Any("recover", r))
		}
	}()
	for i := range out {
		if len(out[i].Tags) > 0 {
			continue
		}
		p, ok := b.Store.GetProblem(out[i].ProblemID)
		if !ok {
			continue
		}
		out[i].Tags = append([]string(nil), p.Tags...)
	}
}
