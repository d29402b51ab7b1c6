package cards

import (
	"testing"
	"time"

	"github.com/iconiconii/FxxkLc-sub005/internal/fsrs"
	"github.com/leanovate/gopter"
	gopterCmds "github.com/leanovate/gopter/commands"
	"github.com/leanovate/gopter/gen"
)

// Stateful command-sequence test for SubmitReview, mirroring the teacher's
// propertytest/commands.go + property_command_sequences_test.go pattern:
// a ProtoCommands harness drives random sequences of SubmitReviewCmd against
// a fresh MemoryStore (the "system under test") and checks invariants a
// pure sequence of unit tests would not catch: every submission in a random
// sequence succeeds, and its next review date lands after the review that
// set it. The store's Reps are not checked (they reset to 0 whenever a
// review sends the card back to NEW).

// reviewModel is this test's in-memory mirror of a single card's state,
// independent of the SUT, used to check monotonic invariants across a run.
type reviewModel struct {
	reps        int
	lapses      int
	lastRatedAt time.Time
	seen        bool
}

// sequenceState is the gopter command-sequence model: one user, a handful
// of known problems, and the expected per-problem review counters.
type sequenceState struct {
	problemIDs []string
	models     map[string]*reviewModel
	now        time.Time
}

func (s *sequenceState) clone() *sequenceState {
	cp := &sequenceState{problemIDs: s.problemIDs, now: s.now, models: make(map[string]*reviewModel, len(s.models))}
	for k, v := range s.models {
		copied := *v
		cp.models[k] = &copied
	}
	return cp
}

// reviewSUT wraps a MemoryStore seeded with the sequence's problem catalog.
type reviewSUT struct {
	store Store
}

type submitReviewCmd struct {
	problemID string
	rating    fsrs.Rating
}

func (c *submitReviewCmd) Run(sut gopterCmds.SystemUnderTest) gopterCmds.Result {
	rsut := sut.(*reviewSUT)
	result, err := SubmitReview(rsut.store, "seq-user", c.problemID, c.rating, fsrs.ReviewTypeScheduled, fsrs.DefaultParameters(), time.Now())
	if err != nil {
		return err
	}
	return result
}

func (c *submitReviewCmd) NextState(state gopterCmds.State) gopterCmds.State {
	s := state.(*sequenceState).clone()
	m, ok := s.models[c.problemID]
	if !ok {
		m = &reviewModel{}
		s.models[c.problemID] = m
	}
	m.seen = true
	m.reps++
	if c.rating == fsrs.Again {
		m.lapses++
	}
	return s
}

func (c *submitReviewCmd) PreCondition(state gopterCmds.State) bool {
	return true
}

func (c *submitReviewCmd) PostCondition(state gopterCmds.State, result gopterCmds.Result) *gopter.PropResult {
	label := "SubmitReview(" + c.problemID + ")"
	if err, ok := result.(error); ok {
		return gopter.NewPropResult(false, label+": unexpected error "+err.Error())
	}
	submitResult, ok := result.(SubmitResult)
	if !ok {
		return gopter.NewPropResult(false, label+": unexpected result type")
	}
	s := state.(*sequenceState)
	m := s.models[c.problemID]
	if submitResult.NextReviewDate.Before(time.Now()) {
		return gopter.NewPropResult(false, label+": next review date is not in the future")
	}
	if m.reps < 1 {
		return gopter.NewPropResult(false, label+": reps did not advance")
	}
	return gopter.NewPropResult(true, label)
}

func (c *submitReviewCmd) String() string {
	return "SubmitReview(" + c.problemID + ")"
}

func genSubmitReviewCmd(s *sequenceState) gopter.Gen {
	ratingGen := gen.IntRange(1, 4).Map(func(v int) fsrs.Rating { return fsrs.Rating(v) })
	problemGen := gen.OneConstOf(
		anySlice(s.problemIDs)...,
	)
	return gopter.CombineGens(problemGen, ratingGen).Map(func(vals []interface{}) gopterCmds.Command {
		return &submitReviewCmd{problemID: vals[0].(string), rating: vals[1].(fsrs.Rating)}
	})
}

func anySlice(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func TestSubmitReview_CommandSequencesScheduleFutureReviews(t *testing.T) {
	problems := []Problem{
		{ID: "p1", Title: "Two Sum", Difficulty: DifficultyEasy},
		{ID: "p2", Title: "LRU Cache", Difficulty: DifficultyMedium},
		{ID: "p3", Title: "Word Ladder", Difficulty: DifficultyHard},
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	parameters.MaxSize = 10
	properties := gopter.NewProperties(parameters)

	newSUT := func(initialState gopterCmds.State) gopterCmds.SystemUnderTest {
		return &reviewSUT{store: NewMemoryStore(problems)}
	}
	destroySUT := func(gopterCmds.SystemUnderTest) {}

	initialStateGen := gen.Const(&sequenceState{
		problemIDs: []string{"p1", "p2", "p3"},
		models:     make(map[string]*reviewModel),
		now:        time.Now(),
	})

	commandGen := func(state gopterCmds.State) gopter.Gen {
		return genSubmitReviewCmd(state.(*sequenceState))
	}

	proto := &gopterCmds.ProtoCommands{
		NewSystemUnderTestFunc:     newSUT,
		DestroySystemUnderTestFunc: destroySUT,
		InitialStateGen:            initialStateGen,
		GenCommandFunc:             commandGen,
	}

	properties.Property("review submissions succeed and schedule future due dates", gopterCmds.Prop(proto))
	properties.TestingRun(t)
}
