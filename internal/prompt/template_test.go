package prompt

import (
	"strings"
	"testing"

	"github.com/iconiconii/FxxkLc-sub005/internal/candidates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_V1_PreservesCandidateIDs(t *testing.T) {
	cands := []candidates.ProblemCandidate{
		{ProblemID: "p1", Title: "Two Sum", Tags: []string{"array"}},
		{ProblemID: "p2", Title: "LRU Cache"},
	}
	p, err := Build(CurrentVersion(), cands, Options{Limit: 2, Objective: "interview-prep"})
	require.NoError(t, err)
	assert.Contains(t, p.UserMessage, "p1")
	assert.Contains(t, p.UserMessage, "p2")
	assert.Contains(t, p.SystemMessage, "items")
	assert.True(t, strings.Contains(p.SystemMessage, "[0,1]"))
}

func TestBuild_UnknownVersionFallsBackToV1(t *testing.T) {
	p1, _ := Build(V1, nil, Options{Limit: 5})
	p2, _ := Build("v999", nil, Options{Limit: 5})
	assert.Equal(t, p1.SystemMessage, p2.SystemMessage)
}

func TestCurrentVersion_IsSingleSourceOfTruth(t *testing.T) {
	assert.Equal(t, "v1", CurrentVersion())
}
