// Package prompt builds the versioned system/user messages sent to LLM
// ranking providers. Exactly one version is "current"; that version
// participates in the recommendation cache key so a template change never
// serves a stale-shaped response from cache.
package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/iconiconii/FxxkLc-sub005/internal/candidates"
)

// V1 is the only template version implemented so far. Bumping the version
// requires advancing the response parsing in internal/providers
// (rankResponseDTO, decoded in OpenAIProvider.Rank) in lockstep.
const V1 = "v1"

// CurrentVersion is the single source of truth for the active prompt
// version: internal/recommend reads it for both template selection and the
// cache key, so the version never has to be kept in sync across two
// call sites.
func CurrentVersion() string { return V1 }

// Options mirrors the caller-supplied ranking preferences the template
// renders into the user message.
type Options struct {
	Limit                int
	PromptVersion        string
	Objective            string
	TargetDomains        []string
	DifficultyPreference string
	TimeboxMinutes       int
}

// Prompt is the rendered system/user message pair ready to hand to a
// Provider.
type Prompt struct {
	SystemMessage string
	UserMessage   string
}

type candidateDTO struct {
	ProblemID string   `json:"problemId"`
	Title     string   `json:"title"`
	Topic     string   `json:"topic,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Build renders the system/user message pair for the given version. An
// unrecognized version falls back to V1, since V1 is the only template
// this codebase ships.
func Build(version string, cands []candidates.ProblemCandidate, opts Options) (Prompt, error) {
	switch version {
	case V1, "":
		return buildV1(cands, opts)
	default:
		return buildV1(cands, opts)
	}
}

func buildV1(cands []candidates.ProblemCandidate, opts Options) (Prompt, error) {
	dtos := make([]candidateDTO, 0, len(cands))
	for _, c := range cands {
		dtos = append(dtos, candidateDTO{
			ProblemID: c.ProblemID,
			Title:     c.Title,
			Topic:     c.Topic,
			Tags:      c.Tags,
		})
	}
	encoded, err := json.Marshal(dtos)
	if err != nil {
		return Prompt{}, fmt.Errorf("prompt: encode candidates: %w", err)
	}

	system := "You are an algorithm-interview practice coach. Given a JSON array of " +
		"candidate problems, select and rank the most useful ones to study next. " +
		"Respond with strictly valid JSON matching " +
		`{"items":[{"problemId":string,"reason":string,"confidence":number,"score":number}]}` +
		" and nothing else. confidence and score are both in [0,1]. Preserve the " +
		"candidate problemId values exactly as supplied; do not invent new ids."

	user := fmt.Sprintf(
		"Candidates (%d):\n%s\n\nLimit: %d\nObjective: %s\nTarget domains: %v\n"+
			"Difficulty preference: %s\nTimebox (minutes): %d\n\n"+
			`Return strictly {"items":[...]} with at most %d items, ordered best-first.`,
		len(dtos), encoded, opts.Limit, opts.Objective, opts.TargetDomains,
		opts.DifficultyPreference, opts.TimeboxMinutes, opts.Limit,
	)

	return Prompt{SystemMessage: system, UserMessage: user}, nil
}
