// Package recommend orchestrates the full recommendation pipeline: derive
// a cache key, build FSRS candidates, invoke the provider chain, map the
// result into response items, cache it, and emit observability metadata.
package recommend

// Request is a caller's recommendation ask. Limit is clamped to [1, 50]
// and a non-zero TimeboxMinutes to [5, 240] (zero means unset and is left
// as is); TargetDomains is filtered against the
// configured whitelist; an unrecognized Objective or DifficultyPreference
// is silently dropped.
type Request struct {
	UserID               string
	Limit                int
	Objective            string
	TargetDomains        []string
	DifficultyPreference string
	TimeboxMinutes       int
}

// Item is one recommended problem in a Response.
type Item struct {
	ProblemID  string
	Title      string
	Difficulty string
	Reason     string
	Confidence float64
	Score      float64
	Source     string
}

// Meta is a Response's metadata block: how the items were produced and
// whether they came from cache.
type Meta struct {
	TraceID        string
	Cached         bool
	ChainHops      []string
	Strategy       string
	FallbackReason string
	ChainID        string
	PromptVersion  string
}

// Response is the full recommendation result.
type Response struct {
	Items []Item
	Meta  Meta
}
