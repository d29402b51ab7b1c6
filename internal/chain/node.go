// Package chain dispatches an ordered list of ranking providers with
// per-node resilience (rate limiting, timeout, retry, circuit breaking)
// and error-class-driven descent, terminating in a deterministic default
// provider.
package chain

import (
	"time"

	"github.com/iconiconii/FxxkLc-sub005/internal/providers"
)

// Node is one entry in the provider chain's configured order.
type Node struct {
	Name           string
	Enabled        bool
	Timeout        time.Duration
	RetryAttempts  int
	OnErrorsToNext map[providers.ErrorClass]bool
}

// AllowsNext reports whether class is configured to continue chain
// descent to the next node rather than halting immediately to default.
func (n Node) AllowsNext(class providers.ErrorClass) bool {
	return n.OnErrorsToNext[class]
}

// Config is the ordered chain configuration plus the feature toggle.
type Config struct {
	Enabled bool
	ChainID string
	Nodes   []Node
}
