package chain

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterConfig configures two token buckets: one global bucket shared
// across all users, one per user. Zero values disable the corresponding
// bucket (always allow).
type RateLimiterConfig struct {
	GlobalRPS   float64
	GlobalBurst int

	PerUserRPS   float64
	PerUserBurst int
}

// limiterSet owns the global bucket and a lazily-populated per-user
// registry. Acquisition is non-blocking (Allow()).
type limiterSet struct {
	global *rate.Limiter

	mu           sync.Mutex
	perUser      map[string]*rate.Limiter
	perUserRPS   rate.Limit
	perUserBurst int
}

func newLimiterSet(cfg RateLimiterConfig) *limiterSet {
	ls := &limiterSet{
		perUser:      make(map[string]*rate.Limiter),
		perUserRPS:   rate.Limit(cfg.PerUserRPS),
		perUserBurst: cfg.PerUserBurst,
	}
	if cfg.GlobalRPS > 0 {
		ls.global = rate.NewLimiter(rate.Limit(cfg.GlobalRPS), cfg.GlobalBurst)
	}
	return ls
}

// Allow reports whether a request for userID may proceed right now. Both
// the global and per-user buckets must admit the request.
func (ls *limiterSet) Allow(userID string) bool {
	if ls.global != nil && !ls.global.Allow() {
		return false
	}
	if ls.perUserRPS <= 0 {
		return true
	}
	ls.mu.Lock()
	l, ok := ls.perUser[userID]
	if !ok {
		l = rate.NewLimiter(ls.perUserRPS, ls.perUserBurst)
		ls.perUser[userID] = l
	}
	ls.mu.Unlock()
	return l.Allow()
}
