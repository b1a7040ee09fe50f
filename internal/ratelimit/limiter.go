package ratelimit

import (
	"sync"
	"time"
)

type Scope string

const (
	ScopeRead  Scope = "read"
	ScopeWrite Scope = "write"
)

// maxEntries bounds the counter map; stale windows are dropped past it.
const maxEntries = 100000

// Config sets per-client request limits for each fixed window. A limit of 0
// disables limiting for that scope.
type Config struct {
	Window time.Duration
	Read   int
	Write  int
}

func (c Config) Enabled() bool {
	return c.Read > 0 || c.Write > 0
}

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   int64
	ResetIn   int64
}

type key struct {
	scope  Scope
	client string
}

type counter struct {
	windowStart int64
	count       int
}

// Limiter is a fixed-window counter keyed by scope and client.
type Limiter struct {
	cfg     Config
	windowS int64

	mu      sync.Mutex
	entries map[key]counter
}

func New(cfg Config) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	windowS := int64(cfg.Window / time.Second)
	if windowS <= 0 {
		windowS = 1
	}
	return &Limiter{
		cfg:     cfg,
		windowS: windowS,
		entries: make(map[key]counter, 1024),
	}
}

func (l *Limiter) Take(now time.Time, scope Scope, client string) Result {
	limit := l.limit(scope)
	if limit <= 0 {
		return Result{Allowed: true, ResetAt: now.Unix()}
	}

	unixNow := now.Unix()
	windowStart := unixNow / l.windowS * l.windowS
	resetAt := windowStart + l.windowS
	k := key{scope: scope, client: client}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[k]
	if !ok || entry.windowStart != windowStart {
		entry = counter{windowStart: windowStart}
	}

	allowed := entry.count < limit
	if allowed {
		entry.count++
	}
	remaining := limit - entry.count
	if remaining < 0 {
		remaining = 0
	}
	l.entries[k] = entry

	if len(l.entries) > maxEntries {
		l.cleanup(windowStart - l.windowS)
	}

	return Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
		ResetIn:   resetAt - unixNow,
	}
}

func (l *Limiter) limit(scope Scope) int {
	switch scope {
	case ScopeRead:
		return l.cfg.Read
	case ScopeWrite:
		return l.cfg.Write
	default:
		return 0
	}
}

func (l *Limiter) cleanup(olderThanWindowStart int64) {
	for k, v := range l.entries {
		if v.windowStart <= olderThanWindowStart {
			delete(l.entries, k)
		}
	}
}
