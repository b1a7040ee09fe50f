package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_UsesDifferentLimitsByScope(t *testing.T) {
	t.Parallel()

	limiter := New(Config{Window: time.Minute, Read: 2, Write: 1})
	now := time.Unix(1_700_000_000, 0).UTC()

	// Read allows 2 then blocks.
	if r := limiter.Take(now, ScopeRead, "1.1.1.1"); !r.Allowed || r.Remaining != 1 {
		t.Fatalf("read #1 = %#v", r)
	}
	if r := limiter.Take(now, ScopeRead, "1.1.1.1"); !r.Allowed || r.Remaining != 0 {
		t.Fatalf("read #2 = %#v", r)
	}
	if r := limiter.Take(now, ScopeRead, "1.1.1.1"); r.Allowed || r.Remaining != 0 {
		t.Fatalf("read #3 = %#v", r)
	}

	// Writes are counted separately.
	if r := limiter.Take(now, ScopeWrite, "1.1.1.1"); !r.Allowed || r.Limit != 1 {
		t.Fatalf("write #1 = %#v", r)
	}
	if r := limiter.Take(now, ScopeWrite, "1.1.1.1"); r.Allowed {
		t.Fatalf("write #2 should be denied: %#v", r)
	}

	// Other clients have their own counters.
	if r := limiter.Take(now, ScopeRead, "2.2.2.2"); !r.Allowed {
		t.Fatalf("other client denied: %#v", r)
	}
}

func TestLimiter_ResetsAfterWindow(t *testing.T) {
	t.Parallel()

	limiter := New(Config{Window: time.Minute, Read: 1, Write: 1})
	t0 := time.Unix(1_700_000_000, 0).UTC()

	if r := limiter.Take(t0, ScopeRead, "1.1.1.1"); !r.Allowed {
		t.Fatalf("first request denied: %#v", r)
	}
	if r := limiter.Take(t0.Add(10*time.Second), ScopeRead, "1.1.1.1"); r.Allowed {
		t.Fatalf("second request should be denied: %#v", r)
	}
	if r := limiter.Take(t0.Add(61*time.Second), ScopeRead, "1.1.1.1"); !r.Allowed {
		t.Fatalf("request after reset denied: %#v", r)
	}
}

func TestLimiter_ZeroLimitDisablesScope(t *testing.T) {
	t.Parallel()

	limiter := New(Config{Window: time.Minute, Read: 0, Write: 1})
	now := time.Unix(1_700_000_000, 0).UTC()

	for i := 0; i < 50; i++ {
		if r := limiter.Take(now, ScopeRead, "1.1.1.1"); !r.Allowed || r.Limit != 0 {
			t.Fatalf("read #%d = %#v, want unlimited", i+1, r)
		}
	}
	if len(limiter.entries) != 0 {
		t.Fatalf("unlimited scope should not track counters, got %d", len(limiter.entries))
	}
	if (Config{}).Enabled() {
		t.Fatalf("zero config should be disabled")
	}
}

func TestLimiter_ResetInCountsDownToWindowEnd(t *testing.T) {
	t.Parallel()

	limiter := New(Config{Window: time.Minute, Read: 5})
	t0 := time.Unix(1_700_000_000, 0).UTC() // 20s into a minute window

	r := limiter.Take(t0, ScopeRead, "1.1.1.1")
	if r.ResetIn != 40 {
		t.Fatalf("ResetIn = %d, want 40", r.ResetIn)
	}
	if r.ResetAt != 1_700_000_040 {
		t.Fatalf("ResetAt = %d, want 1700000040", r.ResetAt)
	}
}
