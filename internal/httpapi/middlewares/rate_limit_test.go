package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quill/internal/ratelimit"

	"github.com/labstack/echo/v4"
)

func newLimitedEcho(cfg ratelimit.Config) *echo.Echo {
	fixed := time.Unix(1_700_000_000, 0).UTC()
	e := echo.New()
	e.Use(newRateLimitMiddleware(ratelimit.New(cfg), func() time.Time { return fixed }))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.POST("/x", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
	return e
}

func serve(e *echo.Echo, method, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/x", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitMiddleware_BlocksAfterLimit(t *testing.T) {
	t.Parallel()

	e := newLimitedEcho(ratelimit.Config{Window: time.Minute, Read: 2, Write: 1})

	for i := 0; i < 2; i++ {
		rec := serve(e, http.MethodGet, "1.2.3.4:1234")
		if rec.Code != http.StatusOK {
			t.Fatalf("request #%d status = %d, want 200", i+1, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "2" {
			t.Fatalf("request #%d X-RateLimit-Limit = %q, want 2", i+1, rec.Header().Get("X-RateLimit-Limit"))
		}
	}

	rec := serve(e, http.MethodGet, "1.2.3.4:1234")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "40" {
		t.Fatalf("Retry-After = %q, want 40", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("RateLimit-Reset") == "" || rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatalf("reset headers should be present")
	}
	if body := rec.Body.String(); body != "{\"error\":\"rate limit exceeded\"}\n" {
		t.Fatalf("body = %q", body)
	}
}

func TestRateLimitMiddleware_WritesHaveOwnBudget(t *testing.T) {
	t.Parallel()

	e := newLimitedEcho(ratelimit.Config{Window: time.Minute, Read: 1, Write: 1})

	if rec := serve(e, http.MethodGet, "5.6.7.8:4321"); rec.Code != http.StatusOK {
		t.Fatalf("read status = %d, want 200", rec.Code)
	}
	if rec := serve(e, http.MethodPost, "5.6.7.8:4321"); rec.Code != http.StatusCreated {
		t.Fatalf("write status = %d, want 201", rec.Code)
	}
	if rec := serve(e, http.MethodPost, "5.6.7.8:4321"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second write status = %d, want 429", rec.Code)
	}
	if rec := serve(e, http.MethodPost, "9.9.9.9:1"); rec.Code != http.StatusCreated {
		t.Fatalf("other client write status = %d, want 201", rec.Code)
	}
}

func TestRateLimitMiddleware_DisabledScopeSetsNoHeaders(t *testing.T) {
	t.Parallel()

	e := newLimitedEcho(ratelimit.Config{Window: time.Minute, Read: 0, Write: 1})
	rec := serve(e, http.MethodGet, "1.2.3.4:1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "" {
		t.Fatalf("X-RateLimit-Limit = %q, want empty", got)
	}
}

func TestClientIPFromRemoteAddr(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"1.2.3.4:80":  "1.2.3.4",
		"[::1]:8080":  "::1",
		"10.0.0.1":    "10.0.0.1",
		" 8.8.8.8:1 ": "8.8.8.8",
	}
	for in, want := range tests {
		if got := clientIPFromRemoteAddr(in); got != want {
			t.Fatalf("clientIPFromRemoteAddr(%q) = %q, want %q", in, got, want)
		}
	}
}
