package slug

import (
	"regexp"
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"punctuation dropped", "Hello, World!", "hello-world"},
		{"single letter", "A", "a"},
		{"surrounding whitespace", "   Go   Tips  ", "go-tips"},
		{"tabs and newlines", "one\ttwo\nthree", "one-two-three"},
		{"digits kept", "Top 10 Tricks", "top-10-tricks"},
		{"existing hyphens removed", "re-use it", "reuse-it"},
		{"non ascii letters dropped", "Café Crème", "caf-crme"},
		{"only symbols", "!!! ???", ""},
		{"empty", "", ""},
		{"symbol between words", "rock & roll", "rock-roll"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Make(tt.title); got != tt.want {
				t.Fatalf("Make(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestMake_Shape(t *testing.T) {
	t.Parallel()

	valid := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	titles := []string{
		"Hello, World!",
		"  leading and trailing  ",
		"MiXeD CaSe 123",
		"multiple     spaces\t\tand\ttabs",
		"emoji 🚀 launch",
		"under_score and dots.in.title",
	}
	for _, title := range titles {
		got := Make(title)
		if got == "" {
			t.Fatalf("Make(%q) returned empty slug", title)
		}
		if !valid.MatchString(got) {
			t.Fatalf("Make(%q) = %q, not a well-formed slug", title, got)
		}
		if strings.ToLower(got) != got {
			t.Fatalf("Make(%q) = %q, not lowercase", title, got)
		}
	}
}
