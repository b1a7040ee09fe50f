package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeEnvFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	return path
}

func TestLoadDotEnv_MissingFilesAreIgnored(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, ".env"), filepath.Join(dir, ".env.local")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
}

func TestLoadDotEnv_LoadsValuesAndRespectsExistingEnv(t *testing.T) {
	t.Setenv("QUILL_DOTENV_KEEP", "from-process")

	path := writeEnvFile(t,
		"# comment",
		"QUILL_DOTENV_A=1",
		`QUILL_DOTENV_QUOTED="a b c"`,
		"export QUILL_DOTENV_EXPORTED=yes",
		"QUILL_DOTENV_KEEP=from-file",
		"",
	)
	t.Cleanup(func() {
		os.Unsetenv("QUILL_DOTENV_A")
		os.Unsetenv("QUILL_DOTENV_QUOTED")
		os.Unsetenv("QUILL_DOTENV_EXPORTED")
	})

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	want := map[string]string{
		"QUILL_DOTENV_A":        "1",
		"QUILL_DOTENV_QUOTED":   "a b c",
		"QUILL_DOTENV_EXPORTED": "yes",
		"QUILL_DOTENV_KEEP":     "from-process",
	}
	for key, value := range want {
		if got := os.Getenv(key); got != value {
			t.Fatalf("%s = %q, want %q", key, got, value)
		}
	}
}

func TestLoadDotEnv_EarlierFileWins(t *testing.T) {
	first := writeEnvFile(t, "QUILL_DOTENV_ORDER=first")
	second := writeEnvFile(t, "QUILL_DOTENV_ORDER=second", "QUILL_DOTENV_ONLY_SECOND=yes")
	t.Cleanup(func() {
		os.Unsetenv("QUILL_DOTENV_ORDER")
		os.Unsetenv("QUILL_DOTENV_ONLY_SECOND")
	})

	if err := LoadDotEnv(first, second); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("QUILL_DOTENV_ORDER"); got != "first" {
		t.Fatalf("QUILL_DOTENV_ORDER = %q, want first", got)
	}
	if got := os.Getenv("QUILL_DOTENV_ONLY_SECOND"); got != "yes" {
		t.Fatalf("QUILL_DOTENV_ONLY_SECOND = %q, want yes", got)
	}
}

func TestLoadDotEnv_InvalidLineReturnsError(t *testing.T) {
	path := writeEnvFile(t, `QUILL_DOTENV_BAD="unterminated`)
	if err := LoadDotEnv(path); err == nil {
		t.Fatalf("LoadDotEnv() error = nil, want non-nil")
	}
}
