package config

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
)

func newFlagSet(t *testing.T) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("qmldiff", pflag.ContinueOnError)
	RegisterFlags(fs)
	return fs
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"QMLDIFF_HASHTAB_CREATE",
		"QMLDIFF_HASHTAB_SYNC_DSN",
		"QMLDIFF_HASHTAB_AUTH_TOKEN",
	} {
		old, had := os.LookupEnv(name)
		os.Unsetenv(name)
		t.Cleanup(func() {
			if had {
				os.Setenv(name, old)
			}
		})
	}
}

func TestFromFlagsDefaults(t *testing.T) {
	clearEnv(t)
	fs := newFlagSet(t)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := FromFlags(fs)
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}
	if cfg.HashtabPath != "qml.hashtab" {
		t.Errorf("unexpected hashtab path: %s", cfg.HashtabPath)
	}
	if cfg.HashtabCreate {
		t.Error("expected HashtabCreate false by default")
	}
	if cfg.HashtabSyncDSN != "" {
		t.Errorf("expected empty sync DSN, got %s", cfg.HashtabSyncDSN)
	}
	if cfg.Workers != 0 {
		t.Errorf("expected default workers 0, got %d", cfg.Workers)
	}
}

func TestFromFlagsOverridesFromCLI(t *testing.T) {
	clearEnv(t)
	fs := newFlagSet(t)
	if err := fs.Parse([]string{
		"--hashtab", "custom.hashtab",
		"--create",
		"--sync-dsn", "file:local.db",
		"--diff",
		"--json",
		"--workers", "4",
	}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := FromFlags(fs)
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}
	if cfg.HashtabPath != "custom.hashtab" {
		t.Errorf("unexpected hashtab path: %s", cfg.HashtabPath)
	}
	if !cfg.HashtabCreate {
		t.Error("expected HashtabCreate true")
	}
	if cfg.HashtabSyncDSN != "file:local.db" {
		t.Errorf("unexpected sync DSN: %s", cfg.HashtabSyncDSN)
	}
	if !cfg.ShowDiff || !cfg.JSONOutput {
		t.Error("expected diff and json flags true")
	}
	if cfg.Workers != 4 {
		t.Errorf("unexpected workers: %d", cfg.Workers)
	}
}

func TestFromFlagsFallsBackToEnvironment(t *testing.T) {
	clearEnv(t)
	os.Setenv("QMLDIFF_HASHTAB_CREATE", "true")
	os.Setenv("QMLDIFF_HASHTAB_SYNC_DSN", "libsql://example.turso.io")
	os.Setenv("QMLDIFF_HASHTAB_AUTH_TOKEN", "secret-token")

	fs := newFlagSet(t)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := FromFlags(fs)
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}
	if !cfg.HashtabCreate {
		t.Error("expected HashtabCreate true from environment fallback")
	}
	if cfg.HashtabSyncDSN != "libsql://example.turso.io" {
		t.Errorf("unexpected sync DSN: %s", cfg.HashtabSyncDSN)
	}
	if cfg.HashtabAuthToken != "secret-token" {
		t.Errorf("unexpected auth token: %s", cfg.HashtabAuthToken)
	}
}

func TestFromFlagsCLITakesPrecedenceOverEnv(t *testing.T) {
	clearEnv(t)
	os.Setenv("QMLDIFF_HASHTAB_SYNC_DSN", "libsql://example.turso.io")

	fs := newFlagSet(t)
	if err := fs.Parse([]string{"--sync-dsn", "file:explicit.db"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := FromFlags(fs)
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}
	if cfg.HashtabSyncDSN != "file:explicit.db" {
		t.Errorf("expected CLI flag to win, got %s", cfg.HashtabSyncDSN)
	}
}
