// Package config assembles the process-wide Config from pflag-parsed CLI
// flags plus environment variables: flags take precedence, then
// environment, then a built-in default.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds the settings shared by every qmldiff subcommand.
type Config struct {
	HashtabPath      string // location of the hash = "string" text file
	HashtabCreate    bool   // create-hashtab: overwrite an existing hashtab file
	HashtabSyncDSN   string // optional internal/hashstore DSN (local sqlite path or libsql URL)
	HashtabAuthToken string // auth token for a remote libsql sync DSN
	Verbose          bool   // opt-in structured logging via the standard log package
	ShowDiff         bool   // apply-diffs: render a unified diff of changes
	JSONOutput       bool   // apply-diffs: emit one JSON result record per file
	Workers          int    // internal/walker worker pool size, 0 means runtime.NumCPU()
}

// RegisterFlags defines the pflag flags shared across subcommands on fs.
// Individual commands add their own positional/required flags separately.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("hashtab", "qml.hashtab", "path to the hashtab text file")
	fs.Bool("create", false, "overwrite an existing hashtab file")
	fs.String("sync-dsn", "", "optional internal/hashstore DSN for hashtab sync")
	fs.Bool("verbose", false, "enable verbose diagnostic logging")
	fs.Bool("diff", false, "show a unified diff of applied changes")
	fs.Bool("json", false, "emit JSON result records")
	fs.Int("workers", 0, "worker pool size, 0 uses all available CPUs")
}

// LoadDotEnv loads a .env file from the current directory, if one exists.
// A missing file is not an error here, matching godotenv's own behavior.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// FromFlags builds a Config from fs, falling back to QMLDIFF_* environment
// variables for settings that have no corresponding flag (the hashtab sync
// auth token) or were left at their flag default.
func FromFlags(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}

	hashtabPath, err := fs.GetString("hashtab")
	if err != nil {
		return nil, err
	}
	cfg.HashtabPath = hashtabPath

	create, err := fs.GetBool("create")
	if err != nil {
		return nil, err
	}
	cfg.HashtabCreate = create || envBool("QMLDIFF_HASHTAB_CREATE")

	syncDSN, err := fs.GetString("sync-dsn")
	if err != nil {
		return nil, err
	}
	if syncDSN == "" {
		syncDSN = os.Getenv("QMLDIFF_HASHTAB_SYNC_DSN")
	}
	cfg.HashtabSyncDSN = syncDSN
	cfg.HashtabAuthToken = os.Getenv("QMLDIFF_HASHTAB_AUTH_TOKEN")

	verbose, err := fs.GetBool("verbose")
	if err != nil {
		return nil, err
	}
	cfg.Verbose = verbose

	showDiff, err := fs.GetBool("diff")
	if err != nil {
		return nil, err
	}
	cfg.ShowDiff = showDiff

	jsonOutput, err := fs.GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.JSONOutput = jsonOutput

	workers, err := fs.GetInt("workers")
	if err != nil {
		return nil, err
	}
	cfg.Workers = workers

	return cfg, nil
}

func envBool(name string) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}
