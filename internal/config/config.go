// Package config assembles runtime settings from a .env file, environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultDBPath     = "qlts.sqlite3"
	DefaultAddr       = ":3076"
	DefaultAdminPhone = "admin"
	DefaultTokenTTL   = 240 * time.Hour
)

// Config holds the settings shared by the server and qlts-token. TokenTTL
// is read only by qlts-token.
type Config struct {
	DBPath     string
	Addr       string
	AdminPhone string
	LogPath    string
	TokenTTL   time.Duration
	// JWTSecret signs tokens. When empty, a secret stored in the database is used.
	JWTSecret string
}

// FromEnv loads .env (if present) and returns the configuration described by
// the environment.
func FromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		DBPath:     envOr("QLTS_DB", DefaultDBPath),
		Addr:       envOr("QLTS_ADDR", DefaultAddr),
		AdminPhone: envOr("QLTS_ADMIN_PHONE", DefaultAdminPhone),
		LogPath:    os.Getenv("QLTS_LOG"),
		TokenTTL:   DefaultTokenTTL,
		JWTSecret:  os.Getenv("JWT_SECRET"),
	}

	if v := os.Getenv("QLTS_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("invalid QLTS_TOKEN_TTL %q", v)
		}
		cfg.TokenTTL = ttl
	}

	return cfg, nil
}

// Load returns the server configuration: environment first, then flags from
// args (without the program name). It returns flag.ErrHelp when help was
// requested; usage has been written to out by then.
func Load(args []string, out io.Writer) (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("qlts", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")

	fs.StringVar(&cfg.AdminPhone, "user", cfg.AdminPhone, "")
	fs.StringVar(&cfg.AdminPhone, "u", cfg.AdminPhone, "")

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.Usage = func() {
		fmt.Fprintf(out, `Usage: qlts [flags]

Flags:
  -d, -db <path>          SQLite database path (default: %s, env QLTS_DB)
  -a, -addr <host:port>   listen address (default: %s, env QLTS_ADDR)
  -u, -user <phone>       admin login on first run (default: %s, env QLTS_ADMIN_PHONE)
  -l, -log <path>         log file path (default: none, env QLTS_LOG)
  -h, -help               show this help and exit

Environment:
  JWT_SECRET              token signing secret (default: generated and stored in the database)
`, DefaultDBPath, DefaultAddr, DefaultAdminPhone)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
