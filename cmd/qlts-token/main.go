// Command qlts-token mints an access token for an existing account. The
// server has no login endpoint; operators hand out tokens with this tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanminhgroup/qlts/internal/auth"
	"github.com/vanminhgroup/qlts/internal/config"
	"github.com/vanminhgroup/qlts/internal/db"
	"github.com/vanminhgroup/qlts/internal/store"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("qlts-token", flag.ExitOnError)
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to SQLite database file")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path to SQLite database file")
	phone := fs.String("phone", "", "phone number of the account")
	fs.StringVar(phone, "p", "", "phone number of the account")
	ttl := fs.Duration("ttl", cfg.TokenTTL, "token lifetime")
	fs.Parse(os.Args[1:])

	if *phone == "" {
		fmt.Fprintln(os.Stderr, "Usage: qlts-token -p <phone> [-d <db>] [-ttl <duration>]")
		os.Exit(1)
	}

	token, expires, err := mint(cfg, *phone, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expires.Format(time.RFC3339))
}

func mint(cfg *config.Config, phone string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = auth.TokenExpiry
	}
	if _, err := os.Stat(cfg.DBPath); err != nil {
		return "", time.Time{}, fmt.Errorf("database %s: %w", cfg.DBPath, err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return "", time.Time{}, err
	}
	defer database.Close()

	ctx := context.Background()
	account, err := store.GetAccountByPhone(ctx, database, phone)
	if err != nil {
		return "", time.Time{}, err
	}
	if account == nil || !account.Active {
		return "", time.Time{}, fmt.Errorf("no active account with phone %s", phone)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		if secret, err = store.GetJWTSecret(ctx, database); err != nil {
			return "", time.Time{}, err
		}
	}

	token, err := auth.GenerateToken(secret, account, ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, time.Now().Add(ttl), nil
}
