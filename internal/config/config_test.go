package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test in an empty directory so no stray .env is read.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"QLTS_DB", "QLTS_ADDR", "QLTS_ADMIN_PHONE", "QLTS_LOG", "QLTS_TOKEN_TTL", "JWT_SECRET"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	cfg, err := Load(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultAdminPhone, cfg.AdminPhone)
	assert.Empty(t, cfg.LogPath)
	assert.Equal(t, DefaultTokenTTL, cfg.TokenTTL)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoadEnvThenFlags(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)
	t.Setenv("QLTS_DB", "/var/lib/qlts/env.sqlite3")
	t.Setenv("QLTS_ADDR", ":9000")
	t.Setenv("QLTS_TOKEN_TTL", "1h")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load([]string{"-a", ":9100"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/qlts/env.sqlite3", cfg.DBPath)
	assert.Equal(t, ":9100", cfg.Addr, "flags win over the environment")
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)
	require.NoError(t, os.Unsetenv("QLTS_ADMIN_PHONE"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("QLTS_ADMIN_PHONE=0911222333\n"), 0o600))

	cfg, err := Load(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "0911222333", cfg.AdminPhone)
}

func TestLoadErrors(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	_, err := Load([]string{"-h"}, io.Discard)
	assert.ErrorIs(t, err, flag.ErrHelp)

	_, err = Load([]string{"extra"}, io.Discard)
	assert.Error(t, err)

	_, err = Load([]string{"-token-ttl", "30m"}, io.Discard)
	assert.Error(t, err, "token lifetime is not a server flag")

	t.Setenv("QLTS_TOKEN_TTL", "soon")
	_, err = Load(nil, io.Discard)
	assert.Error(t, err)
}
