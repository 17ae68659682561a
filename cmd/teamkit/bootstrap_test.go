package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlesng35/teamkit/internal/app"
	"github.com/charlesng35/teamkit/internal/database"
	"github.com/charlesng35/teamkit/internal/middleware"
	"github.com/charlesng35/teamkit/internal/models"
)

func testRuntimeConfig(t *testing.T) *app.Config {
	t.Helper()
	cfg := &app.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "teamkit.sqlite")
	cfg.Server.RateLimit.Requests = 10
	cfg.Server.RateLimit.Window = time.Minute
	cfg.Monitoring.Health.Enabled = true
	cfg.Maintenance.Schedule = "@every 1h"
	_, err := app.ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	return cfg
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, loadEnvFile(""))
	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TEAMKIT_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("TEAMKIT_TEST_DOTENV") })

	require.NoError(t, loadEnvFile(path))
	require.Equal(t, "loaded", os.Getenv("TEAMKIT_TEST_DOTENV"))
}

func TestLoadApplicationConfigMissingPath(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "nope"))
	require.ErrorContains(t, err, "does not exist")
}

func TestBootstrapRuntimeServesHealth(t *testing.T) {
	cfg := testRuntimeConfig(t)
	log := zap.NewNop()

	stack, err := bootstrapRuntime(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), log) })

	_, ok := stack.RateStore.(*middleware.MemoryRateStore)
	require.True(t, ok, "memory backend is the default")

	w := httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBootstrapRuntimeFallsBackWhenRedisIsDown(t *testing.T) {
	cfg := testRuntimeConfig(t)
	cfg.Server.RateLimit.Backend = app.RateLimitRedis
	cfg.Cache.Redis.Address = "127.0.0.1:1"
	cfg.Cache.Redis.Timeout = 200 * time.Millisecond
	log := zap.NewNop()

	stack, err := bootstrapRuntime(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), log) })

	require.Nil(t, stack.Redis)
	_, isMemory := stack.RateStore.(*middleware.MemoryRateStore)
	require.False(t, isMemory)
	require.NotNil(t, stack.RateStore)
}

func TestSeedCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "seed.sqlite")
	t.Setenv("TEAMKIT_DATABASE_PATH", dbPath)
	configDir := t.TempDir()

	run := func(args ...string) string {
		var out bytes.Buffer
		cmd := newRootCommand()
		cmd.SetOut(&out)
		cmd.SetArgs(append(args, "--config", configDir, "--env-file", ""))
		require.NoError(t, cmd.Execute())
		return out.String()
	}

	require.Contains(t, run("migrate"), "up to date")
	require.Contains(t, run("seed"), database.SeedEmail)
	require.Contains(t, run("seed"), "already exists")

	db, err := database.Open(database.Config{Driver: "sqlite", Path: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	var team models.Team
	require.NoError(t, db.Where("name = ?", "Test Team").Take(&team).Error)
	var members int64
	require.NoError(t, db.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&members).Error)
	require.Equal(t, int64(1), members)
}
