package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"outreach/internal/schedule"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, schedule.DefaultWindow(), cfg.Window())
	require.Equal(t, 24, cfg.Schedule.SnoozeHours)
	require.Equal(t, "/v0", cfg.Server.BasePath)
	require.Equal(t, "warn", cfg.Log.Level)
	require.False(t, cfg.Digest.Enabled)
}

func TestFromYAMLKeepsDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte("schedule:\n  business_start: 8\n  business_end: 17\n"))
	require.NoError(t, err)
	require.Equal(t, schedule.Window{Start: 8, End: 17}, cfg.Window())
	require.Equal(t, 24, cfg.Schedule.SnoozeHours)
	require.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"inverted window": "schedule:\n  business_start: 16\n  business_end: 6\n",
		"zero snooze":     "schedule:\n  snooze_hours: 0\n",
		"bad cron":        "digest:\n  enabled: true\n  cron: \"every day\"\n",
		"bad level":       "log:\n  level: loud\n",
		"bad base path":   "server:\n  base_path: v0\n",
		"not yaml":        "schedule: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromYAML([]byte(raw))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOptional(dir)
	require.NoError(t, err)
	require.Nil(t, cfg)

	cfg, err = Load(dir)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(GenerateDefault()), 0o644))
	cfg, err = Load(dir)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(Path(dir), []byte("digest:\n  enabled: true\n  cron: \"\"\n"), 0o644))
	_, err = Load(dir)
	require.ErrorContains(t, err, FileName)
}

func TestRedactedMasksSecret(t *testing.T) {
	cfg, err := FromYAML([]byte("server:\n  jwt_secret: hunter2\n"))
	require.NoError(t, err)
	shown := cfg.Redacted()
	require.NotContains(t, shown.Server.JWTSecret, "hunter2")
	require.NotEmpty(t, shown.Server.JWTSecret)
	require.Equal(t, "hunter2", cfg.Server.JWTSecret)
	require.Empty(t, Default().Redacted().Server.JWTSecret)
}
