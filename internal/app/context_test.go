package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"outreach/internal/config"
	"outreach/internal/db"
)

func TestInitAndReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ws, created, err := Init(ctx, dir)
	require.NoError(t, err)
	require.True(t, created)
	require.FileExists(t, config.Path(dir))
	require.FileExists(t, db.Path(dir))

	s, err := ws.Engine.State(ctx)
	require.NoError(t, err)
	require.Len(t, s.Sequences, 3)
	require.NoError(t, ws.Close())

	ws, created, err = Init(ctx, dir)
	require.NoError(t, err)
	require.False(t, created)
	defer ws.Close()
	again, err := ws.Engine.State(ctx)
	require.NoError(t, err)
	require.Equal(t, s, again)
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(config.Path(dir), []byte("schedule:\n  business_end: 99\n"), 0o644))
	_, err := Open(context.Background(), dir)
	require.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadEnv(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OUTREACH_TEST_LOADENV=from-file\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("OUTREACH_TEST_LOADENV") })
	require.NoError(t, LoadEnv(dir))
	require.Equal(t, "from-file", os.Getenv("OUTREACH_TEST_LOADENV"))
}
