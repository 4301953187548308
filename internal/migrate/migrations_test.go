package migrate

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"outreach/internal/db"
)

func TestMigrateIsIdempotent(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	defer conn.Close()
	ctx := context.Background()

	v, err := Version(ctx, conn)
	require.NoError(t, err)
	require.Zero(t, v)

	require.NoError(t, Migrate(conn))
	require.NoError(t, Migrate(conn))

	steps, err := Steps()
	require.NoError(t, err)
	require.NotEmpty(t, steps)
	v, err = Version(ctx, conn)
	require.NoError(t, err)
	require.Equal(t, steps[len(steps)-1].Version, v)

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&n))
	require.Zero(t, n)
}

func TestReadStepsOrdersAndRejectsBadNames(t *testing.T) {
	steps, err := readSteps(fstest.MapFS{
		"sql/0002_more.sql": {Data: []byte("SELECT 2;")},
		"sql/0001_init.sql": {Data: []byte("SELECT 1;")},
		"sql/README":        {Data: []byte("ignored")},
	}, "sql")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	require.Equal(t, "0001_init.sql", steps[0].Name)
	require.Equal(t, 2, steps[1].Version)

	_, err = readSteps(fstest.MapFS{"sql/init.sql": {Data: []byte("")}}, "sql")
	require.Error(t, err)

	_, err = readSteps(fstest.MapFS{
		"sql/0001_a.sql": {Data: []byte("")},
		"sql/0001_b.sql": {Data: []byte("")},
	}, "sql")
	require.Error(t, err)
}
