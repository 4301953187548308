package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"outreach/internal/backup"
)

func TestBackupFormat(t *testing.T) {
	for _, tc := range []struct {
		format, file, want string
	}{
		{"", "", backup.FormatJSON},
		{"", "out.yml", backup.FormatYAML},
		{"json", "out.yml", backup.FormatJSON},
		{"yaml", "", backup.FormatYAML},
	} {
		got, err := backupFormat(tc.format, tc.file)
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}
	_, err := backupFormat("", "out.csv")
	require.Error(t, err)
}

func TestOptionalFlags(t *testing.T) {
	var name string
	var days int
	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.Flags().StringVar(&name, "name", "", "")
	cmd.Flags().IntVar(&days, "wait-days", 0, "")
	require.NoError(t, cmd.ParseFlags([]string{"--wait-days", "0"}))

	require.Nil(t, optionalString(cmd, "name", name))
	got := optionalInt(cmd, "wait-days", days)
	require.NotNil(t, got)
	require.Zero(t, *got)
}

func TestCommandTree(t *testing.T) {
	registerCommands()
	for _, path := range [][]string{
		{"contact", "enroll"},
		{"sequence", "show"},
		{"step", "update"},
		{"task", "snooze"},
		{"backup", "import"},
		{"log", "tail"},
		{"config", "validate"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err)
		require.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestRootHelpDescribesBusinessHours(t *testing.T) {
	require.Contains(t, rootCmd.Long, "inside the configured daily window")
	require.NotContains(t, rootCmd.Long, "Monday")
}
