package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"outreach/internal/app"
	"outreach/internal/backup"
	"outreach/internal/domain"
	"outreach/internal/repo"
)

func backupCmd() *cobra.Command {
	c := &cobra.Command{Use: "backup", Short: "Export or import the whole state"}
	c.AddCommand(backupExportCmd())
	c.AddCommand(backupImportCmd())
	return c
}

// backupFormat picks the explicit format, else the file extension.
func backupFormat(format, file string) (string, error) {
	if format == "" && file != "" {
		format = filepath.Ext(file)
	}
	return backup.ParseFormat(format)
}

func backupExportCmd() *cobra.Command {
	var format, file string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup to a file or stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := backupFormat(format, file)
			if err != nil {
				return err
			}
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				data, err := ws.Engine.Export(ctx, f)
				if err != nil {
					return err
				}
				if file == "" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(file, data, 0o644); err != nil {
					return err
				}
				fmt.Printf("Exported to %s\n", file)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from --file extension, else json)")
	cmd.Flags().StringVar(&file, "file", "", "output path (default stdout)")
	return cmd
}

func backupImportCmd() *cobra.Command {
	var format, file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the whole state with a backup",
		Long:  "The file is validated first; nothing changes unless the whole backup is valid. Use --file - to read stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file required")
			}
			f, err := backupFormat(format, file)
			if err != nil {
				return err
			}
			var data []byte
			if file == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(file)
			}
			if err != nil {
				return err
			}
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				s, err := ws.Engine.Import(ctx, data, f)
				if err != nil {
					return err
				}
				return printStateSummary(s)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from --file extension, else json)")
	cmd.Flags().StringVar(&file, "file", "", "backup path, - for stdin")
	return cmd
}

func resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard everything and restore the default data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes every contact, sequence and task; pass --yes to confirm")
			}
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				s, err := ws.Engine.Reset(ctx)
				if err != nil {
					return err
				}
				return printStateSummary(s)
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}

func printStateSummary(s domain.State) error {
	counts := map[string]int{
		"companies": len(s.Companies),
		"contacts":  len(s.Contacts),
		"sequences": len(s.Sequences),
		"steps":     len(s.Steps),
		"tasks":     len(s.Tasks),
	}
	rows := []table.Row{}
	for _, k := range []string{"companies", "contacts", "sequences", "steps", "tasks"} {
		rows = append(rows, table.Row{k, counts[k]})
	}
	return printJSONOrTable(counts, table.Row{"Kind", "Count"}, rows)
}

func logCmd() *cobra.Command {
	c := &cobra.Command{Use: "log", Short: "Event log"}
	c.AddCommand(logTailCmd())
	return c
}

func logTailCmd() *cobra.Command {
	var n int
	var f repo.EventFilter
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				events, err := ws.Engine.ListEvents(ctx, n, 0, f)
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(events))
				for _, ev := range events {
					rows = append(rows, table.Row{ev.ID, ev.TS, ev.Type, ev.EntityKind, ev.EntityID, ev.Payload})
				}
				return printJSONOrTable(events, table.Row{"ID", "Time", "Type", "Kind", "Entity", "Payload"}, rows)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&f.Type, "type", "", "event type filter")
	cmd.Flags().StringVar(&f.EntityKind, "entity-kind", "", "entity kind")
	cmd.Flags().StringVar(&f.EntityID, "entity-id", "", "entity id")
	return cmd
}
