package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"outreach/internal/app"
	"outreach/internal/digest"
	"outreach/internal/domain"
	"outreach/internal/engine"
)

const dueLayout = "Mon 2006-01-02 15:04"

func todayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show overdue, due today and completed tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				wl, err := ws.Engine.Today(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{
						"date":     ws.Engine.Clock().Format(time.DateOnly),
						"worklist": wl,
						"summary":  digest.Summarize(wl),
					})
				}
				s, err := ws.Engine.State(ctx)
				if err != nil {
					return err
				}
				for _, section := range []struct {
					title string
					tasks []domain.Task
				}{
					{"Overdue", wl.Overdue},
					{"Due today", wl.DueToday},
					{"Completed", wl.Completed},
				} {
					fmt.Printf("%s (%d)\n", section.title, len(section.tasks))
					if len(section.tasks) == 0 {
						continue
					}
					tw := table.NewWriter()
					tw.SetOutputMirror(cmd.OutOrStdout())
					tw.AppendHeader(table.Row{"ID", "Due", "Contact", "Company", "Task"})
					for _, t := range section.tasks {
						c, _ := s.Contact(t.ContactID)
						tw.AppendRow(table.Row{t.ID, t.DueAt.Format(dueLayout), c.FullName(), c.Company, t.Name})
					}
					tw.Render()
				}
				return nil
			})
		},
	}
}

func taskCmd() *cobra.Command {
	c := &cobra.Command{Use: "task", Short: "Work the task list"}
	c.AddCommand(taskListCmd())
	c.AddCommand(taskIDCmd("complete", "Mark a task done", func(ctx context.Context, e engine.Engine, id string) (domain.Task, error) {
		return e.CompleteTask(ctx, id)
	}))
	c.AddCommand(taskSnoozeCmd())
	c.AddCommand(&cobra.Command{
		Use:   "notes <task-id> <notes>",
		Short: "Replace task notes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				t, err := ws.Engine.EditTaskNotes(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printTask(t, args[0])
			})
		},
	})
	c.AddCommand(&cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				return ws.Engine.DeleteTask(ctx, args[0])
			})
		},
	})
	return c
}

func taskListCmd() *cobra.Command {
	var f engine.TaskFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				tasks, err := ws.Engine.ListTasks(ctx, f)
				if err != nil {
					return err
				}
				return printTasks(tasks)
			})
		},
	}
	cmd.Flags().StringVar(&f.ContactID, "contact", "", "contact id filter")
	cmd.Flags().BoolVar(&f.Pending, "pending", false, "only pending tasks")
	return cmd
}

func taskIDCmd(use, short string, fn func(context.Context, engine.Engine, string) (domain.Task, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				t, err := fn(ctx, ws.Engine, args[0])
				if err != nil {
					return err
				}
				return printTask(t, args[0])
			})
		},
	}
}

func taskSnoozeCmd() *cobra.Command {
	var hours int
	cmd := taskIDCmd("snooze", "Push a pending task back", func(ctx context.Context, e engine.Engine, id string) (domain.Task, error) {
		return e.SnoozeTask(ctx, id, hours)
	})
	cmd.Flags().IntVar(&hours, "hours", 0, "hours to push back (default from outreach.yml)")
	return cmd
}

func printTask(t domain.Task, id string) error {
	if t.ID == "" {
		return domain.Missing("task", id)
	}
	return printTasks([]domain.Task{t})
}

func printTasks(tasks []domain.Task) error {
	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		outcome := t.Outcome
		if outcome == "" {
			outcome = "pending"
		}
		rows = append(rows, table.Row{t.ID, t.DueAt.Format(dueLayout), t.ActionType, outcome, t.Name})
	}
	return printJSONOrTable(tasks, table.Row{"ID", "Due", "Action", "Outcome", "Name"}, rows)
}
