package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"outreach/internal/app"
	"outreach/internal/domain"
	"outreach/internal/tracker"
)

func sequenceCmd() *cobra.Command {
	c := &cobra.Command{Use: "sequence", Short: "Manage sequences"}
	c.AddCommand(sequenceListCmd())
	c.AddCommand(sequenceShowCmd())
	c.AddCommand(sequenceAddCmd())
	c.AddCommand(sequenceUpdateCmd())
	c.AddCommand(sequenceDeleteCmd())
	return c
}

func sequenceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sequences",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				s, err := ws.Engine.State(ctx)
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(s.Sequences))
				for _, seq := range s.Sequences {
					rows = append(rows, table.Row{seq.ID, seq.Name, len(tracker.StepsFor(s, seq.ID)), seq.Description})
				}
				return printJSONOrTable(s.Sequences, table.Row{"ID", "Name", "Steps", "Description"}, rows)
			})
		},
	}
}

func sequenceShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <sequence-id>",
		Short: "Show a sequence and its steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				d, err := ws.Engine.Sequence(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(d)
				}
				fmt.Printf("%s (%s)\n", d.Name, d.ID)
				if d.Description != "" {
					fmt.Println(d.Description)
				}
				return printSteps(d.Steps)
			})
		},
	}
}

func sequenceAddCmd() *cobra.Command {
	var desc string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an empty sequence",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				seq, err := ws.Engine.AddSequence(ctx, name, desc)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(seq)
				}
				fmt.Println(seq.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&desc, "description", "", "description")
	return cmd
}

func sequenceUpdateCmd() *cobra.Command {
	var name, desc string
	cmd := &cobra.Command{
		Use:   "update <sequence-id>",
		Short: "Rename or describe a sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := tracker.SequencePatch{
				Name:        optionalString(cmd, "name", name),
				Description: optionalString(cmd, "description", desc),
			}
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				seq, err := ws.Engine.UpdateSequence(ctx, args[0], patch)
				if err != nil {
					return err
				}
				if seq.ID == "" {
					return domain.Missing("sequence", args[0])
				}
				if viper.GetBool("json") {
					return printJSON(seq)
				}
				fmt.Printf("%s  %s\n", seq.ID, seq.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&desc, "description", "", "new description")
	return cmd
}

func sequenceDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <sequence-id>",
		Short: "Delete a sequence with its steps and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				return ws.Engine.DeleteSequence(ctx, args[0])
			})
		},
	}
}

func stepCmd() *cobra.Command {
	c := &cobra.Command{Use: "step", Short: "Manage sequence steps"}
	c.AddCommand(&cobra.Command{
		Use:   "add <sequence-id>",
		Short: "Append a default step (email, day 0)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				st, err := ws.Engine.AddStep(ctx, args[0])
				if err != nil {
					return err
				}
				if st.ID == "" {
					return domain.Missing("sequence", args[0])
				}
				return printSteps([]domain.Step{st})
			})
		},
	})
	c.AddCommand(stepUpdateCmd())
	c.AddCommand(&cobra.Command{
		Use:   "delete <step-id>",
		Short: "Delete a step and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				return ws.Engine.DeleteStep(ctx, args[0])
			})
		},
	})
	return c
}

func stepUpdateCmd() *cobra.Command {
	var order, days, hours int
	var action string
	cmd := &cobra.Command{
		Use:   "update <step-id>",
		Short: "Edit a step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := tracker.StepPatch{
				Order:      optionalInt(cmd, "order", order),
				ActionType: optionalString(cmd, "action", action),
				WaitDays:   optionalInt(cmd, "wait-days", days),
				WaitHours:  optionalInt(cmd, "wait-hours", hours),
			}
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				st, err := ws.Engine.UpdateStep(ctx, args[0], patch)
				if err != nil {
					return err
				}
				if st.ID == "" {
					return domain.Missing("step", args[0])
				}
				return printSteps([]domain.Step{st})
			})
		},
	}
	cmd.Flags().IntVar(&order, "order", 0, "position in the sequence")
	cmd.Flags().StringVar(&action, "action", "", "email or call")
	cmd.Flags().IntVar(&days, "wait-days", 0, "days after enrollment")
	cmd.Flags().IntVar(&hours, "wait-hours", 0, "extra business hours")
	return cmd
}

func printSteps(steps []domain.Step) error {
	rows := make([]table.Row, 0, len(steps))
	for _, st := range steps {
		rows = append(rows, table.Row{st.ID, st.Order, st.ActionType, st.WaitDays, st.WaitHours, st.Name})
	}
	return printJSONOrTable(steps, table.Row{"ID", "Order", "Action", "Days", "Hours", "Name"}, rows)
}
