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

func contactCmd() *cobra.Command {
	c := &cobra.Command{Use: "contact", Short: "Manage contacts"}
	c.AddCommand(contactListCmd())
	c.AddCommand(contactAddCmd())
	c.AddCommand(contactUpdateCmd())
	c.AddCommand(contactCompanyCmd())
	c.AddCommand(contactNotesCmd())
	c.AddCommand(contactEnrollCmd())
	c.AddCommand(contactDeleteCmd())
	return c
}

func contactListCmd() *cobra.Command {
	var status, company string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				s, err := ws.Engine.State(ctx)
				if err != nil {
					return err
				}
				items := []domain.Contact{}
				rows := []table.Row{}
				for _, c := range s.Contacts {
					if status != "" && c.Status != status {
						continue
					}
					if company != "" && c.Company != company {
						continue
					}
					items = append(items, c)
					seq, _ := tracker.SequenceByID(s, c.SequenceID)
					rows = append(rows, table.Row{c.ID, c.FullName(), c.Email, c.Company, c.Status, seq.Name})
				}
				return printJSONOrTable(items, table.Row{"ID", "Name", "Email", "Company", "Status", "Sequence"}, rows)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	cmd.Flags().StringVar(&company, "company", "", "company filter")
	return cmd
}

type contactFlags struct {
	first, last, email, office, mobile, status, sequence, notes string
}

func (f *contactFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.first, "first-name", "", "first name")
	cmd.Flags().StringVar(&f.last, "last-name", "", "last name")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().StringVar(&f.office, "phone-office", "", "office phone")
	cmd.Flags().StringVar(&f.mobile, "phone-mobile", "", "mobile phone")
	cmd.Flags().StringVar(&f.status, "status", "", "active, paused or completed")
	cmd.Flags().StringVar(&f.sequence, "sequence", "", "assigned sequence id")
	cmd.Flags().StringVar(&f.notes, "notes", "", "contact notes")
}

func contactAddCmd() *cobra.Command {
	var f contactFlags
	var company string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				c, err := ws.Engine.AddContact(ctx, domain.Contact{
					FirstName:    f.first,
					LastName:     f.last,
					Email:        f.email,
					PhoneOffice:  f.office,
					PhoneMobile:  f.mobile,
					Company:      company,
					Status:       f.status,
					SequenceID:   f.sequence,
					ContactNotes: f.notes,
				})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(c)
				}
				fmt.Println(c.ID)
				return nil
			})
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&company, "company", "", "company name")
	return cmd
}

func contactUpdateCmd() *cobra.Command {
	var f contactFlags
	var company string
	cmd := &cobra.Command{
		Use:   "update <contact-id>",
		Short: "Edit contact fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := tracker.ContactPatch{
				FirstName:    optionalString(cmd, "first-name", f.first),
				LastName:     optionalString(cmd, "last-name", f.last),
				Email:        optionalString(cmd, "email", f.email),
				PhoneOffice:  optionalString(cmd, "phone-office", f.office),
				PhoneMobile:  optionalString(cmd, "phone-mobile", f.mobile),
				Status:       optionalString(cmd, "status", f.status),
				SequenceID:   optionalString(cmd, "sequence", f.sequence),
				ContactNotes: optionalString(cmd, "notes", f.notes),
			}
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				c, err := ws.Engine.EditContact(ctx, args[0], patch, optionalString(cmd, "company", company))
				if err != nil {
					return err
				}
				return printContact(c, args[0])
			})
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&company, "company", "", "company name, created if new")
	return cmd
}

func contactCompanyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "company <contact-id> <company-name>",
		Short: "Move a contact to a company, creating it if new",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				c, err := ws.Engine.SetContactCompany(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printContact(c, args[0])
			})
		},
	}
}

func contactNotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notes <contact-id> <notes>",
		Short: "Replace contact notes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				c, err := ws.Engine.SetContactNotes(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printContact(c, args[0])
			})
		},
	}
}

func contactEnrollCmd() *cobra.Command {
	var sequenceID string
	cmd := &cobra.Command{
		Use:   "enroll <contact-id>",
		Short: "Enroll a contact and create one task per step",
		Long:  "Creates a task for every step of the sequence, due inside business hours. Without --sequence the contact's assigned sequence is used.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				tasks, err := ws.Engine.Enroll(ctx, args[0], sequenceID)
				if err != nil {
					return err
				}
				return printTasks(tasks)
			})
		},
	}
	cmd.Flags().StringVar(&sequenceID, "sequence", "", "sequence id (defaults to the assigned one)")
	return cmd
}

func contactDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <contact-id>",
		Short: "Delete a contact and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				return ws.Engine.DeleteContact(ctx, args[0])
			})
		},
	}
}

func printContact(c domain.Contact, id string) error {
	if c.ID == "" {
		return domain.Missing("contact", id)
	}
	if viper.GetBool("json") {
		return printJSON(c)
	}
	fmt.Printf("%s  %s <%s>  %s  %s\n", c.ID, c.FullName(), c.Email, c.Company, c.Status)
	return nil
}

func companyCmd() *cobra.Command {
	c := &cobra.Command{Use: "company", Short: "Manage companies"}
	c.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List companies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				s, err := ws.Engine.State(ctx)
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(s.Companies))
				for _, co := range s.Companies {
					rows = append(rows, table.Row{co.ID, co.Name, co.Notes})
				}
				return printJSONOrTable(s.Companies, table.Row{"ID", "Name", "Notes"}, rows)
			})
		},
	})
	c.AddCommand(&cobra.Command{
		Use:   "notes <company-name> <notes>",
		Short: "Replace company notes, creating the company if new",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				co, err := ws.Engine.SetCompanyNotes(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(co)
				}
				fmt.Printf("%s  %s\n", co.ID, co.Name)
				return nil
			})
		},
	})
	return c
}
