package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ihildy/timesheet-cli/internal/api"
	"github.com/ihildy/timesheet-cli/internal/output"
	"github.com/ihildy/timesheet-cli/internal/session"
)

func newProfileCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the acting employee and their reporting chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, err := app.NewSession(ctx)
			if err != nil {
				return err
			}
			p, err := s.Profile(ctx)
			if err != nil {
				return err
			}
			chain := session.Hierarchy(p)

			payload := map[string]any{
				"ok":          true,
				"operation":   "profile",
				"employee":    p.Employee,
				"hierarchy":   chain,
				"department":  p.Department,
				"designation": p.Designation,
			}
			if app.JSONOutput {
				return output.WriteJSON(app.Stdout, payload)
			}

			fmt.Fprintln(app.Stdout, employeeLabel(p.Employee))
			if p.Department != nil {
				fmt.Fprintf(app.Stdout, "Department:  %s\n", p.Department.Name)
			}
			if p.Designation != nil {
				fmt.Fprintf(app.Stdout, "Designation: %s\n", p.Designation.Title)
			}
			if len(chain) <= 1 {
				_, err := fmt.Fprintln(app.Stdout, "No manager hierarchy available.")
				return err
			}
			fmt.Fprintln(app.Stdout, "Reporting chain:")
			for i, e := range chain {
				fmt.Fprintf(app.Stdout, "%s%s (#%d)\n", strings.Repeat("  ", i+1), e.Name, e.ID)
			}
			return nil
		},
	}
}

func newRosterCmd(app *App) *cobra.Command {
	var managerID int64
	var mine bool
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "List employees, or the reports of one manager",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mine && managerID != 0 {
				return fmt.Errorf("use only one of --manager or --mine")
			}
			ctx := context.Background()
			s, err := app.NewSession(ctx)
			if err != nil {
				return err
			}

			var emps []api.Employee
			if mine {
				emps, err = s.MyReports(ctx)
			} else {
				emps, err = s.Roster(ctx, managerID)
			}
			if err != nil {
				return err
			}

			payload := map[string]any{
				"ok":         true,
				"operation":  "roster",
				"manager_id": managerID,
				"count":      len(emps),
				"employees":  emps,
			}
			if app.JSONOutput {
				return output.WriteJSON(app.Stdout, payload)
			}
			if len(emps) == 0 {
				_, err := fmt.Fprintln(app.Stdout, "No employees returned")
				return err
			}
			fmt.Fprintf(app.Stdout, "Found %d employee(s):\n", len(emps))
			for _, e := range emps {
				fmt.Fprintf(app.Stdout, "- %s\n", employeeLabel(e))
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&managerID, "manager", 0, "Only list direct reports of this manager id")
	cmd.Flags().BoolVar(&mine, "mine", false, "Only list the acting employee's direct reports")
	return cmd
}

func newProjectsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects hours can be logged against",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, err := app.NewSession(ctx)
			if err != nil {
				return err
			}
			projects, err := s.Projects(ctx)
			if err != nil {
				return err
			}

			payload := map[string]any{
				"ok":        true,
				"operation": "projects",
				"count":     len(projects),
				"projects":  projects,
			}
			if app.JSONOutput {
				return output.WriteJSON(app.Stdout, payload)
			}
			if len(projects) == 0 {
				_, err := fmt.Fprintln(app.Stdout, "No projects returned")
				return err
			}
			fmt.Fprintf(app.Stdout, "Found %d project(s):\n", len(projects))
			for _, p := range projects {
				fmt.Fprintf(app.Stdout, "- %d  %s\n", p.ID, p.Name)
			}
			return nil
		},
	}
}
