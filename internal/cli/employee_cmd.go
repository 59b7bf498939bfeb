package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ihildy/timesheet-cli/internal/api"
	"github.com/ihildy/timesheet-cli/internal/output"
)

func newEmployeeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Admin actions on employees",
	}
	cmd.AddCommand(newEmployeeAddCmd(app))
	cmd.AddCommand(newDepartmentsCmd(app))
	cmd.AddCommand(newDesignationsCmd(app))
	return cmd
}

func newEmployeeAddCmd(app *App) *cobra.Command {
	var departmentID int64
	var designationID int64
	var managerID int64
	cmd := &cobra.Command{
		Use:   "add <name> <email> --department ID --designation ID [--manager ID]",
		Short: "Add an employee",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.NewEmployee{
				Name:          args[0],
				Email:         args[1],
				DepartmentID:  departmentID,
				DesignationID: designationID,
			}
			if cmd.Flags().Changed("manager") {
				req.ReportsTo = &managerID
			}

			ctx := context.Background()
			s, err := app.NewSession(ctx)
			if err != nil {
				return err
			}
			sent, err := s.AddEmployee(ctx, req)
			if err != nil {
				return err
			}

			payload := map[string]any{
				"ok":        true,
				"operation": "employee_add",
				"employee":  sent,
			}
			human := fmt.Sprintf("Added employee %s <%s>", sent.Name, sent.Email)
			if sent.ReportsTo != nil {
				human += fmt.Sprintf(", reporting to #%d", *sent.ReportsTo)
			}
			return output.Write(app.Stdout, app.JSONOutput, human, payload)
		},
	}
	cmd.Flags().Int64Var(&departmentID, "department", 0, "Department id (see `employee departments`)")
	cmd.Flags().Int64Var(&designationID, "designation", 0, "Designation id (see `employee designations`)")
	cmd.Flags().Int64Var(&managerID, "manager", 0, "Manager employee id; omit for none")
	return cmd
}

func newDepartmentsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "departments",
		Short: "List departments",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, err := app.NewSession(ctx)
			if err != nil {
				return err
			}
			depts, err := s.Departments(ctx)
			if err != nil {
				return err
			}
			if app.JSONOutput {
				return output.WriteJSON(app.Stdout, map[string]any{
					"ok":          true,
					"operation":   "departments",
					"count":       len(depts),
					"departments": depts,
				})
			}
			if len(depts) == 0 {
				_, err := fmt.Fprintln(app.Stdout, "No departments returned")
				return err
			}
			for _, d := range depts {
				fmt.Fprintf(app.Stdout, "- %d  %s\n", d.ID, d.Name)
			}
			return nil
		},
	}
}

func newDesignationsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "designations",
		Short: "List designations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, err := app.NewSession(ctx)
			if err != nil {
				return err
			}
			des, err := s.Designations(ctx)
			if err != nil {
				return err
			}
			if app.JSONOutput {
				return output.WriteJSON(app.Stdout, map[string]any{
					"ok":           true,
					"operation":    "designations",
					"count":        len(des),
					"designations": des,
				})
			}
			if len(des) == 0 {
				_, err := fmt.Fprintln(app.Stdout, "No designations returned")
				return err
			}
			for _, d := range des {
				fmt.Fprintf(app.Stdout, "- %d  %s\n", d.ID, d.Title)
			}
			return nil
		},
	}
}
