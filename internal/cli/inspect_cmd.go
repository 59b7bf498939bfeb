package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ihildy/timesheet-cli/internal/output"
)

func newInspectCmd(app *App) *cobra.Command {
	var employee string
	var timesheetID int64
	cmd := &cobra.Command{
		Use:   "inspect --employee NAME [--timesheet ID]",
		Short: "List another employee's timesheets, or the logs of one of them",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, err := app.NewSession(ctx)
			if err != nil {
				return err
			}

			sheets, err := s.EmployeeTimesheets(ctx, employee)
			if err != nil {
				return err
			}
			if timesheetID == 0 {
				payload := map[string]any{
					"ok":         true,
					"operation":  "inspect",
					"employee":   employee,
					"count":      len(sheets),
					"timesheets": sheets,
				}
				if app.JSONOutput {
					return output.WriteJSON(app.Stdout, payload)
				}
				if len(sheets) == 0 {
					_, err := fmt.Fprintf(app.Stdout, "No timesheets for %s\n", employee)
					return err
				}
				fmt.Fprintf(app.Stdout, "Found %d timesheet(s) for %s:\n", len(sheets), employee)
				for _, ts := range sheets {
					fmt.Fprintf(app.Stdout, "- #%d  week starting %s\n", ts.ID, ts.WeekStarting)
				}
				return nil
			}

			found := false
			for _, ts := range sheets {
				if ts.ID == timesheetID {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("timesheet #%d does not belong to %s", timesheetID, employee)
			}
			logs, err := s.TimesheetLogs(ctx, timesheetID)
			if err != nil {
				return err
			}
			payload := map[string]any{
				"ok":           true,
				"operation":    "inspect_timesheet",
				"employee":     employee,
				"timesheet_id": timesheetID,
				"count":        len(logs),
				"logs":         logs,
			}
			return output.Write(app.Stdout, app.JSONOutput, formatDailyLogs(logs), payload)
		},
	}
	cmd.Flags().StringVar(&employee, "employee", "", "Employee name")
	cmd.Flags().Int64Var(&timesheetID, "timesheet", 0, "Timesheet id to list logs for")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}
