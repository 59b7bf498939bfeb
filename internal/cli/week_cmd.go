package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ihildy/timesheet-cli/internal/config"
	"github.com/ihildy/timesheet-cli/internal/export"
	"github.com/ihildy/timesheet-cli/internal/output"
	"github.com/ihildy/timesheet-cli/internal/storage"
	"github.com/ihildy/timesheet-cli/internal/weeklog"
)

func newWeekCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Load, show and export the week being edited",
	}
	cmd.AddCommand(newWeekLoadCmd(app))
	cmd.AddCommand(newWeekShowCmd(app))
	cmd.AddCommand(newWeekReloadCmd(app))
	cmd.AddCommand(newWeekExportCmd(app))
	cmd.AddCommand(newWeekClearCmd(app))
	return cmd
}

func weekPayload(operation string, ws *storage.Workspace) map[string]any {
	return map[string]any{
		"ok":           true,
		"operation":    operation,
		"timesheet_id": ws.TimesheetID,
		"employee_id":  ws.EmployeeID,
		"week_start":   ws.WeekStart,
		"week_end":     ws.WeekEnd,
		"total_hours":  weeklog.FormatMinutes(ws.Buffer.TotalMinutes()),
		"days":         ws.Buffer.Days,
		"entries":      ws.Buffer.Entries,
		"shift_model":  ws.Buffer.Shift,
		"key_format":   ws.Buffer.Keys,
		"updated_at":   ws.UpdatedAt,
	}
}

// currentWeekStart is the Monday of today's week in the configured timezone.
func currentWeekStart(cfg config.Config) (string, error) {
	loc, err := config.ResolveTimezone(cfg)
	if err != nil {
		return "", err
	}
	return weeklog.FormatISO(weeklog.WeekStartMonday(time.Now().In(loc))), nil
}

func newWeekLoadCmd(app *App) *cobra.Command {
	var start string
	var end string
	cmd := &cobra.Command{
		Use:   "load [--start YYYY-MM-DD] [--end YYYY-MM-DD]",
		Short: "Find or create the timesheet for a week and load its logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if start == "" {
				s, err := currentWeekStart(app.Cfg)
				if err != nil {
					return err
				}
				start = s
			}

			ctx := context.Background()
			s, err := app.NewSession(ctx)
			if err != nil {
				return err
			}
			ws, err := s.LoadWeek(ctx, start, end)
			if err != nil {
				return err
			}
			if err := app.SaveWorkspace(s); err != nil {
				return err
			}
			return output.Write(app.Stdout, app.JSONOutput, formatWeekHuman(ws), weekPayload("week_load", ws))
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Week start in YYYY-MM-DD (default: this week's Monday)")
	cmd.Flags().StringVar(&end, "end", "", "Week end in YYYY-MM-DD (default: start + 6 days)")
	return cmd
}

func newWeekShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the loaded week, including unsaved rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.Store.Load()
			if err != nil {
				return err
			}
			return output.Write(app.Stdout, app.JSONOutput, formatWeekHuman(ws), weekPayload("week_show", ws))
		},
	}
}

func newWeekReloadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Re-fetch the loaded week from the backend, discarding unsaved rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, err := app.OpenWorkspace(ctx)
			if err != nil {
				return err
			}
			ws, err := s.Reload(ctx)
			if err != nil {
				return err
			}
			if err := app.SaveWorkspace(s); err != nil {
				return err
			}
			return output.Write(app.Stdout, app.JSONOutput, formatWeekHuman(ws), weekPayload("week_reload", ws))
		},
	}
}

func newWeekExportCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export --out file.xlsx",
		Short: "Write the saved rows of the loaded week to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			ctx := context.Background()
			s, err := app.OpenWorkspace(ctx)
			if err != nil {
				return err
			}
			projects, err := s.Projects(ctx)
			if err != nil {
				return err
			}
			ws := s.Workspace()
			title := fmt.Sprintf("%s %s to %s", ws.EmployeeName, ws.WeekStart, ws.WeekEnd)
			data, err := export.WeekWorkbook(ws.Buffer, projects, title)
			if err != nil {
				return err
			}
			if dir := filepath.Dir(out); dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create output dir: %w", err)
				}
			}
			if err := os.WriteFile(out, data.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			payload := map[string]any{
				"ok":           true,
				"operation":    "week_export",
				"path":         out,
				"rows":         len(ws.Buffer.Bound()),
				"total_hours":  weeklog.FormatMinutes(ws.Buffer.TotalMinutes()),
				"timesheet_id": ws.TimesheetID,
			}
			human := fmt.Sprintf("Exported %d row(s) to %s", len(ws.Buffer.Bound()), out)
			return output.Write(app.Stdout, app.JSONOutput, human, payload)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Destination .xlsx path")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// unsavedEdits counts pending rows that hold user input.
func unsavedEdits(buf *weeklog.Buffer) int {
	n := 0
	for _, d := range buf.Days {
		for _, e := range buf.Entries[d.Key] {
			if !e.IsPending() {
				continue
			}
			if e.ProjectID > 0 || e.Description != "" || e.Start != "" || e.End != "" ||
				e.MorningIn != "" || e.MorningOut != "" || e.AfternoonIn != "" || e.AfternoonOut != "" {
				n++
			}
		}
	}
	return n
}

func newWeekClearCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the loaded week locally; saved rows stay on the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.Store.Load()
			if err != nil && !errors.Is(err, storage.ErrNoWorkspace) {
				app.Logger.Warn("clearing unreadable workspace", zap.Error(err))
			}
			if ws != nil && !yes {
				if n := unsavedEdits(ws.Buffer); n > 0 {
					ok, err := app.PromptConfirm(fmt.Sprintf("%d unsaved row(s) will be lost. Clear the week?", n))
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("aborted by user")
					}
				}
			}
			if err := app.Store.Clear(); err != nil {
				return err
			}
			payload := map[string]any{"ok": true, "operation": "week_clear", "had_week": ws != nil}
			return output.Write(app.Stdout, app.JSONOutput, "Local week cleared", payload)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Discard unsaved rows without confirmation")
	return cmd
}
