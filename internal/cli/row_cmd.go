package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ihildy/timesheet-cli/internal/output"
	"github.com/ihildy/timesheet-cli/internal/session"
	"github.com/ihildy/timesheet-cli/internal/weeklog"
)

func newRowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "row",
		Short: "Edit rows of the loaded week",
	}
	cmd.AddCommand(newRowAddCmd(app))
	cmd.AddCommand(newRowEditCmd(app))
	cmd.AddCommand(newRowSaveCmd(app))
	cmd.AddCommand(newRowRemoveCmd(app))
	cmd.AddCommand(newRowHistoryCmd(app))
	return cmd
}

// rowTarget addresses one row, either by --date and a 1-based --row as
// printed by `week show`, or by the daily log --id of a saved row.
type rowTarget struct {
	date string
	row  int
	id   int64
}

func (t *rowTarget) bind(cmd *cobra.Command, withRow bool) {
	cmd.Flags().StringVar(&t.date, "date", "", "Day in YYYY-MM-DD")
	if !withRow {
		_ = cmd.MarkFlagRequired("date")
		return
	}
	cmd.Flags().IntVar(&t.row, "row", 0, "Row number within the day, as shown by `week show`")
	cmd.Flags().Int64Var(&t.id, "id", 0, "Daily log id of a saved row, instead of --date/--row")
}

// resolve maps the target to a buffer key and index, filling in date and row
// when the row was addressed by id.
func (t *rowTarget) resolve(buf *weeklog.Buffer) (string, int, error) {
	if t.id != 0 {
		if t.date != "" || t.row != 0 {
			return "", 0, fmt.Errorf("use either --id or --date with --row")
		}
		key, idx, ok := buf.Find(t.id)
		if !ok {
			return "", 0, fmt.Errorf("%w: daily log #%d is not in the loaded week", weeklog.ErrRowOutOfRange, t.id)
		}
		e, err := buf.Entry(key, idx)
		if err != nil {
			return "", 0, err
		}
		t.date, t.row = e.Date, idx+1
		return key, idx, nil
	}
	if t.date == "" {
		return "", 0, fmt.Errorf("--date is required")
	}
	key, err := buf.KeyFor(t.date)
	if err != nil {
		return "", 0, err
	}
	return key, t.row - 1, nil
}

// openRow loads the workspace and resolves the target row.
func openRow(app *App, t *rowTarget) (*session.Session, string, int, error) {
	s, err := app.OpenWorkspace(context.Background())
	if err != nil {
		return nil, "", 0, err
	}
	key, idx, err := t.resolve(s.Workspace().Buffer)
	if err != nil {
		return nil, "", 0, err
	}
	return s, key, idx, nil
}

func rowPayload(operation, date string, row int, e weeklog.Entry) map[string]any {
	return map[string]any{
		"ok":        true,
		"operation": operation,
		"date":      date,
		"row":       row,
		"entry":     e,
	}
}

func newRowAddCmd(app *App) *cobra.Command {
	var t rowTarget
	cmd := &cobra.Command{
		Use:   "add --date YYYY-MM-DD",
		Short: "Append an empty row to a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, key, _, err := openRow(app, &t)
			if err != nil {
				return err
			}
			e, err := s.AddRow(key)
			if err != nil {
				return err
			}
			if err := app.SaveWorkspace(s); err != nil {
				return err
			}
			rows, _ := s.Workspace().Buffer.Rows(key)
			human := fmt.Sprintf("Added row %d on %s", len(rows), t.date)
			return output.Write(app.Stdout, app.JSONOutput, human, rowPayload("row_add", t.date, len(rows), e))
		},
	}
	t.bind(cmd, false)
	return cmd
}

func newRowEditCmd(app *App) *cobra.Command {
	var t rowTarget
	var projectID int64
	var description string
	times := map[weeklog.TimeField]*string{}
	cmd := &cobra.Command{
		Use:   "edit (--date YYYY-MM-DD --row N | --id ID) [--project ID] [--desc TEXT] [--start HH:MM] [--end HH:MM]",
		Short: "Change fields of one row locally; totals are recomputed",
		RunE: func(cmd *cobra.Command, args []string) error {
			var edit session.Edit
			if cmd.Flags().Changed("project") {
				if projectID <= 0 {
					return fmt.Errorf("--project must be > 0")
				}
				edit.ProjectID = &projectID
			}
			if cmd.Flags().Changed("desc") {
				edit.Description = &description
			}
			for field, v := range times {
				if !cmd.Flags().Changed(timeFlagName(field)) {
					continue
				}
				if *v != "" && !weeklog.ValidTime(weeklog.NormalizeTime(*v)) {
					return fmt.Errorf("invalid --%s %q, expected HH:MM", timeFlagName(field), *v)
				}
				if edit.Times == nil {
					edit.Times = map[weeklog.TimeField]string{}
				}
				edit.Times[field] = *v
			}
			if edit.Empty() {
				return fmt.Errorf("nothing to change; pass at least one of --project, --desc or a time flag")
			}

			s, key, idx, err := openRow(app, &t)
			if err != nil {
				return err
			}
			e, err := s.EditRow(key, idx, edit)
			if err != nil {
				return err
			}
			if err := app.SaveWorkspace(s); err != nil {
				return err
			}
			human := fmt.Sprintf("Edited row %d on %s (unsaved)\n%s", t.row, t.date, formatEntryLine(t.row, e, s.Workspace().Buffer.Shift))
			return output.Write(app.Stdout, app.JSONOutput, human, rowPayload("row_edit", t.date, t.row, e))
		},
	}
	t.bind(cmd, true)
	cmd.Flags().Int64Var(&projectID, "project", 0, "Project id")
	cmd.Flags().StringVar(&description, "desc", "", "Task description")
	for _, field := range weeklog.TimeFields {
		v := new(string)
		times[field] = v
		cmd.Flags().StringVar(v, timeFlagName(field), "", fmt.Sprintf("%s in HH:MM (empty clears)", field))
	}
	return cmd
}

func timeFlagName(f weeklog.TimeField) string {
	switch f {
	case weeklog.FieldStart:
		return "start"
	case weeklog.FieldEnd:
		return "end"
	case weeklog.FieldMorningIn:
		return "morning-in"
	case weeklog.FieldMorningOut:
		return "morning-out"
	case weeklog.FieldAfternoonIn:
		return "afternoon-in"
	default:
		return "afternoon-out"
	}
}

func newRowSaveCmd(app *App) *cobra.Command {
	var t rowTarget
	cmd := &cobra.Command{
		Use:   "save (--date YYYY-MM-DD --row N | --id ID)",
		Short: "Create or update a row on the backend and reload the week",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, key, idx, err := openRow(app, &t)
			if err != nil {
				return err
			}
			res, err := s.SaveRow(context.Background(), key, idx)
			if err != nil {
				if res.Log.ID != 0 {
					// The row exists on the backend; saving again would duplicate it.
					return fmt.Errorf("%w; run `timesheet week reload` before editing further", err)
				}
				return err
			}
			if err := app.SaveWorkspace(s); err != nil {
				return err
			}

			payload := map[string]any{
				"ok":        true,
				"operation": "row_save",
				"date":      t.date,
				"result":    res,
			}
			verb := "Updated"
			if res.Created {
				verb = "Created"
			}
			human := fmt.Sprintf("%s daily log #%d for %s", verb, res.Log.ID, t.date)
			if res.Audited {
				human += "; description change recorded"
			}
			if res.AuditErr != "" {
				human += "\nWarning: description change not recorded: " + res.AuditErr
			}
			return output.Write(app.Stdout, app.JSONOutput, human, payload)
		},
	}
	t.bind(cmd, true)
	return cmd
}

func newRowRemoveCmd(app *App) *cobra.Command {
	var t rowTarget
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm (--date YYYY-MM-DD --row N | --id ID)",
		Short: "Remove a row, deleting it on the backend if it was saved",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, key, idx, err := openRow(app, &t)
			if err != nil {
				return err
			}
			e, err := s.Workspace().Buffer.Entry(key, idx)
			if err != nil {
				return err
			}
			if err := confirmDelete(app, e, yes); err != nil {
				return err
			}
			removed, err := s.RemoveRow(context.Background(), key, idx)
			if err != nil {
				return err
			}
			if err := app.SaveWorkspace(s); err != nil {
				return err
			}
			human := fmt.Sprintf("Removed row %d on %s", t.row, t.date)
			if id, ok := removed.ServerID(); ok {
				human = fmt.Sprintf("Deleted daily log #%d on %s", id, t.date)
			}
			return output.Write(app.Stdout, app.JSONOutput, human, rowPayload("row_rm", t.date, t.row, removed))
		},
	}
	t.bind(cmd, true)
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip interactive confirmation for saved rows")
	return cmd
}

func confirmDelete(app *App, e weeklog.Entry, yes bool) error {
	if e.IsPending() || yes {
		return nil
	}
	ok, err := app.PromptConfirm(fmt.Sprintf("Row %s is saved on the backend. Delete it?", entryIDLabel(e)))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("aborted by user")
	}
	return nil
}

func newRowHistoryCmd(app *App) *cobra.Command {
	var t rowTarget
	cmd := &cobra.Command{
		Use:   "history (--date YYYY-MM-DD --row N | --id ID)",
		Short: "Show the description change history of a saved row",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, key, idx, err := openRow(app, &t)
			if err != nil {
				return err
			}
			recs, err := s.History(context.Background(), key, idx)
			if err != nil {
				return err
			}
			payload := map[string]any{
				"ok":        true,
				"operation": "row_history",
				"date":      t.date,
				"row":       t.row,
				"count":     len(recs),
				"changes":   recs,
			}
			return output.Write(app.Stdout, app.JSONOutput, formatHistoryHuman(recs), payload)
		},
	}
	t.bind(cmd, true)
	return cmd
}
