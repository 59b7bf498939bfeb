package cli

import (
	"fmt"
	"strings"

	"github.com/ihildy/timesheet-cli/internal/api"
	"github.com/ihildy/timesheet-cli/internal/session"
	"github.com/ihildy/timesheet-cli/internal/storage"
	"github.com/ihildy/timesheet-cli/internal/weeklog"
)

func entryIDLabel(e weeklog.Entry) string {
	if id, ok := e.ServerID(); ok {
		return fmt.Sprintf("#%d", id)
	}
	return "new"
}

func entryTimes(e weeklog.Entry, shift weeklog.ShiftModel) string {
	dash := func(s string) string {
		if s == "" {
			return "--:--"
		}
		return s
	}
	if shift == weeklog.ShiftSplit {
		s := dash(e.MorningIn) + "-" + dash(e.MorningOut)
		if e.AfternoonIn != "" || e.AfternoonOut != "" {
			s += " " + dash(e.AfternoonIn) + "-" + dash(e.AfternoonOut)
		}
		return s
	}
	return dash(e.Start) + "-" + dash(e.End)
}

func formatEntryLine(n int, e weeklog.Entry, shift weeklog.ShiftModel) string {
	project := "-"
	if e.ProjectID > 0 {
		project = fmt.Sprintf("project %d", e.ProjectID)
	}
	line := fmt.Sprintf("  %d. %-5s %s  %6s  %s", n, entryIDLabel(e), entryTimes(e, shift), e.TotalHours, project)
	if e.Description != "" {
		line += "  " + e.Description
	}
	return line
}

// shortWeekday abbreviates the day name. Workspaces written by hand or by an
// older build may carry an empty or short name, so the date wins when it parses.
func shortWeekday(d weeklog.Day) string {
	if t, err := weeklog.ParseDate(d.Date); err == nil {
		return t.Weekday().String()[:3]
	}
	if len(d.Weekday) >= 3 {
		return d.Weekday[:3]
	}
	return d.Weekday
}

func formatWeekHuman(ws *storage.Workspace) string {
	var b strings.Builder
	buf := ws.Buffer
	who := ws.EmployeeName
	if who == "" {
		who = ws.Email
	}
	fmt.Fprintf(&b, "Week %s to %s, timesheet #%d (%s)\n", ws.WeekStart, ws.WeekEnd, ws.TimesheetID, who)
	for _, d := range buf.Days {
		fmt.Fprintf(&b, "%s %s\n", shortWeekday(d), d.Key)
		for i, e := range buf.Entries[d.Key] {
			b.WriteString(formatEntryLine(i+1, e, buf.Shift))
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "Total: %s", weeklog.FormatMinutes(buf.TotalMinutes()))
	return b.String()
}

func formatHistoryHuman(recs []session.ChangeRecord) string {
	if len(recs) == 0 {
		return "No changes recorded"
	}
	var b strings.Builder
	for i, r := range recs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s  %s", valueOrUnset(r.Change.ChangedAt), r.Change.NewDescription)
		if r.Latest != nil {
			fmt.Fprintf(&b, "  [%s", r.Latest.Status)
			if r.Latest.Comments != "" {
				fmt.Fprintf(&b, ": %s", r.Latest.Comments)
			}
			b.WriteString("]")
		}
	}
	return b.String()
}

func employeeLabel(e api.Employee) string {
	var parts []string
	if e.Designation != nil && e.Designation.Title != "" {
		parts = append(parts, e.Designation.Title)
	}
	if e.Department != nil && e.Department.Name != "" {
		parts = append(parts, e.Department.Name)
	}
	label := fmt.Sprintf("#%d %s <%s>", e.ID, e.Name, e.Email)
	if len(parts) > 0 {
		label += "  " + strings.Join(parts, ", ")
	}
	return label
}

func formatDailyLogs(logs []api.DailyLog) string {
	if len(logs) == 0 {
		return "No daily logs"
	}
	var b strings.Builder
	for i, l := range logs {
		if i > 0 {
			b.WriteString("\n")
		}
		date := l.LogDate
		if len(date) > 10 {
			date = date[:10]
		}
		times := weeklog.NormalizeTime(l.StartTime) + "-" + weeklog.NormalizeTime(l.EndTime)
		if l.MorningIn != "" {
			times = weeklog.NormalizeTime(l.MorningIn) + "-" + weeklog.NormalizeTime(l.MorningOut)
			if l.AfternoonIn != "" {
				times += " " + weeklog.NormalizeTime(l.AfternoonIn) + "-" + weeklog.NormalizeTime(l.AfternoonOut)
			}
		}
		fmt.Fprintf(&b, "- #%d %s %s %s project %d  %s", l.ID, date, times, l.TotalHours, l.ProjectID, l.Description)
	}
	return b.String()
}
