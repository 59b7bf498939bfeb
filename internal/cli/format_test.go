package cli

import (
	"strings"
	"testing"

	"github.com/ihildy/timesheet-cli/internal/storage"
	"github.com/ihildy/timesheet-cli/internal/weeklog"
)

func TestShortWeekday(t *testing.T) {
	cases := []struct {
		day  weeklog.Day
		want string
	}{
		{weeklog.Day{Date: "2025-07-08", Weekday: "Tuesday"}, "Tue"},
		{weeklog.Day{Date: "2025-07-08", Weekday: ""}, "Tue"},
		{weeklog.Day{Date: "", Weekday: "Mo"}, "Mo"},
		{weeklog.Day{Date: "bad", Weekday: "Friday"}, "Fri"},
		{weeklog.Day{}, ""},
	}
	for _, tc := range cases {
		if got := shortWeekday(tc.day); got != tc.want {
			t.Errorf("shortWeekday(%+v) = %q, want %q", tc.day, got, tc.want)
		}
	}
}

func TestFormatWeekHumanToleratesMissingWeekday(t *testing.T) {
	buf := weeklog.NewReconciler(weeklog.ShiftSingle, weeklog.KeyFormatISO).Reconcile(
		weeklog.ExpandWeek("2025-07-07", "2025-07-08", weeklog.KeyFormatISO), nil)
	for i := range buf.Days {
		buf.Days[i].Weekday = ""
	}
	buf.Days[1].Date = ""

	out := formatWeekHuman(&storage.Workspace{TimesheetID: 11, Email: "ana@example.com", Buffer: buf})
	if !strings.Contains(out, "Mon 2025-07-07") || !strings.Contains(out, " 2025-07-08\n") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
