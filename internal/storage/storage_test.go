package storage

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ihildy/timesheet-cli/internal/weeklog"
)

func sampleWorkspace() *Workspace {
	days := weeklog.ExpandWeek("2025-07-07", "", weeklog.KeyFormatISO)
	r := weeklog.NewReconciler(weeklog.ShiftSingle, weeklog.KeyFormatISO)
	buf := r.Reconcile(days, []weeklog.Log{
		{ID: 31, Date: "2025-07-08", ProjectID: 2, Description: "review", Start: "09:00:00", End: "11:30:00"},
	})
	return &Workspace{
		Email:       "ana@example.com",
		EmployeeID:  7,
		TimesheetID: 11,
		WeekStart:   "2025-07-07",
		Buffer:      buf,
		UpdatedAt:   time.Date(2025, 7, 8, 12, 0, 0, 0, time.UTC),
	}
}

func TestLoadWithoutWorkspace(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Load(); !errors.Is(err, ErrNoWorkspace) {
		t.Fatalf("expected ErrNoWorkspace, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	in := sampleWorkspace()
	if err := s.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(s.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}

	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.TimesheetID != 11 || out.Email != in.Email || !out.UpdatedAt.Equal(in.UpdatedAt) {
		t.Fatalf("workspace = %+v", out)
	}
	rows, err := out.Buffer.Rows("2025-07-08")
	if err != nil || len(rows) != 1 {
		t.Fatalf("rows = %v, %v", rows, err)
	}
	if id, ok := rows[0].ServerID(); !ok || id != 31 || rows[0].TotalHours != "2:30" {
		t.Fatalf("bound row = %+v", rows[0])
	}
	empty, _ := out.Buffer.Rows("2025-07-07")
	if len(empty) != 1 || !empty[0].IsPending() {
		t.Fatalf("placeholder lost: %+v", empty)
	}
	if _, err := out.Buffer.AddRow("2025-07-07"); err != nil {
		t.Fatalf("AddRow after load: %v", err)
	}
}

func TestLoadCorruptFileIsBackedUp(t *testing.T) {
	s := New(t.TempDir())
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(); err == nil || errors.Is(err, ErrNoWorkspace) {
		t.Fatalf("expected corrupt error, got %v", err)
	}
	if _, err := os.Stat(s.Path() + ".corrupt"); err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNoWorkspace) {
		t.Fatalf("after backup expected ErrNoWorkspace, got %v", err)
	}
}

func TestClear(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear on empty dir: %v", err)
	}
	if err := s.Save(sampleWorkspace()); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNoWorkspace) {
		t.Fatalf("expected ErrNoWorkspace after Clear, got %v", err)
	}
}
