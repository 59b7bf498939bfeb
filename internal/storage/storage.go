package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ihildy/timesheet-cli/internal/weeklog"
)

const workspaceFile = "workspace.json"

var ErrNoWorkspace = errors.New("no week loaded; run `timesheet week load --start YYYY-MM-DD` first")

// Workspace is the week a user is currently editing. It survives between
// invocations so row commands can address the buffer built by `week load`.
type Workspace struct {
	Email        string          `json:"email"`
	EmployeeID   int64           `json:"employee_id"`
	EmployeeName string          `json:"employee_name,omitempty"`
	TimesheetID  int64           `json:"timesheet_id"`
	WeekStart    string          `json:"week_start"`
	WeekEnd      string          `json:"week_end,omitempty"`
	ExplicitEnd  bool            `json:"explicit_end,omitempty"`
	Buffer       *weeklog.Buffer `json:"buffer"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type Store struct {
	Dir string
}

func New(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) Path() string {
	return filepath.Join(s.Dir, workspaceFile)
}

// Load reads the saved workspace. A corrupt file is moved aside to
// <path>.corrupt and reported.
func (s *Store) Load() (*Workspace, error) {
	path := s.Path()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoWorkspace
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var ws Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return nil, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	if ws.Buffer == nil || ws.TimesheetID == 0 {
		return nil, ErrNoWorkspace
	}
	return &ws, nil
}

// Save atomically replaces the workspace file.
func (s *Store) Save(ws *Workspace) error {
	if ws == nil {
		return errors.New("workspace is nil")
	}
	path := s.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

func (s *Store) Clear() error {
	err := os.Remove(s.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage error removing workspace: %w", err)
	}
	return nil
}
