package session

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ihildy/timesheet-cli/internal/api"
	"github.com/ihildy/timesheet-cli/internal/weeklog"
)

// ChangeRecord is one description change with its approvals, if fetched.
type ChangeRecord struct {
	Change    api.DailyLogChange    `json:"change"`
	Approvals []api.ProjectApproval `json:"approvals,omitempty"`
	Latest    *api.ProjectApproval  `json:"latest_approval,omitempty"`
}

// History returns the change records of a saved row in backend order.
func (s *Session) History(ctx context.Context, key string, idx int) ([]ChangeRecord, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()
	ws, err := s.requireWorkspace()
	if err != nil {
		return nil, err
	}
	e, err := ws.Buffer.Entry(key, idx)
	if err != nil {
		return nil, err
	}
	id, ok := e.ServerID()
	if !ok {
		return nil, weeklog.ErrPendingEntry
	}

	changes, err := s.backend.ListDailyLogChanges(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch changes for log %d: %w", id, err)
	}
	out := make([]ChangeRecord, 0, len(changes))
	for _, c := range changes {
		rec := ChangeRecord{Change: c}
		if s.opts.Approvals {
			approvals, err := s.backend.ListProjectApprovals(ctx, c.ID)
			if err != nil {
				s.log.Warn("approvals unavailable", zap.Int64("change_id", c.ID), zap.Error(err))
			} else {
				rec.Approvals = approvals
				rec.Latest = LatestApproval(approvals)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// LatestApproval picks the approval with the greatest reviewed_at. Approvals
// without a parseable review time rank after reviewed ones; ties keep the
// first in backend order.
func LatestApproval(approvals []api.ProjectApproval) *api.ProjectApproval {
	if len(approvals) == 0 {
		return nil
	}
	best := 0
	bestAt, bestOK := reviewedAt(approvals[0])
	for i := 1; i < len(approvals); i++ {
		at, ok := reviewedAt(approvals[i])
		if !ok {
			continue
		}
		if !bestOK || at.After(bestAt) {
			best, bestAt, bestOK = i, at, true
		}
	}
	a := approvals[best]
	return &a
}

var reviewLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05", time.RFC1123}

func reviewedAt(a api.ProjectApproval) (time.Time, bool) {
	if a.ReviewedAt == "" {
		return time.Time{}, false
	}
	for _, layout := range reviewLayouts {
		if t, err := time.Parse(layout, a.ReviewedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Roster lists employees, or the direct reports of managerID when it is
// non-zero, ordered by id.
func (s *Session) Roster(ctx context.Context, managerID int64) ([]api.Employee, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()
	return s.roster(ctx, managerID)
}

// MyReports lists the acting employee's direct reports.
func (s *Session) MyReports(ctx context.Context) ([]api.Employee, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()
	p, err := s.profile(ctx)
	if err != nil {
		return nil, err
	}
	return s.roster(ctx, p.Employee.ID)
}

func (s *Session) roster(ctx context.Context, managerID int64) ([]api.Employee, error) {
	emps, err := s.backend.ListEmployeesWithDetails(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("fetch employees: %w", err)
	}
	sort.SliceStable(emps, func(i, j int) bool { return emps[i].ID < emps[j].ID })
	return emps, nil
}

func (s *Session) Projects(ctx context.Context) ([]api.Project, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()
	projects, err := s.backend.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch projects: %w", err)
	}
	return projects, nil
}

func (s *Session) EmployeeTimesheets(ctx context.Context, name string) ([]api.Timesheet, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()
	if name == "" {
		return nil, fmt.Errorf("employee name is required")
	}
	sheets, err := s.backend.ListTimesheetsByEmployeeName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("fetch timesheets for %s: %w", name, err)
	}
	sort.SliceStable(sheets, func(i, j int) bool { return sheets[i].ID < sheets[j].ID })
	return sheets, nil
}

func (s *Session) TimesheetLogs(ctx context.Context, timesheetID int64) ([]api.DailyLog, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()
	logs, err := s.backend.ListTimesheetLogs(ctx, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("fetch logs for timesheet %d: %w", timesheetID, err)
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].ID < logs[j].ID })
	return logs, nil
}

// Hierarchy orders the reporting chain from the top manager down to the
// employee. The backend sends managers nearest-first.
func Hierarchy(p api.Profile) []api.Employee {
	chain := make([]api.Employee, 0, len(p.ManagerHierarchy)+1)
	for i := len(p.ManagerHierarchy) - 1; i >= 0; i-- {
		chain = append(chain, p.ManagerHierarchy[i])
	}
	return append(chain, p.Employee)
}
