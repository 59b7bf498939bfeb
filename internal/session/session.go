package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ihildy/timesheet-cli/internal/api"
	"github.com/ihildy/timesheet-cli/internal/storage"
	"github.com/ihildy/timesheet-cli/internal/weeklog"
)

// ErrBusy is returned when an action starts while another is still running.
var ErrBusy = errors.New("another action is in progress")

var ErrNoIdentity = errors.New("acting email is not configured; set it with `timesheet config set-email` or --email")

// Backend is the subset of the REST API a session drives.
type Backend interface {
	GetProfile(ctx context.Context, email string) (api.Profile, error)
	ListEmployeesWithDetails(ctx context.Context, managerID int64) ([]api.Employee, error)
	ListProjects(ctx context.Context) ([]api.Project, error)
	ListDepartments(ctx context.Context) ([]api.Department, error)
	ListDesignations(ctx context.Context) ([]api.Designation, error)
	CreateEmployee(ctx context.Context, req api.NewEmployee) error
	GetTimesheetByEmployeeWeek(ctx context.Context, employeeID int64, weekStarting string) (api.Timesheet, error)
	CreateTimesheet(ctx context.Context, req api.CreateTimesheetRequest) (api.Timesheet, error)
	ListTimesheetsByEmployeeName(ctx context.Context, name string) ([]api.Timesheet, error)
	ListTimesheetLogs(ctx context.Context, timesheetID int64) ([]api.DailyLog, error)
	ListDailyLogs(ctx context.Context, timesheetID int64) ([]api.DailyLog, error)
	CreateDailyLog(ctx context.Context, payload api.DailyLogPayload) (api.DailyLog, error)
	UpdateDailyLog(ctx context.Context, id int64, payload api.DailyLogPayload) (api.DailyLog, error)
	DeleteDailyLog(ctx context.Context, id int64) error
	ListDailyLogChanges(ctx context.Context, dailyLogID int64) ([]api.DailyLogChange, error)
	CreateDailyLogChange(ctx context.Context, req api.CreateChangeRequest) (api.DailyLogChange, error)
	ListProjectApprovals(ctx context.Context, changeID int64) ([]api.ProjectApproval, error)
}

type Options struct {
	Email     string
	Shift     weeklog.ShiftModel
	Keys      weeklog.KeyFormat
	Audit     weeklog.AuditPolicy
	Approvals bool
	Now       func() time.Time
	KeyGen    *weeklog.KeyGen
}

// Session runs one user action at a time against the backend and owns the
// loaded week.
type Session struct {
	backend Backend
	opts    Options
	log     *zap.Logger
	busy    atomic.Bool
	ws      *storage.Workspace
}

func New(backend Backend, opts Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Shift == "" {
		opts.Shift = weeklog.ShiftSingle
	}
	if opts.Keys == "" {
		opts.Keys = weeklog.KeyFormatISO
	}
	if opts.Audit == "" {
		opts.Audit = weeklog.AuditAlways
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Email = strings.TrimSpace(opts.Email)
	return &Session{backend: backend, opts: opts, log: logger}
}

// begin claims the busy flag. The returned func releases it.
func (s *Session) begin() (func(), error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	return func() { s.busy.Store(false) }, nil
}

func (s *Session) Busy() bool {
	return s.busy.Load()
}

func (s *Session) reconciler() *weeklog.Reconciler {
	r := weeklog.NewReconciler(s.opts.Shift, s.opts.Keys)
	if s.opts.KeyGen != nil {
		r.Gen = s.opts.KeyGen
	}
	return r
}

// Workspace returns the loaded week, or nil.
func (s *Session) Workspace() *storage.Workspace {
	return s.ws
}

// Restore installs a workspace saved by an earlier invocation. A shift model
// changed in config since `week load` is applied to the buffer, recomputing
// every total. A changed key format only takes effect on the next reload.
func (s *Session) Restore(ws *storage.Workspace) error {
	if ws == nil || ws.Buffer == nil {
		return storage.ErrNoWorkspace
	}
	if s.opts.Email != "" && ws.Email != "" && !strings.EqualFold(ws.Email, s.opts.Email) {
		return fmt.Errorf("loaded week belongs to %s, not %s; run `timesheet week load` again", ws.Email, s.opts.Email)
	}
	if s.opts.KeyGen != nil {
		ws.Buffer.UseKeyGen(s.opts.KeyGen)
	}
	if ws.Buffer.Shift != s.opts.Shift {
		s.log.Info("applying shift model to loaded week",
			zap.String("from", string(ws.Buffer.Shift)), zap.String("to", string(s.opts.Shift)))
		ws.Buffer.SetShift(s.opts.Shift)
	}
	s.ws = ws
	return nil
}

func (s *Session) requireWorkspace() (*storage.Workspace, error) {
	if s.ws == nil || s.ws.Buffer == nil {
		return nil, storage.ErrNoWorkspace
	}
	return s.ws, nil
}

func (s *Session) Profile(ctx context.Context) (api.Profile, error) {
	done, err := s.begin()
	if err != nil {
		return api.Profile{}, err
	}
	defer done()
	return s.profile(ctx)
}

func (s *Session) profile(ctx context.Context) (api.Profile, error) {
	if s.opts.Email == "" {
		return api.Profile{}, ErrNoIdentity
	}
	s.log.Debug("fetching profile", zap.String("email", s.opts.Email))
	p, err := s.backend.GetProfile(ctx, s.opts.Email)
	if err != nil {
		return api.Profile{}, fmt.Errorf("fetch profile for %s: %w", s.opts.Email, err)
	}
	if p.Employee.ID == 0 {
		return api.Profile{}, fmt.Errorf("no employee found for %s", s.opts.Email)
	}
	return p, nil
}

// LoadWeek finds the acting employee's timesheet for the week starting at
// start, creating it when the backend has none, and rebuilds the buffer from
// its logs. end may be empty for an implicit seven-day week.
func (s *Session) LoadWeek(ctx context.Context, start, end string) (*storage.Workspace, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	days, err := weeklog.ValidateWeek(start, end, s.opts.Keys)
	if err != nil {
		return nil, err
	}

	p, err := s.profile(ctx)
	if err != nil {
		return nil, err
	}
	emp := p.Employee

	ts, err := s.backend.GetTimesheetByEmployeeWeek(ctx, emp.ID, start)
	switch {
	case errors.Is(err, api.ErrNotFound):
		req := api.CreateTimesheetRequest{EmployeeID: emp.ID, WeekStarting: start}
		if end != "" {
			req.EndDate = end
		}
		s.log.Info("creating timesheet", zap.Int64("employee_id", emp.ID), zap.String("week_starting", start))
		ts, err = s.backend.CreateTimesheet(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("create timesheet: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("look up timesheet: %w", err)
	}
	if ts.ID == 0 {
		return nil, fmt.Errorf("backend returned a timesheet without an id")
	}

	logs, err := s.backend.ListDailyLogs(ctx, ts.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch daily logs: %w", err)
	}
	s.log.Debug("loaded week", zap.Int64("timesheet_id", ts.ID), zap.Int("logs", len(logs)))

	s.ws = &storage.Workspace{
		Email:        s.opts.Email,
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		TimesheetID:  ts.ID,
		WeekStart:    start,
		WeekEnd:      days[len(days)-1].Date,
		ExplicitEnd:  end != "",
		Buffer:       s.reconciler().Reconcile(days, toLogs(logs)),
		UpdatedAt:    s.opts.Now(),
	}
	return s.ws, nil
}

// Reload re-fetches the loaded timesheet's logs and rebuilds the buffer.
// Unsaved pending rows are discarded.
func (s *Session) Reload(ctx context.Context) (*storage.Workspace, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return s.ws, nil
}

func (s *Session) refresh(ctx context.Context) error {
	ws, err := s.requireWorkspace()
	if err != nil {
		return err
	}
	days := ws.Buffer.Days
	if ws.Buffer.Keys != s.opts.Keys {
		end := ""
		if ws.ExplicitEnd {
			end = ws.WeekEnd
		}
		days = weeklog.ExpandWeek(ws.WeekStart, end, s.opts.Keys)
	}
	logs, err := s.backend.ListDailyLogs(ctx, ws.TimesheetID)
	if err != nil {
		return fmt.Errorf("refresh daily logs: %w", err)
	}
	ws.Buffer = s.reconciler().Reconcile(days, toLogs(logs))
	ws.UpdatedAt = s.opts.Now()
	s.log.Debug("buffer refreshed", zap.Int64("timesheet_id", ws.TimesheetID), zap.Int("logs", len(logs)))
	return nil
}

func toLogs(in []api.DailyLog) []weeklog.Log {
	out := make([]weeklog.Log, 0, len(in))
	for _, l := range in {
		out = append(out, weeklog.Log{
			ID:           l.ID,
			Date:         l.LogDate,
			ProjectID:    l.ProjectID,
			Description:  l.Description,
			Start:        l.StartTime,
			End:          l.EndTime,
			MorningIn:    l.MorningIn,
			MorningOut:   l.MorningOut,
			AfternoonIn:  l.AfternoonIn,
			AfternoonOut: l.AfternoonOut,
			TotalHours:   l.TotalHours,
		})
	}
	return out
}
