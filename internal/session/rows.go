package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ihildy/timesheet-cli/internal/api"
	"github.com/ihildy/timesheet-cli/internal/weeklog"
)

// Edit is a set of field changes for one row. Nil fields are left alone.
type Edit struct {
	ProjectID   *int64
	Description *string
	Times       map[weeklog.TimeField]string
}

func (e Edit) Empty() bool {
	return e.ProjectID == nil && e.Description == nil && len(e.Times) == 0
}

// SaveResult describes what a save did on the backend.
type SaveResult struct {
	Log      api.DailyLog `json:"log"`
	Created  bool         `json:"created"`
	Audited  bool         `json:"audited"`
	AuditErr string       `json:"audit_error,omitempty"`
}

func (s *Session) AddRow(key string) (weeklog.Entry, error) {
	done, err := s.begin()
	if err != nil {
		return weeklog.Entry{}, err
	}
	defer done()
	ws, err := s.requireWorkspace()
	if err != nil {
		return weeklog.Entry{}, err
	}
	return ws.Buffer.AddRow(key)
}

// EditRow applies all of edit or none of it.
func (s *Session) EditRow(key string, idx int, edit Edit) (weeklog.Entry, error) {
	done, err := s.begin()
	if err != nil {
		return weeklog.Entry{}, err
	}
	defer done()
	ws, err := s.requireWorkspace()
	if err != nil {
		return weeklog.Entry{}, err
	}

	for field := range edit.Times {
		if _, err := weeklog.ParseTimeField(string(field)); err != nil {
			return weeklog.Entry{}, err
		}
	}

	next := ws.Buffer.Clone()
	if edit.ProjectID != nil {
		if err := next.SetProject(key, idx, *edit.ProjectID); err != nil {
			return weeklog.Entry{}, err
		}
	}
	if edit.Description != nil {
		if err := next.SetDescription(key, idx, *edit.Description); err != nil {
			return weeklog.Entry{}, err
		}
	}
	for _, field := range weeklog.TimeFields {
		v, ok := edit.Times[field]
		if !ok {
			continue
		}
		if err := next.SetTime(key, idx, field, v); err != nil {
			return weeklog.Entry{}, err
		}
	}
	e, err := next.Entry(key, idx)
	if err != nil {
		return weeklog.Entry{}, err
	}
	ws.Buffer = next
	ws.UpdatedAt = s.opts.Now()
	return e, nil
}

// SaveRow validates the row and creates or updates it on the backend, then
// rebuilds the whole buffer from the backend's logs. A failed validation makes
// no network call.
func (s *Session) SaveRow(ctx context.Context, key string, idx int) (SaveResult, error) {
	done, err := s.begin()
	if err != nil {
		return SaveResult{}, err
	}
	defer done()
	ws, err := s.requireWorkspace()
	if err != nil {
		return SaveResult{}, err
	}

	e, err := ws.Buffer.Entry(key, idx)
	if err != nil {
		return SaveResult{}, err
	}
	if err := weeklog.ValidateForSave(e, s.opts.Shift); err != nil {
		return SaveResult{}, err
	}
	payload := s.payload(ws.TimesheetID, e)

	var res SaveResult
	id, bound := e.ServerID()
	if !bound {
		s.log.Info("creating daily log", zap.String("date", e.Date), zap.Int64("project_id", e.ProjectID))
		res.Log, err = s.backend.CreateDailyLog(ctx, payload)
		if err != nil {
			return SaveResult{}, fmt.Errorf("create daily log: %w", err)
		}
		res.Created = true
	} else {
		s.log.Info("updating daily log", zap.Int64("id", id), zap.String("date", e.Date))
		res.Log, err = s.backend.UpdateDailyLog(ctx, id, payload)
		if err != nil {
			return SaveResult{}, fmt.Errorf("update daily log %d: %w", id, err)
		}
		if res.Log.ID == 0 {
			res.Log.ID = id
		}
		audited, auditErr := s.recordChange(ctx, id, e)
		res.Audited = audited
		if auditErr != nil {
			s.log.Warn("description change not recorded", zap.Int64("id", id), zap.Error(auditErr))
			res.AuditErr = auditErr.Error()
		}
	}

	if err := s.refresh(ctx); err != nil {
		return res, fmt.Errorf("saved, but reloading the week failed: %w", err)
	}
	return res, nil
}

func (s *Session) payload(timesheetID int64, e weeklog.Entry) api.DailyLogPayload {
	p := api.DailyLogPayload{
		TimesheetID: timesheetID,
		LogDate:     e.Date,
		ProjectID:   e.ProjectID,
		TotalHours:  s.opts.Shift.Total(e),
		Description: e.Description,
	}
	if s.opts.Shift == weeklog.ShiftSplit {
		p.MorningIn = e.MorningIn
		p.MorningOut = e.MorningOut
		p.AfternoonIn = e.AfternoonIn
		p.AfternoonOut = e.AfternoonOut
		return p
	}
	p.StartTime = e.Start
	p.EndTime = e.End
	return p
}

func (s *Session) recordChange(ctx context.Context, id int64, e weeklog.Entry) (bool, error) {
	changed := e.DescriptionChanged()
	if !changed || s.opts.Audit == weeklog.AuditOff {
		return false, nil
	}
	prior := 0
	if s.opts.Audit.NeedsPriorCount() {
		changes, err := s.backend.ListDailyLogChanges(ctx, id)
		if err != nil {
			return false, fmt.Errorf("list prior changes: %w", err)
		}
		prior = len(changes)
	}
	if !s.opts.Audit.ShouldRecord(changed, prior) {
		return false, nil
	}
	_, err := s.backend.CreateDailyLogChange(ctx, api.CreateChangeRequest{
		DailyLogID:     id,
		NewDescription: e.Description,
		ProjectID:      e.ProjectID,
	})
	if err != nil {
		return false, fmt.Errorf("record description change: %w", err)
	}
	return true, nil
}

// RemoveRow deletes a row. A bound row is deleted on the backend first; if
// that fails the buffer is left as it was.
func (s *Session) RemoveRow(ctx context.Context, key string, idx int) (weeklog.Entry, error) {
	done, err := s.begin()
	if err != nil {
		return weeklog.Entry{}, err
	}
	defer done()
	ws, err := s.requireWorkspace()
	if err != nil {
		return weeklog.Entry{}, err
	}

	e, err := ws.Buffer.Entry(key, idx)
	if err != nil {
		return weeklog.Entry{}, err
	}
	if id, ok := e.ServerID(); ok {
		s.log.Info("deleting daily log", zap.Int64("id", id))
		if err := s.backend.DeleteDailyLog(ctx, id); err != nil {
			return weeklog.Entry{}, fmt.Errorf("delete daily log %d: %w", id, err)
		}
	}
	removed, err := ws.Buffer.RemoveRow(key, idx)
	if err != nil {
		return weeklog.Entry{}, err
	}
	ws.UpdatedAt = s.opts.Now()
	return removed, nil
}
