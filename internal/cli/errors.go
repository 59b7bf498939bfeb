package cli

import (
	"errors"

	"github.com/ihildy/timesheet-cli/internal/api"
	"github.com/ihildy/timesheet-cli/internal/session"
	"github.com/ihildy/timesheet-cli/internal/storage"
	"github.com/ihildy/timesheet-cli/internal/weeklog"
)

// errorCode maps an error to the stable code used in JSON error payloads.
func errorCode(err error) string {
	var verr *weeklog.ValidationError
	var herr *api.HTTPError
	switch {
	case errors.As(err, &verr):
		return "validation_error"
	case errors.Is(err, api.ErrNotFound):
		return "not_found"
	case errors.As(err, &herr):
		return "backend_error"
	case errors.Is(err, session.ErrBusy):
		return "busy"
	case errors.Is(err, storage.ErrNoWorkspace):
		return "no_workspace"
	case errors.Is(err, weeklog.ErrPendingEntry):
		return "pending_entry"
	case errors.Is(err, weeklog.ErrUnknownDay), errors.Is(err, weeklog.ErrRowOutOfRange):
		return "invalid_row"
	case errors.Is(err, session.ErrNoIdentity):
		return "no_identity"
	default:
		return "error"
	}
}
