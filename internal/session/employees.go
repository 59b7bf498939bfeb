package session

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ihildy/timesheet-cli/internal/api"
	"github.com/ihildy/timesheet-cli/internal/weeklog"
)

// Same shape the backend enforces for new employees.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateNewEmployee checks an add-employee request locally and returns it
// with name and email trimmed.
func ValidateNewEmployee(req api.NewEmployee) (api.NewEmployee, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Name == "":
		return req, &weeklog.ValidationError{Field: "employee_name", Message: "name is required"}
	case req.Email == "":
		return req, &weeklog.ValidationError{Field: "email", Message: "email is required"}
	case !emailPattern.MatchString(req.Email):
		return req, &weeklog.ValidationError{Field: "email", Message: "invalid email format"}
	case req.DepartmentID <= 0:
		return req, &weeklog.ValidationError{Field: "department_id", Message: "department is required"}
	case req.DesignationID <= 0:
		return req, &weeklog.ValidationError{Field: "designation_id", Message: "designation is required"}
	case req.ReportsTo != nil && *req.ReportsTo <= 0:
		return req, &weeklog.ValidationError{Field: "reports_to", Message: "manager id must be positive"}
	}
	return req, nil
}

// AddEmployee creates an employee after local validation. Nothing is sent
// when validation fails.
func (s *Session) AddEmployee(ctx context.Context, req api.NewEmployee) (api.NewEmployee, error) {
	done, err := s.begin()
	if err != nil {
		return api.NewEmployee{}, err
	}
	defer done()

	req, err = ValidateNewEmployee(req)
	if err != nil {
		return api.NewEmployee{}, err
	}
	s.log.Info("creating employee", zap.String("email", req.Email),
		zap.Int64("department_id", req.DepartmentID), zap.Int64("designation_id", req.DesignationID))
	if err := s.backend.CreateEmployee(ctx, req); err != nil {
		return api.NewEmployee{}, fmt.Errorf("create employee: %w", err)
	}
	return req, nil
}

func (s *Session) Departments(ctx context.Context) ([]api.Department, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()
	out, err := s.backend.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch departments: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Session) Designations(ctx context.Context) ([]api.Designation, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()
	out, err := s.backend.ListDesignations(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch designations: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
