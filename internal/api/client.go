package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const DefaultPrefix = "/api"

var ErrNotFound = errors.New("not found")

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.Status, msg)
}

func (e *HTTPError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

type Client struct {
	BaseURL string
	Prefix  string
	HTTP    *http.Client
}

func New(baseURL, prefix string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{BaseURL: baseURL, Prefix: prefix, HTTP: httpClient}
}

func (c *Client) GetProfile(ctx context.Context, email string) (Profile, error) {
	q := url.Values{}
	q.Set("email", email)
	var out Profile
	if err := c.getJSON(ctx, "/employees/profile-with-hierarchy", q, &out); err != nil {
		return Profile{}, err
	}
	return out, nil
}

// ListEmployeesWithDetails lists all employees, or only the direct reports of
// managerID when it is non-zero.
func (c *Client) ListEmployeesWithDetails(ctx context.Context, managerID int64) ([]Employee, error) {
	q := url.Values{}
	if managerID != 0 {
		q.Set("manager_id", strconv.FormatInt(managerID, 10))
	}
	var out []Employee
	if err := c.getJSON(ctx, "/employees/with-details", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListDepartments(ctx context.Context) ([]Department, error) {
	var out []Department
	if err := c.getJSON(ctx, "/departments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListDesignations(ctx context.Context) ([]Designation, error) {
	var out []Designation
	if err := c.getJSON(ctx, "/designations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEmployee adds an employee. The backend answers with a message only.
func (c *Client) CreateEmployee(ctx context.Context, req NewEmployee) error {
	return c.sendJSON(ctx, http.MethodPost, "/employees", req, nil)
}

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var out []Project
	if err := c.getJSON(ctx, "/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTimesheetByEmployeeWeek(ctx context.Context, employeeID int64, weekStarting string) (Timesheet, error) {
	q := url.Values{}
	q.Set("employee_id", strconv.FormatInt(employeeID, 10))
	q.Set("week_starting", weekStarting)
	var out Timesheet
	if err := c.getJSON(ctx, "/timesheets/by-employee-week", q, &out); err != nil {
		return Timesheet{}, err
	}
	return out, nil
}

func (c *Client) CreateTimesheet(ctx context.Context, req CreateTimesheetRequest) (Timesheet, error) {
	var out Timesheet
	if err := c.sendJSON(ctx, http.MethodPost, "/timesheets", req, &out); err != nil {
		return Timesheet{}, err
	}
	return out, nil
}

func (c *Client) ListTimesheetsByEmployeeName(ctx context.Context, name string) ([]Timesheet, error) {
	q := url.Values{}
	q.Set("employee_name", name)
	var out []Timesheet
	if err := c.getJSON(ctx, "/timesheets/by-employee-name", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListTimesheetLogs(ctx context.Context, timesheetID int64) ([]DailyLog, error) {
	var out []DailyLog
	path := "/timesheets/" + strconv.FormatInt(timesheetID, 10) + "/daily-logs"
	if err := c.getJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListDailyLogs(ctx context.Context, timesheetID int64) ([]DailyLog, error) {
	q := url.Values{}
	q.Set("timesheet_id", strconv.FormatInt(timesheetID, 10))
	var out []DailyLog
	if err := c.getJSON(ctx, "/daily-logs", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateDailyLog(ctx context.Context, payload DailyLogPayload) (DailyLog, error) {
	var out DailyLog
	if err := c.sendJSON(ctx, http.MethodPost, "/daily-logs", payload, &out); err != nil {
		return DailyLog{}, err
	}
	return out, nil
}

func (c *Client) UpdateDailyLog(ctx context.Context, id int64, payload DailyLogPayload) (DailyLog, error) {
	var out DailyLog
	if err := c.sendJSON(ctx, http.MethodPut, dailyLogPath(id), payload, &out); err != nil {
		return DailyLog{}, err
	}
	return out, nil
}

func (c *Client) DeleteDailyLog(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, dailyLogPath(id), nil, nil)
}

func (c *Client) ListDailyLogChanges(ctx context.Context, dailyLogID int64) ([]DailyLogChange, error) {
	var out []DailyLogChange
	if err := c.getJSON(ctx, dailyLogPath(dailyLogID)+"/changes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateDailyLogChange(ctx context.Context, req CreateChangeRequest) (DailyLogChange, error) {
	var out DailyLogChange
	if err := c.sendJSON(ctx, http.MethodPost, "/daily-log-changes", req, &out); err != nil {
		return DailyLogChange{}, err
	}
	return out, nil
}

func (c *Client) ListProjectApprovals(ctx context.Context, changeID int64) ([]ProjectApproval, error) {
	q := url.Values{}
	q.Set("daily_log_change_id", strconv.FormatInt(changeID, 10))
	var out []ProjectApproval
	if err := c.getJSON(ctx, "/project-approvals", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func dailyLogPath(id int64) string {
	return "/daily-logs/" + strconv.FormatInt(id, 10)
}

func (c *Client) endpoint(path string, q url.Values) string {
	prefix := c.Prefix
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	u := strings.TrimRight(c.BaseURL, "/") + strings.TrimRight(prefix, "/") + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, q), nil)
	if err != nil {
		return fmt.Errorf("build GET request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, path, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, nil), body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{
			Method:  req.Method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(data),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s %s response: %w", req.Method, path, err)
	}
	return nil
}

// errorMessage pulls a human-readable message out of an error body. The
// backend uses {"error": ...} on some routes and {"message": ...} on others.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}
