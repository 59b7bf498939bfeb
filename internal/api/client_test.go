package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, DefaultPrefix, srv.Client())
}

func TestGetProfileSendsEmail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/employees/profile-with-hierarchy" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("email"); got != "ana@example.com" {
			t.Errorf("email = %q", got)
		}
		_, _ = io.WriteString(w, `{
			"employee": {"id": 7, "employee_name": "Ana", "email": "ana@example.com", "reports_to": "Bo"},
			"manager_hierarchy": [{"id": 1, "employee_name": "Root", "reports_to": null}, {"id": 3, "employee_name": "Bo", "reports_to": 1}],
			"department": {"id": 2, "name": "Ops"},
			"designation": {"id": 4, "title": "Engineer"}
		}`)
	})

	p, err := c.GetProfile(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.Employee.ID != 7 || p.Employee.ReportsTo.Name != "Bo" {
		t.Fatalf("employee = %+v", p.Employee)
	}
	if len(p.ManagerHierarchy) != 2 || p.ManagerHierarchy[1].ManagerID() != 1 {
		t.Fatalf("hierarchy = %+v", p.ManagerHierarchy)
	}
	if !p.ManagerHierarchy[0].ReportsTo.IsZero() {
		t.Fatalf("root reports_to should be empty")
	}
	if p.Department == nil || p.Department.Name != "Ops" {
		t.Fatalf("department = %+v", p.Department)
	}
}

func TestNotFoundUnwraps(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Timesheet not found"}`)
	})

	_, err := c.GetTimesheetByEmployeeWeek(context.Background(), 7, "2025-07-07")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.Message != "Timesheet not found" {
		t.Fatalf("HTTPError = %+v", herr)
	}
}

func TestErrorMessageFallbacks(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"message":"bad project"}`, "bad project"},
		{`{"error":"e","message":"m"}`, "e"},
		{"plain text\n", "plain text"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := errorMessage([]byte(tt.body)); got != tt.want {
			t.Errorf("errorMessage(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}

	err := &HTTPError{Method: "GET", Path: "/projects", Status: 500}
	if !strings.Contains(err.Error(), "Internal Server Error") {
		t.Fatalf("Error() = %q", err.Error())
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("500 must not unwrap to ErrNotFound")
	}
}

func TestCreateDailyLogPostsPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/daily-logs" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		var got DailyLogPayload
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		if got.TimesheetID != 11 || got.TotalHours != "8:00" || got.MorningIn != "" {
			t.Errorf("payload = %+v", got)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 99, "timesheet_id": 11, "project_id": 2, "date": "2025-07-07T00:00:00Z", "task_description": "x"}`)
	})

	out, err := c.CreateDailyLog(context.Background(), DailyLogPayload{
		TimesheetID: 11,
		LogDate:     "2025-07-07",
		ProjectID:   2,
		StartTime:   "22:00",
		EndTime:     "06:00",
		TotalHours:  "8:00",
	})
	if err != nil {
		t.Fatalf("CreateDailyLog: %v", err)
	}
	if out.ID != 99 || out.LogDate != "2025-07-07T00:00:00Z" || out.Description != "x" {
		t.Fatalf("decoded = %+v", out)
	}
}

func TestUpdateAndDeleteDailyLog(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = io.WriteString(w, `{"id": 5}`)
	})

	if _, err := c.UpdateDailyLog(context.Background(), 5, DailyLogPayload{ProjectID: 1}); err != nil {
		t.Fatalf("UpdateDailyLog: %v", err)
	}
	if err := c.DeleteDailyLog(context.Background(), 5); err != nil {
		t.Fatalf("DeleteDailyLog: %v", err)
	}
	want := []string{"PUT /api/daily-logs/5", "DELETE /api/daily-logs/5"}
	if strings.Join(calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v", calls)
	}
}

func TestListDecodersAcceptAlternateFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/projects":
			_, _ = io.WriteString(w, `[{"id":1,"name":"Alpha"},{"id":2,"project_name":"Beta"}]`)
		case "/v2/timesheets/by-employee-name":
			_, _ = io.WriteString(w, `[{"id":3,"employee_id":7,"start_date":"2025-07-07"}]`)
		case "/v2/daily-logs/4/changes":
			_, _ = io.WriteString(w, `[{"id":8,"daily_log_id":4,"change_description":"old wording","changed_at":"2025-07-08T10:00:00Z"}]`)
		case "/v2/project-approvals":
			if r.URL.Query().Get("daily_log_change_id") != "8" {
				t.Errorf("query = %s", r.URL.RawQuery)
			}
			_, _ = io.WriteString(w, `[{"id":1,"daily_log_change_id":8,"status":"approved","reviewed_at":null,"comments":null}]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	})
	c.Prefix = "v2"
	ctx := context.Background()

	projects, err := c.ListProjects(ctx)
	if err != nil || len(projects) != 2 || projects[1].Name != "Beta" {
		t.Fatalf("projects = %+v, %v", projects, err)
	}
	sheets, err := c.ListTimesheetsByEmployeeName(ctx, "Ana")
	if err != nil || len(sheets) != 1 || sheets[0].WeekStarting != "2025-07-07" {
		t.Fatalf("timesheets = %+v, %v", sheets, err)
	}
	changes, err := c.ListDailyLogChanges(ctx, 4)
	if err != nil || len(changes) != 1 || changes[0].NewDescription != "old wording" {
		t.Fatalf("changes = %+v, %v", changes, err)
	}
	approvals, err := c.ListProjectApprovals(ctx, 8)
	if err != nil || len(approvals) != 1 || approvals[0].ReviewedAt != "" || approvals[0].Status != "approved" {
		t.Fatalf("approvals = %+v, %v", approvals, err)
	}
}

func TestRosterQuery(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.RawQuery)
		_, _ = io.WriteString(w, `[]`)
	})
	ctx := context.Background()
	if _, err := c.ListEmployeesWithDetails(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ListEmployeesWithDetails(ctx, 12); err != nil {
		t.Fatal(err)
	}
	if seen[0] != "" || seen[1] != "manager_id=12" {
		t.Fatalf("queries = %q", seen)
	}
}

func TestCreateEmployeeAndLookups(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/departments":
			_, _ = io.WriteString(w, `[{"id": 2, "name": "Ops"}]`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/designations":
			_, _ = io.WriteString(w, `[{"id": 4, "title": "Engineer"}]`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/employees":
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("decode body: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"message": "Employee added successfully"}`)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	depts, err := c.ListDepartments(ctx)
	if err != nil || len(depts) != 1 || depts[0].Name != "Ops" {
		t.Fatalf("ListDepartments = %+v, %v", depts, err)
	}
	des, err := c.ListDesignations(ctx)
	if err != nil || len(des) != 1 || des[0].Title != "Engineer" {
		t.Fatalf("ListDesignations = %+v, %v", des, err)
	}

	err = c.CreateEmployee(ctx, NewEmployee{Name: "Cy", Email: "cy@example.com", DepartmentID: 2, DesignationID: 4})
	if err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}
	if got["employee_name"] != "Cy" || got["department_id"] != float64(2) || got["designation_id"] != float64(4) {
		t.Fatalf("body = %v", got)
	}
	if v, ok := got["reports_to"]; !ok || v != nil {
		t.Fatalf("reports_to should be sent as null, got %v (present=%v)", v, ok)
	}
}

func TestCreateEmployeeSurfacesBackendError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error": "Email already exists"}`)
	})
	err := c.CreateEmployee(context.Background(), NewEmployee{Name: "Cy", Email: "cy@example.com", DepartmentID: 2, DesignationID: 4})
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.Status != http.StatusBadRequest || herr.Message != "Email already exists" {
		t.Fatalf("err = %v", err)
	}
}
