package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Designation struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// NewEmployee is the body of an admin "add employee" request. ReportsTo is
// sent as null for an employee without a manager.
type NewEmployee struct {
	Name          string `json:"employee_name"`
	Email         string `json:"email"`
	ReportsTo     *int64 `json:"reports_to"`
	DepartmentID  int64  `json:"department_id"`
	DesignationID int64  `json:"designation_id"`
}

// Ref is a reporting-manager reference. Depending on the endpoint the backend
// sends either the manager's id or the manager's name.
type Ref struct {
	ID   int64
	Name string
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		*r = Ref{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		if id, err := strconv.ParseInt(name, 10, 64); err == nil {
			*r = Ref{ID: id}
			return nil
		}
		*r = Ref{Name: name}
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("decode reports_to: %w", err)
	}
	*r = Ref{ID: id}
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	switch {
	case r.Name != "":
		return json.Marshal(r.Name)
	case r.ID != 0:
		return json.Marshal(r.ID)
	default:
		return []byte("null"), nil
	}
}

func (r Ref) IsZero() bool {
	return r.ID == 0 && r.Name == ""
}

type Employee struct {
	ID               int64        `json:"id"`
	Name             string       `json:"employee_name"`
	Email            string       `json:"email"`
	Status           string       `json:"status,omitempty"`
	DepartmentID     int64        `json:"department_id,omitempty"`
	DesignationID    int64        `json:"designation_id,omitempty"`
	ReportsToID      int64        `json:"reports_to_id,omitempty"`
	ReportsTo        Ref          `json:"reports_to"`
	Department       *Department  `json:"department,omitempty"`
	Designation      *Designation `json:"designation,omitempty"`
	ManagerHierarchy []Employee   `json:"manager_hierarchy,omitempty"`
}

// ManagerID returns the reporting manager's id when the backend sent one.
func (e Employee) ManagerID() int64 {
	if e.ReportsToID != 0 {
		return e.ReportsToID
	}
	return e.ReportsTo.ID
}

type Profile struct {
	Employee         Employee     `json:"employee"`
	ManagerHierarchy []Employee   `json:"manager_hierarchy"`
	Department       *Department  `json:"department"`
	Designation      *Designation `json:"designation"`
}

type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (p *Project) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		ProjectName string `json:"project_name"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	name := raw.Name
	if name == "" {
		name = raw.ProjectName
	}
	*p = Project{ID: raw.ID, Name: name, Description: raw.Description}
	return nil
}

type Timesheet struct {
	ID           int64  `json:"id"`
	EmployeeID   int64  `json:"employee_id"`
	WeekStarting string `json:"week_starting"`
	EndDate      string `json:"end_date,omitempty"`
}

func (t *Timesheet) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           int64  `json:"id"`
		EmployeeID   int64  `json:"employee_id"`
		WeekStarting string `json:"week_starting"`
		StartDate    string `json:"start_date"`
		EndDate      string `json:"end_date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start := raw.WeekStarting
	if start == "" {
		start = raw.StartDate
	}
	*t = Timesheet{ID: raw.ID, EmployeeID: raw.EmployeeID, WeekStarting: start, EndDate: raw.EndDate}
	return nil
}

type CreateTimesheetRequest struct {
	EmployeeID   int64  `json:"employee_id"`
	WeekStarting string `json:"week_starting"`
	EndDate      string `json:"end_date,omitempty"`
}

type DailyLog struct {
	ID           int64  `json:"id"`
	TimesheetID  int64  `json:"timesheet_id"`
	ProjectID    int64  `json:"project_id"`
	LogDate      string `json:"log_date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	MorningIn    string `json:"morning_in,omitempty"`
	MorningOut   string `json:"morning_out,omitempty"`
	AfternoonIn  string `json:"afternoon_in,omitempty"`
	AfternoonOut string `json:"afternoon_out,omitempty"`
	TotalHours   string `json:"total_hours"`
	Description  string `json:"description"`
}

// UnmarshalJSON accepts both the description/task_description and the
// log_date/date spellings used by different backend versions.
func (l *DailyLog) UnmarshalJSON(data []byte) error {
	type alias DailyLog
	var raw struct {
		alias
		Date            string  `json:"date"`
		TaskDescription string  `json:"task_description"`
		ProjectID       *int64  `json:"project_id"`
		Description     *string `json:"description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = DailyLog(raw.alias)
	if l.LogDate == "" {
		l.LogDate = raw.Date
	}
	if raw.ProjectID != nil {
		l.ProjectID = *raw.ProjectID
	}
	if raw.Description != nil {
		l.Description = *raw.Description
	} else {
		l.Description = raw.TaskDescription
	}
	return nil
}

// DailyLogPayload is the body of create and update requests.
type DailyLogPayload struct {
	TimesheetID  int64  `json:"timesheet_id"`
	LogDate      string `json:"log_date"`
	ProjectID    int64  `json:"project_id"`
	StartTime    string `json:"start_time,omitempty"`
	EndTime      string `json:"end_time,omitempty"`
	MorningIn    string `json:"morning_in,omitempty"`
	MorningOut   string `json:"morning_out,omitempty"`
	AfternoonIn  string `json:"afternoon_in,omitempty"`
	AfternoonOut string `json:"afternoon_out,omitempty"`
	TotalHours   string `json:"total_hours"`
	Description  string `json:"description"`
}

type DailyLogChange struct {
	ID             int64  `json:"id"`
	DailyLogID     int64  `json:"daily_log_id"`
	ProjectID      int64  `json:"project_id,omitempty"`
	NewDescription string `json:"new_description"`
	ChangedAt      string `json:"changed_at"`
}

func (c *DailyLogChange) UnmarshalJSON(data []byte) error {
	type alias DailyLogChange
	var raw struct {
		alias
		ProjectID         *int64 `json:"project_id"`
		ChangeDescription string `json:"change_description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = DailyLogChange(raw.alias)
	if raw.ProjectID != nil {
		c.ProjectID = *raw.ProjectID
	}
	if c.NewDescription == "" {
		c.NewDescription = raw.ChangeDescription
	}
	return nil
}

type CreateChangeRequest struct {
	DailyLogID     int64  `json:"daily_log_id"`
	NewDescription string `json:"new_description"`
	ProjectID      int64  `json:"project_id,omitempty"`
}

type ProjectApproval struct {
	ID               int64  `json:"id"`
	DailyLogChangeID int64  `json:"daily_log_change_id"`
	ManagerID        int64  `json:"manager_id,omitempty"`
	Status           string `json:"status"`
	Comments         string `json:"comments,omitempty"`
	ReviewedAt       string `json:"reviewed_at,omitempty"`
}

func (a *ProjectApproval) UnmarshalJSON(data []byte) error {
	type alias ProjectApproval
	var raw struct {
		alias
		ManagerID  *int64  `json:"manager_id"`
		Comments   *string `json:"comments"`
		ReviewedAt *string `json:"reviewed_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = ProjectApproval(raw.alias)
	if raw.ManagerID != nil {
		a.ManagerID = *raw.ManagerID
	}
	if raw.Comments != nil {
		a.Comments = *raw.Comments
	}
	if raw.ReviewedAt != nil {
		a.ReviewedAt = *raw.ReviewedAt
	}
	return nil
}
