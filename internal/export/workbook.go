package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ihildy/timesheet-cli/internal/api"
	"github.com/ihildy/timesheet-cli/internal/weeklog"
)

const sheetName = "Week"

var headers = []string{"Date", "Weekday", "Project", "Description", "Start", "End", "Total"}

// WeekWorkbook renders the saved rows of buf as an xlsx workbook: one row per
// saved entry in day order, then a grand total. Pending rows are skipped.
func WeekWorkbook(buf *weeklog.Buffer, projects []api.Project, title string) (*bytes.Buffer, error) {
	if buf == nil {
		return nil, fmt.Errorf("no week loaded")
	}
	names := make(map[int64]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("remove default sheet: %w", err)
	}

	widths := []struct {
		from, to string
		width    float64
	}{{"A", "B", 12}, {"C", "C", 20}, {"D", "D", 40}, {"E", "G", 9}}
	for _, w := range widths {
		if err := f.SetColWidth(sheetName, w.from, w.to, w.width); err != nil {
			return nil, fmt.Errorf("set column width %s:%s: %w", w.from, w.to, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	row := 1
	if title != "" {
		if err := f.SetCellValue(sheetName, cell(1, row), title); err != nil {
			return nil, fmt.Errorf("write title: %w", err)
		}
		if err := f.MergeCell(sheetName, cell(1, row), cell(len(headers), row)); err != nil {
			return nil, fmt.Errorf("merge title: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell(1, row), cell(1, row), headerStyle); err != nil {
			return nil, fmt.Errorf("style title: %w", err)
		}
		row++
	}
	if err := setRow(f, row, toAny(headers)); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(sheetName, cell(1, row), cell(len(headers), row), headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	row++

	total := 0
	for _, d := range buf.Days {
		for _, e := range buf.Entries[d.Key] {
			if e.IsPending() {
				continue
			}
			project := names[e.ProjectID]
			if project == "" {
				project = fmt.Sprintf("#%d", e.ProjectID)
			}
			start, end := e.Start, e.End
			if buf.Shift == weeklog.ShiftSplit {
				start, end = e.MorningIn, e.AfternoonOut
				if end == "" {
					end = e.MorningOut
				}
			}
			values := []any{d.Date, d.Weekday, project, e.Description, start, end, e.TotalHours}
			if err := setRow(f, row, values); err != nil {
				return nil, fmt.Errorf("write row for %s: %w", d.Date, err)
			}
			if m, err := weeklog.ParseTotal(e.TotalHours); err == nil {
				total += m
			}
			row++
		}
	}

	if err := f.SetCellValue(sheetName, cell(len(headers)-1, row), "Total"); err != nil {
		return nil, fmt.Errorf("write total label: %w", err)
	}
	if err := f.SetCellValue(sheetName, cell(len(headers), row), weeklog.FormatMinutes(total)); err != nil {
		return nil, fmt.Errorf("write total: %w", err)
	}

	out := new(bytes.Buffer)
	if err := f.Write(out); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return out, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func setRow(f *excelize.File, row int, values []any) error {
	for i, v := range values {
		name, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, name, v); err != nil {
			return err
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
