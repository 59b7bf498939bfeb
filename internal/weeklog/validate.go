package weeklog

import "fmt"

// ValidationError is a local failure that must stop an action before any
// backend call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateForSave checks the fields a row needs before it can be persisted.
// The description is optional.
func ValidateForSave(e Entry, shift ShiftModel) error {
	if e.ProjectID <= 0 {
		return &ValidationError{Field: "project_id", Message: "please select a project"}
	}
	if shift == ShiftSplit {
		return validateSplit(e)
	}
	if !ValidTime(e.Start) {
		return &ValidationError{Field: string(FieldStart), Message: "enter a valid start time (HH:MM)"}
	}
	if !ValidTime(e.End) {
		return &ValidationError{Field: string(FieldEnd), Message: "enter a valid end time (HH:MM)"}
	}
	return nil
}

func validateSplit(e Entry) error {
	if !ValidTime(e.MorningIn) {
		return &ValidationError{Field: string(FieldMorningIn), Message: "enter a valid morning in time (HH:MM)"}
	}
	if !ValidTime(e.MorningOut) {
		return &ValidationError{Field: string(FieldMorningOut), Message: "enter a valid morning out time (HH:MM)"}
	}
	if e.AfternoonIn == "" && e.AfternoonOut == "" {
		return nil
	}
	if !ValidTime(e.AfternoonIn) {
		return &ValidationError{Field: string(FieldAfternoonIn), Message: "enter a valid afternoon in time (HH:MM) or leave both afternoon times empty"}
	}
	if !ValidTime(e.AfternoonOut) {
		return &ValidationError{Field: string(FieldAfternoonOut), Message: "enter a valid afternoon out time (HH:MM) or leave both afternoon times empty"}
	}
	return nil
}

// ValidateWeek checks a week range and returns its days.
func ValidateWeek(start, end string, keys KeyFormat) ([]Day, error) {
	if _, err := ParseDate(start); err != nil {
		return nil, &ValidationError{Field: "week_start", Message: err.Error()}
	}
	if end != "" {
		if _, err := ParseDate(end); err != nil {
			return nil, &ValidationError{Field: "week_end", Message: err.Error()}
		}
	}
	days := ExpandWeek(start, end, keys)
	if len(days) == 0 {
		return nil, &ValidationError{Field: "week_end", Message: "week end must not precede week start"}
	}
	return days, nil
}
