package weeklog

import (
	"fmt"
	"strings"
	"time"
)

// ShiftModel selects how a row's total duration is derived.
type ShiftModel string

const (
	// ShiftSingle is one start/end pair per row with overnight wraparound.
	ShiftSingle ShiftModel = "single"
	// ShiftSplit is the legacy morning/afternoon pair model: segments are
	// summed independently, never wrapped, negatives floored at zero.
	ShiftSplit ShiftModel = "split"
)

func ParseShiftModel(s string) (ShiftModel, error) {
	switch ShiftModel(strings.ToLower(strings.TrimSpace(s))) {
	case "", ShiftSingle:
		return ShiftSingle, nil
	case ShiftSplit:
		return ShiftSplit, nil
	}
	return "", fmt.Errorf("invalid shift model %q (allowed: single, split)", s)
}

// Total recomputes the duration string for e under this model.
func (m ShiftModel) Total(e Entry) string {
	if m == ShiftSplit {
		return SplitDuration(e.MorningIn, e.MorningOut, e.AfternoonIn, e.AfternoonOut)
	}
	return Duration(e.Start, e.End)
}

type KeyFormat string

const (
	KeyFormatISO KeyFormat = "iso"
	KeyFormatMDY KeyFormat = "mdy"
)

func ParseKeyFormat(s string) (KeyFormat, error) {
	switch KeyFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", KeyFormatISO:
		return KeyFormatISO, nil
	case KeyFormatMDY:
		return KeyFormatMDY, nil
	}
	return "", fmt.Errorf("invalid key format %q (allowed: iso, mdy)", s)
}

func (f KeyFormat) Format(t time.Time) string {
	if f == KeyFormatMDY {
		return t.Format("01/02/2006")
	}
	return t.Format(isoLayout)
}

// KeyFromISO converts a YYYY-MM-DD date into a buffer key.
func (f KeyFormat) KeyFromISO(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return f.Format(t), nil
}

// AuditPolicy decides whether a description edit on a bound row produces a
// change record.
type AuditPolicy string

const (
	// AuditAlways records every description change.
	AuditAlways AuditPolicy = "always"
	// AuditFirstOnly records a change only when the log has no prior record.
	AuditFirstOnly AuditPolicy = "first-only"
	// AuditOff leaves change records to the backend.
	AuditOff AuditPolicy = "off"
)

func ParseAuditPolicy(s string) (AuditPolicy, error) {
	switch AuditPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", AuditAlways:
		return AuditAlways, nil
	case AuditFirstOnly:
		return AuditFirstOnly, nil
	case AuditOff:
		return AuditOff, nil
	}
	return "", fmt.Errorf("invalid audit policy %q (allowed: always, first-only, off)", s)
}

// NeedsPriorCount reports whether ShouldRecord depends on the existing record count.
func (p AuditPolicy) NeedsPriorCount() bool {
	return p == AuditFirstOnly
}

func (p AuditPolicy) ShouldRecord(descriptionChanged bool, priorChanges int) bool {
	if !descriptionChanged {
		return false
	}
	switch p {
	case AuditAlways:
		return true
	case AuditFirstOnly:
		return priorChanges == 0
	default:
		return false
	}
}
