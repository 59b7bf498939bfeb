package weeklog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownDay    = errors.New("day is not part of the loaded week")
	ErrRowOutOfRange = errors.New("row index out of range")
	ErrPendingEntry  = errors.New("entry has not been saved yet")
)

// KeyGen builds local keys for pending rows.
type KeyGen struct {
	Now   func() time.Time
	Token func() string
}

var defaultKeyGen = &KeyGen{
	Now: time.Now,
	Token: func() string {
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	},
}

// Next returns a key unique across days and across calls made in the same instant.
func (g *KeyGen) Next(dayKey string, idx int) string {
	return fmt.Sprintf("%d-%s-%d-%s", g.Now().UnixNano(), dayKey, idx, g.Token())
}

// Buffer maps each day of the loaded week to its editable rows. Every day
// always holds at least one entry.
type Buffer struct {
	Shift   ShiftModel         `json:"shift_model"`
	Keys    KeyFormat          `json:"key_format"`
	Days    []Day              `json:"days"`
	Entries map[string][]Entry `json:"entries"`

	gen *KeyGen
}

// UseKeyGen replaces the placeholder key generator, e.g. after loading a
// buffer from disk in tests.
func (b *Buffer) UseKeyGen(g *KeyGen) {
	b.gen = g
}

func (b *Buffer) keyGen() *KeyGen {
	if b.gen == nil {
		return defaultKeyGen
	}
	return b.gen
}

func (b *Buffer) placeholder(day Day, idx int) Entry {
	return newPlaceholder(b.keyGen(), day, idx)
}

func newPlaceholder(g *KeyGen, day Day, idx int) Entry {
	return Entry{
		ID:         Pending{LocalKey: g.Next(day.Key, idx)},
		Date:       day.Date,
		TotalHours: FormatMinutes(0),
	}
}

func (b *Buffer) day(key string) (Day, bool) {
	for _, d := range b.Days {
		if d.Key == key {
			return d, true
		}
	}
	return Day{}, false
}

// Rows returns a copy of the entries for a day.
func (b *Buffer) Rows(key string) ([]Entry, error) {
	if _, ok := b.day(key); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDay, key)
	}
	return append([]Entry(nil), b.Entries[key]...), nil
}

func (b *Buffer) Entry(key string, idx int) (Entry, error) {
	rows, err := b.Rows(key)
	if err != nil {
		return Entry{}, err
	}
	if idx < 0 || idx >= len(rows) {
		return Entry{}, fmt.Errorf("%w: row %d on %s (have %d)", ErrRowOutOfRange, idx, key, len(rows))
	}
	return rows[idx], nil
}

// AddRow appends a pending placeholder to one day.
func (b *Buffer) AddRow(key string) (Entry, error) {
	day, ok := b.day(key)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownDay, key)
	}
	if b.Entries == nil {
		b.Entries = make(map[string][]Entry)
	}
	rows := b.Entries[key]
	e := b.placeholder(day, len(rows))
	b.Entries[key] = append(append([]Entry(nil), rows...), e)
	return e, nil
}

// RemoveRow drops one row locally. A day left empty gets a fresh placeholder.
func (b *Buffer) RemoveRow(key string, idx int) (Entry, error) {
	removed, err := b.Entry(key, idx)
	if err != nil {
		return Entry{}, err
	}
	rows := b.Entries[key]
	next := make([]Entry, 0, len(rows))
	next = append(next, rows[:idx]...)
	next = append(next, rows[idx+1:]...)
	if len(next) == 0 {
		day, _ := b.day(key)
		next = append(next, b.placeholder(day, 0))
	}
	b.Entries[key] = next
	return removed, nil
}

type TimeField string

const (
	FieldStart        TimeField = "start_time"
	FieldEnd          TimeField = "end_time"
	FieldMorningIn    TimeField = "morning_in"
	FieldMorningOut   TimeField = "morning_out"
	FieldAfternoonIn  TimeField = "afternoon_in"
	FieldAfternoonOut TimeField = "afternoon_out"
)

// TimeFields lists every time field in the order edits are applied.
var TimeFields = []TimeField{FieldStart, FieldEnd, FieldMorningIn, FieldMorningOut, FieldAfternoonIn, FieldAfternoonOut}

func ParseTimeField(s string) (TimeField, error) {
	f := TimeField(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range TimeFields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown time field %q", s)
}

// SetTime stores a normalized time value and recomputes the row total.
func (b *Buffer) SetTime(key string, idx int, field TimeField, value string) error {
	return b.update(key, idx, func(e *Entry) error {
		v := NormalizeTime(value)
		switch field {
		case FieldStart:
			e.Start = v
		case FieldEnd:
			e.End = v
		case FieldMorningIn:
			e.MorningIn = v
		case FieldMorningOut:
			e.MorningOut = v
		case FieldAfternoonIn:
			e.AfternoonIn = v
		case FieldAfternoonOut:
			e.AfternoonOut = v
		default:
			return fmt.Errorf("unknown time field %q", field)
		}
		e.TotalHours = b.Shift.Total(*e)
		return nil
	})
}

// SetShift switches the buffer to m and recomputes every row total under it.
func (b *Buffer) SetShift(m ShiftModel) {
	b.Shift = m
	for key, rows := range b.Entries {
		next := make([]Entry, len(rows))
		for i, e := range rows {
			e.TotalHours = m.Total(e)
			next[i] = e
		}
		b.Entries[key] = next
	}
}

func (b *Buffer) SetProject(key string, idx int, projectID int64) error {
	return b.update(key, idx, func(e *Entry) error {
		e.ProjectID = projectID
		return nil
	})
}

func (b *Buffer) SetDescription(key string, idx int, description string) error {
	return b.update(key, idx, func(e *Entry) error {
		e.Description = description
		return nil
	})
}

func (b *Buffer) update(key string, idx int, fn func(e *Entry) error) error {
	e, err := b.Entry(key, idx)
	if err != nil {
		return err
	}
	if err := fn(&e); err != nil {
		return err
	}
	rows := append([]Entry(nil), b.Entries[key]...)
	rows[idx] = e
	b.Entries[key] = rows
	return nil
}

// Find locates a bound entry by server id.
func (b *Buffer) Find(id int64) (string, int, bool) {
	for _, d := range b.Days {
		for i, e := range b.Entries[d.Key] {
			if sid, ok := e.ServerID(); ok && sid == id {
				return d.Key, i, true
			}
		}
	}
	return "", 0, false
}

// Bound returns every persisted row in day order.
func (b *Buffer) Bound() []Entry {
	var out []Entry
	for _, d := range b.Days {
		for _, e := range b.Entries[d.Key] {
			if !e.IsPending() {
				out = append(out, e)
			}
		}
	}
	return out
}

// TotalMinutes sums the totals of every row in the week.
func (b *Buffer) TotalMinutes() int {
	total := 0
	for _, d := range b.Days {
		for _, e := range b.Entries[d.Key] {
			if m, err := ParseTotal(e.TotalHours); err == nil {
				total += m
			}
		}
	}
	return total
}

func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		Shift:   b.Shift,
		Keys:    b.Keys,
		Days:    append([]Day(nil), b.Days...),
		Entries: make(map[string][]Entry, len(b.Entries)),
		gen:     b.gen,
	}
	for k, rows := range b.Entries {
		out.Entries[k] = append([]Entry(nil), rows...)
	}
	return out
}

// KeyFor converts an ISO date into this buffer's key.
func (b *Buffer) KeyFor(date string) (string, error) {
	key, err := b.Keys.KeyFromISO(date)
	if err != nil {
		return "", err
	}
	if _, ok := b.day(key); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownDay, date)
	}
	return key, nil
}
