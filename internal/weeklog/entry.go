package weeklog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// PendingPrefix marks client-only ids wherever they leave the process as text.
const PendingPrefix = "temp-"

// EntryID is either Pending or Bound.
type EntryID interface {
	isEntryID()
	String() string
}

// Pending identifies a row that exists only in the local buffer.
type Pending struct {
	LocalKey string
}

// Bound identifies a row mirroring a persisted daily log.
type Bound struct {
	ServerID int64
}

func (Pending) isEntryID() {}
func (Bound) isEntryID()   {}

func (p Pending) String() string { return PendingPrefix + p.LocalKey }
func (b Bound) String() string   { return strconv.FormatInt(b.ServerID, 10) }

// Snapshot is the server-side state of a bound row at reconciliation time.
type Snapshot struct {
	ProjectID   int64  `json:"project_id"`
	Description string `json:"description"`
}

// Entry is one editable row of the day buffer. Date is ISO regardless of the
// buffer's key format.
type Entry struct {
	ID           EntryID   `json:"-"`
	Date         string    `json:"date"`
	ProjectID    int64     `json:"project_id,omitempty"`
	Description  string    `json:"description,omitempty"`
	Start        string    `json:"start_time,omitempty"`
	End          string    `json:"end_time,omitempty"`
	MorningIn    string    `json:"morning_in,omitempty"`
	MorningOut   string    `json:"morning_out,omitempty"`
	AfternoonIn  string    `json:"afternoon_in,omitempty"`
	AfternoonOut string    `json:"afternoon_out,omitempty"`
	TotalHours   string    `json:"total_hours"`
	Original     *Snapshot `json:"original,omitempty"`
}

func (e Entry) IsPending() bool {
	_, ok := e.ID.(Pending)
	return ok
}

// ServerID returns the persisted id of a bound entry.
func (e Entry) ServerID() (int64, bool) {
	b, ok := e.ID.(Bound)
	if !ok {
		return 0, false
	}
	return b.ServerID, true
}

// DescriptionChanged reports whether a bound entry's description differs from
// what the backend last returned.
func (e Entry) DescriptionChanged() bool {
	if e.Original == nil {
		return false
	}
	return e.Description != e.Original.Description
}

type entryJSON struct {
	ID json.RawMessage `json:"id"`
	entryAlias
}

type entryAlias Entry

func (e Entry) MarshalJSON() ([]byte, error) {
	if e.ID == nil {
		return nil, errors.New("entry has no id")
	}
	var id []byte
	var err error
	switch v := e.ID.(type) {
	case Pending:
		id, err = json.Marshal(v.String())
	case Bound:
		id, err = json.Marshal(v.ServerID)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(entryJSON{ID: id, entryAlias: entryAlias(e)})
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := parseEntryID(raw.ID)
	if err != nil {
		return err
	}
	*e = Entry(raw.entryAlias)
	e.ID = id
	return nil
}

func parseEntryID(raw json.RawMessage) (EntryID, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.HasPrefix(s, PendingPrefix) {
			return Pending{LocalKey: strings.TrimPrefix(s, PendingPrefix)}, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid entry id %q", s)
		}
		return Bound{ServerID: n}, nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("invalid entry id %s", string(raw))
	}
	return Bound{ServerID: n}, nil
}
