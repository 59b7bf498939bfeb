package weeklog

// Log is a persisted daily log as the reconciler sees it.
type Log struct {
	ID           int64
	Date         string
	ProjectID    int64
	Description  string
	Start        string
	End          string
	MorningIn    string
	MorningOut   string
	AfternoonIn  string
	AfternoonOut string
	TotalHours   string
}

type Reconciler struct {
	Shift ShiftModel
	Keys  KeyFormat
	Gen   *KeyGen
}

func NewReconciler(shift ShiftModel, keys KeyFormat) *Reconciler {
	return &Reconciler{Shift: shift, Keys: keys, Gen: defaultKeyGen}
}

// Reconcile builds a fresh buffer for days from the backend's logs. Logs keep
// the order the backend returned them in; logs outside the week are dropped;
// empty days get one placeholder. Nothing from any previous buffer survives.
func (r *Reconciler) Reconcile(days []Day, logs []Log) *Buffer {
	gen := r.Gen
	if gen == nil {
		gen = defaultKeyGen
	}
	buf := &Buffer{
		Shift:   r.Shift,
		Keys:    r.Keys,
		Days:    append([]Day(nil), days...),
		Entries: make(map[string][]Entry, len(days)),
		gen:     gen,
	}

	byDate := make(map[string][]Log)
	for _, l := range logs {
		date := dateOnly(l.Date)
		byDate[date] = append(byDate[date], l)
	}

	for _, d := range days {
		group := byDate[d.Date]
		if len(group) == 0 {
			buf.Entries[d.Key] = []Entry{newPlaceholder(gen, d, 0)}
			continue
		}
		rows := make([]Entry, 0, len(group))
		for _, l := range group {
			rows = append(rows, r.bind(d, l))
		}
		buf.Entries[d.Key] = rows
	}
	return buf
}

func (r *Reconciler) bind(d Day, l Log) Entry {
	e := Entry{
		ID:           Bound{ServerID: l.ID},
		Date:         d.Date,
		ProjectID:    l.ProjectID,
		Description:  l.Description,
		Start:        NormalizeTime(l.Start),
		End:          NormalizeTime(l.End),
		MorningIn:    NormalizeTime(l.MorningIn),
		MorningOut:   NormalizeTime(l.MorningOut),
		AfternoonIn:  NormalizeTime(l.AfternoonIn),
		AfternoonOut: NormalizeTime(l.AfternoonOut),
		TotalHours:   l.TotalHours,
		Original:     &Snapshot{ProjectID: l.ProjectID, Description: l.Description},
	}
	if e.TotalHours == "" {
		e.TotalHours = r.Shift.Total(e)
	}
	return e
}
