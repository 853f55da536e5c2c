package formflow

import (
	"fmt"
	"iter"
)

// Well-known metadata field keys carried on mapping rows. Schedule rows use
// the time quadruple; blocked-day rows use FieldBlockedDate.
const (
	FieldDay         = "day"
	FieldStartTime   = "start_time"
	FieldEndTime     = "end_time"
	FieldBreakStart  = "break_start"
	FieldBreakEnd    = "break_end"
	FieldBlockedDate = "blocked_date"
)

// MappingRow is one repeatable unit of a multi-location form. RowID is stable
// for the session and never reused; ServerID is set only for rows loaded from
// the backend. Rows with a ServerID are retained after removal (marked) so the
// projector can emit a delete.
type MappingRow struct {
	RowID             uint64
	ServerID          string
	Selection         map[Level]string
	Fields            map[string]string
	MarkedForDeletion bool
}

// Value returns the selected id at level, or "" when unset.
func (r *MappingRow) Value(level Level) string {
	return r.Selection[level]
}

func (r *MappingRow) clear(levels []Level) {
	for _, l := range levels {
		delete(r.Selection, l)
	}
}

// MultiRowFormState owns the ordered collection of mapping rows. All mutation
// goes through its methods; cascade consistency is maintained on every
// selection update.
type MultiRowFormState struct {
	nextRowID uint64
	rows      []*MappingRow
}

func NewMultiRowFormState() *MultiRowFormState {
	return &MultiRowFormState{}
}

// AddRow appends an empty row and returns its session-unique id.
func (s *MultiRowFormState) AddRow() uint64 {
	s.nextRowID++
	s.rows = append(s.rows, &MappingRow{
		RowID:     s.nextRowID,
		Selection: make(map[Level]string),
		Fields:    make(map[string]string),
	})
	return s.nextRowID
}

// LoadRow appends a row hydrated from the backend. The returned RowID is still
// client-generated; serverID travels into the projector untouched.
func (s *MultiRowFormState) LoadRow(serverID string, selection map[Level]string, fields map[string]string) uint64 {
	rowID := s.AddRow()
	row, _ := s.Row(rowID)
	row.ServerID = serverID
	for level, value := range selection {
		row.Selection[level] = value
	}
	for key, value := range fields {
		row.Fields[key] = value
	}
	return rowID
}

func (s *MultiRowFormState) Row(rowID uint64) (*MappingRow, bool) {
	for _, row := range s.rows {
		if row.RowID == rowID {
			return row, true
		}
	}
	return nil, false
}

// RemoveRow marks a persisted row for deletion and drops a never-persisted row
// outright. Returns false when the row does not exist.
func (s *MultiRowFormState) RemoveRow(rowID uint64) bool {
	for i, row := range s.rows {
		if row.RowID != rowID {
			continue
		}
		if row.ServerID == "" {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
		} else {
			row.MarkedForDeletion = true
		}
		return true
	}
	return false
}

// UpdateSelection applies the cascade clear set for the change, then sets the
// value. The returned Resolution carries the fetches the caller must execute.
// Sibling rows are never touched.
func (s *MultiRowFormState) UpdateSelection(rowID uint64, level Level, value string) (Resolution, error) {
	row, ok := s.Row(rowID)
	if !ok {
		return Resolution{}, fmt.Errorf("row %d not found", rowID)
	}
	if level.Index() < 0 {
		return Resolution{}, fmt.Errorf("unknown location level: %q", level)
	}
	res := ResolveLevelChange(row, level, value)
	row.clear(res.ClearedLevels)
	if value == "" {
		delete(row.Selection, level)
	} else {
		row.Selection[level] = value
	}
	return res, nil
}

func (s *MultiRowFormState) SetField(rowID uint64, key, value string) error {
	row, ok := s.Row(rowID)
	if !ok {
		return fmt.Errorf("row %d not found", rowID)
	}
	row.Fields[key] = value
	return nil
}

// VisibleRows yields rows not marked for deletion, in insertion order. The
// sequence is recomputed on every range, so it stays valid across mutations.
func (s *MultiRowFormState) VisibleRows() iter.Seq[*MappingRow] {
	return func(yield func(*MappingRow) bool) {
		for _, row := range s.rows {
			if row.MarkedForDeletion {
				continue
			}
			if !yield(row) {
				return
			}
		}
	}
}

func (s *MultiRowFormState) VisibleCount() int {
	n := 0
	for range s.VisibleRows() {
		n++
	}
	return n
}

// Rows returns every row, marked ones included; the projector needs them.
func (s *MultiRowFormState) Rows() []*MappingRow {
	return s.rows
}

// Compact physically drops rows marked for deletion. Called only after the
// backend acknowledged the submission.
func (s *MultiRowFormState) Compact() {
	kept := s.rows[:0]
	for _, row := range s.rows {
		if !row.MarkedForDeletion {
			kept = append(kept, row)
		}
	}
	s.rows = kept
}
