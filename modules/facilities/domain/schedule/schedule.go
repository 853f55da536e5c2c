// Package schedule models the weekly operating hours attached to a survey
// mapping: one row per day plus an optional list of blocked dates.
package schedule

import (
	"fmt"

	"github.com/opsfabric/premise/pkg/formflow"
)

// Row is one day's operating window. Times are HH:MM strings; break fields
// may be empty.
type Row struct {
	Day        string
	Start      string
	End        string
	BreakStart string
	BreakEnd   string
}

func (r Row) fields() map[string]string {
	return map[string]string{
		formflow.FieldDay:        r.Day,
		formflow.FieldStartTime:  r.Start,
		formflow.FieldEndTime:    r.End,
		formflow.FieldBreakStart: r.BreakStart,
		formflow.FieldBreakEnd:   r.BreakEnd,
	}
}

// RowFromFields reads a schedule row out of a mapping's metadata fields.
func RowFromFields(fields map[string]string) Row {
	return Row{
		Day:        fields[formflow.FieldDay],
		Start:      fields[formflow.FieldStartTime],
		End:        fields[formflow.FieldEndTime],
		BreakStart: fields[formflow.FieldBreakStart],
		BreakEnd:   fields[formflow.FieldBreakEnd],
	}
}

// Week is a full weekly schedule with its blocked dates.
type Week struct {
	Rows         []Row
	BlockedDates []string
}

// Validate collects every violation: malformed or mis-ordered times per row
// and duplicated blocked dates. An empty week is valid.
func (w Week) Validate() []string {
	var msgs []string

	for i, row := range w.Rows {
		label := row.Day
		if label == "" {
			label = fmt.Sprintf("row %d", i+1)
		}
		msgs = append(msgs, formflow.TimeFieldViolations(row.fields(), label)...)
	}

	seen := make(map[string]int)
	for i, date := range w.BlockedDates {
		if date == "" {
			continue
		}
		if prev, ok := seen[date]; ok {
			msgs = append(msgs, fmt.Sprintf("blocked date %s appears twice (entries %d and %d)", date, prev, i+1))
		} else {
			seen[date] = i + 1
		}
	}
	return msgs
}
