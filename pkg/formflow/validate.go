package formflow

import (
	"fmt"
	"regexp"
)

// ValidationResult collects every violated rule at once so the user can fix
// the whole batch in one pass. An empty Messages slice means the gate passed.
type ValidationResult struct {
	Messages []string
}

func (r ValidationResult) Ok() bool {
	return len(r.Messages) == 0
}

// ValidationGate runs cross-field validation before submission. It never
// errors for domain conditions; the result value carries the outcome.
type ValidationGate struct {
	// RequiredShared names the shared fields that must be non-empty.
	RequiredShared []string
	// RequireRootLocation demands a populated root-level selection per row.
	RequireRootLocation bool
}

var timeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// validTime reports whether v is a well-formed HH:MM value. Well-formed
// values compare correctly as strings, so ordering checks stay lexicographic.
func validTime(v string) bool {
	return timeRe.MatchString(v)
}

func (g ValidationGate) Validate(snapshot *FormSnapshot) ValidationResult {
	var result ValidationResult

	for _, key := range g.RequiredShared {
		if snapshot.Shared[key] == "" {
			result.Messages = append(result.Messages, fmt.Sprintf("%s is required", key))
		}
	}

	if snapshot.Form.VisibleCount() == 0 {
		result.Messages = append(result.Messages, "at least one mapping row is required")
	}

	position := 0
	seenDates := make(map[string]int)
	for row := range snapshot.Form.VisibleRows() {
		position++

		if g.RequireRootLocation && row.Value(Hierarchy[0]) == "" {
			result.Messages = append(result.Messages,
				fmt.Sprintf("row %d: %s is required", position, Hierarchy[0]))
		}

		result.Messages = append(result.Messages, validateTimeQuad(row, position)...)

		if date := row.Fields[FieldBlockedDate]; date != "" {
			if prev, ok := seenDates[date]; ok {
				result.Messages = append(result.Messages,
					fmt.Sprintf("row %d: blocked date %s duplicates row %d", position, date, prev))
			} else {
				seenDates[date] = position
			}
		}
	}

	return result
}

// validateTimeQuad checks the start/end/break-start/break-end ordering rules
// for a schedule row. Rows without time fields are skipped. Violations are
// labeled with the row's day name when present, its position otherwise.
func validateTimeQuad(row *MappingRow, position int) []string {
	label := row.Fields[FieldDay]
	if label == "" {
		label = fmt.Sprintf("row %d", position)
	}
	return TimeFieldViolations(row.Fields, label)
}

// TimeFieldViolations checks the time quadruple carried in fields: every value
// must be HH:MM, end must not precede start, and breaks must fall inside the
// start/end window. Fields without any time value pass.
func TimeFieldViolations(fields map[string]string, label string) []string {
	start := fields[FieldStartTime]
	end := fields[FieldEndTime]
	breakStart := fields[FieldBreakStart]
	breakEnd := fields[FieldBreakEnd]
	if start == "" && end == "" && breakStart == "" && breakEnd == "" {
		return nil
	}

	var msgs []string
	for _, v := range []struct{ name, value string }{
		{"start time", start},
		{"end time", end},
		{"break start", breakStart},
		{"break end", breakEnd},
	} {
		if v.value != "" && !validTime(v.value) {
			msgs = append(msgs, fmt.Sprintf("%s: %s %q is not a valid HH:MM time", label, v.name, v.value))
		}
	}
	if len(msgs) > 0 {
		return msgs
	}

	if start != "" && end != "" && end < start {
		msgs = append(msgs, fmt.Sprintf("%s: end time must not be before start time", label))
	}
	if breakStart != "" {
		if start != "" && breakStart < start {
			msgs = append(msgs, fmt.Sprintf("%s: break start must not be before start time", label))
		}
		if end != "" && breakStart > end {
			msgs = append(msgs, fmt.Sprintf("%s: break start must not be after end time", label))
		}
	}
	if breakEnd != "" {
		if breakStart != "" && breakEnd < breakStart {
			msgs = append(msgs, fmt.Sprintf("%s: break end must not be before break start", label))
		}
		if end != "" && breakEnd > end {
			msgs = append(msgs, fmt.Sprintf("%s: break end must not be after end time", label))
		}
	}
	return msgs
}
