package formflow

// FetchRequest tags an option-list fetch with the row and parent it was issued
// for. The tag is what the stale-response guard checks at resolution time.
type FetchRequest struct {
	RowID    uint64
	Level    Level
	ParentID string
}

// Resolution is the outcome of a level change: which deeper levels to clear on
// the row and which fetches to issue. Pure data; the caller executes it.
type Resolution struct {
	ClearedLevels []Level
	FetchRequests []FetchRequest
}

// ResolveLevelChange computes the cascade for setting level to newValue on row.
// Every deeper level is cleared (applying the clear set twice is a no-op) and
// the immediate child level is fetched only when newValue is non-empty; a
// deselect clears without fetching. No I/O, no mutation.
func ResolveLevelChange(row *MappingRow, level Level, newValue string) Resolution {
	res := Resolution{ClearedLevels: level.Descendants()}
	if newValue == "" {
		return res
	}
	child, ok := level.Child()
	if !ok {
		return res
	}
	res.FetchRequests = append(res.FetchRequests, FetchRequest{
		RowID:    row.RowID,
		Level:    child,
		ParentID: newValue,
	})
	return res
}
