package formflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func gate() ValidationGate {
	return ValidationGate{
		RequiredShared:      []string{SharedSurveyID},
		RequireRootLocation: true,
	}
}

func TestValidate_RequiredSharedAndRootLocation(t *testing.T) {
	snapshot := NewFormSnapshot()
	first := snapshot.Form.AddRow()
	_, err := snapshot.Form.UpdateSelection(first, LevelSite, "s1")
	require.NoError(t, err)
	snapshot.Form.AddRow() // second row: no site selected

	result := gate().Validate(snapshot)
	require.False(t, result.Ok())
	require.Contains(t, result.Messages, "survey_id is required")
	require.Contains(t, result.Messages, "row 2: site is required")
	// All violations are collected in one pass.
	require.Len(t, result.Messages, 2)
}

func TestValidate_AtLeastOneVisibleRow(t *testing.T) {
	snapshot := NewFormSnapshot()
	snapshot.Shared[SharedSurveyID] = "survey-1"
	id := snapshot.Form.LoadRow("srv-1", map[Level]string{LevelSite: "s1"}, nil)
	require.True(t, snapshot.Form.RemoveRow(id))

	result := gate().Validate(snapshot)
	require.Contains(t, result.Messages, "at least one mapping row is required")
}

func TestValidate_TimeQuadruple(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]string
		wantOk bool
	}{
		{
			name:   "end before start",
			fields: map[string]string{FieldDay: "Monday", FieldStartTime: "09:00", FieldEndTime: "08:00"},
			wantOk: false,
		},
		{
			name: "valid quadruple",
			fields: map[string]string{
				FieldDay: "Monday", FieldStartTime: "09:00", FieldEndTime: "18:00",
				FieldBreakStart: "10:00", FieldBreakEnd: "11:00",
			},
			wantOk: true,
		},
		{
			name: "break start before opening",
			fields: map[string]string{
				FieldDay: "Tuesday", FieldStartTime: "09:00", FieldEndTime: "18:00",
				FieldBreakStart: "08:30",
			},
			wantOk: false,
		},
		{
			name: "break end after closing",
			fields: map[string]string{
				FieldDay: "Friday", FieldStartTime: "09:00", FieldEndTime: "18:00",
				FieldBreakStart: "12:00", FieldBreakEnd: "19:00",
			},
			wantOk: false,
		},
		{
			name:   "malformed time",
			fields: map[string]string{FieldDay: "Monday", FieldStartTime: "9am", FieldEndTime: "18:00"},
			wantOk: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snapshot := NewFormSnapshot()
			snapshot.Shared[SharedSurveyID] = "survey-1"
			id := snapshot.Form.AddRow()
			_, err := snapshot.Form.UpdateSelection(id, LevelSite, "s1")
			require.NoError(t, err)
			for k, v := range tc.fields {
				require.NoError(t, snapshot.Form.SetField(id, k, v))
			}

			result := gate().Validate(snapshot)
			require.Equal(t, tc.wantOk, result.Ok(), "messages: %v", result.Messages)
		})
	}
}

func TestValidate_TimeViolationsLabeledByDayAndAllCollected(t *testing.T) {
	snapshot := NewFormSnapshot()
	snapshot.Shared[SharedSurveyID] = "survey-1"
	for _, day := range []string{"Monday", "Tuesday"} {
		id := snapshot.Form.AddRow()
		_, err := snapshot.Form.UpdateSelection(id, LevelSite, "s1")
		require.NoError(t, err)
		require.NoError(t, snapshot.Form.SetField(id, FieldDay, day))
		require.NoError(t, snapshot.Form.SetField(id, FieldStartTime, "09:00"))
		require.NoError(t, snapshot.Form.SetField(id, FieldEndTime, "08:00"))
	}

	result := gate().Validate(snapshot)
	require.Len(t, result.Messages, 2)
	require.Contains(t, result.Messages[0], "Monday")
	require.Contains(t, result.Messages[1], "Tuesday")
}

func TestValidate_DuplicateBlockedDates(t *testing.T) {
	snapshot := NewFormSnapshot()
	snapshot.Shared[SharedSurveyID] = "survey-1"
	for i := 0; i < 2; i++ {
		id := snapshot.Form.AddRow()
		_, err := snapshot.Form.UpdateSelection(id, LevelSite, "s1")
		require.NoError(t, err)
		require.NoError(t, snapshot.Form.SetField(id, FieldBlockedDate, "2026-01-01"))
	}

	result := gate().Validate(snapshot)
	require.False(t, result.Ok())
	require.Contains(t, result.Messages, "row 2: blocked date 2026-01-01 duplicates row 1")
}
