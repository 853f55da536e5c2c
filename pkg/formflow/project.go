package formflow

// Op is the explicit discriminator carried by every projected item. The
// backend never has to infer intent from field shape.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// SubmissionItem is one projected row. Location fields are sparse pointers:
// an unset level is omitted from the payload rather than sent as null, to
// match the backend's partial-update semantics. The builder below enumerates
// every optional field and its presence rule explicitly.
type SubmissionItem struct {
	Op         Op                `json:"op"`
	ID         string            `json:"id,omitempty"`
	SurveyID   string            `json:"survey_id,omitempty"`
	SiteID     *string           `json:"site_id,omitempty"`
	BuildingID *string           `json:"building_id,omitempty"`
	WingID     *string           `json:"wing_id,omitempty"`
	AreaID     *string           `json:"area_id,omitempty"`
	FloorID    *string           `json:"floor_id,omitempty"`
	RoomID     *string           `json:"room_id,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

type SubmissionPayload struct {
	Creates []SubmissionItem `json:"creates"`
	Updates []SubmissionItem `json:"updates"`
	Deletes []SubmissionItem `json:"deletes"`
}

// buildItem enumerates every optional location field: present iff the row has
// a non-empty selection at that level.
func buildItem(row *MappingRow, op Op, surveyID string) SubmissionItem {
	item := SubmissionItem{
		Op:       op,
		ID:       row.ServerID,
		SurveyID: surveyID,
	}
	assign := func(target **string, level Level) {
		if v := row.Value(level); v != "" {
			value := v
			*target = &value
		}
	}
	assign(&item.SiteID, LevelSite)
	assign(&item.BuildingID, LevelBuilding)
	assign(&item.WingID, LevelWing)
	assign(&item.AreaID, LevelArea)
	assign(&item.FloorID, LevelFloor)
	assign(&item.RoomID, LevelRoom)

	if len(row.Fields) > 0 {
		item.Fields = make(map[string]string, len(row.Fields))
		for k, v := range row.Fields {
			item.Fields[k] = v
		}
	}
	return item
}

// Project derives the create/update/delete payload set from the snapshot.
// Pure and deterministic: calling it twice without mutation yields identical
// payloads. Rows marked for deletion that were never persisted are dropped
// silently; they need no backend action.
func Project(snapshot *FormSnapshot) SubmissionPayload {
	surveyID := snapshot.Shared[SharedSurveyID]
	payload := SubmissionPayload{
		Creates: []SubmissionItem{},
		Updates: []SubmissionItem{},
		Deletes: []SubmissionItem{},
	}

	for _, row := range snapshot.Form.Rows() {
		switch {
		case row.MarkedForDeletion && row.ServerID != "":
			payload.Deletes = append(payload.Deletes, SubmissionItem{
				Op:       OpDelete,
				ID:       row.ServerID,
				SurveyID: surveyID,
			})
		case row.MarkedForDeletion:
			// Added and removed within the same session.
		case row.ServerID != "":
			payload.Updates = append(payload.Updates, buildItem(row, OpUpdate, surveyID))
		default:
			item := buildItem(row, OpCreate, surveyID)
			item.ID = ""
			payload.Creates = append(payload.Creates, item)
		}
	}
	return payload
}
