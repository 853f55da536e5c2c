package mapping

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/opsfabric/premise/pkg/formflow"
)

// SurveyMapping assigns a survey to a slice of the location hierarchy.
// Location columns are sparse: only the levels the operator narrowed down to
// are set. Fields carries row metadata (schedule times, blocked dates).
type SurveyMapping struct {
	ID         uuid.UUID         `json:"id"`
	SurveyID   string            `json:"survey_id"`
	SiteID     *uuid.UUID        `json:"site_id,omitempty"`
	BuildingID *uuid.UUID        `json:"building_id,omitempty"`
	WingID     *uuid.UUID        `json:"wing_id,omitempty"`
	AreaID     *uuid.UUID        `json:"area_id,omitempty"`
	FloorID    *uuid.UUID        `json:"floor_id,omitempty"`
	RoomID     *uuid.UUID        `json:"room_id,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Change is one item of a bulk submission, with its intent spelled out as an
// explicit op rather than inferred from field shape.
type Change struct {
	Op      formflow.Op
	ID      *uuid.UUID
	Mapping SurveyMapping
}

type BulkResult struct {
	Created []uuid.UUID
	Updated int
	Deleted int
}

type Repository interface {
	ListBySurvey(ctx context.Context, surveyID string) ([]SurveyMapping, error)
	// BulkApply applies every change in a single transaction; either the
	// whole batch lands or none of it does.
	BulkApply(ctx context.Context, changes []Change) (BulkResult, error)
}
