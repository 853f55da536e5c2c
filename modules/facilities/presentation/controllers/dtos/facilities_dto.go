package dtos

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/opsfabric/premise/modules/facilities/domain/location"
	"github.com/opsfabric/premise/modules/facilities/domain/mapping"
	"github.com/opsfabric/premise/pkg/formflow"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LocationResponse is one option of a cascade select.
type LocationResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
	Level    string  `json:"level"`
}

func NewLocationResponse(loc *location.Location) LocationResponse {
	out := LocationResponse{
		ID:    loc.ID.String(),
		Name:  loc.Name,
		Level: string(loc.Level),
	}
	if loc.ParentID != nil {
		parent := loc.ParentID.String()
		out.ParentID = &parent
	}
	return out
}

type CreateLocationRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Level    string  `json:"level" validate:"required,oneof=site building wing area floor room"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

func (d *CreateLocationRequest) Validate() error {
	return validate.Struct(d)
}

func (d *CreateLocationRequest) ToEntity() (*location.Location, error) {
	loc := &location.Location{
		Name:  d.Name,
		Level: formflow.Level(d.Level),
	}
	if d.ParentID != nil {
		id, err := uuid.Parse(*d.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent_id: %w", err)
		}
		loc.ParentID = &id
	}
	return loc, nil
}

type MappingResponse struct {
	ID         string            `json:"id"`
	SurveyID   string            `json:"survey_id"`
	SiteID     *string           `json:"site_id,omitempty"`
	BuildingID *string           `json:"building_id,omitempty"`
	WingID     *string           `json:"wing_id,omitempty"`
	AreaID     *string           `json:"area_id,omitempty"`
	FloorID    *string           `json:"floor_id,omitempty"`
	RoomID     *string           `json:"room_id,omitempty"`
	Fields     map[string]string `json:"fields"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func NewMappingResponse(m *mapping.SurveyMapping) MappingResponse {
	fields := m.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	return MappingResponse{
		ID:         m.ID.String(),
		SurveyID:   m.SurveyID,
		SiteID:     uuidString(m.SiteID),
		BuildingID: uuidString(m.BuildingID),
		WingID:     uuidString(m.WingID),
		AreaID:     uuidString(m.AreaID),
		FloorID:    uuidString(m.FloorID),
		RoomID:     uuidString(m.RoomID),
		Fields:     fields,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// BulkItemRequest is one element of a PUT bulk batch. The op discriminator is
// mandatory; id and location fields are checked again service-side against
// the op.
type BulkItemRequest struct {
	Op         string            `json:"op" validate:"required,oneof=create update delete"`
	ID         *string           `json:"id" validate:"omitempty,uuid"`
	SurveyID   string            `json:"survey_id" validate:"required,max=64"`
	SiteID     *string           `json:"site_id" validate:"omitempty,uuid"`
	BuildingID *string           `json:"building_id" validate:"omitempty,uuid"`
	WingID     *string           `json:"wing_id" validate:"omitempty,uuid"`
	AreaID     *string           `json:"area_id" validate:"omitempty,uuid"`
	FloorID    *string           `json:"floor_id" validate:"omitempty,uuid"`
	RoomID     *string           `json:"room_id" validate:"omitempty,uuid"`
	Fields     map[string]string `json:"fields"`
}

type BulkApplyRequest struct {
	Items []BulkItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (d *BulkApplyRequest) Validate() error {
	return validate.Struct(d)
}

func parseUUIDPtr(field string, v *string) (*uuid.UUID, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &id, nil
}

func (d *BulkItemRequest) ToChange() (mapping.Change, error) {
	change := mapping.Change{Op: formflow.Op(d.Op)}

	id, err := parseUUIDPtr("id", d.ID)
	if err != nil {
		return mapping.Change{}, err
	}
	change.ID = id

	m := mapping.SurveyMapping{
		SurveyID: d.SurveyID,
		Fields:   d.Fields,
	}
	for _, f := range []struct {
		name   string
		raw    *string
		target **uuid.UUID
	}{
		{"site_id", d.SiteID, &m.SiteID},
		{"building_id", d.BuildingID, &m.BuildingID},
		{"wing_id", d.WingID, &m.WingID},
		{"area_id", d.AreaID, &m.AreaID},
		{"floor_id", d.FloorID, &m.FloorID},
		{"room_id", d.RoomID, &m.RoomID},
	} {
		parsed, err := parseUUIDPtr(f.name, f.raw)
		if err != nil {
			return mapping.Change{}, err
		}
		*f.target = parsed
	}
	change.Mapping = m
	return change, nil
}

func (d *BulkApplyRequest) ToChanges() ([]mapping.Change, error) {
	changes := make([]mapping.Change, 0, len(d.Items))
	for i, item := range d.Items {
		change, err := item.ToChange()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// BulkApplyResponse reports what the batch did; created ids come back in
// item order so the client can adopt them.
type BulkApplyResponse struct {
	Created []string `json:"created"`
	Updated int      `json:"updated"`
	Deleted int      `json:"deleted"`
}

func NewBulkApplyResponse(result mapping.BulkResult) BulkApplyResponse {
	created := make([]string, 0, len(result.Created))
	for _, id := range result.Created {
		created = append(created, id.String())
	}
	return BulkApplyResponse{
		Created: created,
		Updated: result.Updated,
		Deleted: result.Deleted,
	}
}
