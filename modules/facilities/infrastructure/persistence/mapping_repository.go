package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/opsfabric/premise/modules/facilities/domain/mapping"
	"github.com/opsfabric/premise/pkg/composables"
	"github.com/opsfabric/premise/pkg/formflow"
)

type MappingRepository struct{}

func NewMappingRepository() mapping.Repository {
	return &MappingRepository{}
}

const mappingColumns = `id, survey_id, site_id, building_id, wing_id, area_id, floor_id, room_id, fields, created_at, updated_at`

func (r *MappingRepository) ListBySurvey(ctx context.Context, surveyID string) ([]mapping.SurveyMapping, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
SELECT `+mappingColumns+`
FROM survey_mappings
WHERE survey_id = $1
ORDER BY created_at, id
`, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []mapping.SurveyMapping
	for rows.Next() {
		var (
			m                mapping.SurveyMapping
			site, building   pgtype.UUID
			wing, area       pgtype.UUID
			floor, room      pgtype.UUID
			fields           []byte
			created, updated pgtype.Timestamptz
		)
		if err := rows.Scan(&m.ID, &m.SurveyID, &site, &building, &wing, &area, &floor, &room, &fields, &created, &updated); err != nil {
			return nil, err
		}
		m.SiteID = asUUIDPtr(site)
		m.BuildingID = asUUIDPtr(building)
		m.WingID = asUUIDPtr(wing)
		m.AreaID = asUUIDPtr(area)
		m.FloorID = asUUIDPtr(floor)
		m.RoomID = asUUIDPtr(room)
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &m.Fields); err != nil {
				return nil, err
			}
		}
		m.CreatedAt = asTime(created)
		m.UpdatedAt = asTime(updated)
		out = append(out, m)
	}
	return out, rows.Err()
}

func marshalFields(fields map[string]string) ([]byte, error) {
	if fields == nil {
		return []byte(`{}`), nil
	}
	return json.Marshal(fields)
}

func (r *MappingRepository) BulkApply(ctx context.Context, changes []mapping.Change) (mapping.BulkResult, error) {
	var result mapping.BulkResult
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		for _, change := range changes {
			switch change.Op {
			case formflow.OpCreate:
				id, err := r.insert(txCtx, &change.Mapping)
				if err != nil {
					return err
				}
				result.Created = append(result.Created, id)
			case formflow.OpUpdate:
				if err := r.update(txCtx, *change.ID, &change.Mapping); err != nil {
					return err
				}
				result.Updated++
			case formflow.OpDelete:
				if err := r.delete(txCtx, *change.ID); err != nil {
					return err
				}
				result.Deleted++
			default:
				return fmt.Errorf("unknown op %q", change.Op)
			}
		}
		return nil
	})
	if err != nil {
		return mapping.BulkResult{}, err
	}
	return result, nil
}

func (r *MappingRepository) insert(ctx context.Context, m *mapping.SurveyMapping) (uuid.UUID, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	fields, err := marshalFields(m.Fields)
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	if err := tx.QueryRow(ctx, `
INSERT INTO survey_mappings (survey_id, site_id, building_id, wing_id, area_id, floor_id, room_id, fields)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id
`,
		m.SurveyID,
		pgUUIDPtr(m.SiteID), pgUUIDPtr(m.BuildingID), pgUUIDPtr(m.WingID),
		pgUUIDPtr(m.AreaID), pgUUIDPtr(m.FloorID), pgUUIDPtr(m.RoomID),
		fields,
	).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *MappingRepository) update(ctx context.Context, id uuid.UUID, m *mapping.SurveyMapping) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	fields, err := marshalFields(m.Fields)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
UPDATE survey_mappings
SET survey_id = $2,
    site_id = $3, building_id = $4, wing_id = $5,
    area_id = $6, floor_id = $7, room_id = $8,
    fields = $9,
    updated_at = now()
WHERE id = $1
`,
		pgUUID(id),
		m.SurveyID,
		pgUUIDPtr(m.SiteID), pgUUIDPtr(m.BuildingID), pgUUIDPtr(m.WingID),
		pgUUIDPtr(m.AreaID), pgUUIDPtr(m.FloorID), pgUUIDPtr(m.RoomID),
		fields,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("survey mapping %s not found", id)
	}
	return nil
}

func (r *MappingRepository) delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM survey_mappings WHERE id = $1`, pgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("survey mapping %s not found", id)
	}
	return nil
}
