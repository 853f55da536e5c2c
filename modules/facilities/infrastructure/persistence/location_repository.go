package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/opsfabric/premise/modules/facilities/domain/location"
	"github.com/opsfabric/premise/pkg/composables"
	"github.com/opsfabric/premise/pkg/formflow"
)

type LocationRepository struct{}

func NewLocationRepository() location.Repository {
	return &LocationRepository{}
}

const locationColumns = `id, name, level, parent_id, created_at`

func scanLocation(row interface{ Scan(dest ...any) error }) (location.Location, error) {
	var (
		loc       location.Location
		level     string
		parentID  pgtype.UUID
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&loc.ID, &loc.Name, &level, &parentID, &createdAt); err != nil {
		return location.Location{}, err
	}
	loc.Level = formflow.Level(level)
	loc.ParentID = asUUIDPtr(parentID)
	loc.CreatedAt = asTime(createdAt)
	return loc, nil
}

func (r *LocationRepository) ListByParent(ctx context.Context, level formflow.Level, parentID *uuid.UUID) ([]location.Location, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + locationColumns + ` FROM locations WHERE level = $1 AND parent_id IS NULL ORDER BY name`
	args := []any{string(level)}
	if parentID != nil {
		query = `SELECT ` + locationColumns + ` FROM locations WHERE level = $1 AND parent_id = $2 ORDER BY name`
		args = append(args, pgUUID(*parentID))
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []location.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func (r *LocationRepository) ListAll(ctx context.Context) ([]location.Location, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY level, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []location.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func (r *LocationRepository) Insert(ctx context.Context, loc *location.Location) (uuid.UUID, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	if err := tx.QueryRow(ctx, `
INSERT INTO locations (name, level, parent_id)
VALUES ($1, $2, $3)
RETURNING id
`, loc.Name, string(loc.Level), pgUUIDPtr(loc.ParentID)).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}
