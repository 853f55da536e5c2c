package application

import (
	"context"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// MigrationManager collects goose SQL schemas embedded by modules and applies
// them against the application pool.
type MigrationManager struct {
	pool    *pgxpool.Pool
	schemas []fs.FS
}

func NewMigrationManager(pool *pgxpool.Pool) *MigrationManager {
	return &MigrationManager{pool: pool}
}

func (m *MigrationManager) RegisterSchema(fsys fs.FS) {
	m.schemas = append(m.schemas, fsys)
}

func (m *MigrationManager) Up(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(m.pool)
	defer func() { _ = db.Close() }()

	for _, fsys := range m.schemas {
		provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
		if err != nil {
			return err
		}
		if _, err := provider.Up(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (m *MigrationManager) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	db := stdlib.OpenDBFromPool(m.pool)
	defer func() { _ = db.Close() }()

	var out []*goose.MigrationStatus
	for _, fsys := range m.schemas {
		provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
		if err != nil {
			return nil, err
		}
		statuses, err := provider.Status(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, statuses...)
	}
	return out, nil
}
