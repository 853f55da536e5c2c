package location

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/opsfabric/premise/pkg/formflow"
)

// Location is one node of the site-to-room hierarchy. ParentID is nil only
// for site nodes; for every other level it references a node of the
// immediately enclosing level (enforced by the schema).
type Location struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Level     formflow.Level `json:"level"`
	ParentID  *uuid.UUID     `json:"parent_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type Repository interface {
	ListByParent(ctx context.Context, level formflow.Level, parentID *uuid.UUID) ([]Location, error)
	ListAll(ctx context.Context) ([]Location, error)
	Insert(ctx context.Context, loc *Location) (uuid.UUID, error)
}
