package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opsfabric/premise/modules/facilities/domain/events"
	"github.com/opsfabric/premise/modules/facilities/domain/mapping"
	"github.com/opsfabric/premise/modules/facilities/domain/schedule"
	"github.com/opsfabric/premise/pkg/eventbus"
	"github.com/opsfabric/premise/pkg/formflow"
)

type MappingService struct {
	repo      mapping.Repository
	publisher eventbus.EventBus
}

func NewMappingService(repo mapping.Repository, publisher eventbus.EventBus) *MappingService {
	return &MappingService{repo: repo, publisher: publisher}
}

func (s *MappingService) ListBySurvey(ctx context.Context, surveyID string) ([]mapping.SurveyMapping, error) {
	return s.repo.ListBySurvey(ctx, surveyID)
}

// CheckChanges enforces op/id consistency before anything touches the
// database. Violations are collected for the whole batch, 1-based positions.
func (s *MappingService) CheckChanges(changes []mapping.Change) []string {
	var msgs []string
	for i, change := range changes {
		pos := i + 1
		switch change.Op {
		case formflow.OpCreate:
			if change.ID != nil {
				msgs = append(msgs, fmt.Sprintf("item %d: create must not carry an id", pos))
			}
			if change.Mapping.SiteID == nil {
				msgs = append(msgs, fmt.Sprintf("item %d: create requires a site", pos))
			}
		case formflow.OpUpdate, formflow.OpDelete:
			if change.ID == nil {
				msgs = append(msgs, fmt.Sprintf("item %d: %s requires an id", pos, change.Op))
			}
		default:
			msgs = append(msgs, fmt.Sprintf("item %d: unknown op %q", pos, change.Op))
		}

		if change.Op == formflow.OpCreate || change.Op == formflow.OpUpdate {
			week := schedule.Week{Rows: []schedule.Row{schedule.RowFromFields(change.Mapping.Fields)}}
			for _, msg := range week.Validate() {
				msgs = append(msgs, fmt.Sprintf("item %d: %s", pos, msg))
			}
		}
	}
	return msgs
}

// ApplyBulk validates and applies the batch transactionally, then publishes a
// v1 event describing what landed.
func (s *MappingService) ApplyBulk(ctx context.Context, surveyID string, changes []mapping.Change) (mapping.BulkResult, error) {
	if msgs := s.CheckChanges(changes); len(msgs) > 0 {
		return mapping.BulkResult{}, &formflow.ValidationError{Messages: msgs}
	}

	result, err := s.repo.BulkApply(ctx, changes)
	if err != nil {
		return mapping.BulkResult{}, err
	}

	s.publisher.Publish(&events.MappingsAppliedV1{
		EventID:         uuid.New(),
		EventVersion:    events.EventVersionV1,
		SurveyID:        surveyID,
		TransactionTime: time.Now().UTC(),
		Created:         len(result.Created),
		Updated:         result.Updated,
		Deleted:         result.Deleted,
	})
	return result, nil
}
