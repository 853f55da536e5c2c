package services

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/opsfabric/premise/modules/facilities/domain/location"
	"github.com/opsfabric/premise/pkg/formflow"
)

type LocationService struct {
	repo location.Repository
}

func NewLocationService(repo location.Repository) *LocationService {
	return &LocationService{repo: repo}
}

// ListByParent serves one option list of the cascade: the children of
// parentID at the requested level. Sites are listed with a nil parent.
func (s *LocationService) ListByParent(ctx context.Context, level formflow.Level, parentID *uuid.UUID) ([]location.Location, error) {
	return s.repo.ListByParent(ctx, level, parentID)
}

func (s *LocationService) ListAll(ctx context.Context) ([]location.Location, error) {
	return s.repo.ListAll(ctx)
}

// Search ranks every location name against the query, best matches first.
func (s *LocationService) Search(ctx context.Context, query string, limit int) ([]location.Location, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(all))
	for i, loc := range all {
		names[i] = loc.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(ranks)

	out := make([]location.Location, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, all[rank.OriginalIndex])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *LocationService) Create(ctx context.Context, loc *location.Location) (uuid.UUID, error) {
	return s.repo.Insert(ctx, loc)
}
