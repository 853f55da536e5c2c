package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/opsfabric/premise/modules/facilities/domain/mapping"
	"github.com/opsfabric/premise/modules/facilities/infrastructure/persistence"
	"github.com/opsfabric/premise/pkg/composables"
	"github.com/opsfabric/premise/pkg/formflow"
)

func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestMappingRepository_ListBySurvey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rowID := uuid.New()
	siteID := uuid.New()
	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM survey_mappings").
		WithArgs("sv-9").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "survey_id", "site_id", "building_id", "wing_id",
			"area_id", "floor_id", "room_id", "fields", "created_at", "updated_at",
		}).AddRow(
			rowID, "sv-9",
			pgtype.UUID{Bytes: siteID, Valid: true},
			pgtype.UUID{}, pgtype.UUID{}, pgtype.UUID{}, pgtype.UUID{}, pgtype.UUID{},
			[]byte(`{"day": "monday"}`),
			pgtype.Timestamptz{Time: now, Valid: true},
			pgtype.Timestamptz{Time: now, Valid: true},
		))

	ctx := composables.WithTx(context.Background(), mock)
	repo := persistence.NewMappingRepository()

	found, err := repo.ListBySurvey(ctx, "sv-9")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, rowID, found[0].ID)
	require.NotNil(t, found[0].SiteID)
	require.Equal(t, siteID, *found[0].SiteID)
	require.Nil(t, found[0].BuildingID)
	require.Equal(t, "monday", found[0].Fields[formflow.FieldDay])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMappingRepository_BulkApply_SingleTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	siteID := uuid.New()
	updateID := uuid.New()
	deleteID := uuid.New()
	createdID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO survey_mappings").
		WithArgs(anyArgs(8)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(createdID))
	mock.ExpectExec("UPDATE survey_mappings").
		WithArgs(anyArgs(9)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM survey_mappings").
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	ctx := composables.WithPool(context.Background(), mock)
	repo := persistence.NewMappingRepository()

	result, err := repo.BulkApply(ctx, []mapping.Change{
		{Op: formflow.OpCreate, Mapping: mapping.SurveyMapping{SurveyID: "sv-9", SiteID: &siteID}},
		{Op: formflow.OpUpdate, ID: &updateID, Mapping: mapping.SurveyMapping{SurveyID: "sv-9", SiteID: &siteID}},
		{Op: formflow.OpDelete, ID: &deleteID},
	})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{createdID}, result.Created)
	require.Equal(t, 1, result.Updated)
	require.Equal(t, 1, result.Deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMappingRepository_BulkApply_RollsBackOnMissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	updateID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE survey_mappings").
		WithArgs(anyArgs(9)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	ctx := composables.WithPool(context.Background(), mock)
	repo := persistence.NewMappingRepository()

	_, err = repo.BulkApply(ctx, []mapping.Change{
		{Op: formflow.OpUpdate, ID: &updateID, Mapping: mapping.SurveyMapping{SurveyID: "sv-9"}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
	require.NoError(t, mock.ExpectationsWereMet())
}
