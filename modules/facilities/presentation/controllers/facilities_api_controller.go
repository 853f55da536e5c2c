package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"

	"github.com/opsfabric/premise/modules/facilities/domain/location"
	"github.com/opsfabric/premise/modules/facilities/presentation/controllers/dtos"
	"github.com/opsfabric/premise/modules/facilities/services"
	"github.com/opsfabric/premise/pkg/application"
	"github.com/opsfabric/premise/pkg/formflow"
	"github.com/opsfabric/premise/pkg/httpapi"
)

const searchLimit = 25

// FacilitiesAPIController serves the location cascade and the entity-mapping
// batch endpoints the console form engine talks to.
type FacilitiesAPIController struct {
	app             application.Application
	locationService *services.LocationService
	mappingService  *services.MappingService
}

func NewFacilitiesAPIController(app application.Application) application.Controller {
	return &FacilitiesAPIController{
		app:             app,
		locationService: app.Service(services.LocationService{}).(*services.LocationService),
		mappingService:  app.Service(services.MappingService{}).(*services.MappingService),
	}
}

func (c *FacilitiesAPIController) Key() string {
	return "/facilities/api"
}

func (c *FacilitiesAPIController) Register(r *mux.Router) {
	router := r.PathPrefix("/facilities/api").Subrouter()

	router.HandleFunc("/locations", c.ListLocations).Methods(http.MethodGet)
	router.HandleFunc("/locations/search", c.SearchLocations).Methods(http.MethodGet)
	router.HandleFunc("/locations", c.CreateLocation).Methods(http.MethodPost)

	router.HandleFunc("/entity-mappings", c.ListMappings).Methods(http.MethodGet)
	router.HandleFunc("/entity-mappings/bulk", c.BulkApply).Methods(http.MethodPut)
	router.HandleFunc("/entity-mappings/export", c.ExportMappings).Methods(http.MethodGet)
}

// ListLocations serves one option list of the cascade: ?level=building&parent_id=<uuid>.
// Sites are listed without a parent_id.
func (c *FacilitiesAPIController) ListLocations(w http.ResponseWriter, r *http.Request) {
	level, err := formflow.ParseLevel(r.URL.Query().Get("level"))
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_LEVEL", err.Error(), nil)
		return
	}

	var parentID *uuid.UUID
	if raw := r.URL.Query().Get("parent_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_PARENT_ID", "parent_id must be a uuid", nil)
			return
		}
		parentID = &id
	}

	locations, err := c.locationService.ListByParent(r.Context(), level, parentID)
	if err != nil {
		c.app.Logger().WithError(err).Error("failed to list locations")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to list locations", nil)
		return
	}
	c.writeLocations(w, locations)
}

func (c *FacilitiesAPIController) SearchLocations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "MISSING_QUERY", "q is required", nil)
		return
	}
	limit := searchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	locations, err := c.locationService.Search(r.Context(), query, limit)
	if err != nil {
		c.app.Logger().WithError(err).Error("failed to search locations")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to search locations", nil)
		return
	}
	c.writeLocations(w, locations)
}

func (c *FacilitiesAPIController) writeLocations(w http.ResponseWriter, locations []location.Location) {
	out := make([]dtos.LocationResponse, 0, len(locations))
	for i := range locations {
		out = append(out, dtos.NewLocationResponse(&locations[i]))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *FacilitiesAPIController) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var dto dtos.CreateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "failed to decode request body", nil)
		return
	}
	if err := dto.Validate(); err != nil {
		_ = httpapi.WriteValidationError(w, []string{err.Error()})
		return
	}
	entity, err := dto.ToEntity()
	if err != nil {
		_ = httpapi.WriteValidationError(w, []string{err.Error()})
		return
	}

	id, err := c.locationService.Create(r.Context(), entity)
	if err != nil {
		c.app.Logger().WithError(err).Error("failed to create location")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to create location", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (c *FacilitiesAPIController) ListMappings(w http.ResponseWriter, r *http.Request) {
	surveyID := r.URL.Query().Get("survey_id")
	if surveyID == "" {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "MISSING_SURVEY_ID", "survey_id is required", nil)
		return
	}

	mappings, err := c.mappingService.ListBySurvey(r.Context(), surveyID)
	if err != nil {
		c.app.Logger().WithError(err).Error("failed to list entity mappings")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to list entity mappings", nil)
		return
	}

	out := make([]dtos.MappingResponse, 0, len(mappings))
	for i := range mappings {
		out = append(out, dtos.NewMappingResponse(&mappings[i]))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

// BulkApply applies a whole batch of creates, updates and deletes in one
// transaction. A rejected batch changes nothing and reports every violation.
func (c *FacilitiesAPIController) BulkApply(w http.ResponseWriter, r *http.Request) {
	var dto dtos.BulkApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "failed to decode request body", nil)
		return
	}
	if err := dto.Validate(); err != nil {
		_ = httpapi.WriteValidationError(w, []string{err.Error()})
		return
	}
	changes, err := dto.ToChanges()
	if err != nil {
		_ = httpapi.WriteValidationError(w, []string{err.Error()})
		return
	}

	surveyID := dto.Items[0].SurveyID
	result, err := c.mappingService.ApplyBulk(r.Context(), surveyID, changes)
	if err != nil {
		var validationErr *formflow.ValidationError
		if errors.As(err, &validationErr) {
			_ = httpapi.WriteValidationError(w, validationErr.Messages)
			return
		}
		c.app.Logger().WithError(err).Error("failed to apply entity mapping batch")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to apply entity mapping batch", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.NewBulkApplyResponse(result))
}

var exportColumns = []string{
	"Survey", "Site", "Building", "Wing", "Area", "Floor", "Room",
	"Day", "Start", "End", "Break Start", "Break End", "Blocked Date",
}

// ExportMappings streams the survey's mappings as an xlsx workbook with
// location ids resolved to names.
func (c *FacilitiesAPIController) ExportMappings(w http.ResponseWriter, r *http.Request) {
	surveyID := r.URL.Query().Get("survey_id")
	if surveyID == "" {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "MISSING_SURVEY_ID", "survey_id is required", nil)
		return
	}

	mappings, err := c.mappingService.ListBySurvey(r.Context(), surveyID)
	if err != nil {
		c.app.Logger().WithError(err).Error("failed to list entity mappings for export")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to export entity mappings", nil)
		return
	}
	names, err := c.locationNames(r.Context())
	if err != nil {
		c.app.Logger().WithError(err).Error("failed to resolve location names for export")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to export entity mappings", nil)
		return
	}

	file := excelize.NewFile()
	defer file.Close()
	sheet := file.GetSheetName(0)

	for col, title := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = file.SetCellValue(sheet, cell, title)
	}

	resolve := func(id *uuid.UUID) string {
		if id == nil {
			return ""
		}
		if name, ok := names[*id]; ok {
			return name
		}
		return id.String()
	}
	for i, m := range mappings {
		values := []string{
			m.SurveyID,
			resolve(m.SiteID), resolve(m.BuildingID), resolve(m.WingID),
			resolve(m.AreaID), resolve(m.FloorID), resolve(m.RoomID),
			m.Fields[formflow.FieldDay],
			m.Fields[formflow.FieldStartTime], m.Fields[formflow.FieldEndTime],
			m.Fields[formflow.FieldBreakStart], m.Fields[formflow.FieldBreakEnd],
			m.Fields[formflow.FieldBlockedDate],
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = file.SetCellValue(sheet, cell, value)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "entity-mappings-"+surveyID+".xlsx"))
	if err := file.Write(w); err != nil {
		c.app.Logger().WithError(err).Error("failed to write xlsx export")
	}
}

func (c *FacilitiesAPIController) locationNames(ctx context.Context) (map[uuid.UUID]string, error) {
	all, err := c.locationService.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(all))
	for _, loc := range all {
		names[loc.ID] = loc.Name
	}
	return names, nil
}
