// Package backend implements the formflow gateway over the facilities REST
// API. It is the console-side counterpart of the controllers in
// modules/facilities/presentation.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/opsfabric/premise/pkg/configuration"
	"github.com/opsfabric/premise/pkg/formflow"
	"github.com/opsfabric/premise/pkg/httpapi"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(opts *configuration.BackendOptions) *Client {
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    &http.Client{Timeout: opts.Timeout},
	}
}

var _ formflow.Gateway = (*Client)(nil)

func (c *Client) FetchLocations(ctx context.Context, level formflow.Level, parentID string) ([]formflow.LocationNode, error) {
	q := url.Values{"level": {string(level)}}
	if parentID != "" {
		q.Set("parent_id", parentID)
	}

	var nodes []formflow.LocationNode
	if err := c.getJSON(ctx, "/facilities/api/locations?"+q.Encode(), &nodes); err != nil {
		return nil, errors.Wrap(err, "failed to fetch locations")
	}
	return nodes, nil
}

// mappingDTO mirrors the entity-mappings list response.
type mappingDTO struct {
	ID         string            `json:"id"`
	SurveyID   string            `json:"survey_id"`
	SiteID     *string           `json:"site_id"`
	BuildingID *string           `json:"building_id"`
	WingID     *string           `json:"wing_id"`
	AreaID     *string           `json:"area_id"`
	FloorID    *string           `json:"floor_id"`
	RoomID     *string           `json:"room_id"`
	Fields     map[string]string `json:"fields"`
}

func (d *mappingDTO) selection() map[formflow.Level]string {
	sel := make(map[formflow.Level]string)
	put := func(level formflow.Level, v *string) {
		if v != nil && *v != "" {
			sel[level] = *v
		}
	}
	put(formflow.LevelSite, d.SiteID)
	put(formflow.LevelBuilding, d.BuildingID)
	put(formflow.LevelWing, d.WingID)
	put(formflow.LevelArea, d.AreaID)
	put(formflow.LevelFloor, d.FloorID)
	put(formflow.LevelRoom, d.RoomID)
	return sel
}

func (c *Client) FetchMappings(ctx context.Context, surveyID string) ([]formflow.ExistingMapping, error) {
	q := url.Values{"survey_id": {surveyID}}

	var dtos []mappingDTO
	if err := c.getJSON(ctx, "/facilities/api/entity-mappings?"+q.Encode(), &dtos); err != nil {
		return nil, errors.Wrap(err, "failed to fetch entity mappings")
	}

	out := make([]formflow.ExistingMapping, 0, len(dtos))
	for i := range dtos {
		out = append(out, formflow.ExistingMapping{
			ID:        dtos[i].ID,
			Selection: dtos[i].selection(),
			Fields:    dtos[i].Fields,
		})
	}
	return out, nil
}

type bulkRequest struct {
	Items []formflow.SubmissionItem `json:"items"`
}

func (c *Client) SubmitBulk(ctx context.Context, payload formflow.SubmissionPayload) error {
	req := bulkRequest{Items: make([]formflow.SubmissionItem, 0,
		len(payload.Creates)+len(payload.Updates)+len(payload.Deletes))}
	req.Items = append(req.Items, payload.Creates...)
	req.Items = append(req.Items, payload.Updates...)
	req.Items = append(req.Items, payload.Deletes...)

	body, err := json.Marshal(&req)
	if err != nil {
		return errors.Wrap(err, "failed to encode bulk payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/facilities/api/entity-mappings/bulk", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build bulk request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &formflow.SubmissionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &formflow.SubmissionError{
			Message: readErrorMessage(resp.Body),
			Err:     fmt.Errorf("bulk apply returned status %d", resp.StatusCode),
		}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readErrorMessage(resp.Body)
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, msg)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// readErrorMessage pulls a human-readable message out of either error envelope
// the API emits. The message is preserved verbatim for the user.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 16*1024))
	if err != nil {
		return ""
	}

	var validation httpapi.ValidationEnvelope
	if err := json.Unmarshal(raw, &validation); err == nil && len(validation.Messages) > 0 {
		return strings.Join(validation.Messages, "; ")
	}

	var envelope httpapi.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return ""
}
