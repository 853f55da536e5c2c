package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicMappingsAppliedV1 = "facilities.mappings.applied.v1"
	EventVersionV1         = 1
)

// MappingsAppliedV1 is published after a bulk submission committed.
type MappingsAppliedV1 struct {
	EventID         uuid.UUID `json:"event_id"`
	EventVersion    int       `json:"event_version"`
	SurveyID        string    `json:"survey_id"`
	TransactionTime time.Time `json:"transaction_time"`
	Created         int       `json:"created"`
	Updated         int       `json:"updated"`
	Deleted         int       `json:"deleted"`
}
