package model

import (
	"encoding/json"
	"time"
)

// ProjectConnection is a survey config bound to a project with its access token
type ProjectConnection struct {
	ProjectID   string       `json:"project_id" bson:"project_id"`
	Config      SurveyConfig `json:"config" bson:"config"`
	AccessToken string       `json:"-" bson:"access_token"`
	ConnectedAt time.Time    `json:"connected_at" bson:"connected_at"`
}

// ProjectStatus answers GET /project-status
type ProjectStatus struct {
	Connected bool    `json:"surveymonkey_connected"`
	SetupURL  *string `json:"setup_url"`
}

// SurveyStatus is attached to analyze and collect responses
type SurveyStatus struct {
	Connected     bool `json:"surveymonkey_connected"`
	SetupRequired bool `json:"setup_required"`
}

// SessionEntry is a buffered behavioral session summary
type SessionEntry struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"session_id"`
	ProjectID    string          `json:"project_id,omitempty"`
	Session      json.RawMessage `json:"session"`
	ReceivedAtMS int64           `json:"received_at_ms"`
}
