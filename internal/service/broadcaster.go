package service

// Event types pushed to project subscribers
const (
	EventSurveyConnected   = "survey_connected"
	EventAnalysisCompleted = "analysis_completed"
	EventResponseSubmitted = "response_submitted"
)

// Publisher interface for WebSocket broadcasting (avoids import cycle)
type Publisher interface {
	Publish(projectID string, msgType string, payload interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, string, interface{}) {}
