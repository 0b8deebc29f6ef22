package model

// ResponseStatusCompleted is the only status we ever submit
const ResponseStatusCompleted = "completed"

// AnswerCell is a single answer entry in a submitted question
type AnswerCell struct {
	ChoiceID string `json:"choice_id,omitempty"`
	RowID    string `json:"row_id,omitempty"`
	Text     string `json:"text,omitempty"`
}

// AnswerRecord is the synthesized answer for one question
type AnswerRecord struct {
	QuestionID string       `json:"id"`
	RowID      string       `json:"row_id,omitempty"`
	Answers    []AnswerCell `json:"answers"`
}

// PagePayload groups answer records under a survey page
type PagePayload struct {
	PageID    string         `json:"id"`
	Questions []AnswerRecord `json:"questions"`
}

// SubmissionPayload is the response body posted to a collector
type SubmissionPayload struct {
	ResponseStatus string        `json:"response_status"`
	Pages          []PagePayload `json:"pages"`
}

// NewSubmissionPayload wraps pages in a completed response
func NewSubmissionPayload(pages []PagePayload) *SubmissionPayload {
	return &SubmissionPayload{
		ResponseStatus: ResponseStatusCompleted,
		Pages:          pages,
	}
}
