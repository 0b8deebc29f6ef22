package model

import "strings"

// SMSurveySummary is an entry of GET /surveys
type SMSurveySummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Nickname string `json:"nickname,omitempty"`
	Href     string `json:"href,omitempty"`
}

// SMCollectorSummary is an entry of GET /surveys/{id}/collectors
type SMCollectorSummary struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
	Href string `json:"href,omitempty"`
}

// SMSurveyDetails is the raw survey definition from GET /surveys/{id}/details
type SMSurveyDetails struct {
	ID    string         `json:"id,omitempty"`
	Title string         `json:"title,omitempty"`
	Pages []SMPageDetail `json:"pages"`
}

// SMPageDetail is a page of the raw definition
type SMPageDetail struct {
	ID        string             `json:"id"`
	Title     string             `json:"title,omitempty"`
	Questions []SMQuestionDetail `json:"questions"`
}

// SMHeading is one heading entry of a question
type SMHeading struct {
	Heading string `json:"heading"`
}

// SMQuestionDetail is a raw question definition
type SMQuestionDetail struct {
	ID       string           `json:"id"`
	Family   string           `json:"family"`
	Subtype  string           `json:"subtype,omitempty"`
	Headings []SMHeading      `json:"headings,omitempty"`
	Heading  string           `json:"heading,omitempty"`
	Answers  *SMAnswerOptions `json:"answers,omitempty"`
}

// SMAnswerOptions holds the choice columns and matrix rows of a question
type SMAnswerOptions struct {
	Choices []SMChoice `json:"choices,omitempty"`
	Rows    []SMRow    `json:"rows,omitempty"`
}

// SMChoice is a selectable option
type SMChoice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SMRow is a matrix row
type SMRow struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Text returns the first non-empty heading of the question
func (q *SMQuestionDetail) Text() string {
	if len(q.Headings) > 0 && q.Headings[0].Heading != "" {
		return q.Headings[0].Heading
	}
	return q.Heading
}

// FamilyName returns the lowercase question family
func (q *SMQuestionDetail) FamilyName() string {
	return strings.ToLower(q.Family)
}

// ChoiceList returns the question's choices, or nil
func (q *SMQuestionDetail) ChoiceList() []SMChoice {
	if q.Answers == nil {
		return nil
	}
	return q.Answers.Choices
}

// RowList returns the question's matrix rows, or nil
func (q *SMQuestionDetail) RowList() []SMRow {
	if q.Answers == nil {
		return nil
	}
	return q.Answers.Rows
}
