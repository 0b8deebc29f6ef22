package model

import "strings"

// QuestionType is the answer encoding family of a mapped question
type QuestionType string

const (
	QuestionTypeText    QuestionType = "text"    // free text from open feedback
	QuestionTypeBoolean QuestionType = "boolean" // two-option choice
	QuestionTypeScale   QuestionType = "scale"   // ordered options or matrix row
)

// NormalizeQuestionType lowercases and trims t
func NormalizeQuestionType(t QuestionType) QuestionType {
	return QuestionType(strings.ToLower(strings.TrimSpace(string(t))))
}

// Default thresholds applied when a question does not set its own
const (
	DefaultConfidenceThreshold = 0.6
	DefaultBooleanThreshold    = 0.5
)

// QuestionSchema is one normalized survey question bound to an intent
type QuestionSchema struct {
	QuestionID   string       `json:"question_id" bson:"question_id"`
	PageID       string       `json:"page_id,omitempty" bson:"page_id,omitempty"`
	QuestionText string       `json:"question_text,omitempty" bson:"question_text,omitempty"`
	Type         QuestionType `json:"type" bson:"type"`
	Intent       Intent       `json:"inferred_intent" bson:"inferred_intent"`

	// text
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty" bson:"confidence_threshold,omitempty"`

	// boolean
	Threshold     *float64 `json:"threshold,omitempty" bson:"threshold,omitempty"`
	TrueChoiceID  string   `json:"true_choice_id,omitempty" bson:"true_choice_id,omitempty"`
	FalseChoiceID string   `json:"false_choice_id,omitempty" bson:"false_choice_id,omitempty"`

	// scale
	ScaleMin  *float64          `json:"scale_min,omitempty" bson:"scale_min,omitempty"`
	ScaleMax  *float64          `json:"scale_max,omitempty" bson:"scale_max,omitempty"`
	ChoiceIDs map[string]string `json:"choice_ids,omitempty" bson:"choice_ids,omitempty"`
	RowID     string            `json:"row_id,omitempty" bson:"row_id,omitempty"`
}

// EffectiveConfidenceThreshold returns the text gating threshold
func (q *QuestionSchema) EffectiveConfidenceThreshold() float64 {
	if q.ConfidenceThreshold != nil {
		return *q.ConfidenceThreshold
	}
	return DefaultConfidenceThreshold
}

// EffectiveThreshold returns the boolean cut-off
func (q *QuestionSchema) EffectiveThreshold() float64 {
	if q.Threshold != nil {
		return *q.Threshold
	}
	return DefaultBooleanThreshold
}

// SurveyConfig binds a survey and collector to its mapped questions
type SurveyConfig struct {
	SurveyID    string           `json:"survey_id" bson:"survey_id"`
	CollectorID string           `json:"collector_id" bson:"collector_id"`
	PageID      string           `json:"page_id" bson:"page_id"`
	Questions   []QuestionSchema `json:"questions" bson:"questions"`
}

// Float is a helper for optional numeric schema fields
func Float(v float64) *float64 {
	return &v
}

// Clone returns a deep copy of q
func (q QuestionSchema) Clone() QuestionSchema {
	out := q
	out.ConfidenceThreshold = cloneFloat(q.ConfidenceThreshold)
	out.Threshold = cloneFloat(q.Threshold)
	out.ScaleMin = cloneFloat(q.ScaleMin)
	out.ScaleMax = cloneFloat(q.ScaleMax)
	if q.ChoiceIDs != nil {
		out.ChoiceIDs = make(map[string]string, len(q.ChoiceIDs))
		for k, v := range q.ChoiceIDs {
			out.ChoiceIDs[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of c
func (c SurveyConfig) Clone() SurveyConfig {
	out := c
	if c.Questions != nil {
		out.Questions = make([]QuestionSchema, len(c.Questions))
		for i, q := range c.Questions {
			out.Questions[i] = q.Clone()
		}
	}
	return out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
