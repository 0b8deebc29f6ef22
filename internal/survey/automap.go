package survey

import (
	"regexp"
	"strconv"

	"invisinsights/internal/model"
)

// Raw question families understood by the mapper
const (
	FamilyOpenEnded    = "open_ended"
	FamilySingleChoice = "single_choice"
	FamilyMatrix       = "matrix"
)

var signedInt = regexp.MustCompile(`-?\d+`)

// Mapper derives a survey config from a raw survey definition
type Mapper struct {
	classifier LabelClassifier
}

// NewMapper creates a mapper; a nil classifier selects DefaultClassifier
func NewMapper(classifier LabelClassifier) *Mapper {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	return &Mapper{classifier: classifier}
}

// AutoMap maps with the default classifier
func AutoMap(surveyID, collectorID string, details *model.SMSurveyDetails) (model.SurveyConfig, error) {
	return NewMapper(nil).AutoMap(surveyID, collectorID, details)
}

// AutoMap infers one question schema per supported raw question. The result
// goes through Validate, so a nil error guarantees a storable config.
func (m *Mapper) AutoMap(surveyID, collectorID string, details *model.SMSurveyDetails) (model.SurveyConfig, error) {
	if details == nil || len(details.Pages) == 0 {
		return model.SurveyConfig{}, &MappingError{Reason: "survey details missing pages"}
	}

	var questions []model.QuestionSchema
	for _, page := range details.Pages {
		for i := range page.Questions {
			raw := &page.Questions[i]
			if raw.ID == "" {
				continue
			}
			if q, ok := m.mapQuestion(page.ID, raw); ok {
				questions = append(questions, q)
			}
		}
	}

	return Validate(model.SurveyConfig{
		SurveyID:    surveyID,
		CollectorID: collectorID,
		PageID:      details.Pages[0].ID,
		Questions:   questions,
	})
}

func (m *Mapper) mapQuestion(pageID string, raw *model.SMQuestionDetail) (model.QuestionSchema, bool) {
	text := raw.Text()
	q := model.QuestionSchema{
		QuestionID:   raw.ID,
		PageID:       pageID,
		QuestionText: text,
	}
	choices := raw.ChoiceList()

	switch raw.FamilyName() {
	case FamilyOpenEnded:
		q.Type = model.QuestionTypeText
		q.Intent = m.classifier.InferIntent(text, model.QuestionTypeText)
		return q, true

	case FamilySingleChoice:
		switch {
		case len(choices) == 2:
			q.Type = model.QuestionTypeBoolean
			q.TrueChoiceID, q.FalseChoiceID = m.classifier.ResolvePolarity(choices[0], choices[1])
			q.Intent = m.classifier.InferIntent(text, model.QuestionTypeBoolean)
			return q, true
		case len(choices) > 2:
			m.bindScale(&q, choices)
			q.Intent = m.classifier.InferIntent(text, model.QuestionTypeScale)
			return q, true
		}

	case FamilyMatrix:
		if len(choices) > 0 {
			m.bindScale(&q, choices)
			q.Intent = m.classifier.InferIntent(text, model.QuestionTypeScale)
			if rows := raw.RowList(); len(rows) > 0 {
				q.RowID = rows[0].ID
			}
			return q, true
		}
	}
	return q, false
}

func (m *Mapper) bindScale(q *model.QuestionSchema, choices []model.SMChoice) {
	ids, lo, hi := BuildChoiceMap(choices)
	q.Type = model.QuestionTypeScale
	q.ChoiceIDs = ids
	q.ScaleMin = model.Float(float64(lo))
	q.ScaleMax = model.Float(float64(hi))
}

// BuildChoiceMap keys choice IDs by scale value. When every label carries an
// integer, those integers are the values; otherwise positions 1..n are used.
func BuildChoiceMap(choices []model.SMChoice) (map[string]string, int, int) {
	values := make([]int, 0, len(choices))
	for _, c := range choices {
		v, ok := ExtractInt(c.Text)
		if !ok {
			break
		}
		values = append(values, v)
	}

	ids := make(map[string]string, len(choices))
	if len(choices) > 0 && len(values) == len(choices) {
		lo, hi := values[0], values[0]
		for i, v := range values {
			ids[strconv.Itoa(v)] = choices[i].ID
			lo = min(lo, v)
			hi = max(hi, v)
		}
		return ids, lo, hi
	}

	for i, c := range choices {
		ids[strconv.Itoa(i+1)] = c.ID
	}
	return ids, 1, len(choices)
}

// ExtractInt returns the first signed integer in s
func ExtractInt(s string) (int, bool) {
	match := signedInt.FindString(s)
	if match == "" {
		return 0, false
	}
	v, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return v, true
}
