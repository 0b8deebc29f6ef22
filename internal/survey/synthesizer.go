package survey

import (
	"math"
	"strconv"
	"strings"

	"invisinsights/internal/model"
)

// Synthesize derives the answer for one question. A nil record with a nil
// error means the signal was absent or too weak and the question is skipped.
func Synthesize(scores *model.IntentScores, q *model.QuestionSchema) (*model.AnswerRecord, error) {
	switch model.NormalizeQuestionType(q.Type) {
	case model.QuestionTypeText:
		return synthesizeText(scores, q), nil
	case model.QuestionTypeBoolean:
		return synthesizeBoolean(scores, q)
	case model.QuestionTypeScale:
		return synthesizeScale(scores, q)
	}
	return nil, nil
}

func synthesizeText(scores *model.IntentScores, q *model.QuestionSchema) *model.AnswerRecord {
	if conf, ok := scores.ConfidenceFor(q.Intent); ok && conf < q.EffectiveConfidenceThreshold() {
		return nil
	}
	text := OpenFeedbackText(scores)
	if text == "" {
		return nil
	}
	return &model.AnswerRecord{
		QuestionID: q.QuestionID,
		Answers:    []model.AnswerCell{{Text: text}},
	}
}

func synthesizeBoolean(scores *model.IntentScores, q *model.QuestionSchema) (*model.AnswerRecord, error) {
	score, ok := scores.Score(q.Intent)
	if !ok {
		return nil, nil
	}
	choiceID := q.FalseChoiceID
	if score >= q.EffectiveThreshold() {
		choiceID = q.TrueChoiceID
	}
	if choiceID == "" {
		return nil, &EncodingError{QuestionID: q.QuestionID, Reason: "boolean choice IDs missing"}
	}
	return &model.AnswerRecord{
		QuestionID: q.QuestionID,
		Answers:    []model.AnswerCell{{ChoiceID: choiceID}},
	}, nil
}

func synthesizeScale(scores *model.IntentScores, q *model.QuestionSchema) (*model.AnswerRecord, error) {
	score, ok := scores.Score(q.Intent)
	if !ok {
		return nil, nil
	}
	if q.ScaleMin == nil || q.ScaleMax == nil {
		return nil, &EncodingError{QuestionID: q.QuestionID, Reason: "scale bounds missing"}
	}
	key := ScaleKey(ScaleValue(score, *q.ScaleMin, *q.ScaleMax))
	choiceID := q.ChoiceIDs[key]
	if choiceID == "" {
		return nil, &EncodingError{QuestionID: q.QuestionID, Reason: "scale choice ID not resolved for value " + key}
	}

	cell := model.AnswerCell{ChoiceID: choiceID, RowID: q.RowID}
	return &model.AnswerRecord{
		QuestionID: q.QuestionID,
		RowID:      q.RowID,
		Answers:    []model.AnswerCell{cell},
	}, nil
}

// ScaleValue maps a unit score linearly onto [lo, hi], rounds half up and
// clamps into the bounds. Bounds may be given in either order.
func ScaleValue(score, lo, hi float64) float64 {
	raw := lo + (hi-lo)*score
	rounded := math.Floor(raw + 0.5)
	low, high := math.Min(lo, hi), math.Max(lo, hi)
	return math.Min(high, math.Max(low, rounded))
}

// ScaleKey formats a scale value as its choice_ids key: shortest decimal form,
// no exponent, no negative zero.
func ScaleKey(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// OpenFeedbackText joins the non-blank feedback lines
func OpenFeedbackText(scores *model.IntentScores) string {
	if scores == nil {
		return ""
	}
	lines := make([]string, 0, len(scores.OpenFeedback))
	for _, item := range scores.OpenFeedback {
		if s := strings.TrimSpace(item); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}
