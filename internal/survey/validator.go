package survey

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"invisinsights/internal/model"
)

// Validate checks a candidate config and returns its normalized copy.
// Configs are accepted or rejected as a unit; the same rules apply to
// hand-authored and auto-mapped configs.
func Validate(cfg model.SurveyConfig) (model.SurveyConfig, error) {
	if isBlank(cfg.SurveyID) {
		return model.SurveyConfig{}, invalid("survey_id", "required")
	}
	if isBlank(cfg.CollectorID) {
		return model.SurveyConfig{}, invalid("collector_id", "required")
	}
	if isBlank(cfg.PageID) {
		return model.SurveyConfig{}, invalid("page_id", "required")
	}
	if len(cfg.Questions) == 0 {
		return model.SurveyConfig{}, invalid("questions", "must be a non-empty list")
	}

	out := model.SurveyConfig{
		SurveyID:    cfg.SurveyID,
		CollectorID: cfg.CollectorID,
		PageID:      cfg.PageID,
		Questions:   make([]model.QuestionSchema, 0, len(cfg.Questions)),
	}
	for i := range cfg.Questions {
		q, err := ValidateQuestion(cfg.Questions[i])
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Field = fmt.Sprintf("questions[%d].%s", i, ve.Field)
			}
			return model.SurveyConfig{}, err
		}
		out.Questions = append(out.Questions, q)
	}
	return out, nil
}

// ValidateQuestion checks a single question and returns its normalized copy.
// A non-nil error is always a *ValidationError.
func ValidateQuestion(q model.QuestionSchema) (model.QuestionSchema, error) {
	if isBlank(q.QuestionID) {
		return q, invalid("question_id", "required")
	}
	if q.Intent == "" {
		return q, invalid("inferred_intent", "required")
	}
	if !q.Intent.Valid() {
		return q, invalid("inferred_intent", "unknown intent %q", q.Intent)
	}

	out := q.Clone()
	out.Type = model.NormalizeQuestionType(q.Type)

	switch out.Type {
	case model.QuestionTypeText:
		if err := checkFinite("confidence_threshold", q.ConfidenceThreshold); err != nil {
			return q, err
		}

	case model.QuestionTypeBoolean:
		if isBlank(q.TrueChoiceID) {
			return q, invalid("true_choice_id", "required for boolean questions")
		}
		if isBlank(q.FalseChoiceID) {
			return q, invalid("false_choice_id", "required for boolean questions")
		}
		if err := checkFinite("threshold", q.Threshold); err != nil {
			return q, err
		}

	case model.QuestionTypeScale:
		if q.ScaleMin == nil || !isFinite(*q.ScaleMin) {
			return q, invalid("scale_min", "must be a finite number")
		}
		if q.ScaleMax == nil || !isFinite(*q.ScaleMax) {
			return q, invalid("scale_max", "must be a finite number")
		}
		if *q.ScaleMin == *q.ScaleMax {
			return q, invalid("scale_max", "must differ from scale_min")
		}
		if !isFinite(*q.ScaleMax - *q.ScaleMin) {
			return q, invalid("scale_max", "scale range overflows")
		}
		if len(q.ChoiceIDs) == 0 {
			return q, invalid("choice_ids", "must be a non-empty mapping")
		}

	case "":
		return q, invalid("type", "required")

	default:
		return q, invalid("type", "unsupported question type %q", q.Type)
	}

	return out, nil
}

func checkFinite(field string, v *float64) error {
	if v == nil {
		return nil
	}
	if !isFinite(*v) {
		return invalid(field, "must be a finite number")
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
