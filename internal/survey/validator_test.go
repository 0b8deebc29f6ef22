package survey

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invisinsights/internal/model"
)

func validConfig() model.SurveyConfig {
	return model.SurveyConfig{
		SurveyID:    "s1",
		CollectorID: "c1",
		PageID:      "p1",
		Questions: []model.QuestionSchema{
			{QuestionID: "q1", Type: "TEXT", Intent: model.IntentOpenFeedback},
			{QuestionID: "q2", PageID: "p2", Type: "Boolean", Intent: model.IntentConfusionLevel, TrueChoiceID: "yes", FalseChoiceID: "no"},
			{
				QuestionID: "q3",
				Type:       "scale",
				Intent:     model.IntentOverallSatisfaction,
				ScaleMin:   model.Float(1),
				ScaleMax:   model.Float(5),
				ChoiceIDs:  map[string]string{"1": "c1", "2": "c2", "3": "c3", "4": "c4", "5": "c5"},
			},
		},
	}
}

func TestValidate_AcceptsAndNormalizesTypes(t *testing.T) {
	out, err := Validate(validConfig())
	require.NoError(t, err)

	require.Len(t, out.Questions, 3)
	assert.Equal(t, model.QuestionTypeText, out.Questions[0].Type)
	assert.Equal(t, model.QuestionTypeBoolean, out.Questions[1].Type)
	assert.Equal(t, model.QuestionTypeScale, out.Questions[2].Type)
}

func TestValidate_Idempotent(t *testing.T) {
	first, err := Validate(validConfig())
	require.NoError(t, err)

	second, err := Validate(first)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("re-validation changed config (-first +second):\n%s", diff)
	}
}

func TestValidate_OutputIsIndependentCopy(t *testing.T) {
	in := validConfig()
	out, err := Validate(in)
	require.NoError(t, err)

	out.Questions[2].ChoiceIDs["1"] = "changed"
	*out.Questions[2].ScaleMin = 42

	assert.Equal(t, "c1", in.Questions[2].ChoiceIDs["1"])
	assert.Equal(t, 1.0, *in.Questions[2].ScaleMin)
}

func TestValidate_EmptyQuestionsRejected(t *testing.T) {
	cfg := validConfig()
	cfg.Questions = nil

	_, err := Validate(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "questions", ve.Field)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.SurveyConfig)
		field  string
	}{
		{"missing survey id", func(c *model.SurveyConfig) { c.SurveyID = "" }, "survey_id"},
		{"blank collector id", func(c *model.SurveyConfig) { c.CollectorID = "  " }, "collector_id"},
		{"missing page id", func(c *model.SurveyConfig) { c.PageID = "" }, "page_id"},
		{"missing question id", func(c *model.SurveyConfig) { c.Questions[0].QuestionID = "" }, "questions[0].question_id"},
		{"missing intent", func(c *model.SurveyConfig) { c.Questions[0].Intent = "" }, "questions[0].inferred_intent"},
		{"unknown intent", func(c *model.SurveyConfig) { c.Questions[0].Intent = "HAPPINESS" }, "questions[0].inferred_intent"},
		{"lowercase intent", func(c *model.SurveyConfig) { c.Questions[0].Intent = "open_feedback" }, "questions[0].inferred_intent"},
		{"missing type", func(c *model.SurveyConfig) { c.Questions[0].Type = "" }, "questions[0].type"},
		{"unknown type", func(c *model.SurveyConfig) { c.Questions[0].Type = "ranking" }, "questions[0].type"},
		{"boolean without true id", func(c *model.SurveyConfig) { c.Questions[1].TrueChoiceID = "" }, "questions[1].true_choice_id"},
		{"boolean without false id", func(c *model.SurveyConfig) { c.Questions[1].FalseChoiceID = "" }, "questions[1].false_choice_id"},
		{"scale without min", func(c *model.SurveyConfig) { c.Questions[2].ScaleMin = nil }, "questions[2].scale_min"},
		{"scale with infinite max", func(c *model.SurveyConfig) { c.Questions[2].ScaleMax = model.Float(math.Inf(1)) }, "questions[2].scale_max"},
		{"scale with equal bounds", func(c *model.SurveyConfig) { c.Questions[2].ScaleMax = model.Float(1) }, "questions[2].scale_max"},
		{"scale with overflowing range", func(c *model.SurveyConfig) {
			c.Questions[2].ScaleMin = model.Float(-math.MaxFloat64)
			c.Questions[2].ScaleMax = model.Float(math.MaxFloat64)
		}, "questions[2].scale_max"},
		{"scale without choices", func(c *model.SurveyConfig) { c.Questions[2].ChoiceIDs = map[string]string{} }, "questions[2].choice_ids"},
		{"text with NaN threshold", func(c *model.SurveyConfig) { c.Questions[0].ConfidenceThreshold = model.Float(math.NaN()) }, "questions[0].confidence_threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			out, err := Validate(cfg)
			require.Error(t, err)
			assert.Empty(t, out.Questions, "rejected config must not be partially returned")

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidateQuestion_PageIDOptional(t *testing.T) {
	q := model.QuestionSchema{QuestionID: "q1", Type: "text", Intent: model.IntentOpenFeedback}

	out, err := ValidateQuestion(q)
	require.NoError(t, err)
	assert.Empty(t, out.PageID)
}

func TestValidateQuestion_ScaleBoundsAsWritten(t *testing.T) {
	q := model.QuestionSchema{
		QuestionID: "q1",
		Type:       "scale",
		Intent:     model.IntentEaseOfUse,
		ScaleMin:   model.Float(5),
		ScaleMax:   model.Float(1),
		ChoiceIDs:  map[string]string{"1": "a", "5": "b"},
	}
	out, err := ValidateQuestion(q)
	require.NoError(t, err)
	assert.Equal(t, 5.0, *out.ScaleMin)

	q.ScaleMin, q.ScaleMax = model.Float(0.5), model.Float(1e19)
	_, err = ValidateQuestion(q)
	assert.NoError(t, err)
}

func TestValidateQuestion_ThresholdsOnlyNeedBeFinite(t *testing.T) {
	q := model.QuestionSchema{
		QuestionID:    "q1",
		Type:          "boolean",
		Intent:        model.IntentConfusionLevel,
		TrueChoiceID:  "y",
		FalseChoiceID: "n",
		Threshold:     model.Float(7),
	}
	_, err := ValidateQuestion(q)
	assert.NoError(t, err)

	q.Threshold = model.Float(math.Inf(-1))
	_, err = ValidateQuestion(q)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "threshold", ve.Field)
}
