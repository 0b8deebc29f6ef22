package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invisinsights/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const detailsJSON = `{
  "id": "s1",
  "pages": [{
    "id": "p1",
    "questions": [
      {"id": "q1", "family": "open_ended", "heading": "Anything else?"},
      {"id": "q2", "family": "single_choice", "headings": [{"heading": "Was it confusing?"}],
       "answers": {"choices": [{"id": "y", "text": "Yes"}, {"id": "n", "text": "No"}]}}
    ]
  }]
}`

func TestAutoMapCommand(t *testing.T) {
	out, err := execute(t, "automap", "--details", writeFile(t, "details.json", detailsJSON), "--collector-id", "col1")
	require.NoError(t, err)

	var cfg model.SurveyConfig
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "s1", cfg.SurveyID)
	assert.Equal(t, "col1", cfg.CollectorID)
	require.Len(t, cfg.Questions, 2)
	assert.Equal(t, model.IntentConfusionLevel, cfg.Questions[1].Intent)
	assert.Equal(t, "y", cfg.Questions[1].TrueChoiceID)
}

func TestAutoMapCommand_RequiresFlags(t *testing.T) {
	_, err := execute(t, "automap", "--details", writeFile(t, "details.json", detailsJSON))
	assert.Error(t, err)
}

const configJSON = `{
  "survey_id": "s1",
  "collector_id": "col1",
  "page_id": "p1",
  "questions": [
    {"question_id": "q1", "type": "TEXT", "inferred_intent": "OPEN_FEEDBACK"},
    {"question_id": "q2", "type": "boolean", "inferred_intent": "CONFUSION_LEVEL", "true_choice_id": "y", "false_choice_id": "n"}
  ]
}`

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "--config", writeFile(t, "config.json", configJSON))
	require.NoError(t, err)

	var cfg model.SurveyConfig
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, model.QuestionTypeText, cfg.Questions[0].Type)

	_, err = execute(t, "validate", "--config", writeFile(t, "bad.json", `{"survey_id":"s1"}`))
	assert.Error(t, err)
}

func TestSynthesizeCommand(t *testing.T) {
	analysis := "Here you go:\n" + `{"intent_scores":{"CONFUSION_LEVEL":0.9},"confidence":{"OPEN_FEEDBACK":0.3},"open_feedback":["weak"]}`

	out, err := execute(t, "synthesize",
		"--config", writeFile(t, "config.json", configJSON),
		"--analysis", writeFile(t, "analysis.txt", analysis))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"response_status": "completed",
		"pages": [{"id": "p1", "questions": [{"id": "q2", "answers": [{"choice_id": "y"}]}]}]
	}`, out)
}
