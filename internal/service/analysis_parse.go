package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"invisinsights/internal/model"
)

var ErrNonJSONAnalysis = errors.New("reasoning service returned non-JSON response")

// Analysis is a parsed reasoning response: typed scores plus the raw object
type Analysis struct {
	Scores *model.IntentScores
	Raw    map[string]interface{}
}

// ParseAnalysis decodes the model output. The whole text is tried first, then
// the span from the first '{' to the last '}'.
func ParseAnalysis(text string) (*Analysis, error) {
	raw, ok := decodeObject(text)
	if !ok {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return nil, ErrNonJSONAnalysis
		}
		if raw, ok = decodeObject(text[start : end+1]); !ok {
			return nil, ErrNonJSONAnalysis
		}
	}

	return &Analysis{Scores: ScoresFromRaw(raw), Raw: raw}, nil
}

func decodeObject(text string) (map[string]interface{}, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v map[string]interface{}
	if err := dec.Decode(&v); err != nil || v == nil {
		return nil, false
	}
	if strings.TrimSpace(text[dec.InputOffset():]) != "" {
		return nil, false
	}
	return v, true
}

// ScoresFromRaw converts an untrusted analysis object into IntentScores.
// Unknown intents and non-numeric or non-finite values are dropped.
func ScoresFromRaw(raw map[string]interface{}) *model.IntentScores {
	scores := model.NewIntentScores()
	readUnitMap(raw["intent_scores"], scores.Scores)
	readUnitMap(raw["confidence"], scores.Confidence)

	if items, ok := raw["open_feedback"].([]interface{}); ok {
		for _, item := range items {
			if s, ok := scalarString(item); ok {
				scores.OpenFeedback = append(scores.OpenFeedback, s)
			}
		}
	}
	return scores
}

func readUnitMap(v interface{}, dst map[model.Intent]float64) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return
	}
	for key, val := range m {
		intent, ok := model.ParseIntent(key)
		if !ok {
			continue
		}
		f, ok := toFloat(val)
		if !ok {
			continue
		}
		if clamped, ok := model.ClampUnit(f); ok {
			dst[intent] = clamped
		}
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	}
	return 0, false
}

func scalarString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	}
	return "", false
}

// formatSession pretty-prints the session JSON for the prompt
func formatSession(session json.RawMessage) (string, error) {
	if len(session) == 0 {
		return "{}", nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, session, "", "  "); err != nil {
		return "", fmt.Errorf("invalid session JSON: %w", err)
	}
	return buf.String(), nil
}
