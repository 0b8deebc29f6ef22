package model

import "math"

// Intent is a behavioral category a survey question can measure
type Intent string

const (
	IntentOverallSatisfaction  Intent = "OVERALL_SATISFACTION"
	IntentEaseOfUse            Intent = "EASE_OF_USE"
	IntentConfusionLevel       Intent = "CONFUSION_LEVEL"
	IntentFrustrationLevel     Intent = "FRUSTRATION_LEVEL"
	IntentTrustConfidence      Intent = "TRUST_CONFIDENCE"
	IntentLikelihoodToContinue Intent = "LIKELIHOOD_TO_CONTINUE"
	IntentOpenFeedback         Intent = "OPEN_FEEDBACK"
)

var allIntents = []Intent{
	IntentOverallSatisfaction,
	IntentEaseOfUse,
	IntentConfusionLevel,
	IntentFrustrationLevel,
	IntentTrustConfidence,
	IntentLikelihoodToContinue,
	IntentOpenFeedback,
}

// AllIntents returns the closed intent set in declaration order
func AllIntents() []Intent {
	out := make([]Intent, len(allIntents))
	copy(out, allIntents)
	return out
}

// Valid reports whether i belongs to the closed intent set
func (i Intent) Valid() bool {
	switch i {
	case IntentOverallSatisfaction,
		IntentEaseOfUse,
		IntentConfusionLevel,
		IntentFrustrationLevel,
		IntentTrustConfidence,
		IntentLikelihoodToContinue,
		IntentOpenFeedback:
		return true
	}
	return false
}

// ParseIntent matches s exactly against the intent set
func ParseIntent(s string) (Intent, bool) {
	i := Intent(s)
	return i, i.Valid()
}

// IntentScores is the typed form of a reasoning-service analysis.
// Only finite values for known intents are ever stored.
type IntentScores struct {
	Scores       map[Intent]float64 `json:"intent_scores"`
	Confidence   map[Intent]float64 `json:"confidence"`
	OpenFeedback []string           `json:"open_feedback"`
}

// NewIntentScores returns empty, ready to fill scores
func NewIntentScores() *IntentScores {
	return &IntentScores{
		Scores:     make(map[Intent]float64),
		Confidence: make(map[Intent]float64),
	}
}

// Score returns the clamped score for intent, if present
func (s *IntentScores) Score(intent Intent) (float64, bool) {
	if s == nil {
		return 0, false
	}
	return lookupUnit(s.Scores, intent)
}

// ConfidenceFor returns the clamped confidence for intent, if present
func (s *IntentScores) ConfidenceFor(intent Intent) (float64, bool) {
	if s == nil {
		return 0, false
	}
	return lookupUnit(s.Confidence, intent)
}

func lookupUnit(m map[Intent]float64, intent Intent) (float64, bool) {
	v, ok := m[intent]
	if !ok {
		return 0, false
	}
	return ClampUnit(v)
}

// ClampUnit clamps v into [0,1]; NaN and infinities are rejected
func ClampUnit(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return math.Min(1, math.Max(0, v)), true
}
