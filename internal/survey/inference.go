package survey

import (
	"strings"

	"invisinsights/internal/model"
)

// LabelClassifier infers intent bindings and boolean polarity from label text.
// Mapper depends only on this interface so the heuristics can be swapped.
type LabelClassifier interface {
	InferIntent(text string, qt model.QuestionType) model.Intent
	ResolvePolarity(first, second model.SMChoice) (trueID, falseID string)
}

// KeywordClassifier is the default substring-matching LabelClassifier.
// It is immutable after construction and safe for concurrent use.
type KeywordClassifier struct {
	policy Policy
}

// NewKeywordClassifier builds a classifier from a validated policy
func NewKeywordClassifier(p Policy) (*KeywordClassifier, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &KeywordClassifier{policy: p.normalized()}, nil
}

// DefaultClassifier returns a classifier using DefaultPolicy
func DefaultClassifier() *KeywordClassifier {
	return &KeywordClassifier{policy: DefaultPolicy().normalized()}
}

// Policy returns a copy of the classifier's policy
func (c *KeywordClassifier) Policy() Policy {
	return c.policy.normalized()
}

// InferIntent walks the ordered rules; first keyword hit wins
func (c *KeywordClassifier) InferIntent(text string, qt model.QuestionType) model.Intent {
	if qt == model.QuestionTypeText {
		return model.IntentOpenFeedback
	}
	value := strings.ToLower(text)
	for _, rule := range c.policy.Rules {
		if containsAny(value, rule.Keywords) {
			return rule.Intent
		}
	}
	if qt == model.QuestionTypeBoolean {
		return c.policy.BooleanDefaultIntent
	}
	return c.policy.DefaultIntent
}

// ResolvePolarity picks which of two options means "true".
// Exactly one negative label decides it; otherwise the fallback policy applies.
func (c *KeywordClassifier) ResolvePolarity(first, second model.SMChoice) (string, string) {
	firstNeg := containsAny(strings.ToLower(first.Text), c.policy.NegativeMarkers)
	secondNeg := containsAny(strings.ToLower(second.Text), c.policy.NegativeMarkers)

	switch {
	case firstNeg && !secondNeg:
		return second.ID, first.ID
	case secondNeg && !firstNeg:
		return first.ID, second.ID
	}

	if c.policy.PolarityFallback == PolaritySecondTrue {
		return second.ID, first.ID
	}
	return first.ID, second.ID
}

func containsAny(value string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(value, k) {
			return true
		}
	}
	return false
}
