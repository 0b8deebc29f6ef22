package survey

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"invisinsights/internal/model"
)

// PolarityFallback decides two-option polarity when labels are ambiguous
type PolarityFallback string

const (
	PolarityFirstTrue  PolarityFallback = "first_true"
	PolaritySecondTrue PolarityFallback = "second_true"
)

// KeywordRule binds label keywords to an intent
type KeywordRule struct {
	Intent   model.Intent `yaml:"intent" json:"intent"`
	Keywords []string     `yaml:"keywords" json:"keywords"`
}

// Policy holds the tunable heuristics of intent and polarity inference.
// Rules are evaluated in order.
type Policy struct {
	Rules                []KeywordRule    `yaml:"rules" json:"rules"`
	DefaultIntent        model.Intent     `yaml:"default_intent" json:"default_intent"`
	BooleanDefaultIntent model.Intent     `yaml:"boolean_default_intent" json:"boolean_default_intent"`
	NegativeMarkers      []string         `yaml:"negative_markers" json:"negative_markers"`
	PolarityFallback     PolarityFallback `yaml:"polarity_fallback" json:"polarity_fallback"`
}

// DefaultPolicy reproduces the production keyword order
func DefaultPolicy() Policy {
	return Policy{
		Rules: []KeywordRule{
			{Intent: model.IntentConfusionLevel, Keywords: []string{"confus", "unclear", "confusing"}},
			{Intent: model.IntentFrustrationLevel, Keywords: []string{"frustrat", "annoy", "angry"}},
			{Intent: model.IntentTrustConfidence, Keywords: []string{"trust", "confiden", "secure", "safe"}},
			{Intent: model.IntentEaseOfUse, Keywords: []string{"easy", "ease", "simple", "usable"}},
			{Intent: model.IntentLikelihoodToContinue, Keywords: []string{"recommend", "likely", "continue", "return"}},
			{Intent: model.IntentOverallSatisfaction, Keywords: []string{"satisf", "overall", "experience"}},
		},
		DefaultIntent:        model.IntentOverallSatisfaction,
		BooleanDefaultIntent: model.IntentConfusionLevel,
		NegativeMarkers:      []string{"no", "false"},
		PolarityFallback:     PolarityFirstTrue,
	}
}

// Validate checks that every intent is known and the fallback is recognized
func (p Policy) Validate() error {
	for i, r := range p.Rules {
		if !r.Intent.Valid() {
			return fmt.Errorf("policy rule %d: unknown intent %q", i, r.Intent)
		}
	}
	if !p.DefaultIntent.Valid() {
		return fmt.Errorf("policy default_intent: unknown intent %q", p.DefaultIntent)
	}
	if !p.BooleanDefaultIntent.Valid() {
		return fmt.Errorf("policy boolean_default_intent: unknown intent %q", p.BooleanDefaultIntent)
	}
	switch p.PolarityFallback {
	case PolarityFirstTrue, PolaritySecondTrue:
	default:
		return fmt.Errorf("policy polarity_fallback: unknown value %q", p.PolarityFallback)
	}
	return nil
}

// normalized returns a deep copy with lowercase keywords
func (p Policy) normalized() Policy {
	out := Policy{
		DefaultIntent:        p.DefaultIntent,
		BooleanDefaultIntent: p.BooleanDefaultIntent,
		PolarityFallback:     p.PolarityFallback,
		NegativeMarkers:      lowerAll(p.NegativeMarkers),
		Rules:                make([]KeywordRule, len(p.Rules)),
	}
	for i, r := range p.Rules {
		out.Rules[i] = KeywordRule{Intent: r.Intent, Keywords: lowerAll(r.Keywords)}
	}
	return out
}

// ParsePolicy decodes a YAML policy. Omitted sections keep their defaults.
func ParsePolicy(data []byte) (Policy, error) {
	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("failed to parse inference policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// LoadPolicyFile reads a YAML policy from disk
func LoadPolicyFile(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read inference policy: %w", err)
	}
	return ParsePolicy(data)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
