package survey

import "invisinsights/internal/model"

// IntentsForConfig lists the distinct intents a config asks about, in question order
func IntentsForConfig(cfg *model.SurveyConfig) []model.Intent {
	if cfg == nil {
		return nil
	}
	seen := make(map[model.Intent]bool)
	var out []model.Intent
	for _, q := range cfg.Questions {
		if !q.Intent.Valid() || seen[q.Intent] {
			continue
		}
		seen[q.Intent] = true
		out = append(out, q.Intent)
	}
	return out
}
