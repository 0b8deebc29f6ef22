package survey

import "invisinsights/internal/model"

// Aggregate groups records by page in first-seen page order. Records keep their
// input order within a page; records with no resolvable page are dropped.
func Aggregate(records []model.AnswerRecord, questionToPage map[string]string, defaultPageID string) []model.PagePayload {
	var pages []model.PagePayload
	index := make(map[string]int)

	for _, rec := range records {
		pageID := questionToPage[rec.QuestionID]
		if pageID == "" {
			pageID = defaultPageID
		}
		if pageID == "" {
			continue
		}
		i, ok := index[pageID]
		if !ok {
			i = len(pages)
			index[pageID] = i
			pages = append(pages, model.PagePayload{PageID: pageID})
		}
		pages[i].Questions = append(pages[i].Questions, rec)
	}
	return pages
}

// SynthesisResult is the outcome of BuildPages
type SynthesisResult struct {
	Pages    []model.PagePayload
	Answered int
	Omitted  int
}

// BuildPages synthesizes every question of cfg and groups the answers by page.
// Any EncodingError aborts the whole build so no partial payload escapes.
func BuildPages(scores *model.IntentScores, cfg *model.SurveyConfig) (*SynthesisResult, error) {
	records := make([]model.AnswerRecord, 0, len(cfg.Questions))
	questionToPage := make(map[string]string, len(cfg.Questions))
	result := &SynthesisResult{}

	for i := range cfg.Questions {
		q := &cfg.Questions[i]
		rec, err := Synthesize(scores, q)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			result.Omitted++
			continue
		}
		if q.PageID != "" {
			questionToPage[q.QuestionID] = q.PageID
		}
		records = append(records, *rec)
		result.Answered++
	}

	result.Pages = Aggregate(records, questionToPage, cfg.PageID)
	return result, nil
}
