package service

import (
	"context"
	"encoding/json"
	"sync"

	"invisinsights/internal/model"
)

type fakePlatform struct {
	mu          sync.Mutex
	surveys     []model.SMSurveySummary
	details     *model.SMSurveyDetails
	collectors  []model.SMCollectorSummary
	listErr     error
	detailsErr  error
	createErr   error
	submissions []submission
}

type submission struct {
	token       string
	collectorID string
	payload     *model.SubmissionPayload
}

func (f *fakePlatform) ListSurveys(ctx context.Context, token string) ([]model.SMSurveySummary, error) {
	return f.surveys, f.listErr
}

func (f *fakePlatform) GetSurveyDetails(ctx context.Context, token, surveyID string) (*model.SMSurveyDetails, error) {
	return f.details, f.detailsErr
}

func (f *fakePlatform) ListCollectors(ctx context.Context, token, surveyID string) ([]model.SMCollectorSummary, error) {
	return f.collectors, nil
}

func (f *fakePlatform) CreateResponse(ctx context.Context, token, collectorID string, payload *model.SubmissionPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, submission{token: token, collectorID: collectorID, payload: payload})
	return f.createErr
}

type fakeAnalyzer struct {
	analysis *Analysis
	err      error
	calls    int
	intents  []model.Intent
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, session json.RawMessage, intents []model.Intent) (*Analysis, error) {
	f.calls++
	f.intents = intents
	return f.analysis, f.err
}

type event struct {
	projectID string
	msgType   string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event
}

func (p *recordingPublisher) Publish(projectID, msgType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event{projectID: projectID, msgType: msgType})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.msgType
	}
	return out
}

func twoQuestionDetails() *model.SMSurveyDetails {
	return &model.SMSurveyDetails{
		ID: "s1",
		Pages: []model.SMPageDetail{{
			ID: "p1",
			Questions: []model.SMQuestionDetail{
				{ID: "q1", Family: "open_ended", Heading: "Anything else?"},
				{
					ID:       "q2",
					Family:   "single_choice",
					Headings: []model.SMHeading{{Heading: "How satisfied are you?"}},
					Answers: &model.SMAnswerOptions{Choices: []model.SMChoice{
						{ID: "c1", Text: "1"}, {ID: "c2", Text: "2"}, {ID: "c3", Text: "3"},
					}},
				},
			},
		}},
	}
}

func mustAnalysis(text string) *Analysis {
	a, err := ParseAnalysis(text)
	if err != nil {
		panic(err)
	}
	return a
}
