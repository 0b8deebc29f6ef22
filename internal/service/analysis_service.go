package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"invisinsights/internal/cache"
	"invisinsights/internal/model"
	"invisinsights/internal/repository"
	"invisinsights/internal/survey"
	"invisinsights/internal/telemetry"
)

// AnalysisRequest is one behavioral session to score and submit
type AnalysisRequest struct {
	ProjectID    string
	SessionID    string
	Session      json.RawMessage
	InlineConfig *model.SurveyConfig
}

// AnalysisResult is returned by Analyze
type AnalysisResult struct {
	Analysis map[string]interface{}
	Status   model.SurveyStatus
}

var (
	statusSetupRequired = model.SurveyStatus{Connected: false, SetupRequired: true}
	statusSubmitted     = model.SurveyStatus{Connected: true, SetupRequired: false}
)

// AnalysisService runs sessions through reasoning, synthesis and submission
type AnalysisService struct {
	sm            SurveyPlatform
	analyzer      Analyzer
	repo          repository.ProjectRepo
	sessions      cache.SessionBuffer
	fallbackToken string
	publisher     Publisher
	metrics       telemetry.Recorder
	logger        *zap.Logger
	now           func() time.Time
}

// NewAnalysisService creates a new analysis service. fallbackToken is used
// for connections that carry no access token of their own.
func NewAnalysisService(sm SurveyPlatform, analyzer Analyzer, repo repository.ProjectRepo, sessions cache.SessionBuffer, fallbackToken string, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		sm:            sm,
		analyzer:      analyzer,
		repo:          repo,
		sessions:      sessions,
		fallbackToken: fallbackToken,
		publisher:     nopPublisher{},
		metrics:       telemetry.Noop(),
		logger:        logger,
		now:           time.Now,
	}
}

// SetPublisher injects the live event publisher
func (s *AnalysisService) SetPublisher(p Publisher) {
	s.publisher = p
}

// SetRecorder injects the metrics recorder
func (s *AnalysisService) SetRecorder(r telemetry.Recorder) {
	s.metrics = r
}

// ResolveConfig picks the config to answer with. A valid inline config wins and
// carries no token; otherwise the stored project connection is used.
func (s *AnalysisService) ResolveConfig(ctx context.Context, projectID string, inline *model.SurveyConfig) (*model.ProjectConnection, error) {
	if inline != nil {
		cfg, err := survey.Validate(*inline)
		if err != nil {
			s.logger.Warn("inline survey config rejected", zap.String("project_id", projectID), zap.Error(err))
			return nil, nil
		}
		return &model.ProjectConnection{ProjectID: projectID, Config: cfg}, nil
	}
	if projectID == "" {
		return nil, nil
	}
	return s.repo.Get(ctx, projectID)
}

// Analyze scores the session and submits the synthesized response. Errors from
// the reasoning service or SurveyMonkey are returned to the caller.
func (s *AnalysisService) Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error) {
	conn, err := s.ResolveConfig(ctx, req.ProjectID, req.InlineConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve survey config: %w", err)
	}
	if conn == nil {
		return &AnalysisResult{Status: statusSetupRequired}, nil
	}
	intents := survey.IntentsForConfig(&conn.Config)
	if len(intents) == 0 {
		return &AnalysisResult{Status: statusSetupRequired}, nil
	}

	analysis, err := s.analyzer.Analyze(ctx, req.Session, intents)
	if err != nil {
		s.metrics.AnalysisFailed(ctx, req.ProjectID, "reasoning")
		return nil, err
	}
	s.publisher.Publish(req.ProjectID, EventAnalysisCompleted, map[string]interface{}{
		"session_id": req.SessionID,
		"analysis":   analysis.Scores,
	})

	if err := s.Submit(ctx, analysis.Scores, conn); err != nil {
		s.metrics.AnalysisFailed(ctx, req.ProjectID, "submission")
		return nil, err
	}

	return &AnalysisResult{Analysis: analysis.Raw, Status: statusSubmitted}, nil
}

// Collect buffers the session, then analyzes it. Failures after buffering are
// logged and reported only through the returned status.
func (s *AnalysisService) Collect(ctx context.Context, req *AnalysisRequest) model.SurveyStatus {
	entry := &model.SessionEntry{
		ID:           uuid.NewString(),
		SessionID:    req.SessionID,
		ProjectID:    req.ProjectID,
		Session:      req.Session,
		ReceivedAtMS: s.now().UnixMilli(),
	}
	if err := s.sessions.Push(ctx, entry); err != nil {
		s.logger.Warn("failed to buffer session", zap.String("session_id", req.SessionID), zap.Error(err))
	}

	s.logger.Debug("session collected",
		zap.String("session_id", req.SessionID),
		zap.String("project_id", req.ProjectID),
		zap.Int("bytes", len(req.Session)))

	result, err := s.Analyze(ctx, &AnalysisRequest{
		ProjectID: req.ProjectID,
		SessionID: req.SessionID,
		Session:   req.Session,
	})
	if err != nil {
		s.logger.Error("analysis failed",
			zap.String("session_id", req.SessionID),
			zap.String("project_id", req.ProjectID),
			zap.Error(err))
		return statusSetupRequired
	}
	return result.Status
}

// Submit synthesizes answers and posts them to the config's collector.
// Nothing is sent when no token is available or no question was answered.
func (s *AnalysisService) Submit(ctx context.Context, scores *model.IntentScores, conn *model.ProjectConnection) error {
	token := conn.AccessToken
	if token == "" {
		token = s.fallbackToken
	}
	if token == "" {
		s.logger.Debug("submission skipped: no access token", zap.String("project_id", conn.ProjectID))
		return nil
	}

	cfg := &conn.Config
	if cfg.SurveyID == "" || cfg.CollectorID == "" || cfg.PageID == "" {
		return fmt.Errorf("survey config missing required IDs")
	}

	result, err := survey.BuildPages(scores, cfg)
	if err != nil {
		return fmt.Errorf("failed to build survey response: %w", err)
	}
	s.metrics.QuestionsSynthesized(ctx, conn.ProjectID, result.Answered, result.Omitted)
	if len(result.Pages) == 0 {
		s.logger.Debug("submission skipped: no answers", zap.String("project_id", conn.ProjectID))
		return nil
	}

	payload := model.NewSubmissionPayload(result.Pages)
	if err := s.sm.CreateResponse(ctx, token, cfg.CollectorID, payload); err != nil {
		return fmt.Errorf("failed to submit survey response: %w", err)
	}

	s.logger.Info("survey response submitted",
		zap.String("project_id", conn.ProjectID),
		zap.String("survey_id", cfg.SurveyID),
		zap.Int("answered", result.Answered),
		zap.Int("omitted", result.Omitted))
	s.metrics.ResponseSubmitted(ctx, conn.ProjectID)
	s.publisher.Publish(conn.ProjectID, EventResponseSubmitted, map[string]interface{}{
		"survey_id":    cfg.SurveyID,
		"collector_id": cfg.CollectorID,
		"answered":     result.Answered,
		"omitted":      result.Omitted,
	})
	return nil
}

// RecentSessions returns buffered sessions, newest first
func (s *AnalysisService) RecentSessions(ctx context.Context, limit int) ([]model.SessionEntry, error) {
	return s.sessions.Recent(ctx, limit)
}
