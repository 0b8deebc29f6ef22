package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"invisinsights/internal/model"
	"invisinsights/internal/repository"
	"invisinsights/internal/survey"
	"invisinsights/internal/telemetry"
)

var (
	ErrSurveyNotFound = errors.New("survey_id not found for token")
	ErrNoCollectors   = errors.New("no collectors found for survey")
	ErrMappingFailed  = errors.New("survey_mapping_failed")
)

// ConnectService binds SurveyMonkey surveys to projects
type ConnectService struct {
	sm        SurveyPlatform
	repo      repository.ProjectRepo
	mapper    *survey.Mapper
	publisher Publisher
	metrics   telemetry.Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewConnectService creates a new connect service
func NewConnectService(sm SurveyPlatform, repo repository.ProjectRepo, mapper *survey.Mapper, logger *zap.Logger) *ConnectService {
	if mapper == nil {
		mapper = survey.NewMapper(nil)
	}
	return &ConnectService{
		sm:        sm,
		repo:      repo,
		mapper:    mapper,
		publisher: nopPublisher{},
		metrics:   telemetry.Noop(),
		logger:    logger,
		now:       time.Now,
	}
}

// SetPublisher injects the live event publisher
func (s *ConnectService) SetPublisher(p Publisher) {
	s.publisher = p
}

// SetRecorder injects the metrics recorder
func (s *ConnectService) SetRecorder(r telemetry.Recorder) {
	s.metrics = r
}

// ListSurveys lists the surveys available to token
func (s *ConnectService) ListSurveys(ctx context.Context, token string) ([]model.SMSurveySummary, error) {
	return s.sm.ListSurveys(ctx, token)
}

// Connect maps surveyID into a config and stores it for projectID
func (s *ConnectService) Connect(ctx context.Context, projectID, token, surveyID string) (*model.ProjectConnection, error) {
	surveys, err := s.sm.ListSurveys(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	if !containsSurvey(surveys, surveyID) {
		return nil, ErrSurveyNotFound
	}

	var (
		details    *model.SMSurveyDetails
		collectors []model.SMCollectorSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = s.sm.GetSurveyDetails(gctx, token, surveyID)
		return err
	})
	g.Go(func() error {
		var err error
		collectors, err = s.sm.ListCollectors(gctx, token, surveyID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch survey %s: %w", surveyID, err)
	}
	if len(collectors) == 0 {
		return nil, ErrNoCollectors
	}

	cfg, err := s.mapper.AutoMap(surveyID, collectors[0].ID, details)
	if errors.Is(err, survey.ErrValidation) {
		s.logger.Warn("survey mapping rejected",
			zap.String("project_id", projectID),
			zap.String("survey_id", surveyID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrMappingFailed, err)
	}
	if err != nil {
		return nil, err
	}

	conn := &model.ProjectConnection{
		ProjectID:   projectID,
		Config:      cfg,
		AccessToken: token,
		ConnectedAt: s.now().UTC(),
	}
	if err := s.repo.Save(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to store connection: %w", err)
	}

	s.logger.Info("survey connected",
		zap.String("project_id", projectID),
		zap.String("survey_id", surveyID),
		zap.String("collector_id", cfg.CollectorID),
		zap.Int("questions", len(cfg.Questions)))
	s.metrics.SurveyConnected(ctx, projectID)
	s.publisher.Publish(projectID, EventSurveyConnected, map[string]interface{}{
		"survey_id":    cfg.SurveyID,
		"collector_id": cfg.CollectorID,
		"questions":    len(cfg.Questions),
	})

	return conn, nil
}

// Status reports whether projectID has a connection
func (s *ConnectService) Status(ctx context.Context, projectID string) (*model.ProjectStatus, error) {
	conn, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if conn != nil {
		return &model.ProjectStatus{Connected: true}, nil
	}
	setupURL := SetupURL(projectID)
	return &model.ProjectStatus{Connected: false, SetupURL: &setupURL}, nil
}

// SetupURL is the relative path of the connect page for projectID
func SetupURL(projectID string) string {
	return "/connect-surveymonkey?project_id=" + strings.ReplaceAll(url.QueryEscape(projectID), "+", "%20")
}

func containsSurvey(surveys []model.SMSurveySummary, surveyID string) bool {
	for _, sv := range surveys {
		if sv.ID == surveyID {
			return true
		}
	}
	return false
}
