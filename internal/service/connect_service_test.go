package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"invisinsights/internal/model"
	"invisinsights/internal/repository"
	"invisinsights/internal/survey"
)

func newConnectFixture() (*ConnectService, *fakePlatform, repository.ProjectRepo, *recordingPublisher) {
	sm := &fakePlatform{
		surveys:    []model.SMSurveySummary{{ID: "s0"}, {ID: "s1", Title: "Checkout"}},
		details:    twoQuestionDetails(),
		collectors: []model.SMCollectorSummary{{ID: "col1"}, {ID: "col2"}},
	}
	repo := repository.NewMemoryProjectRepo()
	pub := &recordingPublisher{}
	svc := NewConnectService(sm, repo, nil, zap.NewNop())
	svc.SetPublisher(pub)
	return svc, sm, repo, pub
}

func TestConnect_HappyPath(t *testing.T) {
	ctx := context.Background()
	svc, _, repo, pub := newConnectFixture()

	conn, err := svc.Connect(ctx, "proj-1", "tok", "s1")
	require.NoError(t, err)
	assert.Equal(t, "col1", conn.Config.CollectorID)
	assert.Equal(t, "p1", conn.Config.PageID)
	require.Len(t, conn.Config.Questions, 2)
	assert.Equal(t, model.IntentOverallSatisfaction, conn.Config.Questions[1].Intent)

	stored, err := repo.Get(ctx, "proj-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "tok", stored.AccessToken)
	assert.Equal(t, []string{EventSurveyConnected}, pub.types())

	status, err := svc.Status(ctx, "proj-1")
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Nil(t, status.SetupURL)
}

func TestConnect_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("survey not listed", func(t *testing.T) {
		svc, _, _, _ := newConnectFixture()
		_, err := svc.Connect(ctx, "p", "tok", "missing")
		assert.ErrorIs(t, err, ErrSurveyNotFound)
	})

	t.Run("no collectors", func(t *testing.T) {
		svc, sm, _, _ := newConnectFixture()
		sm.collectors = nil
		_, err := svc.Connect(ctx, "p", "tok", "s1")
		assert.ErrorIs(t, err, ErrNoCollectors)
	})

	t.Run("nothing mappable", func(t *testing.T) {
		svc, sm, repo, _ := newConnectFixture()
		sm.details = &model.SMSurveyDetails{Pages: []model.SMPageDetail{{ID: "p1"}}}
		_, err := svc.Connect(ctx, "p", "tok", "s1")
		assert.ErrorIs(t, err, ErrMappingFailed)

		stored, _ := repo.Get(ctx, "p")
		assert.Nil(t, stored)
	})

	t.Run("no pages is a hard failure", func(t *testing.T) {
		svc, sm, _, _ := newConnectFixture()
		sm.details = &model.SMSurveyDetails{}
		_, err := svc.Connect(ctx, "p", "tok", "s1")
		assert.ErrorIs(t, err, survey.ErrMapping)
		assert.False(t, errors.Is(err, ErrMappingFailed))
	})

	t.Run("upstream failure", func(t *testing.T) {
		svc, sm, _, _ := newConnectFixture()
		sm.detailsErr = &UpstreamError{Service: "SurveyMonkey", StatusCode: 500}
		_, err := svc.Connect(ctx, "p", "tok", "s1")
		var ue *UpstreamError
		assert.True(t, errors.As(err, &ue))
	})
}

func TestStatus_NotConnected(t *testing.T) {
	svc, _, _, _ := newConnectFixture()

	status, err := svc.Status(context.Background(), "my project&x=1")
	require.NoError(t, err)
	assert.False(t, status.Connected)
	require.NotNil(t, status.SetupURL)
	assert.Equal(t, "/connect-surveymonkey?project_id=my%20project%26x%3D1", *status.SetupURL)
}
