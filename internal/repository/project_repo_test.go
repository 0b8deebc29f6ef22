package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invisinsights/internal/model"
)

func sampleConnection(projectID string) *model.ProjectConnection {
	return &model.ProjectConnection{
		ProjectID: projectID,
		Config: model.SurveyConfig{
			SurveyID:    "s1",
			CollectorID: "c1",
			PageID:      "p1",
			Questions: []model.QuestionSchema{{
				QuestionID: "q1",
				Type:       model.QuestionTypeScale,
				Intent:     model.IntentEaseOfUse,
				ScaleMin:   model.Float(1),
				ScaleMax:   model.Float(3),
				ChoiceIDs:  map[string]string{"1": "a", "2": "b", "3": "c"},
			}},
		},
		AccessToken: "tok",
		ConnectedAt: time.Unix(1700000000, 0).UTC(),
	}
}

func TestMemoryProjectRepo_SaveGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProjectRepo()

	got, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	conn := sampleConnection("proj-1")
	require.NoError(t, repo.Save(ctx, conn))

	got, err = repo.Get(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, conn, got)
}

func TestMemoryProjectRepo_ReplacesAndIsolates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProjectRepo()

	conn := sampleConnection("proj-1")
	require.NoError(t, repo.Save(ctx, conn))
	conn.Config.Questions[0].ChoiceIDs["1"] = "mutated"

	got, err := repo.Get(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Config.Questions[0].ChoiceIDs["1"])

	got.Config.Questions[0].ChoiceIDs["2"] = "mutated"
	again, err := repo.Get(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "b", again.Config.Questions[0].ChoiceIDs["2"])

	replacement := sampleConnection("proj-1")
	replacement.AccessToken = "tok-2"
	require.NoError(t, repo.Save(ctx, replacement))

	got, err = repo.Get(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got.AccessToken)
}

func TestMemoryProjectRepo_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProjectRepo()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = repo.Save(ctx, sampleConnection("proj"))
		}()
		go func() {
			defer wg.Done()
			_, _ = repo.Get(ctx, "proj")
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, "proj")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
