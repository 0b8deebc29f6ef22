package repository

import (
	"context"
	"sync"

	"invisinsights/internal/model"
)

// ProjectRepo stores the survey connection of each project
type ProjectRepo interface {
	Save(ctx context.Context, conn *model.ProjectConnection) error
	// Get returns nil, nil when the project has no connection
	Get(ctx context.Context, projectID string) (*model.ProjectConnection, error)
}

type memoryProjectRepo struct {
	mu    sync.RWMutex
	conns map[string]model.ProjectConnection
}

// NewMemoryProjectRepo keeps connections for the lifetime of the process
func NewMemoryProjectRepo() ProjectRepo {
	return &memoryProjectRepo{conns: make(map[string]model.ProjectConnection)}
}

func (r *memoryProjectRepo) Save(ctx context.Context, conn *model.ProjectConnection) error {
	stored := *conn
	stored.Config = conn.Config.Clone()

	r.mu.Lock()
	r.conns[conn.ProjectID] = stored
	r.mu.Unlock()
	return nil
}

func (r *memoryProjectRepo) Get(ctx context.Context, projectID string) (*model.ProjectConnection, error) {
	r.mu.RLock()
	stored, ok := r.conns[projectID]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	stored.Config = stored.Config.Clone()
	return &stored, nil
}
