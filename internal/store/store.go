// Package store persists classification run history. SQLite is the
// default embedded backend; Postgres is available for shared deployments.
package store

import (
	"context"

	"github.com/openclimate/urban-classifier/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus
	Limit  int
	Offset int
}

// Store defines the run-history persistence interface.
type Store interface {
	CreateRun(ctx context.Context, inputPath, rasterPath string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, result model.RunResult) error
	FailRun(ctx context.Context, runID string, reason string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
