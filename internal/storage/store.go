package storage

import (
	"context"

	"mapbench/internal/model"
)

// Store persists experiment results and sweep records.
type Store interface {
	Init(ctx context.Context) error
	SaveResult(ctx context.Context, result model.Result) error
	GetResult(ctx context.Context, id string) (model.Result, bool, error)
	// ListResults returns results ordered by timestamp, then ID. An empty
	// modelName lists every model.
	ListResults(ctx context.Context, modelName string) ([]model.Result, error)
	SaveSweep(ctx context.Context, sweep model.Sweep) error
	GetSweep(ctx context.Context, id string) (model.Sweep, bool, error)
}
