// Package mapper hands networks to a placement-and-routing engine and
// reports how many synapses survived.
package mapper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mapbench/internal/config"
	"mapbench/internal/model"
)

// ErrMappingFailed marks a mapping attempt the engine could not complete.
// Runs record it and carry on.
var ErrMappingFailed = errors.New("mapping failed")

type Mapper interface {
	Map(ctx context.Context, net model.Network, opts Options) (Stats, error)
}

// Stats are the engine's post-routing counters.
type Stats struct {
	Synapses           int                             `json:"synapses"`
	Neurons            int                             `json:"neurons"`
	SynapseLoss        int                             `json:"synapse_loss"`
	SynapseLossAfterL1 int                             `json:"synapse_loss_after_l1"`
	PerProjection      map[string]model.ProjectionLoss `json:"per_projection,omitempty"`
}

func (s Stats) validate() error {
	if s.Synapses < 0 || s.Neurons < 0 || s.SynapseLoss < 0 || s.SynapseLossAfterL1 < 0 {
		return fmt.Errorf("negative counter in %+v", s)
	}
	if s.SynapseLoss > s.Synapses {
		return fmt.Errorf("synapse loss %d exceeds synapses %d", s.SynapseLoss, s.Synapses)
	}
	return nil
}

// New builds the mapper selected by cfg.
func New(cfg config.MapperConfig, logger *slog.Logger) (Mapper, error) {
	switch cfg.Kind {
	case "", "lossless":
		return Lossless{}, nil
	case "exec":
		if cfg.Command == "" {
			return nil, fmt.Errorf("exec mapper requires a command")
		}
		return &Exec{
			Command: cfg.Command,
			Args:    append([]string(nil), cfg.Args...),
			Timeout: cfg.Timeout,
			Logger:  logger,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported mapper kind: %s", cfg.Kind)
	}
}

// Func adapts a plain function to the Mapper interface.
type Func func(ctx context.Context, net model.Network, opts Options) (Stats, error)

func (f Func) Map(ctx context.Context, net model.Network, opts Options) (Stats, error) {
	return f(ctx, net, opts)
}
