package mapper

import (
	"context"
	"fmt"

	"mapbench/internal/connectivity"
	"mapbench/internal/model"
)

// Lossless realizes every synapse. It stands in for the engine when only the
// network side of an experiment is under test.
type Lossless struct{}

func (Lossless) Map(ctx context.Context, net model.Network, _ Options) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	perProjection, total, err := connectivity.NetworkSynapses(net)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrMappingFailed, err)
	}
	stats := Stats{
		Synapses:      total,
		Neurons:       net.Neurons(),
		PerProjection: make(map[string]model.ProjectionLoss, len(perProjection)),
	}
	for label, n := range perProjection {
		stats.PerProjection[label] = model.ProjectionLoss{TotalSyns: n}
	}
	return stats, nil
}
