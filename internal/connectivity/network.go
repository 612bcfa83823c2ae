package connectivity

import (
	"fmt"

	"mapbench/internal/model"
)

// NetworkSynapses counts the synapses of every projection in net, keyed by
// projection label, and their total.
func NetworkSynapses(net model.Network) (map[string]int, int, error) {
	perProjection := make(map[string]int, len(net.Projections))
	total := 0
	for _, proj := range net.Projections {
		source, ok := net.Population(proj.Source)
		if !ok {
			return nil, 0, fmt.Errorf("%w: projection %s: unknown source %s", ErrInvalidInput, proj.Label, proj.Source)
		}
		target, ok := net.Population(proj.Target)
		if !ok {
			return nil, 0, fmt.Errorf("%w: projection %s: unknown target %s", ErrInvalidInput, proj.Label, proj.Target)
		}
		n, err := Count(proj.Connector, source.Size, target.Size, proj.Recurrent())
		if err != nil {
			return nil, 0, fmt.Errorf("projection %s: %w", proj.Label, err)
		}
		perProjection[proj.Label] += n
		total += n
	}
	return perProjection, total, nil
}
