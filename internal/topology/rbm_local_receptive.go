package topology

import (
	"fmt"

	"mapbench/internal/model"
)

// RBMLocalReceptiveBuilder builds an RBM whose hidden units each see a K x K
// patch of an N x N visible grid, plus a label layer fully connected to the
// hidden grid. Every grid site is its own single-neuron population.
type RBMLocalReceptiveBuilder struct{}

func (RBMLocalReceptiveBuilder) Name() string  { return "rbm_local_receptive" }
func (RBMLocalReceptiveBuilder) Model() string { return "rbm_local_receptive_network" }

func (RBMLocalReceptiveBuilder) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "N", Kind: KindInt, Default: "10", Usage: "edge length of the visible grid"},
		{Name: "K", Kind: KindInt, Default: "8", Usage: "edge length of a receptive field, at most N"},
		{Name: "L", Kind: KindInt, Default: "10", Usage: "number of label neurons"},
	}
}

func (RBMLocalReceptiveBuilder) read(p Params) (n, k, l int, err error) {
	r := &paramReader{params: p}
	n, k, l = r.Int("N"), r.Int("K"), r.Int("L")
	if err := r.Err(); err != nil {
		return 0, 0, 0, err
	}
	if k <= 0 || l <= 0 {
		return 0, 0, 0, fmt.Errorf("K and L must be > 0, got %d and %d", k, l)
	}
	if n < k {
		return 0, 0, 0, fmt.Errorf("visible edge N=%d must not be smaller than receptive field edge K=%d", n, k)
	}
	return n, k, l, nil
}

func (b RBMLocalReceptiveBuilder) Task(p Params) (string, error) {
	n, k, l, err := b.read(p)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("N%d_K%d_L%d", n, k, l), nil
}

func (b RBMLocalReceptiveBuilder) Build(p Params) (model.Network, error) {
	n, k, l, err := b.read(p)
	if err != nil {
		return model.Network{}, err
	}
	hidden := n - k + 1

	net := model.Network{Name: b.Model()}
	if err := net.AddPopulation(model.Population{Label: "label", Size: l, NeuronModel: model.NeuronEIFCondExpIsfaIsta}); err != nil {
		return model.Network{}, err
	}
	for _, grid := range []struct {
		prefix string
		edge   int
	}{{"visible", n}, {"hidden", hidden}} {
		for i := 0; i < grid.edge; i++ {
			for j := 0; j < grid.edge; j++ {
				if err := net.AddPopulation(model.Population{
					Label:       gridLabel(grid.prefix, i, j),
					Size:        1,
					NeuronModel: model.NeuronEIFCondExpIsfaIsta,
				}); err != nil {
					return model.Network{}, err
				}
			}
		}
	}

	for oi := 0; oi < hidden; oi++ {
		for oj := 0; oj < hidden; oj++ {
			h := gridLabel("hidden", oi, oj)
			for ii := 0; ii < k; ii++ {
				for ij := 0; ij < k; ij++ {
					v := gridLabel("visible", oi+ii, oj+ij)
					if err := addSignedAllToAll(&net, v, h); err != nil {
						return model.Network{}, err
					}
					if err := addSignedAllToAll(&net, h, v); err != nil {
						return model.Network{}, err
					}
				}
			}
			if err := addSignedAllToAll(&net, h, "label"); err != nil {
				return model.Network{}, err
			}
			if err := addSignedAllToAll(&net, "label", h); err != nil {
				return model.Network{}, err
			}
		}
	}
	return net, nil
}

func gridLabel(prefix string, i, j int) string {
	return fmt.Sprintf("%s-%d-%d", prefix, i, j)
}
