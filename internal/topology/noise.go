package topology

import (
	"fmt"

	"mapbench/internal/model"
)

// PfeilsNoiseBuilder builds the recurrent noise network of Pfeil et al. (2016):
// every neuron receives input from K distinct other neurons.
type PfeilsNoiseBuilder struct{}

func (PfeilsNoiseBuilder) Name() string  { return "pfeils_noise" }
func (PfeilsNoiseBuilder) Model() string { return "pfeils_noise_network" }

func (PfeilsNoiseBuilder) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "N", Kind: KindInt, Default: "500", Usage: "number of neurons"},
		{Name: "K", Kind: KindInt, Default: "20", Usage: "presynaptic partners per neuron"},
	}
}

func (PfeilsNoiseBuilder) read(p Params) (n, k int, err error) {
	r := &paramReader{params: p}
	n, k = r.Int("N"), r.Int("K")
	if err := r.Err(); err != nil {
		return 0, 0, err
	}
	if n <= 0 || k < 0 || k >= n {
		return 0, 0, fmt.Errorf("need N > 0 and 0 <= K < N, got N=%d K=%d", n, k)
	}
	return n, k, nil
}

func (b PfeilsNoiseBuilder) Task(p Params) (string, error) {
	n, k, err := b.read(p)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("N%d_K%d", n, k), nil
}

func (b PfeilsNoiseBuilder) Build(p Params) (model.Network, error) {
	n, k, err := b.read(p)
	if err != nil {
		return model.Network{}, err
	}

	net := model.Network{Name: b.Model()}
	if err := net.AddPopulation(model.Population{Label: "neurons", Size: n, NeuronModel: model.NeuronEIFCondExpIsfaIsta}); err != nil {
		return model.Network{}, err
	}
	err = net.AddProjection(model.Projection{
		Source:   "neurons",
		Target:   "neurons",
		Receptor: model.ReceptorExcitatory,
		Connector: model.Connector{
			Kind:   model.ConnectorFixedNumberPre,
			Number: k,
			Weight: 1,
			Seed:   42,
		},
	})
	return net, err
}
