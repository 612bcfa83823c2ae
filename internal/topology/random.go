package topology

import (
	"fmt"

	"mapbench/internal/model"
)

// RandomBuilder builds a single population wired to itself with a fixed
// connection probability, self connections allowed.
type RandomBuilder struct{}

func (RandomBuilder) Name() string  { return "random" }
func (RandomBuilder) Model() string { return "random_network" }

func (RandomBuilder) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "N", Kind: KindInt, Default: "5000", Usage: "number of neurons"},
		{Name: "prob", Kind: KindFloat, Default: "0.1", Usage: "connection probability"},
	}
}

func (RandomBuilder) Task(p Params) (string, error) {
	r := &paramReader{params: p}
	n, prob := r.Int("N"), r.Float("prob")
	if err := r.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("N%d_p%s", n, formatFloat(prob)), nil
}

func (b RandomBuilder) Build(p Params) (model.Network, error) {
	r := &paramReader{params: p}
	n, prob := r.Int("N"), r.Float("prob")
	if err := r.Err(); err != nil {
		return model.Network{}, err
	}
	if n <= 0 {
		return model.Network{}, fmt.Errorf("N must be > 0, got %d", n)
	}
	if prob < 0 || prob > 1 {
		return model.Network{}, fmt.Errorf("prob must be in [0,1], got %v", prob)
	}

	net := model.Network{Name: b.Model()}
	if err := net.AddPopulation(model.Population{Label: "neurons", Size: n, NeuronModel: model.NeuronEIFCondExpIsfaIsta}); err != nil {
		return model.Network{}, err
	}
	err := net.AddProjection(model.Projection{
		Source:   "neurons",
		Target:   "neurons",
		Receptor: model.ReceptorExcitatory,
		Connector: model.Connector{
			Kind:        model.ConnectorFixedProbability,
			Probability: prob,
			AllowSelf:   true,
			Weight:      0.003,
			Seed:        42,
		},
	})
	return net, err
}
