package topology

import (
	"fmt"

	"mapbench/internal/model"
)

// Boltzmann machine skeletons. Every connection exists once excitatory and
// once inhibitory so that the sign can change during training; noise sources
// are not part of the skeleton.

// FullyVisibleBMBuilder connects every neuron of one population to every other.
type FullyVisibleBMBuilder struct{}

func (FullyVisibleBMBuilder) Name() string  { return "fully_visible_bm" }
func (FullyVisibleBMBuilder) Model() string { return "fullyVisibleBm_network" }

func (FullyVisibleBMBuilder) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "N", Kind: KindInt, Default: "5000", Usage: "number of neurons"},
	}
}

func (FullyVisibleBMBuilder) Task(p Params) (string, error) {
	r := &paramReader{params: p}
	n := r.Int("N")
	if err := r.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("N%d", n), nil
}

func (b FullyVisibleBMBuilder) Build(p Params) (model.Network, error) {
	r := &paramReader{params: p}
	n := r.Int("N")
	if err := r.Err(); err != nil {
		return model.Network{}, err
	}
	if n <= 0 {
		return model.Network{}, fmt.Errorf("N must be > 0, got %d", n)
	}

	net := model.Network{Name: b.Model()}
	if err := net.AddPopulation(model.Population{Label: "neurons", Size: n, NeuronModel: model.NeuronEIFCondExpIsfaIsta}); err != nil {
		return model.Network{}, err
	}
	if err := addSignedAllToAll(&net, "neurons", "neurons"); err != nil {
		return model.Network{}, err
	}
	return net, nil
}

// RBMBuilder connects a visible and a hidden layer in both directions.
type RBMBuilder struct{}

func (RBMBuilder) Name() string  { return "rbm" }
func (RBMBuilder) Model() string { return "rbm_network" }

func (RBMBuilder) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "N", Kind: KindInt, Default: "5000", Usage: "number of visible neurons"},
		{Name: "Nhidden", Kind: KindInt, Default: "0", Usage: "number of hidden neurons (0 means equal to N)"},
	}
}

func (RBMBuilder) read(p Params) (visible, hidden int, err error) {
	r := &paramReader{params: p}
	visible, hidden = r.Int("N"), r.Int("Nhidden")
	if err := r.Err(); err != nil {
		return 0, 0, err
	}
	if hidden == 0 {
		hidden = visible
	}
	if visible <= 0 || hidden < 0 {
		return 0, 0, fmt.Errorf("N must be > 0 and Nhidden >= 0, got %d and %d", visible, hidden)
	}
	return visible, hidden, nil
}

func (b RBMBuilder) Task(p Params) (string, error) {
	visible, hidden, err := b.read(p)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Nvisible%d_Nhidden%d", visible, hidden), nil
}

func (b RBMBuilder) Build(p Params) (model.Network, error) {
	visible, hidden, err := b.read(p)
	if err != nil {
		return model.Network{}, err
	}

	net := model.Network{Name: b.Model()}
	if err := net.AddPopulation(model.Population{Label: "visible", Size: visible, NeuronModel: model.NeuronEIFCondExpIsfaIsta}); err != nil {
		return model.Network{}, err
	}
	if err := net.AddPopulation(model.Population{Label: "hidden", Size: hidden, NeuronModel: model.NeuronEIFCondExpIsfaIsta}); err != nil {
		return model.Network{}, err
	}
	if err := addSignedAllToAll(&net, "visible", "hidden"); err != nil {
		return model.Network{}, err
	}
	if err := addSignedAllToAll(&net, "hidden", "visible"); err != nil {
		return model.Network{}, err
	}
	return net, nil
}

func addSignedAllToAll(net *model.Network, source, target string) error {
	for _, receptor := range []string{model.ReceptorExcitatory, model.ReceptorInhibitory} {
		if err := net.AddProjection(model.Projection{
			Label:     projectionLabel(source, target, receptor),
			Source:    source,
			Target:    target,
			Receptor:  receptor,
			Connector: model.Connector{Kind: model.ConnectorAllToAll, Weight: 0.003},
		}); err != nil {
			return err
		}
	}
	return nil
}
