package topology

import (
	"fmt"

	"mapbench/internal/model"
)

// FeedforwardBuilder stacks equally sized layers, each wired to the next with
// a fixed connection probability.
type FeedforwardBuilder struct{}

func (FeedforwardBuilder) Name() string  { return "feedforward" }
func (FeedforwardBuilder) Model() string { return "feedforward_layered_network" }

func (FeedforwardBuilder) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "num_layers", Kind: KindInt, Default: "2", Usage: "number of layers"},
		{Name: "conn_prob", Kind: KindFloat, Default: "1.0", Usage: "connection probability between consecutive layers"},
		{Name: "neurons_per_layer", Kind: KindInt, Default: "200", Usage: "neurons in each layer"},
	}
}

type feedforwardConfig struct {
	layers   int
	prob     float64
	perLayer int
}

func (FeedforwardBuilder) read(p Params) (feedforwardConfig, error) {
	r := &paramReader{params: p}
	cfg := feedforwardConfig{
		layers:   r.Int("num_layers"),
		prob:     r.Float("conn_prob"),
		perLayer: r.Int("neurons_per_layer"),
	}
	if err := r.Err(); err != nil {
		return feedforwardConfig{}, err
	}
	if cfg.layers <= 0 || cfg.perLayer <= 0 {
		return feedforwardConfig{}, fmt.Errorf("num_layers and neurons_per_layer must be > 0, got %d and %d", cfg.layers, cfg.perLayer)
	}
	if cfg.prob < 0 || cfg.prob > 1 {
		return feedforwardConfig{}, fmt.Errorf("conn_prob must be in [0,1], got %v", cfg.prob)
	}
	return cfg, nil
}

func (b FeedforwardBuilder) Task(p Params) (string, error) {
	cfg, err := b.read(p)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("num_layers%d_neurons_per_layer%d_conn_prob%s", cfg.layers, cfg.perLayer, formatFloat(cfg.prob)), nil
}

func (b FeedforwardBuilder) Build(p Params) (model.Network, error) {
	cfg, err := b.read(p)
	if err != nil {
		return model.Network{}, err
	}

	net := model.Network{Name: b.Model()}
	for i := 0; i < cfg.layers; i++ {
		if err := net.AddPopulation(model.Population{
			Label:       fmt.Sprintf("layer-%d", i),
			Size:        cfg.perLayer,
			NeuronModel: model.NeuronEIFCondExpIsfaIsta,
		}); err != nil {
			return model.Network{}, err
		}
	}
	for i := 1; i < cfg.layers; i++ {
		if err := net.AddProjection(model.Projection{
			Source:   fmt.Sprintf("layer-%d", i-1),
			Target:   fmt.Sprintf("layer-%d", i),
			Receptor: model.ReceptorExcitatory,
			Connector: model.Connector{
				Kind:        model.ConnectorFixedProbability,
				Probability: cfg.prob,
				Weight:      0.003,
				Seed:        42,
			},
		}); err != nil {
			return model.Network{}, err
		}
	}
	return net, nil
}
