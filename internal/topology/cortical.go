package topology

import (
	"fmt"
	"strings"

	"mapbench/internal/connectivity"
	"mapbench/internal/model"
)

// CorticalBuilder builds the downscaled cortical column. In-degrees come from
// the full-scale sizes and are scaled with k_scale, so connection density is
// decoupled from the population downscaling.
type CorticalBuilder struct{}

func (CorticalBuilder) Name() string  { return "cortical" }
func (CorticalBuilder) Model() string { return "cortical_column_network" }

func (CorticalBuilder) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "scale", Kind: KindFloat, Default: "0.01", Usage: "population scale relative to the full model (about 80,000 neurons)"},
		{Name: "k_scale", Kind: KindFloat, Usage: "in-degree scale (defaults to scale)"},
		{Name: "seed", Kind: KindInt, Default: "0", Usage: "edge sampling seed"},
		{Name: "reseed_per_pair", Kind: KindBool, Default: "true", Usage: "restart the random stream for every population pair"},
		{Name: "external_input", Kind: KindBool, Default: "false", Usage: "add Poisson background populations"},
	}
}

func (b CorticalBuilder) Task(p Params) (string, error) {
	cfg, err := b.read(p)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("scale%s_k-scale%s_seed%d", formatFloat(cfg.scale), formatFloat(cfg.kScale), cfg.seed), nil
}

type corticalConfig struct {
	scale         float64
	kScale        float64
	seed          int64
	reseedPerPair bool
	external      bool
}

func (CorticalBuilder) read(p Params) (corticalConfig, error) {
	r := &paramReader{params: p}
	cfg := corticalConfig{
		scale:         r.Float("scale"),
		seed:          int64(r.Int("seed")),
		reseedPerPair: r.Bool("reseed_per_pair"),
		external:      r.Bool("external_input"),
	}
	cfg.kScale = cfg.scale
	if r.Has("k_scale") {
		cfg.kScale = r.Float("k_scale")
	}
	if err := r.Err(); err != nil {
		return corticalConfig{}, err
	}
	if cfg.scale <= 0 {
		return corticalConfig{}, fmt.Errorf("scale must be > 0, got %v", cfg.scale)
	}
	if cfg.kScale <= 0 {
		return corticalConfig{}, fmt.Errorf("k_scale must be > 0, got %v", cfg.kScale)
	}
	return cfg, nil
}

func (b CorticalBuilder) Build(p Params) (model.Network, error) {
	cfg, err := b.read(p)
	if err != nil {
		return model.Network{}, err
	}

	indegrees, err := connectivity.ComputeInDegree(CorticalConnProbs, CorticalSizes)
	if err != nil {
		return model.Network{}, fmt.Errorf("cortical in-degrees: %w", err)
	}

	net := model.Network{Name: b.Model()}
	for i, label := range CorticalLabels {
		if err := net.AddPopulation(model.Population{
			Label:       label,
			Size:        int(float64(CorticalSizes[i]) * cfg.scale),
			NeuronModel: model.NeuronIFCondExp,
		}); err != nil {
			return model.Network{}, err
		}
	}

	gen := connectivity.NewGenerator(cfg.seed, cfg.reseedPerPair)
	for t, targetLabel := range CorticalLabels {
		for s, sourceLabel := range CorticalLabels {
			source := net.Populations[s]
			target := net.Populations[t]

			edges, err := gen.Sample(source.Size, target.Size, indegrees.At(t, s), cfg.kScale)
			if err != nil {
				return model.Network{}, fmt.Errorf("projection %s-%s: %w", sourceLabel, targetLabel, err)
			}
			if len(edges) == 0 {
				continue
			}
			if err := net.AddProjection(model.Projection{
				Label:    sourceLabel + "-" + targetLabel,
				Source:   sourceLabel,
				Target:   targetLabel,
				Receptor: corticalReceptor(sourceLabel),
				Connector: model.Connector{
					Kind:   model.ConnectorFromList,
					Weight: connectivity.PlaceholderWeight,
					Delay:  connectivity.PlaceholderDelay,
					Edges:  edges,
				},
			}); err != nil {
				return model.Network{}, err
			}
		}
	}

	if cfg.external {
		if err := addCorticalExternalInput(&net, cfg.kScale); err != nil {
			return model.Network{}, err
		}
	}
	return net, nil
}

func corticalReceptor(sourceLabel string) string {
	if strings.HasSuffix(sourceLabel, "e") {
		return model.ReceptorExcitatory
	}
	return model.ReceptorInhibitory
}

// addCorticalExternalInput adds one Poisson source per neuron, firing at the
// background rate times the scaled external in-degree.
func addCorticalExternalInput(net *model.Network, kScale float64) error {
	for i, label := range CorticalLabels {
		target, _ := net.Population(label)
		extLabel := "ext-" + label
		if err := net.AddPopulation(model.Population{
			Label:       extLabel,
			Size:        target.Size,
			NeuronModel: model.NeuronSpikeSourcePoisson,
			Parameters: map[string]float64{
				"rate": CorticalBackgroundRate * float64(CorticalExternalInDegree[i]) * kScale,
			},
		}); err != nil {
			return err
		}
		if err := net.AddProjection(model.Projection{
			Label:     extLabel + "-" + label,
			Source:    extLabel,
			Target:    label,
			Receptor:  model.ReceptorExcitatory,
			Connector: model.Connector{Kind: model.ConnectorOneToOne, Weight: 1},
		}); err != nil {
			return err
		}
	}
	return nil
}
