package topology

import (
	"fmt"

	"mapbench/internal/model"
)

// IsingBuilder builds a periodic lattice of single-neuron populations driven
// by a recurrent noise network and a pool of bias neurons.
type IsingBuilder struct{}

func (IsingBuilder) Name() string  { return "ising" }
func (IsingBuilder) Model() string { return "ising_network" }

// MapperDefaults places Ising lattices on wafer 33.
func (IsingBuilder) MapperDefaults() map[string]string {
	return map[string]string{"wafer": "33"}
}

func (IsingBuilder) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "linearsize", Kind: KindInt, Default: "5", Usage: "edge length of the lattice"},
		{Name: "dimension", Kind: KindInt, Default: "2", Usage: "lattice dimension"},
		{Name: "kbiasneurons", Kind: KindInt, Default: "1", Usage: "bias neurons projecting onto each lattice neuron"},
		{Name: "nbiasneurons", Kind: KindInt, Default: "1", Usage: "total bias neurons"},
		{Name: "nsources", Kind: KindInt, Default: "500", Usage: "size of the noise network"},
		{Name: "ksources", Kind: KindInt, Default: "5", Usage: "excitatory and inhibitory noise sources per lattice neuron"},
		{Name: "sourcerate", Kind: KindFloat, Default: "20.0", Usage: "noise source rate in Hz"},
		{Name: "duplicates", Kind: KindInt, Default: "1", Usage: "projections between neighbouring lattice neurons"},
	}
}

// isingNoiseInDegree is the recurrent in-degree inside the noise network.
const isingNoiseInDegree = 30

type isingConfig struct {
	linearSize int
	dimension  int
	kBias      int
	nBias      int
	nSources   int
	kSources   int
	sourceRate float64
	duplicates int
}

func (IsingBuilder) read(p Params) (isingConfig, error) {
	r := &paramReader{params: p}
	cfg := isingConfig{
		linearSize: r.Int("linearsize"),
		dimension:  r.Int("dimension"),
		kBias:      r.Int("kbiasneurons"),
		nBias:      r.Int("nbiasneurons"),
		nSources:   r.Int("nsources"),
		kSources:   r.Int("ksources"),
		sourceRate: r.Float("sourcerate"),
		duplicates: r.Int("duplicates"),
	}
	if err := r.Err(); err != nil {
		return isingConfig{}, err
	}
	switch {
	case cfg.linearSize <= 0 || cfg.dimension <= 0:
		return isingConfig{}, fmt.Errorf("linearsize and dimension must be > 0, got %d and %d", cfg.linearSize, cfg.dimension)
	case cfg.nSources <= isingNoiseInDegree:
		return isingConfig{}, fmt.Errorf("nsources must exceed the noise in-degree %d, got %d", isingNoiseInDegree, cfg.nSources)
	case cfg.kSources < 0 || cfg.kSources > cfg.nSources:
		return isingConfig{}, fmt.Errorf("ksources must be in [0, nsources], got %d", cfg.kSources)
	case cfg.nBias <= 0 || cfg.kBias < 0 || cfg.kBias > cfg.nBias:
		return isingConfig{}, fmt.Errorf("need nbiasneurons > 0 and 0 <= kbiasneurons <= nbiasneurons, got %d and %d", cfg.nBias, cfg.kBias)
	case cfg.duplicates < 0:
		return isingConfig{}, fmt.Errorf("duplicates must be >= 0, got %d", cfg.duplicates)
	}
	return cfg, nil
}

func (b IsingBuilder) Task(p Params) (string, error) {
	cfg, err := b.read(p)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("l%d_d%d_nb%d_b%d_n%d_k%d_p%d",
		cfg.linearSize, cfg.dimension, cfg.nBias, cfg.kBias, cfg.nSources, cfg.kSources, cfg.duplicates), nil
}

func (b IsingBuilder) Build(p Params) (model.Network, error) {
	cfg, err := b.read(p)
	if err != nil {
		return model.Network{}, err
	}
	sites := intPow(cfg.linearSize, cfg.dimension)

	net := model.Network{Name: b.Model()}
	for site := 0; site < sites; site++ {
		if err := net.AddPopulation(model.Population{Label: siteLabel(site), Size: 1, NeuronModel: model.NeuronIFCondExp}); err != nil {
			return model.Network{}, err
		}
	}
	if err := net.AddPopulation(model.Population{
		Label:       "noise",
		Size:        cfg.nSources,
		NeuronModel: model.NeuronIFCondExp,
		Parameters:  map[string]float64{"rate": cfg.sourceRate},
	}); err != nil {
		return model.Network{}, err
	}
	if err := net.AddPopulation(model.Population{Label: "bias", Size: cfg.nBias, NeuronModel: model.NeuronIFCondExp}); err != nil {
		return model.Network{}, err
	}

	if err := net.AddProjection(model.Projection{
		Source:    "noise",
		Target:    "noise",
		Receptor:  model.ReceptorInhibitory,
		Connector: model.Connector{Kind: model.ConnectorFixedNumberPre, Number: isingNoiseInDegree, Weight: 0.3},
	}); err != nil {
		return model.Network{}, err
	}

	for site := 0; site < sites; site++ {
		target := siteLabel(site)
		inputs := []model.Projection{
			{
				Label:     projectionLabel("noise", target, model.ReceptorExcitatory),
				Source:    "noise",
				Receptor:  model.ReceptorExcitatory,
				Connector: model.Connector{Kind: model.ConnectorFixedNumberPre, Number: cfg.kSources, Weight: 0.3, Seed: siteSeed(42, site)},
			},
			{
				Label:     projectionLabel("noise", target, model.ReceptorInhibitory),
				Source:    "noise",
				Receptor:  model.ReceptorInhibitory,
				Connector: model.Connector{Kind: model.ConnectorFixedNumberPre, Number: cfg.kSources, Weight: 0.3, Seed: siteSeed(43, site)},
			},
			{
				Label:     projectionLabel("bias", target, model.ReceptorInhibitory),
				Source:    "bias",
				Receptor:  model.ReceptorInhibitory,
				Connector: model.Connector{Kind: model.ConnectorFixedNumberPre, Number: cfg.kBias, Weight: 0.4, Seed: siteSeed(44, site)},
			},
		}
		for _, proj := range inputs {
			proj.Target = target
			if err := net.AddProjection(proj); err != nil {
				return model.Network{}, err
			}
		}
	}

	// Small lattices reach the same neighbour along several offsets, so labels
	// carry a per-pair counter.
	seen := make(map[[2]int]int)
	for _, link := range latticeNeighbours(cfg.linearSize, cfg.dimension) {
		source, target := siteLabel(link[0]), siteLabel(link[1])
		for dup := 0; dup < cfg.duplicates; dup++ {
			label := source + "-" + target
			if n := seen[link]; n > 0 {
				label = fmt.Sprintf("%s#%d", label, n)
			}
			seen[link]++
			if err := net.AddProjection(model.Projection{
				Label:     label,
				Source:    source,
				Target:    target,
				Receptor:  model.ReceptorExcitatory,
				Connector: model.Connector{Kind: model.ConnectorAllToAll, AllowSelf: true, Weight: 1},
			}); err != nil {
				return model.Network{}, err
			}
		}
	}
	return net, nil
}

// latticeNeighbours lists (site, neighbour) pairs of a periodic lattice: for
// every axis d a site links to the sites at offset +L^d and -L^d, wrapping
// within its enclosing block of L^(d+1) sites.
func latticeNeighbours(linearSize, dimension int) [][2]int {
	sites := intPow(linearSize, dimension)
	links := make([][2]int, 0, sites*2*dimension)
	for nid := 0; nid < sites; nid++ {
		for d := 0; d < dimension; d++ {
			stride := intPow(linearSize, d)
			block := stride * linearSize
			for _, offset := range []int{stride, -stride} {
				neighbour := mod(nid+offset, block) + (nid/block)*block
				links = append(links, [2]int{nid, neighbour})
			}
		}
	}
	return links
}

func siteLabel(site int) string {
	return fmt.Sprintf("site-%d", site)
}

// siteSeed derives a per-site seed so lattice sites do not share the same
// presynaptic draw.
func siteSeed(base int64, site int) int64 {
	return base<<32 | int64(site)
}

func intPow(base, exp int) int {
	out := 1
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}

func mod(a, m int) int {
	return ((a % m) + m) % m
}
