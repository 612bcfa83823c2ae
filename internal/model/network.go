package model

import "fmt"

// Network is a declarative topology: populations plus the projections between
// them. It is what gets handed to the mapping stage.
type Network struct {
	Name        string       `json:"name"`
	Populations []Population `json:"populations"`
	Projections []Projection `json:"projections"`

	index map[string]int
}

func (n *Network) AddPopulation(p Population) error {
	if p.Label == "" {
		return fmt.Errorf("population label is required")
	}
	if p.Size < 0 {
		return fmt.Errorf("population %s: negative size %d", p.Label, p.Size)
	}
	if _, ok := n.Population(p.Label); ok {
		return fmt.Errorf("duplicate population label: %s", p.Label)
	}
	if n.index == nil {
		n.reindex()
	}
	n.index[p.Label] = len(n.Populations)
	n.Populations = append(n.Populations, p)
	return nil
}

func (n *Network) AddProjection(p Projection) error {
	if _, ok := n.Population(p.Source); !ok {
		return fmt.Errorf("projection %s: unknown source population %s", p.Label, p.Source)
	}
	if _, ok := n.Population(p.Target); !ok {
		return fmt.Errorf("projection %s: unknown target population %s", p.Label, p.Target)
	}
	if p.Label == "" {
		p.Label = p.Source + "-" + p.Target
	}
	n.Projections = append(n.Projections, p)
	return nil
}

func (n *Network) Population(label string) (Population, bool) {
	if n.index == nil || len(n.index) != len(n.Populations) {
		n.reindex()
	}
	i, ok := n.index[label]
	if ok && (i >= len(n.Populations) || n.Populations[i].Label != label) {
		n.reindex()
		i, ok = n.index[label]
	}
	if !ok {
		return Population{}, false
	}
	return n.Populations[i], true
}

func (n *Network) reindex() {
	n.index = make(map[string]int, len(n.Populations))
	for i, p := range n.Populations {
		n.index[p.Label] = i
	}
}

// Neurons returns the total neuron count over all populations.
func (n *Network) Neurons() int {
	total := 0
	for _, p := range n.Populations {
		total += p.Size
	}
	return total
}
