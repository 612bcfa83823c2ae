package connectivity

import (
	"fmt"
	"math"
	"math/rand"

	"mapbench/internal/model"
)

// Count returns the number of synapses the connector realizes between a
// source and a target population. For fixed_probability it replays the same
// random sequence Materialize uses, so both agree.
func Count(c model.Connector, sourceSize, targetSize int, recurrent bool) (int, error) {
	if err := checkSizes(c, sourceSize, targetSize, recurrent); err != nil {
		return 0, err
	}
	excludeSelf := recurrent && !c.AllowSelf

	switch c.Kind {
	case model.ConnectorFromList:
		return len(c.Edges), nil
	case model.ConnectorAllToAll:
		total := sourceSize * targetSize
		if excludeSelf {
			total -= min(sourceSize, targetSize)
		}
		return total, nil
	case model.ConnectorOneToOne:
		return sourceSize, nil
	case model.ConnectorFixedNumberPre:
		return c.Number * targetSize, nil
	case model.ConnectorFixedProbability:
		total := 0
		walkFixedProbability(c, sourceSize, targetSize, excludeSelf, func(int, int) { total++ })
		return total, nil
	default:
		return 0, fmt.Errorf("%w: unsupported connector kind %q", ErrInvalidInput, c.Kind)
	}
}

// Materialize expands the connector into an explicit edge list.
func Materialize(c model.Connector, sourceSize, targetSize int, recurrent bool) ([]model.Edge, error) {
	if err := checkSizes(c, sourceSize, targetSize, recurrent); err != nil {
		return nil, err
	}
	excludeSelf := recurrent && !c.AllowSelf

	var edges []model.Edge
	emit := func(s, t int) {
		edges = append(edges, model.Edge{Source: s, Target: t, Weight: c.Weight, Delay: c.Delay})
	}

	switch c.Kind {
	case model.ConnectorFromList:
		return append([]model.Edge(nil), c.Edges...), nil
	case model.ConnectorAllToAll:
		edges = make([]model.Edge, 0, sourceSize*targetSize)
		for s := 0; s < sourceSize; s++ {
			for t := 0; t < targetSize; t++ {
				if excludeSelf && s == t {
					continue
				}
				emit(s, t)
			}
		}
	case model.ConnectorOneToOne:
		edges = make([]model.Edge, 0, sourceSize)
		for i := 0; i < sourceSize; i++ {
			emit(i, i)
		}
	case model.ConnectorFixedProbability:
		walkFixedProbability(c, sourceSize, targetSize, excludeSelf, emit)
	case model.ConnectorFixedNumberPre:
		edges = make([]model.Edge, 0, c.Number*targetSize)
		walkFixedNumberPre(c, sourceSize, targetSize, excludeSelf, emit)
	default:
		return nil, fmt.Errorf("%w: unsupported connector kind %q", ErrInvalidInput, c.Kind)
	}
	return edges, nil
}

func checkSizes(c model.Connector, sourceSize, targetSize int, recurrent bool) error {
	if sourceSize < 0 || targetSize < 0 {
		return fmt.Errorf("%w: negative population size (source=%d target=%d)", ErrInvalidInput, sourceSize, targetSize)
	}
	if recurrent && sourceSize != targetSize {
		return fmt.Errorf("%w: recurrent projection between populations of size %d and %d", ErrInvalidInput, sourceSize, targetSize)
	}
	switch c.Kind {
	case model.ConnectorFromList:
		for i, e := range c.Edges {
			if e.Source < 0 || e.Source >= sourceSize || e.Target < 0 || e.Target >= targetSize {
				return fmt.Errorf("%w: edge %d (%d->%d) outside populations of size %d and %d", ErrInvalidInput, i, e.Source, e.Target, sourceSize, targetSize)
			}
		}
	case model.ConnectorOneToOne:
		if sourceSize != targetSize {
			return fmt.Errorf("%w: one_to_one requires equal sizes, got %d and %d", ErrInvalidInput, sourceSize, targetSize)
		}
	case model.ConnectorFixedProbability:
		if math.IsNaN(c.Probability) || c.Probability < 0 || c.Probability > 1 {
			return fmt.Errorf("%w: connection probability %v outside [0,1]", ErrInvalidInput, c.Probability)
		}
	case model.ConnectorFixedNumberPre:
		if c.Number < 0 {
			return fmt.Errorf("%w: negative presynaptic count %d", ErrInvalidInput, c.Number)
		}
		candidates := sourceSize
		if recurrent && !c.AllowSelf {
			candidates--
		}
		if targetSize > 0 && c.Number > candidates {
			return fmt.Errorf("%w: %d presynaptic partners requested but only %d candidates", ErrInvalidInput, c.Number, candidates)
		}
	}
	return nil
}

func walkFixedProbability(c model.Connector, sourceSize, targetSize int, excludeSelf bool, fn func(s, t int)) {
	rng := rand.New(rand.NewSource(c.Seed))
	for s := 0; s < sourceSize; s++ {
		for t := 0; t < targetSize; t++ {
			if excludeSelf && s == t {
				continue
			}
			if rng.Float64() < c.Probability {
				fn(s, t)
			}
		}
	}
}

// walkFixedNumberPre picks c.Number distinct sources for every target with a
// partial Fisher-Yates shuffle over a shared candidate slice.
func walkFixedNumberPre(c model.Connector, sourceSize, targetSize int, excludeSelf bool, fn func(s, t int)) {
	rng := rand.New(rand.NewSource(c.Seed))
	candidates := make([]int, sourceSize)
	position := make([]int, sourceSize)
	for i := range candidates {
		candidates[i] = i
		position[i] = i
	}
	swap := func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
		position[candidates[i]] = i
		position[candidates[j]] = j
	}

	for t := 0; t < targetSize; t++ {
		pool := sourceSize
		if excludeSelf && t < sourceSize {
			swap(position[t], pool-1)
			pool--
		}
		for i := 0; i < c.Number; i++ {
			j := i + rng.Intn(pool-i)
			swap(i, j)
			fn(candidates[i], t)
		}
	}
}
