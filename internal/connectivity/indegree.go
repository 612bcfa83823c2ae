// Package connectivity turns connection rules into concrete synapse lists.
//
// The cortical column model specifies connectivity as a probability that at
// least one synapse exists between a pair of neurons. ComputeInDegree converts
// that probability into an expected in-degree per target neuron, and
// SampleEdges draws a random edge list whose size matches the in-degree scaled
// by k_scale, independently of how far the population sizes were downscaled.
package connectivity

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidInput   = errors.New("invalid connectivity input")
	ErrDegeneratePair = errors.New("degenerate population pair")
)

// InDegreeTable is indexed [target][source] in the same population order as
// the probability matrix it was derived from.
type InDegreeTable [][]float64

func (t InDegreeTable) At(target, source int) float64 {
	return t[target][source]
}

// ComputeInDegree derives the expected number of incoming connections per
// target neuron for every (target, source) population pair.
//
// Each of the n_t*n_s neuron pairs is treated as an independent trial with a
// per-pair probability q such that 1-(1-q)^(n_t*n_s) = p. A probability of
// zero yields an in-degree of zero without evaluating the formula.
func ComputeInDegree(probabilities [][]float64, sizes []int) (InDegreeTable, error) {
	if err := validateMatrix(probabilities, sizes); err != nil {
		return nil, err
	}

	table := make(InDegreeTable, len(probabilities))
	for target := range probabilities {
		table[target] = make([]float64, len(probabilities[target]))
		for source, p := range probabilities[target] {
			k, err := InDegree(p, sizes[target], sizes[source])
			if err != nil {
				return nil, fmt.Errorf("pair (target=%d, source=%d): %w", target, source, err)
			}
			table[target][source] = k
		}
	}
	return table, nil
}

// InDegree computes a single in-degree entry. See ComputeInDegree.
func InDegree(p float64, nTarget, nSource int) (float64, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("%w: probability %v outside [0,1]", ErrInvalidInput, p)
	}
	if nTarget <= 0 || nSource <= 0 {
		return 0, fmt.Errorf("%w: population sizes must be positive, got target=%d source=%d", ErrInvalidInput, nTarget, nSource)
	}
	if p == 0 {
		return 0, nil
	}
	if p == 1 {
		return 0, fmt.Errorf("%w: probability 1 yields an unbounded in-degree", ErrInvalidInput)
	}
	pairs := float64(nTarget) * float64(nSource)
	if pairs == 1 {
		return 0, fmt.Errorf("%w: single-neuron populations with probability %v", ErrDegeneratePair, p)
	}
	return math.Log(1-p) / math.Log(1-1/pairs) / float64(nTarget), nil
}

func validateMatrix(probabilities [][]float64, sizes []int) error {
	if len(probabilities) != len(sizes) {
		return fmt.Errorf("%w: probability matrix has %d rows but %d population sizes were given", ErrInvalidInput, len(probabilities), len(sizes))
	}
	for i, row := range probabilities {
		if len(row) != len(probabilities) {
			return fmt.Errorf("%w: probability matrix row %d has %d entries, want %d", ErrInvalidInput, i, len(row), len(probabilities))
		}
	}
	for i, size := range sizes {
		if size <= 0 {
			return fmt.Errorf("%w: population %d has size %d", ErrInvalidInput, i, size)
		}
	}
	return nil
}
