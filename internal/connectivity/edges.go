package connectivity

import (
	"fmt"
	"math"
	"math/rand"

	"mapbench/internal/model"
)

// Placeholder synapse parameters. The mapping stage only looks at which
// neurons are connected.
const (
	PlaceholderWeight = 1.0
	PlaceholderDelay  = 0.0
)

// MaxConnections bounds the edge count of a single population pair.
const MaxConnections = math.MaxInt32

// ConnectionCount returns round(inDegree * kScale * targetSize), rounding
// halves to even.
func ConnectionCount(inDegree, kScale float64, targetSize int) (int, error) {
	if math.IsNaN(inDegree) || math.IsInf(inDegree, 0) || inDegree < 0 {
		return 0, fmt.Errorf("%w: in-degree %v", ErrInvalidInput, inDegree)
	}
	if math.IsNaN(kScale) || math.IsInf(kScale, 0) || kScale <= 0 {
		return 0, fmt.Errorf("%w: k_scale must be positive, got %v", ErrInvalidInput, kScale)
	}
	if targetSize < 0 {
		return 0, fmt.Errorf("%w: negative target size %d", ErrInvalidInput, targetSize)
	}
	count := math.RoundToEven(inDegree * kScale * float64(targetSize))
	if count > MaxConnections {
		return 0, fmt.Errorf("%w: %g connections exceed the limit of %d", ErrInvalidInput, count, MaxConnections)
	}
	return int(count), nil
}

// SampleEdges draws the edge list for one population pair from a generator
// freshly seeded with seed. Calling it for every pair with the same seed
// restarts the random stream each time, which keeps edge lists comparable with
// result sets produced that way.
func SampleEdges(sourceSize, targetSize int, inDegree, kScale float64, seed int64) ([]model.Edge, error) {
	return SampleEdgesRand(sourceSize, targetSize, inDegree, kScale, rand.New(rand.NewSource(seed)))
}

// SampleEdgesRand is SampleEdges with a caller-owned generator. Sources are
// drawn first, then targets; both with replacement, so duplicates and
// self-loops are possible.
func SampleEdgesRand(sourceSize, targetSize int, inDegree, kScale float64, rng *rand.Rand) ([]model.Edge, error) {
	count, err := ConnectionCount(inDegree, kScale, targetSize)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	if sourceSize <= 0 || targetSize <= 0 {
		return nil, fmt.Errorf("%w: %d connections requested between populations of size %d and %d", ErrInvalidInput, count, sourceSize, targetSize)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random generator", ErrInvalidInput)
	}

	sources := make([]int, count)
	for i := range sources {
		sources[i] = rng.Intn(sourceSize)
	}
	edges := make([]model.Edge, count)
	for i := range edges {
		edges[i] = model.Edge{
			Source: sources[i],
			Target: rng.Intn(targetSize),
			Weight: PlaceholderWeight,
			Delay:  PlaceholderDelay,
		}
	}
	return edges, nil
}

// Generator samples edge lists for a sequence of population pairs.
type Generator struct {
	seed          int64
	reseedPerPair bool
	rng           *rand.Rand
}

// NewGenerator returns a generator seeded with seed. With reseedPerPair set,
// every Sample call starts from the same stream position; otherwise a single
// stream is shared across calls.
func NewGenerator(seed int64, reseedPerPair bool) *Generator {
	return &Generator{
		seed:          seed,
		reseedPerPair: reseedPerPair,
		rng:           rand.New(rand.NewSource(seed)),
	}
}

func (g *Generator) Sample(sourceSize, targetSize int, inDegree, kScale float64) ([]model.Edge, error) {
	if g.reseedPerPair {
		g.rng.Seed(g.seed)
	}
	return SampleEdgesRand(sourceSize, targetSize, inDegree, kScale, g.rng)
}
