package connectivity

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSampleEdgesCountAndRanges(t *testing.T) {
	cases := []struct {
		sourceSize, targetSize int
		inDegree, kScale       float64
	}{
		{sourceSize: 10, targetSize: 10, inDegree: 6.8968, kScale: 1},
		{sourceSize: 3, targetSize: 250, inDegree: 0.37, kScale: 0.5},
		{sourceSize: 2068, targetSize: 583, inDegree: 2.9, kScale: 0.01},
		{sourceSize: 1, targetSize: 1, inDegree: 4, kScale: 1},
	}
	for _, tc := range cases {
		edges, err := SampleEdges(tc.sourceSize, tc.targetSize, tc.inDegree, tc.kScale, 7)
		if err != nil {
			t.Fatalf("%+v: %v", tc, err)
		}
		want := int(math.RoundToEven(tc.inDegree * tc.kScale * float64(tc.targetSize)))
		if len(edges) != want {
			t.Fatalf("%+v: expected %d edges, got %d", tc, want, len(edges))
		}
		for _, e := range edges {
			if e.Source < 0 || e.Source >= tc.sourceSize {
				t.Fatalf("%+v: source %d out of range", tc, e.Source)
			}
			if e.Target < 0 || e.Target >= tc.targetSize {
				t.Fatalf("%+v: target %d out of range", tc, e.Target)
			}
			if e.Weight != PlaceholderWeight || e.Delay != PlaceholderDelay {
				t.Fatalf("%+v: unexpected placeholder values %+v", tc, e)
			}
		}
	}
}

func TestSampleEdgesSelfPairScenario(t *testing.T) {
	table, err := ComputeInDegree([][]float64{{0.5}}, []int{10})
	if err != nil {
		t.Fatalf("compute in-degree: %v", err)
	}
	edges, err := SampleEdges(10, 10, table.At(0, 0), 1, 0)
	if err != nil {
		t.Fatalf("sample edges: %v", err)
	}
	if len(edges) != 69 {
		t.Fatalf("expected 69 edges, got %d", len(edges))
	}
}

func TestSampleEdgesZeroProbabilityYieldsEmptyList(t *testing.T) {
	k, err := InDegree(0, 500, 800)
	if err != nil {
		t.Fatalf("in-degree: %v", err)
	}
	edges, err := SampleEdges(800, 500, k, 1, 3)
	if err != nil {
		t.Fatalf("sample edges: %v", err)
	}
	if len(edges) != 0 {
		t.Fatalf("expected no edges, got %d", len(edges))
	}
}

func TestSampleEdgesReproducible(t *testing.T) {
	first, err := SampleEdges(100, 80, 3.3, 1, 42)
	if err != nil {
		t.Fatalf("first sample: %v", err)
	}
	second, err := SampleEdges(100, 80, 3.3, 1, 42)
	if err != nil {
		t.Fatalf("second sample: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("same seed produced different edges (-first +second):\n%s", diff)
	}

	other, err := SampleEdges(100, 80, 3.3, 1, 43)
	if err != nil {
		t.Fatalf("other sample: %v", err)
	}
	if cmp.Equal(first, other) {
		t.Fatal("expected different seeds to produce different edges")
	}
}

func TestSampleEdgesDrawsSourcesBeforeTargets(t *testing.T) {
	edges, err := SampleEdges(50, 60, 0.1, 1, 9)
	if err != nil {
		t.Fatalf("sample edges: %v", err)
	}
	rng := rand.New(rand.NewSource(9))
	sources := make([]int, len(edges))
	for i := range sources {
		sources[i] = rng.Intn(50)
	}
	for i, e := range edges {
		if e.Source != sources[i] {
			t.Fatalf("edge %d: source %d, want %d", i, e.Source, sources[i])
		}
		if want := rng.Intn(60); e.Target != want {
			t.Fatalf("edge %d: target %d, want %d", i, e.Target, want)
		}
	}
}

func TestSampleEdgesFailsFastOnEmptyPopulation(t *testing.T) {
	if _, err := SampleEdges(0, 10, 2, 1, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty source, got %v", err)
	}
	edges, err := SampleEdges(10, 0, 2, 1, 1)
	if err != nil {
		t.Fatalf("empty target rounds to zero connections, got error %v", err)
	}
	if len(edges) != 0 {
		t.Fatalf("expected no edges, got %d", len(edges))
	}
}

func TestConnectionCountRejectsBadScale(t *testing.T) {
	for _, kScale := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := ConnectionCount(1, kScale, 10); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("k_scale %v: expected invalid input, got %v", kScale, err)
		}
	}
	if _, err := ConnectionCount(-0.5, 1, 10); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative in-degree, got %v", err)
	}
}

func TestConnectionCountRoundsHalfToEven(t *testing.T) {
	cases := map[float64]int{2.5: 2, 3.5: 4, 0.5: 0, 6.8968: 7}
	for inDegree, want := range cases {
		got, err := ConnectionCount(inDegree, 1, 1)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if got != want {
			t.Fatalf("in-degree %v: expected %d, got %d", inDegree, want, got)
		}
	}
}

func TestConnectionCountRejectsOverflow(t *testing.T) {
	cases := []struct {
		name     string
		inDegree float64
		kScale   float64
		target   int
	}{
		{name: "huge in-degree", inDegree: 1e300, kScale: 1, target: 10},
		{name: "product overflows to inf", inDegree: 1e200, kScale: 1e200, target: 10},
		{name: "just past limit", inDegree: float64(MaxConnections) + 1, kScale: 1, target: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ConnectionCount(tc.inDegree, tc.kScale, tc.target); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
			if _, err := SampleEdges(10, tc.target, tc.inDegree, tc.kScale, 0); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("sample: expected invalid input, got %v", err)
			}
		})
	}
	got, err := ConnectionCount(float64(MaxConnections), 1, 1)
	if err != nil {
		t.Fatalf("count at limit: %v", err)
	}
	if got != MaxConnections {
		t.Fatalf("expected %d, got %d", MaxConnections, got)
	}
}

func TestGeneratorReseedPerPair(t *testing.T) {
	g := NewGenerator(5, true)
	first, err := g.Sample(30, 30, 1.2, 1)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := g.Sample(30, 30, 1.2, 1)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("reseeding generator should repeat the stream:\n%s", diff)
	}

	direct, err := SampleEdges(30, 30, 1.2, 1, 5)
	if err != nil {
		t.Fatalf("direct: %v", err)
	}
	if !cmp.Equal(first, direct) {
		t.Fatal("reseeding generator should match SampleEdges")
	}
}

func TestGeneratorSharedStream(t *testing.T) {
	g := NewGenerator(5, false)
	first, err := g.Sample(30, 30, 1.2, 1)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := g.Sample(30, 30, 1.2, 1)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if cmp.Equal(first, second) {
		t.Fatal("shared stream should not repeat edges for consecutive pairs")
	}

	again := NewGenerator(5, false)
	replay, _ := again.Sample(30, 30, 1.2, 1)
	if !cmp.Equal(first, replay) {
		t.Fatal("generator with same seed should replay the first pair")
	}
}
