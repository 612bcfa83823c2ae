package experiment

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mapbench/internal/logging"
	"mapbench/internal/mapper"
	"mapbench/internal/model"
	"mapbench/internal/results"
	"mapbench/internal/storage"
	"mapbench/internal/topology"
)

// steppingClock returns t0, t0+2s, t0+5s, ...
func steppingClock() func() time.Time {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	offsets := []time.Duration{0, 2 * time.Second, 5 * time.Second}
	i := 0
	return func() time.Time {
		d := offsets[min(i, len(offsets)-1)]
		i++
		return t0.Add(d)
	}
}

func newRunner(t *testing.T, m mapper.Mapper) (*Runner, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	return &Runner{
		Mapper:    m,
		Store:     store,
		OutputDir: t.TempDir(),
		Now:       steppingClock(),
		NewID:     func() string { return "run-1" },
	}, store
}

func TestRunRecordsLosslessResult(t *testing.T) {
	runner, store := newRunner(t, mapper.Lossless{})

	result, err := runner.Run(context.Background(), Request{
		Topology:      "pfeils_noise",
		Params:        topology.Params{"N": "40", "K": "5"},
		MapperOptions: map[string]string{"wafer": "24", "nsize": "4", "placer": "byNeuron"},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Model != "pfeils_noise_network" || result.Topology != "pfeils_noise" {
		t.Fatalf("unexpected identity: %+v", result)
	}
	if result.Task != "N40_K5_nsize4_wafer24_ignoreBlacklsitingFalse_byNeuron" {
		t.Fatalf("unexpected task: %s", result.Task)
	}
	if result.Failed {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	checks := map[string]float64{
		"setup_time":            3,
		"total_time":            5,
		"synapses":              200,
		"neurons":               40,
		"synapse_loss":          0,
		"synapse_loss_after_l1": 0,
	}
	for name, want := range checks {
		got, ok := result.Measurement(name)
		if !ok || got != want {
			t.Fatalf("measurement %s: got=%v ok=%v want=%v", name, got, ok, want)
		}
	}
	if result.PerPopulation["neurons-neurons"].TotalSyns != 200 {
		t.Fatalf("unexpected per-population losses: %+v", result.PerPopulation)
	}
	if result.Timestamp != "2024-03-01T12:00:05.000000000Z" {
		t.Fatalf("unexpected timestamp: %s", result.Timestamp)
	}

	stored, ok, err := store.GetResult(context.Background(), "run-1")
	if err != nil || !ok {
		t.Fatalf("expected stored result, got ok=%v err=%v", ok, err)
	}
	if stored.Task != result.Task {
		t.Fatalf("stored result differs: %+v", stored)
	}

	onDisk, err := results.ReadResultFile(filepath.Join(runner.OutputDir, results.FileName(result.Model, result.Task)))
	if err != nil {
		t.Fatalf("read result file: %v", err)
	}
	if onDisk.ID != "run-1" {
		t.Fatalf("unexpected result file: %+v", onDisk)
	}
	index, err := results.ListRunIndex(runner.OutputDir)
	if err != nil || len(index) != 1 {
		t.Fatalf("expected one index entry, got %+v err=%v", index, err)
	}
}

func TestRunMappingFailureRecordsSentinelStats(t *testing.T) {
	failing := mapper.Func(func(context.Context, model.Network, mapper.Options) (mapper.Stats, error) {
		return mapper.Stats{}, errors.Join(mapper.ErrMappingFailed, errors.New("could not place population"))
	})
	runner, _ := newRunner(t, failing)
	var logs bytes.Buffer
	runner.Logger = logging.NewLogger("info", &logs)

	result, err := runner.Run(context.Background(), Request{Topology: "random", Params: topology.Params{"N": "20"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Failed || !strings.Contains(result.Error, "could not place population") {
		t.Fatalf("expected failed result, got %+v", result)
	}
	for _, name := range []string{"synapses", "neurons", "synapse_loss", "synapse_loss_after_l1"} {
		if v, _ := result.Measurement(name); v != 1 {
			t.Fatalf("measurement %s: expected sentinel 1, got %v", name, v)
		}
	}
	if !strings.Contains(logs.String(), "mapping failed") {
		t.Fatalf("expected mapping failure to be logged, got %q", logs.String())
	}
}

func TestRunCancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	blocking := mapper.Func(func(ctx context.Context, _ model.Network, _ mapper.Options) (mapper.Stats, error) {
		cancel()
		<-ctx.Done()
		return mapper.Stats{}, ctx.Err()
	})
	runner, store := newRunner(t, blocking)

	if _, err := runner.Run(ctx, Request{Topology: "random", Params: topology.Params{"N": "10"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
	all, err := store.ListResults(context.Background(), "")
	if err != nil || len(all) != 0 {
		t.Fatalf("expected nothing stored, got %+v err=%v", all, err)
	}
}

func TestRunNameOverridesModel(t *testing.T) {
	runner, _ := newRunner(t, mapper.Lossless{})
	result, err := runner.Run(context.Background(), Request{
		Topology: "fully_visible_bm",
		Params:   topology.Params{"N": "6"},
		Name:     "fvbm_small_network",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Model != "fvbm_small_network" || result.Task != "N6" {
		t.Fatalf("unexpected result identity: %s %s", result.Model, result.Task)
	}
	if synapses, _ := result.Measurement("synapses"); synapses != 2*30 {
		t.Fatalf("expected 60 synapses, got %v", synapses)
	}
}

func TestRunIsingDefaultsToItsOwnWafer(t *testing.T) {
	configured := map[string]string{"wafer": "24", "nsize": "4", "placer": "byNeuron"}
	tests := []struct {
		name     string
		explicit map[string]string
		want     string
	}{
		{"topology default", nil, "l3_d2_nb1_b1_n500_k5_p1_nsize4_wafer33_ignoreBlacklsitingFalse_byNeuron"},
		{"explicit wafer", map[string]string{"w": "20"}, "l3_d2_nb1_b1_n500_k5_p1_nsize4_wafer20_ignoreBlacklsitingFalse_byNeuron"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, _ := newRunner(t, mapper.Lossless{})
			result, err := runner.Run(context.Background(), Request{
				Topology:       "ising",
				Params:         topology.Params{"linearsize": "3"},
				MapperDefaults: configured,
				MapperOptions:  tt.explicit,
			})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if result.Task != tt.want {
				t.Fatalf("task = %q, want %q", result.Task, tt.want)
			}
		})
	}

	runner, _ := newRunner(t, mapper.Lossless{})
	result, err := runner.Run(context.Background(), Request{
		Topology:       "pfeils_noise",
		Params:         topology.Params{"N": "40", "K": "5"},
		MapperDefaults: configured,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(result.Task, "_wafer24_") {
		t.Fatalf("configured wafer should apply to other topologies, got %q", result.Task)
	}
}

func TestRunRejectsBadRequests(t *testing.T) {
	runner, _ := newRunner(t, mapper.Lossless{})
	tests := []struct {
		name string
		req  Request
		is   error
	}{
		{"unknown topology", Request{Topology: "hopfield"}, topology.ErrUnknownTopology},
		{"unknown param", Request{Topology: "random", Params: topology.Params{"size": "1"}}, topology.ErrUnknownParam},
		{"bad build", Request{Topology: "random", Params: topology.Params{"N": "0"}}, nil},
		{"bad option", Request{Topology: "random", MapperOptions: map[string]string{"wafer": "x"}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Run(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("expected %v, got: %v", tt.is, err)
			}
		})
	}

	if _, err := (&Runner{}).Run(context.Background(), Request{Topology: "random"}); err == nil {
		t.Fatal("expected missing mapper error")
	}
}
