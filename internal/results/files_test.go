package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mapbench/internal/model"
)

func TestWriteAndReadResultFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	input := model.Result{
		VersionedRecord: model.VersionedRecord{SchemaVersion: 1, CodecVersion: 1},
		ID:              "r1",
		Model:           "random_network",
		Task:            "N50_p0.1",
		PerPopulation:   map[string]model.ProjectionLoss{"neurons-neurons": {SynLoss: 2, TotalSyns: 250}},
		Results:         []model.Measurement{{Type: "performance", Name: "synapses", Value: 250}},
	}

	path, err := WriteResultFile(dir, input)
	if err != nil {
		t.Fatalf("write result: %v", err)
	}
	if filepath.Base(path) != "random_network_N50_p0.1_results.json" {
		t.Fatalf("unexpected file name: %s", path)
	}

	output, err := ReadResultFile(path)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if diff := cmp.Diff(input, output); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestWriteResultFileRequiresModelAndTask(t *testing.T) {
	if _, err := WriteResultFile(t.TempDir(), model.Result{Model: "m"}); err == nil {
		t.Fatal("expected missing task error")
	}
}

func TestReadLegacyResultFile(t *testing.T) {
	r, err := ReadResultFile(filepath.Join("..", "..", "testdata", "fixtures", "legacy_random_result.json"))
	if err != nil {
		t.Fatalf("read legacy result: %v", err)
	}
	if r.Model != "random_network" || r.Task != "N5000_p0.1" {
		t.Fatalf("unexpected legacy identity: %+v", r)
	}
	if loss, ok := r.Measurement("synapse_loss"); !ok || loss != 812002 {
		t.Fatalf("unexpected synapse_loss: %v %v", loss, ok)
	}
}

func TestListResultFilesSkipsBenchmarksAndIndex(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"rbm_network_Nvisible10_Nhidden10_results.json",
		"benchmarks.json",
		"run_index.json",
		"notes.txt",
		"cortical_column_network_scale0.01_k-scale0.01_seed0_results.json",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.json"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := ListResultFiles(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{
		filepath.Join(dir, "cortical_column_network_scale0.01_k-scale0.01_seed0_results.json"),
		filepath.Join(dir, "rbm_network_Nvisible10_Nhidden10_results.json"),
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Fatalf("unexpected files (-want +got):\n%s", diff)
	}

	missing, err := ListResultFiles(filepath.Join(dir, "missing"))
	if err != nil || len(missing) != 0 {
		t.Fatalf("expected empty listing for a missing dir, got %v %v", missing, err)
	}
}

func TestLoadDirRecoversModelFromFileName(t *testing.T) {
	dir := t.TempDir()
	content := `{"task": "N500_K20", "results": [{"type": "performance", "name": "synapses", "value": 10000}]}`
	if err := os.WriteFile(filepath.Join(dir, "pfeils_noise_network_N500_K20_results.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	results, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(results) != 1 || results[0].Model != "pfeils_noise_network" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestLoadDirReportsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x_network_y_results.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadDir(dir); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRunIndexAppendAndReplace(t *testing.T) {
	dir := t.TempDir()
	entries := []RunIndexEntry{
		{ID: "a", Model: "random_network", Task: "N10_p0.1", Timestamp: "2024-01-01T00:00:00Z"},
		{ID: "b", Model: "rbm_network", Task: "Nvisible5_Nhidden5", Timestamp: "2024-01-02T00:00:00Z"},
		{ID: "a", Model: "random_network", Task: "N10_p0.1", Timestamp: "2024-01-03T00:00:00Z", Failed: true},
	}
	for _, e := range entries {
		if err := AppendRunIndex(dir, e); err != nil {
			t.Fatalf("append %s: %v", e.ID, err)
		}
	}

	index, err := ListRunIndex(dir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(index) != 2 {
		t.Fatalf("expected 2 entries, got %+v", index)
	}
	if index[0].ID != "a" || !index[0].Failed || index[1].ID != "b" {
		t.Fatalf("unexpected index order: %+v", index)
	}

	if err := AppendRunIndex(dir, RunIndexEntry{}); err == nil {
		t.Fatal("expected missing id error")
	}
}
