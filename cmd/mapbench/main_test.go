package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mapbench/internal/model"
	"mapbench/internal/results"
)

// execute runs a fresh root command and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// writeConfig points output and store at a temp directory.
func writeConfig(t *testing.T) (configPath, outputDir string) {
	t.Helper()
	dir := t.TempDir()
	outputDir = filepath.Join(dir, "results")
	configPath = filepath.Join(dir, "mapbench.yaml")
	content := "output_dir: " + outputDir + "\nstore:\n  kind: memory\nlogging:\n  level: error\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath, outputDir
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v (%q)", err, out)
	}
	if got["version"] != version {
		t.Fatalf("unexpected version output: %v", got)
	}
}

func TestTopologiesListsEveryBuilder(t *testing.T) {
	out, err := execute(t, "topologies", "--json")
	if err != nil {
		t.Fatalf("topologies: %v", err)
	}
	var infos []topologyInfo
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var names []string
	for _, info := range infos {
		names = append(names, info.Name)
	}
	want := []string{"cortical", "feedforward", "fully_visible_bm", "ising", "pfeils_noise", "random", "rbm", "rbm_local_receptive"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("unexpected topologies (-want +got):\n%s", diff)
	}
}

func TestRunWritesResult(t *testing.T) {
	configPath, outputDir := writeConfig(t)
	out, err := execute(t, "--config", configPath, "run", "pfeils_noise",
		"--set", "N=40", "--set", "K=5", "--mapper-option", "n_size=8", "--json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var result model.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.ID == "" || result.Failed {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Task != "N40_K5_nsize8_wafer24_ignoreBlacklsitingFalse_byNeuron" {
		t.Fatalf("unexpected task: %s", result.Task)
	}
	if got := measurement(result, "synapses"); got != 200 {
		t.Fatalf("expected 200 synapses, got %v", got)
	}

	path := filepath.Join(outputDir, results.FileName(result.Model, result.Task))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected result file: %v", err)
	}

	runsOut, err := execute(t, "--config", configPath, "runs", "--json")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	var entries []results.RunIndexEntry
	if err := json.Unmarshal([]byte(runsOut), &entries); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != result.ID {
		t.Fatalf("unexpected run index: %+v", entries)
	}
}

func TestRunTextOutput(t *testing.T) {
	configPath, _ := writeConfig(t)
	out, err := execute(t, "--config", configPath, "run", "fully_visible_bm", "--set", "N=6")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"fullyVisibleBm_network", "synapses:  60", "(ok)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	configPath, _ := writeConfig(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown topology", []string{"run", "hopfield"}, "unknown topology"},
		{"malformed set", []string{"run", "random", "--set", "N"}, "expected key=value"},
		{"unknown param", []string{"run", "random", "--set", "layers=2"}, "unknown parameter"},
		{"missing topology", []string{"run"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append([]string{"--config", configPath}, tt.args...)...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestSweepAndSummarize(t *testing.T) {
	configPath, outputDir := writeConfig(t)
	file := filepath.Join(t.TempDir(), "benchmarks.yaml")
	content := `
- model: {name: random_network}
  tasks:
    command: random
    arguments:
      --N: [20, 40]
      --prob: [0.5]
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write benchmarks: %v", err)
	}

	out, err := execute(t, "--config", configPath, "sweep", "--file", file, "--workers", "2", "--json")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	var record model.Sweep
	if err := json.Unmarshal([]byte(out), &record); err != nil {
		t.Fatalf("decode sweep: %v", err)
	}
	if record.Tasks != 2 || len(record.ResultIDs) != 2 || len(record.Failures) != 0 {
		t.Fatalf("unexpected sweep record: %+v", record)
	}

	csvPath := filepath.Join(t.TempDir(), "summary.csv")
	out, err = execute(t, "--config", configPath, "summarize", "--dir", outputDir, "--csv", csvPath, "--json")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	var series []results.Series
	if err := json.Unmarshal([]byte(out), &series); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if len(series) != 1 || series[0].Model != "random_network" || len(series[0].Points) != 2 {
		t.Fatalf("unexpected summary: %+v", series)
	}
	if series[0].MeanRelativeLoss != 0 {
		t.Fatalf("lossless mapping should lose nothing, got %v", series[0].MeanRelativeLoss)
	}
	if _, err := os.Stat(csvPath); err != nil {
		t.Fatalf("expected csv file: %v", err)
	}
}

func TestSweepRequiresFile(t *testing.T) {
	if _, err := execute(t, "sweep"); err == nil || !strings.Contains(err.Error(), "file") {
		t.Fatalf("expected missing --file error, got: %v", err)
	}
}

func TestInDegreeScalesTable(t *testing.T) {
	out, err := execute(t, "indegree", "--scale", "0.5", "--json")
	if err != nil {
		t.Fatalf("indegree: %v", err)
	}
	var got inDegreeTable
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.InDegree) != 8 || len(got.InDegree[0]) != 8 || got.Labels[0] != "23e" {
		t.Fatalf("unexpected table shape: %+v", got)
	}
	if got.InDegree[0][5] != 0 {
		t.Fatalf("zero probability should give zero in-degree, got %v", got.InDegree[0][5])
	}
	if got.InDegree[0][0] <= 0 {
		t.Fatalf("expected positive 23e-23e in-degree, got %v", got.InDegree[0][0])
	}

	if _, err := execute(t, "indegree", "--scale", "0"); err == nil {
		t.Fatal("expected error for zero scale")
	}
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"N=10", " prob =0.5", "tag=a=b"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[string]string{"N": "10", "prob": "0.5", "tag": "a=b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected assignments (-want +got):\n%s", diff)
	}
	if _, err := parseAssignments([]string{"=1"}); err == nil {
		t.Fatal("expected error for empty key")
	}
}
