// Package results reads, writes and aggregates per-run result files.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mapbench/internal/model"
)

const (
	// benchmarksFile is the sweep definition that commonly sits next to
	// result files; it is never a result.
	benchmarksFile = "benchmarks.json"
	runIndexFile   = "run_index.json"
	resultSuffix   = "_results.json"
)

// FileName is the result file name for a model and task.
func FileName(modelName, task string) string {
	return fmt.Sprintf("%s_%s%s", modelName, task, resultSuffix)
}

// WriteResultFile writes r into dir and returns the file path.
func WriteResultFile(dir string, r model.Result) (string, error) {
	if r.Model == "" || r.Task == "" {
		return "", fmt.Errorf("result model and task are required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(r.Model, r.Task))
	if err := writeJSON(path, r); err != nil {
		return "", err
	}
	return path, nil
}

// ReadResultFile reads one result file. Files written before records carried
// version stamps are accepted as they are.
func ReadResultFile(path string) (model.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Result{}, err
	}
	var r model.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return model.Result{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if r.Model == "" {
		r.Model = modelFromFileName(filepath.Base(path))
	}
	return r, nil
}

// ListResultFiles returns the JSON result files in dir, sorted by name.
func ListResultFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if strings.HasSuffix(name, benchmarksFile) || name == runIndexFile {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// LoadDir reads every result file in dir.
func LoadDir(dir string) ([]model.Result, error) {
	files, err := ListResultFiles(dir)
	if err != nil {
		return nil, err
	}
	out := make([]model.Result, 0, len(files))
	for _, path := range files {
		r, err := ReadResultFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// modelFromFileName recovers the model from "<model>_network_<task>" names.
func modelFromFileName(name string) string {
	name = strings.TrimSuffix(name, ".json")
	if i := strings.Index(name, "_network_"); i >= 0 {
		return name[:i] + "_network"
	}
	return name
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
