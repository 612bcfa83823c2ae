package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"mapbench/internal/model"
)

// indexMu serializes run index updates from concurrent runs in one process.
// The lock file serializes them across processes, e.g. subprocess sweeps.
var indexMu sync.Mutex

const runIndexLock = runIndexFile + ".lock"

var (
	indexLockRetry   = 5 * time.Millisecond
	indexLockTimeout = 30 * time.Second
	// A lock older than this was left behind by a process that died.
	indexLockStale = 2 * time.Minute
)

// RunIndexEntry summarizes one run in the output directory's run index.
type RunIndexEntry struct {
	ID        string `json:"id"`
	Model     string `json:"model"`
	Task      string `json:"task"`
	File      string `json:"file"`
	Timestamp string `json:"timestamp"`
	Failed    bool   `json:"failed,omitempty"`
}

// AppendRunIndex adds entry to the run index in dir, replacing an entry with
// the same ID. It is safe to call from several processes at once.
func AppendRunIndex(dir string, entry RunIndexEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	indexMu.Lock()
	defer indexMu.Unlock()

	unlock, err := lockRunIndex(dir)
	if err != nil {
		return err
	}
	defer unlock()

	index, err := ListRunIndex(dir)
	if err != nil {
		return err
	}

	replaced := false
	for i := range index {
		if index[i].ID == entry.ID {
			index[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		index = append(index, entry)
	}
	return writeJSONAtomic(filepath.Join(dir, runIndexFile), index)
}

// ListRunIndex returns the run index of dir, newest first.
func ListRunIndex(dir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(dir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var index []RunIndexEntry
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, err
	}
	sort.SliceStable(index, func(i, j int) bool {
		return model.CompareTimestamps(index[i].Timestamp, index[j].Timestamp) > 0
	})
	return index, nil
}

// lockRunIndex takes the index lock file in dir and returns its release.
func lockRunIndex(dir string) (func(), error) {
	path := filepath.Join(dir, runIndexLock)
	deadline := time.Now().Add(indexLockTimeout)
	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			_ = f.Close()
			return func() { _ = os.Remove(path) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("lock run index: %w", err)
		}
		if info, statErr := os.Stat(path); statErr == nil && time.Since(info.ModTime()) > indexLockStale {
			_ = os.Remove(path)
			continue
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("lock run index: %s held for more than %v", path, indexLockTimeout)
		}
		time.Sleep(indexLockRetry)
	}
}

// writeJSONAtomic replaces path through a temp file in the same directory,
// so readers never see a partly written index.
func writeJSONAtomic(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
