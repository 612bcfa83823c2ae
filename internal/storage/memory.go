package storage

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"mapbench/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	results     map[string]model.Result
	sweeps      map[string]model.Sweep
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.results = make(map[string]model.Result)
	s.sweeps = make(map[string]model.Sweep)
	return nil
}

func (s *MemoryStore) SaveResult(_ context.Context, result model.Result) error {
	if result.ID == "" {
		return errors.New("result id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.results[result.ID] = cloneResult(result)
	return nil
}

func (s *MemoryStore) GetResult(_ context.Context, id string) (model.Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.results[id]
	if !ok {
		return model.Result{}, false, nil
	}
	return cloneResult(result), true, nil
}

func (s *MemoryStore) ListResults(_ context.Context, modelName string) ([]model.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Result, 0, len(s.results))
	for _, result := range s.results {
		if modelName != "" && result.Model != modelName {
			continue
		}
		out = append(out, cloneResult(result))
	}
	sortResults(out)
	return out, nil
}

func (s *MemoryStore) SaveSweep(_ context.Context, sweep model.Sweep) error {
	if sweep.ID == "" {
		return errors.New("sweep id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.sweeps[sweep.ID] = cloneSweep(sweep)
	return nil
}

func (s *MemoryStore) GetSweep(_ context.Context, id string) (model.Sweep, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sweep, ok := s.sweeps[id]
	if !ok {
		return model.Sweep{}, false, nil
	}
	return cloneSweep(sweep), true, nil
}

func cloneResult(r model.Result) model.Result {
	r.Params = maps.Clone(r.Params)
	r.MapperOptions = maps.Clone(r.MapperOptions)
	r.PerPopulation = maps.Clone(r.PerPopulation)
	r.Results = slices.Clone(r.Results)
	return r
}

func cloneSweep(s model.Sweep) model.Sweep {
	s.Failures = slices.Clone(s.Failures)
	s.ResultIDs = slices.Clone(s.ResultIDs)
	return s
}
