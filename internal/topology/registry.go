// Package topology declares the network shapes used in mapping experiments.
//
// Every topology is a Builder: it names its parameters, derives a task name
// from their values, and builds a model.Network that the mapping stage
// consumes. Builders are looked up by name from a process-wide registry.
package topology

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"mapbench/internal/model"
)

var (
	ErrUnknownTopology = errors.New("unknown topology")
	ErrTopologyExists  = errors.New("topology already registered")
	ErrUnknownParam    = errors.New("unknown parameter")
)

type Builder interface {
	Name() string
	// Model is the default model name written into result records.
	Model() string
	Params() []ParamSpec
	Task(p Params) (string, error)
	Build(p Params) (model.Network, error)
}

// MapperDefaulter is implemented by builders whose experiments were tuned
// for engine options other than the configured ones. Its values replace
// configured mapper options but not options given for a single run.
type MapperDefaulter interface {
	MapperDefaults() map[string]string
}

var registry = struct {
	mu sync.RWMutex
	m  map[string]Builder
}{
	m: make(map[string]Builder),
}

func init() {
	MustRegister(CorticalBuilder{})
	MustRegister(RandomBuilder{})
	MustRegister(IsingBuilder{})
	MustRegister(RBMBuilder{})
	MustRegister(RBMLocalReceptiveBuilder{})
	MustRegister(FeedforwardBuilder{})
	MustRegister(FullyVisibleBMBuilder{})
	MustRegister(PfeilsNoiseBuilder{})
}

func Register(b Builder) error {
	if b == nil || b.Name() == "" {
		return errors.New("topology name is required")
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[b.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrTopologyExists, b.Name())
	}
	registry.m[b.Name()] = b
	return nil
}

func MustRegister(b Builder) {
	if err := Register(b); err != nil {
		panic(err)
	}
}

func Lookup(name string) (Builder, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	b, ok := registry.m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTopology, name)
	}
	return b, nil
}

func Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve looks up a builder and merges the given values over its defaults.
func Resolve(name string, given Params) (Builder, Params, error) {
	b, err := Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	params, err := resolveParams(b.Params(), given)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	return b, params, nil
}

func projectionLabel(source, target, receptor string) string {
	return source + "-" + target + "/" + receptor
}
