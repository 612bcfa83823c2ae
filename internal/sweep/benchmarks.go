// Package sweep expands benchmark definitions into experiment tasks and runs
// them, sequentially or with bounded parallelism.
package sweep

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"mapbench/internal/topology"
)

var ErrInvalidBenchmarks = errors.New("invalid benchmarks file")

// Benchmark is one entry of a benchmarks file: a model name, the topology to
// build, and the argument values to sweep.
type Benchmark struct {
	Model     string
	Topology  string
	Arguments []Argument
}

// Argument is one swept parameter. Arguments keep file order.
type Argument struct {
	Name   string
	Values []string
}

// legacyCommands maps script directories of older benchmark files, whose
// command was "python <dir>/run.py", to topology names.
var legacyCommands = map[string]string{
	"cortical":          "cortical",
	"random":            "random",
	"ising":             "ising",
	"rbm":               "rbm",
	"rbmLocalReceptive": "rbm_local_receptive",
	"feedforward":       "feedforward",
	"fullyVisibleBM":    "fully_visible_bm",
	"pfeilsNoise":       "pfeils_noise",
}

// LoadFile reads a benchmarks file. JSON files parse as YAML.
func LoadFile(filePath string) ([]Benchmark, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading benchmarks file: %w", err)
	}
	benchmarks, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return benchmarks, nil
}

// Parse decodes benchmark definitions:
//
//	- model: {name: cortical_column_network}
//	  tasks:
//	    command: cortical
//	    arguments:
//	      --scale: [0.01, 0.02]
//	      --seed: [0, 1]
func Parse(data []byte) ([]Benchmark, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBenchmarks, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidBenchmarks)
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: expected a list of benchmarks", ErrInvalidBenchmarks)
	}

	out := make([]Benchmark, 0, len(root.Content))
	for i, item := range root.Content {
		b, err := parseBenchmark(item)
		if err != nil {
			return nil, fmt.Errorf("%w: benchmark %d: %w", ErrInvalidBenchmarks, i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

type rawBenchmark struct {
	Model struct {
		Name string `yaml:"name"`
	} `yaml:"model"`
	Tasks struct {
		Command   string    `yaml:"command"`
		Arguments yaml.Node `yaml:"arguments"`
	} `yaml:"tasks"`
}

func parseBenchmark(node *yaml.Node) (Benchmark, error) {
	var raw rawBenchmark
	if err := node.Decode(&raw); err != nil {
		return Benchmark{}, err
	}
	if raw.Model.Name == "" {
		return Benchmark{}, errors.New("model name is required")
	}
	topo, err := commandTopology(raw.Tasks.Command)
	if err != nil {
		return Benchmark{}, err
	}

	b := Benchmark{Model: raw.Model.Name, Topology: topo}
	args := raw.Tasks.Arguments
	switch args.Kind {
	case 0:
		return b, nil
	case yaml.MappingNode:
	default:
		return Benchmark{}, errors.New("arguments must be a mapping")
	}
	for i := 0; i+1 < len(args.Content); i += 2 {
		name := strings.TrimLeft(args.Content[i].Value, "-")
		if name == "" {
			return Benchmark{}, errors.New("empty argument name")
		}
		values, err := scalarValues(args.Content[i+1])
		if err != nil {
			return Benchmark{}, fmt.Errorf("argument %s: %w", name, err)
		}
		b.Arguments = append(b.Arguments, Argument{Name: name, Values: values})
	}
	return b, nil
}

func scalarValues(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		values := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, errors.New("values must be scalars")
			}
			values = append(values, item.Value)
		}
		if len(values) == 0 {
			return nil, errors.New("no values")
		}
		return values, nil
	default:
		return nil, errors.New("values must be a scalar or a list of scalars")
	}
}

func commandTopology(command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", errors.New("command is required")
	}
	if _, err := topology.Lookup(command); err == nil {
		return command, nil
	}
	fields := strings.Fields(command)
	script := fields[len(fields)-1]
	if name, ok := legacyCommands[path.Base(path.Dir(script))]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: %s", topology.ErrUnknownTopology, command)
}
