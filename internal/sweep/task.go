package sweep

import (
	"strings"

	"mapbench/internal/mapper"
	"mapbench/internal/topology"
)

// Task is one point of a sweep.
type Task struct {
	Model    string
	Topology string
	// Args holds the parameter assignments in benchmark argument order.
	Args []Assignment
}

type Assignment struct {
	Name  string
	Value string
}

// Params returns the assignments that are topology parameters.
func (t Task) Params() topology.Params {
	p := make(topology.Params, len(t.Args))
	for _, a := range t.Args {
		if !mapper.IsOption(a.Name) {
			p[a.Name] = a.Value
		}
	}
	return p
}

// MapperOptions returns the assignments that steer the engine, such as wafer
// or placer.
func (t Task) MapperOptions() map[string]string {
	var opts map[string]string
	for _, a := range t.Args {
		if mapper.IsOption(a.Name) {
			if opts == nil {
				opts = make(map[string]string)
			}
			opts[mapper.CanonicalOption(a.Name)] = a.Value
		}
	}
	return opts
}

func (t Task) String() string {
	var b strings.Builder
	b.WriteString(t.Topology)
	for _, a := range t.Args {
		b.WriteString(" ")
		b.WriteString(a.Name)
		b.WriteString("=")
		b.WriteString(a.Value)
	}
	return b.String()
}

// Expand takes the cartesian product of every benchmark's argument values.
// The last argument varies fastest.
func Expand(benchmarks []Benchmark) []Task {
	var tasks []Task
	for _, b := range benchmarks {
		combos := [][]Assignment{nil}
		for _, arg := range b.Arguments {
			next := make([][]Assignment, 0, len(combos)*len(arg.Values))
			for _, prefix := range combos {
				for _, v := range arg.Values {
					combo := make([]Assignment, len(prefix), len(prefix)+1)
					copy(combo, prefix)
					next = append(next, append(combo, Assignment{Name: arg.Name, Value: v}))
				}
			}
			combos = next
		}
		for _, combo := range combos {
			tasks = append(tasks, Task{Model: b.Model, Topology: b.Topology, Args: combo})
		}
	}
	return tasks
}
