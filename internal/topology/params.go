package topology

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

type ParamKind string

const (
	KindInt    ParamKind = "int"
	KindFloat  ParamKind = "float"
	KindBool   ParamKind = "bool"
	KindString ParamKind = "string"
)

// ParamSpec declares one builder parameter. An empty Default means the
// parameter is optional and the builder derives its value.
type ParamSpec struct {
	Name    string    `json:"name"`
	Kind    ParamKind `json:"kind"`
	Default string    `json:"default,omitempty"`
	Usage   string    `json:"usage"`
}

// Params holds raw parameter values keyed by name.
type Params map[string]string

func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// resolveParams fills defaults, rejects unknown names and checks every value
// parses as its declared kind.
func resolveParams(specs []ParamSpec, given Params) (Params, error) {
	known := make(map[string]ParamSpec, len(specs))
	resolved := make(Params, len(specs))
	for _, spec := range specs {
		known[spec.Name] = spec
		resolved[spec.Name] = spec.Default
	}
	for name, value := range given {
		name = strings.TrimLeft(name, "-")
		spec, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParam, name)
		}
		resolved[spec.Name] = strings.TrimSpace(value)
	}
	for _, spec := range specs {
		value := resolved[spec.Name]
		if value == "" {
			continue
		}
		if err := checkKind(spec.Kind, value); err != nil {
			return nil, fmt.Errorf("param %s: %w", spec.Name, err)
		}
	}
	return resolved, nil
}

func checkKind(kind ParamKind, value string) error {
	var err error
	switch kind {
	case KindInt:
		_, err = strconv.Atoi(value)
	case KindFloat:
		var v float64
		v, err = strconv.ParseFloat(value, 64)
		if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
			err = fmt.Errorf("non-finite value %q", value)
		}
	case KindBool:
		_, err = parseBool(value)
	}
	return err
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "yes", "true", "t", "y", "1":
		return true, nil
	case "no", "false", "f", "n", "0":
		return false, nil
	default:
		return false, fmt.Errorf("boolean value expected, got %q", value)
	}
}

// paramReader reads typed values from resolved params. The first failure is
// kept and later reads return zero values.
type paramReader struct {
	params Params
	err    error
}

func (r *paramReader) raw(name string) string {
	if r.err != nil {
		return ""
	}
	value, ok := r.params[name]
	if !ok || value == "" {
		r.err = fmt.Errorf("param %s is required", name)
		return ""
	}
	return value
}

func (r *paramReader) Int(name string) int {
	value := r.raw(name)
	if r.err != nil {
		return 0
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		r.err = fmt.Errorf("param %s: %w", name, err)
	}
	return v
}

func (r *paramReader) Float(name string) float64 {
	value := r.raw(name)
	if r.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.err = fmt.Errorf("param %s: %w", name, err)
	}
	return v
}

func (r *paramReader) Bool(name string) bool {
	value := r.raw(name)
	if r.err != nil {
		return false
	}
	v, err := parseBool(value)
	if err != nil {
		r.err = fmt.Errorf("param %s: %w", name, err)
	}
	return v
}

// Has reports whether an optional parameter carries a value.
func (r *paramReader) Has(name string) bool {
	return r.params[name] != ""
}

func (r *paramReader) Err() error {
	return r.err
}

// formatFloat renders floats the way existing result file names do: integral
// values keep a trailing ".0".
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
