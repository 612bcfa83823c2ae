package mapper

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Options steer the engine. They are opaque to mapbench apart from naming:
// Tag folds them into task names.
type Options struct {
	Wafer              int
	NeuronSize         int
	Placer             string
	IgnoreBlacklisting bool
	DefectsPath        string
	// Extra holds engine options mapbench does not interpret.
	Extra map[string]string
}

var optionKeys = map[string]bool{
	"wafer":               true,
	"w":                   true,
	"nsize":               true,
	"n_size":              true,
	"placer":              true,
	"ignore_blacklisting": true,
	"defects_path":        true,
}

// IsOption reports whether name is an engine option rather than a topology
// parameter.
func IsOption(name string) bool {
	return optionKeys[strings.TrimLeft(name, "-")]
}

// CanonicalOption maps option aliases to the name Values uses.
func CanonicalOption(name string) string {
	name = strings.TrimLeft(strings.TrimSpace(name), "-")
	switch name {
	case "w":
		return "wafer"
	case "n_size":
		return "nsize"
	}
	return name
}

// MergeValues layers key=value option sets, later sets winning. Aliases such
// as n_size and nsize collapse to one key. It returns nil when every set is
// empty.
func MergeValues(layers ...map[string]string) map[string]string {
	var out map[string]string
	for _, m := range layers {
		for k, v := range m {
			if out == nil {
				out = make(map[string]string)
			}
			out[CanonicalOption(k)] = v
		}
	}
	return out
}

// ParseOptions reads options from key=value settings. Unknown keys are kept
// in Extra.
func ParseOptions(values map[string]string) (Options, error) {
	var opts Options
	for key, raw := range values {
		key = CanonicalOption(key)
		value := strings.TrimSpace(raw)
		var err error
		switch key {
		case "wafer":
			opts.Wafer, err = strconv.Atoi(value)
		case "nsize":
			opts.NeuronSize, err = strconv.Atoi(value)
		case "placer":
			opts.Placer = value
		case "ignore_blacklisting":
			opts.IgnoreBlacklisting, err = strconv.ParseBool(value)
		case "defects_path":
			opts.DefectsPath = value
		default:
			if opts.Extra == nil {
				opts.Extra = make(map[string]string)
			}
			opts.Extra[key] = value
		}
		if err != nil {
			return Options{}, fmt.Errorf("mapper option %s: %w", key, err)
		}
	}
	if opts.Wafer < 0 || opts.NeuronSize < 0 {
		return Options{}, fmt.Errorf("mapper options: wafer and nsize must be non-negative")
	}
	return opts, nil
}

// Values renders the options back into key=value form, omitting zero values.
func (o Options) Values() map[string]string {
	out := make(map[string]string, len(o.Extra)+len(optionKeys))
	for k, v := range o.Extra {
		out[k] = v
	}
	if o.Wafer != 0 {
		out["wafer"] = strconv.Itoa(o.Wafer)
	}
	if o.NeuronSize != 0 {
		out["nsize"] = strconv.Itoa(o.NeuronSize)
	}
	if o.Placer != "" {
		out["placer"] = o.Placer
	}
	if o.IgnoreBlacklisting {
		out["ignore_blacklisting"] = "true"
	}
	if o.DefectsPath != "" {
		out["defects_path"] = o.DefectsPath
	}
	return out
}

// Tag renders the options as a task name suffix such as
// "nsize4_wafer24_ignoreBlacklsitingFalse_byNeuron". Zero options give "".
func (o Options) Tag() string {
	var parts []string
	if o.NeuronSize != 0 {
		parts = append(parts, fmt.Sprintf("nsize%d", o.NeuronSize))
	}
	if o.Wafer != 0 {
		parts = append(parts, fmt.Sprintf("wafer%d", o.Wafer))
		// Misspelled on purpose: existing result files carry this key.
		parts = append(parts, "ignoreBlacklsiting"+titleBool(o.IgnoreBlacklisting))
	}
	if o.Placer != "" {
		parts = append(parts, o.Placer)
	}
	keys := make([]string, 0, len(o.Extra))
	for k := range o.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+o.Extra[k])
	}
	return strings.Join(parts, "_")
}

func titleBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
