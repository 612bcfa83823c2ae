package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

const (
	NeuronIFCondExp          = "IF_cond_exp"
	NeuronEIFCondExpIsfaIsta = "EIF_cond_exp_isfa_ista"
	NeuronSpikeSourcePoisson = "SpikeSourcePoisson"
)

const (
	ReceptorExcitatory = "excitatory"
	ReceptorInhibitory = "inhibitory"
)

type ConnectorKind string

const (
	ConnectorFromList         ConnectorKind = "from_list"
	ConnectorAllToAll         ConnectorKind = "all_to_all"
	ConnectorOneToOne         ConnectorKind = "one_to_one"
	ConnectorFixedProbability ConnectorKind = "fixed_probability"
	ConnectorFixedNumberPre   ConnectorKind = "fixed_number_pre"
)

// Edge is one synapse between two neurons, indexed within their populations.
type Edge struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Weight float64 `json:"weight"`
	Delay  float64 `json:"delay"`
}

type Population struct {
	Label       string             `json:"label"`
	Size        int                `json:"size"`
	NeuronModel string             `json:"neuron_model"`
	Parameters  map[string]float64 `json:"parameters,omitempty"`
}

// Connector describes how a projection wires its two populations. Rule-based
// kinds are expanded by the connectivity package; from_list carries its edges.
type Connector struct {
	Kind        ConnectorKind `json:"kind"`
	Probability float64       `json:"probability,omitempty"`
	Number      int           `json:"number,omitempty"`
	AllowSelf   bool          `json:"allow_self,omitempty"`
	Weight      float64       `json:"weight"`
	Delay       float64       `json:"delay,omitempty"`
	Seed        int64         `json:"seed,omitempty"`
	Edges       []Edge        `json:"edges,omitempty"`
}

type Projection struct {
	Label     string    `json:"label"`
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	Receptor  string    `json:"receptor"`
	Connector Connector `json:"connector"`
}

// Recurrent reports whether the projection connects a population to itself.
func (p Projection) Recurrent() bool {
	return p.Source == p.Target
}

type Measurement struct {
	Type    string  `json:"type"`
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Units   string  `json:"units,omitempty"`
	Measure string  `json:"measure,omitempty"`
}

type ProjectionLoss struct {
	SynLoss   int `json:"synLoss"`
	TotalSyns int `json:"TotalSyns"`
}

// Result is the outcome of one mapping experiment. Its JSON form is the
// result file layout consumed by the summarize tooling.
type Result struct {
	VersionedRecord
	ID            string                    `json:"id"`
	Model         string                    `json:"model"`
	Task          string                    `json:"task"`
	Topology      string                    `json:"topology"`
	Timestamp     string                    `json:"timestamp"`
	Params        map[string]string         `json:"params,omitempty"`
	MapperOptions map[string]string         `json:"mapper_options,omitempty"`
	Failed        bool                      `json:"failed,omitempty"`
	Error         string                    `json:"error,omitempty"`
	PerPopulation map[string]ProjectionLoss `json:"perPopulation,omitempty"`
	Results       []Measurement             `json:"results"`
}

// Measurement returns the value of the named measurement.
func (r Result) Measurement(name string) (float64, bool) {
	for _, m := range r.Results {
		if m.Name == name {
			return m.Value, true
		}
	}
	return 0, false
}

type Sweep struct {
	VersionedRecord
	ID             string   `json:"id"`
	File           string   `json:"file"`
	Mode           string   `json:"mode"`
	Tasks          int      `json:"tasks"`
	Failures       []string `json:"failures,omitempty"`
	ResultIDs      []string `json:"result_ids,omitempty"`
	StartedAtUTC   string   `json:"started_at_utc"`
	CompletedAtUTC string   `json:"completed_at_utc,omitempty"`
}
