package results

import (
	"encoding/csv"
	"io"
	"math"
	"sort"
	"strconv"

	"mapbench/internal/model"
)

// Point is one run reduced to the quantities compared across a sweep.
type Point struct {
	Task                string  `json:"task"`
	Neurons             float64 `json:"neurons"`
	Synapses            float64 `json:"synapses"`
	SynapseLoss         float64 `json:"synapse_loss"`
	SynapseLossAfterL1  float64 `json:"synapse_loss_after_l1"`
	RelativeLoss        float64 `json:"relative_loss"`
	RelativeLossAfterL1 float64 `json:"relative_loss_after_l1"`
	SetupTime           float64 `json:"setup_time"`
	TotalTime           float64 `json:"total_time"`
	Failed              bool    `json:"failed,omitempty"`
}

// Series collects the points of one model, ordered by synapse count.
type Series struct {
	Model            string  `json:"model"`
	Points           []Point `json:"points"`
	Failures         int     `json:"failures"`
	MeanRelativeLoss float64 `json:"mean_relative_loss"`
	StdRelativeLoss  float64 `json:"std_relative_loss"`
}

// RelativeLoss is lost/synapses. A network without synapses loses nothing.
func RelativeLoss(lost, synapses float64) float64 {
	if synapses <= 0 {
		return 0
	}
	return lost / synapses
}

// Summarize groups results per model. Series are sorted by model name and
// points by synapses, then task.
func Summarize(results []model.Result) []Series {
	byModel := make(map[string]*Series)
	for _, r := range results {
		s, ok := byModel[r.Model]
		if !ok {
			s = &Series{Model: r.Model}
			byModel[r.Model] = s
		}
		p := pointFor(r)
		if p.Failed {
			s.Failures++
		}
		s.Points = append(s.Points, p)
	}

	out := make([]Series, 0, len(byModel))
	for _, s := range byModel {
		sort.SliceStable(s.Points, func(i, j int) bool {
			if s.Points[i].Synapses != s.Points[j].Synapses {
				return s.Points[i].Synapses < s.Points[j].Synapses
			}
			return s.Points[i].Task < s.Points[j].Task
		})
		losses := make([]float64, 0, len(s.Points))
		for _, p := range s.Points {
			if !p.Failed {
				losses = append(losses, p.RelativeLoss)
			}
		}
		s.MeanRelativeLoss = mean(losses)
		s.StdRelativeLoss = std(losses)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out
}

func pointFor(r model.Result) Point {
	value := func(name string) float64 {
		v, _ := r.Measurement(name)
		return v
	}
	p := Point{
		Task:               r.Task,
		Neurons:            value("neurons"),
		Synapses:           value("synapses"),
		SynapseLoss:        value("synapse_loss"),
		SynapseLossAfterL1: value("synapse_loss_after_l1"),
		SetupTime:          value("setup_time"),
		TotalTime:          value("total_time"),
		Failed:             r.Failed,
	}
	p.RelativeLoss = RelativeLoss(p.SynapseLoss, p.Synapses)
	p.RelativeLossAfterL1 = RelativeLoss(p.SynapseLossAfterL1, p.Synapses)
	return p
}

var summaryHeader = []string{
	"model", "task", "neurons", "synapses",
	"synapse_loss", "synapse_loss_after_l1",
	"relative_loss", "relative_loss_after_l1",
	"setup_time", "total_time", "failed",
}

// WriteSummaryCSV writes one row per point.
func WriteSummaryCSV(w io.Writer, series []Series) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(summaryHeader); err != nil {
		return err
	}
	for _, s := range series {
		for _, p := range s.Points {
			if err := writer.Write([]string{
				s.Model,
				p.Task,
				formatFloat(p.Neurons),
				formatFloat(p.Synapses),
				formatFloat(p.SynapseLoss),
				formatFloat(p.SynapseLossAfterL1),
				formatFloat(p.RelativeLoss),
				formatFloat(p.RelativeLossAfterL1),
				formatFloat(p.SetupTime),
				formatFloat(p.TotalTime),
				strconv.FormatBool(p.Failed),
			}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func std(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
