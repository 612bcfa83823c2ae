// Package experiment runs one mapping experiment: build a topology, hand it
// to a mapper, and record timing and synapse-loss statistics.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mapbench/internal/connectivity"
	"mapbench/internal/logging"
	"mapbench/internal/mapper"
	"mapbench/internal/model"
	"mapbench/internal/results"
	"mapbench/internal/storage"
	"mapbench/internal/topology"
)

// Request names the topology to build and how to map it.
type Request struct {
	Topology string
	Params   topology.Params
	// Name overrides the builder's default model name.
	Name string
	// MapperDefaults are configured engine options. A builder's own
	// defaults replace them, and MapperOptions replace both.
	MapperDefaults map[string]string
	MapperOptions  map[string]string
}

// Runner executes requests. Store and OutputDir are optional sinks.
type Runner struct {
	Mapper    mapper.Mapper
	Store     storage.Store
	OutputDir string
	Logger    *slog.Logger

	Now   func() time.Time
	NewID func() string
}

// failedStats stand in for engine counters when mapping fails, so failed
// runs still produce a complete result record.
var failedStats = mapper.Stats{Synapses: 1, Neurons: 1, SynapseLoss: 1, SynapseLossAfterL1: 1}

// Run builds, maps and records one experiment. A mapping failure does not
// fail the run; it yields a result marked Failed. Build errors, cancellation
// and sink errors are returned.
func (r *Runner) Run(ctx context.Context, req Request) (model.Result, error) {
	if r.Mapper == nil {
		return model.Result{}, errors.New("runner has no mapper")
	}
	logger := logging.OrDiscard(r.Logger)
	now := r.Now
	if now == nil {
		now = time.Now
	}

	builder, params, err := topology.Resolve(req.Topology, req.Params)
	if err != nil {
		return model.Result{}, err
	}
	task, err := builder.Task(params)
	if err != nil {
		return model.Result{}, fmt.Errorf("%s task name: %w", req.Topology, err)
	}
	var builderDefaults map[string]string
	if d, ok := builder.(topology.MapperDefaulter); ok {
		builderDefaults = d.MapperDefaults()
	}
	opts, err := mapper.ParseOptions(mapper.MergeValues(req.MapperDefaults, builderDefaults, req.MapperOptions))
	if err != nil {
		return model.Result{}, err
	}
	if tag := opts.Tag(); tag != "" {
		task += "_" + tag
	}
	modelName := req.Name
	if modelName == "" {
		modelName = builder.Model()
	}

	start := now()
	net, err := builder.Build(params)
	if err != nil {
		return model.Result{}, fmt.Errorf("build %s: %w", req.Topology, err)
	}
	net.Name = modelName
	if err := logNetwork(logger, net, task); err != nil {
		return model.Result{}, err
	}

	mid := now()
	stats, mapErr := r.Mapper.Map(ctx, net, opts)
	end := now()
	if mapErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.Result{}, ctxErr
		}
		logger.Error("mapping failed", "model", modelName, "task", task, "err", mapErr)
		stats = failedStats
	} else {
		logger.Info("losses",
			"model", modelName,
			"task", task,
			"lost", stats.SynapseLoss,
			"synapses", stats.Synapses,
			"lost_after_l1", stats.SynapseLossAfterL1,
			"relative", results.RelativeLoss(float64(stats.SynapseLoss), float64(stats.Synapses)),
		)
	}
	logger.Info("run finished", "model", modelName, "task", task, "total", end.Sub(start), "setup", end.Sub(mid))

	result := model.Result{
		VersionedRecord: storage.Versioned(),
		ID:              r.newID(),
		Model:           modelName,
		Task:            task,
		Topology:        builder.Name(),
		Timestamp:       model.FormatTimestamp(end),
		Params:          nonEmpty(params),
		MapperOptions:   opts.Values(),
		PerPopulation:   stats.PerProjection,
		Results:         measurements(stats, end.Sub(mid), end.Sub(start)),
	}
	if mapErr != nil {
		result.Failed = true
		result.Error = mapErr.Error()
	}
	if len(result.MapperOptions) == 0 {
		result.MapperOptions = nil
	}

	if err := r.record(ctx, result); err != nil {
		return result, err
	}
	return result, nil
}

func (r *Runner) record(ctx context.Context, result model.Result) error {
	if r.OutputDir != "" {
		path, err := results.WriteResultFile(r.OutputDir, result)
		if err != nil {
			return fmt.Errorf("write result file: %w", err)
		}
		if err := results.AppendRunIndex(r.OutputDir, results.RunIndexEntry{
			ID:        result.ID,
			Model:     result.Model,
			Task:      result.Task,
			File:      path,
			Timestamp: result.Timestamp,
			Failed:    result.Failed,
		}); err != nil {
			return fmt.Errorf("update run index: %w", err)
		}
	}
	if r.Store != nil {
		if err := r.Store.SaveResult(ctx, result); err != nil {
			return fmt.Errorf("save result: %w", err)
		}
	}
	return nil
}

func (r *Runner) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return uuid.NewString()
}

func logNetwork(logger *slog.Logger, net model.Network, task string) error {
	perProjection, total, err := connectivity.NetworkSynapses(net)
	if err != nil {
		return fmt.Errorf("count connections: %w", err)
	}
	logger.Info("network built",
		"model", net.Name,
		"task", task,
		"populations", len(net.Populations),
		"projections", len(net.Projections),
		"neurons", net.Neurons(),
		"connections", total,
	)
	if logger.Enabled(context.Background(), logging.LevelTrace) {
		for _, proj := range net.Projections {
			logger.Log(context.Background(), logging.LevelTrace, "projection",
				"label", proj.Label,
				"receptor", proj.Receptor,
				"kind", proj.Connector.Kind,
				"connections", perProjection[proj.Label],
			)
		}
	}
	return nil
}

func measurements(stats mapper.Stats, setup, total time.Duration) []model.Measurement {
	return []model.Measurement{
		{Type: "performance", Name: "setup_time", Value: setup.Seconds(), Units: "s", Measure: "time"},
		{Type: "performance", Name: "total_time", Value: total.Seconds(), Units: "s", Measure: "time"},
		{Type: "performance", Name: "synapses", Value: float64(stats.Synapses)},
		{Type: "performance", Name: "neurons", Value: float64(stats.Neurons)},
		{Type: "performance", Name: "synapse_loss", Value: float64(stats.SynapseLoss)},
		{Type: "performance", Name: "synapse_loss_after_l1", Value: float64(stats.SynapseLossAfterL1)},
	}
}

func nonEmpty(params topology.Params) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
