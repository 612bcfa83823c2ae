// Package mapbench is the library entry point for running mapping benchmarks
// without the command line tool.
package mapbench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"mapbench/internal/config"
	"mapbench/internal/experiment"
	"mapbench/internal/logging"
	"mapbench/internal/mapper"
	"mapbench/internal/model"
	"mapbench/internal/results"
	"mapbench/internal/storage"
	"mapbench/internal/sweep"
	"mapbench/internal/topology"
)

const (
	defaultOutputDir = "results"
	defaultDBPath    = "mapbench.db"
)

type Options struct {
	StoreKind string
	DBPath    string
	OutputDir string

	// MapperCommand starts an external mapping engine. Without it networks
	// are mapped losslessly.
	MapperCommand string
	MapperArgs    []string
	MapperTimeout time.Duration
	// MapperOptions apply to every run unless a topology or request overrides
	// them.
	MapperOptions map[string]string

	Logger *slog.Logger
}

type Client struct {
	store         storage.Store
	runner        *experiment.Runner
	outputDir     string
	mapperOptions map[string]string
	logger        *slog.Logger

	initMu sync.Mutex
	inited bool
}

type RunRequest struct {
	Topology      string
	Params        map[string]string
	Name          string
	MapperOptions map[string]string
}

type RunSummary struct {
	ResultID           string
	Model              string
	Task               string
	File               string
	Neurons            int
	Synapses           int
	SynapseLoss        int
	SynapseLossAfterL1 int
	RelativeLoss       float64
	SetupTime          time.Duration
	TotalTime          time.Duration
	Failed             bool
	Error              string
}

type SweepRequest struct {
	File    string
	Workers int
}

type SweepSummary struct {
	SweepID   string
	Tasks     int
	ResultIDs []string
	Failures  []string
}

type RunsRequest struct {
	Model string
	Limit int
}

type RunItem struct {
	ResultID     string
	Model        string
	Task         string
	Timestamp    string
	Synapses     int
	RelativeLoss float64
	Failed       bool
}

type ModelSummary struct {
	Model            string
	Tasks            int
	Failures         int
	MeanRelativeLoss float64
	StdRelativeLoss  float64
}

type TopologyItem struct {
	Name   string
	Model  string
	Params []string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = defaultOutputDir
	}
	logger := logging.OrDiscard(opts.Logger)

	mapperCfg := config.MapperConfig{Kind: "lossless"}
	if opts.MapperCommand != "" {
		mapperCfg = config.MapperConfig{
			Kind:    "exec",
			Command: opts.MapperCommand,
			Args:    opts.MapperArgs,
			Timeout: opts.MapperTimeout,
		}
	}
	m, err := mapper.New(mapperCfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store: store,
		runner: &experiment.Runner{
			Mapper:    m,
			Store:     store,
			OutputDir: outputDir,
			Logger:    logger,
		},
		outputDir:     outputDir,
		mapperOptions: opts.MapperOptions,
		logger:        logger,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Init prepares the result store. Other methods call it on first use.
func (c *Client) Init(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()
	if c.inited {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.inited = true
	return nil
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Topology == "" {
		return RunSummary{}, errors.New("run requires a topology")
	}
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	result, err := c.runner.Run(ctx, experiment.Request{
		Topology:       req.Topology,
		Params:         topology.Params(req.Params),
		Name:           req.Name,
		MapperDefaults: c.mapperOptions,
		MapperOptions:  req.MapperOptions,
	})
	if err != nil {
		return RunSummary{}, err
	}
	return c.summarizeRun(result), nil
}

func (c *Client) Sweep(ctx context.Context, req SweepRequest) (SweepSummary, error) {
	if req.File == "" {
		return SweepSummary{}, errors.New("sweep requires a benchmarks file")
	}
	if err := c.Init(ctx); err != nil {
		return SweepSummary{}, err
	}

	sweeper := &sweep.Sweeper{
		Executor: sweep.InProcess{Runner: c.runner, MapperDefaults: c.mapperOptions},
		Store:    c.store,
		Workers:  req.Workers,
		Mode:     "inprocess",
		Logger:   c.logger,
	}
	record, err := sweeper.Run(ctx, req.File)
	summary := SweepSummary{
		SweepID:   record.ID,
		Tasks:     record.Tasks,
		ResultIDs: record.ResultIDs,
		Failures:  record.Failures,
	}
	return summary, err
}

// Runs lists stored results, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	stored, err := c.store.ListResults(ctx, req.Model)
	if err != nil {
		return nil, err
	}
	out := make([]RunItem, 0, min(len(stored), req.Limit))
	for _, r := range slices.Backward(stored) {
		if len(out) == req.Limit {
			break
		}
		synapses := measurement(r, "synapses")
		out = append(out, RunItem{
			ResultID:     r.ID,
			Model:        r.Model,
			Task:         r.Task,
			Timestamp:    r.Timestamp,
			Synapses:     int(synapses),
			RelativeLoss: results.RelativeLoss(measurement(r, "synapse_loss"), synapses),
			Failed:       r.Failed,
		})
	}
	return out, nil
}

// Summarize aggregates the result files of dir, or of the output directory
// when dir is empty.
func (c *Client) Summarize(_ context.Context, dir string) ([]ModelSummary, error) {
	if dir == "" {
		dir = c.outputDir
	}
	loaded, err := results.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", dir, err)
	}
	series := results.Summarize(loaded)
	out := make([]ModelSummary, 0, len(series))
	for _, s := range series {
		out = append(out, ModelSummary{
			Model:            s.Model,
			Tasks:            len(s.Points),
			Failures:         s.Failures,
			MeanRelativeLoss: s.MeanRelativeLoss,
			StdRelativeLoss:  s.StdRelativeLoss,
		})
	}
	return out, nil
}

func Topologies() []TopologyItem {
	names := topology.Names()
	out := make([]TopologyItem, 0, len(names))
	for _, name := range names {
		b, err := topology.Lookup(name)
		if err != nil {
			continue
		}
		item := TopologyItem{Name: name, Model: b.Model()}
		for _, p := range b.Params() {
			item.Params = append(item.Params, p.Name)
		}
		out = append(out, item)
	}
	return out
}

func (c *Client) summarizeRun(r model.Result) RunSummary {
	synapses := measurement(r, "synapses")
	lost := measurement(r, "synapse_loss")
	return RunSummary{
		ResultID:           r.ID,
		Model:              r.Model,
		Task:               r.Task,
		File:               filepath.Join(c.outputDir, results.FileName(r.Model, r.Task)),
		Neurons:            int(measurement(r, "neurons")),
		Synapses:           int(synapses),
		SynapseLoss:        int(lost),
		SynapseLossAfterL1: int(measurement(r, "synapse_loss_after_l1")),
		RelativeLoss:       results.RelativeLoss(lost, synapses),
		SetupTime:          time.Duration(measurement(r, "setup_time") * float64(time.Second)),
		TotalTime:          time.Duration(measurement(r, "total_time") * float64(time.Second)),
		Failed:             r.Failed,
		Error:              r.Error,
	}
}

func measurement(r model.Result, name string) float64 {
	v, _ := r.Measurement(name)
	return v
}
