package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mapbench/internal/logging"
	"mapbench/internal/model"
	"mapbench/internal/storage"
)

// Executor runs one task and returns the ID of the result it recorded.
type Executor interface {
	Execute(ctx context.Context, task Task) (string, error)
}

// Report lists what a sweep produced, in task order.
type Report struct {
	Tasks     int
	ResultIDs []string
	Failures  []Failure
}

type Failure struct {
	Task Task
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Task, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Run executes tasks one by one when workers <= 1, otherwise with at most
// workers in flight. A failing task does not stop the others; every failure
// is reported and joined into the returned error.
func Run(ctx context.Context, tasks []Task, exec Executor, workers int) (Report, error) {
	ids := make([]string, len(tasks))
	errs := make([]error, len(tasks))

	if workers <= 1 {
		for i, task := range tasks {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				continue
			}
			ids[i], errs[i] = exec.Execute(ctx, task)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(workers)
		for i, task := range tasks {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					return nil
				}
				ids[i], errs[i] = exec.Execute(ctx, task)
				return nil
			})
		}
		_ = g.Wait()
	}

	report := Report{Tasks: len(tasks)}
	var joined []error
	for i, task := range tasks {
		if errs[i] != nil {
			f := Failure{Task: task, Err: errs[i]}
			report.Failures = append(report.Failures, f)
			joined = append(joined, f)
			continue
		}
		if ids[i] != "" {
			report.ResultIDs = append(report.ResultIDs, ids[i])
		}
	}
	return report, errors.Join(joined...)
}

// Sweeper runs a benchmarks file and keeps a sweep record in the store.
type Sweeper struct {
	Executor Executor
	Store    storage.Store
	Workers  int
	Mode     string
	Logger   *slog.Logger
	Now      func() time.Time
}

func (s *Sweeper) Run(ctx context.Context, file string) (model.Sweep, error) {
	logger := logging.OrDiscard(s.Logger)
	now := s.Now
	if now == nil {
		now = time.Now
	}

	benchmarks, err := LoadFile(file)
	if err != nil {
		return model.Sweep{}, err
	}
	tasks := Expand(benchmarks)

	record := model.Sweep{
		VersionedRecord: storage.Versioned(),
		ID:              uuid.NewString(),
		File:            file,
		Mode:            s.Mode,
		Tasks:           len(tasks),
		StartedAtUTC:    now().UTC().Format(time.RFC3339),
	}
	if err := s.save(ctx, record); err != nil {
		return model.Sweep{}, err
	}
	logger.Info("sweep started", "id", record.ID, "file", file, "tasks", len(tasks), "workers", s.Workers, "mode", s.Mode)

	report, runErr := Run(ctx, tasks, s.Executor, s.Workers)
	record.ResultIDs = report.ResultIDs
	for _, f := range report.Failures {
		record.Failures = append(record.Failures, f.Error())
		logger.Error("task failed", "sweep", record.ID, "task", f.Task.String(), "err", f.Err)
	}
	record.CompletedAtUTC = now().UTC().Format(time.RFC3339)
	// The record is written even when the context is done.
	if err := s.save(context.WithoutCancel(ctx), record); err != nil {
		return record, errors.Join(runErr, err)
	}
	logger.Info("sweep finished", "id", record.ID, "results", len(record.ResultIDs), "failures", len(record.Failures))
	return record, runErr
}

func (s *Sweeper) save(ctx context.Context, record model.Sweep) error {
	if s.Store == nil {
		return nil
	}
	if err := s.Store.SaveSweep(ctx, record); err != nil {
		return fmt.Errorf("save sweep: %w", err)
	}
	return nil
}
