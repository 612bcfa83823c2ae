package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"mapbench/internal/config"
	"mapbench/internal/experiment"
	"mapbench/internal/logging"
	"mapbench/internal/mapper"
	"mapbench/internal/storage"
)

// app carries what every command needs after flag parsing.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   storage.Store
	jsonOut bool
	out     io.Writer
}

func loadApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	return &app{
		cfg:     cfg,
		logger:  logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
		jsonOut: jsonOut,
		out:     cmd.OutOrStdout(),
	}, nil
}

func (a *app) openStore(ctx context.Context) error {
	store, err := storage.NewStore(a.cfg.Store.Kind, a.cfg.Store.Path)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return fmt.Errorf("init %s store: %w", a.cfg.Store.Kind, err)
	}
	a.store = store
	return nil
}

func (a *app) close() {
	if a.store != nil {
		_ = storage.CloseIfSupported(a.store)
	}
}

func (a *app) runner() (*experiment.Runner, error) {
	m, err := mapper.New(a.cfg.Mapper, a.logger)
	if err != nil {
		return nil, err
	}
	return &experiment.Runner{
		Mapper:    m,
		Store:     a.store,
		OutputDir: a.cfg.OutputDir,
		Logger:    a.logger,
	}, nil
}

// persistent reports whether results outlive the process.
func (a *app) persistent() bool {
	return a.cfg.Store.Kind != "" && a.cfg.Store.Kind != "memory"
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseAssignments reads repeated key=value flags.
func parseAssignments(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", v)
		}
		out[key] = value
	}
	return out, nil
}

