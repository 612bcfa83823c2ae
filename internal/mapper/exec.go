package mapper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"mapbench/internal/logging"
	"mapbench/internal/model"
)

// Request is the JSON document an engine reads from stdin.
type Request struct {
	Network model.Network     `json:"network"`
	Options map[string]string `json:"options,omitempty"`
}

// Exec runs an external engine per mapping. The engine reads a Request from
// stdin and writes Stats as JSON to stdout.
type Exec struct {
	Command string
	Args    []string
	// Timeout bounds one mapping call. Zero means no limit beyond ctx.
	Timeout time.Duration
	Logger  *slog.Logger
}

func (e *Exec) Map(ctx context.Context, net model.Network, opts Options) (Stats, error) {
	logger := logging.OrDiscard(e.Logger)
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(Request{Network: net, Options: opts.Values()})
	if err != nil {
		return Stats{}, fmt.Errorf("encode mapping request: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Command, e.Args...)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	started := time.Now()
	logger.Debug("starting mapping engine", "command", e.Command, "network", net.Name, "request_bytes", len(payload))
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return Stats{}, fmt.Errorf("%w: %s: %v%s", ErrMappingFailed, e.Command, err, stderrSuffix(stderr.String()))
	}
	logger.Debug("mapping engine finished", "command", e.Command, "elapsed", time.Since(started))

	var stats Stats
	if err := json.Unmarshal(stdout.Bytes(), &stats); err != nil {
		return Stats{}, fmt.Errorf("%w: decode engine output: %v", ErrMappingFailed, err)
	}
	if err := stats.validate(); err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrMappingFailed, err)
	}
	return stats, nil
}

func stderrSuffix(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) > 512 {
		s = s[len(s)-512:]
	}
	return ": " + s
}
