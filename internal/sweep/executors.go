package sweep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"mapbench/internal/experiment"
	"mapbench/internal/mapper"
	"mapbench/internal/model"
)

// InProcess runs tasks with an experiment runner in this process.
// MapperDefaults play the role of configured mapper options.
type InProcess struct {
	Runner         *experiment.Runner
	MapperDefaults map[string]string
}

func (e InProcess) Execute(ctx context.Context, task Task) (string, error) {
	result, err := e.Runner.Run(ctx, experiment.Request{
		Topology:       task.Topology,
		Params:         task.Params(),
		Name:           task.Model,
		MapperDefaults: e.MapperDefaults,
		MapperOptions:  task.MapperOptions(),
	})
	if err != nil {
		return "", err
	}
	return result.ID, nil
}

// Subprocess re-invokes a mapbench binary per task:
//
//	<Executable> [Args...] run <topology> --name <model> --set k=v ... --mapper-option k=v ... --json
//
// and reads the printed result to learn its ID.
type Subprocess struct {
	Executable string
	// Args are placed before the run command, e.g. --config.
	Args []string
}

func (e Subprocess) Command(task Task) []string {
	args := append([]string(nil), e.Args...)
	args = append(args, "run", task.Topology, "--name", task.Model)
	for _, a := range task.Args {
		flag := "--set"
		if mapper.IsOption(a.Name) {
			flag = "--mapper-option"
		}
		args = append(args, flag, a.Name+"="+a.Value)
	}
	return append(args, "--json")
}

func (e Subprocess) Execute(ctx context.Context, task Task) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Executable, e.Command(task)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s: %w: %s", e.Executable, err, msg)
		}
		return "", fmt.Errorf("%s: %w", e.Executable, err)
	}

	var result model.Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return "", fmt.Errorf("decode run output: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("run output carries no result id")
	}
	return result.ID, nil
}
