// Package runner delegates the lint and format commands to the external
// tools. It adds no logic of its own: output and exit codes are whatever the
// tools produce.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/stylekit/internal/log"
	"github.com/dkoosis/stylekit/pkg/bundle"
)

// Task names one of the four delegated commands.
type Task string

const (
	TaskLint        Task = "lint"
	TaskLintFix     Task = "lint:fix"
	TaskFormat      Task = "format"
	TaskFormatCheck Task = "format:check"
)

// Command returns the shell command the profile assigns to a task.
func Command(p *bundle.Profile, task Task) (string, error) {
	commands := p.Commands.ScriptCommands()
	cmd, ok := commands[string(task)]
	if !ok {
		return "", fmt.Errorf("unknown task %q", task)
	}
	if strings.TrimSpace(cmd) == "" {
		return "", fmt.Errorf("task %q has no command", task)
	}
	return cmd, nil
}

// Runner executes delegated commands in a project root.
type Runner struct {
	Root   string
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the task's command and returns the tool's exit code verbatim.
// The error is non-nil only when the tool could not be started at all.
func (r *Runner) Run(ctx context.Context, p *bundle.Profile, task Task) (int, error) {
	command, err := Command(p, task)
	if err != nil {
		return 0, err
	}
	return r.exec(ctx, task, command, r.Stdout, r.Stderr)
}

// Check runs lint and format:check concurrently and returns the highest exit
// code. Each tool's output is buffered so the two do not interleave.
func (r *Runner) Check(ctx context.Context, p *bundle.Profile) (int, error) {
	tasks := []Task{TaskLint, TaskFormatCheck}
	outs := make([]bytes.Buffer, len(tasks))
	errs := make([]bytes.Buffer, len(tasks))
	codes := make([]int, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			command, err := Command(p, task)
			if err != nil {
				return err
			}
			code, err := r.exec(gctx, task, command, &outs[i], &errs[i])
			codes[i] = code
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	worst := 0
	for i := range tasks {
		if r.Stdout != nil {
			_, _ = io.Copy(r.Stdout, &outs[i])
		}
		if r.Stderr != nil {
			_, _ = io.Copy(r.Stderr, &errs[i])
		}
		if codes[i] > worst {
			worst = codes[i]
		}
	}
	return worst, nil
}

func (r *Runner) exec(ctx context.Context, task Task, command string, stdout, stderr io.Writer) (int, error) {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return 0, fmt.Errorf("task %q has no command", task)
	}

	logger := log.WithComponent("runner")
	logger.Debug().Str("task", string(task)).Str("command", command).Msg("delegating")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Root
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Rule violations and formatting diffs land here; the code is the
		// tool's verdict, not ours.
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("run %q: %w", command, err)
}
