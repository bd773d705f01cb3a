// Command stylekit manages the lint/format configuration bundle of a web
// project: it materializes the config documents, verifies their mutual
// consistency, and delegates lint/format runs to the external tools.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dkoosis/stylekit/internal/log"
	"github.com/dkoosis/stylekit/pkg/apply"
	"github.com/dkoosis/stylekit/pkg/bundle"
	"github.com/dkoosis/stylekit/pkg/doctor"
	"github.com/dkoosis/stylekit/pkg/manifest"
	"github.com/dkoosis/stylekit/pkg/runner"
	"github.com/dkoosis/stylekit/pkg/sarif"
	"github.com/dkoosis/stylekit/pkg/watch"
)

// Exit codes. Delegated commands pass the external tool's code through
// unchanged instead.
const (
	exitOK       = 0
	exitError    = 1
	exitFindings = 2
)

func main() {
	log.Configure(log.Config{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout))
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	if len(args) < 1 {
		usage()
		return exitError
	}

	var (
		code int
		err  error
	)
	switch cmd := args[0]; cmd {
	case "init":
		code, err = runInit(args[1:])
	case "apply":
		code, err = runApply(args[1:], stdout, false)
	case "plan":
		code, err = runApply(args[1:], stdout, true)
	case "doctor":
		code, err = runDoctor(args[1:], stdout)
	case "lint", "lint:fix", "format", "format:check":
		code, err = runDelegated(ctx, runner.Task(cmd), args[1:], stdout)
	case "check":
		code, err = runCheck(ctx, args[1:], stdout)
	case "watch":
		code, err = runWatch(ctx, args[1:], stdout)
	default:
		usage()
		return exitError
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "stylekit: %v\n", err)
		return exitError
	}
	return code
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: stylekit <command> [options]")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  init          Write a starter manifest")
	fmt.Fprintln(os.Stderr, "  plan          Show what apply would do, touching nothing")
	fmt.Fprintln(os.Stderr, "  apply         Merge the config bundle into the project tree")
	fmt.Fprintln(os.Stderr, "  doctor        Check bundle documents for consistency (SARIF)")
	fmt.Fprintln(os.Stderr, "  lint          Run the external linter")
	fmt.Fprintln(os.Stderr, "  lint:fix      Run the external linter with fixes")
	fmt.Fprintln(os.Stderr, "  format        Run the external formatter")
	fmt.Fprintln(os.Stderr, "  format:check  Check formatting without writing")
	fmt.Fprintln(os.Stderr, "  check         Run lint and format:check together")
	fmt.Fprintln(os.Stderr, "  watch         Re-run doctor when bundle files change")
}

// commonFlags registers the flags every subcommand shares.
func commonFlags(fs *flag.FlagSet) (manifestPath, root *string) {
	manifestPath = fs.String("manifest", "", "path to the manifest (default stylekit.yaml if present)")
	root = fs.String("root", ".", "project root")
	fs.SetOutput(os.Stderr)
	return manifestPath, root
}

func runInit(args []string) (int, error) {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	force := fs.Bool("force", false, "overwrite an existing manifest")
	path := fs.String("manifest", manifest.DefaultPath, "manifest path to create")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}

	if !*force {
		if _, err := os.Stat(*path); err == nil {
			return exitError, fmt.Errorf("%s already exists (use -force to overwrite)", *path)
		}
	}
	if err := os.WriteFile(*path, []byte(manifest.Starter), 0o644); err != nil {
		return exitError, fmt.Errorf("write manifest: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", *path)
	return exitOK, nil
}

func runApply(args []string, stdout io.Writer, dryRun bool) (int, error) {
	name := "apply"
	if dryRun {
		name = "plan"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	manifestPath, root := commonFlags(fs)
	force := fs.Bool("force", false, "overwrite diverging non-mergeable files")
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}

	b, _, err := loadAndRender(*manifestPath)
	if err != nil {
		return exitError, err
	}

	actions, err := apply.Run(b, apply.Options{Root: *root, Force: *force, DryRun: dryRun})
	if err != nil {
		return exitError, err
	}
	for _, a := range actions {
		fmt.Fprintf(stdout, "%-10s %s\n", a.Kind, a.Path)
	}
	return exitOK, nil
}

func runDoctor(args []string, stdout io.Writer) (int, error) {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	manifestPath, root := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}

	profile, err := manifest.Load(*manifestPath)
	if err != nil {
		return exitError, err
	}

	report, err := doctor.Run(doctor.Config{Root: *root, Profile: profile})
	if err != nil {
		return exitError, err
	}
	if err := sarif.NewEncoder(stdout).Encode(report); err != nil {
		return exitError, err
	}
	if hasErrorFindings(report) {
		return exitFindings, nil
	}
	return exitOK, nil
}

func runDelegated(ctx context.Context, task runner.Task, args []string, stdout io.Writer) (int, error) {
	fs := flag.NewFlagSet(string(task), flag.ContinueOnError)
	manifestPath, root := commonFlags(fs)
	sarifOut := fs.Bool("sarif", false, "convert the linter's JSON report to SARIF (lint only, assumes eslint)")
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}

	profile, err := manifest.Load(*manifestPath)
	if err != nil {
		return exitError, err
	}

	if *sarifOut && task == runner.TaskLint {
		return runLintSARIF(ctx, &profile, *root, stdout)
	}

	r := &runner.Runner{Root: *root, Stdout: stdout, Stderr: os.Stderr}
	return r.Run(ctx, &profile, task)
}

// runLintSARIF delegates to the linter with a JSON reporter and rewraps the
// report as SARIF. Exit codes still pass through: the linter decides.
func runLintSARIF(ctx context.Context, profile *bundle.Profile, root string, stdout io.Writer) (int, error) {
	jsonProfile := *profile
	jsonProfile.Commands.Lint = profile.Commands.Lint + " --format json"

	var report bytes.Buffer
	r := &runner.Runner{Root: root, Stdout: &report, Stderr: os.Stderr}
	code, err := r.Run(ctx, &jsonProfile, runner.TaskLint)
	if err != nil {
		return exitError, err
	}

	results, err := runner.ConvertESLintJSON(report.Bytes(), root)
	if err != nil {
		return exitError, err
	}

	out := sarif.NewLog()
	run := sarif.NewRun("eslint", nil)
	run.Results = results
	out.Runs = append(out.Runs, run)
	if err := sarif.NewEncoder(stdout).Encode(out); err != nil {
		return exitError, err
	}
	return code, nil
}

func runCheck(ctx context.Context, args []string, stdout io.Writer) (int, error) {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	manifestPath, root := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}

	profile, err := manifest.Load(*manifestPath)
	if err != nil {
		return exitError, err
	}

	r := &runner.Runner{Root: *root, Stdout: stdout, Stderr: os.Stderr}
	return r.Check(ctx, &profile)
}

func runWatch(ctx context.Context, args []string, stdout io.Writer) (int, error) {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	manifestPath, root := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}

	profile, err := manifest.Load(*manifestPath)
	if err != nil {
		return exitError, err
	}

	enc := sarif.NewEncoder(stdout)
	err = watch.Run(ctx, watch.Config{
		Root:    *root,
		Profile: profile,
		OnReport: func(report *sarif.Log) {
			if err := enc.Encode(report); err != nil {
				fmt.Fprintf(os.Stderr, "stylekit: encode report: %v\n", err)
			}
		},
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return exitError, err
	}
	return exitOK, nil
}

func loadAndRender(manifestPath string) (*bundle.Bundle, bundle.Profile, error) {
	profile, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, bundle.Profile{}, err
	}
	b, err := profile.Render()
	if err != nil {
		return nil, bundle.Profile{}, err
	}
	return b, profile, nil
}

func hasErrorFindings(report *sarif.Log) bool {
	for _, run := range report.Runs {
		for _, result := range run.Results {
			if result.Level == "error" {
				return true
			}
		}
	}
	return false
}
