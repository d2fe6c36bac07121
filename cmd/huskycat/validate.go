package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/huskycat-dev/huskycat/pkg/constants"
	"github.com/huskycat-dev/huskycat/pkg/executor"
	"github.com/huskycat-dev/huskycat/pkg/gitutil"
	"github.com/huskycat-dev/huskycat/pkg/mode"
	"github.com/huskycat-dev/huskycat/pkg/progress"
	"github.com/huskycat-dev/huskycat/pkg/runstore"
	"github.com/huskycat-dev/huskycat/pkg/stringutil"
	"github.com/huskycat-dev/huskycat/pkg/tool"
)

func newValidateCommand() *cobra.Command {
	var staged bool
	var fix bool

	cmd := &cobra.Command{
		Use:   "validate [files...]",
		Short: "Run validation over the working tree, a staged set, or explicit files",
		RunE: func(cmd *cobra.Command, args []string) error {
			os.Exit(runValidate(cmd.Context(), args, staged, fix))
			return nil
		},
	}
	cmd.Flags().BoolVar(&staged, "staged", false, "Validate only the git index's staged files")
	cmd.Flags().BoolVar(&fix, "fix", false, "Accepted but has no effect; whether a tool rewrites files depends on its own invocation")
	return cmd
}

// runValidate is the shared body behind both a normal invocation and a
// forked non-blocking child: it resolves the file list, picks the
// adapter, runs the executor, and either forks (parent) or persists and
// prints (child / every other mode). It returns the process's exit code
// rather than an error so validation failures (as opposed to internal
// ones) can produce exit 1 without going through cobra's error path.
//
// fix is accepted and not read: runValidate applies no autofix itself,
// and the tools it runs are invoked the same way with or without it,
// as with pkg/mcpserver's runOptions.Fix.
func runValidate(ctx context.Context, args []string, staged, fix bool) int {
	started := time.Now().UTC()
	rt, err := newRuntime()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	files, err := resolveFiles(args, staged, rt)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if len(files) == 0 {
		return 0
	}

	detected := mode.Detect(mode.DetectOptions{OverrideMode: rt.resolved.Mode, Args: os.Args[1:]})
	// nonBlocking picks git_hooks's variant for both the forking parent
	// and the forked child alike (the child needs the same "all tools,
	// show progress" Config() the parent chose); only the fork call
	// itself below is gated on runChildFlag, so the child runs instead
	// of re-forking.
	adapter := mode.New(detected, rt.registry, rt.store, nonBlockingEnabled())

	if forker, ok := adapter.(interface {
		ExecuteValidation([]string, []executor.Task) (int, error)
	}); ok && !runChildFlag {
		pid, err := forker.ExecuteValidation(files, nil)
		if errors.Is(err, mode.ErrPreviousFailure) {
			// ExecuteValidation already wrote the previous-failure
			// message to stderr; this is a blocked commit, not an
			// internal failure, so it gets validation's own exit
			// code 1 rather than 2.
			return 1
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "huskycat: validating in background (pid %d)\n", pid)
		return 0
	}

	cfg := adapter.Config()
	toolNames := adapter.ToolSelection(files)
	if cfg.Tools == "configured" && len(rt.resolved.Tools) > 0 {
		toolNames = narrowToConfigured(toolNames, rt.resolved.Tools)
	}

	spinner := progress.StartDetecting("checking tool availability...")
	available := availabilitySet(rt.registry.Available(ctx))
	spinner.Stop()

	tools := resolveTools(toolNames, rt.registry, available)
	tasks := executor.BuildTasks(tools, files)

	var panel *progress.Panel
	var onUpdate func(executor.Task, executor.Status)
	if cfg.Progress {
		panel = progress.New()
		panel.Start(toolNames)
		defer panel.Stop()
		onUpdate = progressCallback(panel)
	}

	results, _, err := executor.Run(ctx, tasks, executor.Options{
		MaxWorkers: rt.resolved.MaxWorkers,
		FailFast:   cfg.FailFast,
		OnUpdate:   onUpdate,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	byFile := resultsByFile(results)
	summary := mode.NewSummary(byFile)

	runID := runIDFlag
	if runID == "" {
		runID = runstore.NewRunID()
	}
	saveRun(rt, runID, started, files, toolNames, summary)

	if out := adapter.FormatOutput(byFile, summary); out != "" {
		fmt.Println(out)
	}

	if !summary.Success {
		return 1
	}
	return 0
}

// narrowToConfigured intersects an adapter's tool selection with the
// project config's `tools:` list, the "configured" contract
// cliAdapter.Config() documents. Names are compared after
// stringutil.NormalizeToolName so a config file that spells an entry
// "shellcheck-lint" or "mypy-linter" still matches the dispatcher's
// canonical "shellcheck"/"mypy" registry names.
func narrowToConfigured(selected, configured []string) []string {
	want := make(map[string]bool, len(configured))
	for _, name := range configured {
		want[stringutil.NormalizeToolName(name)] = true
	}
	var out []string
	for _, name := range selected {
		if want[stringutil.NormalizeToolName(name)] {
			out = append(out, name)
		}
	}
	return out
}

func resolveFiles(args []string, staged bool, rt *runtime) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if staged {
		return gitutil.StagedFiles()
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return walkValidatable(cwd, rt.registry)
}

func nonBlockingEnabled() bool {
	v := os.Getenv(constants.EnvNonBlocking)
	return v != "0" && v != "false"
}

func resultsByFile(results []executor.Result) map[string][]tool.ValidationResult {
	out := map[string][]tool.ValidationResult{}
	for _, r := range results {
		out[r.Task.File] = append(out[r.Task.File], r.Value)
	}
	return out
}

func saveRun(rt *runtime, runID string, started time.Time, files, toolsRun []string, summary mode.Summary) {
	run := runstore.ValidationRun{
		RunID:     runID,
		Started:   started.Format(time.RFC3339),
		Completed: time.Now().UTC().Format(time.RFC3339),
		Files:     files,
		Success:   summary.Success,
		ToolsRun:  toolsRun,
		Errors:    summary.Errors,
		Warnings:  summary.Warnings,
		PID:       os.Getpid(),
	}
	if !summary.Success {
		run.ExitCode = 1
	}
	if err := rt.store.SaveRun(run); err != nil {
		fmt.Fprintf(os.Stderr, "huskycat: run record not saved: %v\n", err)
	}
}

// progressCallback adapts executor's (Task, Status) transitions to
// progress.Panel.UpdateTool, tracking per-tool file counts under its own
// lock since OnUpdate fires concurrently from executor worker goroutines.
func progressCallback(panel *progress.Panel) func(executor.Task, executor.Status) {
	var mu sync.Mutex
	processed := map[string]int{}

	return func(task executor.Task, status executor.Status) {
		name := task.Tool.Name()
		state := progress.StatePending
		switch status {
		case executor.StatusRunning:
			state = progress.StateRunning
		case executor.StatusCompleted:
			state = progress.StateSuccess
		case executor.StatusFailed, executor.StatusTimedOut:
			state = progress.StateFailed
		case executor.StatusSkipped:
			state = progress.StateSkipped
		}

		files := 0
		if state == progress.StateSuccess || state == progress.StateFailed || state == progress.StateSkipped {
			mu.Lock()
			processed[name]++
			files = processed[name]
			mu.Unlock()
		}
		panel.UpdateTool(name, state, 0, 0, files)
	}
}
