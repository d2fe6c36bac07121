package mode

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/huskycat-dev/huskycat/pkg/executor"
	"github.com/huskycat-dev/huskycat/pkg/runstore"
	"github.com/huskycat-dev/huskycat/pkg/tool"
)

// ErrPreviousFailure is returned by ExecuteValidation instead of forking
// when checkPreviousRun/handlePreviousFailure decide to abort, per
// spec.md §4.2. The caller (cmd/huskycat) maps it to exit code 1 rather
// than the generic internal-failure code.
var ErrPreviousFailure = errors.New("previous validation run failed, commit blocked")

// blockingGitHooksAdapter is git_hooks mode's default variant: it runs
// the fast tool subset inline and holds `git commit` until validation
// completes, per spec.md §4.1's per-mode defaults row.
type blockingGitHooksAdapter struct{ baseAdapter }

func (a *blockingGitHooksAdapter) Name() string { return "git_hooks" }

func (a *blockingGitHooksAdapter) Config() AdapterConfig {
	return AdapterConfig{
		OutputFormat: "minimal",
		Tools:        "fast",
		Interactive:  false,
		FailFast:     true,
		Progress:     false,
		Color:        false,
		FixPolicy:    fixPolicySafeOnly,
	}
}

func (a *blockingGitHooksAdapter) ToolSelection(files []string) []string {
	return a.fastToolNames(files)
}

// FormatOutput renders the minimal form: silence on success, one line
// per error on failure. A hook's value is in staying out of the way.
func (a *blockingGitHooksAdapter) FormatOutput(results map[string][]tool.ValidationResult, summary Summary) string {
	return minimalOutput(results, summary)
}

// nonBlockingGitHooksAdapter is git_hooks mode's detached variant: the
// parent forks a child through store and returns immediately, leaving
// the child to run the full tool set, show progress, and persist the
// run record for the next hook invocation to check.
type nonBlockingGitHooksAdapter struct {
	baseAdapter
	store *runstore.Store
}

func (a *nonBlockingGitHooksAdapter) Name() string { return "git_hooks" }

func (a *nonBlockingGitHooksAdapter) Config() AdapterConfig {
	return AdapterConfig{
		OutputFormat: "minimal", // the parent's view; the child renders "human" itself
		Tools:        "all",
		Interactive:  false,
		FailFast:     false,
		Progress:     true, // in the detached child
		Color:        false,
		FixPolicy:    fixPolicySafeOnly,
	}
}

func (a *nonBlockingGitHooksAdapter) ToolSelection(files []string) []string {
	return a.allToolNames(files)
}

func (a *nonBlockingGitHooksAdapter) FormatOutput(results map[string][]tool.ValidationResult, summary Summary) string {
	return minimalOutput(results, summary)
}

// ExecuteValidation forks a detached child to run tasks against files
// and returns its pid, fulfilling the non-blocking adapter's additional
// contract method from spec.md §4.1. The parent call path never runs
// tasks itself; childArgs re-invokes the same binary with
// constants.RunChildFlag, letting the child rebuild its own Task list
// from files rather than trying to serialize executor.Task values.
//
// Before forking, it calls checkPreviousRun(): per spec.md §4.2, a
// failed prior run blocks the commit unless handlePreviousFailure's
// prompt says otherwise. A non-TTY stdin always aborts (scenario S2);
// an interactive terminal is prompted [c]ontinue/[a]bort/[r]etry, with
// both continue and retry proceeding to fork (retry has no extra
// bookkeeping beyond running again — the new run simply overwrites
// last_run.json once it completes).
func (a *nonBlockingGitHooksAdapter) ExecuteValidation(files []string, tasks []executor.Task) (int, error) {
	if prev, err := a.store.CheckPreviousRun(); err == nil && prev != nil {
		if runstore.HandlePreviousFailure(prev, os.Stdin) == runstore.DecisionAbort {
			fmt.Fprintf(os.Stderr, "huskycat: previous validation run %s failed with %d error(s); commit blocked\n", prev.RunID, prev.Errors)
			return 0, ErrPreviousFailure
		}
	}

	runID := runstore.NewRunID()
	childArgs := append([]string{"validate"}, files...)
	return a.store.ForkValidation(runID, files, childArgs)
}

// minimalOutput is shared by both git-hooks variants: nothing on
// success, a terse per-file error count on failure.
func minimalOutput(results map[string][]tool.ValidationResult, summary Summary) string {
	if summary.Success {
		return ""
	}
	var b strings.Builder
	for file, fileResults := range results {
		for _, r := range fileResults {
			if !r.Success {
				fmt.Fprintf(&b, "%s: %s failed (%d error(s))\n", file, r.Tool, r.ErrorCount())
			}
		}
	}
	fmt.Fprintf(&b, "%d error(s), %d warning(s)\n", summary.Errors, summary.Warnings)
	return b.String()
}
