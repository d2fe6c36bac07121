package mode

import (
	"errors"
	"testing"

	"github.com/huskycat-dev/huskycat/pkg/runstore"
)

// TestNonBlockingGitHooksAdapter_ExecuteValidation_AbortsOnPreviousFailure
// covers scenario S2: a failed last_run.json and non-TTY stdin (the case
// in any test binary) must block the commit without forking a child.
func TestNonBlockingGitHooksAdapter_ExecuteValidation_AbortsOnPreviousFailure(t *testing.T) {
	store := runstore.New(t.TempDir())
	if err := store.SaveRun(runstore.ValidationRun{RunID: "1", Success: false, Errors: 3}); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	a := &nonBlockingGitHooksAdapter{store: store}
	pid, err := a.ExecuteValidation([]string{"x.py"}, nil)

	if !errors.Is(err, ErrPreviousFailure) {
		t.Fatalf("ExecuteValidation() error = %v, want ErrPreviousFailure", err)
	}
	if pid != 0 {
		t.Errorf("ExecuteValidation() pid = %d, want 0 (no fork)", pid)
	}
}

// TestNonBlockingGitHooksAdapter_ExecuteValidation_ForksWithoutPriorFailure
// checks the gating logic alone: with no failed prior run, execution
// falls through to ForkValidation rather than short-circuiting on
// ErrPreviousFailure. runstore's executable-resolution hook is
// unexported, so this still spawns (and briefly leaves running) one
// real child process re-invoking the test binary; it is detached and
// self-reaping, the same as ForkValidation's own package tests without
// a stubbed executable.
func TestNonBlockingGitHooksAdapter_ExecuteValidation_ForksWithoutPriorFailure(t *testing.T) {
	store := runstore.New(t.TempDir())
	if err := store.SaveRun(runstore.ValidationRun{RunID: "1", Success: true}); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	a := &nonBlockingGitHooksAdapter{store: store}
	_, err := a.ExecuteValidation([]string{"x.py"}, nil)

	if errors.Is(err, ErrPreviousFailure) {
		t.Errorf("ExecuteValidation() error = %v, want a fork attempt instead of the previous-failure short-circuit", err)
	}
}
