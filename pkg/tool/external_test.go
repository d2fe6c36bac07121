package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeExecutor struct {
	exitCode       int
	stdout, stderr string
	err            error
}

func (f fakeExecutor) Execute(ctx context.Context, tool string, args []string, cwd string) (int, string, string, error) {
	return f.exitCode, f.stdout, f.stderr, f.err
}

func TestExternalTool_Run_Success(t *testing.T) {
	exec := fakeExecutor{exitCode: 0, stdout: "all good"}
	et := NewExternalTool("black", []string{"py"}, exec)

	result, err := et.Run(context.Background(), "a.py")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Success {
		t.Errorf("Success = false, want true")
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}
}

func TestExternalTool_Run_ClassifiesDiagnostics(t *testing.T) {
	exec := fakeExecutor{
		exitCode: 1,
		stdout:   "a.py:3:1: E501 line too long\na.py:5:1: warning: unused import",
	}
	et := NewExternalTool("flake8", []string{"py"}, exec)

	result, err := et.Run(context.Background(), "a.py")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Success {
		t.Error("Success = true, want false (exit code 1)")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want 1 entry", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want 1 entry", result.Warnings)
	}
}

func TestExternalTool_Run_SanitizesSecretLikeIdentifiers(t *testing.T) {
	exec := fakeExecutor{
		exitCode: 1,
		stdout:   "a.py:1:1: E999 GITHUB_TOKEN referenced in GitHubToken variable",
	}
	et := NewExternalTool("flake8", []string{"py"}, exec)

	result, err := et.Run(context.Background(), "a.py")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want 1 entry", result.Errors)
	}
	if got := result.Errors[0]; !strings.Contains(got, "[REDACTED]") {
		t.Errorf("Errors[0] = %q, want secret-shaped identifiers redacted", got)
	}
}

func TestExternalTool_Run_ExecutorError(t *testing.T) {
	exec := fakeExecutor{err: errors.New("backend unreachable")}
	et := NewExternalTool("ruff", []string{"py"}, exec)

	result, err := et.Run(context.Background(), "a.py")
	if err == nil {
		t.Fatal("expected error")
	}
	if result.Success {
		t.Error("Success = true, want false on executor error")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want the wrapped executor error", result.Errors)
	}
}

func TestExternalTool_Available_DefaultsToVersionProbe(t *testing.T) {
	ok := NewExternalTool("black", []string{"py"}, fakeExecutor{exitCode: 0})
	if !ok.Available(context.Background()) {
		t.Error("Available() = false, want true when Execute succeeds")
	}

	fail := NewExternalTool("black", []string{"py"}, fakeExecutor{err: errors.New("not found")})
	if fail.Available(context.Background()) {
		t.Error("Available() = true, want false when Execute errors")
	}
}

func TestExternalTool_DependsOnAndConfidence(t *testing.T) {
	et := NewExternalTool("mypy", []string{"py"}, fakeExecutor{})
	et.Upstream = []string{"black"}
	et.Confidence = FixUncertain

	if len(et.DependsOn()) != 1 || et.DependsOn()[0] != "black" {
		t.Errorf("DependsOn() = %v", et.DependsOn())
	}
	if et.FixConfidence() != FixUncertain {
		t.Errorf("FixConfidence() = %v", et.FixConfidence())
	}
}
