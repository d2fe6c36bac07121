package tool

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/huskycat-dev/huskycat/pkg/stringutil"
)

// Executor abstracts the backend-selection step (sidecar, bundled, local
// PATH, container) so pkg/tool never imports pkg/dispatcher: the dispatcher
// owns the registry and wires itself in as the Executor each ExternalTool
// delegates to, not the other way around.
type Executor interface {
	Execute(ctx context.Context, tool string, args []string, cwd string) (exitCode int, stdout, stderr string, err error)
}

// diagnosticLine matches the widely-used "file:line:col: message" shape
// emitted by most linters/compilers (gcc, shellcheck, golangci-lint,
// flake8, rubocop --format emacs, ...). Parsing any single tool's exact
// output grammar is explicitly out of scope; this generic heuristic is
// the one parsing rule the dispatcher gets for free.
var diagnosticLine = regexp.MustCompile(`^[^:\s]+:\d+(:\d+)?:\s*(?i:(warning|warn))?\s*(.*)$`)

// ExternalTool adapts a named external validator (black, ruff, mypy,
// shellcheck, golangci-lint, ...) into the Tool interface by delegating
// execution to an Executor and doing generic line-oriented classification
// of its output. Per-tool semantics beyond that are out of scope.
type ExternalTool struct {
	ToolName    string
	Exts        BaseExtensionMatcher
	Upstream    []string
	Confidence  FixConfidence
	Args        func(file string) []string
	Exec        Executor
	AvailableFn func(ctx context.Context) bool
}

func NewExternalTool(name string, exts []string, exec Executor) *ExternalTool {
	return &ExternalTool{
		ToolName:   name,
		Exts:       BaseExtensionMatcher{Exts: exts},
		Confidence: FixUncertain,
		Args:       func(file string) []string { return []string{file} },
		Exec:       exec,
	}
}

func (e *ExternalTool) Name() string                 { return e.ToolName }
func (e *ExternalTool) Extensions() []string         { return e.Exts.Extensions() }
func (e *ExternalTool) CanHandle(path string) bool   { return e.Exts.CanHandle(path) }
func (e *ExternalTool) DependsOn() []string          { return e.Upstream }
func (e *ExternalTool) FixConfidence() FixConfidence { return e.Confidence }

func (e *ExternalTool) Available(ctx context.Context) bool {
	if e.AvailableFn != nil {
		return e.AvailableFn(ctx)
	}
	if e.Exec == nil {
		return false
	}
	_, _, _, err := e.Exec.Execute(ctx, e.ToolName, []string{"--version"}, "")
	return err == nil
}

func (e *ExternalTool) Run(ctx context.Context, file string) (ValidationResult, error) {
	start := time.Now()
	args := e.Args(file)
	exitCode, stdout, stderr, err := e.Exec.Execute(ctx, e.ToolName, args, "")
	result := ValidationResult{
		Tool:       e.ToolName,
		File:       file,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors, err.Error())
		return result, err
	}

	errs, warns, msgs := classifyOutput(stdout, stderr)
	result.Errors = errs
	result.Warnings = warns
	result.Messages = msgs
	result.Success = exitCode == 0 && len(errs) == 0
	return result, nil
}

// classifyOutput buckets combined tool output into errors/warnings/messages
// using the generic diagnosticLine heuristic; lines that don't match the
// pattern are kept as plain messages rather than dropped. Each line is
// run through stringutil.SanitizeErrorMessage first, since linter output
// echoes source text verbatim and a file under validation may itself
// reference a secret-shaped identifier (API_KEY, a GitHubToken field)
// that shouldn't propagate into a JSON report or CI log untouched.
func classifyOutput(stdout, stderr string) (errs, warns, msgs []string) {
	for _, raw := range strings.Split(stdout+"\n"+stderr, "\n") {
		line := stringutil.SanitizeErrorMessage(strings.TrimRight(raw, "\r"))
		if line == "" {
			continue
		}
		m := diagnosticLine.FindStringSubmatch(line)
		if m == nil {
			msgs = append(msgs, line)
			continue
		}
		if m[2] != "" {
			warns = append(warns, line)
		} else {
			errs = append(errs, line)
		}
	}
	return errs, warns, msgs
}
