package yamllint

import (
	"context"
	"os"
	"time"

	"github.com/huskycat-dev/huskycat/pkg/tool"
)

// Adapter wires Linter into the tool.Tool interface as the in-process
// fallback used whenever the GPL sidecar's yamllint is unavailable.
type Adapter struct {
	tool.BaseExtensionMatcher
	linter *Linter
}

// NewAdapter returns the yaml-lint tool using config.
func NewAdapter(config Config) *Adapter {
	return &Adapter{
		BaseExtensionMatcher: tool.BaseExtensionMatcher{Exts: []string{"yml", "yaml"}},
		linter:               New(config),
	}
}

func (a *Adapter) Name() string                     { return "yaml-lint" }
func (a *Adapter) DependsOn() []string               { return nil }
func (a *Adapter) FixConfidence() tool.FixConfidence { return tool.FixUncertain }
func (a *Adapter) Available(ctx context.Context) bool { return true }

func (a *Adapter) Run(ctx context.Context, file string) (tool.ValidationResult, error) {
	start := time.Now()
	result := tool.ValidationResult{Tool: a.Name(), File: file}

	content, err := os.ReadFile(file)
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors, err.Error())
		result.DurationMS = time.Since(start).Milliseconds()
		return result, err
	}

	issues := a.linter.Lint(string(content))
	for _, issue := range issues {
		msg := issue.Rule + ": " + issue.Message
		if issue.Severity == SeverityError {
			result.Errors = append(result.Errors, msg)
		} else {
			result.Warnings = append(result.Warnings, msg)
		}
	}

	result.Success = len(result.Errors) == 0
	result.DurationMS = time.Since(start).Milliseconds()
	return result, nil
}
