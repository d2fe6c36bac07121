package dockerlint

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huskycat-dev/huskycat/pkg/tool"
)

// Adapter wraps Lint as an in-process tool.Tool, matching Dockerfiles by
// filename convention rather than extension.
type Adapter struct{}

// NewAdapter returns a ready-to-register Dockerfile linter.
func NewAdapter() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string         { return "dockerfile-lint" }
func (a *Adapter) Extensions() []string { return nil }

func (a *Adapter) CanHandle(path string) bool { return IsDockerfilePath(path) }

// IsDockerfilePath reports whether path names a Dockerfile by
// convention, exported so other tools (e.g. hadolint, dispatched as an
// external binary) can share the same matching rule.
func IsDockerfilePath(path string) bool {
	base := filepath.Base(path)
	return base == "Dockerfile" || base == "ContainerFile" || strings.HasSuffix(base, ".dockerfile")
}

func (a *Adapter) DependsOn() []string              { return nil }
func (a *Adapter) FixConfidence() tool.FixConfidence { return tool.FixUncertain }
func (a *Adapter) Available(_ context.Context) bool  { return true }

func (a *Adapter) Run(_ context.Context, file string) (tool.ValidationResult, error) {
	start := time.Now()
	content, err := os.ReadFile(file)
	if err != nil {
		return tool.ValidationResult{
			Tool:       a.Name(),
			File:       file,
			Errors:     []string{err.Error()},
			DurationMS: time.Since(start).Milliseconds(),
		}, nil
	}

	errs, warns := Lint(string(content))
	result := tool.ValidationResult{
		Tool:       a.Name(),
		File:       file,
		Errors:     errs,
		Warnings:   warns,
		Success:    len(errs) == 0,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if result.Success && len(warns) == 0 {
		result.Messages = []string{"Dockerfile syntax is valid"}
	}
	return result, nil
}
