package schema

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huskycat-dev/huskycat/pkg/tool"
)

// ComposeAdapter wraps ValidateCompose as a tool.Tool, matching by
// filename rather than extension since every Compose file ends in
// .yml/.yaml like countless other files.
type ComposeAdapter struct{}

// NewComposeAdapter returns a ready-to-register Compose validator.
func NewComposeAdapter() *ComposeAdapter { return &ComposeAdapter{} }

func (a *ComposeAdapter) Name() string         { return "compose-schema" }
func (a *ComposeAdapter) Extensions() []string { return nil }

func (a *ComposeAdapter) CanHandle(path string) bool { return IsComposeFilePath(path) }

// IsComposeFilePath reports whether path names a Compose file by
// convention, exported so other tools (e.g. an external compose-lint
// binary) can share the same matching rule.
func IsComposeFilePath(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	switch base {
	case "docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml":
		return true
	}
	return strings.HasPrefix(base, "docker-compose.") &&
		(strings.HasSuffix(base, ".yml") || strings.HasSuffix(base, ".yaml"))
}

func (a *ComposeAdapter) DependsOn() []string            { return nil }
func (a *ComposeAdapter) FixConfidence() tool.FixConfidence { return tool.FixUncertain }
func (a *ComposeAdapter) Available(_ context.Context) bool { return true }

func (a *ComposeAdapter) Run(_ context.Context, file string) (tool.ValidationResult, error) {
	return runSchemaValidation(a.Name(), file, ValidateCompose)
}

// GitHubActionsAdapter wraps ValidateGitHubActions as a tool.Tool,
// matching by directory (.github/workflows/) rather than extension for
// the same reason.
type GitHubActionsAdapter struct{}

// NewGitHubActionsAdapter returns a ready-to-register workflow validator.
func NewGitHubActionsAdapter() *GitHubActionsAdapter { return &GitHubActionsAdapter{} }

func (a *GitHubActionsAdapter) Name() string         { return "github-actions-schema" }
func (a *GitHubActionsAdapter) Extensions() []string { return nil }

func (a *GitHubActionsAdapter) CanHandle(path string) bool { return IsGitHubActionsWorkflowPath(path) }

// IsGitHubActionsWorkflowPath reports whether path is a GitHub Actions
// workflow file by convention, exported so other tools (e.g. actionlint,
// dispatched as an external binary) can share the same matching rule.
func IsGitHubActionsWorkflowPath(path string) bool {
	clean := filepath.ToSlash(path)
	if !strings.Contains(clean, ".github/workflows/") {
		return false
	}
	return strings.HasSuffix(clean, ".yml") || strings.HasSuffix(clean, ".yaml")
}

func (a *GitHubActionsAdapter) DependsOn() []string              { return nil }
func (a *GitHubActionsAdapter) FixConfidence() tool.FixConfidence { return tool.FixUncertain }
func (a *GitHubActionsAdapter) Available(_ context.Context) bool  { return true }

func (a *GitHubActionsAdapter) Run(_ context.Context, file string) (tool.ValidationResult, error) {
	return runSchemaValidation(a.Name(), file, ValidateGitHubActions)
}

func runSchemaValidation(toolName, file string, validate func([]byte) (Result, error)) (tool.ValidationResult, error) {
	start := time.Now()
	result := tool.ValidationResult{Tool: toolName, File: file}

	content, err := os.ReadFile(file)
	if err != nil {
		result.Errors = []string{err.Error()}
		result.DurationMS = time.Since(start).Milliseconds()
		return result, nil
	}

	validated, err := validate(content)
	result.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		return result, err
	}

	result.Errors = validated.Errors
	result.Warnings = validated.Warnings
	result.Success = validated.Valid
	return result, nil
}
