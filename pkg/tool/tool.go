// Package tool defines the closed Tool interface every validator adapter
// implements and the ValidationResult record produced by a single
// (tool, file) execution. The registry built here is read-only after
// construction; no lock is needed once startup completes.
package tool

import "context"

// FixConfidence tiers bound how aggressively a tool's autofix may be
// applied automatically versus only after a user prompt.
type FixConfidence string

const (
	FixSafe      FixConfidence = "safe"
	FixLikely    FixConfidence = "likely"
	FixUncertain FixConfidence = "uncertain"
)

// Tool is the uniform interface every validator, formatter, or linter
// adapter implements, whether it's dispatched to an external binary or
// (like the YAML linter and the Chapel formatter) runs in-process.
// Unknown tool names are errors, not silent no-ops: Registry.Lookup
// returns ok=false rather than a zero-value Tool.
type Tool interface {
	// Name is the tool's identifier in the registry, run records, and
	// MCP tool names (e.g. "black", "shellcheck", "dockerfile-lint").
	Name() string

	// Extensions lists the file extensions (without the dot) this tool
	// handles. A tool with a custom matching rule (by filename, by
	// path) returns an empty slice and relies on CanHandle instead.
	Extensions() []string

	// CanHandle reports whether this tool applies to the given file
	// path. The default implementation checks Extensions(); adapters
	// like dockerfile-lint and ansible-lint override it.
	CanHandle(path string) bool

	// DependsOn lists upstream tool names that must complete
	// successfully before this tool may run (the executor's DAG edges).
	DependsOn() []string

	// FixConfidence reports this tool's autofix confidence tier.
	FixConfidence() FixConfidence

	// Available reports whether a backend exists to run this tool in
	// the current environment. Called once at startup to build the
	// effective tool set.
	Available(ctx context.Context) bool

	// Run executes the tool against a single file and returns its
	// result. Implementations must never panic; the executor wraps any
	// exception-equivalent into a failed ValidationResult, but Run
	// itself should already return an error-carrying result rather than
	// relying on that fallback.
	Run(ctx context.Context, file string) (ValidationResult, error)
}

// ValidationResult is one record per (tool, file) execution.
type ValidationResult struct {
	Tool     string   `json:"tool"`
	File     string   `json:"file"`
	Success  bool     `json:"success"`
	Messages []string `json:"messages,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Fixed    bool     `json:"fixed"`

	// DurationMS is the wall-clock time the tool took, in milliseconds.
	DurationMS int64 `json:"duration_ms"`
}

// ErrorCount returns len(Errors); derived rather than stored so it can
// never drift out of sync with the list.
func (v ValidationResult) ErrorCount() int { return len(v.Errors) }

// WarningCount returns len(Warnings).
func (v ValidationResult) WarningCount() int { return len(v.Warnings) }
