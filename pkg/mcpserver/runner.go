// Package mcpserver exposes the orchestrator to assistant clients as an
// MCP tool server: a synchronous tool set for one-shot validation, an
// asynchronous set for long validations a client polls, and a history
// set that thinly wraps pkg/runstore. Transport and JSON-RPC framing
// are handled entirely by github.com/modelcontextprotocol/go-sdk/mcp;
// this package only registers tool handlers against it, the same
// division of labor the teacher's pkg/cli/mcp_server.go uses for its
// own CLI-wrapping tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"io/fs"
	"path/filepath"

	"github.com/huskycat-dev/huskycat/pkg/executor"
	"github.com/huskycat-dev/huskycat/pkg/mode"
	"github.com/huskycat-dev/huskycat/pkg/tool"
)

// runOptions parameterizes one runFiles call: which files, which tool
// (empty means "every tool that can handle the file"), and whether
// autofix is requested. Fix is set from every sync/async tool call's
// fix argument, but runFiles does not read it: tools are invoked the
// same way whether or not a fix was requested.
type runOptions struct {
	Fix      bool
	OnlyTool string
}

// runFiles builds the (tool, file) task set for files against registry
// and hands it to the executor. A single-tool request
// (runOptions.OnlyTool set, used by the validate_<tool> shortcuts) that
// names an unknown tool, or one that can't handle any of files,
// produces zero tasks rather than an error — FormatResults then reports
// zero results, which is a more useful signal to a client than a
// rejected call.
func runFiles(ctx context.Context, registry *tool.Registry, files []string, opts runOptions) ([]executor.Result, executor.Stats, error) {
	var tasks []executor.Task
	for _, f := range files {
		var candidates []tool.Tool
		if opts.OnlyTool != "" {
			if t, ok := registry.Lookup(opts.OnlyTool); ok && t.CanHandle(f) {
				candidates = []tool.Tool{t}
			}
		} else {
			candidates = registry.ForFile(f)
		}
		for _, t := range candidates {
			tasks = append(tasks, executor.Task{Tool: t, File: f})
		}
	}
	return executor.Run(ctx, tasks, executor.Options{})
}

// resultsByFile regroups a flat executor.Result slice the way every
// mode.Adapter.FormatOutput and the MCP tool responses expect:
// ValidationResult records keyed by the file they came from.
func resultsByFile(results []executor.Result) map[string][]tool.ValidationResult {
	out := map[string][]tool.ValidationResult{}
	for _, r := range results {
		out[r.Task.File] = append(out[r.Task.File], r.Value)
	}
	return out
}

// formatResultsJSON renders a run's results as one JSON document, the
// same {summary, results} envelope pkg/mode's pipeline and mcp adapters
// already produce (mode.pipelineReport) — reused here via
// mode.NewSummary rather than re-deriving error/warning tallies.
func formatResultsJSON(results []executor.Result) (string, error) {
	byFile := resultsByFile(results)
	report := struct {
		Summary mode.Summary                        `json:"summary"`
		Results map[string][]tool.ValidationResult `json:"results"`
	}{
		Summary: mode.NewSummary(byFile),
		Results: byFile,
	}
	b, err := json.Marshal(report)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// walkValidatable returns every regular file under root that at least
// one registered tool can handle, for validate_project and path-is-a-
// directory calls to the plain validate tool.
func walkValidatable(root string, registry *tool.Registry) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if len(registry.ForFile(path)) > 0 {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
