package mode

import (
	"fmt"
	"sort"

	"github.com/huskycat-dev/huskycat/pkg/constants"
	"github.com/huskycat-dev/huskycat/pkg/runstore"
	"github.com/huskycat-dev/huskycat/pkg/tool"
)

// Adapter is the per-mode strategy spec.md §4.1 requires: it picks the
// tool set for a file list and renders a run's results into the mode's
// output shape. Config exposes the policy the rest of the pipeline
// (fail-fast, progress, fix policy) reads once at startup.
type Adapter interface {
	Name() string
	Config() AdapterConfig
	ToolSelection(files []string) []string
	FormatOutput(results map[string][]tool.ValidationResult, summary Summary) string
}

// fastSubsetTools names the tools blocking git-hooks mode runs: cheap
// formatters and linters, chosen to keep a synchronous `git commit`
// under the hook's patience, deferring type-checkers and security
// scanners to CI or the non-blocking variant.
var fastSubsetTools = map[string]bool{
	"black":           true,
	"ruff":            true,
	"golangci-lint":   true,
	"shellcheck":      true,
	"yaml-lint":       true,
	"dockerfile-lint": true,
	"chapel-fmt":      true,
}

// baseAdapter holds the registry lookup every adapter's ToolSelection
// needs; embedded rather than duplicated per adapter.
type baseAdapter struct {
	registry *tool.Registry
}

// allToolNames returns every distinct tool name able to handle any file
// in files, in deterministic (sorted) order.
func (b baseAdapter) allToolNames(files []string) []string {
	seen := map[string]bool{}
	var names []string
	for _, f := range files {
		for _, t := range b.registry.ForFile(f) {
			if !seen[t.Name()] {
				seen[t.Name()] = true
				names = append(names, t.Name())
			}
		}
	}
	sort.Strings(names)
	return names
}

// fastToolNames is allToolNames filtered to fastSubsetTools.
func (b baseAdapter) fastToolNames(files []string) []string {
	var names []string
	for _, name := range b.allToolNames(files) {
		if fastSubsetTools[name] {
			names = append(names, name)
		}
	}
	return names
}

// New constructs the Adapter for modeName. nonBlocking selects between
// git_hooks's two variants and is ignored by every other mode. store is
// required only by the non-blocking git-hooks adapter, which forks
// through it; other adapters ignore a nil store.
//
// modeName is expected to be one already validated by Detect (or one of
// the constants.Mode* values directly); an unrecognized value is a
// programming error, not a runtime condition callers should recover
// from, so New panics rather than returning an error.
func New(modeName string, registry *tool.Registry, store *runstore.Store, nonBlocking bool) Adapter {
	base := baseAdapter{registry: registry}
	switch modeName {
	case constants.ModeGitHooks:
		if nonBlocking {
			return &nonBlockingGitHooksAdapter{baseAdapter: base, store: store}
		}
		return &blockingGitHooksAdapter{baseAdapter: base}
	case constants.ModeCI:
		return &ciAdapter{baseAdapter: base}
	case constants.ModeCLI:
		return &cliAdapter{baseAdapter: base}
	case constants.ModePipeline:
		return &pipelineAdapter{baseAdapter: base}
	case constants.ModeMCP:
		return &mcpAdapter{baseAdapter: base}
	default:
		panic(fmt.Sprintf("mode: New called with unknown mode %q", modeName))
	}
}
