package mode

import (
	"encoding/json"

	"github.com/huskycat-dev/huskycat/pkg/tool"
)

// pipelineAdapter serves non-interactive, non-CI callers piping
// huskycat into another tool (editor integrations, pre-push scripts
// invoked from another process): every tool runs, output is a single
// JSON document rather than XML or ANSI-colored text.
type pipelineAdapter struct{ baseAdapter }

func (a *pipelineAdapter) Name() string { return "pipeline" }

func (a *pipelineAdapter) Config() AdapterConfig {
	return AdapterConfig{
		OutputFormat: "json",
		Tools:        "all",
		Interactive:  false,
		FailFast:     false,
		Progress:     false,
		Color:        false,
		StdinMode:    true,
		FixPolicy:    fixPolicyNever,
	}
}

func (a *pipelineAdapter) ToolSelection(files []string) []string {
	return a.allToolNames(files)
}

// pipelineReport is the JSON document's top-level shape: a summary
// block plus the results keyed by file, matching the data model's
// existing per-file ValidationResult grouping rather than inventing a
// new envelope.
type pipelineReport struct {
	Summary Summary                           `json:"summary"`
	Results map[string][]tool.ValidationResult `json:"results"`
}

func (a *pipelineAdapter) FormatOutput(results map[string][]tool.ValidationResult, summary Summary) string {
	report := pipelineReport{Summary: summary, Results: results}
	out, err := json.Marshal(report)
	if err != nil {
		// json.Marshal only fails on channels/funcs/unsupported types,
		// none of which pipelineReport contains.
		return `{"summary":{},"results":{}}`
	}
	return string(out)
}
