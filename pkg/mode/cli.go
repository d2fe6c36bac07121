package mode

import (
	"github.com/huskycat-dev/huskycat/pkg/console"
	"github.com/huskycat-dev/huskycat/pkg/tool"
	"github.com/huskycat-dev/huskycat/pkg/tty"
)

// cliAdapter is the interactive default: a developer running `huskycat
// validate` at a terminal, expecting colored human-readable output, a
// live progress panel, and a prompt before uncertain-tier autofixes.
type cliAdapter struct{ baseAdapter }

func (a *cliAdapter) Name() string { return "cli" }

func (a *cliAdapter) Config() AdapterConfig {
	return AdapterConfig{
		OutputFormat: "human",
		Tools:        "configured",
		Interactive:  true,
		FailFast:     false,
		Progress:     tty.IsStdoutTerminal(),
		Color:        tty.IsStdoutTerminal(),
		FixPolicy:    fixPolicyCLI,
	}
}

// ToolSelection returns every tool that can handle files; "configured"
// in Config().Tools signals to the caller that pkg/config's project
// tool list, if present, should narrow this further before dispatch.
func (a *cliAdapter) ToolSelection(files []string) []string {
	return a.allToolNames(files)
}

func (a *cliAdapter) FormatOutput(results map[string][]tool.ValidationResult, summary Summary) string {
	vr := &console.ValidationResults{}
	for file, fileResults := range results {
		for _, r := range fileResults {
			for _, msg := range r.Errors {
				vr.Errors = append(vr.Errors, console.ValidationError{
					Tool:     r.Tool,
					Severity: "high",
					Message:  msg,
					File:     file,
				})
			}
			for _, msg := range r.Warnings {
				vr.Warnings = append(vr.Warnings, console.ValidationError{
					Tool:     r.Tool,
					Severity: "low",
					Message:  msg,
					File:     file,
				})
			}
		}
	}
	return console.FormatValidationSummary(vr, false)
}
