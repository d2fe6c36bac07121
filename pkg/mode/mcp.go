package mode

import "github.com/huskycat-dev/huskycat/pkg/tool"

// mcpAdapter backs the JSON-RPC tool server (pkg/mcpserver): every
// validation it triggers runs the full tool set with no fix policy of
// its own, since each MCP tool call names its own scope. FormatOutput
// here produces the same JSON envelope the pipeline adapter does; the
// server wraps it in a JSON-RPC response rather than writing it
// directly, which is why Transport is the one field this adapter's
// config sets that the others leave zero-valued.
type mcpAdapter struct{ baseAdapter }

func (a *mcpAdapter) Name() string { return "mcp" }

func (a *mcpAdapter) Config() AdapterConfig {
	return AdapterConfig{
		OutputFormat: "jsonrpc",
		Tools:        "all",
		Interactive:  false,
		FailFast:     false,
		Progress:     false,
		Color:        false,
		Transport:    "stdio",
		FixPolicy:    fixPolicyNever,
	}
}

func (a *mcpAdapter) ToolSelection(files []string) []string {
	return a.allToolNames(files)
}

func (a *mcpAdapter) FormatOutput(results map[string][]tool.ValidationResult, summary Summary) string {
	return (&pipelineAdapter{baseAdapter: a.baseAdapter}).FormatOutput(results, summary)
}
