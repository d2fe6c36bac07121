package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type runHistoryArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"Number of runs to return, 1-100"`
}

type runResultsArgs struct {
	RunID string `json:"run_id" jsonschema:"Run identifier to fetch"`
}

// registerHistoryTools wires spec.md §4.7's history tool set, a thin
// wrapper over pkg/runstore: this package adds no state of its own
// here, only JSON rendering and the -32602-equivalent "missing
// required param" case get_run_results needs.
func registerHistoryTools(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_last_run",
		Description: "Get the most recently completed validation run, if any",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
		run, err := deps.Store.LastRun()
		if err != nil {
			return errorResult(err)
		}
		if run == nil {
			return textResult("{}")
		}
		out, err := json.Marshal(run)
		if err != nil {
			return errorResult(err)
		}
		return textResult(string(out))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_run_history",
		Description: "List past validation runs, newest first",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args runHistoryArgs) (*mcp.CallToolResult, any, error) {
		limit := args.Limit
		if limit <= 0 {
			limit = 20
		}
		runs, err := deps.Store.RunHistory(limit)
		if err != nil {
			return errorResult(err)
		}
		out, err := json.Marshal(runs)
		if err != nil {
			return errorResult(err)
		}
		return textResult(string(out))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_run_results",
		Description: "Get the full record for one run_id",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args runResultsArgs) (*mcp.CallToolResult, any, error) {
		if args.RunID == "" {
			return errorResult(fmt.Errorf("run_id is required"))
		}
		runs, err := deps.Store.RunHistory(100)
		if err != nil {
			return errorResult(err)
		}
		for _, r := range runs {
			if r.RunID == args.RunID {
				out, err := json.Marshal(r)
				if err != nil {
					return errorResult(err)
				}
				return textResult(string(out))
			}
		}
		return errorResult(fmt.Errorf("unknown run_id %q", args.RunID))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_running_validations",
		Description: "List currently live (PID-checked) in-progress validations",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
		records, err := deps.Store.GetRunningValidations()
		if err != nil {
			return errorResult(err)
		}
		out, err := json.Marshal(records)
		if err != nil {
			return errorResult(err)
		}
		return textResult(string(out))
	})
}
