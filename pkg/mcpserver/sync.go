package mcpserver

import (
	"context"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/huskycat-dev/huskycat/pkg/ratelimit"
)

// errorResult wraps a handler failure into a result with isError set
// rather than returning a Go error, per spec.md §4.7: "Tool-level
// exceptions inside handlers are wrapped into a result with an
// isError flag so that a single misbehaving tool cannot crash the
// server."
func errorResult(err error) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}, nil, nil
}

func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// throttle blocks until the MCP request rate limiter admits this call,
// or returns ctx's cancellation error.
func throttle(ctx context.Context) error {
	return ratelimit.Wait(ctx, ratelimit.OperationMCPRequest)
}

type validateArgs struct {
	Path string `json:"path" jsonschema:"File or directory to validate"`
	Fix  bool   `json:"fix,omitempty" jsonschema:"Accepted but has no effect on how tools are run"`
}

type batchValidateArgs struct {
	Files []string `json:"files" jsonschema:"Files to validate"`
	Fix   bool     `json:"fix,omitempty" jsonschema:"Accepted but has no effect on how tools are run"`
}

type validateProjectArgs struct {
	Path string `json:"path" jsonschema:"Directory to walk and validate"`
}

// registerSyncTools wires spec.md §4.7's synchronous tool set: plain
// validate, the per-tool shortcuts, batch_validate, and
// validate_project.
func registerSyncTools(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate",
		Description: "Validate a file or directory, running every applicable tool",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args validateArgs) (*mcp.CallToolResult, any, error) {
		if err := throttle(ctx); err != nil {
			return errorResult(err)
		}
		files, err := resolveValidateTargets(args.Path, deps)
		if err != nil {
			return errorResult(err)
		}
		results, _, err := runFiles(ctx, deps.Registry, files, runOptions{Fix: args.Fix})
		if err != nil {
			return errorResult(err)
		}
		out, err := formatResultsJSON(results)
		if err != nil {
			return errorResult(err)
		}
		return textResult(out)
	})

	for _, shortcut := range []struct{ name, tool string }{
		{"validate_black", "black"},
		{"validate_flake8", "flake8"},
		{"validate_mypy", "mypy"},
		{"validate_yamllint", "yaml-lint"},
		{"validate_hadolint", "hadolint"},
		{"validate_shellcheck", "shellcheck"},
	} {
		registerSingleToolShortcut(server, deps, shortcut.name, shortcut.tool)
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "batch_validate",
		Description: "Validate an explicit list of files, running every applicable tool on each",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args batchValidateArgs) (*mcp.CallToolResult, any, error) {
		if err := throttle(ctx); err != nil {
			return errorResult(err)
		}
		results, _, err := runFiles(ctx, deps.Registry, args.Files, runOptions{Fix: args.Fix})
		if err != nil {
			return errorResult(err)
		}
		out, err := formatResultsJSON(results)
		if err != nil {
			return errorResult(err)
		}
		return textResult(out)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_project",
		Description: "Walk a directory and validate every file a registered tool can handle",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args validateProjectArgs) (*mcp.CallToolResult, any, error) {
		if err := throttle(ctx); err != nil {
			return errorResult(err)
		}
		files, err := walkValidatable(args.Path, deps.Registry)
		if err != nil {
			return errorResult(err)
		}
		results, _, err := runFiles(ctx, deps.Registry, files, runOptions{})
		if err != nil {
			return errorResult(err)
		}
		out, err := formatResultsJSON(results)
		if err != nil {
			return errorResult(err)
		}
		return textResult(out)
	})
}

// registerSingleToolShortcut registers one of the validate_<tool>
// tools, each constrained to a single named tool per spec.md §4.7.
func registerSingleToolShortcut(server *mcp.Server, deps Deps, name, toolName string) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        name,
		Description: "Validate a file or directory using only the " + toolName + " tool",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args validateArgs) (*mcp.CallToolResult, any, error) {
		if err := throttle(ctx); err != nil {
			return errorResult(err)
		}
		files, err := resolveValidateTargets(args.Path, deps)
		if err != nil {
			return errorResult(err)
		}
		results, _, err := runFiles(ctx, deps.Registry, files, runOptions{Fix: args.Fix, OnlyTool: toolName})
		if err != nil {
			return errorResult(err)
		}
		out, err := formatResultsJSON(results)
		if err != nil {
			return errorResult(err)
		}
		return textResult(out)
	})
}

// resolveValidateTargets expands a validate-family path argument into
// a concrete file list: itself if it's a file, every validatable file
// beneath it if it's a directory.
func resolveValidateTargets(path string, deps Deps) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return walkValidatable(path, deps.Registry)
	}
	return []string{path}, nil
}
