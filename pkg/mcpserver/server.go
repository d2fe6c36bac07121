package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/huskycat-dev/huskycat/pkg/runstore"
	"github.com/huskycat-dev/huskycat/pkg/tool"
)

// Deps are the collaborators every tool handler needs: the registry to
// resolve files to tools, and the run store for the history tool set.
// Async tasks are held in memory by the task manager, not in the store.
type Deps struct {
	Registry *tool.Registry
	Store    *runstore.Store
}

// NewServer builds an mcp.Server with every tool from spec.md §4.7's
// three sets (sync, async, history) registered. version is surfaced in
// the server's Implementation identity, the way the teacher's
// createMCPServer reports gh-aw's own version.
func NewServer(deps Deps, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "huskycat",
		Version: version,
	}, nil)

	registerSyncTools(server, deps)
	tasks := newTaskManager(deps)
	registerAsyncTools(server, tasks)
	registerHistoryTools(server, deps)

	return server
}

// Run starts the server on stdio, the transport spec.md §4.7 requires
// ("newline-delimited frames on standard input/output").
func Run(ctx context.Context, deps Deps, version string) error {
	server := NewServer(deps, version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
