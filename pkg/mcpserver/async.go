package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/huskycat-dev/huskycat/pkg/executor"
)

// taskStatus mirrors spec.md §9's async task states: pending until the
// goroutine starts, running while the executor is in flight, then one
// of the three terminal states.
type taskStatus string

const (
	taskPending   taskStatus = "pending"
	taskRunning   taskStatus = "running"
	taskCompleted taskStatus = "completed"
	taskFailed    taskStatus = "failed"
	taskCancelled taskStatus = "cancelled"
)

// asyncTask is one validate_async call's state, read under
// taskManager.mu rather than its own lock since every read goes
// through the manager anyway.
type asyncTask struct {
	ID      string                 `json:"task_id"`
	Status  taskStatus             `json:"status"`
	Files   []string               `json:"files"`
	Error   string                 `json:"error,omitempty"`
	Results []executor.Result      `json:"-"`
	cancel  context.CancelFunc
}

// taskManager is the coroutine-plus-channel model spec.md §9 describes
// realized with a goroutine per task and a mutex-guarded map rather
// than literal channels: status polling (get_task_status,
// list_async_tasks) reads state under the lock; cancellation
// (cancel_async_task) cancels the task's context, which the executor's
// in-flight tool.Run calls observe at their own ctx.Done() checks
// (their "level boundary" equivalent).
type taskManager struct {
	mu     sync.Mutex
	tasks  map[string]*asyncTask
	nextID int
	deps   Deps
}

func newTaskManager(deps Deps) *taskManager {
	return &taskManager{tasks: map[string]*asyncTask{}, deps: deps}
}

func (m *taskManager) allocateID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return fmt.Sprintf("task-%d", m.nextID)
}

// Launch starts files validating in a background goroutine and returns
// immediately with the new task's id.
func (m *taskManager) Launch(files []string, fix bool) *asyncTask {
	ctx, cancel := context.WithCancel(context.Background())
	t := &asyncTask{
		ID:     m.allocateID(),
		Status: taskPending,
		Files:  files,
		cancel: cancel,
	}

	m.mu.Lock()
	m.tasks[t.ID] = t
	m.mu.Unlock()

	go func() {
		m.mu.Lock()
		t.Status = taskRunning
		m.mu.Unlock()

		results, _, err := runFiles(ctx, m.deps.Registry, files, runOptions{Fix: fix})

		m.mu.Lock()
		defer m.mu.Unlock()
		switch {
		case ctx.Err() != nil:
			t.Status = taskCancelled
		case err != nil:
			t.Status = taskFailed
			t.Error = err.Error()
		default:
			t.Status = taskCompleted
			t.Results = results
		}
	}()

	return t
}

// Get returns a snapshot of task id's current state.
func (m *taskManager) Get(id string) (asyncTask, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return asyncTask{}, false
	}
	return *t, true
}

// List returns a snapshot of every task, optionally filtered to one
// status.
func (m *taskManager) List(status string) []asyncTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]asyncTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		if status != "" && string(t.Status) != status {
			continue
		}
		out = append(out, *t)
	}
	return out
}

// Cancel signals task id's context; the goroutine observes cancellation
// on its own, so Cancel itself never blocks waiting for it to stop.
func (m *taskManager) Cancel(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return false
	}
	t.cancel()
	return true
}

type validateAsyncArgs struct {
	Path string `json:"path" jsonschema:"File or directory to validate"`
	Fix  bool   `json:"fix,omitempty" jsonschema:"Accepted but has no effect on how tools are run"`
}

type taskIDArgs struct {
	TaskID string `json:"task_id" jsonschema:"Task identifier returned by validate_async"`
}

type listAsyncArgs struct {
	Status string `json:"status,omitempty" jsonschema:"Filter to one status: pending, running, completed, failed, cancelled"`
}

// registerAsyncTools wires spec.md §4.7's asynchronous tool set.
func registerAsyncTools(server *mcp.Server, tasks *taskManager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_async",
		Description: "Start validating a file or directory in the background and return a task id",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args validateAsyncArgs) (*mcp.CallToolResult, any, error) {
		if err := throttle(ctx); err != nil {
			return errorResult(err)
		}
		files, err := resolveValidateTargets(args.Path, tasks.deps)
		if err != nil {
			return errorResult(err)
		}
		t := tasks.Launch(files, args.Fix)
		out, err := json.Marshal(map[string]string{"task_id": t.ID})
		if err != nil {
			return errorResult(err)
		}
		return textResult(string(out))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_task_status",
		Description: "Get an async validation task's state and, if completed, its results",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args taskIDArgs) (*mcp.CallToolResult, any, error) {
		t, ok := tasks.Get(args.TaskID)
		if !ok {
			return errorResult(fmt.Errorf("unknown task_id %q", args.TaskID))
		}
		out, err := formatTaskJSON(t)
		if err != nil {
			return errorResult(err)
		}
		return textResult(out)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_async_tasks",
		Description: "List async validation tasks, optionally filtered by status",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listAsyncArgs) (*mcp.CallToolResult, any, error) {
		list := tasks.List(args.Status)
		summaries := make([]map[string]any, 0, len(list))
		for _, t := range list {
			summaries = append(summaries, map[string]any{
				"task_id": t.ID,
				"status":  t.Status,
				"files":   t.Files,
			})
		}
		out, err := json.Marshal(summaries)
		if err != nil {
			return errorResult(err)
		}
		return textResult(string(out))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cancel_async_task",
		Description: "Request cancellation of an in-progress async validation task",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args taskIDArgs) (*mcp.CallToolResult, any, error) {
		if !tasks.Cancel(args.TaskID) {
			return errorResult(fmt.Errorf("unknown task_id %q", args.TaskID))
		}
		out, err := json.Marshal(map[string]any{"task_id": args.TaskID, "cancelled": true})
		if err != nil {
			return errorResult(err)
		}
		return textResult(string(out))
	})
}

func formatTaskJSON(t asyncTask) (string, error) {
	payload := map[string]any{
		"task_id": t.ID,
		"status":  t.Status,
		"files":   t.Files,
	}
	if t.Error != "" {
		payload["error"] = t.Error
	}
	if t.Status == taskCompleted {
		payload["results"] = resultsByFile(t.Results)
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
