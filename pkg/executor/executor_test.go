package executor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/huskycat-dev/huskycat/pkg/tool"
)

// fakeTool is a minimal, deterministic tool.Tool for exercising the
// scheduler without a real subprocess.
type fakeTool struct {
	name  string
	deps  []string
	fail  bool
	delay time.Duration
}

func newFakeTool(name string, deps []string, fail bool) *fakeTool {
	return &fakeTool{name: name, deps: deps, fail: fail}
}

func (f *fakeTool) Name() string                      { return f.name }
func (f *fakeTool) Extensions() []string              { return []string{"txt"} }
func (f *fakeTool) CanHandle(path string) bool        { return true }
func (f *fakeTool) DependsOn() []string               { return f.deps }
func (f *fakeTool) FixConfidence() tool.FixConfidence { return tool.FixUncertain }
func (f *fakeTool) Available(_ context.Context) bool  { return true }

func (f *fakeTool) Run(ctx context.Context, file string) (tool.ValidationResult, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return tool.ValidationResult{}, ctx.Err()
		}
	}
	return tool.ValidationResult{Tool: f.name, File: file, Success: !f.fail}, nil
}

func findResult(results []Result, toolName, file string) (Result, bool) {
	for _, r := range results {
		if r.Task.Tool.Name() == toolName && r.Task.File == file {
			return r, true
		}
	}
	return Result{}, false
}

func TestRun_IndependentToolsCompleteAtSameLevel(t *testing.T) {
	black := newFakeTool("black", nil, false)
	ruff := newFakeTool("ruff", nil, false)

	tasks := []Task{{Tool: black, File: "a.py"}, {Tool: ruff, File: "a.py"}}
	results, stats, err := Run(context.Background(), tasks, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.LevelCount != 1 {
		t.Errorf("LevelCount = %d, want 1", stats.LevelCount)
	}
	for _, r := range results {
		if r.Status != StatusCompleted {
			t.Errorf("task %s status = %s, want completed", r.Task.Tool.Name(), r.Status)
		}
	}
}

func TestRun_DependentSkipsAfterUpstreamFailure(t *testing.T) {
	black := newFakeTool("black", nil, true)
	mypy := newFakeTool("mypy", []string{"black"}, false)

	tasks := []Task{{Tool: black, File: "a.py"}, {Tool: mypy, File: "a.py"}}
	results, stats, err := Run(context.Background(), tasks, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.LevelCount != 2 {
		t.Errorf("LevelCount = %d, want 2", stats.LevelCount)
	}

	blackResult, _ := findResult(results, "black", "a.py")
	if blackResult.Status != StatusFailed {
		t.Errorf("black status = %s, want failed", blackResult.Status)
	}

	mypyResult, _ := findResult(results, "mypy", "a.py")
	if mypyResult.Status != StatusSkipped {
		t.Errorf("mypy status = %s, want skipped", mypyResult.Status)
	}
	if mypyResult.Value.Success {
		t.Error("mypy.Value.Success = true, want false for a skipped task")
	}
	if len(mypyResult.Value.Messages) == 0 || !strings.Contains(mypyResult.Value.Messages[0], "black") {
		t.Errorf("mypy skip message = %v, want it to mention black", mypyResult.Value.Messages)
	}
}

func TestRun_SkipPropagatesThroughMultiLevelChain(t *testing.T) {
	a := newFakeTool("a", nil, true)
	b := newFakeTool("b", []string{"a"}, false)
	c := newFakeTool("c", []string{"b"}, false)

	tasks := []Task{{Tool: a, File: "f"}, {Tool: b, File: "f"}, {Tool: c, File: "f"}}
	results, stats, err := Run(context.Background(), tasks, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.LevelCount != 3 {
		t.Fatalf("LevelCount = %d, want 3", stats.LevelCount)
	}

	bResult, _ := findResult(results, "b", "f")
	if bResult.Status != StatusSkipped {
		t.Errorf("b status = %s, want skipped", bResult.Status)
	}

	// c depends on b, not a directly. Without b's skip being recorded as
	// a failure, c would see no failed upstream and run to completion.
	cResult, _ := findResult(results, "c", "f")
	if cResult.Status != StatusSkipped {
		t.Errorf("c status = %s, want skipped (b was skipped, not just a)", cResult.Status)
	}
	if cResult.Value.Success {
		t.Error("c.Value.Success = true, want false for a transitively skipped task")
	}
	if len(cResult.Value.Messages) == 0 || !strings.Contains(cResult.Value.Messages[0], "b") {
		t.Errorf("c skip message = %v, want it to mention b", cResult.Value.Messages)
	}
}

func TestRun_DependentSkippedForEachFileWhoseUpstreamFailed(t *testing.T) {
	black := newFakeTool("black", nil, true)
	mypy := newFakeTool("mypy", []string{"black"}, false)

	tasks := []Task{
		{Tool: black, File: "a.py"},
		{Tool: mypy, File: "a.py"},
		{Tool: black, File: "b.py"},
		{Tool: mypy, File: "b.py"},
	}
	results, _, err := Run(context.Background(), tasks, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// black fails identically for both files (same tool, deterministic
	// fail flag), so mypy should be skipped for both.
	for _, file := range []string{"a.py", "b.py"} {
		mypyResult, _ := findResult(results, "mypy", file)
		if mypyResult.Status != StatusSkipped {
			t.Errorf("mypy(%s) status = %s, want skipped", file, mypyResult.Status)
		}
	}
}

func TestRun_FailFastSkipsLaterIndependentLevels(t *testing.T) {
	a := newFakeTool("a", nil, true)
	b := newFakeTool("b", nil, false)
	c := newFakeTool("c", []string{"b"}, false)

	tasks := []Task{{Tool: a, File: "f"}, {Tool: b, File: "f"}, {Tool: c, File: "f"}}
	results, _, err := Run(context.Background(), tasks, Options{FailFast: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	cResult, _ := findResult(results, "c", "f")
	if cResult.Status != StatusSkipped {
		t.Errorf("c status = %s, want skipped", cResult.Status)
	}
}

func TestRun_TimeoutProducesTimedOutStatus(t *testing.T) {
	slow := newFakeTool("slow", nil, false)
	slow.delay = 50 * time.Millisecond

	tasks := []Task{{Tool: slow, File: "f"}}
	results, _, err := Run(context.Background(), tasks, Options{Timeout: 5 * time.Millisecond})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	r, ok := findResult(results, "slow", "f")
	if !ok || r.Status != StatusTimedOut {
		t.Errorf("slow status = %+v, want timed_out", r)
	}
}

func TestRun_CancelledContextSkipsUnstartedWork(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newFakeTool("a", nil, false)
	tasks := []Task{{Tool: a, File: "f"}}
	results, _, err := Run(ctx, tasks, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	r, _ := findResult(results, "a", "f")
	if r.Status != StatusSkipped {
		t.Errorf("status = %s, want skipped for a cancelled context", r.Status)
	}
}

func TestRun_EveryTaskGetsExactlyOneTerminalResult(t *testing.T) {
	a := newFakeTool("a", nil, false)
	b := newFakeTool("b", []string{"a"}, true)
	c := newFakeTool("c", []string{"b"}, false)

	tasks := []Task{{Tool: a, File: "f"}, {Tool: b, File: "f"}, {Tool: c, File: "f"}}
	results, _, err := Run(context.Background(), tasks, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != len(tasks) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(tasks))
	}
	terminal := map[Status]bool{StatusCompleted: true, StatusFailed: true, StatusSkipped: true, StatusTimedOut: true}
	for _, r := range results {
		if !terminal[r.Status] {
			t.Errorf("task %s status %s is not terminal", r.Task.Tool.Name(), r.Status)
		}
	}
}

func TestRun_SpeedupIsTotalToolCountOverLevelCount(t *testing.T) {
	tasks := make([]Task, 0, 8)
	for i := 0; i < 8; i++ {
		name := string(rune('a' + i))
		tasks = append(tasks, Task{Tool: newFakeTool(name, nil, false), File: "f"})
	}
	_, stats, err := Run(context.Background(), tasks, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.LevelCount != 1 {
		t.Fatalf("LevelCount = %d, want 1 for 8 independent tools", stats.LevelCount)
	}
	if stats.Speedup != 8 {
		t.Errorf("Speedup = %v, want 8 (total tool count / level count)", stats.Speedup)
	}
}

func TestGroupByLevel_DetectsCycle(t *testing.T) {
	a := newFakeTool("a", []string{"b"}, false)
	b := newFakeTool("b", []string{"a"}, false)

	tasks := []Task{{Tool: a, File: "f"}, {Tool: b, File: "f"}}
	_, _, err := Run(context.Background(), tasks, Options{})
	if err == nil {
		t.Fatal("expected a cycle-detection error")
	}
}

func TestBuildTasks_FiltersByCanHandle(t *testing.T) {
	onlyPy := &canHandleOnly{name: "mypy", ext: ".py"}
	tasks := BuildTasks([]tool.Tool{onlyPy}, []string{"a.py", "b.go"})
	if len(tasks) != 1 || tasks[0].File != "a.py" {
		t.Errorf("BuildTasks() = %+v, want only a.py", tasks)
	}
}

type canHandleOnly struct {
	name string
	ext  string
}

func (c *canHandleOnly) Name() string                     { return c.name }
func (c *canHandleOnly) Extensions() []string              { return []string{c.ext} }
func (c *canHandleOnly) CanHandle(path string) bool        { return strings.HasSuffix(path, c.ext) }
func (c *canHandleOnly) DependsOn() []string                { return nil }
func (c *canHandleOnly) FixConfidence() tool.FixConfidence  { return tool.FixUncertain }
func (c *canHandleOnly) Available(_ context.Context) bool   { return true }
func (c *canHandleOnly) Run(_ context.Context, file string) (tool.ValidationResult, error) {
	return tool.ValidationResult{Tool: c.name, File: file, Success: true}, nil
}
