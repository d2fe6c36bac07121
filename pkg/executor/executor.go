// Package executor runs a set of (tool, file) tasks as a dependency
// DAG: tools are grouped into topological levels by name, and every
// tool within a level runs concurrently, bounded by a worker pool.
// A tool that fails or times out for a file causes every downstream
// tool that depends on it, for that same file, to be skipped rather
// than run against a known-bad input.
package executor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/huskycat-dev/huskycat/pkg/tool"
	"github.com/sourcegraph/conc/pool"
)

// Status is the terminal (or in-flight) state of one task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusTimedOut  Status = "timed_out"
)

// DefaultMaxWorkers bounds concurrency within a single DAG level when
// Options.MaxWorkers is left at zero.
const DefaultMaxWorkers = 8

// DefaultTimeout bounds a single tool invocation when Options.Timeout
// is left at zero.
const DefaultTimeout = 30 * time.Second

// Task is one (tool, file) unit of work.
type Task struct {
	Tool tool.Tool
	File string
}

func (t Task) key() string { return t.Tool.Name() + "\x00" + t.File }

// Result is one task's outcome: the validation record plus the
// scheduling status the executor assigned it.
type Result struct {
	Task   Task
	Value  tool.ValidationResult
	Status Status
}

// Stats summarizes one Run call for diagnostics and the speedup law in
// spec.md §8.
type Stats struct {
	LevelCount       int
	MaxParallelism   int
	AverageLevelSize float64

	// Speedup is the theoretical parallel speedup, (total tool count) /
	// (level count), per spec.md §4.3 — not a measured wall-clock ratio.
	Speedup float64
}

// Options configures a Run call.
type Options struct {
	// MaxWorkers bounds concurrency within a single DAG level. Zero
	// means DefaultMaxWorkers.
	MaxWorkers int

	// Timeout bounds a single tool invocation. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// FailFast, when true, is a soft cancel: in-flight tools in the
	// current level finish, but no further level starts.
	FailFast bool

	// OnUpdate, if set, is called for every status transition
	// (including the Running transition) as tasks progress.
	OnUpdate func(Task, Status)
}

// BuildTasks pairs every file with every tool that claims it via
// CanHandle, producing the task set a Run call schedules.
func BuildTasks(tools []tool.Tool, files []string) []Task {
	var tasks []Task
	for _, file := range files {
		for _, t := range tools {
			if t.CanHandle(file) {
				tasks = append(tasks, Task{Tool: t, File: file})
			}
		}
	}
	return tasks
}

// Run executes tasks level by level, returning one Result per task and
// the run's scheduling statistics. ctx cancellation is honored at level
// boundaries and before each task starts; tasks not yet started when ctx
// is done are reported Skipped.
func Run(ctx context.Context, tasks []Task, opts Options) ([]Result, Stats, error) {
	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	levels, err := groupByLevel(tasks)
	if err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{LevelCount: len(levels)}
	if len(levels) > 0 {
		stats.AverageLevelSize = float64(len(tasks)) / float64(len(levels))
		stats.Speedup = float64(len(tasks)) / float64(len(levels))
	}
	failed := map[string]bool{}
	var failedMu sync.Mutex
	var results []Result
	var resultsMu sync.Mutex

	update := func(task Task, status Status) {
		if opts.OnUpdate != nil {
			opts.OnUpdate(task, status)
		}
	}

	var halted atomic.Bool
	for _, level := range levels {
		if ctx.Err() != nil {
			halted.Store(true)
		}
		if halted.Load() {
			for _, task := range level {
				update(task, StatusSkipped)
				resultsMu.Lock()
				results = append(results, Result{Task: task, Status: StatusSkipped, Value: tool.ValidationResult{
					Tool: task.Tool.Name(), File: task.File, Success: false,
					Messages: []string{"skipped: run was cancelled or a prior failure triggered fail-fast"},
				}})
				resultsMu.Unlock()
			}
			continue
		}

		runnable := make([]Task, 0, len(level))
		for _, task := range level {
			if blocker, blocked := upstreamFailed(task, failed); blocked {
				update(task, StatusSkipped)
				// A skipped task is itself a failure for anything that
				// depends on it, so a multi-level chain (A -> B -> C)
				// propagates the skip all the way down instead of
				// stopping at the first level.
				failedMu.Lock()
				failed[task.key()] = true
				failedMu.Unlock()
				resultsMu.Lock()
				results = append(results, Result{Task: task, Status: StatusSkipped, Value: tool.ValidationResult{
					Tool: task.Tool.Name(), File: task.File, Success: false,
					Messages: []string{fmt.Sprintf("skipped: upstream dependency %q failed", blocker)},
				}})
				resultsMu.Unlock()
				continue
			}
			runnable = append(runnable, task)
		}
		if len(runnable) > stats.MaxParallelism {
			stats.MaxParallelism = len(runnable)
		}

		p := pool.New().WithMaxGoroutines(maxWorkers)
		for _, task := range runnable {
			task := task
			p.Go(func() {
				if ctx.Err() != nil {
					update(task, StatusSkipped)
					resultsMu.Lock()
					results = append(results, Result{Task: task, Status: StatusSkipped, Value: tool.ValidationResult{
						Tool: task.Tool.Name(), File: task.File, Success: false,
						Messages: []string{"skipped: run was cancelled"},
					}})
					resultsMu.Unlock()
					return
				}

				update(task, StatusRunning)
				runCtx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()

				taskStart := time.Now()
				value, runErr := task.Tool.Run(runCtx, task.File)
				duration := time.Since(taskStart)

				status := StatusCompleted
				switch {
				case runCtx.Err() == context.DeadlineExceeded:
					status = StatusTimedOut
					value.Success = false
					value.Errors = append(value.Errors, fmt.Sprintf("%s timed out after %s", task.Tool.Name(), timeout))
				case runErr != nil:
					status = StatusFailed
					value.Success = false
					value.Errors = append(value.Errors, runErr.Error())
				case !value.Success:
					status = StatusFailed
				}

				if status == StatusFailed || status == StatusTimedOut {
					failedMu.Lock()
					failed[task.key()] = true
					failedMu.Unlock()
					if opts.FailFast {
						halted.Store(true)
					}
				}

				value.Tool = task.Tool.Name()
				value.File = task.File
				value.DurationMS = duration.Milliseconds()

				resultsMu.Lock()
				results = append(results, Result{Task: task, Status: status, Value: value})
				resultsMu.Unlock()
				update(task, status)
			})
		}
		p.Wait()
	}

	return results, stats, nil
}

// upstreamFailed reports whether any of task's tool dependencies failed
// for the same file, and which one (for the skip message).
func upstreamFailed(task Task, failed map[string]bool) (string, bool) {
	for _, dep := range task.Tool.DependsOn() {
		if failed[dep+"\x00"+task.File] {
			return dep, true
		}
	}
	return "", false
}

// groupByLevel assigns every distinct tool among tasks a topological
// level (a tool with no dependencies is level 0; a tool depending on
// tools at levels ≤ k sits at level k+1), then buckets tasks by their
// tool's level, sorted for deterministic scheduling order.
func groupByLevel(tasks []Task) ([][]Task, error) {
	toolsByName := map[string]tool.Tool{}
	for _, t := range tasks {
		toolsByName[t.Tool.Name()] = t.Tool
	}

	level := map[string]int{}
	state := map[string]int{} // 0 unvisited, 1 visiting, 2 done

	var visit func(name string) (int, error)
	visit = func(name string) (int, error) {
		if lv, ok := level[name]; ok {
			return lv, nil
		}
		if state[name] == 1 {
			return 0, fmt.Errorf("dependency cycle detected at tool %q", name)
		}
		state[name] = 1

		maxDep := -1
		if t, ok := toolsByName[name]; ok {
			for _, dep := range t.DependsOn() {
				dl, err := visit(dep)
				if err != nil {
					return 0, err
				}
				if dl > maxDep {
					maxDep = dl
				}
			}
		}

		lv := maxDep + 1
		level[name] = lv
		state[name] = 2
		return lv, nil
	}

	names := make([]string, 0, len(toolsByName))
	for name := range toolsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := visit(name); err != nil {
			return nil, err
		}
	}

	maxLevel := 0
	for _, lv := range level {
		if lv > maxLevel {
			maxLevel = lv
		}
	}

	levels := make([][]Task, maxLevel+1)
	for _, task := range tasks {
		lv := level[task.Tool.Name()]
		levels[lv] = append(levels[lv], task)
	}
	for _, bucket := range levels {
		sort.Slice(bucket, func(i, j int) bool {
			if bucket[i].Tool.Name() != bucket[j].Tool.Name() {
				return bucket[i].Tool.Name() < bucket[j].Tool.Name()
			}
			return bucket[i].File < bucket[j].File
		})
	}
	return levels, nil
}
