// Package runstore persists validation runs and manages the detached
// child processes that perform them: a durable JSON record per run, a
// live-run PID marker while a child is in flight, and the fork/detach
// contract the non-blocking git-hooks adapter uses to return to its
// caller in under 100ms.
package runstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/huskycat-dev/huskycat/pkg/constants"
	"github.com/huskycat-dev/huskycat/pkg/huskyerr"
	"github.com/huskycat-dev/huskycat/pkg/logger"
)

var log = logger.New("huskycat:runstore")

// ValidationRun is the run-record format in spec.md §6. Field names are
// stable and serialized as-is; run_id sorts lexicographically in
// chronological order because it is timestamp-prefixed.
type ValidationRun struct {
	RunID     string   `json:"run_id"`
	Started   string   `json:"started"`
	Completed string   `json:"completed"`
	Files     []string `json:"files"`
	Success   bool     `json:"success"`
	ToolsRun  []string `json:"tools_run"`
	Errors    int      `json:"errors"`
	Warnings  int      `json:"warnings"`
	ExitCode  int      `json:"exit_code"`
	PID       int      `json:"pid"`
}

// PIDRecord is the PID-record format in spec.md §6, marking one
// in-flight detached child.
type PIDRecord struct {
	PID       int      `json:"pid"`
	RunID     string   `json:"run_id"`
	Files     []string `json:"files"`
	StartedAt string   `json:"started_at"`
}

// Store is a cache-root-rooted run history and PID tracker. Zero value
// is not usable; construct with New.
type Store struct {
	root string

	// executable resolves the binary ForkValidation re-invokes as a
	// detached child. Defaults to os.Executable; overridden in tests so
	// a fork doesn't re-launch the test binary itself.
	executable func() (string, error)
}

// New resolves the cache root (EnvCacheRoot, else constants.DefaultCacheRoot
// under the given base directory) and returns a Store over it. base is
// typically the repository working directory.
func New(base string) *Store {
	root := os.Getenv(constants.EnvCacheRoot)
	if root == "" {
		root = filepath.Join(base, constants.DefaultCacheRoot)
	}
	return &Store{root: root, executable: os.Executable}
}

func (s *Store) runsDir() string { return filepath.Join(s.root, constants.RunHistoryDir) }
func (s *Store) pidsDir() string { return filepath.Join(s.root, constants.PIDDir) }
func (s *Store) logsDir() string { return filepath.Join(s.root, constants.LogsDir) }
func (s *Store) lastRunPath() string {
	return filepath.Join(s.runsDir(), constants.LastRunFile)
}

// LogPath returns the path a run's captured child output is written to.
func (s *Store) LogPath(runID string) string {
	return filepath.Join(s.logsDir(), runID+".log")
}

// NewRunID generates a timestamp-prefixed, lexicographically sortable
// run identifier.
func NewRunID() string {
	return time.Now().UTC().Format("20060102T150405.000000Z")
}

// writeAtomic writes data to path via a temp file in the same directory
// followed by a rename, so readers never observe a partial write.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &huskyerr.Error{Kind: huskyerr.KindIO, Op: "mkdir", Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &huskyerr.Error{Kind: huskyerr.KindIO, Op: "create temp", Err: err}
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &huskyerr.Error{Kind: huskyerr.KindIO, Op: "write temp", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &huskyerr.Error{Kind: huskyerr.KindIO, Op: "close temp", Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &huskyerr.Error{Kind: huskyerr.KindIO, Op: "rename", Err: err}
	}
	return nil
}

// SaveRun persists run durably, then replaces last_run.json. Disk-write
// failures are returned but never should abort validation itself — the
// caller decides whether to surface them.
func (s *Store) SaveRun(run ValidationRun) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return &huskyerr.Error{Kind: huskyerr.KindIO, Op: "marshal run", Err: err}
	}
	path := filepath.Join(s.runsDir(), run.RunID+".json")
	if err := writeAtomic(path, data); err != nil {
		log.Printf("save run %s: %v", run.RunID, err)
		return err
	}
	if err := writeAtomic(s.lastRunPath(), data); err != nil {
		log.Printf("save last_run for %s: %v", run.RunID, err)
		return err
	}
	return nil
}

// LastRun returns the most recently completed run, or nil if none has
// ever been recorded.
func (s *Store) LastRun() (*ValidationRun, error) {
	data, err := os.ReadFile(s.lastRunPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &huskyerr.Error{Kind: huskyerr.KindIO, Op: "read last_run", Err: err}
	}
	var run ValidationRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, &huskyerr.Error{Kind: huskyerr.KindIO, Op: "parse last_run", Err: err}
	}
	return &run, nil
}

// RunHistory returns up to limit most recent runs, most recent first.
// limit is clamped to [1, 100] per spec.md §4.2's retention contract.
func (s *Store) RunHistory(limit int) ([]ValidationRun, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	entries, err := os.ReadDir(s.runsDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &huskyerr.Error{Kind: huskyerr.KindIO, Op: "list runs", Err: err}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == constants.LastRunFile || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if len(names) > limit {
		names = names[:limit]
	}

	runs := make([]ValidationRun, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.runsDir(), name))
		if err != nil {
			log.Printf("skip unreadable run record %s: %v", name, err)
			continue
		}
		var run ValidationRun
		if err := json.Unmarshal(data, &run); err != nil {
			log.Printf("skip malformed run record %s: %v", name, err)
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// CheckPreviousRun returns the last run if it failed, nil otherwise —
// the commit-time precondition an adapter consults before forking a new
// one, per spec.md §4.2.
func (s *Store) CheckPreviousRun() (*ValidationRun, error) {
	run, err := s.LastRun()
	if err != nil || run == nil || run.Success {
		return nil, err
	}
	return run, nil
}
