package runstore

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/huskycat-dev/huskycat/pkg/constants"
	"github.com/huskycat-dev/huskycat/pkg/huskyerr"
)

// writePIDRecord durably records one in-flight child.
func (s *Store) writePIDRecord(rec PIDRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return &huskyerr.Error{Kind: huskyerr.KindIO, Op: "marshal pid record", Err: err}
	}
	path := filepath.Join(s.pidsDir(), strconv.Itoa(rec.PID)+".json")
	return writeAtomic(path, data)
}

func (s *Store) removePIDRecord(pid int) {
	path := filepath.Join(s.pidsDir(), strconv.Itoa(pid)+".json")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("remove pid record %d: %v", pid, err)
	}
}

// isAlive reports whether pid names a running process, using the
// kill(pid, 0)-equivalent liveness probe: signal 0 performs the
// permission/existence check without actually delivering a signal.
func isAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// GetRunningValidations lists live PID records, deleting any whose
// process has already exited.
func (s *Store) GetRunningValidations() ([]PIDRecord, error) {
	entries, err := os.ReadDir(s.pidsDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &huskyerr.Error{Kind: huskyerr.KindIO, Op: "list pid records", Err: err}
	}

	var live []PIDRecord
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.pidsDir(), e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var rec PIDRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		if isAlive(rec.PID) {
			live = append(live, rec)
		} else {
			os.Remove(path)
		}
	}
	sort.Slice(live, func(i, j int) bool { return live[i].StartedAt < live[j].StartedAt })
	return live, nil
}

// IsRunning reports whether a live run already covers an overlapping
// file set, so callers can suppress a redundant concurrent fork for the
// same files.
func (s *Store) IsRunning(files []string) (bool, error) {
	live, err := s.GetRunningValidations()
	if err != nil {
		return false, err
	}
	want := map[string]bool{}
	for _, f := range files {
		want[f] = true
	}
	for _, rec := range live {
		for _, f := range rec.Files {
			if want[f] {
				return true, nil
			}
		}
	}
	return false, nil
}

// ForkValidation detaches a child process that re-invokes the current
// binary with constants.RunChildFlag plus childArgs, redirecting its
// stdout/stderr to the run's log file, and returns its PID within the
// parent's ≤100ms budget. Go cannot safely fork a live multi-threaded
// runtime, so the child is a fresh process (self-re-exec) rather than a
// true fork()+exec() pair; see DESIGN.md's Open Question resolution.
//
// The parent never waits on the child: Wait() is invoked asynchronously
// only to reap the process once it exits, so the kernel doesn't leave it
// a zombie, and happens after this call has already returned.
func (s *Store) ForkValidation(runID string, files []string, childArgs []string) (int, error) {
	exe, err := s.executable()
	if err != nil {
		return 0, &huskyerr.Error{Kind: huskyerr.KindBackend, Op: "resolve executable", Err: err}
	}

	if err := os.MkdirAll(s.logsDir(), 0o755); err != nil {
		return 0, &huskyerr.Error{Kind: huskyerr.KindIO, Op: "mkdir logs", Err: err}
	}
	logFile, err := os.Create(s.LogPath(runID))
	if err != nil {
		return 0, &huskyerr.Error{Kind: huskyerr.KindIO, Op: "create log file", Err: err}
	}

	args := append([]string{constants.RunChildFlag, "--run-id", runID}, childArgs...)
	cmd := exec.Command(exe, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return 0, &huskyerr.Error{Kind: huskyerr.KindBackend, Op: "start child", Err: err}
	}
	pid := cmd.Process.Pid

	rec := PIDRecord{
		PID:       pid,
		RunID:     runID,
		Files:     files,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.writePIDRecord(rec); err != nil {
		log.Printf("fork %s: pid record not persisted: %v", runID, err)
	}

	go func() {
		cmd.Wait()
		logFile.Close()
		s.removePIDRecord(pid)
	}()

	return pid, nil
}
