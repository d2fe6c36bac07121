package sidecar

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// runWithTimeout runs cmd to completion, killing it if it exceeds
// timeout. A timed-out process is reported as exit code 124, matching
// the GNU coreutils `timeout` convention this protocol borrows for its
// execute-method result.
func runWithTimeout(cmd *exec.Cmd, timeout time.Duration) (stdout, stderr string, exitCode int, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if startErr := cmd.Start(); startErr != nil {
		return "", "", 1, startErr
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return outBuf.String(), "tool execution timed out after 30s", ExitCodeTimeout, nil
	case waitErr := <-done:
		if waitErr != nil {
			if exitErr, ok := waitErr.(*exec.ExitError); ok {
				return outBuf.String(), errBuf.String(), exitErr.ExitCode(), nil
			}
			return outBuf.String(), errBuf.String(), 1, waitErr
		}
		return outBuf.String(), errBuf.String(), 0, nil
	}
}
