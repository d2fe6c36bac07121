package sidecar

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"
)

// DefaultSocketPath mirrors the server-side default; the client-side
// default additionally honors HUSKYCAT_GPL_SOCKET.
func DefaultSocketPath() string {
	if p := os.Getenv("HUSKYCAT_GPL_SOCKET"); p != "" {
		return p
	}
	return fmt.Sprintf("/tmp/huskycat-gpl-%d.sock", os.Getuid())
}

// Client talks to the GPL sidecar over a Unix socket, one request per
// connection — the server is single-threaded and sequential, so there's
// no benefit to keeping a connection open between calls.
type Client struct {
	SocketPath string
	requestID  int64
}

// NewClient returns a Client bound to socketPath, or DefaultSocketPath() if empty.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath()
	}
	return &Client{SocketPath: socketPath}
}

func (c *Client) nextID() int64 { return atomic.AddInt64(&c.requestID, 1) }

// Errors returned when the sidecar cannot be reached at all, as opposed
// to a well-formed JSON-RPC error response (which ends up as *RPCError).
var (
	ErrConnectionFailed = errors.New("sidecar: connection failed")
	ErrTimeout           = errors.New("sidecar: request timed out")
	ErrEmptyResponse     = errors.New("sidecar: empty response")
)

func (c *Client) call(method string, params any, timeout time.Duration) (json.RawMessage, error) {
	conn, err := net.DialTimeout("unix", c.SocketPath, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(timeout))

	var rawParams json.RawMessage
	if params != nil {
		rawParams, err = json.Marshal(params)
		if err != nil {
			return nil, err
		}
	}

	req := Request{JSONRPC: "2.0", ID: c.nextID(), Method: method, Params: rawParams}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	if tc, ok := conn.(*net.UnixConn); ok {
		_ = tc.CloseWrite()
	}

	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if len(buf) > 1<<20 {
				return nil, errors.New("sidecar: response too large (>1MB)")
			}
		}
		if err != nil {
			break
		}
	}

	if len(buf) == 0 {
		return nil, ErrEmptyResponse
	}

	var resp Response
	if err := json.Unmarshal(buf, &resp); err != nil {
		return nil, fmt.Errorf("sidecar: invalid JSON response: %w", err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

// Health reports whether the sidecar responds healthy to the "health" method.
func (c *Client) Health() bool {
	raw, err := c.call("health", nil, 2*time.Second)
	if err != nil {
		return false
	}
	var result HealthResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return false
	}
	return result.Status == "healthy"
}

// ListTools returns the sidecar's supported-tool inventory.
func (c *Client) ListTools() ([]ToolInfo, error) {
	raw, err := c.call("list_tools", nil, 5*time.Second)
	if err != nil {
		return nil, err
	}
	var result ListToolsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// Execute runs tool with args via the sidecar, bounded by timeoutMS
// (0 uses the protocol default of 30s). A sidecar-reported timeout (exit
// code 124) is returned as a normal ExecuteResult, not an error — only
// transport-level failures (no connection, malformed response) are
// returned as errors.
func (c *Client) Execute(tool string, args []string, cwd string, timeoutMS int) (ExecuteResult, error) {
	if timeoutMS <= 0 {
		timeoutMS = 30_000
	}
	timeout := time.Duration(timeoutMS) * time.Millisecond

	raw, err := c.call("execute", ExecuteParams{Tool: tool, Args: args, CWD: cwd}, timeout)
	if err != nil {
		if errors.Is(err, ErrTimeout) || errors.Is(err, os.ErrDeadlineExceeded) {
			return ExecuteResult{
				Success:  false,
				Stderr:   fmt.Sprintf("tool execution timed out after %dms", timeoutMS),
				ExitCode: ExitCodeTimeout,
			}, nil
		}
		return ExecuteResult{}, err
	}

	var result ExecuteResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return ExecuteResult{}, err
	}
	return result, nil
}
