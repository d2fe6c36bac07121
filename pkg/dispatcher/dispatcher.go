// Package dispatcher turns a tool name + file into an execution by
// choosing among four backends: the GPL sidecar, a bundled tool binary,
// a local PATH binary, or a container runtime delegation. It is the sole
// owner of the tool registry: nothing else constructs or mutates one.
package dispatcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/huskycat-dev/huskycat/pkg/constants"
	"github.com/huskycat-dev/huskycat/pkg/huskyerr"
	"github.com/huskycat-dev/huskycat/pkg/sidecar"
	"github.com/huskycat-dev/huskycat/pkg/tool"
)

// Backend identifies which execution strategy served a tool invocation,
// surfaced in diagnostics (e.g. scenario S4/S5's "backend=sidecar").
type Backend string

const (
	BackendSidecar   Backend = constants.BackendGPLSidecar
	BackendBundled   Backend = constants.BackendBundled
	BackendLocal     Backend = constants.BackendLocalPath
	BackendContainer Backend = constants.BackendContainer
)

// SidecarClient is the subset of *sidecar.Client the dispatcher needs;
// declared as an interface here (rather than imported concretely) so a
// fake can stand in for tests.
type SidecarClient interface {
	Health() bool
	Execute(toolName string, args []string, cwd string, timeoutMS int) (sidecar.ExecuteResult, error)
}

// ExternalTimeout bounds a single tool invocation across every backend,
// matching the sidecar's own 30s convention.
const ExternalTimeout = 30 * time.Second

// Dispatcher owns the tool registry and resolves each tool's backend.
type Dispatcher struct {
	registry *tool.Registry

	sidecar          SidecarClient
	gplTools         map[string]bool
	bundledDir       string
	allowContainer   bool
	containerImage   string
	lookPath         func(string) (string, error)
	containerRuntime func() (string, bool)
}

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithSidecar wires a GPL sidecar client; when nil (the default) the GPL
// sidecar backend is never selected.
func WithSidecar(c SidecarClient) Option {
	return func(d *Dispatcher) { d.sidecar = c }
}

// WithBundledDir overrides the bundled-tools directory (default
// "<home>/.huskycat/tools").
func WithBundledDir(dir string) Option {
	return func(d *Dispatcher) { d.bundledDir = dir }
}

// WithContainerBackend opt-in per the resolved Open Question: the
// container backend is disabled unless the caller explicitly enables it,
// since silently shelling out to podman/docker surprises CI environments
// that don't expect it.
func WithContainerBackend(image string) Option {
	return func(d *Dispatcher) { d.allowContainer = true; d.containerImage = image }
}

// New returns a Dispatcher owning a fresh, empty tool registry.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: tool.NewRegistry(),
		gplTools: toSet(constants.GPLTools),
		lookPath: exec.LookPath,
	}
	d.bundledDir = defaultBundledDir()
	d.containerRuntime = d.detectContainerRuntime
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func defaultBundledDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".huskycat", constants.BundledToolsDir)
}

// Registry returns the registry this dispatcher owns, for read access by
// the executor and mode adapters. Callers must not construct their own.
func (d *Dispatcher) Registry() *tool.Registry { return d.registry }

// Register adds t to the owned registry.
func (d *Dispatcher) Register(t tool.Tool) { d.registry.Register(t) }

// resolveBackend implements the priority chain from §4.4: sidecar (GPL
// tools only) → bundled → local PATH → container.
func (d *Dispatcher) resolveBackend(toolName string) (Backend, string, bool) {
	if d.gplTools[toolName] && d.sidecar != nil && d.sidecar.Health() {
		return BackendSidecar, "", true
	}

	if d.bundledDir != "" {
		candidate := filepath.Join(d.bundledDir, toolName)
		if info, err := os.Stat(candidate); err == nil && info.Mode()&0o111 != 0 {
			return BackendBundled, candidate, true
		}
	}

	if path, err := d.lookPath(toolName); err == nil {
		return BackendLocal, path, true
	}

	if d.allowContainer {
		if runtime, ok := d.containerRuntime(); ok {
			return BackendContainer, runtime, true
		}
	}

	return "", "", false
}

// Available reports whether any backend can currently serve toolName,
// mirroring resolveBackend's priority so availability checks at startup
// agree with what Execute would actually do.
func (d *Dispatcher) Available(_ context.Context, toolName string) bool {
	_, _, ok := d.resolveBackend(toolName)
	return ok
}

// Execute implements tool.Executor: resolve a backend for toolName and
// run it with args in cwd, returning a uniform (exitCode, stdout, stderr).
func (d *Dispatcher) Execute(ctx context.Context, toolName string, args []string, cwd string) (int, string, string, error) {
	backend, location, ok := d.resolveBackend(toolName)
	if !ok {
		return 0, "", "", huskyerr.New(huskyerr.KindBackend, "resolve backend",
			fmt.Errorf("no backend available for tool %q", toolName))
	}

	switch backend {
	case BackendSidecar:
		result, err := d.sidecar.Execute(toolName, args, cwd, int(ExternalTimeout.Milliseconds()))
		if err != nil {
			return 0, "", "", huskyerr.New(huskyerr.KindBackend, "sidecar execute", err)
		}
		return result.ExitCode, result.Stdout, result.Stderr, nil

	case BackendBundled:
		return runLocal(ctx, location, args, cwd)

	case BackendLocal:
		return runLocal(ctx, location, args, cwd)

	case BackendContainer:
		return runContainer(ctx, location, d.containerImage, args, cwd)

	default:
		return 0, "", "", huskyerr.New(huskyerr.KindBackend, "resolve backend", errors.New("unreachable backend"))
	}
}

func runLocal(ctx context.Context, binary string, args []string, cwd string) (int, string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, ExternalTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, args...)
	if cwd != "" {
		cmd.Dir = cwd
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return 124, stdout.String(), "tool execution timed out", nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), stdout.String(), stderr.String(), nil
		}
		return 0, "", "", huskyerr.New(huskyerr.KindBackend, "exec "+binary, err)
	}
	return 0, stdout.String(), stderr.String(), nil
}

func runContainer(ctx context.Context, runtime, image string, args []string, cwd string) (int, string, string, error) {
	if image == "" {
		image = "huskycat:local"
	}
	if cwd == "" {
		cwd, _ = os.Getwd()
	}
	containerArgs := append([]string{
		"run", "--rm", "--entrypoint=",
		"-v", cwd + ":/workspace",
		"-w", "/workspace",
		image,
	}, args...)
	return runLocal(ctx, runtime, containerArgs, "")
}

func (d *Dispatcher) detectContainerRuntime() (string, bool) {
	if isRunningInContainer() {
		return "", false
	}
	for _, runtime := range constants.ContainerRuntimes {
		if _, err := d.lookPath(runtime); err == nil {
			return runtime, true
		}
	}
	return "", false
}

func isRunningInContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if _, err := os.Stat("/run/.containerenv"); err == nil {
		return true
	}
	if os.Getenv("container") != "" {
		return true
	}
	return false
}
