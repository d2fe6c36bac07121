// Package constants holds names and defaults shared across HuskyCat's
// packages: environment variables, default paths, and the fixed tables
// (tool sets, fix-confidence tiers, modes) that the rest of the module
// switches on.
package constants

import "strconv"

// Environment variables HuskyCat reads to configure itself. Adapter and
// mode-detector code should reference these names rather than literal
// strings so `grep` finds every call site.
const (
	// EnvMode forces mode detection to a specific value, bypassing
	// autodetection. One of: git_hooks, ci, cli, pipeline, mcp.
	EnvMode = "HUSKYCAT_MODE"

	// EnvNonBlocking, when set to "0"/"false", disables the fork/detach
	// behavior of git-hooks mode and runs validation inline instead.
	EnvNonBlocking = "HUSKYCAT_NONBLOCKING"

	// EnvGPLSocket overrides the GPL sidecar's Unix domain socket path.
	EnvGPLSocket = "HUSKYCAT_GPL_SOCKET"

	// EnvCacheRoot overrides the directory holding run records, PID
	// records and captured child logs. Bundled tool binaries are looked
	// up under the user's home directory regardless of it.
	EnvCacheRoot = "HUSKYCAT_HOME"

	// EnvConfigPath overrides the project config file HuskyCat loads.
	EnvConfigPath = "HUSKYCAT_CONFIG"

	// EnvMaxWorkers overrides the parallel executor's worker pool size.
	EnvMaxWorkers = "HUSKYCAT_MAX_WORKERS"

	// EnvNoColor disables ANSI styling, honored in addition to the
	// generic NO_COLOR convention.
	EnvNoColor = "HUSKYCAT_NO_COLOR"
)

// DefaultSocketPath is the GPL sidecar's Unix domain socket path when
// EnvGPLSocket is unset. Includes the UID so multiple users on a shared
// host don't collide.
func DefaultSocketPath(uid int) string {
	return "/tmp/huskycat-gpl-" + strconv.Itoa(uid) + ".sock"
}

// ConfigFileNames lists the project config file names HuskyCat searches
// for, in priority order, when EnvConfigPath is unset.
var ConfigFileNames = []string{
	".huskycat.yml",
	".huskycat.yaml",
	"huskycat.config.yml",
}

// BundledToolsDir is the subdirectory of ~/.huskycat holding
// self-managed tool binaries for the "bundled" backend tier.
const BundledToolsDir = "tools"

// RunHistoryDir is the subdirectory of the cache root holding persisted
// ValidationRun records.
const RunHistoryDir = "runs"

// PIDDir is the subdirectory of the cache root holding run-PID records
// for live, in-progress validation runs forked by git-hooks mode.
const PIDDir = "pids"

// LogsDir is the subdirectory of the cache root holding captured child
// output, one file per run-id.
const LogsDir = "logs"

// LastRunFile is the filename, inside RunHistoryDir, holding a copy of
// the most recently completed ValidationRun.
const LastRunFile = "last_run.json"

// DefaultCacheRoot is the cache root used when EnvCacheRoot is unset: a
// repo-local directory rather than a user-home one, so run history
// travels with the checkout.
const DefaultCacheRoot = ".huskycat"

// RunChildFlag is the internal CLI flag a forked validation child is
// re-invoked with, so the same binary can tell a fresh top-level
// invocation apart from the detached worker it spawned.
const RunChildFlag = "--run-child"

// Modes enumerates the five ways HuskyCat can be invoked, each driving a
// distinct AdapterConfig.
const (
	ModeGitHooks = "git_hooks"
	ModeCI       = "ci"
	ModeCLI      = "cli"
	ModePipeline = "pipeline"
	ModeMCP      = "mcp"
)

// Fix-confidence tiers bound how aggressively the dispatcher is allowed
// to apply a tool's autofix.
const (
	FixSafe      = "safe"
	FixLikely    = "likely"
	FixUncertain = "uncertain"
)

// Backend tiers enumerate the priority chain the dispatcher walks when
// locating an executable for a tool, highest priority first.
const (
	BackendGPLSidecar = "gpl_sidecar"
	BackendBundled    = "bundled"
	BackendLocalPath  = "local_path"
	BackendContainer  = "container"
)

// GPLTools lists the tool names routed through the GPL sidecar rather
// than executed in-process, because their licenses (GPL/LGPL) are
// incompatible with static linking into a permissively-licensed binary.
var GPLTools = []string{"shellcheck", "hadolint", "yamllint"}

// ContainerRuntimes lists the container runtimes probed, in order, for
// the "container" backend tier.
var ContainerRuntimes = []string{"podman", "docker"}

// NonBlockingHookBudget bounds how long git-hooks mode's parent process
// waits before giving up on the detached child and returning control to
// the shell anyway.
const NonBlockingHookBudget = 100 // milliseconds

// SidecarRequestTimeoutMS is the default per-tool execution timeout
// enforced by the GPL sidecar server, in milliseconds.
const SidecarRequestTimeoutMS = 30_000
