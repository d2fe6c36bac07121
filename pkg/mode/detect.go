// Package mode decides which of HuskyCat's five operating modes an
// invocation is running under and returns the Adapter that
// parameterizes everything downstream: output format, tool selection,
// fail-fast behavior, and fix policy.
package mode

import (
	"os"

	"github.com/huskycat-dev/huskycat/pkg/constants"
	"github.com/huskycat-dev/huskycat/pkg/gitutil"
	"github.com/huskycat-dev/huskycat/pkg/logger"
	"github.com/huskycat-dev/huskycat/pkg/sliceutil"
	"github.com/huskycat-dev/huskycat/pkg/tty"
)

var detectLog = logger.New("huskycat:mode")

// ciEnvMarkers lists the environment variables whose mere presence
// (any non-empty value) identifies a CI system, per spec.md §4.1 step 3.
var ciEnvMarkers = []string{"GITLAB_CI", "GITHUB_ACTIONS", "CI"}

// DetectOptions carries the override, arguments and env lookup Detect
// uses for steps 1-3, so tests can set them without touching the real
// process environment or os.Args. Steps 4 and 5 (hook env vars, TTY
// checks) always read the real process state.
type DetectOptions struct {
	// OverrideMode is the explicit CLI --mode flag value, or "" if the
	// flag was not given. Checked before the HUSKYCAT_MODE env var.
	OverrideMode string

	// Args are the invocation's subcommand arguments (os.Args[1:] in
	// production), inspected for the mcp-server subcommand.
	Args []string

	// Getenv defaults to os.Getenv; tests inject a map lookup instead.
	Getenv func(string) string
}

// Detect applies the five-step precedence from spec.md §4.1 and
// returns one of the constants.Mode* values. It never errors: an
// unrecognized override value is logged and detection falls through
// to the remaining steps rather than failing the invocation.
func Detect(opts DetectOptions) string {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	// 1. Explicit override: CLI flag takes priority over the env var.
	override := opts.OverrideMode
	if override == "" {
		override = getenv(constants.EnvMode)
	}
	if override != "" {
		if isKnownMode(override) {
			return override
		}
		detectLog.Printf("unknown mode override %q, falling back to detection", override)
	}

	// 2. mcp-server subcommand.
	if sliceutil.Contains(opts.Args, "mcp-server") {
		return constants.ModeMCP
	}

	// 3. CI environment markers.
	for _, name := range ciEnvMarkers {
		if getenv(name) != "" {
			return constants.ModeCI
		}
	}

	// 4. Git-hook invocation: at least 2 of the hook-related env vars set.
	if gitutil.CountPresentHookEnvVars() >= 2 {
		return constants.ModeGitHooks
	}

	// 5. Neither stdin nor stdout is a terminal: piped/redirected invocation.
	if !tty.IsStdinTerminal() && !tty.IsStdoutTerminal() {
		return constants.ModePipeline
	}

	// 6. Default.
	return constants.ModeCLI
}

func isKnownMode(m string) bool {
	switch m {
	case constants.ModeGitHooks, constants.ModeCI, constants.ModeCLI, constants.ModePipeline, constants.ModeMCP:
		return true
	default:
		return false
	}
}
