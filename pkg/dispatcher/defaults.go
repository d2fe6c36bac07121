package dispatcher

import (
	"github.com/huskycat-dev/huskycat/pkg/schema"
	"github.com/huskycat-dev/huskycat/pkg/tool"
	"github.com/huskycat-dev/huskycat/pkg/tool/ansiblelint"
	"github.com/huskycat-dev/huskycat/pkg/tool/chapelfmt"
	"github.com/huskycat-dev/huskycat/pkg/tool/dockerlint"
	"github.com/huskycat-dev/huskycat/pkg/yamllint"
)

// NewDefault builds a Dispatcher already registered with HuskyCat's
// built-in tool set: external binaries dispatched through the backend
// chain (sidecar/bundled/local/container), plus the in-process leaf
// validators that need no subprocess at all.
func NewDefault(opts ...Option) *Dispatcher {
	d := New(opts...)
	RegisterDefaultTools(d)
	return d
}

// RegisterDefaultTools registers HuskyCat's built-in tools into d.
// Exposed separately from NewDefault so callers that already built a
// Dispatcher (tests, the MCP server building a narrower set) can wire
// the same defaults without constructing a second one.
func RegisterDefaultTools(d *Dispatcher) {
	// Python toolchain: black formats, ruff/flake8/mypy lint against the
	// formatted result.
	d.Register(newExternal(d, "black", []string{"py"}, tool.FixSafe, nil, nil))
	d.Register(newExternal(d, "ruff", []string{"py"}, tool.FixLikely, []string{"black"}, func(file string) []string {
		return []string{"check", file}
	}))
	d.Register(newExternal(d, "flake8", []string{"py"}, tool.FixUncertain, []string{"black"}, nil))
	d.Register(newExternal(d, "mypy", []string{"py"}, tool.FixUncertain, []string{"black"}, nil))

	// Go toolchain: golangci-lint first and gosec after it;
	// govulncheck/go-licenses run independently of it.
	d.Register(newExternal(d, "golangci-lint", []string{"go"}, tool.FixLikely, nil, func(file string) []string {
		return []string{"run", file}
	}))
	d.Register(newExternal(d, "gosec", []string{"go"}, tool.FixUncertain, []string{"golangci-lint"}, nil))
	d.Register(newExternal(d, "govulncheck", []string{"go"}, tool.FixUncertain, nil, nil))
	d.Register(newExternal(d, "go-licenses", []string{"go"}, tool.FixUncertain, nil, func(file string) []string {
		return []string{"check", file}
	}))

	// Shell and Dockerfile: shellcheck/hadolint are GPL-licensed and
	// route through the sidecar via constants.GPLTools; dockerfile-lint
	// is the clean-room in-process replacement for the syntax/best-
	// practice half of that domain, kept distinct from hadolint rather
	// than merged since dockerfile-lint needs no backend at all.
	d.Register(newExternal(d, "shellcheck", []string{"sh", "bash"}, tool.FixUncertain, nil, nil))
	d.Register(newPathExternal(d, "hadolint", dockerlint.IsDockerfilePath, tool.FixUncertain, nil, nil))
	d.Register(dockerlint.NewAdapter())

	// CI pipeline files: actionlint is the upstream external linter;
	// github-actions-schema is the clean-room schema-plus-semantic
	// validator that runs alongside it without a subprocess.
	d.Register(newPathExternal(d, "actionlint", schema.IsGitHubActionsWorkflowPath, tool.FixUncertain, nil, nil))
	d.Register(schema.NewGitHubActionsAdapter())
	d.Register(schema.NewComposeAdapter())

	// Ansible: dispatched as an external binary with a path-based
	// CanHandle, so it gets its own adapter type rather than the generic
	// extension-matching ExternalTool.
	d.Register(ansiblelint.NewAdapter(d))

	// In-process leaf validators: no backend resolution needed.
	d.Register(yamllint.NewAdapter(yamllint.DefaultConfig()))
	d.Register(chapelfmt.NewAdapter())
}

func newExternal(d *Dispatcher, name string, exts []string, confidence tool.FixConfidence, deps []string, args func(string) []string) *tool.ExternalTool {
	ext := tool.NewExternalTool(name, exts, d)
	ext.Confidence = confidence
	ext.Upstream = deps
	if args != nil {
		ext.Args = args
	}
	return ext
}

// pathExternalTool adapts tool.ExternalTool to a custom path-based
// CanHandle rule, for external binaries (hadolint, actionlint) whose
// target files aren't identified by extension.
type pathExternalTool struct {
	*tool.ExternalTool
	matches func(path string) bool
}

func (p *pathExternalTool) CanHandle(path string) bool { return p.matches(path) }

func newPathExternal(d *Dispatcher, name string, matches func(string) bool, confidence tool.FixConfidence, deps []string, args func(string) []string) *pathExternalTool {
	ext := tool.NewExternalTool(name, nil, d)
	ext.Confidence = confidence
	ext.Upstream = deps
	if args != nil {
		ext.Args = args
	}
	return &pathExternalTool{ExternalTool: ext, matches: matches}
}
