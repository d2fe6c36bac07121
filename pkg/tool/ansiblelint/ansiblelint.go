// Package ansiblelint wraps the external ansible-lint binary, matching
// files by path convention (playbooks/roles directory layout) rather
// than extension since Ansible content is plain YAML.
package ansiblelint

import (
	"strings"

	"github.com/huskycat-dev/huskycat/pkg/tool"
)

// pathIndicators mirrors ansible-lint's own can_handle: a YAML file only
// counts as Ansible content if it lives under a conventional directory
// or carries a conventional playbook name.
var pathIndicators = []string{
	"/playbooks/", "/roles/", "/tasks/", "/handlers/",
	"/vars/", "/defaults/", "/meta/",
	"playbook", "site.yml", "site.yaml",
}

// Adapter is ansible-lint dispatched as an external tool, with a
// path-based CanHandle overriding ExternalTool's extension-based default.
type Adapter struct {
	*tool.ExternalTool
}

// NewAdapter builds the ansible-lint adapter, invoked as
// `ansible-lint --nocolor --parseable <file>`.
func NewAdapter(exec tool.Executor) *Adapter {
	ext := tool.NewExternalTool("ansible-lint", nil, exec)
	ext.Args = func(file string) []string {
		return []string{"--nocolor", "--parseable", file}
	}
	ext.Confidence = tool.FixLikely
	return &Adapter{ExternalTool: ext}
}

// CanHandle reports whether path looks like Ansible content by
// directory or filename convention.
func (a *Adapter) CanHandle(path string) bool {
	// Leading "/" so a top-level directory (e.g. "handlers/x.yml")
	// matches the same "/handlers/" indicator as a nested one.
	lower := "/" + strings.ToLower(path)
	for _, indicator := range pathIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
