package mode

import "github.com/huskycat-dev/huskycat/pkg/tool"

// FixPolicy is the per-mode matrix from spec.md §4.1: for each
// fix-confidence tier, whether a finding is auto-fixed, prompted for,
// or left untouched (the default when neither map names the tier).
type FixPolicy struct {
	autoFix map[tool.FixConfidence]bool
	prompt  map[tool.FixConfidence]bool
}

// ShouldAutoFix reports whether tier may be rewritten without asking.
func (p FixPolicy) ShouldAutoFix(tier tool.FixConfidence) bool { return p.autoFix[tier] }

// ShouldPromptForFix reports whether tier should be offered to the
// user interactively rather than applied or silently skipped.
func (p FixPolicy) ShouldPromptForFix(tier tool.FixConfidence) bool { return p.prompt[tier] }

var (
	// fixPolicyNever applies to ci, pipeline, and mcp: findings are
	// reported only, never rewritten.
	fixPolicyNever = FixPolicy{}

	// fixPolicySafeOnly applies to both git-hooks variants: only pure
	// formatters (safe tier) are auto-applied, nothing is prompted for
	// since neither variant is interactive.
	fixPolicySafeOnly = FixPolicy{
		autoFix: map[tool.FixConfidence]bool{tool.FixSafe: true},
	}

	// fixPolicyCLI applies to the interactive cli adapter: safe and
	// likely tiers auto-fix, uncertain findings are offered via prompt.
	fixPolicyCLI = FixPolicy{
		autoFix: map[tool.FixConfidence]bool{tool.FixSafe: true, tool.FixLikely: true},
		prompt:  map[tool.FixConfidence]bool{tool.FixUncertain: true},
	}
)

// AdapterConfig is the bundle of policy knobs a mode fixes for the
// remainder of a run, per spec.md §3's AdapterConfig data model.
type AdapterConfig struct {
	OutputFormat string // minimal|human|json|junit_xml|jsonrpc
	Tools        string // all|fast|configured|list
	Interactive  bool
	FailFast     bool
	Progress     bool
	Color        bool
	StdinMode    bool
	Transport    string // stdio|socket, meaningful only for mcp
	FixPolicy    FixPolicy
}

// Summary is the aggregate counters an adapter's FormatOutput renders
// alongside the per-file, per-tool ValidationResults.
type Summary struct {
	ToolsRun int
	Errors   int
	Warnings int
	Success  bool
}

// NewSummary tallies a set of results keyed by file into a Summary.
func NewSummary(results map[string][]tool.ValidationResult) Summary {
	s := Summary{Success: true}
	seen := map[string]bool{}
	for _, fileResults := range results {
		for _, r := range fileResults {
			seen[r.Tool] = true
			s.Errors += r.ErrorCount()
			s.Warnings += r.WarningCount()
			if !r.Success {
				s.Success = false
			}
		}
	}
	s.ToolsRun = len(seen)
	return s
}
