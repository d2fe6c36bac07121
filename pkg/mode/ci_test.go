package mode

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/huskycat-dev/huskycat/pkg/tool"
)

func TestJUnitOutput_WellFormedXML(t *testing.T) {
	a := &ciAdapter{baseAdapter: baseAdapter{registry: newTestRegistry()}}
	results := map[string][]tool.ValidationResult{
		"a.py": {
			{Tool: "black", File: "a.py", Success: false, Errors: []string{"would reformat"}},
			{Tool: "mypy", File: "a.py", Success: true},
		},
	}
	out := a.FormatOutput(results, NewSummary(results))

	var suite junitTestSuite
	if err := xml.Unmarshal([]byte(strings.TrimPrefix(out, xml.Header)), &suite); err != nil {
		t.Fatalf("output is not well-formed XML: %v\n%s", err, out)
	}
	if suite.Tests != 2 {
		t.Errorf("Tests = %d, want 2", suite.Tests)
	}
	if suite.Failures != 1 {
		t.Errorf("Failures = %d, want 1", suite.Failures)
	}
}

func TestJUnitOutput_EmptyResultsStillValid(t *testing.T) {
	a := &ciAdapter{baseAdapter: baseAdapter{registry: newTestRegistry()}}
	out := a.FormatOutput(map[string][]tool.ValidationResult{}, Summary{Success: true})
	var suite junitTestSuite
	if err := xml.Unmarshal([]byte(strings.TrimPrefix(out, xml.Header)), &suite); err != nil {
		t.Fatalf("empty-result output is not well-formed XML: %v\n%s", err, out)
	}
	if suite.Tests != 0 {
		t.Errorf("Tests = %d, want 0", suite.Tests)
	}
}

func TestCIAdapter_FixPolicyNeverAutoFixes(t *testing.T) {
	a := &ciAdapter{baseAdapter: baseAdapter{registry: newTestRegistry()}}
	cfg := a.Config()
	if cfg.FixPolicy.ShouldAutoFix(tool.FixSafe) {
		t.Error("ci adapter must never auto-fix, even the safe tier")
	}
}
