package stringutil

import "testing"

func TestNormalizeToolName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no suffix", "shellcheck", "shellcheck"},
		{"lint suffix", "yaml-lint", "yaml"},
		{"linter suffix", "dockerfile-linter", "dockerfile"},
		{"empty string", "", ""},
		{"just lint", "-lint", ""},
		{"linter takes priority over lint (no overlap)", "ansible-lint", "ansible"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeToolName(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeToolName(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeMCPToolID(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		expected   string
	}{
		{"dash-separated to underscore", "validate-black", "validate_black"},
		{"already underscore-separated", "validate_black", "validate_black"},
		{"multiple dashes", "get-run-history", "get_run_history"},
		{"mixed dashes and underscores", "validate-project_path", "validate_project_path"},
		{"no dashes or underscores", "validateblack", "validateblack"},
		{"empty string", "", ""},
		{"only dashes", "---", "___"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeMCPToolID(tt.identifier)
			if result != tt.expected {
				t.Errorf("NormalizeMCPToolID(%q) = %q, want %q", tt.identifier, result, tt.expected)
			}
		})
	}
}

func BenchmarkNormalizeToolName(b *testing.B) {
	name := "dockerfile-linter"
	for i := 0; i < b.N; i++ {
		NormalizeToolName(name)
	}
}

func BenchmarkNormalizeMCPToolID(b *testing.B) {
	identifier := "get-running-validations"
	for i := 0; i < b.N; i++ {
		NormalizeMCPToolID(identifier)
	}
}
