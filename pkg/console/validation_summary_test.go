package console

import (
	"strings"
	"testing"
)

func TestFormatValidationSummary_NoErrors(t *testing.T) {
	results := &ValidationResults{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	output := FormatValidationSummary(results, false)
	if output != "" {
		t.Errorf("Expected empty output for no errors, got: %s", output)
	}
}

func TestFormatValidationSummary_SingleError(t *testing.T) {
	results := &ValidationResults{
		Errors: []ValidationError{
			{
				Tool:     "black",
				Severity: "high",
				Message:  "would reformat file",
				File:     "src/app.py",
				Line:     5,
			},
		},
	}

	output := FormatValidationSummary(results, false)

	if !strings.Contains(output, "Validation failed with 1 error(s)") {
		t.Errorf("Expected error count in output, got: %s", output)
	}

	if !strings.Contains(output, "Error Summary:") {
		t.Errorf("Expected error summary section, got: %s", output)
	}

	if !strings.Contains(output, "High: 1 error(s)") {
		t.Errorf("Expected severity count, got: %s", output)
	}

	if !strings.Contains(output, "By Tool:") {
		t.Errorf("Expected by-tool section, got: %s", output)
	}

	if !strings.Contains(output, "black: 1 error(s)") {
		t.Errorf("Expected black tool grouping, got: %s", output)
	}

	if !strings.Contains(output, "Recommended Fix Order:") {
		t.Errorf("Expected recommended fix order, got: %s", output)
	}

	if !strings.Contains(output, "Use --verbose") {
		t.Errorf("Expected verbose flag hint, got: %s", output)
	}
}

func TestFormatValidationSummary_MultipleErrors(t *testing.T) {
	results := &ValidationResults{
		Errors: []ValidationError{
			{
				Tool:     "black",
				Severity: "high",
				Message:  "would reformat file",
				File:     "src/app.py",
				Line:     5,
			},
			{
				Tool:     "gosec",
				Severity: "critical",
				Message:  "hardcoded credentials",
				File:     "main.go",
				Line:     8,
			},
			{
				Tool:     "black",
				Severity: "medium",
				Message:  "unused import",
				File:     "src/app.py",
				Line:     12,
			},
		},
	}

	output := FormatValidationSummary(results, false)

	if !strings.Contains(output, "Validation failed with 3 error(s)") {
		t.Errorf("Expected 3 errors in output, got: %s", output)
	}

	if !strings.Contains(output, "Critical: 1 error(s)") {
		t.Errorf("Expected critical severity count, got: %s", output)
	}

	if !strings.Contains(output, "High: 1 error(s)") {
		t.Errorf("Expected high severity count, got: %s", output)
	}

	if !strings.Contains(output, "Medium: 1 error(s)") {
		t.Errorf("Expected medium severity count, got: %s", output)
	}

	if !strings.Contains(output, "black: 2 error(s)") {
		t.Errorf("Expected 2 black errors grouped, got: %s", output)
	}

	if !strings.Contains(output, "gosec: 1 error(s)") {
		t.Errorf("Expected 1 gosec error grouped, got: %s", output)
	}
}

func TestFormatValidationSummary_VerboseMode(t *testing.T) {
	results := &ValidationResults{
		Errors: []ValidationError{
			{
				Tool:     "black",
				Severity: "high",
				Message:  "would reformat file",
				File:     "src/app.py",
				Line:     5,
				Hint:     "run with --fix",
			},
			{
				Tool:     "gosec",
				Severity: "critical",
				Message:  "hardcoded credentials",
				File:     "main.go",
				Line:     8,
			},
		},
	}

	output := FormatValidationSummary(results, true)

	if !strings.Contains(output, "Detailed Errors:") {
		t.Errorf("Expected detailed errors section in verbose mode, got: %s", output)
	}

	if !strings.Contains(output, "would reformat file") {
		t.Errorf("Expected detailed error message in verbose mode, got: %s", output)
	}

	if !strings.Contains(output, "Location: src/app.py:5") {
		t.Errorf("Expected file location in verbose mode, got: %s", output)
	}

	if !strings.Contains(output, "Hint: run with --fix") {
		t.Errorf("Expected hint in verbose mode, got: %s", output)
	}

	if strings.Contains(output, "Use --verbose") {
		t.Errorf("Should not show verbose hint when already in verbose mode, got: %s", output)
	}

	if strings.Contains(output, "Recommended Fix Order:") {
		t.Errorf("Should not show fix order in verbose mode, got: %s", output)
	}
}

func TestGroupErrorsByTool(t *testing.T) {
	errors := []ValidationError{
		{Tool: "black", Message: "Error 1"},
		{Tool: "gosec", Message: "Error 2"},
		{Tool: "black", Message: "Error 3"},
		{Tool: "", Message: "Error 4"},
	}

	groups := groupErrorsByTool(errors)

	if len(groups["black"]) != 2 {
		t.Errorf("Expected 2 black errors, got %d", len(groups["black"]))
	}

	if len(groups["gosec"]) != 1 {
		t.Errorf("Expected 1 gosec error, got %d", len(groups["gosec"]))
	}

	if len(groups["validation"]) != 1 {
		t.Errorf("Expected 1 validation error (empty tool), got %d", len(groups["validation"]))
	}
}

func TestFormatValidationSummary_AllSeverityLevels(t *testing.T) {
	results := &ValidationResults{
		Errors: []ValidationError{
			{Tool: "gosec", Severity: "critical", Message: "Critical security issue"},
			{Tool: "black", Severity: "high", Message: "High priority formatting error"},
			{Tool: "actionlint", Severity: "medium", Message: "Medium workflow config issue"},
			{Tool: "yaml-lint", Severity: "low", Message: "Low priority style warning"},
		},
	}

	output := FormatValidationSummary(results, false)

	if !strings.Contains(output, "Critical: 1 error(s)") {
		t.Errorf("Expected critical severity in output")
	}
	if !strings.Contains(output, "High: 1 error(s)") {
		t.Errorf("Expected high severity in output")
	}
	if !strings.Contains(output, "Medium: 1 error(s)") {
		t.Errorf("Expected medium severity in output")
	}
	if !strings.Contains(output, "Low: 1 error(s)") {
		t.Errorf("Expected low severity in output")
	}
}

func TestFormatValidationSummary_ToolEmojis(t *testing.T) {
	results := &ValidationResults{
		Errors: []ValidationError{
			{Tool: "black", Severity: "high", Message: "formatting error"},
			{Tool: "gosec", Severity: "high", Message: "security error"},
			{Tool: "actionlint", Severity: "high", Message: "workflow error"},
			{Tool: "shellcheck", Severity: "high", Message: "shell error"},
			{Tool: "ansible-lint", Severity: "high", Message: "playbook error"},
			{Tool: "some-unknown-tool", Severity: "high", Message: "unmapped tool error"},
		},
	}

	output := FormatValidationSummary(results, true)

	if output == "" {
		t.Errorf("Expected non-empty output with emojis")
	}
	if !strings.Contains(output, "some-unknown-tool") {
		t.Errorf("Expected an unmapped tool to still render with the fallback emoji, got: %s", output)
	}
}
