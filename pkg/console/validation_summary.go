package console

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a single tool finding surfaced in a
// run's end-of-validation summary.
type ValidationError struct {
	Tool     string // "black", "shellcheck", "dockerfile-lint", etc.
	Severity string // "critical", "high", "medium", "low"
	Message  string
	File     string
	Line     int
	Hint     string
}

// ValidationResults holds all findings from one validation run.
type ValidationResults struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// severityOrder defines the display order for severity levels
var severityOrder = map[string]int{
	"critical": 1,
	"high":     2,
	"medium":   3,
	"low":      4,
}

// toolEmoji maps a tool name to an emoji for visual identification in
// the summary; unlisted tools fall back to a generic marker.
var toolEmoji = map[string]string{
	"black":                  "🐍",
	"ruff":                   "🐍",
	"flake8":                 "🐍",
	"mypy":                   "🐍",
	"golangci-lint":          "🐹",
	"gosec":                  "🔒",
	"govulncheck":            "🔒",
	"go-licenses":            "📜",
	"shellcheck":             "🐚",
	"hadolint":               "🐳",
	"dockerfile-lint":        "🐳",
	"actionlint":             "⚙️",
	"github-actions-schema":  "⚙️",
	"compose-schema":         "🐳",
	"ansible-lint":           "📘",
	"yaml-lint":              "📄",
	"chapel-fmt":             "🏛️",
}

// FormatValidationSummary formats one run's findings into a
// user-friendly summary.
func FormatValidationSummary(results *ValidationResults, verbose bool) string {
	if len(results.Errors) == 0 && len(results.Warnings) == 0 {
		return ""
	}

	var output strings.Builder

	if len(results.Errors) > 0 {
		output.WriteString(FormatErrorMessage(fmt.Sprintf("Validation failed with %d error(s)", len(results.Errors))))
		output.WriteString("\n\n")
	}

	if len(results.Errors) > 0 {
		severityCounts := make(map[string]int)
		for _, err := range results.Errors {
			if err.Severity != "" {
				severityCounts[err.Severity]++
			}
		}

		if len(severityCounts) > 0 {
			output.WriteString(FormatListHeader("Error Summary:"))
			output.WriteString("\n")

			severities := []string{"critical", "high", "medium", "low"}
			for _, severity := range severities {
				if count, ok := severityCounts[severity]; ok && count > 0 {
					output.WriteString(fmt.Sprintf("  %s: %d error(s)\n", strings.Title(severity), count))
				}
			}
			output.WriteString("\n")
		}
	}

	if len(results.Errors) > 0 {
		toolGroups := groupErrorsByTool(results.Errors)

		if len(toolGroups) > 0 {
			output.WriteString(FormatListHeader("By Tool:"))
			output.WriteString("\n")

			tools := make([]string, 0, len(toolGroups))
			for tool := range toolGroups {
				tools = append(tools, tool)
			}
			sort.Strings(tools)

			for _, tool := range tools {
				errs := toolGroups[tool]
				emoji := toolEmoji[tool]
				if emoji == "" {
					emoji = "⚠️"
				}
				output.WriteString(fmt.Sprintf("  %s %s: %d error(s)\n", emoji, tool, len(errs)))
			}
			output.WriteString("\n")
		}
	}

	if len(results.Errors) > 0 && !verbose {
		output.WriteString(FormatListHeader("Recommended Fix Order:"))
		output.WriteString("\n")
		output.WriteString("  1. Fix safe-autofix findings first (formatters: black, chapel-fmt, ...)\n")
		output.WriteString("  2. Address lint errors from likely-autofix tools\n")
		output.WriteString("  3. Review uncertain-confidence findings by hand\n")
		output.WriteString("  4. Re-run with --fix once formatters agree on the tree\n")
		output.WriteString("\n")
	}

	if verbose && len(results.Errors) > 0 {
		output.WriteString(FormatListHeader("Detailed Errors:"))
		output.WriteString("\n\n")

		sortedErrors := make([]ValidationError, len(results.Errors))
		copy(sortedErrors, results.Errors)
		sort.Slice(sortedErrors, func(i, j int) bool {
			iSeverity := severityOrder[sortedErrors[i].Severity]
			jSeverity := severityOrder[sortedErrors[j].Severity]
			if iSeverity != jSeverity {
				return iSeverity < jSeverity
			}
			return sortedErrors[i].Tool < sortedErrors[j].Tool
		})

		for i, err := range sortedErrors {
			emoji := toolEmoji[err.Tool]
			if emoji == "" {
				emoji = "⚠️"
			}
			output.WriteString(fmt.Sprintf("%d. %s [%s] %s\n", i+1, emoji, strings.ToUpper(err.Severity), err.Tool))
			output.WriteString(fmt.Sprintf("   %s\n", err.Message))

			if err.File != "" {
				location := err.File
				if err.Line > 0 {
					location = fmt.Sprintf("%s:%d", location, err.Line)
				}
				output.WriteString(fmt.Sprintf("   Location: %s\n", location))
			}

			if err.Hint != "" {
				output.WriteString(fmt.Sprintf("   Hint: %s\n", err.Hint))
			}

			output.WriteString("\n")
		}
	}

	if !verbose && len(results.Errors) > 0 {
		output.WriteString(FormatInfoMessage("Use --verbose to see detailed error messages"))
		output.WriteString("\n")
	}

	return output.String()
}

// groupErrorsByTool groups errors by the tool that produced them; an
// empty tool name (shouldn't normally occur) is grouped under
// "validation" rather than dropped.
func groupErrorsByTool(errors []ValidationError) map[string][]ValidationError {
	groups := make(map[string][]ValidationError)
	for _, err := range errors {
		tool := err.Tool
		if tool == "" {
			tool = "validation"
		}
		groups[tool] = append(groups[tool], err)
	}
	return groups
}
