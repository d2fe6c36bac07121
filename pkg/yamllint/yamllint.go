// Package yamllint is a clean-room YAML linter. Go's ecosystem lint tool
// for YAML (yamllint) is GPL-licensed and therefore routed through the
// isolated sidecar; this package is the fallback used when the sidecar
// is unreachable, so Apache-licensed code never links against it.
//
// Rules: trailing whitespace, maximum line length, tabs in indentation
// (error), mixed tabs/spaces (warning), duplicate mapping keys (error),
// and optionally empty values. Each rule name may be disabled via Config.
package yamllint

import (
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// Severity is the level reported on an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single linting finding, ordered for display by (Line, Column).
type Issue struct {
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Config controls which rules run and their thresholds.
type Config struct {
	MaxLineLength           int
	AllowTabs               bool
	AllowTrailingWhitespace bool
	AllowEmptyValues        bool
	AllowDuplicateKeys      bool
	DisabledRules           map[string]bool
}

// DefaultConfig matches the rule defaults: 120-column lines, tabs
// rejected, trailing whitespace rejected, empty values allowed,
// duplicate keys rejected.
func DefaultConfig() Config {
	return Config{
		MaxLineLength:    120,
		AllowEmptyValues: true,
		DisabledRules:    map[string]bool{},
	}
}

func (c Config) disabled(rule string) bool { return c.DisabledRules[rule] }

// Linter runs the rule set against YAML content.
type Linter struct {
	config Config
}

// New returns a Linter using the given config; a zero Config uses
// DefaultConfig's defaults where not otherwise specified by the caller.
func New(config Config) *Linter {
	if config.MaxLineLength == 0 {
		config.MaxLineLength = 120
	}
	if config.DisabledRules == nil {
		config.DisabledRules = map[string]bool{}
	}
	return &Linter{config: config}
}

// Lint runs every enabled rule against content and returns issues sorted
// by (line, column).
func (l *Linter) Lint(content string) []Issue {
	lines := splitKeepEnds(content)

	var issues []Issue
	issues = append(issues, l.checkTrailingWhitespace(lines)...)
	issues = append(issues, l.checkLineLength(lines)...)
	issues = append(issues, l.checkIndentation(lines)...)
	issues = append(issues, l.checkDuplicateKeys(content)...)
	issues = append(issues, l.checkEmptyValues(lines)...)

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].Column < issues[j].Column
	})
	return issues
}

// splitKeepEnds splits content into lines the way Python's
// str.splitlines(keepends=True) does, without actually keeping the line
// endings — callers only need per-line content and 1-based line numbers.
func splitKeepEnds(content string) []string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	if normalized == "" {
		return nil
	}
	lines := strings.Split(normalized, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func (l *Linter) checkTrailingWhitespace(lines []string) []Issue {
	if l.config.disabled("trailing-whitespace") || l.config.AllowTrailingWhitespace {
		return nil
	}
	var issues []Issue
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
			issues = append(issues, Issue{
				Line:     i + 1,
				Column:   len(line),
				Rule:     "trailing-whitespace",
				Message:  "trailing whitespace found",
				Severity: SeverityWarning,
			})
		}
	}
	return issues
}

func (l *Linter) checkLineLength(lines []string) []Issue {
	if l.config.disabled("line-length") {
		return nil
	}
	var issues []Issue
	for i, line := range lines {
		if len(line) > l.config.MaxLineLength {
			issues = append(issues, Issue{
				Line:   i + 1,
				Column: l.config.MaxLineLength + 1,
				Rule:   "line-length",
				Message: "line exceeds maximum length of " +
					itoa(l.config.MaxLineLength) + " characters (" + itoa(len(line)) + " > " + itoa(l.config.MaxLineLength) + ")",
				Severity: SeverityWarning,
			})
		}
	}
	return issues
}

var leadingWhitespace = regexp.MustCompile(`^[ \t]*`)

func (l *Linter) checkIndentation(lines []string) []Issue {
	if l.config.disabled("indentation") {
		return nil
	}
	var issues []Issue
	usesSpaces, usesTabs := false, false

	for i, line := range lines {
		if line == "" || (line[0] != ' ' && line[0] != '\t') {
			continue
		}
		ws := leadingWhitespace.FindString(line)
		if idx := strings.IndexByte(ws, '\t'); idx >= 0 {
			usesTabs = true
			if !l.config.AllowTabs {
				issues = append(issues, Issue{
					Line:     i + 1,
					Column:   idx + 1,
					Rule:     "indentation",
					Message:  "tab character found in indentation (YAML requires spaces)",
					Severity: SeverityError,
				})
			}
		}
		if strings.ContainsRune(ws, ' ') {
			usesSpaces = true
		}
	}

	if usesSpaces && usesTabs {
		issues = append(issues, Issue{
			Line:     1,
			Column:   1,
			Rule:     "indentation",
			Message:  "mixed tabs and spaces in indentation",
			Severity: SeverityWarning,
		})
	}
	return issues
}

// checkDuplicateKeys walks the goccy/go-yaml AST directly rather than
// unmarshaling into a map, so that sibling keys within the same mapping
// are compared by source position instead of being silently collapsed
// by the decoder.
func (l *Linter) checkDuplicateKeys(content string) []Issue {
	if l.config.disabled("duplicate-keys") || l.config.AllowDuplicateKeys {
		return nil
	}

	file, err := parser.ParseBytes([]byte(content), 0)
	if err != nil {
		return []Issue{{
			Line:     1,
			Column:   1,
			Rule:     "parse-error",
			Message:  "YAML parsing error: " + err.Error(),
			Severity: SeverityError,
		}}
	}

	var issues []Issue
	for _, doc := range file.Docs {
		if doc.Body == nil {
			continue
		}
		ast.Walk(walkerFunc(func(n ast.Node) ast.Visitor {
			if m, ok := n.(*ast.MappingNode); ok {
				issues = append(issues, duplicateKeysInMapping(m)...)
			}
			return nil
		}), doc.Body)
	}
	return issues
}

// walkerFunc adapts a plain function to ast.Visitor.
type walkerFunc func(ast.Node) ast.Visitor

func (f walkerFunc) Visit(n ast.Node) ast.Visitor { return f(n) }

func duplicateKeysInMapping(m *ast.MappingNode) []Issue {
	seen := make(map[string]bool, len(m.Values))
	var issues []Issue
	for _, kv := range m.Values {
		if kv.Key == nil {
			continue
		}
		key := kv.Key.String()
		if seen[key] {
			tok := kv.Key.GetToken()
			line, col := 1, 1
			if tok != nil && tok.Position != nil {
				line, col = tok.Position.Line, tok.Position.Column
			}
			issues = append(issues, Issue{
				Line:     line,
				Column:   col,
				Rule:     "duplicate-keys",
				Message:  "duplicate key '" + key + "' found in mapping",
				Severity: SeverityError,
			})
		}
		seen[key] = true
	}
	return issues
}

var emptyValuePattern = regexp.MustCompile(`^\s*[\w-]+:\s*(#.*)?$`)
var emptyValueKey = regexp.MustCompile(`^\s*([\w-]+):`)

func (l *Linter) checkEmptyValues(lines []string) []Issue {
	if l.config.disabled("empty-values") || l.config.AllowEmptyValues {
		return nil
	}
	var issues []Issue
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}
		if !emptyValuePattern.MatchString(line) {
			continue
		}
		m := emptyValueKey.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		issues = append(issues, Issue{
			Line:     i + 1,
			Column:   len(line),
			Rule:     "empty-values",
			Message:  "empty value for key '" + m[1] + "'",
			Severity: SeverityWarning,
		})
	}
	return issues
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}
