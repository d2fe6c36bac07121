// Package chapelfmt is a pure-Go, compiler-free Chapel source formatter.
// It runs three layers — whitespace normalization, regex-based operator
// spacing, and brace-counting indentation — none of which requires
// parsing Chapel into an AST. It is a leaf utility, not a full formatter:
// string literals are protected from layer 2 but nothing else is.
package chapelfmt

import (
	"regexp"
	"strings"
)

// DefaultIndentSize is the number of spaces per indentation level and the
// tab-expansion width used by layer 1.
const DefaultIndentSize = 2

// Formatter formats Chapel source through the three layers described above.
type Formatter struct {
	IndentSize int
}

// New returns a Formatter using DefaultIndentSize.
func New() *Formatter {
	return &Formatter{IndentSize: DefaultIndentSize}
}

// Format runs all three layers over code and returns the formatted result.
func (f *Formatter) Format(code string) string {
	code = f.normalizeWhitespace(code)
	code = f.formatSyntax(code)
	code = f.fixIndentation(code)
	return code
}

// normalizeWhitespace is layer 1: always-safe whitespace transformations —
// CRLF/CR to LF, trailing-whitespace trim, tab expansion, trailing newline.
func (f *Formatter) normalizeWhitespace(code string) string {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = strings.ReplaceAll(code, "\r", "\n")

	lines := strings.Split(code, "\n")
	tab := strings.Repeat(" ", f.IndentSize)
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\f\v")
		lines[i] = strings.ReplaceAll(line, "\t", tab)
	}

	result := strings.Join(lines, "\n")
	if result != "" && !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result
}

var (
	reAssign      = regexp.MustCompile(`(\w+)\s*=\s*([^=\s])`)
	rePlus        = regexp.MustCompile(`(\w+)\s*\+\s*(\w+)`)
	reMinus       = regexp.MustCompile(`(\w+)\s*-\s*(\w+)`)
	reMultiply    = regexp.MustCompile(`(\w+)\s*\*\s*(\w+)`)
	reDivide      = regexp.MustCompile(`(\w+)\s*/\s*(\w+)`)
	reModulo      = regexp.MustCompile(`(\w+)\s*%\s*(\w+)`)
	reEqual       = regexp.MustCompile(`(\w+)\s*==\s*(\w+)`)
	reNotEqual    = regexp.MustCompile(`(\w+)\s*!=\s*(\w+)`)
	reLessEqual   = regexp.MustCompile(`(\w+)\s*<=\s*(\w+)`)
	reGreaterEq   = regexp.MustCompile(`(\w+)\s*>=\s*(\w+)`)
	reLess        = regexp.MustCompile(`(\w+)\s*<\s*([^\s=])`)
	reGreater     = regexp.MustCompile(`(\w+)\s*>\s*([^\s=])`)
	reAnd         = regexp.MustCompile(`(\w+)\s*&&\s*(\w+)`)
	reOr          = regexp.MustCompile(`(\w+)\s*\|\|\s*(\w+)`)
	reIfKeyword   = regexp.MustCompile(`\bif\s*\(`)
	reForKeyword  = regexp.MustCompile(`\bfor\s*\(`)
	reWhileKw     = regexp.MustCompile(`\bwhile\s*\(`)
	reReturnKw    = regexp.MustCompile(`\breturn\s+`)
	reBraceParen  = regexp.MustCompile(`\)\s*\{`)
	reBraceWord   = regexp.MustCompile(`(\w)\s*\{`)
	reComma       = regexp.MustCompile(`,\s*([^\s])`)
	reSemiSpace   = regexp.MustCompile(`\s*;`)
	reSemiAfter   = regexp.MustCompile(`;\s*([^\s])`)
	reTypeColon   = regexp.MustCompile(`(\w+)\s*:\s*(\w+)`)
)

// formatSyntax is layer 2: regex-based operator and keyword spacing,
// skipped for blank lines and pure `//` comments, with string literals
// extracted first so their contents are never rewritten.
func (f *Formatter) formatSyntax(code string) string {
	lines := strings.Split(code, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			out = append(out, line)
			continue
		}

		parts, literals := extractStrings(line)
		for i, part := range parts {
			parts[i] = formatPart(part)
		}
		out = append(out, restoreStrings(parts, literals))
	}

	return strings.Join(out, "\n")
}

// extractStrings pulls double-quoted string literals out of line,
// replacing each with a `__STRING_n__` placeholder so layer 2's regexes
// never rewrite characters inside a string.
func extractStrings(line string) (parts []string, literals []string) {
	var current strings.Builder
	inString := false
	escapeNext := false

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
	}

	for _, ch := range line {
		switch {
		case escapeNext:
			current.WriteRune(ch)
			escapeNext = false
		case ch == '\\':
			current.WriteRune(ch)
			escapeNext = true
		case ch == '"':
			if inString {
				literals = append(literals, current.String()+`"`)
				current.Reset()
				parts = append(parts, placeholder(len(literals)-1))
				inString = false
			} else {
				flush()
				current.WriteRune('"')
				inString = true
			}
		default:
			current.WriteRune(ch)
		}
	}

	if inString {
		literals = append(literals, current.String())
		parts = append(parts, placeholder(len(literals)-1))
	} else {
		flush()
	}

	if len(parts) == 0 {
		parts = []string{line}
	}
	return parts, literals
}

func placeholder(i int) string {
	return "__STRING_" + itoa(i) + "__"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

func restoreStrings(parts []string, literals []string) string {
	result := strings.Join(parts, "")
	for i, lit := range literals {
		result = strings.ReplaceAll(result, placeholder(i), lit)
	}
	return result
}

func formatPart(part string) string {
	if strings.TrimSpace(part) == "" {
		return part
	}

	part = reAssign.ReplaceAllString(part, "$1 = $2")
	part = rePlus.ReplaceAllString(part, "$1 + $2")
	part = reMinus.ReplaceAllString(part, "$1 - $2")
	part = reMultiply.ReplaceAllString(part, "$1 * $2")
	part = reDivide.ReplaceAllString(part, "$1 / $2")
	part = reModulo.ReplaceAllString(part, "$1 % $2")

	part = reEqual.ReplaceAllString(part, "$1 == $2")
	part = reNotEqual.ReplaceAllString(part, "$1 != $2")
	part = reLessEqual.ReplaceAllString(part, "$1 <= $2")
	part = reGreaterEq.ReplaceAllString(part, "$1 >= $2")
	part = reLess.ReplaceAllString(part, "$1 < $2")
	part = reGreater.ReplaceAllString(part, "$1 > $2")

	part = reAnd.ReplaceAllString(part, "$1 && $2")
	part = reOr.ReplaceAllString(part, "$1 || $2")

	part = reIfKeyword.ReplaceAllString(part, "if (")
	part = reForKeyword.ReplaceAllString(part, "for (")
	part = reWhileKw.ReplaceAllString(part, "while (")
	part = reReturnKw.ReplaceAllString(part, "return ")

	part = reBraceParen.ReplaceAllString(part, ") {")
	part = reBraceWord.ReplaceAllString(part, "$1 {")

	part = reComma.ReplaceAllString(part, ", $1")

	part = reSemiSpace.ReplaceAllString(part, ";")
	part = reSemiAfter.ReplaceAllString(part, "; $1")

	part = reTypeColon.ReplaceAllString(part, "$1: $2")

	return part
}

// fixIndentation is layer 3: re-derives each line's leading whitespace
// from brace depth. A line opening with `}` dedents before being
// printed; `{`/`}` counts elsewhere on the line adjust depth for the
// line that follows.
func (f *Formatter) fixIndentation(code string) string {
	lines := strings.Split(code, "\n")
	out := make([]string, 0, len(lines))
	depth := 0

	for _, line := range lines {
		stripped := strings.TrimLeft(line, " \t")
		if stripped == "" {
			out = append(out, "")
			continue
		}

		if strings.HasPrefix(stripped, "}") {
			depth--
			if depth < 0 {
				depth = 0
			}
		}

		out = append(out, strings.Repeat(" ", depth*f.IndentSize)+stripped)

		opens := strings.Count(stripped, "{")
		closes := strings.Count(stripped, "}")
		depth += opens - closes
		if depth < 0 {
			depth = 0
		}
	}

	result := strings.Join(out, "\n")
	if result != "" && !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result
}

// CheckFormatting reports formatting issues in code without modifying it:
// trailing whitespace per line, a missing final newline, tab characters,
// and (as a catch-all) whether Format would change the text at all.
func (f *Formatter) CheckFormatting(code string) []string {
	var issues []string

	for _, line := range strings.Split(code, "\n") {
		if strings.TrimRight(line, " \t\f\v") != line {
			issues = append(issues, "trailing whitespace")
		}
	}
	if code != "" && !strings.HasSuffix(code, "\n") {
		issues = append(issues, "missing final newline")
	}
	if strings.Contains(code, "\t") {
		issues = append(issues, "contains tab characters")
	}
	if f.Format(code) != code {
		issues = append(issues, "formatting differs from standard")
	}
	return issues
}
