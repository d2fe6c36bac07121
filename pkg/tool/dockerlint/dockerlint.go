// Package dockerlint validates Dockerfiles: instruction-level syntax
// (every file needs a FROM) plus the same best-practice warnings a
// Hadolint-adjacent linter flags (unpinned base images, deprecated
// MAINTAINER, missing USER, missing HEALTHCHECK, apt/yum without
// cleanup, sudo in RUN, ADD used where COPY would do).
package dockerlint

import (
	"strconv"
	"strings"
)

// instruction is one parsed Dockerfile directive (continuation lines
// already joined), with its starting line number for messages.
type instruction struct {
	cmd       string
	arg       string
	startLine int
}

// Lint parses Dockerfile content and returns syntax errors plus
// best-practice warnings, mirroring the checks a Dockerfile linter runs
// after a successful parse.
func Lint(content string) (errs, warns []string) {
	instructions := parseInstructions(content)

	hasFrom := false
	sawImage := false
	runsAsRoot := true
	hasHealthcheck := false

	for _, ins := range instructions {
		switch ins.cmd {
		case "from":
			hasFrom = true
			sawImage = true
			image := strings.Fields(ins.arg)
			if len(image) > 0 {
				ref := image[0]
				if strings.Contains(ref, ":latest") || !strings.Contains(ref, ":") {
					warns = append(warns, lineMsg(ins.startLine,
						"avoid using 'latest' tag for base image; pin to a specific version for reproducibility"))
				}
			}

		case "maintainer":
			warns = append(warns, lineMsg(ins.startLine,
				"MAINTAINER is deprecated; use LABEL maintainer='email@example.com' instead"))

		case "user":
			runsAsRoot = false

		case "healthcheck":
			hasHealthcheck = true

		case "run":
			lower := strings.ToLower(ins.arg)
			if strings.Contains(lower, "apt-get install") || strings.Contains(lower, "apt install") {
				if !strings.Contains(lower, "rm -rf /var/lib/apt/lists/*") && !strings.Contains(lower, "apt-get clean") {
					warns = append(warns, lineMsg(ins.startLine,
						"apt-get install without cleanup; consider adding: && rm -rf /var/lib/apt/lists/*"))
				}
			}
			if strings.Contains(lower, "yum install") || strings.Contains(lower, "dnf install") {
				if !strings.Contains(lower, "yum clean all") && !strings.Contains(lower, "dnf clean all") {
					warns = append(warns, lineMsg(ins.startLine,
						"yum/dnf install without cleanup; consider adding: && yum clean all"))
				}
			}
			if strings.Contains(lower, "sudo") {
				warns = append(warns, lineMsg(ins.startLine,
					"avoid using 'sudo' in RUN commands; Docker runs as root by default"))
			}

		case "add":
			source := firstField(ins.arg)
			if !strings.HasSuffix(source, ".tar") && !strings.HasSuffix(source, ".tar.gz") && !strings.HasPrefix(source, "http") {
				warns = append(warns, lineMsg(ins.startLine,
					"use COPY instead of ADD for files; ADD should only be used for tar extraction or URLs"))
			}
		}
	}

	if !hasFrom {
		errs = append(errs, "Dockerfile must contain at least one FROM instruction")
	}
	if runsAsRoot && sawImage {
		warns = append(warns, "no USER instruction found; consider running as a non-root user for security")
	}
	if !hasHealthcheck && sawImage {
		warns = append(warns, "no HEALTHCHECK instruction found; consider adding one for container monitoring")
	}

	return errs, warns
}

func lineMsg(line int, msg string) string {
	return "line " + strconv.Itoa(line) + ": " + msg
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// parseInstructions splits Dockerfile content into instructions,
// joining backslash-continued lines and skipping comments/blanks.
func parseInstructions(content string) []instruction {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var instructions []instruction
	var buf strings.Builder
	startLine := 0

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		if text == "" {
			return
		}
		parts := strings.SplitN(text, " ", 2)
		cmd := strings.ToLower(parts[0])
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}
		instructions = append(instructions, instruction{cmd: cmd, arg: arg, startLine: startLine})
	}

	for i, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if buf.Len() == 0 {
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			startLine = i + 1
		}

		if strings.HasSuffix(trimmed, "\\") {
			buf.WriteString(strings.TrimSuffix(trimmed, "\\"))
			buf.WriteString(" ")
			continue
		}

		buf.WriteString(trimmed)
		flush()
	}
	flush()

	return instructions
}
