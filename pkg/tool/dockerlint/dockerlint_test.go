package dockerlint

import (
	"strings"
	"testing"
)

func TestLint_MissingFromIsError(t *testing.T) {
	errs, _ := Lint("RUN echo hi\n")
	if !containsSubstring(errs, "FROM instruction") {
		t.Errorf("expected missing-FROM error, got %v", errs)
	}
}

func TestLint_UnpinnedBaseImageWarns(t *testing.T) {
	errs, warns := Lint("FROM ubuntu\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !containsSubstring(warns, "'latest' tag") {
		t.Errorf("expected unpinned-tag warning, got %v", warns)
	}
}

func TestLint_PinnedImageDoesNotWarnAboutTag(t *testing.T) {
	_, warns := Lint("FROM ubuntu:22.04\nUSER app\nHEALTHCHECK CMD true\n")
	if containsSubstring(warns, "'latest' tag") {
		t.Errorf("did not expect a tag warning for a pinned image, got %v", warns)
	}
}

func TestLint_MaintainerIsDeprecated(t *testing.T) {
	_, warns := Lint("FROM scratch\nMAINTAINER me@example.com\n")
	if !containsSubstring(warns, "MAINTAINER is deprecated") {
		t.Errorf("expected deprecated-MAINTAINER warning, got %v", warns)
	}
}

func TestLint_AptInstallWithoutCleanupWarns(t *testing.T) {
	_, warns := Lint("FROM debian\nRUN apt-get update && apt-get install -y curl\n")
	if !containsSubstring(warns, "without cleanup") {
		t.Errorf("expected apt cleanup warning, got %v", warns)
	}
}

func TestLint_AptInstallWithCleanupDoesNotWarn(t *testing.T) {
	_, warns := Lint("FROM debian\nRUN apt-get install -y curl && rm -rf /var/lib/apt/lists/*\n")
	if containsSubstring(warns, "without cleanup") {
		t.Errorf("did not expect cleanup warning, got %v", warns)
	}
}

func TestLint_SudoInRunWarns(t *testing.T) {
	_, warns := Lint("FROM debian\nRUN sudo apt-get update\n")
	if !containsSubstring(warns, "'sudo'") {
		t.Errorf("expected sudo warning, got %v", warns)
	}
}

func TestLint_AddForPlainFileWarns(t *testing.T) {
	_, warns := Lint("FROM scratch\nADD app.py /app.py\n")
	if !containsSubstring(warns, "Use COPY instead of ADD") {
		t.Errorf("expected ADD-vs-COPY warning, got %v", warns)
	}
}

func TestLint_AddForTarballDoesNotWarn(t *testing.T) {
	_, warns := Lint("FROM scratch\nADD bundle.tar.gz /app/\n")
	if containsSubstring(warns, "Use COPY instead of ADD") {
		t.Errorf("did not expect ADD-vs-COPY warning for a tarball, got %v", warns)
	}
}

func TestLint_NoUserInstructionWarns(t *testing.T) {
	_, warns := Lint("FROM ubuntu:22.04\n")
	if !containsSubstring(warns, "non-root user") {
		t.Errorf("expected missing-USER warning, got %v", warns)
	}
}

func TestLint_NoHealthcheckWarns(t *testing.T) {
	_, warns := Lint("FROM ubuntu:22.04\nUSER app\n")
	if !containsSubstring(warns, "HEALTHCHECK") {
		t.Errorf("expected missing-HEALTHCHECK warning, got %v", warns)
	}
}

func TestLint_LineContinuationJoinsInstruction(t *testing.T) {
	content := "FROM debian\nRUN apt-get update \\\n    && apt-get install -y curl \\\n    && rm -rf /var/lib/apt/lists/*\n"
	_, warns := Lint(content)
	if containsSubstring(warns, "without cleanup") {
		t.Errorf("expected continuation lines to join into one instruction, got %v", warns)
	}
}

func TestAdapter_CanHandle(t *testing.T) {
	a := NewAdapter()
	cases := map[string]bool{
		"Dockerfile":          true,
		"ContainerFile":       true,
		"app.dockerfile":      true,
		"docker-compose.yml":  false,
		"README.md":           false,
	}
	for path, want := range cases {
		if got := a.CanHandle(path); got != want {
			t.Errorf("CanHandle(%q) = %v, want %v", path, got, want)
		}
	}
}

func containsSubstring(items []string, substr string) bool {
	for _, item := range items {
		if strings.Contains(item, substr) {
			return true
		}
	}
	return false
}
