package mode

import (
	"os"
	"testing"

	"github.com/huskycat-dev/huskycat/pkg/constants"
)

func envLookup(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDetect_ExplicitOverrideWins(t *testing.T) {
	got := Detect(DetectOptions{
		OverrideMode: constants.ModeCI,
		Getenv:       envLookup(map[string]string{"GITHUB_ACTIONS": ""}),
	})
	if got != constants.ModeCI {
		t.Errorf("Detect() = %q, want %q", got, constants.ModeCI)
	}
}

func TestDetect_UnknownOverrideFallsBackToDetection(t *testing.T) {
	got := Detect(DetectOptions{
		OverrideMode: "not-a-real-mode",
		Getenv:       envLookup(map[string]string{"GITLAB_CI": "true"}),
	})
	if got != constants.ModeCI {
		t.Errorf("Detect() = %q, want %q (fallback to CI detection)", got, constants.ModeCI)
	}
}

func TestDetect_McpSubcommand(t *testing.T) {
	got := Detect(DetectOptions{
		Args:   []string{"mcp-server"},
		Getenv: envLookup(nil),
	})
	if got != constants.ModeMCP {
		t.Errorf("Detect() = %q, want %q", got, constants.ModeMCP)
	}
}

func TestDetect_CIEnvMarker(t *testing.T) {
	for _, marker := range []string{"GITLAB_CI", "GITHUB_ACTIONS", "CI"} {
		got := Detect(DetectOptions{Getenv: envLookup(map[string]string{marker: "true"})})
		if got != constants.ModeCI {
			t.Errorf("Detect() with %s set = %q, want %q", marker, got, constants.ModeCI)
		}
	}
}

func TestDetect_GitHooksWhenHookEnvVarsPresent(t *testing.T) {
	for _, name := range []string{"GIT_DIR", "GIT_INDEX_FILE", "GIT_AUTHOR_NAME", "GIT_AUTHOR_EMAIL",
		"GIT_COMMITTER_NAME", "GIT_COMMITTER_EMAIL", "HUSKY_GIT_PARAMS"} {
		os.Unsetenv(name)
	}
	os.Setenv("GIT_DIR", "/repo/.git")
	os.Setenv("GIT_INDEX_FILE", "/repo/.git/index")
	defer os.Unsetenv("GIT_DIR")
	defer os.Unsetenv("GIT_INDEX_FILE")

	got := Detect(DetectOptions{Getenv: envLookup(nil)})
	if got != constants.ModeGitHooks {
		t.Errorf("Detect() = %q, want %q", got, constants.ModeGitHooks)
	}
}

func TestDetect_UnknownModeStringIsRejected(t *testing.T) {
	if isKnownMode("bogus") {
		t.Error("isKnownMode(\"bogus\") = true, want false")
	}
	for _, m := range []string{constants.ModeGitHooks, constants.ModeCI, constants.ModeCLI, constants.ModePipeline, constants.ModeMCP} {
		if !isKnownMode(m) {
			t.Errorf("isKnownMode(%q) = false, want true", m)
		}
	}
}
