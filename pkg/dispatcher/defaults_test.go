package dispatcher

import "testing"

func TestRegisterDefaultTools_RegistersExpectedNames(t *testing.T) {
	d := NewDefault()
	want := []string{
		"black", "ruff", "flake8", "mypy",
		"golangci-lint", "gosec", "govulncheck", "go-licenses",
		"shellcheck", "hadolint", "dockerfile-lint",
		"actionlint", "github-actions-schema", "compose-schema",
		"ansible-lint", "yaml-lint", "chapel-fmt",
	}
	for _, name := range want {
		if _, ok := d.Registry().Lookup(name); !ok {
			t.Errorf("expected %q to be registered", name)
		}
	}
}

func TestRegisterDefaultTools_DependencyChainsWired(t *testing.T) {
	d := NewDefault()

	ruff, _ := d.Registry().Lookup("ruff")
	if deps := ruff.DependsOn(); len(deps) != 1 || deps[0] != "black" {
		t.Errorf("ruff.DependsOn() = %v, want [black]", deps)
	}

	black, _ := d.Registry().Lookup("black")
	if black.FixConfidence() != "safe" {
		t.Errorf("black.FixConfidence() = %v, want safe", black.FixConfidence())
	}
}

func TestRegisterDefaultTools_PathBasedMatchersDoNotOverlapExtension(t *testing.T) {
	d := NewDefault()

	hadolint, _ := d.Registry().Lookup("hadolint")
	if hadolint.CanHandle("app.py") {
		t.Error("hadolint should not claim a .py file")
	}
	if !hadolint.CanHandle("Dockerfile") {
		t.Error("hadolint should claim a Dockerfile")
	}

	actionlint, _ := d.Registry().Lookup("actionlint")
	if !actionlint.CanHandle(".github/workflows/ci.yml") {
		t.Error("actionlint should claim a workflow file")
	}
	if actionlint.CanHandle("docker-compose.yml") {
		t.Error("actionlint should not claim a compose file")
	}
}

func TestRegisterDefaultTools_ForFileSelectsAllMatchingTools(t *testing.T) {
	d := NewDefault()
	matched := d.Registry().ForFile("Dockerfile")

	names := map[string]bool{}
	for _, tl := range matched {
		names[tl.Name()] = true
	}
	if !names["hadolint"] || !names["dockerfile-lint"] {
		t.Errorf("ForFile(Dockerfile) = %v, want both hadolint and dockerfile-lint", names)
	}
}
