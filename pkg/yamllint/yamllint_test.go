package yamllint

import "testing"

func TestLint_TrailingWhitespace(t *testing.T) {
	l := New(DefaultConfig())
	issues := l.Lint("key: value \nother: 1\n")

	found := false
	for _, i := range issues {
		if i.Rule == "trailing-whitespace" && i.Line == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected trailing-whitespace issue on line 1, got %+v", issues)
	}
}

func TestLint_LineLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLineLength = 10
	l := New(cfg)
	issues := l.Lint("key: this value is much longer than ten characters\n")

	found := false
	for _, i := range issues {
		if i.Rule == "line-length" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected line-length issue, got %+v", issues)
	}
}

func TestLint_TabsInIndentationIsError(t *testing.T) {
	l := New(DefaultConfig())
	issues := l.Lint("key:\n\tvalue: 1\n")

	for _, i := range issues {
		if i.Rule == "indentation" && i.Severity == SeverityError {
			return
		}
	}
	t.Errorf("expected an indentation error for tab usage, got %+v", issues)
}

func TestLint_MixedTabsAndSpacesIsWarning(t *testing.T) {
	l := New(DefaultConfig())
	issues := l.Lint("a:\n  b: 1\nc:\n\td: 2\n")

	found := false
	for _, i := range issues {
		if i.Rule == "indentation" && i.Message == "mixed tabs and spaces in indentation" {
			found = true
			if i.Severity != SeverityWarning {
				t.Errorf("expected mixed-indentation severity warning, got %v", i.Severity)
			}
		}
	}
	if !found {
		t.Errorf("expected a mixed-indentation warning, got %+v", issues)
	}
}

func TestLint_DuplicateKeys(t *testing.T) {
	l := New(DefaultConfig())
	issues := l.Lint("name: a\nvalue: 1\nname: b\n")

	found := false
	for _, i := range issues {
		if i.Rule == "duplicate-keys" && i.Severity == SeverityError {
			found = true
		}
	}
	if !found {
		t.Errorf("expected duplicate-keys error, got %+v", issues)
	}
}

func TestLint_EmptyValuesDisabledByDefault(t *testing.T) {
	l := New(DefaultConfig())
	issues := l.Lint("key:\n")

	for _, i := range issues {
		if i.Rule == "empty-values" {
			t.Errorf("empty-values should be disabled by default, got %+v", i)
		}
	}
}

func TestLint_EmptyValuesWhenEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowEmptyValues = false
	l := New(cfg)
	issues := l.Lint("key:\n")

	found := false
	for _, i := range issues {
		if i.Rule == "empty-values" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected empty-values warning when AllowEmptyValues=false, got %+v", issues)
	}
}

func TestLint_DisabledRuleIsSkipped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DisabledRules["trailing-whitespace"] = true
	l := New(cfg)
	issues := l.Lint("key: value \n")

	for _, i := range issues {
		if i.Rule == "trailing-whitespace" {
			t.Errorf("trailing-whitespace should be disabled, got %+v", i)
		}
	}
}

func TestLint_IssuesOrderedByLineThenColumn(t *testing.T) {
	l := New(DefaultConfig())
	issues := l.Lint("a: 1 \nb: 2 \n")

	for i := 1; i < len(issues); i++ {
		prev, cur := issues[i-1], issues[i]
		if cur.Line < prev.Line || (cur.Line == prev.Line && cur.Column < prev.Column) {
			t.Fatalf("issues not sorted: %+v before %+v", prev, cur)
		}
	}
}

func TestLint_CleanDocumentHasNoErrors(t *testing.T) {
	l := New(DefaultConfig())
	issues := l.Lint("name: example\nversion: 1\nitems:\n  - a\n  - b\n")

	for _, i := range issues {
		if i.Severity == SeverityError {
			t.Errorf("unexpected error on clean document: %+v", i)
		}
	}
}

func TestLint_ParseErrorReported(t *testing.T) {
	l := New(DefaultConfig())
	issues := l.Lint("key: [unterminated\n")

	found := false
	for _, i := range issues {
		if i.Rule == "parse-error" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a parse-error issue for malformed YAML, got %+v", issues)
	}
}
