// Package schema validates Docker Compose and GitHub Actions workflow
// files against a cached JSON Schema, then layers on the extra semantic
// checks a schema alone can't express (undefined service references,
// unpinned action tags, and the like).
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	goyaml "github.com/goccy/go-yaml"
	"github.com/huskycat-dev/huskycat/pkg/logger"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

var schemaLog = logger.New("schema")

//go:embed schemas/compose_schema.json
var composeSchemaJSON string

//go:embed schemas/github_actions_schema.json
var githubActionsSchemaJSON string

var (
	composeSchemaOnce sync.Once
	compiledCompose   *jsonschema.Schema
	composeSchemaErr  error

	actionsSchemaOnce sync.Once
	compiledActions   *jsonschema.Schema
	actionsSchemaErr  error
)

func getCompiledComposeSchema() (*jsonschema.Schema, error) {
	composeSchemaOnce.Do(func() {
		compiledCompose, composeSchemaErr = compileSchema(composeSchemaJSON, "https://huskycat.dev/schemas/compose.json")
	})
	return compiledCompose, composeSchemaErr
}

func getCompiledGitHubActionsSchema() (*jsonschema.Schema, error) {
	actionsSchemaOnce.Do(func() {
		compiledActions, actionsSchemaErr = compileSchema(githubActionsSchemaJSON, "https://huskycat.dev/schemas/github-actions.json")
	})
	return compiledActions, actionsSchemaErr
}

// compileSchema parses schemaJSON and compiles it under schemaURL,
// mirroring the add-resource-then-compile sequence jsonschema/v6 expects.
func compileSchema(schemaJSON, schemaURL string) (*jsonschema.Schema, error) {
	schemaLog.Printf("compiling schema %s", schemaURL)

	var schemaDoc any
	if err := json.Unmarshal([]byte(schemaJSON), &schemaDoc); err != nil {
		return nil, fmt.Errorf("parse embedded schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// Result is the (is_valid, errors, warnings) triple every schema-plus-
// semantic validator returns.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

func (r *Result) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// decodeYAMLDocument parses a YAML document and round-trips it through
// encoding/json so map keys and scalar types (e.g. yaml.MapSlice,
// non-string map keys) normalize to the plain map[string]any/[]any/
// string/float64/bool shapes jsonschema/v6 expects, the same
// marshal-then-unmarshal technique used to bridge a YAML parse result
// into a JSON-schema validator.
func decodeYAMLDocument(content []byte) (map[string]any, error) {
	var raw any
	if err := goyaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize yaml document: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, fmt.Errorf("decode normalized document: %w", err)
	}
	return doc, nil
}

func validateAgainstSchema(doc map[string]any, s *jsonschema.Schema, result *Result) {
	if err := s.Validate(doc); err != nil {
		result.addError("%s", err.Error())
	}
}
