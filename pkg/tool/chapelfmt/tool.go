package chapelfmt

import (
	"context"
	"os"
	"time"

	"github.com/huskycat-dev/huskycat/pkg/tool"
)

// Adapter wires Formatter into the tool.Tool interface: an in-process
// formatter, no external backend, no dispatcher involvement.
type Adapter struct {
	tool.BaseExtensionMatcher
	f *Formatter
}

// NewAdapter returns the chapel-fmt tool registered under the "chapel-fmt" name.
func NewAdapter() *Adapter {
	return &Adapter{
		BaseExtensionMatcher: tool.BaseExtensionMatcher{Exts: []string{"chpl"}},
		f:                    New(),
	}
}

func (a *Adapter) Name() string                  { return "chapel-fmt" }
func (a *Adapter) DependsOn() []string            { return nil }
func (a *Adapter) FixConfidence() tool.FixConfidence { return tool.FixSafe }
func (a *Adapter) Available(ctx context.Context) bool { return true }

func (a *Adapter) Run(ctx context.Context, file string) (tool.ValidationResult, error) {
	start := time.Now()
	result := tool.ValidationResult{Tool: a.Name(), File: file}

	original, err := os.ReadFile(file)
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors, err.Error())
		result.DurationMS = time.Since(start).Milliseconds()
		return result, err
	}

	issues := a.f.CheckFormatting(string(original))
	if len(issues) == 0 {
		result.Success = true
		result.DurationMS = time.Since(start).Milliseconds()
		return result, nil
	}

	formatted := a.f.Format(string(original))
	if err := os.WriteFile(file, []byte(formatted), 0o644); err != nil {
		result.Success = false
		result.Errors = append(result.Errors, err.Error())
		result.DurationMS = time.Since(start).Milliseconds()
		return result, err
	}

	result.Success = true
	result.Fixed = true
	result.Messages = issues
	result.DurationMS = time.Since(start).Milliseconds()
	return result, nil
}
