package runstore

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/huskycat-dev/huskycat/pkg/tty"
)

// Decision is the user's (or the non-interactive default's) answer to a
// previous failed run.
type Decision int

const (
	DecisionAbort Decision = iota
	DecisionContinue
	DecisionRetry
)

// HandlePreviousFailure reports how to proceed given run, a previously
// failed ValidationRun. When stdin is a terminal it prompts
// "[c]ontinue / [a]bort / [r]etry" (default abort on empty input or a
// read error); otherwise it aborts without prompting, per spec.md
// §4.2's non-interactive default.
func HandlePreviousFailure(run *ValidationRun, in io.Reader) Decision {
	if !tty.IsStdinTerminal() {
		return DecisionAbort
	}

	fmt.Printf("Previous validation run %s failed with %d error(s). [c]ontinue / [a]bort / [r]etry? (default: abort) ", run.RunID, run.Errors)
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil {
		return DecisionAbort
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "c", "continue":
		return DecisionContinue
	case "r", "retry":
		return DecisionRetry
	default:
		return DecisionAbort
	}
}
