package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"

	"github.com/huskycat-dev/huskycat/pkg/tty"
)

// DetectingSpinner is the brief single-line spinner shown while the
// dispatcher probes tool availability at startup (spec.md §4.6), before
// any tool names are known and so before a Panel can be built. It is
// deliberately not console.Spinner: that type is Bubble Tea-driven and
// pulls in the full program/message-loop machinery for what is here a
// few hundred milliseconds of "checking tools..." feedback, so this
// wraps briandowns/spinner directly instead.
type DetectingSpinner struct {
	s       *spinner.Spinner
	enabled bool
}

// StartDetecting starts the spinner with message and returns it running.
// On a non-TTY stderr it is a no-op handle whose Stop does nothing, so
// callers never need to branch on TTY-ness themselves.
func StartDetecting(message string) *DetectingSpinner {
	d := &DetectingSpinner{enabled: tty.IsStderrTerminal()}
	if !d.enabled {
		return d
	}
	d.s = spinner.New(spinner.CharSets[11], 80*time.Millisecond, spinner.WithWriter(os.Stderr))
	d.s.Suffix = " " + message
	d.s.Start()
	return d
}

// Stop halts the spinner and clears its line. StopWithMessage additionally
// leaves a final line behind, mirroring console.Spinner's StopWithMessage.
func (d *DetectingSpinner) Stop() {
	if d.enabled && d.s != nil {
		d.s.Stop()
	}
}

func (d *DetectingSpinner) StopWithMessage(msg string) {
	if d.enabled && d.s != nil {
		d.s.Stop()
		fmt.Fprintln(os.Stderr, msg)
	}
}
