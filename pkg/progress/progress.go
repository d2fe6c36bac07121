// Package progress displays per-tool live status during a validation
// run: one row per tool, updated from arbitrary goroutines as the
// executor's callback fires, repainted by a background ticker. It is
// distinguished from console.Spinner (single line, no sub-steps, driven
// by Bubble Tea's message loop) because updates here arrive concurrently
// from worker goroutines rather than from one program's own event loop,
// and because a non-TTY fallback must degrade to plain transition lines
// instead of cursor-control sequences.
//
// Before the per-tool rows exist at all, StartDetecting shows a one-line
// "checking tools..." spinner for the availability probe that decides
// which rows Start will create.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/huskycat-dev/huskycat/pkg/styles"
	"github.com/huskycat-dev/huskycat/pkg/tty"
)

// State is one row's lifecycle stage.
type State string

const (
	StatePending State = "pending"
	StateRunning State = "running"
	StateSuccess State = "success"
	StateFailed  State = "failed"
	StateSkipped State = "skipped"
)

// DefaultRefreshRate is the repaint interval used by Start, matching
// spec.md §4.6's 10 Hz default.
const DefaultRefreshRate = 100 * time.Millisecond

// row is one tool's display state.
type row struct {
	name           string
	state          State
	start          time.Time
	end            time.Time
	errors         int
	warnings       int
	filesProcessed int
}

// Panel is a thread-safe multi-row progress display. Updates arrive from
// arbitrary goroutines via UpdateTool; a background ticker repaints the
// terminal (or, off a TTY, nothing — transitions themselves produce a
// line instead). Zero value is unusable; construct with New.
type Panel struct {
	mu    sync.Mutex
	rows  []string
	byRow map[string]*row

	out          io.Writer
	isTTY        bool
	refreshRate  time.Duration
	lastFrameLen int

	stopCh chan struct{}
	doneCh chan struct{}
}

// New constructs a Panel writing to stderr (so it never interleaves
// with captured tool output, which the dispatcher routes to stdout or a
// log file). TTY detection is done once, here at construction, and
// the cached result is what Start and every repaint use.
func New() *Panel {
	return newPanel(os.Stderr, tty.IsStderrTerminal())
}

func newPanel(out io.Writer, isTTY bool) *Panel {
	return &Panel{
		out:         out,
		isTTY:       isTTY,
		refreshRate: DefaultRefreshRate,
		byRow:       map[string]*row{},
	}
}

// Start allocates one row per tool name and, on a TTY, launches the
// background repaint ticker. Stop is mandatory and must run on every
// exit path; callers should `defer panel.Stop()` immediately after Start.
func (p *Panel) Start(toolNames []string) {
	p.mu.Lock()
	p.rows = append([]string(nil), toolNames...)
	for _, name := range toolNames {
		p.byRow[name] = &row{name: name, state: StatePending}
	}
	p.mu.Unlock()

	if !p.isTTY {
		return
	}

	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	go p.tick()
}

func (p *Panel) tick() {
	defer close(p.doneCh)
	ticker := time.NewTicker(p.refreshRate)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.repaint()
		case <-p.stopCh:
			return
		}
	}
}

// UpdateTool records a state transition for name, safe to call
// concurrently from any goroutine. On a non-TTY output, the transition
// is written immediately as one plain text line rather than waiting for
// the (nonexistent) repaint tick.
func (p *Panel) UpdateTool(name string, state State, errors, warnings, filesProcessed int) {
	p.mu.Lock()
	r, ok := p.byRow[name]
	if !ok {
		r = &row{name: name}
		p.byRow[name] = r
		p.rows = append(p.rows, name)
	}
	r.state = state
	r.errors = errors
	r.warnings = warnings
	r.filesProcessed = filesProcessed
	switch state {
	case StateRunning:
		if r.start.IsZero() {
			r.start = time.Now()
		}
	case StateSuccess, StateFailed, StateSkipped:
		r.end = time.Now()
	}
	line := p.renderLineLocked(r)
	p.mu.Unlock()

	if !p.isTTY {
		fmt.Fprintln(p.out, line)
	}
}

// Stop halts the repaint ticker (no-op on a non-TTY output, which never
// started one) and clears the last painted frame, restoring the cursor
// to a clean line.
func (p *Panel) Stop() {
	if p.isTTY && p.stopCh != nil {
		close(p.stopCh)
		<-p.doneCh
		p.mu.Lock()
		if p.lastFrameLen > 0 {
			fmt.Fprintf(p.out, "\r\033[%dA\033[J", p.lastFrameLen)
		}
		p.mu.Unlock()
	}
}

func (p *Panel) renderLineLocked(r *row) string {
	var marker string
	var style = styles.Progress
	switch r.state {
	case StateSuccess:
		marker, style = "✓", styles.Success
	case StateFailed:
		marker, style = "✗", styles.Error
	case StateSkipped:
		marker, style = "○", styles.Warning
	case StateRunning:
		marker = "…"
	default:
		marker = "·"
	}

	duration := ""
	if !r.start.IsZero() {
		end := r.end
		if end.IsZero() {
			end = time.Now()
		}
		duration = fmt.Sprintf(" (%s)", end.Sub(r.start).Round(time.Millisecond))
	}

	text := fmt.Sprintf("%s %s%s", marker, r.name, duration)
	if r.errors > 0 || r.warnings > 0 {
		text += fmt.Sprintf(" — %d error(s), %d warning(s)", r.errors, r.warnings)
	}
	return style.Render(text)
}

// repaint redraws every row in place. Only called from the ticker
// goroutine, so it takes the lock itself rather than assuming the
// caller holds it.
func (p *Panel) repaint() {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	if p.lastFrameLen > 0 {
		fmt.Fprintf(&b, "\033[%dA", p.lastFrameLen)
	}
	for _, name := range p.rows {
		r := p.byRow[name]
		fmt.Fprintf(&b, "\033[K%s\n", p.renderLineLocked(r))
	}
	fmt.Fprint(p.out, b.String())
	p.lastFrameLen = len(p.rows)
}
