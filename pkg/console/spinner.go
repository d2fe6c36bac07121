// Package console provides terminal UI components including spinners for
// long-running operations.
//
// # Spinner Component
//
// A single-line spinner for operations with no natural sub-steps to report
// (e.g. waiting on a sidecar health check). Multi-tool execution uses the
// progress panel in package progress instead, which needs goroutine-safe
// updates from arbitrary workers rather than Bubble Tea's message passing.
//
// Usage:
//
//	spinner := console.NewSpinner("Loading...")
//	spinner.Start()
//	// Long-running operation
//	spinner.Stop()
package console

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/huskycat-dev/huskycat/pkg/styles"
	"github.com/huskycat-dev/huskycat/pkg/tty"
)

// spinnerModel is the Bubble Tea model for the spinner
type spinnerModel struct {
	spinner spinner.Model
	message string
}

// updateMessageMsg replaces the spinner's message text.
type updateMessageMsg string

func (m spinnerModel) Init() tea.Cmd { return m.spinner.Tick }
func (m spinnerModel) View() string  { return fmt.Sprintf("\r%s %s", m.spinner.View(), m.message) }

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMessageMsg:
		m.message = string(msg)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Spinner wraps the spinner functionality with TTY detection and Bubble Tea program
type Spinner struct {
	program *tea.Program
	enabled bool
	mu      sync.Mutex
	running bool
}

// NewSpinner creates a new spinner with the given message using MiniDot style.
// Automatically disabled when not running in a TTY or when ACCESSIBLE env var is set.
func NewSpinner(message string) *Spinner {
	enabled := tty.IsStderrTerminal() && os.Getenv("ACCESSIBLE") == ""
	s := &Spinner{enabled: enabled}

	if enabled {
		model := spinnerModel{
			spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(styles.Info)),
			message: message,
		}
		s.program = tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithoutRenderer())
	}
	return s
}

func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled && s.program != nil && !s.running {
		s.running = true
		go func() { _, _ = s.program.Run() }()
	}
}

func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled && s.program != nil && s.running {
		s.running = false
		s.program.Quit()
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
}

func (s *Spinner) StopWithMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled && s.program != nil && s.running {
		s.running = false
		s.program.Quit()
		fmt.Fprintf(os.Stderr, "\r\033[K%s\n", msg)
	}
}

func (s *Spinner) UpdateMessage(message string) {
	if s.enabled && s.program != nil {
		s.program.Send(updateMessageMsg(message))
	}
}

func (s *Spinner) IsEnabled() bool { return s.enabled }
