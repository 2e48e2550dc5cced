// Package progress draws a determinate progress bar on stderr while commits
// are tallied.
package progress

import (
	"fmt"
	"os"
	"sync"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/sinclairtarget/git-churn/internal/pretty"
)

const maxBarWidth = 40

// progressUpdate is sent to update the progress bar
type progressUpdate struct {
	current int
}

// ProgressBar wraps a Bubbletea progress bar for simple non-interactive use.
//
// The total is advisory. Going past it pins the bar at 100%; finishing short of
// it just leaves the bar partially filled until Stop.
type ProgressBar struct {
	program   *tea.Program
	updateCh  chan progressUpdate
	done      chan struct{}
	mu        sync.Mutex
	isRunning bool
	total     int
	current   int
	message   string
}

// progressBarModel is the internal Bubbletea model
type progressBarModel struct {
	progress progress.Model
	total    int
	current  int
	message  string
	updateCh chan progressUpdate
}

func (m progressBarModel) Init() tea.Cmd {
	return m.waitForUpdate()
}

func (m progressBarModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updateCh
		if !ok {
			return tea.Quit()
		}
		return update
	}
}

func (m progressBarModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressUpdate:
		m.current = msg.current
		return m, m.waitForUpdate()
	default:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}
}

func (m progressBarModel) View() tea.View {
	percent := Percent(m.current, m.total)

	// Format: Processing ../repo [████████░░░░░░░░]  45% 450/1000
	bar := m.progress.ViewAs(percent)
	pct := int(percent * 100)

	return tea.NewView(fmt.Sprintf(
		"%s %s %3d%% %d/%d",
		m.message,
		bar,
		pct,
		m.current,
		m.total,
	))
}

// Fraction of total done, clamped to [0, 1]. An unknown (zero) total reads as
// no progress.
func Percent(current int, total int) float64 {
	if total <= 0 || current <= 0 {
		return 0
	}

	return min(1.0, float64(current)/float64(total))
}

// NewProgressBar creates a new progress bar with the given total and message.
func NewProgressBar(total int, message string) *ProgressBar {
	return &ProgressBar{
		updateCh: make(chan progressUpdate, 10),
		done:     make(chan struct{}),
		total:    total,
		message:  message,
	}
}

// Start begins the progress bar display.
func (p *ProgressBar) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return
	}

	width := max(10, min(maxBarWidth, pretty.Width(os.Stderr, 80)/3))
	prog := progress.New(
		progress.WithWidth(width),
		progress.WithoutPercentage(),
		progress.WithColors(lipgloss.Color("62"), lipgloss.Color("212")),
	)

	model := progressBarModel{
		progress: prog,
		total:    p.total,
		current:  p.current,
		message:  p.message,
		updateCh: p.updateCh,
	}

	// Write to stderr so stdout only carries the report
	p.program = tea.NewProgram(
		model,
		tea.WithoutSignalHandler(),
		tea.WithInput(nil),
		tea.WithOutput(os.Stderr),
	)
	p.isRunning = true

	go func() {
		_, _ = p.program.Run()
		close(p.done)
	}()
}

// SetProgress updates the number of commits processed.
func (p *ProgressBar) SetProgress(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	if !p.isRunning {
		return
	}

	// Non-blocking send; drops updates while the renderer is behind. Safe
	// because channel close happens under same mutex.
	select {
	case p.updateCh <- progressUpdate{current: current}:
	default:
	}
}

// Stop stops the progress bar and clears the line.
func (p *ProgressBar) Stop() {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = false
	// Close channel inside mutex to prevent race with SetProgress
	close(p.updateCh)
	p.mu.Unlock()

	if p.program != nil {
		p.program.Quit()
	}

	// Wait for program to finish with timeout
	select {
	case <-p.done:
	case <-time.After(500 * time.Millisecond):
	}

	fmt.Fprint(os.Stderr, "\r\033[K")
}
