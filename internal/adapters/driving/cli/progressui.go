package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
)

// Messages delivered into the progress UI from the sync goroutine.
type (
	progressMsg domain.ProgressSnapshot
	syncDoneMsg struct{ err error }
)

var (
	stepStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "244"})
)

// syncModel renders a live progress bar for one sync pass.
type syncModel struct {
	ownerID string
	bar     progress.Model
	snap    domain.ProgressSnapshot
	width   int
	done    bool
	err     error

	// cancel stops the sync pass. While the bar is active the terminal
	// is in raw mode, so Ctrl-C arrives as a key message rather than a
	// signal and must cancel the context itself.
	cancel context.CancelFunc
}

func newSyncModel(ownerID string, cancel context.CancelFunc) syncModel {
	return syncModel{
		ownerID: ownerID,
		bar:     progress.New(progress.WithDefaultGradient()),
		width:   80,
		cancel:  cancel,
	}
}

// Init implements tea.Model.
func (m syncModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m syncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			if m.cancel != nil {
				m.cancel()
			}
			m.done = true
			return m, tea.Quit
		}
		return m, nil

	case progressMsg:
		m.snap = domain.ProgressSnapshot(msg)
		return m, m.bar.SetPercent(m.snap.OverallProgress / 100)

	case syncDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Sequence(m.bar.SetPercent(1), tea.Quit)

	case progress.FrameMsg:
		barModel, cmd := m.bar.Update(msg)
		m.bar = barModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m syncModel) View() string {
	var b strings.Builder

	header := fmt.Sprintf("Syncing %s", m.ownerID)
	if m.snap.CurrentStep != "" {
		header = fmt.Sprintf("Syncing %s: %s (%d/%d)",
			m.ownerID, m.snap.CurrentStep, m.snap.StepIndex+1, m.snap.TotalSteps)
	}
	b.WriteString(stepStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(m.bar.View())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.statusLine()))
	b.WriteString("\n")

	return b.String()
}

// statusLine formats item counts and timing for the current snapshot.
func (m syncModel) statusLine() string {
	parts := []string{}
	if m.snap.EstimatedTotalItems > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d items",
			m.snap.ItemsProcessed, m.snap.EstimatedTotalItems))
	} else if m.snap.ItemsProcessed > 0 {
		parts = append(parts, fmt.Sprintf("%d items", m.snap.ItemsProcessed))
	}
	if m.snap.Elapsed > 0 {
		parts = append(parts, fmt.Sprintf("elapsed %s", m.snap.Elapsed.Round(time.Second)))
	}
	if m.snap.EstimatedRemaining > 0 && !m.done {
		parts = append(parts, fmt.Sprintf("remaining ~%s", m.snap.EstimatedRemaining.Round(time.Second)))
	}
	if len(parts) == 0 {
		return "starting..."
	}
	return strings.Join(parts, " | ")
}

// runSyncWithProgressBar runs one sync pass while rendering a live
// progress bar. The pass runs in a goroutine; snapshots are forwarded
// into the bubbletea program as messages.
func runSyncWithProgressBar(ctx context.Context, ownerID string, run syncFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newSyncModel(ownerID, cancel))

	unsubscribe := syncRunner.Subscribe(func(snap domain.ProgressSnapshot) {
		if snap.OwnerID == ownerID {
			p.Send(progressMsg(snap))
		}
	})
	defer unsubscribe()

	errCh := make(chan error, 1)
	go func() {
		err := run(ctx, ownerID)
		errCh <- err
		p.Send(syncDoneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("progress display: %w", err)
	}
	return <-errCh
}
