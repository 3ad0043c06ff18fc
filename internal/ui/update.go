package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/kraken/internal/colors"
	"karolbroda.com/kraken/internal/widget"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case FrameMsg:
		return m.handleFrame(msg.Frame)

	case FramesClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case TickMsg:
		m.tickCount++
		m.fade.Step()
		return m, tickCmd()
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab", "i":
		m.hideArtwork = !m.hideArtwork
		return m, nil
	}

	return m, nil
}

func (m Model) handleFrame(f widget.Frame) (tea.Model, tea.Cmd) {
	m.frame = f
	m.fade.Start(f.Background, foregroundOf(f))
	return m, m.listenForFrames()
}

func foregroundOf(f widget.Frame) colors.RGB {
	if f.HasForeground {
		return f.Foreground
	}
	return colors.DefaultContrast().Foreground(f.Background)
}
