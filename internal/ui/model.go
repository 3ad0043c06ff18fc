// Package ui draws widget frames in the terminal with bubbletea.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/kraken/internal/terminal"
	"karolbroda.com/kraken/internal/widget"
)

const tickInterval = 100 * time.Millisecond

type TickMsg time.Time

type FrameMsg struct {
	Frame widget.Frame
}

// FramesClosedMsg is sent once the widget stops producing frames.
type FramesClosedMsg struct{}

type ModelConfig struct {
	Frames      <-chan widget.Frame
	Initial     widget.Frame
	HideArtwork bool
	TermCaps    *terminal.Capabilities
}

type Model struct {
	frames      <-chan widget.Frame
	frame       widget.Frame
	hideArtwork bool
	termCaps    *terminal.Capabilities

	fade      Fade
	tickCount int
	quitting  bool
	width     int
	height    int
}

func NewModel(cfg ModelConfig) Model {
	m := Model{
		frames:      cfg.Frames,
		frame:       cfg.Initial,
		hideArtwork: cfg.HideArtwork,
		termCaps:    cfg.TermCaps,
	}
	m.fade.Jump(cfg.Initial.Background, foregroundOf(cfg.Initial))
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.listenForFrames())
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) listenForFrames() tea.Cmd {
	if m.frames == nil {
		return nil
	}

	return func() tea.Msg {
		f, ok := <-m.frames
		if !ok {
			return FramesClosedMsg{}
		}
		return FrameMsg{Frame: f}
	}
}

func (m Model) Frame() widget.Frame { return m.frame }
func (m Model) HideArtwork() bool   { return m.hideArtwork }
func (m Model) IsQuitting() bool    { return m.quitting }
func (m Model) Fade() Fade          { return m.fade }
