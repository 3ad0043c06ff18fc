package ui

import (
	"image"
	"image/color"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/kraken/internal/colors"
	"karolbroda.com/kraken/internal/playback"
	"karolbroda.com/kraken/internal/theme"
	"karolbroda.com/kraken/internal/widget"
)

func idleFrame() widget.Frame {
	return widget.Frame{
		Kind:          playback.KindNothing,
		Background:    colors.RGB{R: 0x12, G: 0x12, B: 0x12},
		Foreground:    colors.White,
		HasForeground: true,
		Status:        playback.StatusUnauthenticated,
		Message:       playback.MessageSignIn,
	}
}

func solid(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestUpdate_Keys(t *testing.T) {
	m := NewModel(ModelConfig{Initial: idleFrame()})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if !m.HideArtwork() {
		t.Fatal("tab should hide artwork")
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(Model)
	if !m.IsQuitting() || cmd == nil {
		t.Fatal("q should quit")
	}
	if m.View() != "" {
		t.Fatal("quitting model should render nothing")
	}
}

func TestUpdate_FrameStartsFade(t *testing.T) {
	frames := make(chan widget.Frame, 1)
	m := NewModel(ModelConfig{Frames: frames, Initial: idleFrame()})

	red := colors.RGB{R: 200, G: 20, B: 20}
	next, cmd := m.Update(FrameMsg{Frame: widget.Frame{
		Kind:          playback.KindTrack,
		Name:          "Song",
		Background:    red,
		Foreground:    colors.White,
		HasForeground: true,
		Phase:         theme.PhaseReady,
	}})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected to keep listening for frames")
	}
	if m.Fade().Done() {
		t.Fatal("expected a color transition")
	}

	for i := 0; i < fadeTicks; i++ {
		next, _ = m.Update(TickMsg{})
		m = next.(Model)
	}
	if !m.Fade().Done() || m.Fade().Background() != red {
		t.Fatalf("fade did not settle on %s, got %s", red.Hex(), m.Fade().Background().Hex())
	}
}

func TestUpdate_FramesClosedQuits(t *testing.T) {
	frames := make(chan widget.Frame)
	close(frames)
	m := NewModel(ModelConfig{Frames: frames, Initial: idleFrame()})

	msg := m.listenForFrames()()
	if _, ok := msg.(FramesClosedMsg); !ok {
		t.Fatalf("expected FramesClosedMsg, got %T", msg)
	}
	next, _ := m.Update(msg)
	if !next.(Model).IsQuitting() {
		t.Fatal("expected model to quit")
	}
}

func TestView_IdleShowsMessage(t *testing.T) {
	m := NewModel(ModelConfig{Initial: idleFrame()})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	out := next.(Model).View()
	if !strings.Contains(out, playback.MessageSignIn) {
		t.Fatal("idle view is missing the status message")
	}
	if got := len(strings.Split(out, "\n")); got != 30 {
		t.Fatalf("view has %d rows, want 30", got)
	}
}

func TestView_PlayingShowsItem(t *testing.T) {
	f := widget.Frame{
		Kind:          playback.KindEpisode,
		Name:          "Episode Name",
		Creators:      "Network",
		Artwork:       solid(color.RGBA{R: 10, G: 200, B: 10, A: 255}),
		Background:    colors.RGB{R: 10, G: 200, B: 10},
		Foreground:    colors.RGB{R: 0x12, G: 0x12, B: 0x12},
		HasForeground: true,
		Status:        playback.StatusPlaying,
		Phase:         theme.PhaseReady,
	}
	m := NewModel(ModelConfig{Initial: f})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)

	out := m.View()
	if !strings.Contains(out, "EPISODE") || !strings.Contains(out, "Network") {
		t.Fatal("playing view is missing item details")
	}
	if !strings.Contains(out, "▀") {
		t.Fatal("expected half-block artwork")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if strings.Contains(next.(Model).View(), "▀") {
		t.Fatal("artwork should be hidden after tab")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Fatalf("truncate = %q", got)
	}
}
