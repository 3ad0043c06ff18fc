package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"

	"karolbroda.com/kraken/internal/artwork"
	"karolbroda.com/kraken/internal/colors"
	"karolbroda.com/kraken/internal/playback"
	"karolbroda.com/kraken/internal/terminal"
	"karolbroda.com/kraken/internal/theme"
)

const bannerText = "kraken"

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	bg := m.fade.Background()
	fg := m.fade.Foreground()

	var body string
	if m.frame.Kind == playback.KindNothing {
		body = m.renderIdle(bg, fg, width)
	} else {
		body = m.renderPlaying(bg, fg, width, height)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body,
		lipgloss.WithWhitespaceBackground(bg.Lipgloss()))
}

func (m Model) renderIdle(bg colors.RGB, fg colors.RGB, width int) string {
	var lines []string

	if width >= 40 {
		gradient := colors.Gradient(fg, colors.Blend(fg, bg, 0.6), 12)
		for _, row := range figure.NewFigure(bannerText, "", true).Slicify() {
			if strings.TrimSpace(row) == "" {
				continue
			}
			lines = append(lines, colors.RenderGradientText(row, gradient, true))
		}
		lines = append(lines, "")
	}

	msg := m.frame.Message
	if msg == "" {
		msg = playback.MessageStartPlayback
	}
	lines = append(lines, text(bg, fg).Italic(true).Render(msg))

	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m Model) renderPlaying(bg colors.RGB, fg colors.RGB, width int, height int) string {
	info := m.renderInfo(bg, fg, width)

	art := m.renderArtwork(width, height)
	if len(art) == 0 {
		return info
	}

	gap := text(bg, fg).Render("    ")
	return lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(art, "\n"), gap, info)
}

func (m Model) renderArtwork(width int, height int) []string {
	if m.hideArtwork || m.frame.Artwork == nil {
		return nil
	}

	artWidth, artHeight := 24, 12
	if width < 80 || height < 20 {
		artWidth, artHeight = 12, 6
	}
	if width < 50 || height < 10 {
		return nil
	}

	if m.termCaps != nil && m.termCaps.SupportsKittyGraphics {
		if seq := terminal.EncodeImageForKitty(m.frame.Artwork, artWidth, artHeight); seq != "" {
			lines := make([]string, artHeight)
			lines[0] = seq
			for i := 1; i < artHeight; i++ {
				lines[i] = strings.Repeat(" ", artWidth)
			}
			return lines
		}
	}

	return artwork.RenderHalfBlock(m.frame.Artwork, artWidth, artHeight)
}

func (m Model) renderInfo(bg colors.RGB, fg colors.RGB, width int) string {
	maxWidth := max(width/2, 20)
	dim := colors.Blend(fg, bg, 0.45)

	var lines []string

	label := "track"
	if m.frame.Kind == playback.KindEpisode {
		label = "episode"
	}
	lines = append(lines, text(bg, dim).Render(strings.ToUpper(label)))

	gradient := colors.Gradient(fg, colors.Blend(fg, bg, 0.3), 16)
	lines = append(lines, colors.RenderGradientText(truncate(m.frame.Name, maxWidth), gradient, true))

	if m.frame.Creators != "" {
		lines = append(lines, text(bg, fg).Render(truncate(m.frame.Creators, maxWidth)))
	}

	lines = append(lines, "")

	switch m.frame.Phase {
	case theme.PhaseLoading:
		spin := spinnerFrames[m.tickCount%len(spinnerFrames)]
		lines = append(lines, text(bg, dim).Render(spin+" reading artwork"))
	case theme.PhaseFailed:
		lines = append(lines, text(bg, dim).Render("artwork unavailable"))
	default:
		lines = append(lines, text(bg, dim).Render(bg.Hex()))
	}

	if m.frame.Message != "" {
		lines = append(lines, text(bg, colors.Blend(fg, colors.RGB{R: 0xFF, G: 0x6B, B: 0x6B}, 0.5)).Render(m.frame.Message))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func text(bg colors.RGB, fg colors.RGB) lipgloss.Style {
	return lipgloss.NewStyle().Background(bg.Lipgloss()).Foreground(fg.Lipgloss())
}

func truncate(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) <= maxWidth {
		return s
	}
	return string(runes[:maxWidth-1]) + "…"
}
