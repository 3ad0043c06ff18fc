package artwork

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"

	"karolbroda.com/kraken/internal/colors"
)

// RenderHalfBlock draws img with "▀" cells, two pixel rows per terminal row.
// Transparent pixels become spaces.
func RenderHalfBlock(img image.Image, targetWidth int, targetHeight int) []string {
	if img == nil || targetWidth < 4 || targetHeight < 2 {
		return nil
	}

	resized := resize.Resize(uint(targetWidth), uint(targetHeight*2), img, resize.Lanczos3)
	bounds := resized.Bounds()

	lines := make([]string, targetHeight)

	for y := 0; y < targetHeight; y++ {
		var line strings.Builder
		topY := y * 2
		bottomY := topY + 1

		for x := 0; x < bounds.Dx(); x++ {
			top, topA := pixel(resized, bounds.Min.X+x, bounds.Min.Y+topY)
			bottom, bottomA := top, topA
			if bottomY < bounds.Dy() {
				bottom, bottomA = pixel(resized, bounds.Min.X+x, bounds.Min.Y+bottomY)
			}

			if topA < 128 && bottomA < 128 {
				line.WriteString(" ")
				continue
			}

			style := lipgloss.NewStyle().
				Foreground(top.Lipgloss()).
				Background(bottom.Lipgloss())
			line.WriteString(style.Render("▀"))
		}
		lines[y] = line.String()
	}

	return lines
}

func pixel(img image.Image, x int, y int) (colors.RGB, uint32) {
	r, g, b, a := img.At(x, y).RGBA()
	return colors.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}, a >> 8
}
