package colors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit per channel color.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

var (
	Black = RGB{}
	White = RGB{R: 255, G: 255, B: 255}
)

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

func (c RGB) Lipgloss() lipgloss.Color {
	return lipgloss.Color(c.Hex())
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// ParseHex accepts "#RRGGBB", "RRGGBB" and the short "#RGB" form.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RGB{}, errors.New("empty color")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	// colorful.Hex scans leniently and accepts 5 or 7 digits
	if len(s) != 4 && len(s) != 7 {
		return RGB{}, fmt.Errorf("invalid color %q: want #RGB or #RRGGBB", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return fromColorful(c), nil
}

// Luminance is the normalized perceptual weighted sum
// (0.299 R + 0.587 G + 0.114 B) / 255, in [0, 1].
func Luminance(c RGB) float64 {
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
}

const DefaultThreshold = 0.7

// Contrast picks a readable foreground for a background.
type Contrast struct {
	Threshold float64
	Dark      RGB
	Light     RGB
}

func DefaultContrast() Contrast {
	return Contrast{
		Threshold: DefaultThreshold,
		Dark:      RGB{R: 0x12, G: 0x12, B: 0x12},
		Light:     White,
	}
}

// Foreground returns Dark when the background luminance is strictly above
// the threshold and Light otherwise, so the boundary value gets Light.
func (c Contrast) Foreground(bg RGB) RGB {
	if Luminance(bg) > c.Threshold {
		return c.Dark
	}
	return c.Light
}

// Blend mixes two colors in Lab space; t=0 yields a, t=1 yields b.
func Blend(a RGB, b RGB, t float64) RGB {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return fromColorful(a.colorful().BlendLab(b.colorful(), t))
}

func Darken(c RGB, amount float64) RGB {
	return Blend(c, Black, amount)
}

// Gradient returns steps colors from start to end, interpolated in Luv.
func Gradient(start RGB, end RGB, steps int) []RGB {
	if steps < 2 {
		steps = 2
	}
	s := start.colorful()
	e := end.colorful()
	out := make([]RGB, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		out[i] = fromColorful(s.BlendLuv(e, t))
	}
	return out
}

func RenderGradientText(text string, gradient []RGB, bold bool) string {
	if len(text) == 0 {
		return ""
	}
	if len(gradient) == 0 {
		return text
	}

	runes := []rune(text)
	var result strings.Builder

	for i, r := range runes {
		colorIdx := 0
		if len(runes) > 1 {
			colorIdx = i * (len(gradient) - 1) / (len(runes) - 1)
		}
		if colorIdx >= len(gradient) {
			colorIdx = len(gradient) - 1
		}

		style := lipgloss.NewStyle().Foreground(gradient[colorIdx].Lipgloss())
		if bold {
			style = style.Bold(true)
		}
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}

func FormatDuration(ms int) string {
	if ms < 0 {
		return "0:00"
	}
	seconds := ms / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
