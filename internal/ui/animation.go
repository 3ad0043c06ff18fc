package ui

import (
	"math"

	"karolbroda.com/kraken/internal/colors"
)

const fadeTicks = 8

// Fade eases the screen colors from the previous pair to the latest one.
type Fade struct {
	fromBG, toBG colors.RGB
	fromFG, toFG colors.RGB
	progress     float64
}

// Jump sets the colors without a transition.
func (f *Fade) Jump(bg colors.RGB, fg colors.RGB) {
	f.fromBG, f.toBG = bg, bg
	f.fromFG, f.toFG = fg, fg
	f.progress = 1
}

// Start begins a transition from the currently shown colors. Restarting
// towards the same target is a no-op.
func (f *Fade) Start(bg colors.RGB, fg colors.RGB) {
	if bg == f.toBG && fg == f.toFG {
		return
	}
	f.fromBG, f.fromFG = f.Background(), f.Foreground()
	f.toBG, f.toFG = bg, fg
	f.progress = 0
}

func (f *Fade) Step() {
	if f.progress >= 1 {
		return
	}
	f.progress = math.Min(1, f.progress+1.0/fadeTicks)
}

func (f Fade) Done() bool { return f.progress >= 1 }

func (f Fade) Background() colors.RGB {
	return colors.Blend(f.fromBG, f.toBG, easeOutCubic(f.progress))
}

func (f Fade) Foreground() colors.RGB {
	return colors.Blend(f.fromFG, f.toFG, easeOutCubic(f.progress))
}

func easeOutCubic(t float64) float64 {
	if t >= 1 {
		return 1
	}
	if t <= 0 {
		return 0
	}
	return 1 - math.Pow(1-t, 3)
}
