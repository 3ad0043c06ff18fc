// Package theme tracks the colors derived from the current artwork.
//
// A Tracker walks NoArtwork -> Loading -> Ready, or Loading -> Failed when
// extraction fails, in which case the last good sample stays current. Loads
// are keyed by a generation counter so a late result for artwork that has
// since been replaced is dropped.
package theme

import (
	"image"

	"karolbroda.com/kraken/internal/colors"
)

type Phase int

const (
	PhaseNoArtwork Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "no_artwork"
	}
}

// Sample is the color pair extracted from one artwork image.
type Sample struct {
	Background    colors.RGB
	Foreground    colors.RGB
	HasForeground bool
	Artwork       image.Image
}

// Ticket identifies one load started by Begin.
type Ticket struct {
	Generation uint64
	URL        string
}

// Tracker is owned by a single goroutine.
type Tracker struct {
	generation uint64
	url        string
	phase      Phase
	current    Sample
}

func NewTracker(initial Sample) *Tracker {
	return &Tracker{current: initial}
}

// Begin starts a load when url differs from the artwork currently tracked.
// It returns false when no extraction is needed: the url is unchanged, or
// empty (which moves the tracker to NoArtwork).
func (t *Tracker) Begin(url string) (Ticket, bool) {
	if url == t.url {
		return Ticket{}, false
	}

	t.generation++
	t.url = url

	if url == "" {
		t.phase = PhaseNoArtwork
		t.current.Artwork = nil
		return Ticket{}, false
	}

	t.phase = PhaseLoading
	return Ticket{Generation: t.generation, URL: url}, true
}

// Complete records the outcome of a load. Results for superseded tickets are
// ignored and Complete returns false.
func (t *Tracker) Complete(ticket Ticket, sample Sample, err error) bool {
	if ticket.Generation != t.generation || t.phase != PhaseLoading {
		return false
	}

	if err != nil {
		t.phase = PhaseFailed
		return true
	}

	t.phase = PhaseReady
	t.current = sample
	return true
}

func (t *Tracker) Phase() Phase    { return t.phase }
func (t *Tracker) URL() string     { return t.url }
func (t *Tracker) Current() Sample { return t.current }
