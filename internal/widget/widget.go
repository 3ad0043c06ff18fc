// Package widget joins poller updates with artwork color extraction and
// produces render frames.
package widget

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"go.uber.org/zap"

	"karolbroda.com/kraken/internal/colors"
	"karolbroda.com/kraken/internal/playback"
	"karolbroda.com/kraken/internal/poller"
	"karolbroda.com/kraken/internal/theme"
)

type ColorExtractor interface {
	Extract(ctx context.Context, url string) (theme.Sample, error)
}

// Frame is everything the presentation layer needs for one redraw.
type Frame struct {
	Kind          playback.Kind
	Name          string
	Creators      string
	ArtworkURL    string
	Artwork       image.Image
	Background    colors.RGB
	Foreground    colors.RGB
	HasForeground bool
	Status        playback.Status
	Message       string
	Phase         theme.Phase
}

type extraction struct {
	ticket theme.Ticket
	sample theme.Sample
	err    error
}

type Widget struct {
	logger    *zap.Logger
	extractor ColorExtractor
	tracker   *theme.Tracker

	state  playback.State
	status playback.Status

	frames  chan Frame
	results chan extraction
	wg      sync.WaitGroup
}

// New builds a widget whose colors start at fallback until artwork loads.
func New(logger *zap.Logger, extractor ColorExtractor, fallback theme.Sample) *Widget {
	return &Widget{
		logger:    logger,
		extractor: extractor,
		tracker:   theme.NewTracker(fallback),
		status:    playback.StatusIdle,
		frames:    make(chan Frame, 1),
		results:   make(chan extraction),
	}
}

// Frames is closed when Run returns.
func (w *Widget) Frames() <-chan Frame {
	return w.frames
}

// Run processes updates until ctx is done or updates is closed. It waits for
// its extraction goroutines before returning and emits nothing afterwards.
func (w *Widget) Run(ctx context.Context, updates <-chan poller.Update) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		w.wg.Wait()
		close(w.frames)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case u, ok := <-updates:
			if !ok {
				return nil
			}
			w.handleUpdate(ctx, u)

		case res := <-w.results:
			w.handleExtraction(res)
		}
	}
}

func (w *Widget) handleUpdate(ctx context.Context, u poller.Update) {
	w.state = u.State
	w.status = u.Status

	if ticket, ok := w.tracker.Begin(u.State.ArtworkURL()); ok {
		w.logger.Debug("extracting artwork colors",
			zap.String("url", ticket.URL),
			zap.Uint64("generation", ticket.Generation))
		w.wg.Add(1)
		go w.extract(ctx, ticket)
	}

	w.emit()
}

func (w *Widget) extract(ctx context.Context, ticket theme.Ticket) {
	defer w.wg.Done()

	sample, err := w.safeExtract(ctx, ticket.URL)
	select {
	case w.results <- extraction{ticket: ticket, sample: sample, err: err}:
	case <-ctx.Done():
	}
}

func (w *Widget) safeExtract(ctx context.Context, url string) (sample theme.Sample, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("color extraction panicked: %v", r)
		}
	}()
	return w.extractor.Extract(ctx, url)
}

func (w *Widget) handleExtraction(res extraction) {
	if !w.tracker.Complete(res.ticket, res.sample, res.err) {
		w.logger.Debug("dropping stale artwork result", zap.String("url", res.ticket.URL))
		return
	}
	if res.err != nil {
		w.logger.Warn("artwork color extraction failed, keeping previous colors",
			zap.String("url", res.ticket.URL),
			zap.Error(res.err))
	}
	w.emit()
}

// emit replaces an unread frame with the newest one.
func (w *Widget) emit() {
	f := FrameFor(w.state, w.status, w.tracker.Current(), w.tracker.Phase())

	select {
	case w.frames <- f:
		return
	default:
	}
	select {
	case <-w.frames:
	default:
	}
	w.frames <- f
}

// FrameFor builds the render payload for a state and its colors.
func FrameFor(state playback.State, status playback.Status, sample theme.Sample, phase theme.Phase) Frame {
	f := Frame{
		Kind:          state.Kind(),
		ArtworkURL:    state.ArtworkURL(),
		Background:    sample.Background,
		Foreground:    sample.Foreground,
		HasForeground: sample.HasForeground,
		Status:        status,
		Message:       status.Message(),
		Phase:         phase,
	}

	switch item := state.Item.(type) {
	case nil:
		f.ArtworkURL = ""
		return f
	case playback.Track:
		f.Name = item.Name
		f.Creators = strings.Join(item.Artists, ", ")
	case playback.Episode:
		f.Name = item.Name
		f.Creators = strings.Join(item.Creators(), ", ")
	default:
		panic(fmt.Sprintf("widget: unhandled playback item %T", item))
	}

	// a failed extraction keeps the previous colors but not the previous
	// item's cover
	if phase == theme.PhaseReady {
		f.Artwork = sample.Artwork
	}
	return f
}
