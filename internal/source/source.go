// Package source reads "what is playing now" from an external collaborator
// and normalizes it into a playback.Item.
package source

import (
	"context"
	"errors"

	"karolbroda.com/kraken/internal/playback"
)

var (
	// ErrTransport covers failed or timed out reads and unexpected statuses.
	ErrTransport = errors.New("now playing transport failure")
	// ErrDecode covers responses that are not the expected shape.
	ErrDecode = errors.New("now playing decode failure")
	// ErrUnauthenticated means the collaborator rejected the caller's session.
	ErrUnauthenticated = errors.New("now playing unauthenticated")
)

// Source returns the current item, or nil when nothing is playing.
//
//go:generate mockgen -destination=mocks/source_mock.go -package=mocks karolbroda.com/kraken/internal/source Source
type Source interface {
	Current(ctx context.Context) (playback.Item, error)
}

// Func adapts a plain function to Source.
type Func func(ctx context.Context) (playback.Item, error)

func (f Func) Current(ctx context.Context) (playback.Item, error) {
	return f(ctx)
}
