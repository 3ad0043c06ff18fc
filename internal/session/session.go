// Package session exposes the opaque "is the user signed in" signal the
// poller branches on. Sign-in itself happens elsewhere.
package session

import (
	"context"

	"golang.org/x/oauth2"
)

type Session interface {
	Authenticated(ctx context.Context) bool
}

type static bool

// Static returns a session whose answer never changes.
func Static(authenticated bool) Session {
	return static(authenticated)
}

func (s static) Authenticated(context.Context) bool {
	return bool(s)
}

type tokenSession struct {
	src oauth2.TokenSource
}

// FromTokenSource treats the user as signed in while a valid token can be
// obtained from src. A nil source is never authenticated.
func FromTokenSource(src oauth2.TokenSource) Session {
	return &tokenSession{src: src}
}

func (s *tokenSession) Authenticated(ctx context.Context) bool {
	if s.src == nil {
		return false
	}
	if ctx.Err() != nil {
		return false
	}
	tok, err := s.src.Token()
	if err != nil {
		return false
	}
	return tok.Valid()
}
