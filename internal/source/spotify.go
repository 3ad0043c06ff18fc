package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"karolbroda.com/kraken/internal/playback"
)

// SpotifyCredentials configure direct access to the Spotify Web API.
type SpotifyCredentials struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
}

func (c SpotifyCredentials) Token() *oauth2.Token {
	if c.AccessToken == "" && c.RefreshToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
	}
}

// SpotifySource polls the Spotify Web API currently-playing endpoint.
type SpotifySource struct {
	logger *zap.Logger
	client *spotify.Client
}

func NewSpotifySource(logger *zap.Logger, client *spotify.Client) *SpotifySource {
	return &SpotifySource{logger: logger, client: client}
}

// NewSpotifyClient builds an authenticated client from stored credentials.
// The returned token source is the one the client refreshes through, so a
// session built on it sees the same token.
func NewSpotifyClient(ctx context.Context, creds SpotifyCredentials) (*spotify.Client, oauth2.TokenSource, error) {
	tok := creds.Token()
	if tok == nil {
		return nil, nil, fmt.Errorf("%w: no spotify token configured", ErrUnauthenticated)
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(creds.ClientID),
		spotifyauth.WithClientSecret(creds.ClientSecret),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadCurrentlyPlaying,
			spotifyauth.ScopeUserReadPlaybackState,
		),
	)

	httpClient := auth.Client(ctx, tok)

	var ts oauth2.TokenSource = oauth2.StaticTokenSource(tok)
	if t, ok := httpClient.Transport.(*oauth2.Transport); ok && t.Source != nil {
		ts = t.Source
	}
	return spotify.New(httpClient), ts, nil
}

func (s *SpotifySource) Current(ctx context.Context) (playback.Item, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: spotify client not configured", ErrUnauthenticated)
	}

	cp, err := s.client.PlayerCurrentlyPlaying(ctx)
	if err != nil {
		var apiErr spotify.Error
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if cp == nil {
		return nil, nil
	}
	if cp.Item == nil {
		// the client only decodes tracks; an episode arrives as a null item
		// while is_playing is still set
		if cp.Playing {
			return nil, fmt.Errorf("%w: playing item is not a track", ErrDecode)
		}
		return nil, nil
	}

	return trackFromSpotify(cp.Item)
}

func trackFromSpotify(item *spotify.FullTrack) (playback.Item, error) {
	if item.ID == "" {
		return nil, fmt.Errorf("%w: track without id", ErrDecode)
	}

	artists := make([]string, 0, len(item.Artists))
	for _, a := range item.Artists {
		artists = append(artists, a.Name)
	}

	images := make([]playback.Image, 0, len(item.Album.Images))
	for _, img := range item.Album.Images {
		images = append(images, playback.Image{
			URL:    img.URL,
			Width:  int(img.Width),
			Height: int(img.Height),
		})
	}

	return playback.Track{
		TrackID:    string(item.ID),
		Name:       item.Name,
		Artists:    artists,
		Album:      item.Album.Name,
		Images:     images,
		DurationMS: int(item.Duration),
	}, nil
}
