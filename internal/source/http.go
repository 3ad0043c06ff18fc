package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"karolbroda.com/kraken/internal/playback"
)

const (
	DefaultEndpoint = "http://localhost:3000/api/playing"
	maxResponseSize = 1 << 20
)

type HTTPSource struct {
	logger   *zap.Logger
	endpoint string
	client   *http.Client
	tokens   oauth2.TokenSource
}

type HTTPOption func(*HTTPSource)

// WithTokenSource attaches a bearer token to every request.
func WithTokenSource(ts oauth2.TokenSource) HTTPOption {
	return func(s *HTTPSource) { s.tokens = ts }
}

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

func NewHTTPSource(logger *zap.Logger, endpoint string, opts ...HTTPOption) *HTTPSource {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	s := &HTTPSource{
		logger:   logger,
		endpoint: endpoint,
		client:   newHTTPClient(10 * time.Second),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     60 * time.Second,
		TLSHandshakeTimeout: 2 * time.Second,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

func (s *HTTPSource) Endpoint() string {
	return s.endpoint
}

func (s *HTTPSource) Current(ctx context.Context) (playback.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	// always bypass intermediate caches
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Accept", "application/json")

	if s.tokens != nil {
		tok, err := s.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: token: %v", ErrUnauthenticated, err)
		}
		tok.SetAuthHeader(req)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: endpoint returned %d", ErrUnauthenticated, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: endpoint returned %d", ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	item, err := DecodeNowPlaying(body)
	if err != nil {
		return nil, err
	}

	if item != nil {
		s.logger.Debug("now playing read",
			zap.String("kind", item.Kind().String()),
			zap.String("id", item.ID()))
	}
	return item, nil
}

type wireImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type wireItem struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Name       string `json:"name"`
	DurationMS int    `json:"duration_ms"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string      `json:"name"`
		Images []wireImage `json:"images"`
	} `json:"album"`
	Show struct {
		Name      string      `json:"name"`
		Publisher string      `json:"publisher"`
		Images    []wireImage `json:"images"`
	} `json:"show"`
	Images []wireImage `json:"images"`
}

type wireNowPlaying struct {
	Item      *wireItem `json:"item"`
	IsPlaying bool      `json:"is_playing"`
}

// DecodeNowPlaying parses a `{"item": ...}` document. A JSON null document or
// a null item means nothing is playing.
func DecodeNowPlaying(body []byte) (playback.Item, error) {
	var doc *wireNowPlaying
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if doc == nil || doc.Item == nil {
		return nil, nil
	}
	return doc.Item.normalize()
}

func (w *wireItem) normalize() (playback.Item, error) {
	if w.ID == "" {
		return nil, fmt.Errorf("%w: item without id", ErrDecode)
	}

	switch w.Type {
	case "track", "":
		artists := make([]string, 0, len(w.Artists))
		for _, a := range w.Artists {
			if a.Name != "" {
				artists = append(artists, a.Name)
			}
		}
		return playback.Track{
			TrackID:    w.ID,
			Name:       w.Name,
			Artists:    artists,
			Album:      w.Album.Name,
			Images:     convertImages(w.Album.Images),
			DurationMS: w.DurationMS,
		}, nil

	case "episode":
		images := w.Images
		if len(images) == 0 {
			images = w.Show.Images
		}
		return playback.Episode{
			EpisodeID:  w.ID,
			Name:       w.Name,
			Show:       w.Show.Name,
			Publisher:  w.Show.Publisher,
			Images:     convertImages(images),
			DurationMS: w.DurationMS,
		}, nil
	}

	return nil, fmt.Errorf("%w: unknown item type %q", ErrDecode, w.Type)
}

func convertImages(in []wireImage) []playback.Image {
	if len(in) == 0 {
		return nil
	}
	out := make([]playback.Image, 0, len(in))
	for _, img := range in {
		if img.URL == "" {
			continue
		}
		out = append(out, playback.Image{URL: img.URL, Width: img.Width, Height: img.Height})
	}
	return out
}

// IsUnauthenticated reports whether err means the caller has no valid session.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}
