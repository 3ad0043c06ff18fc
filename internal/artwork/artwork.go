package artwork

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

const maxImageSize = 10 * 1024 * 1024

// Fetcher downloads artwork anonymously: no cookies, no credentials, no
// Authorization header, so pixel reads are never tied to the user session.
type Fetcher struct {
	logger *zap.Logger
	client *http.Client
}

func NewFetcher(logger *zap.Logger) *Fetcher {
	return &Fetcher{
		logger: logger,
		client: &http.Client{
			Timeout: 5 * time.Second,
			Jar:     nil,
		},
	}
}

// Fetch loads and decodes the image at artworkURL. file:// URLs are read
// from disk.
func (f *Fetcher) Fetch(ctx context.Context, artworkURL string) (image.Image, error) {
	if artworkURL == "" {
		return nil, errors.New("empty artwork url")
	}

	if strings.HasPrefix(artworkURL, "file://") {
		return decodeFile(strings.TrimPrefix(artworkURL, "file://"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artworkURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "kraken/1.0")
	req.Header.Del("Cookie")
	req.Header.Del("Authorization")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork fetch returned status %d", resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("url is not an image: %s", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read artwork: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}

	f.logger.Debug("artwork fetched", zap.Int("bytes", len(data)), zap.String("url", artworkURL))
	return img, nil
}

// Load reads artwork from a local path or an http(s) URL.
func (f *Fetcher) Load(ctx context.Context, ref string) (image.Image, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "file://") {
		return f.Fetch(ctx, ref)
	}
	return decodeFile(ref)
}

func decodeFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artwork file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork image: %w", err)
	}
	return img, nil
}
