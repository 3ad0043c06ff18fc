package config

import (
	"fmt"
	"net/url"
	"strings"

	"karolbroda.com/kraken/internal/artwork"
	"karolbroda.com/kraken/internal/colors"
	"karolbroda.com/kraken/internal/poller"
)

// Validate ensures the configuration is usable. Every error wraps ErrInvalid.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validatePoll(); err != nil {
		return err
	}
	if err := c.validateTheme(); err != nil {
		return err
	}
	return c.validateLogging()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

func (c *Config) validateSource() error {
	switch c.Source.Kind {
	case SourceHTTP:
		u, err := url.Parse(c.Source.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("source.endpoint %q must be an http(s) url", c.Source.Endpoint)
		}
		if c.Session.RequireToken && strings.TrimSpace(c.Session.Token) == "" {
			return invalid("session.token must be set when session.require_token is true")
		}
	case SourceSpotify:
		if strings.TrimSpace(c.Spotify.AccessToken) == "" && strings.TrimSpace(c.Spotify.RefreshToken) == "" {
			return invalid("spotify.access_token or spotify.refresh_token must be set for the spotify source")
		}
		if c.Spotify.RefreshToken != "" && (c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "") {
			return invalid("spotify.client_id and spotify.client_secret are required to refresh tokens")
		}
	case SourceMPRIS:
		if strings.TrimSpace(c.Source.MprisService) == "" {
			return invalid("source.mpris_service must be set for the mpris source")
		}
	default:
		return invalid("source.kind %q must be one of http, spotify, mpris", c.Source.Kind)
	}
	return nil
}

func (c *Config) validatePoll() error {
	if c.Poll.IntervalMS <= 0 {
		return invalid("poll.interval_ms must be positive")
	}
	if !poller.PublishPolicy(c.Poll.Policy).Valid() {
		return invalid("poll.policy %q must be on_change or always", c.Poll.Policy)
	}
	return nil
}

func (c *Config) validateTheme() error {
	if !artwork.Method(c.Theme.Method).Valid() {
		return invalid("theme.method %q must be average or kmeans", c.Theme.Method)
	}
	if c.Theme.Threshold <= 0 || c.Theme.Threshold >= 1 {
		return invalid("theme.threshold must be between 0 and 1")
	}
	for key, value := range map[string]string{
		"theme.dark":       c.Theme.Dark,
		"theme.light":      c.Theme.Light,
		"theme.background": c.Theme.Background,
	} {
		if _, err := colors.ParseHex(value); err != nil {
			return invalid("%s: %v", key, err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return invalid("logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}
}
