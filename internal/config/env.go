package config

import (
	"fmt"
	"os"
	"strconv"
)

// applyEnv overrides file values with KRAKEN_* variables. The Spotify
// credentials use the SPOTIFY_* names the Spotify tooling already exports.
func (c *Config) applyEnv() error {
	setString(&c.Source.Kind, "KRAKEN_SOURCE")
	setString(&c.Source.Endpoint, "KRAKEN_ENDPOINT")
	setString(&c.Source.MprisService, "KRAKEN_MPRIS_SERVICE")
	setString(&c.Poll.Policy, "KRAKEN_POLICY")
	setString(&c.Poll.InitialFile, "KRAKEN_INITIAL_FILE")
	setString(&c.Session.Token, "KRAKEN_TOKEN")
	setString(&c.Theme.Method, "KRAKEN_METHOD")
	setString(&c.Theme.Dark, "KRAKEN_DARK")
	setString(&c.Theme.Light, "KRAKEN_LIGHT")
	setString(&c.Theme.Background, "KRAKEN_BACKGROUND")
	setString(&c.Logging.Level, "KRAKEN_LOG_LEVEL")
	setString(&c.Logging.File, "KRAKEN_LOG_FILE")
	setString(&c.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	setString(&c.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")
	setString(&c.Spotify.AccessToken, "SPOTIFY_ACCESS_TOKEN")
	setString(&c.Spotify.RefreshToken, "SPOTIFY_REFRESH_TOKEN")

	if v := os.Getenv("KRAKEN_INTERVAL_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: KRAKEN_INTERVAL_MS %q is not an integer", ErrInvalid, v)
		}
		c.Poll.IntervalMS = ms
	}
	if v := os.Getenv("KRAKEN_THRESHOLD"); v != "" {
		th, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: KRAKEN_THRESHOLD %q is not a number", ErrInvalid, v)
		}
		c.Theme.Threshold = th
	}
	if v := os.Getenv("KRAKEN_REQUIRE_TOKEN"); v != "" {
		c.Session.RequireToken = isTruthy(v)
	}
	if v := os.Getenv("KRAKEN_HIDE_ARTWORK"); v != "" {
		c.UI.HideArtwork = isTruthy(v)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func isTruthy(v string) bool {
	return v == "1" || v == "true" || v == "yes"
}
