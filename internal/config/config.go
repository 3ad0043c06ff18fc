package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"karolbroda.com/kraken/internal/colors"
	"karolbroda.com/kraken/internal/theme"
)

//go:embed sample_config.toml
var sampleConfig string

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

const (
	SourceHTTP    = "http"
	SourceSpotify = "spotify"
	SourceMPRIS   = "mpris"
)

// Source selects where the currently playing item is read from.
type Source struct {
	Kind         string `toml:"kind"`
	Endpoint     string `toml:"endpoint"`
	MprisService string `toml:"mpris_service"`
}

// Poll controls the refresh cadence.
type Poll struct {
	IntervalMS int    `toml:"interval_ms"`
	Policy     string `toml:"policy"`

	// InitialFile is an optional now-playing document shown before the first read.
	InitialFile string `toml:"initial_file"`
}

type Session struct {
	RequireToken bool   `toml:"require_token"`
	Token        string `toml:"token"`
}

type Spotify struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
}

// Theme configures color extraction and the contrast rule.
type Theme struct {
	Method     string  `toml:"method"`
	Threshold  float64 `toml:"threshold"`
	Dark       string  `toml:"dark"`
	Light      string  `toml:"light"`
	Background string  `toml:"background"`
}

type Logging struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type UI struct {
	HideArtwork bool `toml:"hide_artwork"`
}

type Config struct {
	Source  Source  `toml:"source"`
	Poll    Poll    `toml:"poll"`
	Session Session `toml:"session"`
	Spotify Spotify `toml:"spotify"`
	Theme   Theme   `toml:"theme"`
	Logging Logging `toml:"logging"`
	UI      UI      `toml:"ui"`
}

// Load reads the TOML file at path (or the default location when path is
// empty), then layers .env and environment overrides and validates the
// result. A missing file is not an error; exists reports whether one was read.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	c := Default()

	resolved, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&c); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", false, fmt.Errorf("load .env: %w", err)
	}
	if err := c.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := c.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := c.Validate(); err != nil {
		return nil, "", false, err
	}

	return &c, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}

	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

// DefaultConfigPath is $XDG_CONFIG_HOME/kraken/config.toml.
func DefaultConfigPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "kraken", "config.toml")
}

// DefaultLogPath is $XDG_STATE_HOME/kraken/kraken.log.
func DefaultLogPath() string {
	return filepath.Join(xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state")), "kraken", "kraken.log")
}

func xdgDir(env string, fallback string) string {
	if base := strings.TrimSpace(os.Getenv(env)); base != "" {
		return base
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("~", fallback)
	}
	return filepath.Join(home, fallback)
}

func expandPath(p string) (string, error) {
	if p == "" {
		return p, nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", p, err)
	}
	return abs, nil
}

func (c *Config) normalize() error {
	c.Source.Kind = strings.ToLower(strings.TrimSpace(c.Source.Kind))
	c.Source.Endpoint = strings.TrimSpace(c.Source.Endpoint)
	c.Poll.Policy = strings.ToLower(strings.TrimSpace(c.Poll.Policy))
	c.Theme.Method = strings.ToLower(strings.TrimSpace(c.Theme.Method))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	if c.Poll.InitialFile = strings.TrimSpace(c.Poll.InitialFile); c.Poll.InitialFile != "" {
		var err error
		if c.Poll.InitialFile, err = expandPath(c.Poll.InitialFile); err != nil {
			return fmt.Errorf("poll.initial_file: %w", err)
		}
	}

	if strings.TrimSpace(c.Logging.File) == "" {
		c.Logging.File = DefaultLogPath()
	}
	var err error
	if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.Poll.IntervalMS) * time.Millisecond
}

// Contrast builds the foreground rule. Colors are assumed validated; an
// unparsable value falls back to the built-in default.
func (c *Config) Contrast() colors.Contrast {
	contrast := colors.DefaultContrast()
	contrast.Threshold = c.Theme.Threshold
	if dark, err := colors.ParseHex(c.Theme.Dark); err == nil {
		contrast.Dark = dark
	}
	if light, err := colors.ParseHex(c.Theme.Light); err == nil {
		contrast.Light = light
	}
	return contrast
}

// Fallback is the sample shown before any artwork has been analysed.
func (c *Config) Fallback() theme.Sample {
	bg, err := colors.ParseHex(c.Theme.Background)
	if err != nil {
		bg, _ = colors.ParseHex(defaultBackground)
	}
	return theme.Sample{
		Background:    bg,
		Foreground:    c.Contrast().Foreground(bg),
		HasForeground: true,
	}
}

// CreateSample writes a commented sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
