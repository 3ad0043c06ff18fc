package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"karolbroda.com/kraken/internal/colors"
	"karolbroda.com/kraken/internal/config"
	"karolbroda.com/kraken/internal/playback"
	"karolbroda.com/kraken/internal/source/mocks"
	"karolbroda.com/kraken/internal/theme"
	"karolbroda.com/kraken/internal/widget"
)

func httpConfig(endpoint string) *config.Config {
	cfg := config.Default()
	cfg.Source.Endpoint = endpoint
	cfg.Poll.IntervalMS = 50
	return &cfg
}

// TestAppGraphValidity verifies that the dependency graph is resolvable.
func TestAppGraphValidity(t *testing.T) {
	err := fx.ValidateApp(
		appOptions(httpConfig(config.DefaultEndpoint), zap.NewNop()),
		fx.Invoke(func(*widget.Widget) {}),
	)
	if err != nil {
		t.Errorf("Dependency graph is not valid: %v", err)
	}
}

func TestEndToEndStartup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	var w *widget.Widget
	app := fx.New(appOptions(httpConfig(server.URL), zap.NewNop()), fx.Populate(&w))
	if err := app.Start(testContext(t)); err != nil {
		t.Fatalf("App failed to start: %v", err)
	}

	select {
	case f := <-w.Frames():
		if f.Kind != playback.KindNothing || f.Message != playback.MessageStartPlayback {
			t.Fatalf("unexpected first frame %+v", f)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame produced")
	}

	if err := app.Stop(testContext(t)); err != nil {
		t.Fatalf("App failed to stop: %v", err)
	}
	for range w.Frames() {
	}
}

func TestNewSource_HTTPSession(t *testing.T) {
	tests := []struct {
		name    string
		require bool
		token   string
		want    bool
	}{
		{"open", false, "", true},
		{"token attached but not required", false, "abc", true},
		{"required and present", true, "abc", true},
		{"required and missing", true, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := httpConfig(config.DefaultEndpoint)
			cfg.Session.RequireToken = tt.require
			cfg.Session.Token = tt.token

			res, err := newSource(fxtest.NewLifecycle(t), cfg, zap.NewNop())
			if err != nil {
				t.Fatalf("newSource: %v", err)
			}
			if got := res.Session.Authenticated(context.Background()); got != tt.want {
				t.Fatalf("Authenticated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewSource_SpotifyWithoutToken(t *testing.T) {
	cfg := httpConfig(config.DefaultEndpoint)
	cfg.Source.Kind = config.SourceSpotify

	if _, err := newSource(fxtest.NewLifecycle(t), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected an error without spotify credentials")
	}
}

func TestRunHeadless(t *testing.T) {
	frames := make(chan widget.Frame, 2)
	frames <- widget.FrameFor(playback.State{}, playback.StatusUnauthenticated, theme.Sample{}, theme.PhaseNoArtwork)
	frames <- widget.FrameFor(
		playback.Playing(playback.Track{TrackID: "t", Name: "Song", Artists: []string{"A", "B"}}),
		playback.StatusPlaying,
		theme.Sample{Background: colors.White, Foreground: colors.RGB{R: 0x12, G: 0x12, B: 0x12}, HasForeground: true},
		theme.PhaseReady,
	)
	close(frames)

	var out bytes.Buffer
	if err := runHeadless(context.Background(), frames, &out); err != nil {
		t.Fatalf("runHeadless: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out.String())
	}
	if !strings.HasPrefix(lines[0], "nothing\t") || !strings.HasSuffix(lines[0], playback.MessageSignIn) {
		t.Fatalf("unexpected idle line %q", lines[0])
	}
	if lines[1] != "track\tSong\tA, B\t#FFFFFF\t#121212\tready\tplaying" {
		t.Fatalf("unexpected track line %q", lines[1])
	}
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	testChdir(t, dir)

	path := filepath.Join(dir, "kraken.toml")
	if err := os.WriteFile(path, []byte("[poll]\npolicy = \"always\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	configPath, interval, method = path, 750*time.Millisecond, "kmeans"
	t.Cleanup(func() { configPath, interval, method = "", 0, "" })

	cfg, err := loadConfig(&cobra.Command{})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Poll.Policy != "always" || cfg.Poll.IntervalMS != 750 || cfg.Theme.Method != "kmeans" {
		t.Fatalf("unexpected config %+v %+v", cfg.Poll, cfg.Theme)
	}

	method = "median"
	if _, err := loadConfig(&cobra.Command{}); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for a bad flag, got %v", err)
	}
}

func TestNewPoller_InitialDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "now-playing.json")
	doc := `{"item": {"type": "track", "id": "seed", "name": "Seeded", "artists": [{"name": "A"}],
		"album": {"name": "Alb", "images": [{"url": "https://img/seed"}]}}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := httpConfig("http://127.0.0.1:0")
	cfg.Poll.InitialFile = path

	res, err := newSource(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	p, err := newPoller(fxtest.NewLifecycle(t), cfg, zap.NewNop(), res.Source, res.Session)
	if err != nil {
		t.Fatalf("newPoller: %v", err)
	}
	if p.State().ID() != "seed" || p.Status() != playback.StatusPlaying {
		t.Fatalf("initial document not applied: %+v %v", p.State(), p.Status())
	}
	if p.State().ArtworkURL() != "https://img/seed" {
		t.Errorf("artwork = %q", p.State().ArtworkURL())
	}
}

func TestNewPoller_BadInitialDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "now-playing.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := httpConfig("http://127.0.0.1:0")
	cfg.Poll.InitialFile = path

	res, err := newSource(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newPoller(fxtest.NewLifecycle(t), cfg, zap.NewNop(), res.Source, res.Session); err == nil {
		t.Fatal("expected an error for a malformed initial document")
	}
}

func TestStopApp_BoundedAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	app := fx.New(
		fx.NopLogger,
		fx.Invoke(func(lc fx.Lifecycle) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					<-ctx.Done()
					return ctx.Err()
				},
			})
		}),
	)
	if err := app.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	stopApp(app, zap.New(core), 20*time.Millisecond)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("stopApp took %v", elapsed)
	}
	if logs.FilterMessage("shutdown incomplete").Len() != 1 {
		t.Fatalf("expected a shutdown warning, got %v", logs.All())
	}
}

func TestListPlayers(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockDBusClient(ctrl)
	bus.EXPECT().ListNames(gomock.Any()).Return([]string{
		"org.freedesktop.Notifications",
		"org.mpris.MediaPlayer2.spotify",
	}, nil)
	bus.EXPECT().
		GetProperty(gomock.Any(), "org.mpris.MediaPlayer2.spotify", gomock.Any(), "org.mpris.MediaPlayer2.Identity").
		Return(dbus.MakeVariant("Spotify"), nil)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	if err := listPlayers(cmd, bus); err != nil {
		t.Fatalf("listPlayers: %v", err)
	}
	if !strings.Contains(out.String(), "org.mpris.MediaPlayer2.spotify") || !strings.Contains(out.String(), "Spotify") {
		t.Fatalf("unexpected output %q", out.String())
	}
	if strings.Contains(out.String(), "Notifications") {
		t.Fatal("non-mpris service listed")
	}
}

func TestDescribeState(t *testing.T) {
	state := playback.Playing(playback.Episode{EpisodeID: "e", Name: "Ep", Show: "Show", DurationMS: 61000})
	fields := describeState(state, playback.StatusPlaying)

	got := map[string]string{}
	for _, f := range fields {
		got[f[0]] = f[1]
	}
	if got["episode"] != "Ep" || got["show"] != "Show" || got["duration"] != "1:01" {
		t.Fatalf("unexpected fields %v", got)
	}
	if _, ok := got["message"]; ok {
		t.Fatal("playing state should have no message")
	}
}
