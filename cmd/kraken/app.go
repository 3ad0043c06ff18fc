package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"karolbroda.com/kraken/internal/artwork"
	"karolbroda.com/kraken/internal/config"
	"karolbroda.com/kraken/internal/playback"
	"karolbroda.com/kraken/internal/poller"
	"karolbroda.com/kraken/internal/session"
	"karolbroda.com/kraken/internal/source"
	"karolbroda.com/kraken/internal/widget"
)

const shutdownTimeout = 5 * time.Second

// stopApp runs the stop hooks under a deadline. A hook that overruns is
// logged, not waited on.
func stopApp(app *fx.App, logger *zap.Logger, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

// appOptions is the runtime graph: source and session, poller, artwork
// extraction and the widget that joins them.
func appOptions(cfg *config.Config, logger *zap.Logger) fx.Option {
	return fx.Options(
		fx.Supply(cfg, logger),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		sourceOptions,
		fx.Provide(
			newPoller,
			fx.Annotate(artwork.NewFetcher, fx.As(new(artwork.ImageLoader))),
			newExtractor,
			newWidget,
		),
	)
}

var sourceOptions = fx.Provide(newSource)

type sourceResult struct {
	fx.Out

	Source  source.Source
	Session session.Session
}

func newSource(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (sourceResult, error) {
	logger = logger.Named("source")

	switch cfg.Source.Kind {
	case config.SourceHTTP:
		var opts []source.HTTPOption
		sess := session.Static(true)
		if cfg.Session.Token != "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Session.Token, TokenType: "Bearer"})
			opts = append(opts, source.WithTokenSource(ts))
			if cfg.Session.RequireToken {
				sess = session.FromTokenSource(ts)
			}
		} else if cfg.Session.RequireToken {
			sess = session.Static(false)
		}
		return sourceResult{
			Source:  source.NewHTTPSource(logger, cfg.Source.Endpoint, opts...),
			Session: sess,
		}, nil

	case config.SourceSpotify:
		client, ts, err := source.NewSpotifyClient(context.Background(), source.SpotifyCredentials{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			AccessToken:  cfg.Spotify.AccessToken,
			RefreshToken: cfg.Spotify.RefreshToken,
		})
		if err != nil {
			return sourceResult{}, err
		}
		return sourceResult{
			Source:  source.NewSpotifySource(logger, client),
			Session: session.FromTokenSource(ts),
		}, nil

	case config.SourceMPRIS:
		bus, err := source.ConnectSessionBus()
		if err != nil {
			return sourceResult{}, err
		}
		lc.Append(fx.StopHook(bus.Close))
		return sourceResult{
			Source:  source.NewMPRISSource(logger, bus, cfg.Source.MprisService),
			Session: session.Static(true),
		}, nil
	}

	return sourceResult{}, fmt.Errorf("%w: unknown source %q", config.ErrInvalid, cfg.Source.Kind)
}

func newPoller(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, src source.Source, sess session.Session) (*poller.Poller, error) {
	initial, err := loadInitial(cfg.Poll.InitialFile)
	if err != nil {
		return nil, err
	}

	p := poller.New(logger.Named("poller"), src, sess, poller.Options{
		Interval: cfg.Interval(),
		Policy:   poller.PublishPolicy(cfg.Poll.Policy),
		Initial:  initial,
	})

	lc.Append(fx.Hook{
		// the start context expires once startup completes
		OnStart: func(context.Context) error {
			return p.Start(context.Background())
		},
		OnStop: func(stopCtx context.Context) error {
			return p.Shutdown(stopCtx)
		},
	})
	return p, nil
}

// loadInitial decodes the optional now-playing document in the same shape the
// http source reads. An empty path or a null item means nothing is known yet.
func loadInitial(path string) (playback.Item, error) {
	if path == "" {
		return nil, nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read initial now-playing: %w", err)
	}
	item, err := source.DecodeNowPlaying(body)
	if err != nil {
		return nil, fmt.Errorf("initial now-playing %s: %w", path, err)
	}
	return item, nil
}

func newExtractor(cfg *config.Config, logger *zap.Logger, loader artwork.ImageLoader) *artwork.Extractor {
	return artwork.NewExtractor(logger.Named("artwork"), loader, artwork.Method(cfg.Theme.Method), cfg.Contrast())
}

func newWidget(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, ex *artwork.Extractor, p *poller.Poller) *widget.Widget {
	w := widget.New(logger.Named("widget"), ex, cfg.Fallback())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := w.Run(ctx, p.Updates()); err != nil {
					logger.Error("widget stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
	return w
}
