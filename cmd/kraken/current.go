package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"karolbroda.com/kraken/internal/artwork"
	"karolbroda.com/kraken/internal/colors"
	"karolbroda.com/kraken/internal/playback"
	"karolbroda.com/kraken/internal/poller"
	"karolbroda.com/kraken/internal/session"
	"karolbroda.com/kraken/internal/source"
)

var withColors bool

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "show the currently playing item",
	Long:  `polls the configured source once and prints what is playing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg, false)
		if err != nil {
			return err
		}
		defer logger.Sync()

		var (
			src  source.Source
			sess session.Session
		)
		app := fx.New(
			fx.Supply(cfg, logger),
			fx.NopLogger,
			sourceOptions,
			fx.Populate(&src, &sess),
		)
		if err := app.Err(); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		if err := app.Start(ctx); err != nil {
			return err
		}
		defer stopApp(app, logger, shutdownTimeout)

		p := poller.New(logger, src, sess, poller.Options{Policy: poller.PublishAlways})
		defer p.Stop()
		p.Tick(ctx)

		state, status := p.State(), p.Status()
		fields := describeState(state, status)

		if withColors && state.ArtworkURL() != "" {
			ex := artwork.NewExtractor(logger, artwork.NewFetcher(logger), artwork.Method(cfg.Theme.Method), cfg.Contrast())
			sample, err := ex.Extract(ctx, state.ArtworkURL())
			if err != nil {
				logger.Warn("color extraction failed", zap.Error(err))
				fields = append(fields, [2]string{"colors", "unavailable"})
			} else {
				fields = append(fields,
					[2]string{"background", swatch(sample.Background)},
					[2]string{"foreground", swatch(sample.Foreground)},
				)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderFields(fields))
		return nil
	},
}

func init() {
	currentCmd.Flags().BoolVar(&withColors, "colors", false, "also extract the artwork colors")
	rootCmd.AddCommand(currentCmd)
}

func describeState(state playback.State, status playback.Status) [][2]string {
	fields := [][2]string{{"status", status.String()}}

	switch item := state.Item.(type) {
	case nil:
	case playback.Track:
		fields = append(fields,
			[2]string{"track", item.Name},
			[2]string{"artists", strings.Join(item.Artists, ", ")},
			[2]string{"album", item.Album},
			[2]string{"duration", colors.FormatDuration(item.DurationMS)},
		)
	case playback.Episode:
		fields = append(fields,
			[2]string{"episode", item.Name},
			[2]string{"show", item.Show},
			[2]string{"publisher", item.Publisher},
			[2]string{"duration", colors.FormatDuration(item.DurationMS)},
		)
	}

	if u := state.ArtworkURL(); u != "" {
		fields = append(fields, [2]string{"artwork", u})
	}
	if msg := status.Message(); msg != "" {
		fields = append(fields, [2]string{"message", msg})
	}
	return fields
}

func swatch(c colors.RGB) string {
	return fmt.Sprintf("%s (luminance %.3f)", c.Hex(), colors.Luminance(c))
}
