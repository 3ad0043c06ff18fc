package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"karolbroda.com/kraken/internal/artwork"
	"karolbroda.com/kraken/internal/colors"
	"karolbroda.com/kraken/internal/terminal"
)

var colorCmd = &cobra.Command{
	Use:   "color <path|url>",
	Short: "extract the dominant color of an image",
	Long: `loads an image from a local path, file:// or http(s) url and prints the
dominant color and the foreground kraken would pair with it.`,
	Args: cobra.ExactArgs(1),
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

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		img, err := artwork.NewFetcher(logger).Load(ctx, args[0])
		if err != nil {
			return err
		}

		m := artwork.Method(cfg.Theme.Method)
		sample, err := artwork.NewExtractor(logger, nil, m, cfg.Contrast()).FromImage(img)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if terminal.DetectCapabilities(os.Stdout).Interactive {
			fmt.Fprintln(out, strings.Join(artwork.RenderHalfBlock(img, 24, 12), "\n"))
		}
		b := img.Bounds()
		fmt.Fprintln(out, renderFields([][2]string{
			{"image", fmt.Sprintf("%dx%d", b.Dx(), b.Dy())},
			{"method", string(m)},
			{"background", swatch(sample.Background)},
			{"foreground", swatch(sample.Foreground)},
			{"threshold", fmt.Sprintf("%.2f", cfg.Contrast().Threshold)},
			{"light theme", fmt.Sprintf("%t", colors.Luminance(sample.Background) > cfg.Contrast().Threshold)},
		}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(colorCmd)
}
