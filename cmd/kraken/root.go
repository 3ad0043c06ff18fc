package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"karolbroda.com/kraken/internal/config"
)

var (
	// global flags
	configPath   string
	sourceKind   string
	endpoint     string
	interval     time.Duration
	policy       string
	initialFile  string
	method       string
	mprisService string
	hideArtwork  bool
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "kraken",
	Short: "terminal now-playing visualizer",
	Long: `kraken shows the currently playing spotify track or podcast episode in the
terminal, themed with the dominant color of its artwork.

when run without a subcommand, it starts the visualizer.`,
	Version: "1.0.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVisualizer(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/kraken/config.toml)")
	flags.StringVar(&sourceKind, "source", "", "now-playing source: http, spotify or mpris")
	flags.StringVar(&endpoint, "endpoint", "", "now-playing http endpoint")
	flags.DurationVar(&interval, "interval", 0, "poll interval (e.g. 3s)")
	flags.StringVar(&policy, "policy", "", "publish policy: on_change or always")
	flags.StringVar(&initialFile, "initial", "", "now-playing json document to show before the first read")
	flags.StringVar(&method, "method", "", "color extraction method: average or kmeans")
	flags.StringVarP(&mprisService, "mpris-service", "m", "", "mpris service name (e.g., org.mpris.MediaPlayer2.spotify)")
	flags.BoolVarP(&hideArtwork, "hide-artwork", "H", false, "start with the artwork hidden")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

// loadConfig layers the persistent flags over the file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if sourceKind != "" {
		cfg.Source.Kind = sourceKind
	}
	if endpoint != "" {
		cfg.Source.Endpoint = endpoint
	}
	if interval > 0 {
		cfg.Poll.IntervalMS = int(interval / time.Millisecond)
	}
	if policy != "" {
		cfg.Poll.Policy = policy
	}
	if initialFile != "" {
		cfg.Poll.InitialFile = initialFile
	}
	if method != "" {
		cfg.Theme.Method = method
	}
	if mprisService != "" {
		cfg.Source.MprisService = mprisService
	}
	if cmd.Flags().Changed("hide-artwork") {
		cfg.UI.HideArtwork = hideArtwork
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
