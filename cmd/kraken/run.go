package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"karolbroda.com/kraken/internal/config"
	"karolbroda.com/kraken/internal/playback"
	"karolbroda.com/kraken/internal/terminal"
	"karolbroda.com/kraken/internal/theme"
	"karolbroda.com/kraken/internal/ui"
	"karolbroda.com/kraken/internal/widget"
)

var headless bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "start the visualizer",
	Long: `starts the now-playing visualizer. when stdout is not a terminal, or with
--headless, frames are printed one per line instead of drawn.`,
	RunE: runVisualizer,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", false, "print frames instead of drawing the TUI")
	rootCmd.AddCommand(runCmd)
}

func runVisualizer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	caps := terminal.DetectCapabilities(os.Stdout)
	tui := caps.Interactive && !headless

	logger, err := newLogger(cfg, tui)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var w *widget.Widget
	app := fx.New(appOptions(cfg, logger), fx.Populate(&w))
	if err := app.Err(); err != nil {
		return fmt.Errorf("build app: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	startCtx, cancelStart := context.WithTimeout(ctx, 15*time.Second)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer stopApp(app, logger, shutdownTimeout)

	if tui {
		return runTUI(ctx, cfg, caps, w)
	}
	return runHeadless(ctx, w.Frames(), cmd.OutOrStdout())
}

func runTUI(ctx context.Context, cfg *config.Config, caps *terminal.Capabilities, w *widget.Widget) error {
	defer terminal.Reset(os.Stdout)

	model := ui.NewModel(ui.ModelConfig{
		Frames:      w.Frames(),
		Initial:     widget.FrameFor(playback.State{}, playback.StatusIdle, cfg.Fallback(), theme.PhaseNoArtwork),
		HideArtwork: cfg.UI.HideArtwork,
		TermCaps:    caps,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running bubble tea: %w", err)
	}
	return nil
}

// runHeadless prints every frame as a tab separated line until ctx is done
// or the frames channel closes.
func runHeadless(ctx context.Context, frames <-chan widget.Frame, out io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			fmt.Fprintln(out, formatFrame(f))
		}
	}
}

func formatFrame(f widget.Frame) string {
	fields := []string{
		f.Kind.String(),
		f.Name,
		f.Creators,
		f.Background.Hex(),
		f.Foreground.Hex(),
		f.Phase.String(),
		f.Status.String(),
	}
	if f.Message != "" {
		fields = append(fields, f.Message)
	}
	return strings.Join(fields, "\t")
}
