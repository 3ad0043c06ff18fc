package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"karolbroda.com/kraken/internal/config"
)

var overwriteConfig bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "configuration utilities",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "write a sample configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := config.DefaultConfigPath()
		if len(args) == 1 {
			target = args[0]
		}

		if !overwriteConfig {
			if _, err := os.Stat(target); err == nil {
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			}
		}

		if err := config.CreateSample(target); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote sample configuration to %s\n", target)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderFields([][2]string{
			{"source", cfg.Source.Kind},
			{"endpoint", cfg.Source.Endpoint},
			{"mpris service", cfg.Source.MprisService},
			{"interval", cfg.Interval().String()},
			{"policy", cfg.Poll.Policy},
			{"method", cfg.Theme.Method},
			{"threshold", fmt.Sprintf("%.2f", cfg.Theme.Threshold)},
			{"require token", fmt.Sprintf("%t", cfg.Session.RequireToken)},
			{"log file", cfg.Logging.File},
		}))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&overwriteConfig, "overwrite", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
