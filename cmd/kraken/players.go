package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"karolbroda.com/kraken/internal/source"
)

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "list available mpris players",
	Long:  `list all mpris-compatible music players currently running on the system.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bus, err := source.ConnectSessionBus()
		if err != nil {
			return err
		}
		defer bus.Close()

		return listPlayers(cmd, bus)
	},
}

func init() {
	rootCmd.AddCommand(playersCmd)
}

func listPlayers(cmd *cobra.Command, bus source.DBusClient) error {
	ctx := cmd.Context()
	services, err := source.ListPlayers(ctx, bus)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(services) == 0 {
		fmt.Fprintln(out, "no mpris players found")
		fmt.Fprintln(out, "\ncheck if your music player is running and supports mpris")
		return nil
	}

	rows := make([][]string, 0, len(services))
	for _, service := range services {
		rows = append(rows, []string{service, source.PlayerIdentity(ctx, bus, service)})
	}
	fmt.Fprintln(out, renderTable([]string{"service", "identity"}, rows))
	fmt.Fprintln(out, "\nuse --source mpris --mpris-service to pick one")
	return nil
}
