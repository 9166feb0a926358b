package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ilakiancs/StockSage/internal/notify"
)

// addWatchlistCommands registers the direct watchlist verbs. Each one
// is routed through the same dispatcher that serves inbound SMS, so
// replies here match what a texter would receive.
func addWatchlistCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "track SYMBOL",
		Short: "Start tracking a stock symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommandText(app, cmd, "track "+args[0])
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "untrack SYMBOL",
		Short: "Stop tracking a stock symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommandText(app, cmd, "untrack "+args[0])
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show all tracked stock symbols",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommandText(app, cmd, "list")
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "price SYMBOL",
		Short: "Fetch the current price of a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommandText(app, cmd, "price of "+args[0])
		},
	})
}

func runCommandText(app *App, cmd *cobra.Command, text string) error {
	dispatcher := app.newDispatcher(notify.NewTerminalNotifier(os.Stdout))
	reply := dispatcher.HandleMessage(cmd.Context(), text)
	if reply == "" {
		return fmt.Errorf("no response for %q", text)
	}
	return nil
}
