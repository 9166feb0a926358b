package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ilakiancs/StockSage/internal/notify"
)

// newCheckCmd runs one detection pass for a single symbol immediately,
// bypassing the schedule. By default the alert (if any) is printed;
// --sms sends it through the real transport.
func newCheckCmd(app *App) *cobra.Command {
	var useSMS bool

	cmd := &cobra.Command{
		Use:   "check SYMBOL",
		Short: "Run one detection pass for a symbol now",
		Args:  cobra.ExactArgs(1),
		Example: `  stocksage check AAPL
  stocksage check AAPL --sms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var notifier notify.Notifier = notify.NewTerminalNotifier(os.Stdout)
			if useSMS {
				if err := app.Config.RequireCredentials(); err != nil {
					return err
				}
				notifier = notify.NewTwilioNotifier(app.Config.Credentials.Twilio)
			}

			trk := app.newTracker(notifier)
			summary, err := trk.CheckSymbol(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useSMS, "sms", false, "deliver a triggered alert by SMS instead of printing it")
	return cmd
}
