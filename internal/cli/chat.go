package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ilakiancs/StockSage/internal/notify"
)

// newChatCmd runs the command pipeline against stdin, with replies
// printed instead of sent. Useful for trying command phrasings without
// SMS credentials.
func newChatCmd(app *App) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive terminal chat for testing commands",
		Long: `Chat mode runs the same command interpreter the SMS webhook uses,
reading from the terminal and printing replies. With --poll the
monitoring cycle also runs in the background on a short interval.`,
		Example: `  stocksage chat
  stocksage chat --poll 1m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			notifier := notify.NewTerminalNotifier(os.Stdout)
			dispatcher := app.newDispatcher(notifier)

			if interval > 0 {
				trk := app.newTracker(notifier)
				go func() {
					ticker := time.NewTicker(interval)
					defer ticker.Stop()
					for {
						select {
						case <-cmd.Context().Done():
							return
						case <-ticker.C:
							trk.RunCycle(cmd.Context())
						}
					}
				}()
			}

			fmt.Println(`Chat mode activated. Type "exit" to quit.`)
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("You: ")
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if strings.EqualFold(line, "exit") {
					fmt.Println("Exiting chat.")
					return nil
				}
				dispatcher.HandleMessage(cmd.Context(), line)
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "poll", 0, "also run the monitoring cycle on this interval")
	return cmd
}
