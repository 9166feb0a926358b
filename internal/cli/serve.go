package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ilakiancs/StockSage/internal/notify"
	"github.com/Ilakiancs/StockSage/internal/server"
)

// newServeCmd starts the full service: the polling tracker plus the
// inbound webhook server. Missing SMS credentials are fatal here.
func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the monitoring service and webhook server",
		Example: `  stocksage serve
  stocksage serve --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Config.RequireCredentials(); err != nil {
				return err
			}

			notifier := notify.NewTwilioNotifier(app.Config.Credentials.Twilio)
			dispatcher := app.newDispatcher(notifier)
			trk := app.newTracker(notifier)
			srv := server.New(dispatcher, app.Watchlist, app.Store, app.Config, app.Logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			go trk.Run(ctx)

			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				app.Logger.Info().Str("signal", sig.String()).Msg("Shutting down")
			}

			// Let the in-flight cycle finish its current symbol.
			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				app.Logger.Error().Err(err).Msg("Error shutting down server")
				return err
			}

			app.Logger.Info().Msg("Server gracefully stopped")
			return nil
		},
	}
}
