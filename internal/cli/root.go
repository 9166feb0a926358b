// Package cli provides the command-line interface for the stock tracker.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Ilakiancs/StockSage/internal/agents"
	"github.com/Ilakiancs/StockSage/internal/command"
	"github.com/Ilakiancs/StockSage/internal/config"
	"github.com/Ilakiancs/StockSage/internal/logging"
	"github.com/Ilakiancs/StockSage/internal/notify"
	"github.com/Ilakiancs/StockSage/internal/quotes"
	"github.com/Ilakiancs/StockSage/internal/store"
	"github.com/Ilakiancs/StockSage/internal/tracker"
	"github.com/Ilakiancs/StockSage/internal/watchlist"
)

// Version information
const Version = "1.0.0"

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Store     store.DataStore
	Quotes    quotes.Gateway
	Watchlist *watchlist.Watchlist
	Analyst   *agents.Analyst
	Notifier  notify.Notifier
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "stocksage",
		Short: "StockSage - AI-powered stock movement alerts over SMS",
		Long: `StockSage watches a list of stock tickers, detects significant
intraday price movements and notifies you by text message with a short
AI-generated explanation. The same text channel accepts commands to
manage the tracked list ("track AAPL", "untrack AAPL", "list",
"price of AAPL").`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			// version needs no store or gateway and must not create one.
			if cmd.Name() == "version" {
				return nil
			}
			configDir, _ := cmd.Flags().GetString("config")
			return app.initDependencies(cmd.Context(), configDir)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Store != nil {
				_ = app.Store.Close()
			}
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/stocksage)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newChatCmd(app))
	rootCmd.AddCommand(newCheckCmd(app))
	addWatchlistCommands(rootCmd, app)
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// initDependencies wires the store, quote gateway and watchlist. The
// SMS notifier and analyst are built per command: direct CLI commands
// reply on the terminal and do not need credentials.
func (a *App) initDependencies(ctx context.Context, configDir string) error {
	dbPath := config.DefaultDBPath()
	if configDir != "" {
		dbPath = filepath.Join(configDir, "stocksage.db")
	}
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	a.Store = dataStore

	a.Quotes = quotes.NewYahooGateway(a.Config.Quotes)

	wl, err := watchlist.New(ctx, a.Store, a.Quotes, logging.WithComponent(a.Logger, "watchlist"))
	if err != nil {
		return fmt.Errorf("loading watchlist: %w", err)
	}
	a.Watchlist = wl

	var llm agents.LLMClient
	if a.Config.HasOpenAI() {
		llm = agents.NewOpenAIClient(a.Config.Credentials.OpenAI.APIKey, a.Config.Agent.Model)
		a.Logger.Debug().Str("model", a.Config.Agent.Model).Msg("OpenAI client initialized")
	} else {
		a.Logger.Warn().Msg("No OpenAI key configured, alerts will use templated text")
	}
	a.Analyst = agents.NewAnalyst(llm, a.Config.Agent.Timeout, a.Config.Monitor.MessageLimit)

	return nil
}

// newTracker builds a tracker around the given notifier.
func (a *App) newTracker(notifier notify.Notifier) *tracker.Tracker {
	loc, err := a.Config.Location()
	if err != nil {
		loc = time.Local
	}
	return tracker.New(a.Watchlist, a.Quotes, a.Analyst, notifier, tracker.Config{
		Interval:         a.Config.Monitor.Interval,
		ThresholdPercent: a.Config.Monitor.ThresholdPercent,
		MessageLimit:     a.Config.Monitor.MessageLimit,
		Location:         loc,
	}, logging.WithComponent(a.Logger, "tracker"))
}

// newDispatcher builds a command dispatcher around the given notifier.
func (a *App) newDispatcher(notifier notify.Notifier) *command.Dispatcher {
	return command.NewDispatcher(a.Watchlist, a.Quotes, notifier,
		a.Config.Monitor.MessageLimit, logging.WithComponent(a.Logger, "command"))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "stocksage %s\n", Version)
		},
	}
}
