package command

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	apperrors "github.com/Ilakiancs/StockSage/internal/errors"
	"github.com/Ilakiancs/StockSage/internal/logging"
	"github.com/Ilakiancs/StockSage/internal/models"
	"github.com/Ilakiancs/StockSage/internal/notify"
	"github.com/Ilakiancs/StockSage/internal/quotes"
	"github.com/Ilakiancs/StockSage/internal/watchlist"
	"github.com/Ilakiancs/StockSage/pkg/utils"
)

const helpText = `Commands: "track AAPL", "untrack AAPL", "list", "price of AAPL"`

// Dispatcher executes parsed commands against the watchlist and quote
// gateway, replying through the notifier. Failures from collaborators
// become reply text; nothing escapes to the caller as a fault.
type Dispatcher struct {
	watchlist *watchlist.Watchlist
	quotes    quotes.Gateway
	notifier  notify.Notifier
	limit     int
	log       zerolog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(wl *watchlist.Watchlist, gateway quotes.Gateway, notifier notify.Notifier, messageLimit int, logger zerolog.Logger) *Dispatcher {
	if messageLimit <= 0 {
		messageLimit = 160
	}
	return &Dispatcher{
		watchlist: wl,
		quotes:    gateway,
		notifier:  notifier,
		limit:     messageLimit,
		log:       logger,
	}
}

// HandleMessage interprets raw text, executes the command and sends the
// reply. The reply text is returned for callers that want to surface it
// (terminal chat, tests); a delivery failure is logged, not returned.
func (d *Dispatcher) HandleMessage(ctx context.Context, raw string) string {
	cmd := Interpret(raw)
	reply := utils.Truncate(d.execute(ctx, cmd), d.limit)

	if err := d.notifier.Send(ctx, reply); err != nil {
		d.log.Error().Err(err).Str("kind", string(cmd.Kind)).Msg("Failed to deliver command reply")
	}
	logging.LogCommand(d.log, string(cmd.Kind), cmd.Symbol, reply)

	return reply
}

func (d *Dispatcher) execute(ctx context.Context, cmd models.Command) string {
	switch cmd.Kind {
	case models.CommandTrack:
		return d.track(ctx, cmd.Symbol)
	case models.CommandUntrack:
		return d.untrack(ctx, cmd.Symbol)
	case models.CommandList:
		return d.list()
	case models.CommandPriceQuery:
		return d.price(ctx, cmd.Symbol)
	default:
		return helpText
	}
}

func (d *Dispatcher) track(ctx context.Context, symbol string) string {
	result, err := d.watchlist.Add(ctx, symbol)
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidSymbol):
		return fmt.Sprintf("%q does not look like a ticker symbol. %s", symbol, helpText)
	case result == watchlist.AlreadyTracked:
		return fmt.Sprintf("%s is already being tracked.", symbol)
	case apperrors.Is(err, apperrors.ErrQuoteUnavailable):
		return fmt.Sprintf("Added %s, but could not fetch a starting price yet. It will be set on the next check.", symbol)
	case err != nil:
		d.log.Error().Err(err).Str("symbol", symbol).Msg("Track command failed")
		return fmt.Sprintf("Could not add %s right now, please try again.", symbol)
	}

	if t, ok := d.watchlist.Get(symbol); ok && t.HasReference {
		return fmt.Sprintf("Now tracking %s at %s.", symbol, utils.FormatPrice(t.ReferencePrice))
	}
	return fmt.Sprintf("Now tracking %s.", symbol)
}

func (d *Dispatcher) untrack(ctx context.Context, symbol string) string {
	removed, err := d.watchlist.Remove(ctx, symbol)
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidSymbol):
		return fmt.Sprintf("%q does not look like a ticker symbol. %s", symbol, helpText)
	case err != nil:
		d.log.Error().Err(err).Str("symbol", symbol).Msg("Untrack command failed")
		return fmt.Sprintf("Could not remove %s right now, please try again.", symbol)
	case !removed:
		return fmt.Sprintf("%s is not being tracked.", symbol)
	}
	return fmt.Sprintf("Stopped tracking %s.", symbol)
}

func (d *Dispatcher) list() string {
	symbols := d.watchlist.List()
	if len(symbols) == 0 {
		return `Nothing is being tracked yet. Send "track AAPL" to start.`
	}
	return "Tracking: " + utils.JoinSymbols(symbols)
}

func (d *Dispatcher) price(ctx context.Context, symbol string) string {
	quote, err := d.quotes.FetchPrice(ctx, symbol)
	if err != nil {
		d.log.Warn().Err(err).Str("symbol", symbol).Msg("Price query failed")
		return fmt.Sprintf("Could not fetch a price for %s right now.", symbol)
	}
	return fmt.Sprintf("%s is trading at %s.", symbol, utils.FormatPrice(quote.Price))
}
