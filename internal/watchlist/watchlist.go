// Package watchlist holds the set of tracked tickers shared by the
// polling cycle and the inbound command path. All mutations go through
// a single mutex, held across the write-through store call so the
// in-memory set and the persisted set cannot diverge under concurrent
// commands.
package watchlist

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/Ilakiancs/StockSage/internal/errors"
	"github.com/Ilakiancs/StockSage/internal/models"
	"github.com/Ilakiancs/StockSage/internal/quotes"
	"github.com/Ilakiancs/StockSage/internal/store"
)

// AddResult represents the outcome of an Add call.
type AddResult string

const (
	// Added means the symbol is newly tracked.
	Added AddResult = "added"
	// AlreadyTracked means the symbol was tracked before the call; the
	// existing entry is untouched.
	AlreadyTracked AddResult = "already_tracked"
)

// Watchlist is the in-memory tracked-ticker set backed by a DataStore.
type Watchlist struct {
	mu      sync.Mutex
	tickers map[string]models.TrackedTicker
	store   store.DataStore
	quotes  quotes.Gateway
	log     zerolog.Logger
}

// New creates a Watchlist and loads the persisted state.
func New(ctx context.Context, dataStore store.DataStore, gateway quotes.Gateway, logger zerolog.Logger) (*Watchlist, error) {
	w := &Watchlist{
		tickers: make(map[string]models.TrackedTicker),
		store:   dataStore,
		quotes:  gateway,
		log:     logger,
	}

	loaded, err := dataStore.LoadWatchlist(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range loaded {
		w.tickers[t.Symbol] = t
	}

	return w, nil
}

// Normalize uppercases and trims a raw symbol. The second return is
// false if the result does not have a valid ticker shape.
func Normalize(raw string) (string, bool) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	return symbol, models.ValidSymbol(symbol)
}

// Add starts tracking a symbol. For a newly added symbol it fetches an
// initial reference price; if that fetch fails the symbol stays tracked
// with an absent reference (the next cycle initializes it) and the
// returned error matches ErrQuoteUnavailable.
func (w *Watchlist) Add(ctx context.Context, rawSymbol string) (AddResult, error) {
	symbol, ok := Normalize(rawSymbol)
	if !ok {
		return "", apperrors.ErrInvalidSymbol
	}

	w.mu.Lock()
	if _, exists := w.tickers[symbol]; exists {
		w.mu.Unlock()
		return AlreadyTracked, nil
	}
	ticker := models.TrackedTicker{Symbol: symbol, AddedAt: time.Now()}
	w.tickers[symbol] = ticker
	err := w.store.SaveTicker(ctx, ticker)
	w.mu.Unlock()
	if err != nil {
		return Added, err
	}

	// Fetch the initial baseline outside the lock so a slow provider
	// does not stall the scheduler or other commands.
	quote, err := w.quotes.FetchPrice(ctx, symbol)
	if err != nil {
		w.log.Warn().Err(err).Str("symbol", symbol).Msg("No initial reference price, will initialize on next cycle")
		return Added, err
	}

	if err := w.SetReference(ctx, symbol, quote.Price); err != nil {
		return Added, err
	}
	return Added, nil
}

// Remove stops tracking a symbol. Returns false if it was not tracked.
func (w *Watchlist) Remove(ctx context.Context, rawSymbol string) (bool, error) {
	symbol, ok := Normalize(rawSymbol)
	if !ok {
		return false, apperrors.ErrInvalidSymbol
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.tickers[symbol]; !exists {
		return false, nil
	}
	delete(w.tickers, symbol)

	if _, err := w.store.DeleteTicker(ctx, symbol); err != nil {
		return true, err
	}
	return true, nil
}

// List returns the tracked symbols in alphabetical order.
func (w *Watchlist) List() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	symbols := make([]string, 0, len(w.tickers))
	for symbol := range w.tickers {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Get returns the tracked ticker record for a symbol.
func (w *Watchlist) Get(symbol string) (models.TrackedTicker, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, ok := w.tickers[symbol]
	return t, ok
}

// Snapshot returns a copy of all tracked tickers for one scheduler
// cycle. Mutations during the cycle do not affect the snapshot.
func (w *Watchlist) Snapshot() []models.TrackedTicker {
	w.mu.Lock()
	defer w.mu.Unlock()

	tickers := make([]models.TrackedTicker, 0, len(w.tickers))
	for _, t := range w.tickers {
		tickers = append(tickers, t)
	}
	sort.Slice(tickers, func(i, j int) bool { return tickers[i].Symbol < tickers[j].Symbol })
	return tickers
}

// SetReference establishes a new comparison baseline for a symbol.
// A no-op if the symbol was untracked in the meantime.
func (w *Watchlist) SetReference(ctx context.Context, symbol string, price float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, ok := w.tickers[symbol]
	if !ok {
		return nil
	}
	t.ReferencePrice = price
	t.HasReference = true
	w.tickers[symbol] = t
	return w.store.SaveTicker(ctx, t)
}

// RecordAlert marks a movement as alerted: it sets the last alert date
// and resets the reference price to the post-alert price so subsequent
// comparisons measure from the alert point. Call only after the
// notification was actually delivered.
func (w *Watchlist) RecordAlert(ctx context.Context, event models.MovementEvent, message, date string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, ok := w.tickers[event.Symbol]
	if !ok {
		return apperrors.ErrNotTracked
	}
	t.ReferencePrice = event.NewPrice
	t.HasReference = true
	t.LastAlertDate = date
	w.tickers[event.Symbol] = t
	return w.store.RecordAlert(ctx, event, message, date)
}

// Count returns the number of tracked symbols.
func (w *Watchlist) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.tickers)
}
