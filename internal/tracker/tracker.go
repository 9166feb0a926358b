// Package tracker runs the recurring monitoring cycle: poll prices for
// every tracked symbol, detect significant movements and deliver alerts.
package tracker

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ilakiancs/StockSage/internal/agents"
	"github.com/Ilakiancs/StockSage/internal/detector"
	apperrors "github.com/Ilakiancs/StockSage/internal/errors"
	"github.com/Ilakiancs/StockSage/internal/logging"
	"github.com/Ilakiancs/StockSage/internal/models"
	"github.com/Ilakiancs/StockSage/internal/notify"
	"github.com/Ilakiancs/StockSage/internal/quotes"
	"github.com/Ilakiancs/StockSage/internal/watchlist"
	"github.com/Ilakiancs/StockSage/pkg/utils"
)

const dateLayout = "2006-01-02"

// Analyst produces the alert explanation text.
type Analyst interface {
	Explain(ctx context.Context, event models.MovementEvent) (string, error)
}

// Config holds the tracker's tunables.
type Config struct {
	Interval         time.Duration
	ThresholdPercent float64
	MessageLimit     int
	CallTimeout      time.Duration // per external call (fetch, generate, send)
	Location         *time.Location
}

// Tracker drives the polling cycle.
type Tracker struct {
	watchlist *watchlist.Watchlist
	quotes    quotes.Gateway
	analyst   Analyst
	notifier  notify.Notifier
	cfg       Config
	log       zerolog.Logger

	// Cycle-in-progress guard. A tick that arrives while the previous
	// cycle is still running is skipped, never overlapped.
	running atomic.Bool

	now func() time.Time
}

// New creates a Tracker.
func New(wl *watchlist.Watchlist, gateway quotes.Gateway, analyst Analyst, notifier notify.Notifier, cfg Config, logger zerolog.Logger) *Tracker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.ThresholdPercent <= 0 {
		cfg.ThresholdPercent = detector.DefaultThresholdPercent
	}
	if cfg.MessageLimit <= 0 {
		cfg.MessageLimit = 160
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Tracker{
		watchlist: wl,
		quotes:    gateway,
		analyst:   analyst,
		notifier:  notifier,
		cfg:       cfg,
		log:       logger,
		now:       time.Now,
	}
}

// Run executes cycles on the configured interval until ctx is
// cancelled. Cancellation lets an in-flight cycle finish its current
// symbol rather than aborting mid-send.
func (t *Tracker) Run(ctx context.Context) {
	t.log.Info().
		Dur("interval", t.cfg.Interval).
		Float64("threshold_percent", t.cfg.ThresholdPercent).
		Msg("Tracker started")

	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.log.Info().Msg("Tracker stopped")
			return
		case <-ticker.C:
			t.RunCycle(ctx)
		}
	}
}

// RunCycle executes one full monitoring cycle. A no-op if a cycle is
// already in progress.
func (t *Tracker) RunCycle(ctx context.Context) {
	if !t.running.CompareAndSwap(false, true) {
		t.log.Warn().Msg("Previous cycle still running, skipping tick")
		return
	}
	defer t.running.Store(false)

	snapshot := t.watchlist.Snapshot()
	if len(snapshot) == 0 {
		t.log.Debug().Msg("Nothing to track")
		return
	}

	today := t.today()
	t.log.Info().Int("symbols", len(snapshot)).Str("date", today).Msg("Starting tracking cycle")

	alerts, errors := 0, 0
	for _, ticker := range snapshot {
		// Finish the current symbol on shutdown, then stop before the
		// next one.
		select {
		case <-ctx.Done():
			t.log.Info().Msg("Shutdown requested, ending cycle early")
			return
		default:
		}

		sent, err := t.processSymbol(ctx, ticker, today)
		if err != nil {
			errors++
		}
		if sent {
			alerts++
		}
	}

	t.log.Info().Int("alerts", alerts).Int("errors", errors).Msg("Tracking cycle completed")
}

// processSymbol handles one symbol in one cycle. An error here is
// isolated: logged by the caller's counters, never aborts the cycle.
func (t *Tracker) processSymbol(ctx context.Context, ticker models.TrackedTicker, today string) (bool, error) {
	log := logging.WithSymbol(t.log, ticker.Symbol)

	fetchCtx, cancel := context.WithTimeout(ctx, t.cfg.CallTimeout)
	quote, err := t.quotes.FetchPrice(fetchCtx, ticker.Symbol)
	cancel()
	if err != nil {
		// Transient: retried on the next cycle, no extra backoff.
		log.Warn().Err(err).Msg("Price fetch failed, skipping this cycle")
		return false, err
	}

	// First observation establishes the baseline, no alert.
	if !ticker.HasReference {
		if err := t.watchlist.SetReference(ctx, ticker.Symbol, quote.Price); err != nil {
			log.Error().Err(err).Msg("Failed to persist reference price")
			return false, err
		}
		log.Info().Float64("price", quote.Price).Msg("Reference price established")
		return false, nil
	}

	logging.LogPriceCheck(t.log, ticker.Symbol, quote.Price, ticker.ReferencePrice)

	event, triggered := detector.Detect(ticker, quote.Price, today, t.cfg.ThresholdPercent)
	if !triggered {
		pct := (quote.Price - ticker.ReferencePrice) / ticker.ReferencePrice * 100
		if ticker.LastAlertDate == today && math.Abs(pct) >= t.cfg.ThresholdPercent {
			logging.LogAlertSuppressed(t.log, ticker.Symbol, ticker.LastAlertDate)
		}
		return false, nil
	}

	return t.deliverAlert(ctx, event, today, log)
}

// deliverAlert generates the alert text, sends it and records the alert
// bookkeeping. The alert is recorded only after a successful send: a
// delivery failure leaves the dedup state untouched so the movement can
// re-trigger next cycle.
func (t *Tracker) deliverAlert(ctx context.Context, event models.MovementEvent, today string, log zerolog.Logger) (bool, error) {
	genCtx, cancel := context.WithTimeout(ctx, t.cfg.CallTimeout)
	message, err := t.analyst.Explain(genCtx, event)
	cancel()
	if err != nil {
		// Never drop an alert because the analysis failed.
		log.Warn().Err(err).Msg("Analysis generation failed, using templated text")
		message = agents.FallbackMessage(event)
	}
	message = utils.Truncate(message, t.cfg.MessageLimit)

	sendCtx, cancel := context.WithTimeout(ctx, t.cfg.CallTimeout)
	err = t.notifier.Send(sendCtx, message)
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("Alert delivery failed, will retry on next detection")
		return false, apperrors.Wrap(err, "delivering alert")
	}

	if err := t.watchlist.RecordAlert(ctx, event, message, today); err != nil {
		log.Error().Err(err).Msg("Alert sent but bookkeeping failed")
		return true, err
	}

	logging.LogAlertSent(t.log, event.Symbol, event.PercentChange, message)
	return true, nil
}

// CheckSymbol runs one detection pass for a single symbol immediately,
// bypassing the schedule. Diagnostic entry point for the check command.
func (t *Tracker) CheckSymbol(ctx context.Context, rawSymbol string) (string, error) {
	symbol, ok := watchlist.Normalize(rawSymbol)
	if !ok {
		return "", apperrors.ErrInvalidSymbol
	}

	fetchCtx, cancel := context.WithTimeout(ctx, t.cfg.CallTimeout)
	quote, err := t.quotes.FetchPrice(fetchCtx, symbol)
	cancel()
	if err != nil {
		return "", err
	}

	ticker, tracked := t.watchlist.Get(symbol)
	if !tracked {
		return fmt.Sprintf("%s is not tracked; current price %s", symbol, utils.FormatPrice(quote.Price)), nil
	}

	today := t.today()
	if !ticker.HasReference {
		if err := t.watchlist.SetReference(ctx, symbol, quote.Price); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s baseline established at %s", symbol, utils.FormatPrice(quote.Price)), nil
	}

	event, triggered := detector.Detect(ticker, quote.Price, today, t.cfg.ThresholdPercent)
	if !triggered {
		pct := (quote.Price - ticker.ReferencePrice) / ticker.ReferencePrice * 100
		return fmt.Sprintf("%s at %s, %s from reference %s: no alert",
			symbol, utils.FormatPrice(quote.Price), utils.FormatPercent(pct), utils.FormatPrice(ticker.ReferencePrice)), nil
	}

	sent, err := t.deliverAlert(ctx, event, today, logging.WithSymbol(t.log, symbol))
	if err != nil {
		return "", err
	}
	if !sent {
		return fmt.Sprintf("%s movement detected but alert not delivered", symbol), nil
	}
	return fmt.Sprintf("%s alert delivered (%s)", symbol, utils.FormatPercent(event.PercentChange)), nil
}

func (t *Tracker) today() string {
	return t.now().In(t.cfg.Location).Format(dateLayout)
}
