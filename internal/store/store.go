// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/Ilakiancs/StockSage/internal/models"
)

// DataStore defines the interface for watchlist and alert persistence.
type DataStore interface {
	// Watchlist
	LoadWatchlist(ctx context.Context) ([]models.TrackedTicker, error)
	SaveTicker(ctx context.Context, t models.TrackedTicker) error
	DeleteTicker(ctx context.Context, symbol string) (bool, error)

	// RecordAlert atomically updates a ticker's last alert date, resets
	// its reference price to the post-alert price and appends an alert
	// history entry.
	RecordAlert(ctx context.Context, event models.MovementEvent, message, date string) error

	// AlertStats returns alert counters for monitoring endpoints.
	AlertStats(ctx context.Context, today string) (AlertStats, error)

	// Lifecycle
	Close() error
}

// AlertStats holds aggregate alert counters.
type AlertStats struct {
	TotalAlerts    int
	AlertsToday    int
	SymbolsAlerted int
}
