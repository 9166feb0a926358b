// Package detector decides whether a price observation is a significant
// movement. Pure functions only; all I/O lives with the callers.
package detector

import (
	"math"

	"github.com/Ilakiancs/StockSage/internal/models"
)

// DefaultThresholdPercent is the minimum absolute percent change that
// triggers an alert when no threshold is configured.
const DefaultThresholdPercent = 1.0

// Detect compares the current price against the ticker's reference and
// returns a MovementEvent when the movement crosses the threshold.
//
// Returns false when:
//   - the ticker has no reference price yet (first observation
//     establishes the baseline, never alerts),
//   - the absolute percent change is below the threshold,
//   - an alert was already sent for this symbol today, regardless of
//     direction or magnitude.
//
// Callers must record the alert only after the notification is
// delivered, so a delivery failure can re-trigger on the next cycle.
func Detect(t models.TrackedTicker, currentPrice float64, today string, thresholdPercent float64) (models.MovementEvent, bool) {
	if thresholdPercent <= 0 {
		thresholdPercent = DefaultThresholdPercent
	}

	if !t.HasReference || t.ReferencePrice <= 0 {
		return models.MovementEvent{}, false
	}
	if t.LastAlertDate == today {
		return models.MovementEvent{}, false
	}

	event := models.NewMovementEvent(t.Symbol, t.ReferencePrice, currentPrice)
	if math.Abs(event.PercentChange) < thresholdPercent {
		return models.MovementEvent{}, false
	}

	return event, true
}
