package detector

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Ilakiancs/StockSage/internal/models"
)

// Property: a detection triggers exactly when the absolute percent
// change reaches the threshold, and the reported event always carries
// the direction matching the sign of the change.
func TestProperty_DetectThresholdConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	refGen := gen.Float64Range(1.0, 5000.0)
	currentGen := gen.Float64Range(1.0, 5000.0)
	thresholdGen := gen.Float64Range(0.1, 10.0)

	properties.Property("triggers iff |percent change| >= threshold", prop.ForAll(
		func(ref, current, threshold float64) bool {
			ticker := models.TrackedTicker{
				Symbol:         "AAPL",
				ReferencePrice: ref,
				HasReference:   true,
			}
			pct := (current - ref) / ref * 100

			event, triggered := Detect(ticker, current, "2026-08-30", threshold)
			if math.Abs(pct) < threshold {
				return !triggered
			}
			if !triggered {
				return false
			}
			if pct < 0 && event.Direction != models.DirectionDown {
				return false
			}
			if pct > 0 && event.Direction != models.DirectionUp {
				return false
			}
			return event.OldPrice == ref && event.NewPrice == current
		},
		refGen, currentGen, thresholdGen,
	))

	properties.Property("same-day alert always suppresses", prop.ForAll(
		func(ref, current float64) bool {
			ticker := models.TrackedTicker{
				Symbol:         "AAPL",
				ReferencePrice: ref,
				HasReference:   true,
				LastAlertDate:  "2026-08-30",
			}
			_, triggered := Detect(ticker, current, "2026-08-30", 1.0)
			return !triggered
		},
		refGen, currentGen,
	))

	properties.TestingRun(t)
}
