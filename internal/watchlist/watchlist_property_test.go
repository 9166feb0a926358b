package watchlist

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
)

// Property: any interleaving of add and remove calls leaves the
// watchlist with at most one entry per symbol, the in-memory set equal
// to the persisted set, and List output sorted.
func TestProperty_AddRemoveConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"AAPL", "MSFT", "GOOG", "TSLA", "NVDA", "AMZN"}

	opGen := gen.SliceOf(gen.Struct(reflect.TypeOf(consistencyOp{}), map[string]gopter.Gen{
		"SymbolIdx": gen.IntRange(0, len(symbols)-1),
		"Remove":    gen.Bool(),
	}))

	properties.Property("add/remove keeps sets consistent", prop.ForAll(
		func(ops []consistencyOp) bool {
			ctx := context.Background()
			dataStore := newMemStore()
			wl, err := New(ctx, dataStore, &stubGateway{price: 100}, zerolog.Nop())
			if err != nil {
				return false
			}

			expected := make(map[string]bool)
			for _, op := range ops {
				symbol := symbols[op.SymbolIdx]
				if op.Remove {
					if _, err := wl.Remove(ctx, symbol); err != nil {
						return false
					}
					delete(expected, symbol)
				} else {
					if _, err := wl.Add(ctx, symbol); err != nil {
						return false
					}
					expected[symbol] = true
				}
			}

			listed := wl.List()
			if len(listed) != len(expected) {
				return false
			}
			for i, s := range listed {
				if !expected[s] {
					return false
				}
				if i > 0 && listed[i-1] >= s {
					return false
				}
			}

			persisted, err := dataStore.LoadWatchlist(ctx)
			if err != nil || len(persisted) != len(expected) {
				return false
			}
			for _, ticker := range persisted {
				if !expected[ticker.Symbol] {
					return false
				}
			}
			return true
		},
		opGen,
	))

	properties.TestingRun(t)
}

type consistencyOp struct {
	SymbolIdx int
	Remove    bool
}
