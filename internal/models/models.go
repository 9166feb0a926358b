// Package models provides domain models for the stock tracking application.
package models

import (
	"regexp"
	"time"
)

// TrackedTicker represents one symbol under watch.
type TrackedTicker struct {
	Symbol         string
	ReferencePrice float64
	HasReference   bool
	LastAlertDate  string // YYYY-MM-DD in the configured timezone, empty if never alerted
	AddedAt        time.Time
}

// Quote represents a price observation for a symbol.
type Quote struct {
	Symbol string
	Price  float64
	AsOf   time.Time
}

// Direction represents the direction of a price movement.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// MovementEvent represents a detected price movement that crossed the
// alert threshold. It is ephemeral: consumed by the alert pipeline and
// recorded only once a notification has actually been delivered.
type MovementEvent struct {
	Symbol        string
	OldPrice      float64
	NewPrice      float64
	PercentChange float64
	Direction     Direction
}

// CommandKind represents the kind of a parsed inbound command.
type CommandKind string

const (
	CommandTrack        CommandKind = "TRACK"
	CommandUntrack      CommandKind = "UNTRACK"
	CommandList         CommandKind = "LIST"
	CommandPriceQuery   CommandKind = "PRICE_QUERY"
	CommandUnrecognized CommandKind = "UNRECOGNIZED"
)

// Command is the parsed result of inbound message text.
// Symbol is set for Track, Untrack and PriceQuery; RawText is retained
// for Unrecognized.
type Command struct {
	Kind    CommandKind
	Symbol  string
	RawText string
}

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{1,5}$`)

// ValidSymbol reports whether s has the shape of a normalized ticker
// symbol: 1-5 uppercase alphanumeric characters.
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}

// NewMovementEvent builds a MovementEvent from a reference and a current price.
func NewMovementEvent(symbol string, oldPrice, newPrice float64) MovementEvent {
	pct := (newPrice - oldPrice) / oldPrice * 100
	dir := DirectionUp
	if pct < 0 {
		dir = DirectionDown
	}
	return MovementEvent{
		Symbol:        symbol,
		OldPrice:      oldPrice,
		NewPrice:      newPrice,
		PercentChange: pct,
		Direction:     dir,
	}
}
