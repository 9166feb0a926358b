// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	// ErrQuoteUnavailable means a price could not be fetched. Transient:
	// callers skip the symbol and retry on the next cycle.
	ErrQuoteUnavailable = errors.New("quote unavailable")
	// ErrGenerationFailed means the analysis text could not be produced.
	// Callers fall back to a templated message, never drop the alert.
	ErrGenerationFailed = errors.New("analysis generation failed")
	// ErrDeliveryFailed means an outbound message was not delivered.
	// The triggering movement must not be marked as alerted.
	ErrDeliveryFailed = errors.New("message delivery failed")
	// ErrConfigInvalid is fatal at startup.
	ErrConfigInvalid = errors.New("invalid configuration")

	ErrNotTracked    = errors.New("symbol not tracked")
	ErrInvalidSymbol = errors.New("invalid symbol")
	ErrTimeout       = errors.New("operation timed out")
	ErrDatabase      = errors.New("database error")
	ErrUnauthorized  = errors.New("unauthorized sender")
)

// QuoteError represents a failed price fetch for a symbol.
type QuoteError struct {
	Symbol string
	Err    error
}

func (e *QuoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("quote error [%s]: %v", e.Symbol, e.Err)
	}
	return fmt.Sprintf("quote error [%s]: %v", e.Symbol, ErrQuoteUnavailable)
}

func (e *QuoteError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is treat every QuoteError as ErrQuoteUnavailable
// regardless of the underlying cause.
func (e *QuoteError) Is(target error) bool {
	return target == ErrQuoteUnavailable
}

// NewQuoteError creates a new QuoteError.
func NewQuoteError(symbol string, err error) *QuoteError {
	return &QuoteError{Symbol: symbol, Err: err}
}

// DeliveryError represents a failed outbound notification.
type DeliveryError struct {
	Channel string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery error [%s]: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is treat every DeliveryError as ErrDeliveryFailed.
func (e *DeliveryError) Is(target error) bool {
	return target == ErrDeliveryFailed
}

// NewDeliveryError creates a new DeliveryError.
func NewDeliveryError(channel string, err error) *DeliveryError {
	return &DeliveryError{Channel: channel, Err: err}
}

// ConfigError represents a missing or invalid configuration setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %s", e.Field, e.Message)
}

// Is lets errors.Is treat every ConfigError as ErrConfigInvalid.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfigInvalid
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
