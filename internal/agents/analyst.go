package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/Ilakiancs/StockSage/internal/errors"
	"github.com/Ilakiancs/StockSage/internal/models"
	"github.com/Ilakiancs/StockSage/pkg/utils"
)

const analystSystemPrompt = `You are a stock market analyst. A tracked stock just moved enough to trigger an alert.
Write one short message to the stock's owner explaining the most likely reason for the move.
The message MUST start with "<SYMBOL> UP/DOWN <percent>%%: " and MUST be at most %d characters total.
No greetings, no hashtags, no disclaimers.`

// Analyst turns a movement event into a short human-readable explanation.
// The LLM is a black box that may fail or time out; callers fall back to
// FallbackMessage and never drop the alert.
type Analyst struct {
	llm     LLMClient
	timeout time.Duration
	limit   int
}

// NewAnalyst creates an Analyst. llm may be nil, in which case Explain
// always fails and the templated fallback is used.
func NewAnalyst(llm LLMClient, timeout time.Duration, messageLimit int) *Analyst {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if messageLimit <= 0 {
		messageLimit = 160
	}
	return &Analyst{llm: llm, timeout: timeout, limit: messageLimit}
}

// Explain generates the alert text for a movement event. Any failure
// matches errors.Is(err, ErrGenerationFailed).
func (a *Analyst) Explain(ctx context.Context, event models.MovementEvent) (string, error) {
	if a.llm == nil {
		return "", apperrors.Wrap(apperrors.ErrGenerationFailed, "no LLM configured")
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	system := fmt.Sprintf(analystSystemPrompt, a.limit)
	user := fmt.Sprintf(
		"Symbol: %s\nDirection: %s\nPrevious price: %s\nCurrent price: %s\nChange: %s\nExplain the movement.",
		event.Symbol,
		event.Direction,
		utils.FormatPrice(event.OldPrice),
		utils.FormatPrice(event.NewPrice),
		utils.FormatPercent(event.PercentChange),
	)

	text, err := a.llm.CompleteWithSystem(ctx, system, user)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrGenerationFailed, "explaining %s movement: %v", event.Symbol, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.Wrapf(apperrors.ErrGenerationFailed, "empty response for %s", event.Symbol)
	}

	return utils.Truncate(text, a.limit), nil
}

// FallbackMessage builds the templated alert text used when analysis
// generation fails. Same shape the LLM is asked for, minus the reason.
func FallbackMessage(event models.MovementEvent) string {
	return fmt.Sprintf("%s %s %.1f%%: price moved from %s to %s",
		event.Symbol,
		event.Direction,
		absFloat(event.PercentChange),
		utils.FormatPrice(event.OldPrice),
		utils.FormatPrice(event.NewPrice),
	)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
