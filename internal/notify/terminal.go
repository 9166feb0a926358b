package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// TerminalNotifier prints messages to a writer instead of sending them.
// Used by the chat and check commands so the pipeline can run without
// SMS credentials.
type TerminalNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTerminalNotifier creates a notifier writing to out.
func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{out: out}
}

// Name returns the name of the notifier.
func (t *TerminalNotifier) Name() string {
	return "terminal"
}

// Send prints the message.
func (t *TerminalNotifier) Send(ctx context.Context, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.out, "Bot: %s\n", text)
	return err
}
