// Package notify provides outbound message delivery to the user.
package notify

import (
	"context"
)

// Notifier defines the interface for delivering a text message to the
// configured user. Implementations must respect ctx deadlines; callers
// are responsible for truncating text to the transport limit first.
type Notifier interface {
	Name() string
	Send(ctx context.Context, text string) error
}
