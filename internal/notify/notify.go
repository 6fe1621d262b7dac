package notify

import "context"

// Notifier delivers short operator-facing messages.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }
