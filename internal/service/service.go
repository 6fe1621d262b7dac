// Package service implements the inventory workflows on top of a
// storage.Store: the stock ledger, kit and BOM management, the reservation
// calculator, pick-list allocation and fulfillment, and shopping lists.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Spok95/parts-inventory/internal/metrics"
	"github.com/Spok95/parts-inventory/internal/notify"
	"github.com/Spok95/parts-inventory/internal/storage"
)

// Deps are the collaborators shared by every service. Zero-valued optional
// fields get no-op defaults.
type Deps struct {
	Store    storage.Store
	Log      *slog.Logger
	Metrics  metrics.Sink
	Notifier notify.Notifier
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = slog.New(slog.DiscardHandler)
	}
	if d.Metrics == nil {
		d.Metrics = metrics.Nop{}
	}
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// notify is best effort: delivery problems are logged, never returned.
func (d Deps) notify(ctx context.Context, text string) {
	if err := d.Notifier.Notify(ctx, text); err != nil {
		d.Log.Warn("notification failed", "err", err)
	}
}

func (d Deps) nowPtr() *time.Time {
	t := d.Now().UTC()
	return &t
}
