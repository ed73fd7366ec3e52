package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/alanyoungcy/betledger/internal/domain"
)

// Notifier delivers human-readable alerts. *notify.Notifier satisfies it.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// emitter publishes a committed ledger event to the bus, the audit log and
// the notifier. Every step is best effort: the write has already landed.
type emitter struct {
	bus      domain.SignalBus
	audit    domain.AuditStore
	notifier Notifier
	logger   *slog.Logger
}

func (e emitter) emit(ctx context.Context, channel string, evt domain.WagerEvent, detail map[string]any) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	if e.bus != nil {
		payload, err := json.Marshal(evt)
		if err == nil {
			err = e.bus.Publish(ctx, channel, payload)
		}
		if err != nil {
			e.logger.WarnContext(ctx, "publish event failed",
				slog.String("event", string(evt.Type)),
				slog.String("error", err.Error()),
			)
		}
	}

	if e.audit != nil {
		if err := e.audit.Log(ctx, string(evt.Type), detail); err != nil {
			e.logger.WarnContext(ctx, "audit log failed",
				slog.String("event", string(evt.Type)),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (e emitter) notify(ctx context.Context, event, title, message string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, event, title, message); err != nil {
		e.logger.WarnContext(ctx, "notify failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
