package workers

import (
	"chat-live/contract"
	"chat-live/domain"
	"chat-live/domain/event"
	"chat-live/observability"
	"context"
	"log/slog"
	"time"
)

// EventFanout is the broadcast engine. It turns sanitized pipeline events
// into wire ChatEvents and delivers them to every registered connection,
// best-effort and fire-and-forget.
//
// The recipient set is a registry snapshot taken before dispatch, so a
// fan-out never observes a partially applied admit or remove. Delivery
// failure for one recipient never aborts delivery to the others.
//
// EventFanout is safe for concurrent use by multiple goroutines.
type EventFanout struct {
	log             *slog.Logger
	registry        contract.IRegistry
	monitoring      *observability.Monitoring
	domainEvents    chan event.Event
	telemetryEvents chan event.Event
	sinkTimeout     time.Duration
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	monitoring *observability.Monitoring,
	domainEvents, telemetryEvents chan event.Event,
	sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:             log,
		registry:        registry,
		monitoring:      monitoring,
		domainEvents:    domainEvents,
		telemetryEvents: telemetryEvents,
		sinkTimeout:     sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.domainEvents:
			w.Fanout(ctx, evt)
			select {
			case w.telemetryEvents <- evt:
			default:
				w.log.Debug("Observability telemetry event lost")
			}
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		}
	}
}

// Fanout delivers one event to every registered connection, skipping the
// excluded connection if the envelope names one.
func (w *EventFanout) Fanout(ctx context.Context, evt event.Event) {
	chatEvent, ok := toChatEvent(evt)
	if !ok {
		return
	}

	snapshot := w.registry.All()
	for _, session := range snapshot {
		if evt.Exclude != "" && session.Connection.ID == evt.Exclude {
			continue
		}
		w.deliver(ctx, session, chatEvent)
	}
	w.monitoring.IncrMessagesBroadcast()
}

// deliver hands the event to a single recipient. Failures are isolated:
// logged, counted, and swallowed. The recipient will shortly be removed
// by its own disconnect signal.
func (w *EventFanout) deliver(ctx context.Context, session contract.Session, e domain.ChatEvent) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()

	if err := session.Sink.Consume(sinkCtx, e); err != nil {
		w.monitoring.IncrDeliveriesDropped()
		w.log.Debug("Delivery dropped",
			"connection_id", session.Connection.ID,
			"error", err)
	}
}

func toChatEvent(evt event.Event) (domain.ChatEvent, bool) {
	switch payload := evt.Payload.(type) {
	case event.SanitizedMessage:
		return domain.NewUserEvent(payload.Author, payload.Content, payload.At), true
	case event.SystemNotice:
		return domain.NewSystemEvent(payload.Message, payload.At), true
	default:
		return domain.ChatEvent{}, false
	}
}
