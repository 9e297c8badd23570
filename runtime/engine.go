// Package runtime handles event production, propagation and fan-out.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"chat-live/contract"
	"chat-live/domain"
	"chat-live/domain/event"
	"chat-live/moderation"
	"chat-live/observability"
	"chat-live/runtime/workers"
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

//go:embed censored/*
var censoredFolder embed.FS

// Engine owns the registry and the event pipeline. Every session-level
// operation (admit, remove, send) goes through it; transport handlers
// never touch the registry or the channels directly.
type Engine struct {
	log             *slog.Logger
	registry        contract.IRegistry
	supervisor      contract.ISupervisor
	monitoring      *observability.Monitoring
	rawEvents       chan event.Event
	domainEvents    chan event.Event
	telemetryEvents chan event.Event
	sinkTimeout     time.Duration
	metricInterval  time.Duration
	charReplacement rune
}

func NewEngine(log *slog.Logger, supervisor *workers.Supervisor,
	registry contract.IRegistry, monitoring *observability.Monitoring,
	bufferSize int, sinkTimeout, metricInterval time.Duration, charReplacement rune) *Engine {
	return &Engine{
		log:             log,
		registry:        registry,
		supervisor:      supervisor,
		monitoring:      monitoring,
		rawEvents:       make(chan event.Event, bufferSize),
		domainEvents:    make(chan event.Event, bufferSize),
		telemetryEvents: make(chan event.Event, bufferSize),
		sinkTimeout:     sinkTimeout,
		metricInterval:  metricInterval,
		charReplacement: charReplacement,
	}
}

// Admit registers an authenticated connection and announces it to every
// other connection. The joining connection does not get its own notice.
func (e *Engine) Admit(conn domain.Connection, sink contract.EventSink) error {
	if err := e.registry.Admit(conn, sink); err != nil {
		return err
	}
	e.monitoring.IncrConnectionsAdmitted()

	now := time.Now().UTC()
	e.dispatch(e.domainEvents, event.Event{
		Type:      event.DomainType,
		CreatedAt: now,
		Exclude:   conn.ID,
		Payload:   event.SystemNotice{Message: JoinNotice(conn.Username()), At: now},
	})
	return nil
}

// Remove drops the connection from the registry and announces the leave.
// Idempotent: racing disconnect signals produce a single leave notice.
func (e *Engine) Remove(connectionID string) {
	conn := e.registry.Remove(connectionID)
	if conn == nil {
		return
	}
	e.monitoring.IncrConnectionsClosed()

	now := time.Now().UTC()
	e.dispatch(e.domainEvents, event.Event{
		Type:      event.DomainType,
		CreatedAt: now,
		Payload:   event.SystemNotice{Message: LeaveNotice(conn.Username()), At: now},
	})
}

// OnSend is the message intake transition. The author is always the
// identity bound to the connection; the raw payload carries text only.
// Unknown connections (race with a concurrent disconnect) and blank
// messages are dropped silently.
func (e *Engine) OnSend(connectionID, rawMessage string) {
	conn := e.registry.Find(connectionID)
	if conn == nil {
		e.log.Debug("Dropping message from unregistered connection", "connection_id", connectionID)
		e.monitoring.IncrMessagesDropped()
		return
	}

	content := strings.TrimSpace(rawMessage)
	if content == "" {
		e.monitoring.IncrMessagesDropped()
		return
	}

	e.dispatch(e.rawEvents, event.Event{
		Type:      event.DomainType,
		CreatedAt: time.Now().UTC(),
		Payload: event.MessagePosted{
			ConnectionID: connectionID,
			Author:       conn.Username(),
			Content:      content,
			At:           time.Now().UTC(),
		},
	})
}

// Roster returns the currently connected users, for the presence endpoint.
func (e *Engine) Roster() []domain.Connection {
	sessions := e.registry.All()
	roster := make([]domain.Connection, 0, len(sessions))
	for _, s := range sessions {
		roster = append(roster, s.Connection)
	}
	return roster
}

// dispatch hands an event to a pipeline channel without blocking the
// caller. A full channel drops the event; intake must never stall a
// transport goroutine.
func (e *Engine) dispatch(ch chan event.Event, evt event.Event) {
	select {
	case ch <- evt:
	default:
		e.log.Warn("Pipeline channel full, dropping event")
		e.monitoring.IncrMessagesDropped()
	}
}

// Start prepares all workers and hands them to the supervisor.
// It blocks until the context is canceled or Stop is called.
func (e *Engine) Start(ctx context.Context) error {
	moderationWorker, err := e.prepareModeration("censored", e.charReplacement)
	if err != nil {
		return err
	}

	fanoutWorker := workers.NewEventFanout(e.log, e.registry, e.monitoring,
		e.domainEvents, e.telemetryEvents, e.sinkTimeout)

	capacityWorker := workers.NewChannelCapacityWorker(e.log, []workers.NamedChannel{
		{Name: "raw_events", Channel: e.rawEvents},
		{Name: "domain_events", Channel: e.domainEvents},
	}, e.telemetryEvents, e.metricInterval)

	telemetryWorker := workers.NewTelemetryWorker(e.log, e.monitoring,
		e.telemetryEvents, e.metricInterval)

	e.supervisor.Add(moderationWorker)
	e.supervisor.Add(fanoutWorker)
	e.supervisor.Add(capacityWorker)
	e.supervisor.Add(telemetryWorker)

	e.log.Info("Starting engine and all supervised workers")
	e.supervisor.Run(ctx)
	return nil
}

// prepareModeration loads censored words and builds the Aho-Corasick automaton.
func (e *Engine) prepareModeration(path string, charReplacement rune) (contract.Worker, error) {
	loader := NewCensoredLoader(censoredFolder)
	data, err := loader.LoadAll(path)
	if err != nil {
		return nil, err
	}

	e.log.Info(fmt.Sprintf("%d censored files loaded [%s]",
		len(data.Languages), strings.Join(data.Languages, ",")))
	e.log.Info(fmt.Sprintf("%d unique censored words loaded", len(data.Words)))

	moderator, err := moderation.NewModerator(data.Words, charReplacement)
	if err != nil {
		return nil, err
	}

	return workers.NewModerationWorker(moderator, e.rawEvents, e.domainEvents, e.log), nil
}

// Stop initiates a graceful shutdown: cancel the supervised context and
// let the workers drain.
func (e *Engine) Stop() {
	e.log.Info("Requesting engine shutdown")
	e.supervisor.Stop()
}
