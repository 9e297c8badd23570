//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-live/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives broadcast ChatEvents for a single recipient.
// Implementations must not block the caller beyond the context deadline.
type EventSink interface {
	Consume(ctx context.Context, e domain.ChatEvent) error
}

// IRegistry is the authoritative in-memory set of live connections.
type IRegistry interface {
	Admit(conn domain.Connection, sink EventSink) error
	Remove(connectionID string) *domain.Connection
	All() []Session
	Find(connectionID string) *domain.Connection
}

// Session pairs a registered connection with its delivery sink.
type Session struct {
	Connection domain.Connection
	Sink       EventSink
}
