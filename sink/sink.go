package sink

import (
	"chat-live/domain"
	"context"
	"fmt"
)

// ErrBufferFull is returned when a recipient's buffer cannot accept an
// event without blocking. The fanout treats it as a dropped delivery.
var ErrBufferFull = fmt.Errorf("sink buffer full")

// ConnSink buffers outbound events for a single connection.
// Consume is called by the fanout; the transport's write pump drains
// Events and pushes them over the wire.
type ConnSink struct {
	Events chan domain.ChatEvent
}

func NewConnSink(bufferSize int) *ConnSink {
	return &ConnSink{Events: make(chan domain.ChatEvent, bufferSize)}
}

// Consume hands the event to the owning connection without blocking the
// fanout. A full buffer means the recipient is too slow; the event is
// dropped rather than stalling broadcast to everyone else.
func (s *ConnSink) Consume(ctx context.Context, e domain.ChatEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}
