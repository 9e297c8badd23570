package observability

import (
	"runtime"
	"sync/atomic"
)

// Stats is a point-in-time snapshot of the node's counters, surfaced on
// the debug endpoint and logged by the telemetry worker.
type Stats struct {
	ConnectionsAdmitted uint64 `json:"connections_admitted"`
	ConnectionsClosed   uint64 `json:"connections_closed"`
	ConnectionsLive     int64  `json:"connections_live"`
	MessagesBroadcast   uint64 `json:"messages_broadcast"`
	MessagesDropped     uint64 `json:"messages_dropped"`
	DeliveriesDropped   uint64 `json:"deliveries_dropped"`
	AllocMemMb          uint64 `json:"alloc_mem_mb"`
	NumGC               uint32 `json:"num_gc"`
}

// Monitoring aggregates real-time counters for the chat node.
// All increments are atomic; it is shared by the engine, the fan-out
// worker and the transport layer.
type Monitoring struct {
	connectionsAdmitted uint64
	connectionsClosed   uint64
	messagesBroadcast   uint64
	messagesDropped     uint64
	deliveriesDropped   uint64
}

func NewMonitoring() *Monitoring {
	return &Monitoring{}
}

func (m *Monitoring) IncrConnectionsAdmitted() {
	atomic.AddUint64(&m.connectionsAdmitted, 1)
}

func (m *Monitoring) IncrConnectionsClosed() {
	atomic.AddUint64(&m.connectionsClosed, 1)
}

func (m *Monitoring) IncrMessagesBroadcast() {
	atomic.AddUint64(&m.messagesBroadcast, 1)
}

// IncrMessagesDropped counts intake drops: blank content, unknown
// connections and full pipeline channels.
func (m *Monitoring) IncrMessagesDropped() {
	atomic.AddUint64(&m.messagesDropped, 1)
}

// IncrDeliveriesDropped counts per-recipient delivery failures during
// fan-out (full sink buffer, dead connection).
func (m *Monitoring) IncrDeliveriesDropped() {
	atomic.AddUint64(&m.deliveriesDropped, 1)
}

// GetLatest builds a snapshot including Go memory statistics.
func (m *Monitoring) GetLatest() Stats {
	admitted := atomic.LoadUint64(&m.connectionsAdmitted)
	closed := atomic.LoadUint64(&m.connectionsClosed)

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return Stats{
		ConnectionsAdmitted: admitted,
		ConnectionsClosed:   closed,
		ConnectionsLive:     int64(admitted) - int64(closed),
		MessagesBroadcast:   atomic.LoadUint64(&m.messagesBroadcast),
		MessagesDropped:     atomic.LoadUint64(&m.messagesDropped),
		DeliveriesDropped:   atomic.LoadUint64(&m.deliveriesDropped),
		AllocMemMb:          ms.Alloc / 1024 / 1024,
		NumGC:               ms.NumGC,
	}
}
