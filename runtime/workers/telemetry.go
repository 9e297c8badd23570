package workers

import (
	"chat-live/domain/event"
	"chat-live/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker drains the telemetry channel and periodically logs the
// node's health: chat counters plus process CPU/RSS sampled via gopsutil.
type TelemetryWorker struct {
	log            *slog.Logger
	monitoring     *observability.Monitoring
	telemetryChan  chan event.Event
	metricInterval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, monitoring *observability.Monitoring,
	telemetryChan chan event.Event, metricInterval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{
		log:            log,
		monitoring:     monitoring,
		telemetryChan:  telemetryChan,
		metricInterval: metricInterval,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt := <-w.telemetryChan:
			w.handle(evt)
		case <-ticker.C:
			w.report(p)
		}
	}
}

func (w *TelemetryWorker) handle(evt event.Event) {
	switch payload := evt.Payload.(type) {
	case event.ChannelCapacity:
		w.log.Debug("Channel capacity",
			"name", payload.ChannelName,
			"length", payload.Length,
			"capacity", payload.Capacity)
	}
}

func (w *TelemetryWorker) report(p *process.Process) {
	rss, cpu, err := getSelfStats(p)
	if err != nil {
		w.log.Error("Failed to collect self stats", "err", err)
		return
	}

	stats := w.monitoring.GetLatest()
	w.log.Info("Node health",
		"connections_live", stats.ConnectionsLive,
		"messages_broadcast", stats.MessagesBroadcast,
		"messages_dropped", stats.MessagesDropped,
		"deliveries_dropped", stats.DeliveriesDropped,
		"alloc_mem_mb", stats.AllocMemMb,
		"rss_bytes", rss,
		"cpu_percent", cpu)
}

// getSelfStats retrieves memory and CPU metrics for the given process.
func getSelfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
