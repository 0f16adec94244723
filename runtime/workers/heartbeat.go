package workers

import (
	"chat-aggregator/runtime"
	"context"
	"log/slog"
	"os"
	goruntime "runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HeartbeatWorker periodically logs the health of the process: memory, CPU,
// goroutines, and what the listeners did since the previous beat.
type HeartbeatWorker struct {
	log      *slog.Logger
	stats    *runtime.Stats
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, stats *runtime.Stats, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, stats: stats, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	previous := w.stats.Snapshot()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			current := w.stats.Snapshot()
			w.beat(p, previous, current)
			previous = current
		}
	}
}

func (w *HeartbeatWorker) beat(p *process.Process, previous, current runtime.Snapshot) {
	attrs := []any{
		"goroutines", goruntime.NumGoroutine(),
		"processed", current.Processed - previous.Processed,
		"failed", current.Failed - previous.Failed,
		"ignored", current.Ignored - previous.Ignored,
	}
	rss, cpu, err := selfStats(p)
	if err != nil {
		w.log.Warn("Failed to collect self stats", "err", err)
	} else {
		attrs = append(attrs, "rss_bytes", rss, "cpu_percent", cpu)
	}
	w.log.Info("Heartbeat", attrs...)
}

// selfStats retrieves the resident memory and CPU usage of the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
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
