package main

import (
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"ballcam-analyzer/internal/ipc"
)

// MemoryLogger logs memory usage periodically
type MemoryLogger struct {
	mu        sync.Mutex
	output    *ipc.Output
	every     int
	lastCount int
	lastLog   time.Time
}

// NewMemoryLogger creates a memory logger that reports every n processed
// replays. n <= 0 disables it.
func NewMemoryLogger(output *ipc.Output, n int) *MemoryLogger {
	return &MemoryLogger{output: output, every: n, lastLog: time.Now()}
}

// LogIfNeeded logs heap statistics once count has advanced by the interval.
// Safe for concurrent use.
func (ml *MemoryLogger) LogIfNeeded(count int) bool {
	if ml.every <= 0 {
		return false
	}

	ml.mu.Lock()
	if count-ml.lastCount < ml.every {
		ml.mu.Unlock()
		return false
	}
	delta := count - ml.lastCount
	ml.lastCount = count
	since := time.Since(ml.lastLog)
	ml.lastLog = time.Now()
	ml.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	ml.output.Infof("Memory: HeapAlloc=%s, HeapInuse=%s, HeapSys=%s, NumGC=%d, Replays=%d (+%d in %s)",
		humanize.IBytes(m.HeapAlloc), humanize.IBytes(m.HeapInuse), humanize.IBytes(m.HeapSys),
		m.NumGC, count, delta, since.Round(time.Millisecond))
	return true
}
