package service

import (
	"fmt"
	"runtime"
)

// ResourceGuard is the pre-flight memory check gating regeneration. It is
// fail-closed: when heap usage is over the ceiling the regeneration attempt
// is refused rather than risking more pressure during a full scan.
type ResourceGuard struct {
	limitBytes uint64
	threshold  float64
	readMem    func(*runtime.MemStats)
}

func NewResourceGuard(limitBytes uint64, threshold float64) *ResourceGuard {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.8
	}
	return &ResourceGuard{
		limitBytes: limitBytes,
		threshold:  threshold,
		readMem:    runtime.ReadMemStats,
	}
}

func (g *ResourceGuard) Check() error {
	if g.limitBytes == 0 {
		return nil
	}
	var stats runtime.MemStats
	g.readMem(&stats)

	ceiling := uint64(g.threshold * float64(g.limitBytes))
	if stats.HeapAlloc > ceiling {
		return fmt.Errorf("%w: heap %d bytes over ceiling %d", ErrResourceExhausted, stats.HeapAlloc, ceiling)
	}
	return nil
}
