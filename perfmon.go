package bootstrap

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// Measurement is a single timed operation record for a
// (component, operation) pair.
type Measurement struct {
	StartedAt  time.Time     `json:"startedAt"`
	EndedAt    time.Time     `json:"endedAt"`
	Duration   time.Duration `json:"duration"`
	MemoryPeak uint64        `json:"memoryPeak"`
}

type measurementKey struct {
	component string
	operation string
}

// PerformanceMonitor records start/stop timings per (component, operation)
// pair and derives duration aggregates on demand. It is shared across
// independently-constructed initializers for one orchestration run, so it
// is safe for concurrent use.
//
// Instrumentation must never crash the caller: ending a measurement that
// was never started is a no-op.
type PerformanceMonitor struct {
	mu        sync.Mutex
	open      map[measurementKey]Measurement
	completed map[measurementKey][]Measurement
}

// NewPerformanceMonitor creates an empty monitor.
func NewPerformanceMonitor() *PerformanceMonitor {
	return &PerformanceMonitor{
		open:      make(map[measurementKey]Measurement),
		completed: make(map[measurementKey][]Measurement),
	}
}

// StartMeasurement records a start timestamp and memory snapshot for the
// (component, operation) pair. Starting again before EndMeasurement
// restarts the open measurement.
func (m *PerformanceMonitor) StartMeasurement(component, operation string) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.open[measurementKey{component, operation}] = Measurement{
		StartedAt:  time.Now(),
		MemoryPeak: stats.HeapAlloc,
	}
}

// EndMeasurement completes the open measurement for the pair, computing
// duration and peak memory delta, and appends it to the pair's measurement
// list. Without a matching StartMeasurement it does nothing.
func (m *PerformanceMonitor) EndMeasurement(component, operation string) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	m.mu.Lock()
	defer m.mu.Unlock()
	key := measurementKey{component, operation}
	measurement, ok := m.open[key]
	if !ok {
		return
	}
	delete(m.open, key)

	measurement.EndedAt = time.Now()
	measurement.Duration = measurement.EndedAt.Sub(measurement.StartedAt)
	if stats.HeapAlloc > measurement.MemoryPeak {
		measurement.MemoryPeak = stats.HeapAlloc - measurement.MemoryPeak
	} else {
		// The GC ran during the measurement; no growth to report.
		measurement.MemoryPeak = 0
	}
	m.completed[key] = append(m.completed[key], measurement)
}

// Measurements returns the completed measurements for the pair.
func (m *PerformanceMonitor) Measurements(component, operation string) ([]Measurement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, err := m.lookup(component, operation)
	if err != nil {
		return nil, err
	}
	out := make([]Measurement, len(list))
	copy(out, list)
	return out, nil
}

// MeasurementCount returns how many measurements completed for the pair.
func (m *PerformanceMonitor) MeasurementCount(component, operation string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, err := m.lookup(component, operation)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// TotalDuration returns the summed duration across the pair's measurements.
func (m *PerformanceMonitor) TotalDuration(component, operation string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, err := m.lookup(component, operation)
	if err != nil {
		return 0, err
	}
	var total time.Duration
	for _, measurement := range list {
		total += measurement.Duration
	}
	return total, nil
}

// AverageDuration returns the mean duration across the pair's measurements.
func (m *PerformanceMonitor) AverageDuration(component, operation string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, err := m.lookup(component, operation)
	if err != nil {
		return 0, err
	}
	var total time.Duration
	for _, measurement := range list {
		total += measurement.Duration
	}
	return total / time.Duration(len(list)), nil
}

// MinDuration returns the shortest duration across the pair's measurements.
func (m *PerformanceMonitor) MinDuration(component, operation string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, err := m.lookup(component, operation)
	if err != nil {
		return 0, err
	}
	minD := list[0].Duration
	for _, measurement := range list[1:] {
		if measurement.Duration < minD {
			minD = measurement.Duration
		}
	}
	return minD, nil
}

// MaxDuration returns the longest duration across the pair's measurements.
func (m *PerformanceMonitor) MaxDuration(component, operation string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, err := m.lookup(component, operation)
	if err != nil {
		return 0, err
	}
	maxD := list[0].Duration
	for _, measurement := range list[1:] {
		if measurement.Duration > maxD {
			maxD = measurement.Duration
		}
	}
	return maxD, nil
}

// Reset discards every open and completed measurement. Intended for test
// isolation between orchestration runs.
func (m *PerformanceMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = make(map[measurementKey]Measurement)
	m.completed = make(map[measurementKey][]Measurement)
}

func (m *PerformanceMonitor) lookup(component, operation string) ([]Measurement, error) {
	list, ok := m.completed[measurementKey{component, operation}]
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrMeasurementNotFound, component, operation)
	}
	return list, nil
}
