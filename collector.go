package bootstrap

import (
	"fmt"
	"sync"
	"time"
)

// DataCollector is a free-form diagnostics sink independent of the status
// state machine: per-component key/value data, named numeric metrics, and
// named timers. Any initializer may use it; it is safe for concurrent use.
type DataCollector struct {
	mu      sync.Mutex
	data    map[string]map[string]any
	metrics map[string]map[string]float64
	timers  map[string]map[string]time.Duration
	started map[string]map[string]time.Time
}

// NewDataCollector creates an empty collector.
func NewDataCollector() *DataCollector {
	c := &DataCollector{}
	c.reset()
	return c
}

func (c *DataCollector) reset() {
	c.data = make(map[string]map[string]any)
	c.metrics = make(map[string]map[string]float64)
	c.timers = make(map[string]map[string]time.Duration)
	c.started = make(map[string]map[string]time.Time)
}

// CollectData records an arbitrary value under the component's key.
func (c *DataCollector) CollectData(component, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data[component] == nil {
		c.data[component] = make(map[string]any)
	}
	c.data[component][key] = value
}

// CollectMetric records a numeric value under the component's key.
func (c *DataCollector) CollectMetric(component, key string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.metrics[component] == nil {
		c.metrics[component] = make(map[string]float64)
	}
	c.metrics[component][key] = value
}

// StartTimer begins a named timer for the component.
func (c *DataCollector) StartTimer(component, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started[component] == nil {
		c.started[component] = make(map[string]time.Time)
	}
	c.started[component][key] = time.Now()
}

// StopTimer ends a named timer and records its elapsed duration. Stopping
// a timer that was never started returns ErrTimerNotFound.
func (c *DataCollector) StopTimer(component, key string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	start, ok := c.started[component][key]
	if !ok {
		return 0, fmt.Errorf("%w: %s/%s", ErrTimerNotFound, component, key)
	}
	delete(c.started[component], key)
	elapsed := time.Since(start)
	if c.timers[component] == nil {
		c.timers[component] = make(map[string]time.Duration)
	}
	c.timers[component][key] = elapsed
	return elapsed, nil
}

// Data returns the value recorded for the component under key.
func (c *DataCollector) Data(component, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[component][key]
	return v, ok
}

// Metric returns the numeric value recorded for the component under key.
func (c *DataCollector) Metric(component, key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.metrics[component][key]
	return v, ok
}

// All returns a deep snapshot of everything collected so far, keyed
// "data", "metrics" and "timers".
func (c *DataCollector) All() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := make(map[string]map[string]any, len(c.data))
	for component, values := range c.data {
		data[component] = make(map[string]any, len(values))
		for k, v := range values {
			data[component][k] = v
		}
	}
	metrics := make(map[string]map[string]float64, len(c.metrics))
	for component, values := range c.metrics {
		metrics[component] = make(map[string]float64, len(values))
		for k, v := range values {
			metrics[component][k] = v
		}
	}
	timers := make(map[string]map[string]time.Duration, len(c.timers))
	for component, values := range c.timers {
		timers[component] = make(map[string]time.Duration, len(values))
		for k, v := range values {
			timers[component][k] = v
		}
	}
	return map[string]any{
		"data":    data,
		"metrics": metrics,
		"timers":  timers,
	}
}

// Clear wipes all collected data, metrics and timers.
func (c *DataCollector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}
