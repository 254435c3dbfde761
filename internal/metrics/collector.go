package metrics

import (
	"sync/atomic"
	"time"
)

// Collector provides simple built-in counters for the compiler with no external dependencies
type Collector struct {
	compositions   int64
	compiledHits   int64
	compiledMisses int64
	templateHits   int64
	templateMisses int64
	renders        int64
	renderErrors   int64
	startTime      atomic.Value // time.Time
}

// Metrics is a point-in-time copy of the collector's counters
type Metrics struct {
	// Structural composition
	Compositions   int64 `json:"compositions"`
	CompiledHits   int64 `json:"compiled_hits"`
	CompiledMisses int64 `json:"compiled_misses"`

	// Template file loading
	TemplateHits   int64 `json:"template_hits"`
	TemplateMisses int64 `json:"template_misses"`

	// Rendering
	Renders      int64 `json:"renders"`
	RenderErrors int64 `json:"render_errors"`

	// Uptime
	StartTime time.Time     `json:"start_time"`
	Uptime    time.Duration `json:"uptime"`
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	c := &Collector{}
	c.startTime.Store(time.Now())
	return c
}

// IncrementComposition records one run of the structural composer
func (c *Collector) IncrementComposition() {
	atomic.AddInt64(&c.compositions, 1)
}

// IncrementCompiledHit records a compiled-template cache hit
func (c *Collector) IncrementCompiledHit() {
	atomic.AddInt64(&c.compiledHits, 1)
}

// IncrementCompiledMiss records a compiled-template cache miss
func (c *Collector) IncrementCompiledMiss() {
	atomic.AddInt64(&c.compiledMisses, 1)
}

// IncrementTemplateHit records a template content cache hit
func (c *Collector) IncrementTemplateHit() {
	atomic.AddInt64(&c.templateHits, 1)
}

// IncrementTemplateMiss records a template read from disk
func (c *Collector) IncrementTemplateMiss() {
	atomic.AddInt64(&c.templateMisses, 1)
}

// IncrementRender records a render call and whether it failed
func (c *Collector) IncrementRender(failed bool) {
	atomic.AddInt64(&c.renders, 1)
	if failed {
		atomic.AddInt64(&c.renderErrors, 1)
	}
}

// GetMetrics returns current metrics
func (c *Collector) GetMetrics() Metrics {
	start := c.startTime.Load().(time.Time)
	return Metrics{
		Compositions:   atomic.LoadInt64(&c.compositions),
		CompiledHits:   atomic.LoadInt64(&c.compiledHits),
		CompiledMisses: atomic.LoadInt64(&c.compiledMisses),
		TemplateHits:   atomic.LoadInt64(&c.templateHits),
		TemplateMisses: atomic.LoadInt64(&c.templateMisses),
		Renders:        atomic.LoadInt64(&c.renders),
		RenderErrors:   atomic.LoadInt64(&c.renderErrors),
		StartTime:      start,
		Uptime:         time.Since(start),
	}
}

// GetCompiledHitRate returns the compiled-template cache hit rate as a percentage
func (c *Collector) GetCompiledHitRate() float64 {
	hits := atomic.LoadInt64(&c.compiledHits)
	misses := atomic.LoadInt64(&c.compiledMisses)

	total := hits + misses
	if total == 0 {
		return 0.0
	}

	return float64(hits) / float64(total) * 100.0
}

// GetErrorRate returns the percentage of renders that failed
func (c *Collector) GetErrorRate() float64 {
	renders := atomic.LoadInt64(&c.renders)
	errors := atomic.LoadInt64(&c.renderErrors)

	if renders == 0 {
		return 0.0
	}

	return float64(errors) / float64(renders) * 100.0
}

// Reset resets all metrics to zero
func (c *Collector) Reset() {
	atomic.StoreInt64(&c.compositions, 0)
	atomic.StoreInt64(&c.compiledHits, 0)
	atomic.StoreInt64(&c.compiledMisses, 0)
	atomic.StoreInt64(&c.templateHits, 0)
	atomic.StoreInt64(&c.templateMisses, 0)
	atomic.StoreInt64(&c.renders, 0)
	atomic.StoreInt64(&c.renderErrors, 0)
	c.startTime.Store(time.Now())
}
