package goji

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/alphadose/haxmap"

	"github.com/livefir/goji/internal/cache"
	"github.com/livefir/goji/internal/expr"
	"github.com/livefir/goji/internal/metrics"
)

// RenderFunc renders a compiled template against data. data may be nil, a Context,
// a map with string keys, or a struct (or pointer to one).
type RenderFunc func(data any) (string, error)

// Compiler composes and renders templates. A Compiler is long-lived: it owns the
// template file cache, the compiled-template cache and the partial registry.
// It is safe for concurrent use.
type Compiler struct {
	cfg       Config
	compiled  *cache.TTL                  // fingerprint -> composed markup
	templates *cache.TTL                  // absolute path -> file content
	paths     *haxmap.Map[string, string] // dir/name/ext -> absolute path
	partials  *PartialRegistry
	exprs     *expr.Evaluator
	stats     *metrics.Collector
}

// New creates a compiler with the given options applied on top of DefaultConfig.
func New(opts ...Option) (*Compiler, error) {
	cfg := DefaultConfig().with(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	exprs, err := expr.NewEvaluator(cfg.ExprCacheSize)
	if err != nil {
		return nil, err
	}

	return &Compiler{
		cfg:       cfg,
		compiled:  cache.New(),
		templates: cache.New(),
		paths:     haxmap.New[string, string](),
		partials:  NewPartialRegistry(),
		exprs:     exprs,
		stats:     metrics.NewCollector(),
	}, nil
}

// Config returns the compiler's configuration.
func (c *Compiler) Config() Config {
	return c.cfg
}

// Compile composes template (resolving g-include and g-replace) and returns a function
// that renders the composed markup. opts override the compiler's configuration for this
// call only.
func (c *Compiler) Compile(template string, opts ...Option) (RenderFunc, error) {
	cfg := c.cfg
	if len(opts) > 0 {
		cfg = cfg.with(opts...)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	composed, err := c.compileOnce(cfg, template)
	if err != nil {
		return nil, err
	}

	return func(data any) (string, error) {
		ctx, err := toContext(data)
		if err != nil {
			return "", err
		}
		out, err := c.render(cfg, composed, ctx)
		c.stats.IncrementRender(err != nil)
		return out, err
	}, nil
}

// compileOnce returns the composed form of raw, composing only on a cache miss.
func (c *Compiler) compileOnce(cfg Config, raw string) (string, error) {
	if !cfg.CacheEnabled {
		return c.compose(cfg, raw)
	}

	key := fingerprint(cfg, raw)
	composed, hit, err := c.compiled.GetOrLoad(key, cfg.CacheTTL, func() (string, error) {
		return c.compose(cfg, raw)
	})
	if err != nil {
		return "", err
	}

	if hit {
		c.stats.IncrementCompiledHit()
		cfg.logger().Debug("compiled template cache hit", "key", key[:12])
	} else {
		c.stats.IncrementCompiledMiss()
	}
	return composed, nil
}

// fingerprint digests the raw template together with the directories its names resolve
// against and the depth limit, so per-call overrides never share an entry.
func fingerprint(cfg Config, raw string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00", cfg.TemplatesDir, cfg.TemplatesExt, cfg.MaxDepth)
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

// EmptyCache drops every cached template file, composed template and compiled expression.
// Registered partials are kept.
func (c *Compiler) EmptyCache() {
	c.compiled.Purge()
	c.templates.Purge()
	c.exprs.Purge()
	c.paths.ForEach(func(key, _ string) bool {
		c.paths.Del(key)
		return true
	})
	c.cfg.logger().Debug("caches emptied")
}

// Stats is a snapshot of a compiler's cache and render counters.
type Stats = metrics.Metrics

// Stats returns the compiler's counters.
func (c *Compiler) Stats() Stats {
	return c.stats.GetMetrics()
}
