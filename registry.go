package goji

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// PartialRegistry maps partial names to markup for the g-partial directive.
//
// Partials are registered explicitly; the registry is never filled from the filesystem
// behind the caller's back (see Compiler.RegisterPartialsDir for the explicit variant).
//
// Thread-safe: safe for concurrent access from multiple goroutines.
type PartialRegistry struct {
	byName map[string]string // name → markup
	mu     sync.RWMutex      // Protects byName
}

// NewPartialRegistry creates a new empty partial registry.
func NewPartialRegistry() *PartialRegistry {
	return &PartialRegistry{
		byName: make(map[string]string),
	}
}

// Register stores markup under name, replacing any partial with the same name.
func (r *PartialRegistry) Register(name, markup string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = markup
}

// Lookup returns the markup registered under name.
func (r *PartialRegistry) Lookup(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	markup, ok := r.byName[name]
	return markup, ok
}

// Unregister removes name. If the partial is not registered, this is a no-op.
func (r *PartialRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byName, name)
}

// Names returns the registered partial names in sorted order.
func (r *PartialRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered partials.
func (r *PartialRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// RegisterPartial registers a partial for g-partial. partial may be a string, a []byte,
// an io.Reader, or a producer (func() string, func() []byte, func() (string, error))
// that is called once, now.
func (c *Compiler) RegisterPartial(name string, partial any) error {
	markup, err := partialMarkup(partial)
	if err != nil {
		return fmt.Errorf("failed to register partial %q: %w", name, err)
	}
	c.partials.Register(name, markup)
	return nil
}

// RegisterPartialsDir registers every template file under the partials directory, named by
// its path relative to that directory without the extension (e.g. "nav/top").
// It returns the number of partials registered; a missing directory registers none.
func (c *Compiler) RegisterPartialsDir() (int, error) {
	dir := c.cfg.PartialsPath()
	names, err := discoverTemplateFiles(dir, c.cfg.TemplatesExt)
	if err != nil {
		return 0, fmt.Errorf("failed to list partials in %s: %w", dir, err)
	}

	for _, name := range names {
		markup, found, err := c.LoadPartialNamed(name)
		if err != nil {
			return 0, err
		}
		if found {
			c.partials.Register(name, markup)
		}
	}

	c.cfg.logger().Debug("registered partials", "dir", dir, "count", len(names))
	return len(names), nil
}

// Partials returns the registry backing g-partial.
func (c *Compiler) Partials() *PartialRegistry {
	return c.partials
}

func partialMarkup(partial any) (string, error) {
	switch p := partial.(type) {
	case string:
		return p, nil
	case []byte:
		return string(p), nil
	case io.Reader:
		data, err := io.ReadAll(p)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case func() string:
		return p(), nil
	case func() []byte:
		return string(p()), nil
	case func() (string, error):
		return p()
	case fmt.Stringer:
		return p.String(), nil
	default:
		return "", fmt.Errorf("unsupported partial type %T", partial)
	}
}
