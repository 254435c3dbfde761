// Package goji renders HTML templates driven by g-* directive attributes.
//
// Compile resolves the composition directives (g-include, g-replace) against template
// files once and returns a RenderFunc; each render evaluates the render directives
// (g-if, g-each, g-partial, g-class, g-classprepend, g-text, g-html, g-attr) against
// the supplied data:
//
//	render, err := goji.Compile(`<ul><li g-each="user in users" g-text="user.name"></li></ul>`)
//	if err != nil {
//		return err
//	}
//	out, err := render(goji.Context{"users": users})
//
// Directive values are expressions evaluated with github.com/expr-lang/expr. Inside a
// g-each body, iter.i, iter.odd and iter.even describe the current position.
package goji

import (
	"sync"
)

var (
	defaultCompiler *Compiler
	defaultOnce     sync.Once
)

// Default returns the process-wide compiler used by the package-level functions.
// It is created with DefaultConfig on first use.
func Default() *Compiler {
	defaultOnce.Do(func() {
		c, err := New()
		if err != nil {
			// DefaultConfig always validates
			panic(err)
		}
		defaultCompiler = c
	})
	return defaultCompiler
}

// Compile compiles template with the default compiler.
func Compile(template string, opts ...Option) (RenderFunc, error) {
	return Default().Compile(template, opts...)
}

// RegisterPartial registers a partial with the default compiler.
func RegisterPartial(name string, partial any) error {
	return Default().RegisterPartial(name, partial)
}

// EmptyCache empties the default compiler's caches.
func EmptyCache() {
	Default().EmptyCache()
}
