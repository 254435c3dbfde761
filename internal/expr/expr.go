// Package expr compiles and runs directive expressions with expr-lang.
//
// Programs are compiled without a typed environment so that arbitrary, caller-shaped data
// can be evaluated; unknown identifiers evaluate to nil. Compiled programs are kept in a
// bounded LRU keyed by source text.
package expr

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of compiled programs kept when no size is given.
const DefaultCacheSize = 512

// Evaluator compiles expressions once and runs them against an environment map.
// It is safe for concurrent use.
type Evaluator struct {
	programs *lru.Cache
}

// NewEvaluator creates an Evaluator holding up to size compiled programs.
func NewEvaluator(size int) (*Evaluator, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	programs, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create program cache: %w", err)
	}
	return &Evaluator{programs: programs}, nil
}

// Compile returns the compiled program for source.
func (e *Evaluator) Compile(source string) (*vm.Program, error) {
	if cached, ok := e.programs.Get(source); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	e.programs.Add(source, program)
	return program, nil
}

// Eval compiles source (or reuses a cached program) and runs it against env.
func (e *Evaluator) Eval(source string, env map[string]any) (any, error) {
	program, err := e.Compile(source)
	if err != nil {
		return nil, err
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	return out, nil
}

// Len reports the number of cached programs.
func (e *Evaluator) Len() int {
	return e.programs.Len()
}

// Purge drops every cached program.
func (e *Evaluator) Purge() {
	e.programs.Purge()
}
