package goji

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("goji: invalid configuration")

// ExpressionError reports an expression that failed to compile or evaluate.
type ExpressionError struct {
	Directive  string // attribute that carried the expression, e.g. "g-if"
	Expression string
	Err        error
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("goji: %s=%q: %v", e.Directive, e.Expression, e.Err)
}

func (e *ExpressionError) Unwrap() error {
	return e.Err
}

// CompositionCycleError reports an include/replace or partial chain that refers back to
// itself or nests deeper than the configured limit.
type CompositionCycleError struct {
	Chain []string
	Limit int // non-zero when the depth limit, not a repeated name, stopped composition
}

func (e *CompositionCycleError) Error() string {
	chain := strings.Join(e.Chain, " -> ")
	if e.Limit > 0 {
		return fmt.Sprintf("goji: composition depth limit %d exceeded: %s", e.Limit, chain)
	}
	return fmt.Sprintf("goji: composition cycle: %s", chain)
}

// DirectiveError reports a directive whose value does not follow its grammar.
type DirectiveError struct {
	Directive string
	Value     string
	Reason    string
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("goji: %s=%q: %s", e.Directive, e.Value, e.Reason)
}
