package goji

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/livefir/goji/internal/dom"
)

// Render directives
const (
	attrIf           = "g-if"
	attrEach         = "g-each"
	attrPartial      = "g-partial"
	attrClass        = "g-class"
	attrClassPrepend = "g-classprepend"
	attrText         = "g-text"
	attrHTML         = "g-html"
	attrAttr         = "g-attr"

	// iterKey names the iteration context inside loop bodies
	iterKey = "iter"
)

// directiveOrder is the order every pipeline run processes directives in. g-each must come
// before partial, class and text so that loop bodies are rendered once per item.
var directiveOrder = []string{
	attrIf,
	attrEach,
	attrPartial,
	attrClass,
	attrClassPrepend,
	attrText,
	attrHTML,
	attrAttr,
}

// scope is the render context of one pipeline run: the data context plus, inside loop
// bodies, the iteration context.
type scope struct {
	data Context
	iter *IterationContext
	env  map[string]any // what expressions see
}

func newScope(data Context, iter *IterationContext) *scope {
	env := map[string]any(data)
	if iter != nil {
		env = make(map[string]any, len(data)+1)
		for k, v := range data {
			env[k] = v
		}
		env[iterKey] = iter.env()
	}
	return &scope{data: data, iter: iter, env: env}
}

// renderer carries the state of one render call across re-entrant pipeline runs.
type renderer struct {
	c        *Compiler
	cfg      Config
	partials []string // partials being rendered, outermost first

	// sealed holds the roots of output that is already final: rendered loop copies,
	// injected partial content and raw g-html markup. Enclosing runs leave it alone.
	sealed map[*html.Node]struct{}
}

// render evaluates every directive in composed against data.
func (c *Compiler) render(cfg Config, composed string, data Context) (string, error) {
	doc, err := dom.Parse(composed)
	if err != nil {
		return "", err
	}

	r := &renderer{c: c, cfg: cfg, sealed: make(map[*html.Node]struct{})}
	if err := r.run(doc.Root, newScope(data, nil)); err != nil {
		return "", err
	}

	out, err := doc.Render()
	if err != nil {
		return "", err
	}
	if cfg.Minify {
		out = minifyHTML(out)
	}
	return out, nil
}

// run applies every directive processor, in order, to the nodes under root.
// Loop expansion and partials call run again on their own sub-trees.
func (r *renderer) run(root *html.Node, s *scope) error {
	for _, attr := range directiveOrder {
		for _, n := range dom.WithAttr(root, attr) {
			if !r.pending(root, n, attr) {
				continue
			}
			if err := r.apply(attr, n, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *renderer) apply(attr string, n *html.Node, s *scope) error {
	switch attr {
	case attrIf:
		return r.evalIf(n, s)
	case attrEach:
		return r.evalEach(n, s)
	case attrPartial:
		return r.evalPartial(n, s)
	case attrClass:
		return r.evalClass(n, s)
	case attrClassPrepend:
		return r.evalClassPrepend(n, s)
	case attrText:
		return r.evalText(n, s)
	case attrHTML:
		return r.evalHTML(n, s)
	case attrAttr:
		return r.evalAttr(n, s)
	}
	return nil
}

// pending reports whether n still needs attr processed by the run over root: it is still
// attached under root, still carries attr, is not part of sealed output, and is not inside
// a loop body that has yet to be expanded (that body is rendered per item, against the
// item's scope).
func (r *renderer) pending(root, n *html.Node, attr string) bool {
	if !dom.HasAttr(n, attr) || !dom.Contains(root, n) {
		return false
	}
	for p := n; p != nil && p != root; p = p.Parent {
		if _, ok := r.sealed[p]; ok {
			return false
		}
		if p != n && dom.HasAttr(p, attrEach) {
			return false
		}
	}
	return true
}

// seal marks the current children of n as final output.
func (r *renderer) seal(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.sealed[c] = struct{}{}
	}
}

// eval runs expression against the scope, reporting failures as *ExpressionError.
func (r *renderer) eval(directive, expression string, s *scope) (any, error) {
	v, err := r.c.exprs.Eval(expression, s.env)
	if err != nil {
		return nil, &ExpressionError{Directive: directive, Expression: expression, Err: err}
	}
	return v, nil
}

// takeAndEval strips directive from n and evaluates its value.
func (r *renderer) takeAndEval(n *html.Node, directive string, s *scope) (any, error) {
	return r.eval(directive, dom.TakeAttr(n, directive), s)
}

// stringify converts an expression result to text; nil becomes the empty string.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
