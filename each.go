package goji

import (
	"fmt"
	"reflect"
	"regexp"

	"golang.org/x/net/html"

	"github.com/livefir/goji/internal/dom"
)

// eachPattern matches "<identifier> in <expression>".
var eachPattern = regexp.MustCompile(`^\s*([A-Za-z_$][A-Za-z0-9_$]*)\s+in\s+(\S.*?)\s*$`)

func parseEach(value string) (itemVar, listExpr string, err error) {
	m := eachPattern.FindStringSubmatch(value)
	if m == nil {
		return "", "", &DirectiveError{Directive: attrEach, Value: value, Reason: `expected "<name> in <expression>"`}
	}
	return m[1], m[2], nil
}

// evalEach repeats n once per item of its list. The parent's content is cleared, then each
// copy is rendered through the whole pipeline, with the item bound under its name and iter
// describing its position, and appended to the parent.
func (r *renderer) evalEach(n *html.Node, s *scope) error {
	value := dom.TakeAttr(n, attrEach)
	itemVar, listExpr, err := parseEach(value)
	if err != nil {
		return err
	}

	list, err := r.eval(attrEach, listExpr, s)
	if err != nil {
		return err
	}
	items, err := sequence(list)
	if err != nil {
		return &ExpressionError{Directive: attrEach, Expression: listExpr, Err: err}
	}

	parent := n.Parent
	if parent == nil {
		return nil
	}
	// the unit is captured before any copy is rendered
	unit := dom.Clone(n)
	dom.RemoveChildren(parent)

	for i, item := range items {
		iter := newIteration(i)
		holder := dom.Container()
		holder.AppendChild(dom.Clone(unit))

		if err := r.run(holder, newScope(s.data.with(itemVar, item), &iter)); err != nil {
			return err
		}
		r.seal(holder)
		dom.MoveChildren(parent, holder)
	}
	return nil
}

// sequence returns the elements of a slice or array value; nil is the empty sequence.
func sequence(v any) ([]any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return t, nil
	}

	val := reflect.ValueOf(v)
	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, val.Len())
		for i := range items {
			items[i] = val.Index(i).Interface()
		}
		return items, nil
	default:
		return nil, fmt.Errorf("cannot iterate over %T", v)
	}
}
