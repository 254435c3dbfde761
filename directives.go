package goji

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/livefir/goji/internal/dom"
)

// evalIf keeps n only when its condition is exactly the boolean true.
func (r *renderer) evalIf(n *html.Node, s *scope) error {
	v, err := r.takeAndEval(n, attrIf, s)
	if err != nil {
		return err
	}
	if keep, ok := v.(bool); ok && keep {
		return nil
	}
	dom.Remove(n)
	return nil
}

// partialName matches values that can only be a literal partial name, such as "nav/top" or
// "site-footer". They are never evaluated as expressions.
var partialName = regexp.MustCompile(`^[\w.]*[-/][\w./-]*$`)

// evalPartial injects a registered partial as the inner content of n. The value is first
// tried as a literal partial name, then evaluated as an expression naming one; when neither
// matches, n is left as it is.
func (r *renderer) evalPartial(n *html.Node, s *scope) error {
	value := dom.TakeAttr(n, attrPartial)

	name := strings.TrimSpace(value)
	markup, ok := r.c.partials.Lookup(name)
	if !ok && !partialName.MatchString(name) {
		v, err := r.eval(attrPartial, value, s)
		if err != nil {
			return err
		}
		if name, ok = v.(string); ok {
			markup, ok = r.c.partials.Lookup(name)
		}
	}
	if !ok {
		r.cfg.logger().Debug("partial not registered", "value", value)
		return nil
	}

	if len(r.partials) >= r.cfg.MaxDepth {
		return &CompositionCycleError{Chain: appendChain(r.partials, name), Limit: r.cfg.MaxDepth}
	}

	nodes, err := dom.ParseFragment(markup, n)
	if err != nil {
		return err
	}
	holder := dom.Container()
	for _, c := range nodes {
		holder.AppendChild(c)
	}

	r.partials = append(r.partials, name)
	err = r.run(holder, s)
	r.partials = r.partials[:len(r.partials)-1]
	if err != nil {
		return err
	}

	r.seal(holder)
	dom.RemoveChildren(n)
	dom.MoveChildren(n, holder)
	return nil
}

// evalClass appends the evaluated class(es) to n's class list.
func (r *renderer) evalClass(n *html.Node, s *scope) error {
	v, err := r.takeAndEval(n, attrClass, s)
	if err != nil {
		return err
	}
	dom.AddClass(n, stringify(v))
	return nil
}

// evalClassPrepend puts the evaluated class(es) ahead of n's class list.
func (r *renderer) evalClassPrepend(n *html.Node, s *scope) error {
	v, err := r.takeAndEval(n, attrClassPrepend, s)
	if err != nil {
		return err
	}
	dom.PrependClass(n, stringify(v))
	return nil
}

// evalText replaces n's children with the evaluated text. It is escaped on output.
func (r *renderer) evalText(n *html.Node, s *scope) error {
	v, err := r.takeAndEval(n, attrText, s)
	if err != nil {
		return err
	}
	dom.SetText(n, stringify(v))
	return nil
}

// evalHTML replaces n's children with the evaluated markup, unescaped.
func (r *renderer) evalHTML(n *html.Node, s *scope) error {
	v, err := r.takeAndEval(n, attrHTML, s)
	if err != nil {
		return err
	}
	if err := dom.SetInnerHTML(n, stringify(v)); err != nil {
		return err
	}
	r.seal(n)
	return nil
}

// evalAttr binds each attribute named by g-attr to the value of its g-attr-<name>
// expression. nil and false remove the attribute, true sets it with an empty value.
func (r *renderer) evalAttr(n *html.Node, s *scope) error {
	value := dom.TakeAttr(n, attrAttr)
	names, err := r.attrNames(value, s)
	if err != nil {
		return err
	}

	for _, name := range names {
		key := attrAttr + "-" + name
		expression, ok := dom.Attr(n, key)
		if !ok {
			continue
		}
		dom.RemoveAttr(n, key)

		v, err := r.eval(key, expression, s)
		if err != nil {
			return err
		}
		switch v {
		case nil, false:
			dom.RemoveAttr(n, name)
		case true:
			dom.SetAttr(n, name, "")
		default:
			dom.SetAttr(n, name, stringify(v))
		}
	}
	return nil
}

// attrNames parses a g-attr value: a bare name, a quoted name, or a list literal.
func (r *renderer) attrNames(value string, s *scope) ([]string, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return nil, nil
	case strings.HasPrefix(value, "["):
		v, err := r.eval(attrAttr, value, s)
		if err != nil {
			return nil, err
		}
		items, err := sequence(v)
		if err != nil {
			return nil, &ExpressionError{Directive: attrAttr, Expression: value, Err: err}
		}
		names := make([]string, 0, len(items))
		for _, item := range items {
			if name := attrName(stringify(item)); name != "" {
				names = append(names, name)
			}
		}
		return names, nil
	case len(value) >= 2 && (value[0] == '\'' || value[0] == '"') && value[len(value)-1] == value[0]:
		if unquoted, err := strconv.Unquote(`"` + value[1:len(value)-1] + `"`); err == nil {
			value = unquoted
		} else {
			value = value[1 : len(value)-1]
		}
		return []string{attrName(value)}, nil
	default:
		return []string{attrName(value)}, nil
	}
}

// attrName normalizes an attribute name the way the HTML parser stores keys.
func attrName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
