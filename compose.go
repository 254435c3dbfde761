package goji

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/livefir/goji/internal/dom"
)

// Composition directives, resolved once per template by Compile.
const (
	attrInclude = "g-include"
	attrReplace = "g-replace"
)

// templateRef is a parsed "name :: selector" directive value.
type templateRef struct {
	name     string
	selector string
}

func parseTemplateRef(directive, value string) (templateRef, error) {
	name, selector, _ := strings.Cut(value, "::")
	ref := templateRef{name: strings.TrimSpace(name), selector: strings.TrimSpace(selector)}
	if ref.name == "" {
		return ref, &DirectiveError{Directive: directive, Value: value, Reason: "missing template name"}
	}
	return ref, nil
}

// compose resolves every g-include and g-replace in raw and returns the composed markup.
func (c *Compiler) compose(cfg Config, raw string) (string, error) {
	c.stats.IncrementComposition()

	doc, err := c.composeTree(cfg, raw, nil)
	if err != nil {
		return "", err
	}
	return doc.Render()
}

// composeTree parses raw and splices in its includes, then its replacements. chain holds
// the names of the templates being composed around this one.
func (c *Compiler) composeTree(cfg Config, raw string, chain []string) (*dom.Document, error) {
	doc, err := dom.Parse(raw)
	if err != nil {
		return nil, err
	}

	for _, directive := range []string{attrInclude, attrReplace} {
		if err := c.splice(cfg, doc, directive, chain); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// splice locates the fragment named by each host's directive and splices it into doc.
func (c *Compiler) splice(cfg Config, doc *dom.Document, directive string, chain []string) error {
	for _, host := range dom.WithAttr(doc.Root, directive) {
		// an earlier splice may have dropped this host along with its parent's content
		if !dom.Contains(doc.Root, host) {
			continue
		}

		value := dom.TakeAttr(host, directive)
		ref, err := parseTemplateRef(directive, value)
		if err != nil {
			return err
		}

		fragment, err := c.locate(cfg, ref, directive, chain)
		if err != nil {
			return err
		}
		if fragment == nil {
			cfg.logger().Debug("nothing to splice", "directive", directive, "template", ref.name, "selector", ref.selector)
			continue
		}

		switch {
		case directive == attrInclude:
			dom.RemoveChildren(host)
			dom.MoveChildren(host, fragment)
		case ref.selector == "" || fragment.Type == html.DocumentNode:
			// replace with a whole template: its top-level nodes take the host's place
			dom.InsertChildrenBefore(host, fragment)
			dom.Remove(host)
		default:
			dom.Replace(host, fragment)
		}
	}
	return nil
}

// locate loads and composes the referenced template and returns the node its selector
// picks, or nil when the template or the selected node does not exist. Without a selector
// the template's whole body is returned.
func (c *Compiler) locate(cfg Config, ref templateRef, directive string, chain []string) (*html.Node, error) {
	for _, name := range chain {
		if name == ref.name {
			return nil, &CompositionCycleError{Chain: appendChain(chain, ref.name)}
		}
	}
	if len(chain) >= cfg.MaxDepth {
		return nil, &CompositionCycleError{Chain: appendChain(chain, ref.name), Limit: cfg.MaxDepth}
	}

	raw, found, err := c.load(cfg, ref.name, false)
	if err != nil || !found {
		return nil, err
	}

	sub, err := c.composeTree(cfg, raw, appendChain(chain, ref.name))
	if err != nil {
		return nil, err
	}

	if ref.selector == "" {
		return sub.Body(), nil
	}

	n, err := dom.SelectFirst(sub.Root, ref.selector)
	if err != nil {
		return nil, &DirectiveError{Directive: directive, Value: ref.name + " :: " + ref.selector, Reason: err.Error()}
	}
	return n, nil
}

// appendChain returns chain+name without sharing chain's backing array.
func appendChain(chain []string, name string) []string {
	out := make([]string, len(chain), len(chain)+1)
	copy(out, chain)
	return append(out, name)
}
