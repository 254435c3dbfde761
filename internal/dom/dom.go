// Package dom wraps golang.org/x/net/html into a small mutable document API.
//
// A Document is either a full HTML document (it has a doctype or an <html> element) or a
// fragment. Fragments are parsed in a <body> context and hang off a synthetic document root,
// so serializing them never adds html/head/body wrappers.
package dom

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed, mutable HTML tree.
type Document struct {
	Root *html.Node
	full bool
}

// Parse converts markup into a Document.
func Parse(markup string) (*Document, error) {
	if IsFullDocument(markup) {
		root, err := html.Parse(strings.NewReader(markup))
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTML: %w", err)
		}
		return &Document{Root: root, full: true}, nil
	}

	nodes, err := ParseFragment(markup, nil)
	if err != nil {
		return nil, err
	}

	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Document{Root: root}, nil
}

// IsFullDocument reports whether markup should be parsed as a complete document.
func IsFullDocument(markup string) bool {
	head := strings.ToLower(strings.TrimSpace(markup))
	return strings.HasPrefix(head, "<!doctype") || strings.Contains(head, "<html")
}

// Full reports whether the document was parsed as a complete HTML document.
func (d *Document) Full() bool {
	return d.full
}

// Body returns the node holding the document's content: the <body> element of a full
// document, or the synthetic root of a fragment.
func (d *Document) Body() *html.Node {
	if !d.full {
		return d.Root
	}
	if body := First(d.Root, "body"); body != nil {
		return body
	}
	return d.Root
}

// Render serializes the whole document.
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.Root); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.String(), nil
}

// ParseFragment parses markup as the children of context. A nil context (or a non-element
// context) parses in a <body> context.
func ParseFragment(markup string, context *html.Node) ([]*html.Node, error) {
	if context == nil || context.Type != html.ElementNode {
		context = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML fragment: %w", err)
	}
	return nodes, nil
}

var selectors sync.Map // selector string -> cascadia.Selector

func compile(selector string) (cascadia.Selector, error) {
	if sel, ok := selectors.Load(selector); ok {
		return sel.(cascadia.Selector), nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	selectors.Store(selector, sel)
	return sel, nil
}

// Select returns every node matching the CSS selector, scope included, in document order.
func Select(scope *html.Node, selector string) ([]*html.Node, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	return sel.MatchAll(scope), nil
}

// SelectFirst returns the first node matching the CSS selector, or nil.
func SelectFirst(scope *html.Node, selector string) (*html.Node, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	return sel.MatchFirst(scope), nil
}

// First is SelectFirst for selectors known to be valid.
func First(scope *html.Node, selector string) *html.Node {
	n, err := SelectFirst(scope, selector)
	if err != nil {
		return nil
	}
	return n
}

// WithAttr returns the elements under scope (scope included) carrying the attribute key.
func WithAttr(scope *html.Node, key string) []*html.Node {
	nodes, err := Select(scope, "["+key+"]")
	if err != nil {
		// keys are fixed directive names; fall back to a plain walk for anything odd
		return walkAttr(scope, key, nil)
	}
	return nodes
}

func walkAttr(n *html.Node, key string, found []*html.Node) []*html.Node {
	if HasAttr(n, key) {
		found = append(found, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		found = walkAttr(c, key, found)
	}
	return found
}

// Contains reports whether n is ancestor itself or one of its descendants.
func Contains(ancestor, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}
