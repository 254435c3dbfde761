package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of the attribute key.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether n carries the attribute key.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets or adds the attribute key.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the attribute key if present.
func RemoveAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}

// TakeAttr returns the attribute value and removes the attribute.
func TakeAttr(n *html.Node, key string) string {
	val, _ := Attr(n, key)
	RemoveAttr(n, key)
	return val
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, text string) {
	RemoveChildren(n)
	if text == "" {
		return
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// InnerHTML serializes the children of n.
func InnerHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// OuterHTML serializes n itself.
func OuterHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SetInnerHTML parses markup in the context of n and makes it the children of n.
func SetInnerHTML(n *html.Node, markup string) error {
	nodes, err := ParseFragment(markup, n)
	if err != nil {
		return err
	}
	RemoveChildren(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// AddClass appends each class in classes that n does not already have.
func AddClass(n *html.Node, classes string) {
	add := strings.Fields(classes)
	if len(add) == 0 {
		return
	}
	current, _ := Attr(n, "class")
	have := strings.Fields(current)
	for _, c := range add {
		if !containsString(have, c) {
			have = append(have, c)
		}
	}
	SetAttr(n, "class", strings.Join(have, " "))
}

// PrependClass puts classes ahead of the existing class list.
func PrependClass(n *html.Node, classes string) {
	classes = strings.TrimSpace(classes)
	if classes == "" {
		return
	}
	current, _ := Attr(n, "class")
	if current = strings.TrimSpace(current); current != "" {
		classes = classes + " " + current
	}
	SetAttr(n, "class", classes)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of n, detached from any tree.
func Clone(n *html.Node) *html.Node {
	clone := cloneNode(n)
	cloneTree(clone, n)
	return clone
}

func cloneNode(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if n.Attr != nil {
		clone.Attr = make([]html.Attribute, len(n.Attr))
		copy(clone.Attr, n.Attr)
	}
	return clone
}

func cloneTree(dst, src *html.Node) {
	for child := src.FirstChild; child != nil; child = child.NextSibling {
		clone := cloneNode(child)
		dst.AppendChild(clone)
		cloneTree(clone, child)
	}
}

// Remove detaches n from its parent.
func Remove(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// MoveChildren detaches every child of src and appends it to dst.
func MoveChildren(dst, src *html.Node) {
	for c := src.FirstChild; c != nil; c = src.FirstChild {
		src.RemoveChild(c)
		dst.AppendChild(c)
	}
}

// InsertChildrenBefore moves every child of src in front of ref.
func InsertChildrenBefore(ref, src *html.Node) {
	for c := src.FirstChild; c != nil; c = src.FirstChild {
		src.RemoveChild(c)
		ref.Parent.InsertBefore(c, ref)
	}
}

// Replace puts replacement where old was. replacement is detached from its own tree first.
func Replace(old, replacement *html.Node) {
	if old.Parent == nil {
		return
	}
	Remove(replacement)
	old.Parent.InsertBefore(replacement, old)
	old.Parent.RemoveChild(old)
}

// Container returns an empty detached root for holding a sub-tree during processing.
func Container() *html.Node {
	return &html.Node{Type: html.DocumentNode}
}
