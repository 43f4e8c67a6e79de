package surface

import (
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// position is one addressable unit of content: a rune of a text node
// (index >= 0) or an atomic element (index == -1).
type position struct {
	node  *html.Node
	index int
}

// positions lists every addressable unit under root in document order.
func positions(root *html.Node) []position {
	var out []position
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			for i := range utf8.RuneCountInString(n.Data) {
				out = append(out, position{node: n, index: i})
			}
			return
		case n.Type == html.ElementNode && isAtomic(n):
			out = append(out, position{node: n, index: -1})
			return
		case n.Type == html.ElementNode && isOpaque(n):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// countPositions returns how many positions n contributes.
func countPositions(n *html.Node) int {
	switch {
	case n.Type == html.TextNode:
		return utf8.RuneCountInString(n.Data)
	case n.Type == html.ElementNode && isAtomic(n):
		return 1
	case n.Type == html.ElementNode && isOpaque(n):
		return 0
	}
	total := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += countPositions(c)
	}
	return total
}

// runeAt returns the rune or replacement character a position stands for.
func (p position) runeAt() rune {
	if p.index < 0 {
		if p.node.DataAtom == atom.Br {
			return '\n'
		}
		return '\uFFFC'
	}
	return []rune(p.node.Data)[p.index]
}

// splitText cuts a text node before rune index i and returns the right
// half, or nil when i is at the end. The left half stays in t.
func splitText(t *html.Node, i int) *html.Node {
	runes := []rune(t.Data)
	if i <= 0 {
		return t
	}
	if i >= len(runes) {
		return nil
	}
	right := &html.Node{Type: html.TextNode, Data: string(runes[i:])}
	t.Data = string(runes[:i])
	t.Parent.InsertBefore(right, t.NextSibling)
	return right
}

// isolate splits t so that runes [from, to) form their own text node.
func isolate(t *html.Node, from, to int) *html.Node {
	if to < utf8.RuneCountInString(t.Data) {
		splitText(t, to)
	}
	if from > 0 {
		return splitText(t, from)
	}
	return t
}

func isAtomic(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Br, atom.Img, atom.Input, atom.Hr:
		return true
	}
	return false
}

func isOpaque(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Template:
		return true
	}
	return false
}

func isBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Li, atom.Td, atom.Th, atom.Blockquote, atom.Pre, atom.Section,
		atom.Article, atom.Center, atom.Address, atom.Dd, atom.Dt, atom.Figure,
		atom.Ul, atom.Ol, atom.Table:
		return true
	}
	return false
}

func newElement(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

// moveChildren appends every child of from to to.
func moveChildren(from, to *html.Node) {
	for c := from.FirstChild; c != nil; {
		next := c.NextSibling
		from.RemoveChild(c)
		to.AppendChild(c)
		c = next
	}
}

// unwrap replaces n with its children.
func unwrap(n *html.Node) {
	parent := n.Parent
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}
