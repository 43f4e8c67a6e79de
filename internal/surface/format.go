package surface

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/salhakar/doceditor/internal/pipeline"
)

// Exec applies a formatting command to the current selection.
func (d *DOM) Exec(ctx context.Context, command, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.root == nil {
		return ErrNotMounted
	}

	switch command {
	case "bold":
		d.toggleInline(atom.B, atom.B, atom.Strong)
	case "italic":
		d.toggleInline(atom.I, atom.I, atom.Em)
	case "underline":
		d.toggleInline(atom.U, atom.U)
	case "justifyLeft":
		d.align("left")
	case "justifyCenter":
		d.align("center")
	case "justifyRight":
		d.align("right")
	case "justifyFull":
		d.align("justify")
	case "insertUnorderedList":
		d.toggleList(atom.Ul)
	case "insertOrderedList":
		d.toggleList(atom.Ol)
	case "fontSize":
		size, err := strconv.Atoi(value)
		if err != nil || size < 1 || size > 7 {
			return fmt.Errorf("%w: fontSize %q", ErrInvalidValue, value)
		}
		d.fontSize(strconv.Itoa(size))
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedCommand, command)
	}
	return nil
}

// segment is a run of selected runes inside one text node.
type segment struct {
	node     *html.Node
	from, to int
}

// selectedSegments isolates every selected text run into its own node.
func (d *DOM) selectedSegments() []*html.Node {
	if d.start == d.end {
		return nil
	}

	var segs []segment
	for _, p := range positions(d.root)[d.start:d.end] {
		if p.index < 0 {
			continue
		}
		if n := len(segs); n > 0 && segs[n-1].node == p.node {
			segs[n-1].to = p.index + 1
			continue
		}
		segs = append(segs, segment{node: p.node, from: p.index, to: p.index + 1})
	}

	nodes := make([]*html.Node, 0, len(segs))
	for _, s := range segs {
		nodes = append(nodes, isolate(s.node, s.from, s.to))
	}
	return nodes
}

// toggleInline wraps the selection in tag, or unwraps it when every
// selected run already sits inside one of matches.
func (d *DOM) toggleInline(tag atom.Atom, matches ...atom.Atom) {
	segs := d.selectedSegments()
	if len(segs) == 0 {
		return
	}

	all := true
	for _, s := range segs {
		if d.ancestor(s, matches...) == nil {
			all = false
			break
		}
	}

	if all {
		for _, s := range segs {
			if a := d.ancestor(s, matches...); a != nil {
				unwrapAround(a, s)
			}
		}
		return
	}

	for _, s := range segs {
		if d.ancestor(s, matches...) != nil {
			continue
		}
		wrap(s, newElement(tag))
	}
}

// unwrapAround removes the formatting of a from seg only. Every element
// between seg and a is split at seg's edges, and the runs before and after
// seg keep a in a copy of their own.
func unwrapAround(a, seg *html.Node) {
	cur := seg
	for {
		p := cur.Parent
		before, after := shallowCopy(p), shallowCopy(p)
		for c := p.FirstChild; c != cur; {
			next := c.NextSibling
			p.RemoveChild(c)
			before.AppendChild(c)
			c = next
		}
		for c := cur.NextSibling; c != nil; {
			next := c.NextSibling
			p.RemoveChild(c)
			after.AppendChild(c)
			c = next
		}
		if before.FirstChild != nil {
			p.Parent.InsertBefore(before, p)
		}
		if after.FirstChild != nil {
			p.Parent.InsertBefore(after, p.NextSibling)
		}
		if p == a {
			break
		}
		cur = p
	}
	unwrap(a)
}

// shallowCopy returns an empty element like n. The id stays with n.
func shallowCopy(n *html.Node) *html.Node {
	c := &html.Node{Type: n.Type, DataAtom: n.DataAtom, Data: n.Data, Namespace: n.Namespace}
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == "id" {
			continue
		}
		c.Attr = append(c.Attr, attr)
	}
	return c
}

func (d *DOM) fontSize(size string) {
	for _, s := range d.selectedSegments() {
		if p := s.Parent; p.DataAtom == atom.Font && p.FirstChild == s && p.LastChild == s {
			setAttr(p, "size", size)
			continue
		}
		font := newElement(atom.Font)
		font.Attr = []html.Attribute{{Key: "size", Val: size}}
		wrap(s, font)
	}
}

func (d *DOM) align(value string) {
	for _, b := range d.selectedBlocks() {
		setStyleProperty(b, "text-align", value)
	}
}

// toggleList converts the selected blocks into items of a list of kind
// tag. Items already in such a list are taken out of it; items of the
// other list kind switch kind.
func (d *DOM) toggleList(tag atom.Atom) {
	blocks := d.selectedBlocks()
	if len(blocks) == 0 {
		return
	}

	allItems, sameKind := true, true
	for _, b := range blocks {
		if !isListItem(b) {
			allItems = false
			break
		}
		if b.Parent.DataAtom != tag {
			sameKind = false
		}
	}

	switch {
	case allItems && sameKind:
		for _, li := range blocks {
			liftOutOfList(li)
		}
	case allItems:
		for _, li := range blocks {
			li.Parent.DataAtom = tag
			li.Parent.Data = tag.String()
		}
	default:
		d.buildList(tag, blocks)
	}
}

func (d *DOM) buildList(tag atom.Atom, blocks []*html.Node) {
	var list *html.Node
	for _, b := range blocks {
		switch {
		case isListItem(b):
			continue
		case b.DataAtom == atom.Td || b.DataAtom == atom.Th:
			inner, li := newElement(tag), newElement(atom.Li)
			moveChildren(b, li)
			inner.AppendChild(li)
			b.AppendChild(inner)
			continue
		}

		if list == nil {
			list = newElement(tag)
			b.Parent.InsertBefore(list, b)
		}
		li := newElement(atom.Li)
		list.AppendChild(li)

		if (b.DataAtom == atom.P || b.DataAtom == atom.Div) && attrValue(b, "id") == "" {
			if style := attrValue(b, "style"); style != "" {
				setAttr(li, "style", style)
			}
			moveChildren(b, li)
			b.Parent.RemoveChild(b)
			continue
		}
		b.Parent.RemoveChild(b)
		li.AppendChild(b)
	}
}

// liftOutOfList turns li into a div placed where it was, splitting its list.
func liftOutOfList(li *html.Node) {
	list := li.Parent
	tail := &html.Node{Type: html.ElementNode, DataAtom: list.DataAtom, Data: list.Data}
	for c := li.NextSibling; c != nil; {
		next := c.NextSibling
		list.RemoveChild(c)
		tail.AppendChild(c)
		c = next
	}

	list.RemoveChild(li)
	li.DataAtom, li.Data = atom.Div, "div"
	list.Parent.InsertBefore(li, list.NextSibling)
	if tail.FirstChild != nil {
		li.Parent.InsertBefore(tail, li.NextSibling)
	}
	if list.FirstChild == nil {
		list.Parent.RemoveChild(list)
	}
}

// selectedBlocks returns the blocks touched by the selection, or the block
// holding the caret when the selection is collapsed.
func (d *DOM) selectedBlocks() []*html.Node {
	pos := positions(d.root)
	if len(pos) == 0 {
		return nil
	}

	var touched []position
	switch {
	case d.start < d.end:
		touched = pos[d.start:d.end]
	case d.start > 0:
		touched = pos[d.start-1 : d.start]
	default:
		touched = pos[:1]
	}

	var blocks []*html.Node
	seen := make(map[*html.Node]bool)
	for _, p := range touched {
		if p.index >= 0 && strings.TrimSpace(p.node.Data) == "" {
			continue
		}
		b := d.blockFor(p.node)
		if !seen[b] {
			seen[b] = true
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// blockFor returns the nearest block ancestor of n, wrapping loose inline
// content at the top level in a div when there is none.
func (d *DOM) blockFor(n *html.Node) *html.Node {
	for p := n.Parent; p != nil && p != d.root; p = p.Parent {
		if isBlock(p) && p.DataAtom != atom.Ul && p.DataAtom != atom.Ol && p.DataAtom != atom.Table {
			return p
		}
	}

	top := n
	for top.Parent != d.root {
		top = top.Parent
	}
	if isBlock(top) {
		return top
	}
	first, last := top, top
	for first.PrevSibling != nil && !isBlock(first.PrevSibling) {
		first = first.PrevSibling
	}
	for last.NextSibling != nil && !isBlock(last.NextSibling) {
		last = last.NextSibling
	}

	div := newElement(atom.Div)
	d.root.InsertBefore(div, first)
	stop := last.NextSibling
	for c := first; c != stop; {
		next := c.NextSibling
		d.root.RemoveChild(c)
		div.AppendChild(c)
		c = next
	}
	return div
}

// ancestor returns the nearest ancestor of n below the root matching one of atoms.
func (d *DOM) ancestor(n *html.Node, atoms ...atom.Atom) *html.Node {
	for p := n.Parent; p != nil && p != d.root; p = p.Parent {
		for _, a := range atoms {
			if p.DataAtom == a {
				return p
			}
		}
	}
	return nil
}

func isListItem(n *html.Node) bool {
	return n.DataAtom == atom.Li && n.Parent != nil &&
		(n.Parent.DataAtom == atom.Ul || n.Parent.DataAtom == atom.Ol)
}

// wrap puts n inside el at n's position.
func wrap(n, el *html.Node) {
	n.Parent.InsertBefore(el, n)
	n.Parent.RemoveChild(n)
	el.AppendChild(n)
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// setStyleProperty sets one declaration of the inline style, keeping the others.
func setStyleProperty(n *html.Node, prop, value string) {
	var decls []string
	replaced := false
	for _, decl := range pipeline.SplitDeclarations(attrValue(n, "style")) {
		name, _, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), prop) {
			if !replaced {
				decls = append(decls, prop+":"+value)
				replaced = true
			}
			continue
		}
		decls = append(decls, strings.TrimSpace(decl))
	}
	if !replaced {
		decls = append(decls, prop+":"+value)
	}
	setAttr(n, "style", strings.Join(decls, ";"))
}
