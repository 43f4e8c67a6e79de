package surface

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DOM is an in-memory editable surface.
type DOM struct {
	mu      sync.Mutex
	root    *html.Node
	start   int
	end     int
	focused bool
}

// New creates an empty, unmounted DOM.
func New() *DOM {
	return &DOM{}
}

// Mount replaces the surface content and collapses the caret at the start.
func (d *DOM) Mount(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	root := newElement(atom.Div)
	nodes, err := html.ParseFragment(strings.NewReader(content), &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	})
	if err != nil {
		return fmt.Errorf("parse content: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.root = root
	d.start, d.end = 0, 0
	return nil
}

// Content serializes the surface.
func (d *DOM) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.root == nil {
		return "", ErrNotMounted
	}

	var buf strings.Builder
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// Select sets the selection to the text offsets [start, end).
func (d *DOM) Select(ctx context.Context, start, end int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.root == nil {
		return ErrNotMounted
	}
	total := len(positions(d.root))
	if start < 0 || end < start || end > total {
		return fmt.Errorf("%w: [%d, %d) of %d", ErrSelectionRange, start, end, total)
	}
	d.start, d.end = start, end
	return nil
}

// Selection returns the current selection offsets.
func (d *DOM) Selection() (start, end int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.start, d.end
}

// Len returns the number of addressable positions.
func (d *DOM) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.root == nil {
		return 0
	}
	return len(positions(d.root))
}

// Focus marks the surface as the target of subsequent input.
func (d *DOM) Focus(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.focused = true
	return nil
}

// Focused reports whether the surface has focus.
func (d *DOM) Focused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focused
}

// Blur drops focus.
func (d *DOM) Blur() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.focused = false
}

// CharBeforeCaret returns the character preceding the selection start.
// Atomic elements read as U+FFFC, line breaks as '\n'.
// The boolean is false at the start of the content.
func (d *DOM) CharBeforeCaret(ctx context.Context) (rune, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.root == nil {
		return 0, false, ErrNotMounted
	}
	if d.start == 0 {
		return 0, false, nil
	}
	return positions(d.root)[d.start-1].runeAt(), true, nil
}

// InsertHTML inserts fragment at the selection start and collapses the
// caret after the inserted nodes. The selected content is kept.
func (d *DOM) InsertHTML(ctx context.Context, fragment string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.root == nil {
		return ErrNotMounted
	}

	parent, before := d.insertionPoint(d.start)
	parseContext := &html.Node{Type: html.ElementNode, DataAtom: parent.DataAtom, Data: parent.Data}
	if parent == d.root || parent.DataAtom == 0 {
		parseContext = &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), parseContext)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}

	inserted := 0
	for _, n := range nodes {
		parent.InsertBefore(n, before)
		inserted += countPositions(n)
	}
	d.start += inserted
	d.end = d.start
	return nil
}

// insertionPoint resolves a text offset to a parent and the child to insert
// before (nil appends). The caret sticks to the preceding content.
func (d *DOM) insertionPoint(offset int) (parent, before *html.Node) {
	pos := positions(d.root)
	if len(pos) == 0 {
		return d.root, nil
	}

	if offset > 0 {
		p := pos[offset-1]
		if p.index < 0 {
			return p.node.Parent, p.node.NextSibling
		}
		if right := splitText(p.node, p.index+1); right != nil {
			return p.node.Parent, right
		}
		return p.node.Parent, p.node.NextSibling
	}

	p := pos[0]
	if p.index < 0 {
		return p.node.Parent, p.node
	}
	return p.node.Parent, splitText(p.node, p.index)
}

// Close releases nothing; DOM holds no external resources.
func (d *DOM) Close() error {
	return nil
}
