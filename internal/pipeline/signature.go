package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SignaturePlaceholderID is the stable identifier of the signature anchor.
const SignaturePlaceholderID = "signature-placeholder"

// DefaultSignatureWidth caps the displayed signature width, in CSS pixels.
const DefaultSignatureWidth = 200

// SignatureMounter synthesizes the signature anchor and mounts signature
// images into it.
type SignatureMounter struct {
	placeholder string
	maxWidth    int
}

// NewSignatureMounter creates a SignatureMounter from the placeholder
// template. The template must contain an element with SignaturePlaceholderID.
// A non-positive maxWidth selects DefaultSignatureWidth.
func NewSignatureMounter(placeholderHTML string, maxWidth int) (*SignatureMounter, error) {
	if strings.TrimSpace(placeholderHTML) == "" {
		return nil, ErrEmptyPlaceholder
	}
	root, err := parseFragment(placeholderHTML)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	if len(findAllByID(root, SignaturePlaceholderID)) != 1 {
		return nil, ErrPlaceholderMiss
	}
	if maxWidth <= 0 {
		maxWidth = DefaultSignatureWidth
	}
	return &SignatureMounter{placeholder: placeholderHTML, maxWidth: maxWidth}, nil
}

// EnsurePlaceholder returns content with exactly one signature anchor.
func (m *SignatureMounter) EnsurePlaceholder(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	doc, isFragment, err := parseHTML(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSignatureMount, err)
	}
	if err := m.ensure(doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSignatureMount, err)
	}
	return renderHTML(doc, isFragment)
}

// Mount clears the signature anchor and mounts an image whose source is
// imageSrc (usually a data URI). A missing anchor is synthesized first.
func (m *SignatureMounter) Mount(ctx context.Context, content, imageSrc string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if imageSrc == "" {
		return "", fmt.Errorf("%w: empty image source", ErrSignatureMount)
	}

	doc, isFragment, err := parseHTML(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSignatureMount, err)
	}
	if err := m.ensure(doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSignatureMount, err)
	}

	anchor := findAllByID(doc, SignaturePlaceholderID)[0]
	removeChildren(anchor)
	anchor.AppendChild(&html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Img,
		Data:     "img",
		Attr: []html.Attribute{
			{Key: "src", Val: imageSrc},
			{Key: "alt", Val: "Signature"},
			{Key: "style", Val: "max-width:" + strconv.Itoa(m.maxWidth) + "px;height:auto"},
		},
	})

	out, err := renderHTML(doc, isFragment)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSignatureMount, err)
	}
	return out, nil
}

// ensure appends the placeholder when root has no anchor and strips the id
// from every anchor after the first.
func (m *SignatureMounter) ensure(root *html.Node) error {
	anchors := findAllByID(root, SignaturePlaceholderID)
	if len(anchors) > 0 {
		for _, extra := range anchors[1:] {
			removeAttr(extra, "id")
		}
		return nil
	}

	tmpl, err := parseFragment(m.placeholder)
	if err != nil {
		return err
	}
	parent := root
	if body := findBody(root); body != nil {
		parent = body
	}
	for c := tmpl.FirstChild; c != nil; {
		next := c.NextSibling
		tmpl.RemoveChild(c)
		parent.AppendChild(c)
		c = next
	}
	return nil
}

// CountAnchors returns how many elements carry the signature anchor id.
func CountAnchors(content string) (int, error) {
	doc, _, err := parseHTML(content)
	if err != nil {
		return 0, err
	}
	return len(findAllByID(doc, SignaturePlaceholderID)), nil
}

// findBody returns the <body> element of a full document, or nil.
func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
