package pipeline

import (
	"context"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ContainerData holds the values injected into the export container template.
type ContainerData struct {
	Title      string
	CSS        string
	Content    string
	WidthMM    float64
	PaddingMM  float64
	CheckboxPX int // 0 leaves checkbox sizing to the stylesheet
}

// ContainerRenderer builds the off-document page that gets rasterized.
type ContainerRenderer interface {
	RenderContainer(ctx context.Context, data ContainerData) (string, error)
}

// containerView is what the template sees. CSS and Content are trusted
// values produced by this package.
type containerView struct {
	Title     string
	CSS       template.CSS
	Content   template.HTML
	WidthMM   string
	PaddingMM string
}

// ContainerTemplate renders the export container from an html/template.
type ContainerTemplate struct {
	tmpl *template.Template
}

// NewContainerTemplate parses the export container template.
func NewContainerTemplate(content string) (*ContainerTemplate, error) {
	tmpl, err := template.New("export-container").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	return &ContainerTemplate{tmpl: tmpl}, nil
}

// RenderContainer returns a standalone HTML document wrapping the content in
// the #export-root container.
func (c *ContainerTemplate) RenderContainer(ctx context.Context, data ContainerData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	content := data.Content
	if data.CheckboxPX > 0 {
		sized, err := forceCheckboxSize(content, data.CheckboxPX)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrContainerRender, err)
		}
		content = sized
	}

	view := containerView{
		Title:     data.Title,
		CSS:       template.CSS(sanitizeCSS(data.CSS)),
		Content:   template.HTML(content),
		WidthMM:   formatMM(data.WidthMM),
		PaddingMM: formatMM(data.PaddingMM),
	}

	var buf strings.Builder
	if err := c.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrContainerRender, err)
	}
	return buf.String(), nil
}

// forceCheckboxSize pins every checkbox to a px-by-px square.
func forceCheckboxSize(content string, px int) (string, error) {
	doc, isFragment, err := parseHTML(content)
	if err != nil {
		return "", err
	}

	size := strconv.Itoa(px) + "px"
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Input &&
			strings.EqualFold(attrValue(n, "type"), "checkbox") {
			style := FilterStyle(attrValue(n, "style"))
			style = strings.Trim(style+";width:"+size+";height:"+size, ";")
			setAttr(n, "style", style)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return renderHTML(doc, isFragment)
}

// sanitizeCSS prevents breaking out of a <style> element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Compile-time interface check.
var _ ContainerRenderer = (*ContainerTemplate)(nil)
