package pipeline

import (
	"bytes"
	"context"
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// HTMLConverter turns a Markdown source into an HTML fragment.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter renders GitHub-flavored Markdown. Raw HTML in the
// source is omitted, so a Markdown document cannot smuggle in scripts.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter. Task list items become
// checkboxes and headings get ids.
func NewGoldmarkConverter() *GoldmarkConverter {
	return &GoldmarkConverter{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)}
}

// ToHTML converts content. Documents are bounded by the loader's size
// limit, so conversion runs inline and ctx is only checked up front.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out bytes.Buffer
	out.Grow(len(content) * 2)
	if err := c.md.Convert([]byte(content), &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return out.String(), nil
}

// ToMarkdown converts edited HTML back to Markdown for the Markdown export.
func ToMarkdown(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	md, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMarkdownExport, err)
	}
	return md, nil
}

var _ HTMLConverter = (*GoldmarkConverter)(nil)
