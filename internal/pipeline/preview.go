package pipeline

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var checkboxType = regexp.MustCompile(`^(?i)checkbox$`)

// NewPreviewPolicy returns the policy applied to read-only previews.
// It keeps allow-listed inline styles, data URI images, checkboxes and
// element ids, and removes scripts and event handlers.
func NewPreviewPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataURIImages()
	p.AllowStyles(previewStyleProperties()...).Globally()
	p.AllowStyles("display").MatchingEnum("block", "inline", "inline-block").Globally()
	p.AllowElements("input", "font", "u")
	p.AllowAttrs("type").Matching(checkboxType).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	p.AllowAttrs("size").Matching(regexp.MustCompile(`^[1-7]$`)).OnElements("font")
	return p
}

// previewStyleProperties expands the sanitation allow-list with the
// longhands bluemonday has to be told about by name.
func previewStyleProperties() []string {
	props := append([]string{}, AllowedStyleProperties...)
	for _, side := range []string{"top", "right", "bottom", "left"} {
		props = append(props, "margin-"+side, "padding-"+side, "border-"+side)
	}
	props = append(props,
		"border-color", "border-style", "border-width", "border-collapse",
		"text-decoration-line", "min-width", "max-width", "min-height", "max-height",
	)
	return props
}

// Preview renders content for read-only display.
type Preview struct {
	policy *bluemonday.Policy
}

// NewPreview creates a Preview with NewPreviewPolicy.
func NewPreview() *Preview {
	return &Preview{policy: NewPreviewPolicy()}
}

// Render returns the preview-safe rendering of content.
func (p *Preview) Render(content string) string {
	return p.policy.Sanitize(content)
}
