package pipeline

import (
	"fmt"
	"html/template"
	"strings"
)

// LoadErrorMessage is shown in place of a document that failed to load.
const LoadErrorMessage = "This document could not be loaded."

// FallbackRenderer renders the load-error block shown instead of the editor.
type FallbackRenderer struct {
	tmpl *template.Template
}

// NewFallbackRenderer parses the load-error template.
func NewFallbackRenderer(content string) (*FallbackRenderer, error) {
	tmpl, err := template.New("load-error").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	return &FallbackRenderer{tmpl: tmpl}, nil
}

// Render returns the fallback block. detail is escaped and may be empty.
func (f *FallbackRenderer) Render(detail string) (string, error) {
	var buf strings.Builder
	data := struct{ Detail string }{Detail: detail}
	if err := f.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFallbackRender, err)
	}
	return buf.String(), nil
}
