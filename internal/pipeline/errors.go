package pipeline

import "errors"

// Sentinel errors for pipeline stages.
var (
	ErrSanitize         = errors.New("sanitization failed")
	ErrHTMLConversion   = errors.New("HTML conversion failed")
	ErrMarkdownExport   = errors.New("markdown export failed")
	ErrSignatureMount   = errors.New("signature mount failed")
	ErrInvalidTemplate  = errors.New("invalid template")
	ErrContainerRender  = errors.New("export container rendering failed")
	ErrPlaceholderMiss  = errors.New("placeholder template has no signature anchor")
	ErrPathRewrite      = errors.New("path rewrite failed")
	ErrFallbackRender   = errors.New("fallback rendering failed")
	ErrEmptyPlaceholder = errors.New("empty placeholder template")
)
