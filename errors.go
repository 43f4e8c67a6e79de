package doceditor

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for library operations.
var (
	ErrLoad  = errors.New("document could not be loaded")
	ErrFetch = errors.New("document fetch failed")

	ErrUnknownCommand  = errors.New("unknown formatting command")
	ErrInvalidFileType = errors.New("invalid file type: only PNG and JPEG images are accepted")
	ErrEmptyFile       = errors.New("file is empty")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrSurface         = errors.New("editing surface operation failed")

	ErrExport         = errors.New("export failed")
	ErrRasterize      = errors.New("rasterization failed")
	ErrPDFAssembly    = errors.New("PDF assembly failed")
	ErrPDFValidation  = errors.New("PDF validation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Settings validation errors.
	ErrInvalidPageSettings = errors.New("invalid page settings")
	ErrInvalidSliceMode    = errors.New("invalid slice mode")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)

// FetchError reports a non-2xx response for a document fetch.
// It matches ErrFetch with errors.Is.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%v: GET %s: %d %s", ErrFetch, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap returns ErrFetch.
func (e *FetchError) Unwrap() error {
	return ErrFetch
}
