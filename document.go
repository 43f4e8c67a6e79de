package doceditor

import (
	"strings"

	"github.com/salhakar/doceditor/internal/fileutil"
)

// Document is one immutable version of an edited document.
// Operations never modify a Document; they return the next version.
type Document struct {
	Version int    // 1 for the loaded document, +1 per change
	Title   string // human-readable title from the caller
	Source  string // path or URL the document was loaded from
	HTML    string // sanitized, editable HTML fragment
}

// next returns the following version carrying html.
func (d *Document) next(html string) *Document {
	return &Document{
		Version: d.Version + 1,
		Title:   d.Title,
		Source:  d.Source,
		HTML:    html,
	}
}

// editedSuffix marks exported files as the edited version of a document.
const editedSuffix = "_edited"

// Filename returns the export file name for the given extension,
// e.g. "Lease Agreement_edited.pdf".
func (d *Document) Filename(ext string) string {
	base := fileutil.SafeFilename(d.Title, "document")
	return base + editedSuffix + "." + strings.TrimPrefix(ext, ".")
}
