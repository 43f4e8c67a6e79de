package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Names of the built-in assets.
const (
	// ExportStyleName styles the off-document container that gets rasterized.
	ExportStyleName = "export"

	// EditorStyleName styles the browser editing surface.
	EditorStyleName = "editor"

	// ExportContainerTemplate wraps edited content for rasterization.
	ExportContainerTemplate = "export-container"

	// SignaturePlaceholderTemplate is appended when a document has no
	// signature anchor.
	SignaturePlaceholderTemplate = "signature-placeholder"

	// LoadErrorTemplate replaces the editor when a document fails to load.
	LoadErrorTemplate = "load-error"

	// SampleTemplate is the bundled demo document served when the default
	// document path is not present on disk.
	SampleTemplate = "sample"
)

// Sentinel errors for asset operations.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidAssetName rejects names that could address another file.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the override directory is unusable.
	ErrInvalidBasePath = errors.New("invalid base path")

	ErrAssetRead     = errors.New("failed to read asset")
	ErrPathTraversal = errors.New("path traversal detected")
)

// AssetLoader defines the contract for loading CSS styles and HTML templates.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)
}

// kind is one asset family: where it lives and how a miss is reported.
type kind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind    = kind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	templateKind = kind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
)

// path returns the slash-separated location of name inside an asset tree.
func (k kind) path(name string) string {
	return k.dir + "/" + name + k.ext
}

// read loads name of kind k from fsys.
func (k kind) read(fsys fs.FS, name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	content, err := fs.ReadFile(fsys, k.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", k.notFound, name)
		}
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(content), nil
}

// validateName accepts bare names like "export-container". Separators and
// dots are refused so a name can never leave its directory or change the
// extension.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
