package doceditor

import (
	"errors"

	"github.com/salhakar/doceditor/internal/assets"
)

// Built-in asset names.
const (
	// ExportStyle styles the export container.
	ExportStyle = assets.ExportStyleName

	// EditorStyle styles the browser editing surface.
	EditorStyle = assets.EditorStyleName
)

// AssetLoader supplies the CSS styles and HTML templates the editor and
// exporter render with. Names carry no extension.
//
// Misses are reported as ErrStyleNotFound or ErrTemplateNotFound; bad names
// and unusable directories as ErrInvalidAssetPath.
type AssetLoader interface {
	LoadStyle(name string) (string, error)
	LoadTemplate(name string) (string, error)
}

// NewAssetLoader returns a loader that prefers files under basePath
// (styles/{name}.css, templates/{name}.html) and falls back to the built-in
// assets. An empty basePath means built-ins only.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, publicAssetError(err)
	}
	return publicAssets{inner: resolver}, nil
}

// defaultAssetLoader serves the built-in assets.
func defaultAssetLoader() AssetLoader {
	return publicAssets{inner: assets.NewEmbeddedLoader()}
}

// publicAssets translates internal asset errors into this package's sentinels.
type publicAssets struct {
	inner assets.AssetLoader
}

func (p publicAssets) LoadStyle(name string) (string, error) {
	css, err := p.inner.LoadStyle(name)
	return css, publicAssetError(err)
}

func (p publicAssets) LoadTemplate(name string) (string, error) {
	tmpl, err := p.inner.LoadTemplate(name)
	return tmpl, publicAssetError(err)
}

// assetErrorMap pairs internal sentinels with the public ones callers match.
var assetErrorMap = []struct{ internal, public error }{
	{assets.ErrStyleNotFound, ErrStyleNotFound},
	{assets.ErrTemplateNotFound, ErrTemplateNotFound},
	{assets.ErrInvalidBasePath, ErrInvalidAssetPath},
	{assets.ErrPathTraversal, ErrInvalidAssetPath},
	{assets.ErrInvalidAssetName, ErrInvalidAssetPath},
}

func publicAssetError(err error) error {
	if err == nil {
		return nil
	}
	for _, m := range assetErrorMap {
		if errors.Is(err, m.internal) {
			return &assetError{public: m.public, cause: err}
		}
	}
	return err
}

// assetError keeps the detailed internal message and matches both the
// public sentinel and the original cause.
type assetError struct {
	public error
	cause  error
}

func (e *assetError) Error() string   { return e.cause.Error() }
func (e *assetError) Unwrap() []error { return []error{e.public, e.cause} }
