package assets

import "embed"

//go:embed styles templates
var builtin embed.FS

// EmbeddedLoader serves the assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle returns styles/{name}.css from the binary.
func (EmbeddedLoader) LoadStyle(name string) (string, error) {
	return styleKind.read(builtin, name)
}

// LoadTemplate returns templates/{name}.html from the binary.
func (EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return templateKind.read(builtin, name)
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
