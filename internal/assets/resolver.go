package assets

import "errors"

// AssetResolver looks an asset up in an ordered list of loaders: the
// override directory when configured, then the embedded defaults. Only a
// miss moves on to the next loader; validation and I/O errors stop the search.
type AssetResolver struct {
	layers []AssetLoader
	custom bool
}

// NewAssetResolver creates an AssetResolver. An empty customBasePath uses
// only the embedded assets.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.layers = append(r.layers, fsLoader)
		r.custom = true
	}
	r.layers = append(r.layers, NewEmbeddedLoader())
	return r, nil
}

// LoadStyle returns the first style named name across the layers.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

// LoadTemplate returns the first template named name across the layers.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadTemplate(name) })
}

func (r *AssetResolver) first(load func(AssetLoader) (string, error)) (string, error) {
	var err error
	for _, l := range r.layers {
		var content string
		content, err = load(l)
		if err == nil {
			return content, nil
		}
		if !errors.Is(err, ErrStyleNotFound) && !errors.Is(err, ErrTemplateNotFound) {
			return "", err
		}
	}
	return "", err
}

// HasCustomLoader reports whether an override directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom
}

var _ AssetLoader = (*AssetResolver)(nil)
