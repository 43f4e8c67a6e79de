package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader serves assets from an override directory laid out like
// the embedded tree (styles/, templates/).
type FilesystemLoader struct {
	basePath string // absolute, symlinks resolved
}

// NewFilesystemLoader checks that basePath is a readable directory.
// Returns ErrInvalidBasePath otherwise.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}

	info, err := os.Stat(abs)
	switch {
	case os.IsNotExist(err):
		return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, abs)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, abs)
	}
	if _, err := os.ReadDir(abs); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	return &FilesystemLoader{basePath: abs}, nil
}

// LoadStyle returns {basePath}/styles/{name}.css.
func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	return f.load(styleKind, name)
}

// LoadTemplate returns {basePath}/templates/{name}.html.
func (f *FilesystemLoader) LoadTemplate(name string) (string, error) {
	return f.load(templateKind, name)
}

func (f *FilesystemLoader) load(k kind, name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if err := f.contained(filepath.Join(f.basePath, filepath.FromSlash(k.path(name)))); err != nil {
		return "", err
	}
	return k.read(os.DirFS(f.basePath), name)
}

// contained rejects files whose real location is outside basePath, which
// happens when a symlink inside the directory points elsewhere.
func (f *FilesystemLoader) contained(file string) error {
	real, err := filepath.EvalSymlinks(file)
	if err != nil {
		// Missing files are reported by the read as not found.
		return nil
	}
	if !strings.HasPrefix(real, f.basePath+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s escapes the asset directory", ErrPathTraversal, filepath.Base(file))
	}
	return nil
}

var _ AssetLoader = (*FilesystemLoader)(nil)
