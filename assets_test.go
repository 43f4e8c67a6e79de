package doceditor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/salhakar/doceditor/internal/assets"
)

// ---------------------------------------------------------------------------
// TestNewAssetLoader - Embedded and Custom Assets
// ---------------------------------------------------------------------------

func TestNewAssetLoader_EmptyPath(t *testing.T) {
	t.Parallel()

	loader, err := NewAssetLoader("")
	if err != nil {
		t.Fatalf("NewAssetLoader(\"\") error = %v", err)
	}

	for _, name := range []string{ExportStyle, EditorStyle} {
		css, err := loader.LoadStyle(name)
		if err != nil {
			t.Errorf("LoadStyle(%q) error = %v", name, err)
		}
		if css == "" {
			t.Errorf("LoadStyle(%q) returned empty CSS", name)
		}
	}

	tmpl, err := loader.LoadTemplate(assets.ExportContainerTemplate)
	if err != nil {
		t.Fatalf("LoadTemplate() error = %v", err)
	}
	if !strings.Contains(tmpl, "export-root") {
		t.Errorf("export container template missing the export root:\n%s", tmpl)
	}
}

func TestNewAssetLoader_InvalidPath(t *testing.T) {
	t.Parallel()

	_, err := NewAssetLoader(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrInvalidAssetPath) {
		t.Errorf("NewAssetLoader() error = %v, want ErrInvalidAssetPath", err)
	}
}

func TestNewAssetLoader_CustomOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "styles"), 0o755); err != nil {
		t.Fatal(err)
	}
	custom := "#export-root { color: navy; }"
	if err := os.WriteFile(filepath.Join(dir, "styles", "export.css"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	loader, err := NewAssetLoader(dir)
	if err != nil {
		t.Fatalf("NewAssetLoader() error = %v", err)
	}

	got, err := loader.LoadStyle(ExportStyle)
	if err != nil || got != custom {
		t.Errorf("LoadStyle(export) = %q, %v, want the custom style", got, err)
	}

	// Falls back to embedded when the custom directory lacks the asset.
	if css, err := loader.LoadStyle(EditorStyle); err != nil || css == "" {
		t.Errorf("LoadStyle(editor) = %q, %v, want embedded fallback", css, err)
	}
}

func TestAssetLoader_Errors(t *testing.T) {
	t.Parallel()

	loader := defaultAssetLoader()

	tests := []struct {
		name    string
		load    func() (string, error)
		wantErr error
	}{
		{
			name:    "unknown style",
			load:    func() (string, error) { return loader.LoadStyle("nonexistent") },
			wantErr: ErrStyleNotFound,
		},
		{
			name:    "unknown template",
			load:    func() (string, error) { return loader.LoadTemplate("nonexistent") },
			wantErr: ErrTemplateNotFound,
		},
		{
			name:    "traversal in name",
			load:    func() (string, error) { return loader.LoadStyle("../secret") },
			wantErr: ErrInvalidAssetPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.load()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if err != nil && err.Error() == tt.wantErr.Error() {
				t.Errorf("error message lost the detail: %q", err.Error())
			}
		})
	}
}
