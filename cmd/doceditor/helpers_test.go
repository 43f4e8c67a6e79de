package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/salhakar/doceditor"
)

// stubRasterizer returns a fixed white raster instead of driving Chrome.
type stubRasterizer struct {
	mu    sync.Mutex
	png   []byte
	html  string
	calls int
}

func (s *stubRasterizer) Rasterize(ctx context.Context, htmlContent string, opts doceditor.RasterOptions) (*doceditor.Raster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.html = htmlContent
	return &doceditor.Raster{PNG: s.png, WidthPX: 420, HeightPX: 1300, Scale: opts.Scale}, nil
}

func (s *stubRasterizer) Close() error { return nil }

// LastHTML returns the container HTML of the last call.
func (s *stubRasterizer) LastHTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.html
}

// pngBytes returns a w x h white PNG.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

// testEnv returns an environment whose exports use a stub rasterizer.
func testEnv(t *testing.T) (*Environment, *bytes.Buffer, *bytes.Buffer, *stubRasterizer) {
	t.Helper()

	stub := &stubRasterizer{png: pngBytes(t, 420, 1300)}
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Stdout:        &stdout,
		Stderr:        &stderr,
		ExportOptions: []doceditor.ExportOption{doceditor.WithRasterizer(stub)},
	}
	return env, &stdout, &stderr, stub
}

// writeFile writes content under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// clearDocEditorEnv unsets every DOCEDITOR_* variable for the test.
func clearDocEditorEnv(t *testing.T) {
	t.Helper()

	for name := range knownEnvVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}
