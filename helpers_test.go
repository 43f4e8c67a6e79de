package doceditor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/salhakar/doceditor/internal/assets"
)

// pngBytes returns a w x h PNG filled with fill.
func pngBytes(t *testing.T, w, h int, fill color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

// jpegBytes returns a small JPEG.
func jpegBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("jpeg.Encode() error = %v", err)
	}
	return buf.Bytes()
}

// placeholderHTML returns the embedded signature placeholder.
func placeholderHTML(t *testing.T) string {
	t.Helper()

	content, err := assets.NewEmbeddedLoader().LoadTemplate(assets.SignaturePlaceholderTemplate)
	if err != nil {
		t.Fatalf("LoadTemplate() error = %v", err)
	}
	return content
}

// newTestEditor mounts html on the in-memory surface.
func newTestEditor(t *testing.T, html string, opts ...EditorOption) *Editor {
	t.Helper()

	doc := &Document{Version: 1, Title: "Test", Source: "test.html", HTML: html}
	ed, err := NewEditor(context.Background(), doc, opts...)
	if err != nil {
		t.Fatalf("NewEditor() error = %v", err)
	}
	t.Cleanup(func() { _ = ed.Close() })
	return ed
}

// fakeRasterizer returns a fixed raster and records what it was asked.
type fakeRasterizer struct {
	raster *Raster
	err    error
	called bool
	html   string
	opts   RasterOptions
	closed bool
	panic  bool
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, htmlContent string, opts RasterOptions) (*Raster, error) {
	f.called = true
	f.html = htmlContent
	f.opts = opts
	if f.panic {
		panic("rasterizer exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.raster, nil
}

func (f *fakeRasterizer) Close() error {
	f.closed = true
	return nil
}

// rasterOf wraps a PNG of the given device size.
func rasterOf(t *testing.T, w, h int) *Raster {
	t.Helper()

	r, err := newRaster(pngBytes(t, w, h, color.White), DefaultScale)
	if err != nil {
		t.Fatalf("newRaster() error = %v", err)
	}
	return r
}
