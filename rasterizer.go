package doceditor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png" // DecodeConfig for screenshots
	"math"
	"sync"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/salhakar/doceditor/internal/fileutil"
)

// cssPixelsPerMM converts layout millimetres to CSS pixels (96dpi).
const cssPixelsPerMM = 96 / 25.4

// ExportRootSelector identifies the container element that gets rasterized.
const ExportRootSelector = "#export-root"

// Raster is a PNG capture of the export container.
type Raster struct {
	PNG      []byte
	WidthPX  int // device pixels
	HeightPX int // device pixels
	Scale    float64
}

// RasterOptions control a single rasterization.
type RasterOptions struct {
	Selector string  // element to capture
	WidthMM  float64 // viewport width in millimetres
	Scale    float64 // device pixel ratio
}

// Rasterizer captures an HTML page as a PNG image.
type Rasterizer interface {
	Rasterize(ctx context.Context, htmlContent string, opts RasterOptions) (*Raster, error)
	Close() error
}

// Compile-time interface check.
var _ Rasterizer = (*rodRasterizer)(nil)

// rodRasterizer screenshots pages in headless Chrome.
type rodRasterizer struct {
	mu      sync.Mutex
	handle  *browserHandle
	timeout time.Duration
}

// newRodRasterizer creates a rodRasterizer. The browser starts on first use.
func newRodRasterizer(timeout time.Duration) *rodRasterizer {
	return &rodRasterizer{timeout: timeout}
}

func (r *rodRasterizer) ensureBrowser() error {
	if r.handle != nil {
		return nil
	}
	h, err := launchBrowser()
	if err != nil {
		return err
	}
	r.handle = h
	return nil
}

// Rasterize writes htmlContent to a temp file, loads it and captures the
// element matched by opts.Selector at opts.Scale.
func (r *rodRasterizer) Rasterize(ctx context.Context, htmlContent string, opts RasterOptions) (*Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}
	defer cleanup()

	page, err := r.handle.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	p := page.Context(ctx)
	if timeout > 0 {
		p = p.Timeout(timeout)
	}

	widthPX := int(math.Ceil(opts.WidthMM * cssPixelsPerMM))
	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             widthPX,
		Height:            widthPX,
		DeviceScaleFactor: opts.Scale,
	}); err != nil {
		return nil, fmt.Errorf("%w: viewport: %v", ErrRasterize, err)
	}

	if err := p.Navigate(fileutil.PathToFileURL(tmpPath)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	el, err := p.Element(opts.Selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRasterize, opts.Selector, err)
	}
	shape, err := el.Shape()
	if err != nil {
		return nil, fmt.Errorf("%w: measuring %s: %v", ErrRasterize, opts.Selector, err)
	}
	box := shape.Box()
	if box == nil || box.Width <= 0 || box.Height <= 0 {
		return nil, fmt.Errorf("%w: %s has no layout box", ErrRasterize, opts.Selector)
	}

	png, err := p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      box.X,
			Y:      box.Y,
			Width:  box.Width,
			Height: box.Height,
			Scale:  1,
		},
		CaptureBeyondViewport: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot: %v", ErrRasterize, err)
	}

	return newRaster(png, opts.Scale)
}

// newRaster reads the PNG header to fill in the raster dimensions.
func newRaster(png []byte, scale float64) (*Raster, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding capture: %v", ErrRasterize, err)
	}
	if format != "png" {
		return nil, fmt.Errorf("%w: capture is %s, not png", ErrRasterize, format)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("%w: empty capture", ErrRasterize)
	}
	return &Raster{PNG: png, WidthPX: cfg.Width, HeightPX: cfg.Height, Scale: scale}, nil
}

// Close releases browser resources.
func (r *rodRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handle != nil {
		err := r.handle.Close()
		r.handle = nil
		return err
	}
	return nil
}
