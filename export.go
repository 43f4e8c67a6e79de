package doceditor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/salhakar/doceditor/internal/assets"
	"github.com/salhakar/doceditor/internal/pipeline"
)

// ExportArtifact is a finished PDF download.
type ExportArtifact struct {
	Filename string // e.g. "Lease Agreement_edited.pdf"
	PDF      []byte
	Pages    int
	Raster   RasterInfo
}

// RasterInfo describes the capture the PDF was assembled from.
type RasterInfo struct {
	WidthPX  int
	HeightPX int
	Scale    float64
}

// MarkdownArtifact is a finished Markdown download.
type MarkdownArtifact struct {
	Filename string
	Markdown string
}

// Exporter rasterizes documents and paginates them into PDFs.
// An Exporter holds one browser; use an ExporterPool for parallel exports.
type Exporter struct {
	cfg        exportConfig
	css        string
	container  pipeline.ContainerRenderer
	rasterizer Rasterizer
	logger     *slog.Logger
}

// NewExporter creates an Exporter. Page settings and slice mode are validated
// here; the browser starts on the first export.
func NewExporter(opts ...ExportOption) (*Exporter, error) {
	x := &Exporter{
		cfg: exportConfig{
			page:       DefaultPageSettings(),
			mode:       SliceOffset,
			checkboxPX: DefaultCheckboxPX,
			assets:     defaultAssetLoader(),
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(x)
	}

	if err := x.cfg.page.Validate(); err != nil {
		return nil, err
	}
	if _, err := ParseSliceMode(string(x.cfg.mode)); err != nil {
		return nil, err
	}

	css, err := x.cfg.assets.LoadStyle(ExportStyle)
	if err != nil {
		return nil, err
	}
	x.css = css

	tmpl, err := x.cfg.assets.LoadTemplate(assets.ExportContainerTemplate)
	if err != nil {
		return nil, err
	}
	container, err := pipeline.NewContainerTemplate(tmpl)
	if err != nil {
		return nil, err
	}
	x.container = container

	if x.rasterizer == nil {
		x.rasterizer = newRodRasterizer(x.cfg.timeout)
	}
	return x, nil
}

// Export renders doc into a paginated PDF. The document is not modified.
// Failures are reported as ErrExport wrapping the stage error; a panic in
// any stage is recovered and reported the same way.
func (x *Exporter) Export(ctx context.Context, doc *Document) (artifact *ExportArtifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			artifact = nil
			err = fmt.Errorf("%w: panic: %v", ErrExport, r)
		}
	}()

	if doc == nil {
		return nil, fmt.Errorf("%w: no document", ErrExport)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if x.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.cfg.timeout)
		defer cancel()
	}

	start := time.Now()
	page := x.cfg.page

	content, err := pipeline.ConfineResources(doc.HTML, x.cfg.allowLocal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}

	containerHTML, err := x.container.RenderContainer(ctx, pipeline.ContainerData{
		Title:      doc.Title,
		CSS:        x.css,
		Content:    content,
		WidthMM:    page.WidthMM,
		PaddingMM:  page.PaddingMM,
		CheckboxPX: x.cfg.checkboxPX,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}

	raster, err := x.rasterizer.Rasterize(ctx, containerHTML, RasterOptions{
		Selector: ExportRootSelector,
		WidthMM:  page.WidthMM,
		Scale:    page.Scale,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}

	pdf, pages, err := assemblePDF(raster, pageLayout{Title: doc.Title, Page: page, Mode: x.cfg.mode})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}

	parsed, err := validatePDF(pdf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}
	if parsed != pages {
		return nil, fmt.Errorf("%w: %w: assembled %d pages, parsed %d", ErrExport, ErrPDFValidation, pages, parsed)
	}

	x.logger.Debug("document exported",
		"title", doc.Title,
		"version", doc.Version,
		"pages", pages,
		"raster_width", raster.WidthPX,
		"raster_height", raster.HeightPX,
		"mode", string(x.cfg.mode),
		"duration", time.Since(start),
	)

	return &ExportArtifact{
		Filename: doc.Filename("pdf"),
		PDF:      pdf,
		Pages:    pages,
		Raster: RasterInfo{
			WidthPX:  raster.WidthPX,
			HeightPX: raster.HeightPX,
			Scale:    raster.Scale,
		},
	}, nil
}

// Close releases the browser.
func (x *Exporter) Close() error {
	if x.rasterizer != nil {
		return x.rasterizer.Close()
	}
	return nil
}

// ExportMarkdown converts the document to Markdown. It needs no browser.
func ExportMarkdown(ctx context.Context, doc *Document) (*MarkdownArtifact, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no document", ErrExport)
	}
	md, err := pipeline.ToMarkdown(ctx, doc.HTML)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}
	return &MarkdownArtifact{Filename: doc.Filename("md"), Markdown: md}, nil
}
