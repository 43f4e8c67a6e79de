package doceditor

import (
	"log/slog"
	"net/http"
	"time"
)

// defaultHistoryLimit bounds the number of versions an Editor keeps.
const defaultHistoryLimit = 200

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

type loaderConfig struct {
	client      *http.Client
	baseURL     string
	maxBytes    int64
	defaultPath string
	defaultName string
	assets      AssetLoader
}

// WithHTTPClient sets the client used for the document GET.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.cfg.client = c
		}
	}
}

// WithBaseURL resolves relative document paths against base and fetches them.
func WithBaseURL(base string) LoaderOption {
	return func(l *Loader) {
		l.cfg.baseURL = base
	}
}

// WithMaxDocumentBytes caps the size of a source document.
// Panics if n <= 0 (programmer error, similar to time.NewTicker).
func WithMaxDocumentBytes(n int64) LoaderOption {
	if n <= 0 {
		panic("doceditor: WithMaxDocumentBytes size must be positive")
	}
	return func(l *Loader) {
		l.cfg.maxBytes = n
	}
}

// WithDefaultDocument sets the path and title used when Load gets empty ones.
func WithDefaultDocument(path, title string) LoaderOption {
	return func(l *Loader) {
		if path != "" {
			l.cfg.defaultPath = path
		}
		if title != "" {
			l.cfg.defaultName = title
		}
	}
}

// WithLoaderAssets sets the asset loader for templates.
func WithLoaderAssets(a AssetLoader) LoaderOption {
	return func(l *Loader) {
		if a != nil {
			l.cfg.assets = a
		}
	}
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithExecutor sets the host binding. The default is the in-memory DOM.
func WithExecutor(exec RichTextCommandExecutor) EditorOption {
	return func(e *Editor) {
		e.exec = exec
	}
}

// WithEditorAssets sets the asset loader for the signature placeholder.
func WithEditorAssets(a AssetLoader) EditorOption {
	return func(e *Editor) {
		if a != nil {
			e.assets = a
		}
	}
}

// WithHistoryLimit bounds the number of versions kept for Undo.
// Panics if n < 1 (programmer error, similar to time.NewTicker).
func WithHistoryLimit(n int) EditorOption {
	if n < 1 {
		panic("doceditor: WithHistoryLimit must be at least 1")
	}
	return func(e *Editor) {
		e.historyLimit = n
	}
}

// WithEditorLogger sets the logger.
func WithEditorLogger(logger *slog.Logger) EditorOption {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// ExportOption configures an Exporter.
type ExportOption func(*Exporter)

type exportConfig struct {
	page       *PageSettings
	mode       SliceMode
	timeout    time.Duration
	checkboxPX int
	assets     AssetLoader
	allowLocal bool
}

// WithPageSettings sets the page geometry and raster scale. nil keeps A4.
func WithPageSettings(p *PageSettings) ExportOption {
	return func(x *Exporter) {
		if p != nil {
			copied := *p
			x.cfg.page = &copied
		}
	}
}

// WithSliceMode selects how the raster is split across pages.
func WithSliceMode(m SliceMode) ExportOption {
	return func(x *Exporter) {
		x.cfg.mode = m
	}
}

// WithExportTimeout bounds each export.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithExportTimeout(d time.Duration) ExportOption {
	if d <= 0 {
		panic("doceditor: WithExportTimeout duration must be positive")
	}
	return func(x *Exporter) {
		x.cfg.timeout = d
	}
}

// WithCheckboxSize sets the square size checkboxes are forced to on export.
// 0 leaves sizing to the export stylesheet.
func WithCheckboxSize(px int) ExportOption {
	return func(x *Exporter) {
		if px >= 0 {
			x.cfg.checkboxPX = px
		}
	}
}

// WithLocalFiles lets exported content reference local files: file: URLs
// and paths relative to the export container. Off by default, which keeps
// the export page from reading anything on the host.
// Frames, objects, embeds and scripts are dropped either way.
func WithLocalFiles(allow bool) ExportOption {
	return func(x *Exporter) {
		x.cfg.allowLocal = allow
	}
}

// WithExportAssets sets the asset loader for the export style and container.
func WithExportAssets(a AssetLoader) ExportOption {
	return func(x *Exporter) {
		if a != nil {
			x.cfg.assets = a
		}
	}
}

// WithExportLogger sets the logger.
func WithExportLogger(logger *slog.Logger) ExportOption {
	return func(x *Exporter) {
		if logger != nil {
			x.logger = logger
		}
	}
}

// WithRasterizer replaces the headless Chrome rasterizer.
func WithRasterizer(r Rasterizer) ExportOption {
	return func(x *Exporter) {
		x.rasterizer = r
	}
}
