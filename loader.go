package doceditor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/salhakar/doceditor/internal/assets"
	"github.com/salhakar/doceditor/internal/fileutil"
	"github.com/salhakar/doceditor/internal/pipeline"
)

// Defaults for Load when path or title are empty.
const (
	DefaultDocumentPath  = "/templates/sample.html"
	DefaultDocumentTitle = "Sample Legal Template"

	// DefaultMaxDocumentBytes caps the size of a fetched or read source.
	DefaultMaxDocumentBytes = 10 << 20
)

// LoadErrorMessage is the message shown instead of a document that failed
// to load.
const LoadErrorMessage = pipeline.LoadErrorMessage

// Loader fetches source documents and sanitizes them into editable fragments.
type Loader struct {
	cfg       loaderConfig
	markdown  pipeline.HTMLConverter
	sanitizer *pipeline.Sanitizer
	fallback  *pipeline.FallbackRenderer
	logger    *slog.Logger
}

// NewLoader creates a Loader. Templates are loaded and parsed here.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	l := &Loader{
		cfg: loaderConfig{
			client:      http.DefaultClient,
			maxBytes:    DefaultMaxDocumentBytes,
			defaultPath: DefaultDocumentPath,
			defaultName: DefaultDocumentTitle,
			assets:      defaultAssetLoader(),
		},
		markdown: pipeline.NewGoldmarkConverter(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	placeholder, err := l.cfg.assets.LoadTemplate(assets.SignaturePlaceholderTemplate)
	if err != nil {
		return nil, err
	}
	mounter, err := pipeline.NewSignatureMounter(placeholder, DefaultSignatureWidthPX)
	if err != nil {
		return nil, err
	}
	l.sanitizer = pipeline.NewSanitizer(mounter)

	fallback, err := l.cfg.assets.LoadTemplate(assets.LoadErrorTemplate)
	if err != nil {
		return nil, err
	}
	l.fallback, err = pipeline.NewFallbackRenderer(fallback)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// source is a fetched document before sanitation.
type source struct {
	location    string // path or URL as resolved
	base        string // where relative references resolve from; empty to skip
	contentType string
	body        string
}

// Load fetches the document at path and returns its first version.
// path may be an http(s) URL, a file:// URL or a local path; relative paths
// resolve against the configured base URL when one is set. Empty path and
// title fall back to the configured defaults.
//
// Non-2xx responses return a *FetchError. All failures wrap ErrLoad.
func (l *Loader) Load(ctx context.Context, path, title string) (*Document, error) {
	if path == "" {
		path = l.cfg.defaultPath
	}
	if title == "" {
		title = l.cfg.defaultName
	}

	start := time.Now()
	src, err := l.read(ctx, path)
	if err != nil {
		l.logger.Warn("document load failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	doc, err := l.build(ctx, src, title)
	if err != nil {
		l.logger.Warn("document sanitation failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	l.logger.Info("document loaded",
		"source", src.location,
		"title", title,
		"bytes", len(src.body),
		"duration", time.Since(start),
	)
	return doc, nil
}

// Parse sanitizes content that the caller already holds, such as an upload.
// name is used for Markdown detection and as the document source.
func (l *Loader) Parse(ctx context.Context, content []byte, name, title string) (*Document, error) {
	if title == "" {
		title = l.cfg.defaultName
	}
	if int64(len(content)) > l.cfg.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrLoad, name, l.cfg.maxBytes)
	}
	doc, err := l.build(ctx, source{location: name, body: string(content)}, title)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return doc, nil
}

// Fallback renders the block shown in place of a document that failed to
// load. The error detail is escaped; nil renders the bare message.
func (l *Loader) Fallback(err error) string {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	out, renderErr := l.fallback.Render(detail)
	if renderErr != nil {
		l.logger.Error("fallback render failed", "error", renderErr)
		return "<p>" + LoadErrorMessage + "</p>"
	}
	return out
}

// build converts, sanitizes and rewrites a source into version 1.
func (l *Loader) build(ctx context.Context, src source, title string) (*Document, error) {
	body := src.body
	if isMarkdown(src.location, src.contentType) {
		converted, err := l.markdown.ToHTML(ctx, body)
		if err != nil {
			return nil, err
		}
		body = converted
	}

	sanitized, err := l.sanitizer.Sanitize(ctx, body)
	if err != nil {
		return nil, err
	}

	rewritten, err := pipeline.RewriteRelativePaths(sanitized, src.base)
	if err != nil {
		return nil, err
	}

	return &Document{
		Version: 1,
		Title:   title,
		Source:  src.location,
		HTML:    rewritten,
	}, nil
}

// read resolves path to a location and returns its content.
func (l *Loader) read(ctx context.Context, path string) (source, error) {
	if err := ctx.Err(); err != nil {
		return source{}, err
	}

	switch {
	case fileutil.IsURL(path):
		return l.fetch(ctx, path)
	case strings.HasPrefix(strings.ToLower(path), "file://"):
		local, ok := fileutil.FileURLPath(path)
		if !ok {
			return source{}, fmt.Errorf("invalid file URL %q", path)
		}
		return l.readFile(local)
	case l.cfg.baseURL != "":
		resolved, err := resolveAgainst(l.cfg.baseURL, path)
		if err != nil {
			return source{}, err
		}
		return l.fetch(ctx, resolved)
	case path == DefaultDocumentPath && !fileutil.FileExists(path):
		return l.readSample()
	default:
		return l.readFile(path)
	}
}

// fetch performs the single GET for a URL source.
func (l *Loader) fetch(ctx context.Context, rawURL string) (source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return source{}, err
	}
	req.Header.Set("Accept", "text/html, text/markdown;q=0.9, */*;q=0.5")

	resp, err := l.cfg.client.Do(req)
	if err != nil {
		return source{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return source{}, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := l.readLimited(resp.Body, rawURL)
	if err != nil {
		return source{}, err
	}
	return source{
		location:    rawURL,
		base:        rawURL,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}

func (l *Loader) readFile(path string) (source, error) {
	f, err := os.Open(path)
	if err != nil {
		return source{}, err
	}
	defer f.Close()

	body, err := l.readLimited(f, path)
	if err != nil {
		return source{}, err
	}
	return source{location: path, base: filepath.Dir(path), body: body}, nil
}

func (l *Loader) readSample() (source, error) {
	body, err := l.cfg.assets.LoadTemplate(assets.SampleTemplate)
	if err != nil {
		return source{}, err
	}
	return source{location: DefaultDocumentPath, body: body}, nil
}

// readLimited reads at most maxBytes from r.
func (l *Loader) readLimited(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.cfg.maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > l.cfg.maxBytes {
		return "", fmt.Errorf("%s exceeds %d bytes", name, l.cfg.maxBytes)
	}
	return string(data), nil
}

// resolveAgainst resolves a relative document path against a base URL.
func resolveAgainst(base, path string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %v", base, err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid document path %q: %v", path, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// isMarkdown reports whether a source should go through the Markdown converter.
func isMarkdown(location, contentType string) bool {
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "text/markdown" {
			return true
		}
	}
	loc := location
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Path != "" {
		loc = u.Path
	}
	switch strings.ToLower(filepath.Ext(loc)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// IsFetchError reports whether err carries a *FetchError and returns it.
func IsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
