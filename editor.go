package doceditor

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"sync"

	"github.com/salhakar/doceditor/internal/assets"
	"github.com/salhakar/doceditor/internal/pipeline"
)

// Fragments inserted by the editor.
const (
	checkboxHTML = `<input type="checkbox">`
	imageHTML    = `<img src="%s" alt="%s" style="display:block;max-width:100%%"><br>`
)

// Editor is one editing session over a loaded document.
//
// Every mutating operation returns the resulting *Document. Documents are
// immutable; the editor keeps the version history for Undo and the loaded
// version for Reset. Operations are serialized.
type Editor struct {
	mu           sync.Mutex
	exec         RichTextCommandExecutor
	assets       AssetLoader
	signature    *pipeline.SignatureMounter
	preview      *pipeline.Preview
	logger       *slog.Logger
	historyLimit int

	mode     Mode
	pristine *Document
	history  []*Document // last entry is the current version
	baseline string      // surface content at the last mount or capture
}

// NewEditor mounts doc on the host binding and returns an editor in
// ModeEditing.
func NewEditor(ctx context.Context, doc *Document, opts ...EditorOption) (*Editor, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no document", ErrSurface)
	}

	e := &Editor{
		assets:       defaultAssetLoader(),
		logger:       slog.Default(),
		historyLimit: defaultHistoryLimit,
		mode:         ModeEditing,
		pristine:     doc,
		history:      []*Document{doc},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.exec == nil {
		e.exec = NewDOMExecutor()
	}

	placeholder, err := e.assets.LoadTemplate(assets.SignaturePlaceholderTemplate)
	if err != nil {
		return nil, err
	}
	e.signature, err = pipeline.NewSignatureMounter(placeholder, DefaultSignatureWidthPX)
	if err != nil {
		return nil, err
	}
	e.preview = pipeline.NewPreview()

	if err := e.mount(ctx, doc.HTML); err != nil {
		return nil, err
	}
	if err := e.focus(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Document returns the current version.
func (e *Editor) Document() *Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current()
}

// Pristine returns the version the editor was created with.
func (e *Editor) Pristine() *Document {
	return e.pristine
}

// Mode returns the current surface mode.
func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// ApplyFormat applies a formatting command to the current selection and
// refocuses the surface. It is a no-op while previewing.
func (e *Editor) ApplyFormat(ctx context.Context, cmd Command, value string) (*Document, error) {
	if err := cmd.Validate(value); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeEditing {
		return e.current(), nil
	}
	if err := e.exec.Exec(ctx, string(cmd), value); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSurface, cmd, err)
	}
	if err := e.focus(ctx); err != nil {
		return nil, err
	}
	doc, err := e.capture(ctx)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("format applied", "command", string(cmd), "value", value, "version", doc.Version)
	return doc, nil
}

// Select sets the selection to the text offsets [start, end). It is a no-op
// while previewing.
func (e *Editor) Select(ctx context.Context, start, end int) (*Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeEditing {
		return e.current(), nil
	}
	if err := e.exec.Select(ctx, start, end); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurface, err)
	}
	return e.current(), nil
}

// InsertCheckbox inserts a checkbox at the caret followed by a space. A
// leading space is added unless the caret already follows one. The caret
// ends after the trailing space. It is a no-op while previewing.
func (e *Editor) InsertCheckbox(ctx context.Context) (*Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeEditing {
		return e.current(), nil
	}

	prev, ok, err := e.exec.CharBeforeCaret(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurface, err)
	}
	fragment := checkboxHTML + " "
	if !ok || !isSpace(prev) {
		fragment = " " + fragment
	}

	if err := e.exec.InsertHTML(ctx, fragment); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurface, err)
	}
	if err := e.focus(ctx); err != nil {
		return nil, err
	}
	doc, err := e.capture(ctx)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("checkbox inserted", "version", doc.Version)
	return doc, nil
}

// InsertImage embeds file as a block image followed by a line break and puts
// the caret after the break. Only PNG and JPEG are accepted; a rejected file
// leaves the document unchanged. It is a no-op while previewing.
func (e *Editor) InsertImage(ctx context.Context, file ImageFile) (*Document, error) {
	uri, err := file.DataURI()
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeEditing {
		return e.current(), nil
	}

	fragment := fmt.Sprintf(imageHTML, uri, html.EscapeString(file.Name))
	if err := e.exec.InsertHTML(ctx, fragment); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurface, err)
	}
	if err := e.focus(ctx); err != nil {
		return nil, err
	}
	doc, err := e.capture(ctx)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("image inserted", "name", file.Name, "bytes", len(file.Data), "version", doc.Version)
	return doc, nil
}

// InsertSignature replaces the signature placeholder's content with file.
// Only PNG and JPEG are accepted. It works in both modes; while editing the
// surface is captured first and remounted afterward.
func (e *Editor) InsertSignature(ctx context.Context, file ImageFile) (*Document, error) {
	uri, err := file.DataURI()
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == ModeEditing {
		if _, err := e.capture(ctx); err != nil {
			return nil, err
		}
	}

	mounted, err := e.signature.Mount(ctx, e.current().HTML, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurface, err)
	}
	doc := e.push(mounted)

	if e.mode == ModeEditing {
		if err := e.mount(ctx, doc.HTML); err != nil {
			return nil, err
		}
		if err := e.focus(ctx); err != nil {
			return nil, err
		}
	}
	e.logger.Debug("signature inserted", "name", file.Name, "mode", e.mode.String(), "version", doc.Version)
	return doc, nil
}

// TogglePreview switches between editing and previewing. Entering preview
// captures the surface when it changed; leaving it remounts the current
// version and refocuses. A round trip without edits keeps the document
// byte-identical.
func (e *Editor) TogglePreview(ctx context.Context) (*Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var doc *Document
	switch e.mode {
	case ModeEditing:
		captured, err := e.capture(ctx)
		if err != nil {
			return nil, err
		}
		doc = captured
		e.mode = ModePreviewing
	default:
		doc = e.current()
		if err := e.mount(ctx, doc.HTML); err != nil {
			return nil, err
		}
		if err := e.focus(ctx); err != nil {
			return nil, err
		}
		e.mode = ModeEditing
	}

	e.logger.Debug("mode toggled", "mode", e.mode.String(), "version", doc.Version)
	return doc, nil
}

// Input records content typed or pasted into the surface by the host as a
// new version. It is a no-op while previewing or when nothing changed.
func (e *Editor) Input(ctx context.Context, content string) (*Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeEditing {
		return e.current(), nil
	}
	if content == e.current().HTML {
		return e.current(), nil
	}
	if err := e.mount(ctx, content); err != nil {
		return nil, err
	}
	return e.push(content), nil
}

// Sync records the live surface content when it changed since the last
// capture. Hosts call it after typing they applied directly to the surface.
func (e *Editor) Sync(ctx context.Context) (*Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeEditing {
		return e.current(), nil
	}
	return e.capture(ctx)
}

// Undo returns to the previous version and remounts it.
// Returns ErrNothingToUndo at the oldest kept version.
func (e *Editor) Undo(ctx context.Context) (*Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.history) < 2 {
		return nil, ErrNothingToUndo
	}
	e.history = e.history[:len(e.history)-1]
	doc := e.current()
	if err := e.remount(ctx); err != nil {
		return nil, err
	}
	e.logger.Debug("undo", "version", doc.Version)
	return doc, nil
}

// Reset records the loaded version's content as a new version and remounts
// it. Reset itself can be undone.
func (e *Editor) Reset(ctx context.Context) (*Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current().HTML == e.pristine.HTML {
		return e.current(), nil
	}
	doc := e.push(e.pristine.HTML)
	if err := e.remount(ctx); err != nil {
		return nil, err
	}
	e.logger.Debug("reset", "version", doc.Version)
	return doc, nil
}

// PreviewHTML returns the current version rendered for read-only display.
func (e *Editor) PreviewHTML() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.preview.Render(e.current().HTML)
}

// History returns the kept versions, oldest first.
func (e *Editor) History() []*Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Document, len(e.history))
	copy(out, e.history)
	return out
}

// Close releases the host binding.
func (e *Editor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exec.Close()
}

func (e *Editor) current() *Document {
	return e.history[len(e.history)-1]
}

// push appends the next version and trims the history to its limit.
func (e *Editor) push(content string) *Document {
	doc := e.current().next(content)
	e.history = append(e.history, doc)
	if over := len(e.history) - e.historyLimit; over > 0 {
		e.history = append(e.history[:0:0], e.history[over:]...)
	}
	return doc
}

// capture records the surface content when it differs from the baseline.
func (e *Editor) capture(ctx context.Context) (*Document, error) {
	content, err := e.exec.Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurface, err)
	}
	if content == e.baseline {
		return e.current(), nil
	}
	e.baseline = content
	return e.push(content), nil
}

func (e *Editor) mount(ctx context.Context, content string) error {
	if err := e.exec.Mount(ctx, content); err != nil {
		return fmt.Errorf("%w: %w", ErrSurface, err)
	}
	baseline, err := e.exec.Content(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSurface, err)
	}
	e.baseline = baseline
	return nil
}

// remount shows the current version on the surface while editing. In
// preview the surface is remounted when leaving preview instead.
func (e *Editor) remount(ctx context.Context) error {
	if e.mode != ModeEditing {
		return nil
	}
	if err := e.mount(ctx, e.current().HTML); err != nil {
		return err
	}
	return e.focus(ctx)
}

func (e *Editor) focus(ctx context.Context) error {
	if err := e.exec.Focus(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSurface, err)
	}
	return nil
}

// isSpace reports whether r counts as a preceding space for checkbox
// insertion.
func isSpace(r rune) bool {
	return r == ' ' || r == '\u00a0'
}
