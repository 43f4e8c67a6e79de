package doceditor

import (
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/salhakar/doceditor/internal/pipeline"
	"github.com/salhakar/doceditor/internal/surface"
)

// ---------------------------------------------------------------------------
// TestEditor_InsertCheckbox - Spacing Around Inserted Checkboxes
// ---------------------------------------------------------------------------

func TestEditor_InsertCheckbox(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		html  string
		caret int
		want  string
	}{
		{
			name:  "adds leading space after a word",
			html:  `<p>Agree</p>`,
			caret: 5,
			want:  `<p>Agree <input type="checkbox"/> </p>`,
		},
		{
			name:  "no leading space after a space",
			html:  `<p>Agree </p>`,
			caret: 6,
			want:  `<p>Agree <input type="checkbox"/> </p>`,
		},
		{
			name:  "no leading space after a non-breaking space",
			html:  "<p>Agree\u00a0</p>",
			caret: 6,
			want:  "<p>Agree&nbsp;<input type=\"checkbox\"/> </p>",
		},
		{
			name:  "leading space at the start of the content",
			html:  `<p>x</p>`,
			caret: 0,
			want:  `<p> <input type="checkbox"/> x</p>`,
		},
		{
			name:  "leading space after a line break",
			html:  `<p>a<br>b</p>`,
			caret: 2,
			want:  `<p>a<br/> <input type="checkbox"/> b</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			ed := newTestEditor(t, tt.html)
			if _, err := ed.Select(ctx, tt.caret, tt.caret); err != nil {
				t.Fatalf("Select() error = %v", err)
			}

			doc, err := ed.InsertCheckbox(ctx)
			if err != nil {
				t.Fatalf("InsertCheckbox() error = %v", err)
			}
			if doc.HTML != tt.want {
				t.Errorf("HTML = %q, want %q", doc.HTML, tt.want)
			}
			if doc.Version != 2 {
				t.Errorf("Version = %d, want 2", doc.Version)
			}
		})
	}
}

func TestEditor_InsertCheckbox_CaretAfterTrailingSpace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	exec := surface.New()
	ed := newTestEditor(t, `<p>Agree</p>`, WithExecutor(exec))

	if _, err := ed.Select(ctx, 5, 5); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if _, err := ed.InsertCheckbox(ctx); err != nil {
		t.Fatalf("InsertCheckbox() error = %v", err)
	}

	// "Agree" + space + checkbox + space
	if start, end := exec.Selection(); start != 8 || end != 8 {
		t.Errorf("Selection() = (%d, %d), want caret at 8", start, end)
	}

	// A second checkbox right after needs no leading space.
	doc, err := ed.InsertCheckbox(ctx)
	if err != nil {
		t.Fatalf("InsertCheckbox() error = %v", err)
	}
	want := `<p>Agree <input type="checkbox"/> <input type="checkbox"/> </p>`
	if doc.HTML != want {
		t.Errorf("HTML = %q, want %q", doc.HTML, want)
	}
}

func TestEditor_InsertCheckbox_NoOpInPreview(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ed := newTestEditor(t, `<p>Agree</p>`)

	before, err := ed.TogglePreview(ctx)
	if err != nil {
		t.Fatalf("TogglePreview() error = %v", err)
	}

	doc, err := ed.InsertCheckbox(ctx)
	if err != nil {
		t.Fatalf("InsertCheckbox() error = %v", err)
	}
	if doc != before {
		t.Errorf("InsertCheckbox() in preview returned version %d, want unchanged %d", doc.Version, before.Version)
	}
}

// ---------------------------------------------------------------------------
// TestEditor_ApplyFormat - Formatting Commands
// ---------------------------------------------------------------------------

func TestEditor_ApplyFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		html        string
		start, end  int
		cmd         Command
		value       string
		want        string
		wantVersion int
	}{
		{
			name:        "bold",
			html:        `<p>Hello world</p>`,
			start:       0,
			end:         5,
			cmd:         CmdBold,
			want:        `<p><b>Hello</b> world</p>`,
			wantVersion: 2,
		},
		{
			name:        "center",
			html:        `<p>Hello</p>`,
			start:       0,
			end:         5,
			cmd:         CmdJustifyCenter,
			want:        `<p style="text-align:center">Hello</p>`,
			wantVersion: 2,
		},
		{
			name:        "font size",
			html:        `<p>abc</p>`,
			start:       1,
			end:         2,
			cmd:         CmdFontSize,
			value:       "5",
			want:        `<p>a<font size="5">b</font>c</p>`,
			wantVersion: 2,
		},
		{
			name:        "collapsed selection records no version",
			html:        `<p>ab</p>`,
			start:       1,
			end:         1,
			cmd:         CmdItalic,
			want:        `<p>ab</p>`,
			wantVersion: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			ed := newTestEditor(t, tt.html)
			if _, err := ed.Select(ctx, tt.start, tt.end); err != nil {
				t.Fatalf("Select() error = %v", err)
			}

			doc, err := ed.ApplyFormat(ctx, tt.cmd, tt.value)
			if err != nil {
				t.Fatalf("ApplyFormat() error = %v", err)
			}
			if doc.HTML != tt.want {
				t.Errorf("HTML = %q, want %q", doc.HTML, tt.want)
			}
			if doc.Version != tt.wantVersion {
				t.Errorf("Version = %d, want %d", doc.Version, tt.wantVersion)
			}
		})
	}
}

func TestEditor_ApplyFormat_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cmd   Command
		value string
	}{
		{name: "unknown command", cmd: "strikeThrough"},
		{name: "font size out of range", cmd: CmdFontSize, value: "9"},
		{name: "font size missing", cmd: CmdFontSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ed := newTestEditor(t, `<p>ab</p>`)
			_, err := ed.ApplyFormat(context.Background(), tt.cmd, tt.value)
			if !errors.Is(err, ErrUnknownCommand) {
				t.Errorf("ApplyFormat() error = %v, want ErrUnknownCommand", err)
			}
			if got := ed.Document().Version; got != 1 {
				t.Errorf("Version = %d, want 1", got)
			}
		})
	}
}

func TestEditor_ApplyFormat_Refocuses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	exec := surface.New()
	ed := newTestEditor(t, `<p>ab</p>`, WithExecutor(exec))

	exec.Blur()
	if _, err := ed.Select(ctx, 0, 2); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if _, err := ed.ApplyFormat(ctx, CmdUnderline, ""); err != nil {
		t.Fatalf("ApplyFormat() error = %v", err)
	}
	if !exec.Focused() {
		t.Error("surface not focused after ApplyFormat")
	}
}

func TestEditor_ApplyFormat_NoOpInPreview(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ed := newTestEditor(t, `<p>ab</p>`)
	if _, err := ed.Select(ctx, 0, 2); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if _, err := ed.TogglePreview(ctx); err != nil {
		t.Fatalf("TogglePreview() error = %v", err)
	}

	doc, err := ed.ApplyFormat(ctx, CmdBold, "")
	if err != nil {
		t.Fatalf("ApplyFormat() error = %v", err)
	}
	if doc.HTML != `<p>ab</p>` || doc.Version != 1 {
		t.Errorf("ApplyFormat() in preview = v%d %q, want v1 unchanged", doc.Version, doc.HTML)
	}
}

// ---------------------------------------------------------------------------
// TestEditor_InsertImage - File Type Gate and Embedding
// ---------------------------------------------------------------------------

func TestEditor_InsertImage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ed := newTestEditor(t, `<p>ab</p>`)
	if _, err := ed.Select(ctx, 2, 2); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	doc, err := ed.InsertImage(ctx, ImageFile{Name: "logo.png", Data: pngBytes(t, 2, 2, color.Black)})
	if err != nil {
		t.Fatalf("InsertImage() error = %v", err)
	}

	for _, want := range []string{
		`<img src="data:image/png;base64,`,
		`alt="logo.png"`,
		`style="display:block;max-width:100%"/><br/></p>`,
	} {
		if !strings.Contains(doc.HTML, want) {
			t.Errorf("HTML missing %q:\n%s", want, doc.HTML)
		}
	}

	// The caret sits after the break: a checkbox lands after it.
	doc, err = ed.InsertCheckbox(ctx)
	if err != nil {
		t.Fatalf("InsertCheckbox() error = %v", err)
	}
	if !strings.HasSuffix(doc.HTML, `<br/> <input type="checkbox"/> </p>`) {
		t.Errorf("checkbox not after image break:\n%s", doc.HTML)
	}
}

func TestEditor_InsertImage_Gate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    ImageFile
		wantErr error
	}{
		{
			name:    "text file",
			file:    ImageFile{Name: "notes.txt", Data: []byte("hello world")},
			wantErr: ErrInvalidFileType,
		},
		{
			name:    "text file named like an image",
			file:    ImageFile{Name: "fake.png", ContentType: "image/png", Data: []byte("not an image")},
			wantErr: ErrInvalidFileType,
		},
		{
			name:    "gif",
			file:    ImageFile{Name: "a.gif", Data: []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")},
			wantErr: ErrInvalidFileType,
		},
		{
			name:    "pdf",
			file:    ImageFile{Name: "contract.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n")},
			wantErr: ErrInvalidFileType,
		},
		{
			name:    "pdf named like an image",
			file:    ImageFile{Name: "scan.jpg", ContentType: "image/jpeg", Data: []byte("%PDF-1.4\n%%EOF\n")},
			wantErr: ErrInvalidFileType,
		},
		{
			name:    "empty",
			file:    ImageFile{Name: "empty.png"},
			wantErr: ErrEmptyFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			ed := newTestEditor(t, `<p>ab</p>`)
			before := ed.Document()

			if _, err := ed.InsertImage(ctx, tt.file); !errors.Is(err, tt.wantErr) {
				t.Errorf("InsertImage() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := ed.InsertSignature(ctx, tt.file); !errors.Is(err, tt.wantErr) {
				t.Errorf("InsertSignature() error = %v, want %v", err, tt.wantErr)
			}
			if after := ed.Document(); after != before {
				t.Errorf("document changed to v%d after rejected upload", after.Version)
			}
		})
	}
}

func TestEditor_InsertImage_AcceptsJPEG(t *testing.T) {
	t.Parallel()

	ed := newTestEditor(t, `<p>ab</p>`)
	doc, err := ed.InsertImage(context.Background(), ImageFile{Name: "photo", Data: jpegBytes(t)})
	if err != nil {
		t.Fatalf("InsertImage() error = %v", err)
	}
	if !strings.Contains(doc.HTML, "data:image/jpeg;base64,") {
		t.Errorf("HTML missing jpeg data URI:\n%s", doc.HTML)
	}
}

// ---------------------------------------------------------------------------
// TestEditor_InsertSignature - Placeholder Replacement
// ---------------------------------------------------------------------------

func TestEditor_InsertSignature_Twice(t *testing.T) {
	t.Parallel()

	for _, preview := range []bool{false, true} {
		name := "editing"
		if preview {
			name = "previewing"
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			ed := newTestEditor(t, `<p>Signed:</p>`+placeholderHTML(t))
			if preview {
				if _, err := ed.TogglePreview(ctx); err != nil {
					t.Fatalf("TogglePreview() error = %v", err)
				}
			}

			if _, err := ed.InsertSignature(ctx, ImageFile{Name: "a.png", Data: pngBytes(t, 3, 1, color.Black)}); err != nil {
				t.Fatalf("first InsertSignature() error = %v", err)
			}
			doc, err := ed.InsertSignature(ctx, ImageFile{Name: "b.jpg", Data: jpegBytes(t)})
			if err != nil {
				t.Fatalf("second InsertSignature() error = %v", err)
			}

			anchors, err := pipeline.CountAnchors(doc.HTML)
			if err != nil {
				t.Fatalf("CountAnchors() error = %v", err)
			}
			if anchors != 1 {
				t.Errorf("anchors = %d, want 1", anchors)
			}
			if got := strings.Count(doc.HTML, "<img"); got != 1 {
				t.Errorf("images = %d, want 1:\n%s", got, doc.HTML)
			}
			if strings.Contains(doc.HTML, "image/png") || !strings.Contains(doc.HTML, "image/jpeg") {
				t.Errorf("second signature did not replace the first:\n%s", doc.HTML)
			}
			if !strings.Contains(doc.HTML, "max-width:200px") {
				t.Errorf("signature not capped at 200px:\n%s", doc.HTML)
			}
			if strings.Contains(doc.HTML, "Signature will appear here") {
				t.Errorf("placeholder caption not cleared:\n%s", doc.HTML)
			}
		})
	}
}

func TestEditor_InsertSignature_KeepsPendingEdits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	exec := surface.New()
	ed := newTestEditor(t, `<p>ab</p>`+placeholderHTML(t), WithExecutor(exec))

	// Typing the host applied directly to the surface.
	if err := exec.Select(ctx, 0, 0); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := exec.InsertHTML(ctx, "typed "); err != nil {
		t.Fatalf("InsertHTML() error = %v", err)
	}

	doc, err := ed.InsertSignature(ctx, ImageFile{Name: "sig.png", Data: pngBytes(t, 1, 1, color.Black)})
	if err != nil {
		t.Fatalf("InsertSignature() error = %v", err)
	}
	if !strings.Contains(doc.HTML, "<p>typed ab</p>") {
		t.Errorf("pending edit lost:\n%s", doc.HTML)
	}
	if doc.Version != 3 {
		t.Errorf("Version = %d, want 3 (capture + signature)", doc.Version)
	}
}

// ---------------------------------------------------------------------------
// TestEditor_TogglePreview - Mode Transitions
// ---------------------------------------------------------------------------

func TestEditor_TogglePreview_RoundTripIsByteIdentical(t *testing.T) {
	t.Parallel()

	// Input that the serializer would normalize.
	original := `<p class=x>a<br>b &amp; <input type=checkbox checked></p>`

	ctx := context.Background()
	ed := newTestEditor(t, original)
	first := ed.Document()

	doc, err := ed.TogglePreview(ctx)
	if err != nil {
		t.Fatalf("TogglePreview() error = %v", err)
	}
	if ed.Mode() != ModePreviewing {
		t.Errorf("Mode() = %v, want previewing", ed.Mode())
	}
	if doc != first {
		t.Errorf("entering preview recorded version %d", doc.Version)
	}

	doc, err = ed.TogglePreview(ctx)
	if err != nil {
		t.Fatalf("TogglePreview() error = %v", err)
	}
	if ed.Mode() != ModeEditing {
		t.Errorf("Mode() = %v, want editing", ed.Mode())
	}
	if doc.HTML != original || doc.Version != 1 {
		t.Errorf("round trip = v%d %q, want v1 %q", doc.Version, doc.HTML, original)
	}
}

func TestEditor_TogglePreview_CapturesPendingEdits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	exec := surface.New()
	ed := newTestEditor(t, `<p>ab</p>`, WithExecutor(exec))

	if err := exec.Select(ctx, 2, 2); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := exec.InsertHTML(ctx, "c"); err != nil {
		t.Fatalf("InsertHTML() error = %v", err)
	}

	doc, err := ed.TogglePreview(ctx)
	if err != nil {
		t.Fatalf("TogglePreview() error = %v", err)
	}
	if doc.HTML != `<p>abc</p>` || doc.Version != 2 {
		t.Errorf("TogglePreview() = v%d %q, want v2 <p>abc</p>", doc.Version, doc.HTML)
	}

	exec.Blur()
	if _, err := ed.TogglePreview(ctx); err != nil {
		t.Fatalf("TogglePreview() error = %v", err)
	}
	if !exec.Focused() {
		t.Error("surface not focused after leaving preview")
	}
}

// ---------------------------------------------------------------------------
// TestEditor_History - Input, Sync, Undo and Reset
// ---------------------------------------------------------------------------

func TestEditor_Input(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ed := newTestEditor(t, `<p>ab</p>`)

	doc, err := ed.Input(ctx, `<p>abc</p>`)
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if doc.HTML != `<p>abc</p>` || doc.Version != 2 {
		t.Errorf("Input() = v%d %q, want v2 <p>abc</p>", doc.Version, doc.HTML)
	}

	same, err := ed.Input(ctx, `<p>abc</p>`)
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if same != doc {
		t.Errorf("unchanged Input() recorded version %d", same.Version)
	}

	if _, err := ed.TogglePreview(ctx); err != nil {
		t.Fatalf("TogglePreview() error = %v", err)
	}
	ignored, err := ed.Input(ctx, `<p>other</p>`)
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if ignored != doc {
		t.Errorf("Input() in preview recorded version %d", ignored.Version)
	}
}

func TestEditor_Sync(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	exec := surface.New()
	ed := newTestEditor(t, `<p>ab</p>`, WithExecutor(exec))

	doc, err := ed.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if doc.Version != 1 {
		t.Errorf("Sync() without edits = v%d, want v1", doc.Version)
	}

	if err := exec.InsertHTML(ctx, "x"); err != nil {
		t.Fatalf("InsertHTML() error = %v", err)
	}
	doc, err = ed.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if doc.HTML != `<p>xab</p>` || doc.Version != 2 {
		t.Errorf("Sync() = v%d %q, want v2 <p>xab</p>", doc.Version, doc.HTML)
	}
}

func TestEditor_UndoReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ed := newTestEditor(t, `<p>ab</p>`)

	if _, err := ed.Select(ctx, 0, 1); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if _, err := ed.ApplyFormat(ctx, CmdBold, ""); err != nil {
		t.Fatalf("ApplyFormat() error = %v", err)
	}
	if _, err := ed.Input(ctx, `<p>changed</p>`); err != nil {
		t.Fatalf("Input() error = %v", err)
	}

	doc, err := ed.Undo(ctx)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if doc.HTML != `<p><b>a</b>b</p>` || doc.Version != 2 {
		t.Errorf("Undo() = v%d %q, want v2 <p><b>a</b>b</p>", doc.Version, doc.HTML)
	}

	doc, err = ed.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if doc.HTML != `<p>ab</p>` || doc.Version != 3 {
		t.Errorf("Reset() = v%d %q, want v3 <p>ab</p>", doc.Version, doc.HTML)
	}
	if ed.Pristine().HTML != `<p>ab</p>` {
		t.Errorf("Pristine() changed to %q", ed.Pristine().HTML)
	}

	// Reset is undoable, then the history runs out.
	if _, err := ed.Undo(ctx); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if _, err := ed.Undo(ctx); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if _, err := ed.Undo(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() error = %v, want ErrNothingToUndo", err)
	}
}

func TestEditor_HistoryLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ed := newTestEditor(t, `<p>0</p>`, WithHistoryLimit(2))

	for _, content := range []string{`<p>1</p>`, `<p>2</p>`, `<p>3</p>`} {
		if _, err := ed.Input(ctx, content); err != nil {
			t.Fatalf("Input(%q) error = %v", content, err)
		}
	}

	history := ed.History()
	if len(history) != 2 {
		t.Fatalf("len(History()) = %d, want 2", len(history))
	}
	if history[0].HTML != `<p>2</p>` || history[1].HTML != `<p>3</p>` {
		t.Errorf("History() = %q, %q", history[0].HTML, history[1].HTML)
	}
	if _, err := ed.Undo(ctx); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if _, err := ed.Undo(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() error = %v, want ErrNothingToUndo", err)
	}
}

func TestEditor_Select_OutOfRange(t *testing.T) {
	t.Parallel()

	ed := newTestEditor(t, `<p>ab</p>`)
	if _, err := ed.Select(context.Background(), 0, 3); !errors.Is(err, ErrSurface) {
		t.Errorf("Select() error = %v, want ErrSurface", err)
	}
}

// ---------------------------------------------------------------------------
// TestEditor_PreviewHTML - Read-only Rendering
// ---------------------------------------------------------------------------

func TestEditor_PreviewHTML(t *testing.T) {
	t.Parallel()

	ed := newTestEditor(t, `<p onclick="steal()" style="text-align:center">ok <input type="checkbox" checked></p><script>alert(1)</script>`)
	got := ed.PreviewHTML()

	for _, banned := range []string{"onclick", "<script", "alert(1)"} {
		if strings.Contains(got, banned) {
			t.Errorf("PreviewHTML() contains %q:\n%s", banned, got)
		}
	}
	for _, want := range []string{"text-align", `type="checkbox"`, "ok"} {
		if !strings.Contains(got, want) {
			t.Errorf("PreviewHTML() missing %q:\n%s", want, got)
		}
	}
}

func TestNewEditor_NilDocument(t *testing.T) {
	t.Parallel()

	if _, err := NewEditor(context.Background(), nil); !errors.Is(err, ErrSurface) {
		t.Errorf("NewEditor(nil) error = %v, want ErrSurface", err)
	}
}
