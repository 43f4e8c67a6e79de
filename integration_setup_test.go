//go:build integration

package doceditor

// Notes:
// - Integration tests drive a real headless Chrome through rod. Run them with
//   `-tags integration`; set ROD_BROWSER_BIN and ROD_NO_SANDBOX=1 in containers.
// - testPool is shared by every integration test and closed in TestMain.
// - Pool size is capped at 2 so CI machines are not exhausted.

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

// testTimeout bounds every browser call in these tests.
const testTimeout = 30 * time.Second

// testPool is the shared ExporterPool for all integration tests.
var testPool *ExporterPool

func TestMain(m *testing.M) {
	size := ResolvePoolSize(0)
	if size > 2 {
		size = 2
	}

	var err error
	testPool, err = NewExporterPool(size, WithExportTimeout(testTimeout))
	if err != nil {
		panic(err)
	}

	code := m.Run()

	_ = testPool.Close()
	os.Exit(code)
}

// acquireExporter gets an exporter from the shared pool and releases it on cleanup.
func acquireExporter(t *testing.T) *Exporter {
	t.Helper()

	x, err := testPool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	t.Cleanup(func() { testPool.Release(x) })
	return x
}

// ---------------------------------------------------------------------------
// TestIntegration_Export - Chrome Rasterization
// ---------------------------------------------------------------------------

func TestIntegration_Export(t *testing.T) {
	t.Parallel()

	var body strings.Builder
	for i := 0; i < 120; i++ {
		body.WriteString("<p>Clause text that fills the page.</p>")
	}
	doc := &Document{Version: 1, Title: "Long Lease", HTML: body.String()}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	artifact, err := acquireExporter(t).Export(ctx, doc)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !bytes.HasPrefix(artifact.PDF, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
	if artifact.Pages < 2 {
		t.Errorf("Pages = %d, want at least 2 for long content", artifact.Pages)
	}
	want := PageCount(artifact.Raster.WidthPX, artifact.Raster.HeightPX, A4WidthMM, A4HeightMM)
	if artifact.Pages != want {
		t.Errorf("Pages = %d, PageCount() = %d", artifact.Pages, want)
	}
	if artifact.Raster.Scale != DefaultScale {
		t.Errorf("Raster.Scale = %v, want %v", artifact.Raster.Scale, DefaultScale)
	}
}

// ---------------------------------------------------------------------------
// TestIntegration_RodExecutor - Browser Editing Surface
// ---------------------------------------------------------------------------

func TestIntegration_RodExecutor(t *testing.T) {
	t.Parallel()

	css, err := defaultAssetLoader().LoadStyle(EditorStyle)
	if err != nil {
		t.Fatalf("LoadStyle() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	doc := &Document{Version: 1, Title: "Lease", HTML: "<p>I agree</p>"}
	ed, err := NewEditor(ctx, doc, WithExecutor(NewRodExecutor(css, testTimeout)))
	if err != nil {
		t.Fatalf("NewEditor() error = %v", err)
	}
	defer ed.Close()

	if _, err := ed.Select(ctx, 2, 7); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	bold, err := ed.ApplyFormat(ctx, CmdBold, "")
	if err != nil {
		t.Fatalf("ApplyFormat() error = %v", err)
	}
	if !strings.Contains(bold.HTML, "<b>agree</b>") {
		t.Errorf("HTML = %q, want bold agree", bold.HTML)
	}

	checked, err := ed.InsertCheckbox(ctx)
	if err != nil {
		t.Fatalf("InsertCheckbox() error = %v", err)
	}
	if !strings.Contains(checked.HTML, `type="checkbox"`) {
		t.Errorf("HTML = %q, want a checkbox", checked.HTML)
	}

	if _, err := ed.TogglePreview(ctx); err != nil {
		t.Fatalf("TogglePreview() error = %v", err)
	}
	back, err := ed.TogglePreview(ctx)
	if err != nil {
		t.Fatalf("TogglePreview() error = %v", err)
	}
	if back.HTML != checked.HTML {
		t.Errorf("preview round trip changed the document:\n%s\n---\n%s", checked.HTML, back.HTML)
	}
}
