package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/salhakar/doceditor/internal/assets"
)

func newTestContainer(t *testing.T) *ContainerTemplate {
	t.Helper()

	tmpl, err := assets.NewEmbeddedLoader().LoadTemplate(assets.ExportContainerTemplate)
	if err != nil {
		t.Fatalf("LoadTemplate() error = %v", err)
	}
	c, err := NewContainerTemplate(tmpl)
	if err != nil {
		t.Fatalf("NewContainerTemplate() error = %v", err)
	}
	return c
}

// ---------------------------------------------------------------------------
// TestContainerTemplate_RenderContainer - Export Container
// ---------------------------------------------------------------------------

func TestContainerTemplate_RenderContainer(t *testing.T) {
	t.Parallel()

	c := newTestContainer(t)
	got, err := c.RenderContainer(context.Background(), ContainerData{
		Title:      "Lease & Co",
		CSS:        "#export-root { color: black; }",
		Content:    `<p>Tenant agrees <input type="checkbox"> to pay.</p>`,
		WidthMM:    210,
		PaddingMM:  20,
		CheckboxPX: 12,
	})
	if err != nil {
		t.Fatalf("RenderContainer() error = %v", err)
	}

	for _, want := range []string{
		`<title>Lease &amp; Co</title>`,
		`#export-root { color: black; }`,
		`<div id="export-root" style="width: 210mm; padding: 20mm;">`,
		`<input type="checkbox" style="width:12px;height:12px"/>`,
		`to pay.</p></div>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderContainer() missing %q in:\n%s", want, got)
		}
	}
}

func TestContainerTemplate_FractionalDimensions(t *testing.T) {
	t.Parallel()

	got, err := newTestContainer(t).RenderContainer(context.Background(), ContainerData{
		Content:   "<p>x</p>",
		WidthMM:   215.9,
		PaddingMM: 12.5,
	})
	if err != nil {
		t.Fatalf("RenderContainer() error = %v", err)
	}
	if !strings.Contains(got, "width: 215.9mm; padding: 12.5mm;") {
		t.Errorf("RenderContainer() = %q, want fractional dimensions", got)
	}
}

func TestContainerTemplate_CSSBreakout(t *testing.T) {
	t.Parallel()

	got, err := newTestContainer(t).RenderContainer(context.Background(), ContainerData{
		CSS:     "p{}</style><script>alert(1)</script>",
		Content: "<p>x</p>",
	})
	if err != nil {
		t.Fatalf("RenderContainer() error = %v", err)
	}
	if strings.Contains(got, "</style><script>") {
		t.Errorf("RenderContainer() allowed style breakout: %s", got)
	}
}

func TestContainerTemplate_CheckboxStyleMerged(t *testing.T) {
	t.Parallel()

	got, err := newTestContainer(t).RenderContainer(context.Background(), ContainerData{
		Content:    `<input type="CHECKBOX" style="vertical-align:middle;mso-x:1">`,
		CheckboxPX: 12,
	})
	if err != nil {
		t.Fatalf("RenderContainer() error = %v", err)
	}
	if !strings.Contains(got, `style="vertical-align:middle;width:12px;height:12px"`) {
		t.Errorf("RenderContainer() = %s", got)
	}
}

func TestNewContainerTemplate_Invalid(t *testing.T) {
	t.Parallel()

	_, err := NewContainerTemplate("{{.Title")
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Errorf("NewContainerTemplate() error = %v, want ErrInvalidTemplate", err)
	}
}

func TestContainerTemplate_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestContainer(t).RenderContainer(ctx, ContainerData{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RenderContainer() error = %v, want context.Canceled", err)
	}
}
