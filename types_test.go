package doceditor

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// TestPageSettings_Validate
// ---------------------------------------------------------------------------

func TestPageSettings_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		page    *PageSettings
		wantErr bool
	}{
		{name: "nil uses defaults", page: nil},
		{name: "defaults", page: DefaultPageSettings()},
		{name: "letter without padding", page: &PageSettings{WidthMM: 215.9, HeightMM: 279.4, Scale: 1}},
		{name: "zero width", page: &PageSettings{HeightMM: 297, Scale: 2}, wantErr: true},
		{name: "negative height", page: &PageSettings{WidthMM: 210, HeightMM: -1, Scale: 2}, wantErr: true},
		{name: "negative padding", page: &PageSettings{WidthMM: 210, HeightMM: 297, PaddingMM: -1, Scale: 2}, wantErr: true},
		{name: "padding eats the width", page: &PageSettings{WidthMM: 210, HeightMM: 297, PaddingMM: 105, Scale: 2}, wantErr: true},
		{name: "scale below 1", page: &PageSettings{WidthMM: 210, HeightMM: 297, Scale: 0.5}, wantErr: true},
		{name: "scale above 4", page: &PageSettings{WidthMM: 210, HeightMM: 297, Scale: 4.5}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.page.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidPageSettings) {
				t.Errorf("Validate() error = %v, want ErrInvalidPageSettings", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestParseSliceMode
// ---------------------------------------------------------------------------

func TestParseSliceMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    SliceMode
		wantErr bool
	}{
		{input: "", want: SliceOffset},
		{input: "offset", want: SliceOffset},
		{input: " CROP ", want: SliceCrop},
		{input: "tile", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSliceMode(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSliceMode) {
					t.Errorf("ParseSliceMode(%q) error = %v, want ErrInvalidSliceMode", tt.input, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseSliceMode(%q) = %q, %v, want %q", tt.input, got, err, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCommand_Validate
// ---------------------------------------------------------------------------

func TestCommand_Validate(t *testing.T) {
	t.Parallel()

	for _, cmd := range Commands {
		value := ""
		if cmd == CmdFontSize {
			value = "3"
		}
		if err := cmd.Validate(value); err != nil {
			t.Errorf("%s.Validate(%q) error = %v", cmd, value, err)
		}
	}

	for _, tt := range []struct {
		cmd   Command
		value string
	}{
		{"insertHTML", ""},
		{"Bold", ""},
		{CmdFontSize, "0"},
		{CmdFontSize, "8"},
		{CmdFontSize, "12"},
		{CmdFontSize, ""},
	} {
		if err := tt.cmd.Validate(tt.value); !errors.Is(err, ErrUnknownCommand) {
			t.Errorf("%s.Validate(%q) error = %v, want ErrUnknownCommand", tt.cmd, tt.value, err)
		}
	}
}

func TestMode_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode Mode
		want string
	}{
		{ModeEditing, "editing"},
		{ModePreviewing, "previewing"},
		{Mode(7), "Mode(7)"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", int(tt.mode), got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestDocument
// ---------------------------------------------------------------------------

func TestDocument_Filename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		ext   string
		want  string
	}{
		{"Lease Agreement", "pdf", "Lease Agreement_edited.pdf"},
		{"a/b\\c", ".pdf", "a_b_c_edited.pdf"},
		{"  ", "md", "document_edited.md"},
		{"../../etc", "pdf", "_.._etc_edited.pdf"},
	}

	for _, tt := range tests {
		got := (&Document{Title: tt.title}).Filename(tt.ext)
		if got != tt.want {
			t.Errorf("Filename(%q, %q) = %q, want %q", tt.title, tt.ext, got, tt.want)
		}
	}
}

func TestDocument_NextIsImmutable(t *testing.T) {
	t.Parallel()

	d1 := &Document{Version: 1, Title: "T", Source: "s", HTML: "<p>a</p>"}
	d2 := d1.next("<p>b</p>")

	if d1.HTML != "<p>a</p>" || d1.Version != 1 {
		t.Errorf("next() modified the receiver: %+v", *d1)
	}
	if d2.Version != 2 || d2.HTML != "<p>b</p>" || d2.Title != "T" || d2.Source != "s" {
		t.Errorf("next() = %+v", *d2)
	}
}

// ---------------------------------------------------------------------------
// TestFetchError
// ---------------------------------------------------------------------------

func TestFetchError(t *testing.T) {
	t.Parallel()

	err := error(&FetchError{URL: "https://x/doc.html", StatusCode: 404})
	if !errors.Is(err, ErrFetch) {
		t.Errorf("errors.Is(FetchError, ErrFetch) = false")
	}
	want := "document fetch failed: GET https://x/doc.html: 404 Not Found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
