package doceditor

import (
	"fmt"
	"strings"
)

// Page geometry defaults (A4 portrait, millimetres).
const (
	A4WidthMM        = 210.0
	A4HeightMM       = 297.0
	DefaultPaddingMM = 20.0
	DefaultScale     = 2.0

	// DefaultCheckboxPX is the square size checkboxes are forced to on export.
	DefaultCheckboxPX = 12

	// DefaultSignatureWidthPX caps the displayed width of a mounted signature.
	DefaultSignatureWidthPX = 200
)

// Scale bounds for rasterization.
const (
	MinScale = 1.0
	MaxScale = 4.0
)

// PageSettings configures the export container and the PDF pages.
type PageSettings struct {
	WidthMM   float64 // container and page width
	HeightMM  float64 // page height
	PaddingMM float64 // container padding, all sides
	Scale     float64 // device pixel ratio used for rasterization
}

// DefaultPageSettings returns A4 settings with 20mm padding at 2x scale.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		WidthMM:   A4WidthMM,
		HeightMM:  A4HeightMM,
		PaddingMM: DefaultPaddingMM,
		Scale:     DefaultScale,
	}
}

// Validate checks that page settings are usable.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}
	if p.WidthMM <= 0 || p.HeightMM <= 0 {
		return fmt.Errorf("%w: page %.1fx%.1fmm must be positive", ErrInvalidPageSettings, p.WidthMM, p.HeightMM)
	}
	if p.PaddingMM < 0 || 2*p.PaddingMM >= p.WidthMM {
		return fmt.Errorf("%w: padding %.1fmm leaves no content width", ErrInvalidPageSettings, p.PaddingMM)
	}
	if p.Scale < MinScale || p.Scale > MaxScale {
		return fmt.Errorf("%w: scale %.2f (must be between %.0f and %.0f)", ErrInvalidPageSettings, p.Scale, MinScale, MaxScale)
	}
	return nil
}

// SliceMode selects how a tall raster is split across PDF pages.
type SliceMode string

const (
	// SliceOffset places the whole raster on every page, shifted up by one
	// page height per page. Lines crossing a page boundary are cut.
	SliceOffset SliceMode = "offset"

	// SliceCrop places a separate crop of the raster on every page.
	SliceCrop SliceMode = "crop"
)

// ParseSliceMode parses a slice mode name (case-insensitive).
// An empty name selects SliceOffset.
func ParseSliceMode(s string) (SliceMode, error) {
	switch SliceMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SliceOffset:
		return SliceOffset, nil
	case SliceCrop:
		return SliceCrop, nil
	}
	return "", fmt.Errorf("%w: %q (must be %q or %q)", ErrInvalidSliceMode, s, SliceOffset, SliceCrop)
}

// Mode is the editing surface state.
type Mode int

const (
	// ModeEditing accepts formatting, insertion and input.
	ModeEditing Mode = iota
	// ModePreviewing shows the document read-only.
	ModePreviewing
)

func (m Mode) String() string {
	switch m {
	case ModeEditing:
		return "editing"
	case ModePreviewing:
		return "previewing"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Command is a rich-text formatting command.
type Command string

// Supported formatting commands.
const (
	CmdBold                Command = "bold"
	CmdItalic              Command = "italic"
	CmdUnderline           Command = "underline"
	CmdJustifyLeft         Command = "justifyLeft"
	CmdJustifyCenter       Command = "justifyCenter"
	CmdJustifyRight        Command = "justifyRight"
	CmdJustifyFull         Command = "justifyFull"
	CmdInsertUnorderedList Command = "insertUnorderedList"
	CmdInsertOrderedList   Command = "insertOrderedList"
	CmdFontSize            Command = "fontSize"
)

// Commands lists every supported formatting command.
var Commands = []Command{
	CmdBold, CmdItalic, CmdUnderline,
	CmdJustifyLeft, CmdJustifyCenter, CmdJustifyRight, CmdJustifyFull,
	CmdInsertUnorderedList, CmdInsertOrderedList,
	CmdFontSize,
}

// Validate checks that c is a supported command and value fits it.
// fontSize takes "1" to "7"; the other commands take no value.
func (c Command) Validate(value string) error {
	switch c {
	case CmdFontSize:
		if len(value) != 1 || value[0] < '1' || value[0] > '7' {
			return fmt.Errorf("%w: fontSize needs a value from 1 to 7, got %q", ErrUnknownCommand, value)
		}
		return nil
	case CmdBold, CmdItalic, CmdUnderline,
		CmdJustifyLeft, CmdJustifyCenter, CmdJustifyRight, CmdJustifyFull,
		CmdInsertUnorderedList, CmdInsertOrderedList:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, string(c))
}
