package doceditor

import (
	"context"

	"github.com/salhakar/doceditor/internal/surface"
)

// RichTextCommandExecutor is the host binding of the editing surface.
//
// Offsets count the runes of text content plus one per atomic inline element
// (br, img, input, hr), in document order. Implementations must accept any
// sanitized fragment in Mount and serialize it back in Content.
type RichTextCommandExecutor interface {
	// Mount replaces the surface content and puts the caret at the start.
	Mount(ctx context.Context, content string) error
	// Content serializes the live surface.
	Content(ctx context.Context) (string, error)
	// Exec applies a formatting command to the current selection.
	Exec(ctx context.Context, command, value string) error
	// Select sets the selection to [start, end).
	Select(ctx context.Context, start, end int) error
	// CharBeforeCaret returns the character preceding the selection start,
	// or false at the start of the content.
	CharBeforeCaret(ctx context.Context) (rune, bool, error)
	// InsertHTML inserts a fragment at the selection start and moves the
	// caret after it.
	InsertHTML(ctx context.Context, fragment string) error
	// Focus makes the surface the target of subsequent input.
	Focus(ctx context.Context) error
	// Close releases host resources.
	Close() error
}

// NewDOMExecutor returns the in-memory host binding.
func NewDOMExecutor() RichTextCommandExecutor {
	return surface.New()
}

// Compile-time interface checks.
var (
	_ RichTextCommandExecutor = (*surface.DOM)(nil)
	_ RichTextCommandExecutor = (*RodExecutor)(nil)
)
