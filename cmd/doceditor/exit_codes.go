package main

import (
	"context"
	"errors"
	"os"

	"github.com/salhakar/doceditor"
	"github.com/salhakar/doceditor/internal/config"
	"github.com/salhakar/doceditor/internal/hints"
)

// Exit codes for the doceditor CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, rejected file type
	ExitBrowser = 4 // Browser/Chrome errors
	ExitLoad    = 5 // Document could not be loaded or fetched
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, doceditor.ErrBrowserConnect) ||
		errors.Is(err, doceditor.ErrPageCreate) ||
		errors.Is(err, doceditor.ErrPageLoad) ||
		errors.Is(err, doceditor.ErrRasterize) {
		return ExitBrowser
	}

	// Load errors (exit 5), checked before I/O since a missing local
	// document wraps os.ErrNotExist too.
	if errors.Is(err, doceditor.ErrLoad) ||
		errors.Is(err, doceditor.ErrFetch) {
		return ExitLoad
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrReadImage) ||
		errors.Is(err, doceditor.ErrInvalidFileType) ||
		errors.Is(err, doceditor.ErrEmptyFile) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrEnvFile) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, doceditor.ErrInvalidPageSettings) ||
		errors.Is(err, doceditor.ErrInvalidSliceMode) ||
		errors.Is(err, doceditor.ErrUnknownCommand) ||
		errors.Is(err, doceditor.ErrInvalidAssetPath) ||
		errors.Is(err, doceditor.ErrStyleNotFound) ||
		errors.Is(err, doceditor.ErrTemplateNotFound) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	if fe, ok := doceditor.IsFetchError(err); ok {
		return hints.ForFetch(fe.StatusCode)
	}
	switch {
	case errors.Is(err, doceditor.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, doceditor.ErrInvalidFileType):
		return hints.ForFileType()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	}
	return ""
}
