// Package fileutil provides file and path helpers shared by the loader,
// the rasterizer and the CLI.
package fileutil

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// tempPattern prefixes every temp file created for browser rendering.
const tempPattern = "doceditor-*."

// WriteTempFile creates a temporary file with the given content and extension.
// Returns the file path and a cleanup function to remove the file.
func WriteTempFile(content, extension string) (path string, cleanup func(), err error) {
	if err := ValidateExtension(extension); err != nil {
		return "", nil, err
	}

	tmpFile, err := os.CreateTemp("", tempPattern+extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, writeErr := tmpFile.WriteString(content); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", closeErr)
	}

	return path, cleanup, nil
}

// ValidateExtension checks that the extension is safe for use in temp file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsURL returns true if the string is an http or https URL.
func IsURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// FileURLPath returns the local path of a file:// URL.
// The second result is false when s is not a file URL.
func FileURLPath(s string) (string, bool) {
	if !strings.HasPrefix(strings.ToLower(s), "file://") {
		return "", false
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", false
	}
	return filepath.FromSlash(u.Path), true
}

// PathToFileURL converts an absolute path to a file:// URL.
func PathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}

// SafeFilename replaces characters that would turn a document title into a
// path (separators, NUL, leading dots) and trims surrounding whitespace.
// Returns fallback when nothing usable remains.
func SafeFilename(name, fallback string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "\x00", "", ":", "_")
	cleaned := strings.TrimSpace(replacer.Replace(name))
	cleaned = strings.TrimLeft(cleaned, ".")
	if cleaned == "" {
		return fallback
	}
	return cleaned
}

// Permissions for files and directories written by the CLI.
const (
	FilePerm = 0o644
	DirPerm  = 0o755
)

// WriteFile writes data to path, creating missing parent directories.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, DirPerm); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, FilePerm)
}
