// Package yamlutil decodes the editor's YAML config files. Decoding is
// always strict: a misspelled key is an error, reported with its line.
package yamlutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// MaxInputSize caps how much YAML is read from one source.
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// UnmarshalStrict decodes data into v and rejects unknown fields.
func UnmarshalStrict(data []byte, v any) error {
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	return decode(bytes.NewReader(data), v)
}

// DecodeFile strictly decodes the file at path into v. A missing file
// yields an error wrapping os.ErrNotExist.
func DecodeFile(path string, v any) error {
	f, err := os.Open(path) // #nosec G304 -- caller-provided config path
	if err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	defer func() { _ = f.Close() }()

	// One extra byte tells an exactly-full file from an oversized one.
	limited := io.LimitReader(f, int64(MaxInputSize)+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return fmt.Errorf("yamlutil: reading %s: %w", path, err)
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %s", ErrInputTooLarge, path)
	}
	if err := decode(bytes.NewReader(data), v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func decode(r io.Reader, v any) error {
	if v == nil {
		return ErrNilDestination
	}
	dec := yaml.NewDecoder(r, yaml.Strict())
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrNilData
		}
		return fmt.Errorf("yamlutil: %s", yaml.FormatError(err, false, true))
	}
	return nil
}
