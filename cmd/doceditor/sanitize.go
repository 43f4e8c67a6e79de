package main

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/salhakar/doceditor/internal/config"
	"github.com/salhakar/doceditor/internal/fileutil"
)

// Sentinel errors for CLI output.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrWriteOutput = errors.New("failed to write output")
	ErrReadImage   = errors.New("failed to read image")
)

// runSanitize loads one document and prints its sanitized HTML.
func runSanitize(ctx context.Context, args []string, env *Environment) error {
	f := &sanitizeFlags{}
	fs := buildSanitizeFlagSet(f)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printSanitizeUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: sanitize takes at most one document, got %d", ErrUsage, fs.NArg())
	}

	cfg, err := resolveConfig(&f.common, env, func(cfg *config.Config) {
		mergeCommonFlags(fs, &f.common, cfg)
		mergeDocumentFlags(fs, &f.document, cfg)
		mergeAssetFlags(fs, &f.assets, cfg)
	})
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, cfg.Log)
	a, err := newAssets(cfg)
	if err != nil {
		return err
	}
	loader, err := newLoader(cfg, a, logger)
	if err != nil {
		return err
	}

	doc, err := loader.Load(ctx, fs.Arg(0), cfg.Document.DefaultTitle)
	if err != nil {
		return err
	}
	logger.Debug("document sanitized", "source", doc.Source, "title", doc.Title, "bytes", len(doc.HTML))

	if f.output == "" {
		_, err = fmt.Fprintln(env.Stdout, doc.HTML)
		return err
	}
	return writeOutput(f.output, []byte(doc.HTML+"\n"))
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if err := fileutil.WriteFile(path, data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// usageError passes flag.ErrHelp through and marks other parse errors as usage errors.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
