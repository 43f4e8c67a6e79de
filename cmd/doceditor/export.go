package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/salhakar/doceditor"
	"github.com/salhakar/doceditor/internal/config"
)

// runExport loads a document, optionally signs it, and writes a PDF or
// Markdown export.
func runExport(ctx context.Context, args []string, env *Environment) error {
	f := &exportFlags{}
	fs := buildExportFlagSet(f)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printExportUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: export takes at most one document, got %d", ErrUsage, fs.NArg())
	}

	cfg, err := resolveConfig(&f.common, env, func(cfg *config.Config) {
		mergeCommonFlags(fs, &f.common, cfg)
		mergeDocumentFlags(fs, &f.document, cfg)
		mergePageFlags(fs, &f.page, cfg)
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

	start := time.Now()
	doc, err := loader.Load(ctx, fs.Arg(0), cfg.Document.DefaultTitle)
	if err != nil {
		return err
	}

	if f.signature != "" {
		doc, err = signDocument(ctx, doc, f.signature, a, logger)
		if err != nil {
			return err
		}
	}

	var (
		data     []byte
		filename string
		pages    int
	)
	if f.markdown {
		artifact, err := doceditor.ExportMarkdown(ctx, doc)
		if err != nil {
			return err
		}
		data, filename = []byte(artifact.Markdown), artifact.Filename
	} else {
		// The operator exports their own files, so local references stay.
		opts, err := exportOptions(cfg, a, logger, env, true)
		if err != nil {
			return err
		}
		exp, err := doceditor.NewExporter(opts...)
		if err != nil {
			return err
		}
		defer func() { _ = exp.Close() }()

		artifact, err := exp.Export(ctx, doc)
		if err != nil {
			return err
		}
		data, filename, pages = artifact.PDF, artifact.Filename, artifact.Pages
	}

	path := resolveOutputPath(f.output, filename)
	if err := writeOutput(path, data); err != nil {
		return err
	}
	logger.Info("export complete",
		"output", path,
		"bytes", len(data),
		"pages", pages,
		"elapsed", time.Since(start).Round(time.Millisecond))
	if !f.common.quiet {
		fmt.Fprintln(env.Stdout, path)
	}
	return nil
}

// signDocument mounts doc on the in-memory surface and places the
// signature image in its placeholder.
func signDocument(ctx context.Context, doc *doceditor.Document, imagePath string, a doceditor.AssetLoader, logger *slog.Logger) (*doceditor.Document, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadImage, err)
	}

	ed, err := doceditor.NewEditor(ctx, doc,
		doceditor.WithEditorAssets(a),
		doceditor.WithEditorLogger(logger))
	if err != nil {
		return nil, err
	}
	defer func() { _ = ed.Close() }()

	signed, err := ed.InsertSignature(ctx, doceditor.ImageFile{Name: filepath.Base(imagePath), Data: data})
	if err != nil {
		return nil, err
	}
	logger.Debug("signature placed", "image", imagePath, "version", signed.Version)
	return signed, nil
}

// resolveOutputPath picks where the export goes. An empty output uses the
// artifact name in the working directory; a directory output gets the
// artifact name appended.
func resolveOutputPath(output, filename string) string {
	if output == "" {
		return filename
	}
	if strings.HasSuffix(output, "/") || strings.HasSuffix(output, string(filepath.Separator)) {
		return filepath.Join(output, filename)
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, filename)
	}
	return output
}
