package main

import (
	"context"
	"fmt"

	"github.com/salhakar/doceditor"
	"github.com/salhakar/doceditor/internal/config"
	"github.com/salhakar/doceditor/internal/server"
)

// runServe starts the HTTP editing server and blocks until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f := &serveFlags{}
	fs := buildServeFlagSet(f)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printServeUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, fs.Args())
	}
	if f.server.surface != surfaceDOM && f.server.surface != surfaceBrowser {
		return fmt.Errorf("%w: --surface %q (must be %s or %s)", ErrUsage, f.server.surface, surfaceDOM, surfaceBrowser)
	}

	cfg, err := resolveConfig(&f.common, env, func(cfg *config.Config) {
		mergeCommonFlags(fs, &f.common, cfg)
		mergeServerFlags(fs, &f.server, cfg)
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
	opts, err := exportOptions(cfg, a, logger, env, f.server.allowLocal)
	if err != nil {
		return err
	}

	pool, err := doceditor.NewExporterPool(doceditor.ResolvePoolSize(cfg.Server.Workers), opts...)
	if err != nil {
		return err
	}
	defer func() { _ = pool.Close() }()

	newExecutor, err := executorFactory(f.server.surface, a, cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
		AllowLocalFiles: f.server.allowLocal,
		Loader:          loader,
		Exporters:       pool,
		NewExecutor:     newExecutor,
		EditorOptions: []doceditor.EditorOption{
			doceditor.WithEditorAssets(a),
			doceditor.WithEditorLogger(logger),
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = srv.Close() }()

	logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"exporters", pool.Size(),
		"surface", f.server.surface,
		"allowLocal", f.server.allowLocal)
	return srv.ListenAndServe(ctx)
}

// executorFactory returns the per-session surface constructor for name.
// The browser surface styles its page with the editor stylesheet.
func executorFactory(name string, a doceditor.AssetLoader, cfg *config.Config) (func() doceditor.RichTextCommandExecutor, error) {
	if name != surfaceBrowser {
		return doceditor.NewDOMExecutor, nil
	}
	css, err := a.LoadStyle(doceditor.EditorStyle)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Export.Timeout.Std()
	return func() doceditor.RichTextCommandExecutor {
		return doceditor.NewRodExecutor(css, timeout)
	}, nil
}
