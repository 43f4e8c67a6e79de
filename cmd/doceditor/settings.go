package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/salhakar/doceditor"
	"github.com/salhakar/doceditor/internal/config"
)

// resolveConfig builds the effective configuration.
// Order: CLI flags > env vars > config file > defaults. merge applies the
// command's explicitly set flags.
func resolveConfig(common *commonFlags, env *Environment, merge func(*config.Config)) (*config.Config, error) {
	if err := loadEnvFile(common.envFile); err != nil {
		return nil, err
	}
	warnUnknownEnvVars(env.Stderr)

	envCfg, err := loadEnvConfig()
	if err != nil {
		return nil, err
	}

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		cfg, err = config.LoadConfig(name)
		if err != nil {
			return nil, err
		}
	}

	applyEnvConfig(envCfg, cfg)
	merge(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns a slog logger writing to w in the configured format.
func newLogger(w io.Writer, lc config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(lc.Level)}
	if strings.EqualFold(lc.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// parseLevel maps a validated level name to a slog level.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newAssets returns the asset loader for cfg, embedded-only when no path is set.
func newAssets(cfg *config.Config) (doceditor.AssetLoader, error) {
	return doceditor.NewAssetLoader(cfg.Assets.BasePath)
}

// newLoader builds the document loader for cfg.
func newLoader(cfg *config.Config, a doceditor.AssetLoader, logger *slog.Logger) (*doceditor.Loader, error) {
	opts := []doceditor.LoaderOption{
		doceditor.WithLoaderAssets(a),
		doceditor.WithLoaderLogger(logger),
		doceditor.WithDefaultDocument(cfg.Document.DefaultPath, cfg.Document.DefaultTitle),
	}
	if cfg.Document.BaseURL != "" {
		opts = append(opts, doceditor.WithBaseURL(cfg.Document.BaseURL))
	}
	if cfg.Server.MaxUploadBytes > 0 {
		opts = append(opts, doceditor.WithMaxDocumentBytes(cfg.Server.MaxUploadBytes))
	}
	return doceditor.NewLoader(opts...)
}

// exportOptions builds exporter options for cfg. allowLocal lets exported
// content reference files on this machine. Extra options from the
// environment are appended last.
func exportOptions(cfg *config.Config, a doceditor.AssetLoader, logger *slog.Logger, env *Environment, allowLocal bool) ([]doceditor.ExportOption, error) {
	mode, err := doceditor.ParseSliceMode(cfg.Export.SliceMode)
	if err != nil {
		return nil, err
	}

	page := &doceditor.PageSettings{
		WidthMM:   cfg.Export.PageWidth,
		HeightMM:  cfg.Export.PageHeight,
		PaddingMM: cfg.Export.Padding,
		Scale:     cfg.Export.Scale,
	}
	if page.Scale == 0 {
		page.Scale = doceditor.DefaultScale
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}

	opts := []doceditor.ExportOption{
		doceditor.WithPageSettings(page),
		doceditor.WithSliceMode(mode),
		doceditor.WithExportAssets(a),
		doceditor.WithExportLogger(logger),
		doceditor.WithLocalFiles(allowLocal),
	}
	if d := cfg.Export.Timeout.Std(); d > 0 {
		opts = append(opts, doceditor.WithExportTimeout(d))
	}
	return append(opts, env.ExportOptions...), nil
}
