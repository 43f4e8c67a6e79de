package main

import (
	"time"

	flag "github.com/spf13/pflag"

	"github.com/salhakar/doceditor/internal/config"
)

// Surface names accepted by --surface.
const (
	surfaceDOM     = "dom"
	surfaceBrowser = "browser"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	envFile   string
	quiet     bool
	verbose   bool
	logFormat string
}

// documentFlags holds flags that choose and name the document.
type documentFlags struct {
	title   string
	baseURL string
}

// pageFlags holds export page geometry flags.
type pageFlags struct {
	width     float64
	height    float64
	padding   float64
	scale     float64
	sliceMode string
	timeout   time.Duration
}

// assetFlags holds asset-related flags.
type assetFlags struct {
	assetPath string
}

// serverFlags holds flags for the serve command.
type serverFlags struct {
	addr       string
	workers    int
	maxUpload  int64
	allowLocal bool
	surface    string
}

// sanitizeFlags holds all flags for the sanitize command.
type sanitizeFlags struct {
	common   commonFlags
	output   string
	document documentFlags
	assets   assetFlags
}

// exportFlags holds all flags for the export command.
type exportFlags struct {
	common    commonFlags
	output    string
	markdown  bool
	signature string
	document  documentFlags
	page      pageFlags
	assets    assetFlags
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common   commonFlags
	server   serverFlags
	document documentFlags
	page     pageFlags
	assets   assetFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.envFile, "env-file", "", "load environment from file (default: ./.env if present)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
}

// addDocumentFlags adds document flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVarP(&f.title, "title", "t", "", "document title used for the export file name")
	fs.StringVar(&f.baseURL, "base-url", "", "base URL for relative document paths")
}

// addPageFlags adds export geometry flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.Float64Var(&f.width, "page-width", config.DefaultPageWidthMM, "page width in mm")
	fs.Float64Var(&f.height, "page-height", config.DefaultPageHeightMM, "page height in mm")
	fs.Float64Var(&f.padding, "padding", config.DefaultPaddingMM, "container padding in mm")
	fs.Float64Var(&f.scale, "scale", config.DefaultScale, "rasterization scale (1-4)")
	fs.StringVar(&f.sliceMode, "slice-mode", config.DefaultSliceMode, "page slicing: offset, crop")
	fs.DurationVar(&f.timeout, "timeout", 0, "export timeout, e.g. 30s (0 = none)")
}

// addAssetFlags adds asset flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding styles/ and templates/")
}

// addServerFlags adds serve flags to a FlagSet.
func addServerFlags(fs *flag.FlagSet, f *serverFlags) {
	fs.StringVarP(&f.addr, "addr", "a", config.DefaultAddr, "listen address")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel exporters (0 = auto)")
	fs.Int64Var(&f.maxUpload, "max-upload", config.DefaultMaxUploadBytes, "request body limit in bytes")
	fs.BoolVar(&f.allowLocal, "allow-local", false, "let clients open files on this machine")
	fs.StringVar(&f.surface, "surface", surfaceDOM, "editing surface: dom, browser")
}

// buildSanitizeFlagSet registers the sanitize flags on a new FlagSet.
func buildSanitizeFlagSet(f *sanitizeFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("sanitize", flag.ContinueOnError)
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addAssetFlags(fs, &f.assets)
	return fs
}

// buildExportFlagSet registers the export flags on a new FlagSet.
func buildExportFlagSet(f *exportFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory (default: <title>_edited.pdf)")
	fs.BoolVarP(&f.markdown, "markdown", "m", false, "export Markdown instead of PDF")
	fs.StringVarP(&f.signature, "signature", "s", "", "signature image (PNG or JPEG) to place before export")
	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addPageFlags(fs, &f.page)
	addAssetFlags(fs, &f.assets)
	return fs
}

// buildServeFlagSet registers the serve flags on a new FlagSet.
func buildServeFlagSet(f *serveFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	addServerFlags(fs, &f.server)
	addDocumentFlags(fs, &f.document)
	addPageFlags(fs, &f.page)
	addAssetFlags(fs, &f.assets)
	return fs
}

// mergeDocumentFlags applies explicitly set document flags over cfg.
func mergeDocumentFlags(fs *flag.FlagSet, f *documentFlags, cfg *config.Config) {
	if fs.Changed("title") {
		cfg.Document.DefaultTitle = f.title
	}
	if fs.Changed("base-url") {
		cfg.Document.BaseURL = f.baseURL
	}
}

// mergePageFlags applies explicitly set page flags over cfg.
func mergePageFlags(fs *flag.FlagSet, f *pageFlags, cfg *config.Config) {
	if fs.Changed("page-width") {
		cfg.Export.PageWidth = f.width
	}
	if fs.Changed("page-height") {
		cfg.Export.PageHeight = f.height
	}
	if fs.Changed("padding") {
		cfg.Export.Padding = f.padding
	}
	if fs.Changed("scale") {
		cfg.Export.Scale = f.scale
	}
	if fs.Changed("slice-mode") {
		cfg.Export.SliceMode = f.sliceMode
	}
	if fs.Changed("timeout") {
		cfg.Export.Timeout = config.Duration(f.timeout)
	}
}

// mergeAssetFlags applies explicitly set asset flags over cfg.
func mergeAssetFlags(fs *flag.FlagSet, f *assetFlags, cfg *config.Config) {
	if fs.Changed("asset-path") {
		cfg.Assets.BasePath = f.assetPath
	}
}

// mergeCommonFlags applies logging flags over cfg.
func mergeCommonFlags(fs *flag.FlagSet, f *commonFlags, cfg *config.Config) {
	if fs.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	switch {
	case f.verbose:
		cfg.Log.Level = "debug"
	case f.quiet:
		cfg.Log.Level = "error"
	}
}

// mergeServerFlags applies explicitly set server flags over cfg.
func mergeServerFlags(fs *flag.FlagSet, f *serverFlags, cfg *config.Config) {
	if fs.Changed("addr") {
		cfg.Server.Addr = f.addr
	}
	if fs.Changed("workers") {
		cfg.Server.Workers = f.workers
	}
	if fs.Changed("max-upload") {
		cfg.Server.MaxUploadBytes = f.maxUpload
	}
}
