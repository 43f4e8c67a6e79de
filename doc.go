// Package doceditor loads word-processor HTML exports, edits them and exports
// the result as a paginated PDF.
//
// # Quick Start
//
// Load a document, edit it, and export it:
//
//	loader, err := doceditor.NewLoader()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc, err := loader.Load(ctx, "https://example.com/lease.html", "Lease")
//	if err != nil {
//	    fmt.Println(loader.Fallback(err))
//	    return
//	}
//
//	ed, err := doceditor.NewEditor(ctx, doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ed.Close()
//
//	ed.Select(ctx, 0, 5)
//	ed.ApplyFormat(ctx, doceditor.CmdBold, "")
//	doc, err = ed.InsertCheckbox(ctx)
//
//	exp, err := doceditor.NewExporter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exp.Close()
//	artifact, err := exp.Export(ctx, doc)
//	os.WriteFile(artifact.Filename, artifact.PDF, 0644)
//
// # Pipeline
//
//  1. Load: fetch (one GET, or a local read), optional Markdown conversion
//     via Goldmark, sanitation of vendor markup, signature placeholder.
//  2. Edit: formatting commands, checkbox, image and signature insertion,
//     preview toggle. Every change produces a new immutable Document version.
//  3. Export: the document is wrapped in a fixed-width container, captured
//     as a PNG in headless Chrome (go-rod) and laid out on PDF pages (gofpdf),
//     then validated (pdfcpu).
//
// # Editing Surface
//
// The Editor drives a RichTextCommandExecutor. NewDOMExecutor returns a
// pure-Go surface used by default; RodExecutor runs the same operations in a
// contenteditable page in headless Chrome. Selections are text offsets: one
// per character plus one per br, img, input or hr.
//
// # Parallel Export
//
// For servers, use ExporterPool to manage multiple browser instances:
//
//	pool, err := doceditor.NewExporterPool(4)
//	defer pool.Close()
//
//	artifact, err := pool.Export(ctx, doc) // waits for a free exporter
//
// # Custom Assets
//
// Override the export style and templates using AssetLoader:
//
//	assets, err := doceditor.NewAssetLoader("/path/to/assets")
//	exp, err := doceditor.NewExporter(doceditor.WithExportAssets(assets))
//
// Asset directory structure:
//
//	assets/
//	├── styles/
//	│   └── export.css
//	└── templates/
//	    ├── export-container.html
//	    ├── signature-placeholder.html
//	    └── load-error.html
//
// # Browser Requirements
//
// Export and RodExecutor require Chrome/Chromium. The go-rod library
// automatically downloads a managed Chromium instance on first run
// (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package doceditor
