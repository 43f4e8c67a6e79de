// Package pipeline implements the HTML transformations of the document editor.
//
// This package handles every stage that works on markup rather than on a
// live editing surface:
//   - Sanitation of word-processor HTML exports (two-phase: textual strip,
//     then a tree walk over golang.org/x/net/html nodes)
//   - Signature placeholder synthesis and signature mounting
//   - Relative image path rewriting against the source location
//   - Markdown import (goldmark) and Markdown export (html-to-markdown)
//   - Export container rendering for rasterization
//   - Read-only preview rendering through a bluemonday policy
//
// Rasterization and PDF assembly are handled by the root doceditor package.
// Keeping this package free of browser concerns lets every transformation
// run and be tested without Chrome.
package pipeline
