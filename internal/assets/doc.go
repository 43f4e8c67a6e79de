// Package assets provides the CSS styles and HTML templates used by the
// document editor: the export container, the signature placeholder, the
// load-failure fallback and the bundled sample document.
//
// Assets are looked up through layers. An AssetResolver asks an optional
// FilesystemLoader (an override directory with styles/ and templates/) and
// falls back to the EmbeddedLoader compiled into the binary when the
// override has no such file.
//
// Names are bare identifiers such as "export-container"; anything with a
// separator or dot is rejected, and files reached through symlinks must
// still live under the override directory.
package assets
