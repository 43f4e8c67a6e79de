package pipeline

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/salhakar/doceditor/internal/fileutil"
)

// RewriteRelativePaths resolves relative img[src] references against the
// location the document was loaded from, so the rasterizer can reach them.
//
// base is either an http(s) URL (references resolve like a browser would) or
// a directory (references become file:// URLs). An empty base returns the
// HTML unchanged.
//
// Not rewritten:
//   - absolute paths, URLs and data URIs
//   - srcset attributes and CSS url() references
//   - directory references escaping base
func RewriteRelativePaths(htmlContent, base string) (string, error) {
	if base == "" {
		return htmlContent, nil
	}

	resolve, err := resolverFor(base)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPathRewrite, err)
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPathRewrite, err)
	}

	rewriteImages(doc, resolve)

	return renderHTML(doc, isFragment)
}

// resolverFor returns a function mapping a relative reference to its
// absolute form, reporting false when it must be left alone.
func resolverFor(base string) (func(string) (string, bool), error) {
	if fileutil.IsURL(base) {
		baseURL, err := url.Parse(base)
		if err != nil {
			return nil, err
		}
		return func(ref string) (string, bool) {
			refURL, err := url.Parse(ref)
			if err != nil {
				return "", false
			}
			return baseURL.ResolveReference(refURL).String(), true
		}, nil
	}

	absDir, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	return func(ref string) (string, bool) {
		absPath := filepath.Join(absDir, ref)
		if !isPathUnderDir(absPath, absDir) {
			return "", false
		}
		return fileutil.PathToFileURL(absPath), true
	}, nil
}

func rewriteImages(n *html.Node, resolve func(string) (string, bool)) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		for i, attr := range n.Attr {
			if attr.Key != "src" || !isRelativePath(attr.Val) {
				continue
			}
			if abs, ok := resolve(attr.Val); ok {
				n.Attr[i].Val = abs
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteImages(c, resolve)
	}
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(path string) bool {
	if path == "" {
		return false
	}

	lower := strings.ToLower(path)
	for _, prefix := range []string{"http://", "https://", "file://", "data:", "//", "#"} {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}

	if strings.HasPrefix(path, "/") || filepath.IsAbs(path) {
		return false
	}

	return true
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}
