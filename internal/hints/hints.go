// Package hints turns common failures into one-line suggestions. Every hint
// is rendered as "\n  hint: <text>" so callers can append it to an error
// message or put the trimmed text in a JSON field.
package hints

import (
	"fmt"
	"os"
	"strings"

	"github.com/salhakar/doceditor/internal/fileutil"
)

// ciVars are set by the CI systems we have seen Chrome fail under.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE"}

// inContainer reports whether the process looks containerized.
func inContainer(getenv func(string) string) bool {
	return getenv("DOCEDITOR_CONTAINER") == "1" || fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect suggests the Rod environment variables that usually
// fix a Chrome launch failure in the current environment.
func ForBrowserConnect() string {
	return browserConnect(os.Getenv, inContainer(os.Getenv))
}

func browserConnect(getenv func(string) string, container bool) string {
	sandboxed := container
	for _, v := range ciVars {
		if getenv(v) != "" {
			sandboxed = true
			break
		}
	}

	var parts []string
	if sandboxed && getenv("ROD_NO_SANDBOX") != "1" {
		parts = append(parts, "set ROD_NO_SANDBOX=1 when running in a container or CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		parts = append(parts, "point ROD_BROWSER_BIN at an installed Chrome or Chromium")
	}
	return format(strings.Join(parts, "; "))
}

// ForTimeout suggests a longer export budget.
func ForTimeout() string {
	return format("long documents take longer to rasterize; raise --timeout or export.timeout")
}

// ForConfigNotFound lists the ways to name a config file.
func ForConfigNotFound() string {
	return format("pass --config /path/to/file.yaml or set DOCEDITOR_CONFIG; bare names are searched in ~/.config/doceditor/")
}

// ForOutputDirectory is shown when the export could not be written.
func ForOutputDirectory() string {
	return format("check that the output path's parent directory is writable")
}

// ForFileType is shown for rejected image and signature uploads.
func ForFileType() string {
	return format("only PNG and JPEG images are accepted; the type is read from the file content, not its name")
}

// ForFetch explains an HTTP status returned while fetching a document.
// Statuses without specific advice get no hint.
func ForFetch(statusCode int) string {
	switch {
	case statusCode == 401 || statusCode == 403:
		return format("the server refused the request; check the document is publicly readable")
	case statusCode == 404:
		return format("check the document URL or --base-url")
	case statusCode >= 500:
		return format("the document server failed; try again later")
	default:
		return ""
	}
}

// ForUploadTooLarge is shown when a request body exceeds limit bytes.
func ForUploadTooLarge(limit int64) string {
	return format(fmt.Sprintf("uploads are limited to %d bytes; raise server.maxUploadBytes", limit))
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
