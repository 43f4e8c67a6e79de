package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doceditor <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  sanitize   Print the sanitized HTML of a document")
	fmt.Fprintln(w, "  export     Export a document to PDF or Markdown")
	fmt.Fprintln(w, "  serve      Start the HTTP editing server")
	fmt.Fprintln(w, "  doctor     Check system configuration")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'doceditor help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags every document command accepts.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --env-file <path>     Load environment from file (default: ./.env)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
	fmt.Fprintln(w, "      --log-format <s>      Log format: text, json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "  -t, --title <s>           Document title, used for the export file name")
	fmt.Fprintln(w, "      --base-url <url>      Base URL for relative document paths")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory overriding styles/ and templates/")
}

// printPageUsage prints the export geometry flags.
func printPageUsage(w io.Writer) {
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "      --page-width <mm>     Page width (default 210)")
	fmt.Fprintln(w, "      --page-height <mm>    Page height (default 297)")
	fmt.Fprintln(w, "      --padding <mm>        Container padding (default 20)")
	fmt.Fprintln(w, "      --scale <f>           Rasterization scale, 1-4 (default 2)")
	fmt.Fprintln(w, "      --slice-mode <s>      Page slicing: offset, crop (default offset)")
	fmt.Fprintln(w, "      --timeout <d>         Export timeout, e.g. 30s (default: none)")
}

// printEnvUsage prints the environment variables.
func printEnvUsage(w io.Writer) {
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  DOCEDITOR_CONFIG, DOCEDITOR_DOCUMENT, DOCEDITOR_TITLE, DOCEDITOR_BASE_URL,")
	fmt.Fprintln(w, "  DOCEDITOR_ASSET_PATH, DOCEDITOR_SLICE_MODE, DOCEDITOR_SCALE, DOCEDITOR_TIMEOUT,")
	fmt.Fprintln(w, "  DOCEDITOR_ADDR, DOCEDITOR_WORKERS, DOCEDITOR_MAX_UPLOAD_BYTES,")
	fmt.Fprintln(w, "  DOCEDITOR_LOG_LEVEL, DOCEDITOR_LOG_FORMAT")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN     Chrome/Chromium binary")
	fmt.Fprintln(w, "  ROD_NO_SANDBOX=1    Disable the Chrome sandbox (containers)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Precedence: flags > environment > config file > defaults.")
}

// printSanitizeUsage prints usage for the sanitize command.
func printSanitizeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doceditor sanitize [document] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Load a document and print its sanitized HTML.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  document  Path or URL (.html or .md); defaults to document.defaultPath")
	fmt.Fprintln(w, "            or the bundled sample")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: stdout)")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	printEnvUsage(w)
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doceditor export [document] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Load a document, optionally sign it, and export it.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  document  Path or URL (.html or .md); defaults to document.defaultPath")
	fmt.Fprintln(w, "            or the bundled sample")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory (default: <title>_edited.pdf)")
	fmt.Fprintln(w, "  -m, --markdown            Export Markdown instead of PDF")
	fmt.Fprintln(w, "  -s, --signature <path>    PNG or JPEG placed in the signature area")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	printPageUsage(w)
	fmt.Fprintln(w)
	printEnvUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  doceditor export lease.html -s sig.png -o out/")
	fmt.Fprintln(w, "  doceditor export https://example.com/lease.html --slice-mode crop")
	fmt.Fprintln(w, "  doceditor export notes.md --markdown -o notes.md")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doceditor serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Start the HTTP editing server.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default 127.0.0.1:8080)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel exporters (0 = auto)")
	fmt.Fprintln(w, "      --max-upload <bytes>  Request body limit (default 10485760)")
	fmt.Fprintln(w, "      --allow-local         Let clients open files on this machine")
	fmt.Fprintln(w, "      --surface <s>         Editing surface: dom, browser (default dom)")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	printPageUsage(w)
	fmt.Fprintln(w)
	printEnvUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "sanitize":
		printSanitizeUsage(env.Stdout)
	case "export":
		printExportUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: doceditor doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check Chrome, container settings, temp directory and assets.")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: doceditor version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: doceditor help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
