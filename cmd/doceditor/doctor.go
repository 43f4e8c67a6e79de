package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/salhakar/doceditor"
)

// Doctor statuses, from best to worst.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult is what `doceditor doctor --json` prints.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`

	lines map[string][]string // human output per section
}

type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

type systemInfo struct {
	TempWritable bool   `json:"temp_writable"`
	Assets       bool   `json:"assets"`
	AssetPath    string `json:"asset_path,omitempty"`
}

// Sections of the human report, in print order.
var doctorSections = []string{"Chrome/Chromium", "Environment", "System"}

func (r *doctorResult) ok(section, format string, args ...any) {
	r.line(section, "[OK] "+fmt.Sprintf(format, args...))
}

func (r *doctorResult) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *doctorResult) fail(section, msg string) {
	r.Errors = append(r.Errors, msg)
	r.line(section, "[ERROR] "+msg)
}

func (r *doctorResult) line(section, text string) {
	if r.lines == nil {
		r.lines = make(map[string][]string)
	}
	r.lines[section] = append(r.lines[section], text)
}

// doctorCheck inspects one aspect of the host and records findings.
type doctorCheck func(*doctorResult)

var doctorChecks = []doctorCheck{checkChrome, checkEnvironment, checkTempDir, checkAssets}

// runDoctorCmd prints the report and returns ExitGeneral when any check
// failed. Warnings alone still exit 0.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	jsonOutput := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(env.Stdout, "Usage: doceditor doctor [--json]")
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	result := runDoctor()
	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

func runDoctor() *doctorResult {
	result := &doctorResult{
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}
	for _, check := range doctorChecks {
		check(result)
	}

	switch {
	case len(result.Errors) > 0:
		result.Status = statusErrors
	case len(result.Warnings) > 0:
		result.Status = statusWarnings
	default:
		result.Status = statusReady
	}
	return result
}

// checkChrome finds the browser the rasterizer will launch: ROD_BROWSER_BIN
// when set, otherwise whatever Rod's launcher discovers.
func checkChrome(r *doctorResult) {
	const section = "Chrome/Chromium"

	path := r.Env.BrowserBin
	if path == "" {
		found := false
		if path, found = launcher.LookPath(); !found {
			r.fail(section, "Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(path); err != nil {
		r.fail(section, "Chrome not found at "+path)
		return
	}

	r.Chrome.Found = true
	r.Chrome.Path = path
	r.Chrome.Sandbox = r.Env.NoSandbox != "1"
	r.ok(section, "Found at %s", path)

	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- path comes from the launcher or ROD_BROWSER_BIN
	if err != nil {
		r.warn(fmt.Sprintf("Could not get Chrome version: %v", err))
	} else {
		r.Chrome.Version = strings.TrimSpace(string(out))
		r.ok(section, "Version: %s", r.Chrome.Version)
	}

	if r.Chrome.Sandbox {
		r.ok(section, "Sandbox: enabled")
	} else {
		r.ok(section, "Sandbox: disabled (ROD_NO_SANDBOX=1)")
	}
}

// containerSignals are checked in order; the first match names the hint.
var containerSignals = []func() (bool, string){
	func() (bool, string) { return os.Getenv("DOCEDITOR_CONTAINER") == "1", "DOCEDITOR_CONTAINER=1" },
	func() (bool, string) {
		_, err := os.Stat("/.dockerenv")
		return err == nil, "/.dockerenv"
	},
	func() (bool, string) { v := os.Getenv("container"); return v != "", "container=" + v },
	func() (bool, string) { return os.Getenv("KUBERNETES_SERVICE_HOST") != "", "KUBERNETES_SERVICE_HOST" },
}

var ciEnvVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// checkEnvironment flags containers and CI runners, where Chrome's sandbox
// usually cannot start.
func checkEnvironment(r *doctorResult) {
	const section = "Environment"
	r.ok(section, "Platform: %s/%s", r.Env.OS, r.Env.Arch)

	for _, signal := range containerSignals {
		if hit, hint := signal(); hit {
			r.Env.Container, r.Env.ContainerHint = true, hint
			r.ok(section, "Container: detected (%s)", hint)
			break
		}
	}
	for _, v := range ciEnvVars {
		if os.Getenv(v) != "" {
			r.Env.CI = true
			r.ok(section, "CI: detected (%s)", v)
			break
		}
	}

	if (r.Env.Container || r.Env.CI) && r.Env.NoSandbox != "1" {
		r.warn("Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// checkTempDir confirms Rod can unpack its browser profile.
func checkTempDir(r *doctorResult) {
	const section = "System"

	dir := os.TempDir()
	tmp, err := os.CreateTemp(dir, "doceditor-doctor-*")
	if err != nil {
		r.fail(section, "Temp directory not writable: "+dir)
		return
	}
	_ = tmp.Close()
	_ = os.Remove(filepath.Clean(tmp.Name()))

	r.System.TempWritable = true
	r.ok(section, "Temp directory: writable")
}

// checkAssets loads the styles the editor and exporter need, honoring a
// DOCEDITOR_ASSET_PATH override.
func checkAssets(r *doctorResult) {
	const section = "System"

	r.System.AssetPath = os.Getenv("DOCEDITOR_ASSET_PATH")
	loader, err := doceditor.NewAssetLoader(r.System.AssetPath)
	if err != nil {
		r.fail(section, fmt.Sprintf("Asset path unusable: %v", err))
		return
	}
	for _, name := range []string{doceditor.ExportStyle, doceditor.EditorStyle} {
		if _, err := loader.LoadStyle(name); err != nil {
			r.fail(section, fmt.Sprintf("Style %q: %v", name, err))
			return
		}
	}

	r.System.Assets = true
	source := r.System.AssetPath
	if source == "" {
		source = "embedded"
	}
	r.ok(section, "Assets: %s", source)
}

func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintf(w, "doceditor doctor\n\n")

	for _, section := range doctorSections {
		fmt.Fprintln(w, section)
		for _, l := range r.lines[section] {
			fmt.Fprintf(w, "  %s\n", l)
		}
		fmt.Fprintln(w)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to export")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	default:
		fmt.Fprintf(w, "Status: Not ready (%d error(s) above)\n", len(r.Errors))
	}
}
