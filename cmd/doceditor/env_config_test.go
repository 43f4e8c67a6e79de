package main

// Notes:
// - All tests set process environment variables, so none run in parallel.
// - loadEnvFile is tested through real files in t.TempDir(); godotenv never
//   overrides a variable that is already set.

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/salhakar/doceditor/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Parsing
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	clearDocEditorEnv(t)
	t.Setenv("DOCEDITOR_DOCUMENT", "https://example.com/lease.html")
	t.Setenv("DOCEDITOR_TITLE", "Lease")
	t.Setenv("DOCEDITOR_SLICE_MODE", "crop")
	t.Setenv("DOCEDITOR_SCALE", "3")
	t.Setenv("DOCEDITOR_TIMEOUT", "45s")
	t.Setenv("DOCEDITOR_WORKERS", "4")
	t.Setenv("DOCEDITOR_MAX_UPLOAD_BYTES", "2048")
	t.Setenv("DOCEDITOR_LOG_FORMAT", "json")

	got, err := loadEnvConfig()
	if err != nil {
		t.Fatalf("loadEnvConfig() error = %v", err)
	}
	want := envConfig{
		Document:       "https://example.com/lease.html",
		Title:          "Lease",
		SliceMode:      "crop",
		Scale:          3,
		Timeout:        45 * time.Second,
		Workers:        4,
		MaxUploadBytes: 2048,
		LogFormat:      "json",
	}
	if *got != want {
		t.Errorf("loadEnvConfig() = %+v, want %+v", *got, want)
	}
}

func TestLoadEnvConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"scale not a number", "DOCEDITOR_SCALE", "big"},
		{"negative scale", "DOCEDITOR_SCALE", "-1"},
		{"timeout without unit", "DOCEDITOR_TIMEOUT", "30"},
		{"negative workers", "DOCEDITOR_WORKERS", "-2"},
		{"zero upload limit", "DOCEDITOR_MAX_UPLOAD_BYTES", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearDocEditorEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := loadEnvConfig()
			if !errors.Is(err, config.ErrInvalidValue) {
				t.Errorf("loadEnvConfig() error = %v, want ErrInvalidValue", err)
			}
			if err != nil && !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q does not name %s", err, tt.key)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Overrides
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("set values override config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Document.DefaultTitle = "From File"
		cfg.Server.Workers = 2

		applyEnvConfig(&envConfig{
			Title:     "From Env",
			Workers:   6,
			Timeout:   time.Minute,
			AssetPath: "/srv/assets",
			Addr:      ":9000",
			LogLevel:  "debug",
		}, cfg)

		if cfg.Document.DefaultTitle != "From Env" {
			t.Errorf("DefaultTitle = %q", cfg.Document.DefaultTitle)
		}
		if cfg.Server.Workers != 6 || cfg.Server.Addr != ":9000" {
			t.Errorf("Server = %+v", cfg.Server)
		}
		if cfg.Export.Timeout.Std() != time.Minute {
			t.Errorf("Timeout = %v", cfg.Export.Timeout.Std())
		}
		if cfg.Assets.BasePath != "/srv/assets" || cfg.Log.Level != "debug" {
			t.Errorf("Assets = %+v, Log = %+v", cfg.Assets, cfg.Log)
		}
	})

	t.Run("unset values keep config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Document.DefaultTitle = "From File"
		cfg.Export.SliceMode = "crop"

		applyEnvConfig(&envConfig{}, cfg)

		if cfg.Document.DefaultTitle != "From File" || cfg.Export.SliceMode != "crop" {
			t.Errorf("config changed by empty env: %+v", cfg)
		}
	})
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo Detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	clearDocEditorEnv(t)
	t.Setenv("DOCEDITOR_WORKER", "2")
	t.Setenv("DOCEDITOR_TITLE", "ok")
	t.Setenv("OTHER_TOOL_SETTING", "x")

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf)

	out := buf.String()
	if !strings.Contains(out, "DOCEDITOR_WORKER ") {
		t.Errorf("missing warning for DOCEDITOR_WORKER:\n%s", out)
	}
	for _, quiet := range []string{"DOCEDITOR_TITLE", "OTHER_TOOL_SETTING"} {
		if strings.Contains(out, quiet) {
			t.Errorf("unexpected warning for %s:\n%s", quiet, out)
		}
	}
}

// ---------------------------------------------------------------------------
// TestLoadEnvFile - godotenv
// ---------------------------------------------------------------------------

func TestLoadEnvFile(t *testing.T) {
	t.Run("explicit file", func(t *testing.T) {
		clearDocEditorEnv(t)
		path := writeFile(t, t.TempDir(), "app.env", "DOCEDITOR_ADDR=:7070\n# comment\nDOCEDITOR_WORKERS=3\n")
		t.Cleanup(func() {
			os.Unsetenv("DOCEDITOR_ADDR")
			os.Unsetenv("DOCEDITOR_WORKERS")
		})

		if err := loadEnvFile(path); err != nil {
			t.Fatalf("loadEnvFile() error = %v", err)
		}
		if got := os.Getenv("DOCEDITOR_ADDR"); got != ":7070" {
			t.Errorf("DOCEDITOR_ADDR = %q, want :7070", got)
		}
		if got := os.Getenv("DOCEDITOR_WORKERS"); got != "3" {
			t.Errorf("DOCEDITOR_WORKERS = %q, want 3", got)
		}
	})

	t.Run("does not override", func(t *testing.T) {
		clearDocEditorEnv(t)
		t.Setenv("DOCEDITOR_ADDR", ":1111")
		path := writeFile(t, t.TempDir(), "app.env", "DOCEDITOR_ADDR=:7070\n")

		if err := loadEnvFile(path); err != nil {
			t.Fatalf("loadEnvFile() error = %v", err)
		}
		if got := os.Getenv("DOCEDITOR_ADDR"); got != ":1111" {
			t.Errorf("DOCEDITOR_ADDR = %q, want :1111", got)
		}
	})

	t.Run("missing explicit file", func(t *testing.T) {
		err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
		if !errors.Is(err, ErrEnvFile) {
			t.Errorf("loadEnvFile() error = %v, want ErrEnvFile", err)
		}
		if exitCodeFor(err) != ExitUsage {
			t.Errorf("exitCodeFor() = %d, want %d", exitCodeFor(err), ExitUsage)
		}
	})

	t.Run("no default file is fine", func(t *testing.T) {
		t.Chdir(t.TempDir())

		if err := loadEnvFile(""); err != nil {
			t.Errorf("loadEnvFile(\"\") error = %v", err)
		}
	})
}
