package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/salhakar/doceditor/internal/config"
)

// envPrefix marks the variables this CLI reads.
const envPrefix = "DOCEDITOR_"

// defaultEnvFile is loaded when present and no --env-file is given.
const defaultEnvFile = ".env"

// ErrEnvFile indicates an --env-file that could not be read.
var ErrEnvFile = errors.New("failed to load env file")

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // DOCEDITOR_CONFIG: config file name or path

	// Document
	Document string // DOCEDITOR_DOCUMENT: default document path or URL
	Title    string // DOCEDITOR_TITLE: default document title
	BaseURL  string // DOCEDITOR_BASE_URL: base for relative document paths

	// Export
	AssetPath string        // DOCEDITOR_ASSET_PATH: style/template override directory
	SliceMode string        // DOCEDITOR_SLICE_MODE: offset or crop
	Scale     float64       // DOCEDITOR_SCALE: rasterization scale
	Timeout   time.Duration // DOCEDITOR_TIMEOUT: per-export timeout

	// Server
	Addr           string // DOCEDITOR_ADDR: listen address
	Workers        int    // DOCEDITOR_WORKERS: exporter pool size
	MaxUploadBytes int64  // DOCEDITOR_MAX_UPLOAD_BYTES: request body limit

	// Logging
	LogLevel  string // DOCEDITOR_LOG_LEVEL: debug, info, warn, error
	LogFormat string // DOCEDITOR_LOG_FORMAT: text or json
}

// knownEnvVars lists valid DOCEDITOR_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOCEDITOR_CONFIG":           true,
	"DOCEDITOR_DOCUMENT":         true,
	"DOCEDITOR_TITLE":            true,
	"DOCEDITOR_BASE_URL":         true,
	"DOCEDITOR_ASSET_PATH":       true,
	"DOCEDITOR_SLICE_MODE":       true,
	"DOCEDITOR_SCALE":            true,
	"DOCEDITOR_TIMEOUT":          true,
	"DOCEDITOR_ADDR":             true,
	"DOCEDITOR_WORKERS":          true,
	"DOCEDITOR_MAX_UPLOAD_BYTES": true,
	"DOCEDITOR_LOG_LEVEL":        true,
	"DOCEDITOR_LOG_FORMAT":       true,
	"DOCEDITOR_CONTAINER":        true, // read by doctor
}

// loadEnvFile loads path into the process environment without overriding
// variables that are already set. An empty path loads ./.env if it exists.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); err != nil {
			return nil
		}
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEnvFile, path, err)
	}
	return nil
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are reported as config.ErrInvalidValue.
func loadEnvConfig() (*envConfig, error) {
	cfg := &envConfig{
		ConfigPath: os.Getenv("DOCEDITOR_CONFIG"),
		Document:   os.Getenv("DOCEDITOR_DOCUMENT"),
		Title:      os.Getenv("DOCEDITOR_TITLE"),
		BaseURL:    os.Getenv("DOCEDITOR_BASE_URL"),
		AssetPath:  os.Getenv("DOCEDITOR_ASSET_PATH"),
		SliceMode:  os.Getenv("DOCEDITOR_SLICE_MODE"),
		Addr:       os.Getenv("DOCEDITOR_ADDR"),
		LogLevel:   os.Getenv("DOCEDITOR_LOG_LEVEL"),
		LogFormat:  os.Getenv("DOCEDITOR_LOG_FORMAT"),
	}

	if v := os.Getenv("DOCEDITOR_SCALE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("%w: DOCEDITOR_SCALE=%q", config.ErrInvalidValue, v)
		}
		cfg.Scale = f
	}
	if v := os.Getenv("DOCEDITOR_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: DOCEDITOR_TIMEOUT=%q", config.ErrInvalidValue, v)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("DOCEDITOR_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: DOCEDITOR_WORKERS=%q", config.ErrInvalidValue, v)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("DOCEDITOR_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: DOCEDITOR_MAX_UPLOAD_BYTES=%q", config.ErrInvalidValue, v)
		}
		cfg.MaxUploadBytes = n
	}

	return cfg, nil
}

// warnUnknownEnvVars logs warnings for unrecognized DOCEDITOR_* variables.
// Helps catch typos like DOCEDITOR_WORKER instead of DOCEDITOR_WORKERS.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies set environment values over the file config.
// Order: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Document != "" {
		cfg.Document.DefaultPath = env.Document
	}
	if env.Title != "" {
		cfg.Document.DefaultTitle = env.Title
	}
	if env.BaseURL != "" {
		cfg.Document.BaseURL = env.BaseURL
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.SliceMode != "" {
		cfg.Export.SliceMode = env.SliceMode
	}
	if env.Scale > 0 {
		cfg.Export.Scale = env.Scale
	}
	if env.Timeout > 0 {
		cfg.Export.Timeout = config.Duration(env.Timeout)
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.Workers > 0 {
		cfg.Server.Workers = env.Workers
	}
	if env.MaxUploadBytes > 0 {
		cfg.Server.MaxUploadBytes = env.MaxUploadBytes
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
}
