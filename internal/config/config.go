// Package config loads the YAML configuration shared by the CLI and the
// HTTP server.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/salhakar/doceditor/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength  = 4096
	MaxTitleLength = 200
	MaxAddrLength  = 255
)

// Defaults.
const (
	DefaultPageWidthMM    = 210.0
	DefaultPageHeightMM   = 297.0
	DefaultPaddingMM      = 20.0
	DefaultScale          = 2.0
	DefaultSliceMode      = "offset"
	DefaultAddr           = "127.0.0.1:8080"
	DefaultMaxUploadBytes = 10 << 20
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// configDirName is the directory under the user config dir searched for
// named configs.
const configDirName = "doceditor"

// Config holds all configuration for the editor CLI and server.
type Config struct {
	Document DocumentConfig `yaml:"document"`
	Export   ExportConfig   `yaml:"export"`
	Server   ServerConfig   `yaml:"server"`
	Assets   AssetsConfig   `yaml:"assets"`
	Log      LogConfig      `yaml:"log"`
}

// DocumentConfig selects the document loaded when none is given.
type DocumentConfig struct {
	DefaultPath  string `yaml:"defaultPath"`  // path or URL (empty = bundled sample)
	DefaultTitle string `yaml:"defaultTitle"` // title for the default document
	BaseURL      string `yaml:"baseURL"`      // resolves relative document paths over HTTP
}

// ExportConfig defines the export container and PDF pages.
type ExportConfig struct {
	PageWidth  float64  `yaml:"pageWidth"`  // mm
	PageHeight float64  `yaml:"pageHeight"` // mm
	Padding    float64  `yaml:"padding"`    // mm, all sides
	Scale      float64  `yaml:"scale"`      // 1 to 4
	SliceMode  string   `yaml:"sliceMode"`  // "offset" or "crop"
	Timeout    Duration `yaml:"timeout"`    // 0 = no timeout
}

// ServerConfig defines the HTTP API.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes"`
	Workers        int    `yaml:"workers"` // 0 = derived from CPU count
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// LogConfig defines the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Duration is a time.Duration written as a Go duration string ("45s").
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalidValue, s)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DefaultConfig returns A4 export settings, a loopback server and text logs.
func DefaultConfig() *Config {
	return &Config{
		Export: ExportConfig{
			PageWidth:  DefaultPageWidthMM,
			PageHeight: DefaultPageHeightMM,
			Padding:    DefaultPaddingMM,
			Scale:      DefaultScale,
			SliceMode:  DefaultSliceMode,
		},
		Server: ServerConfig{
			Addr:           DefaultAddr,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Validate checks field lengths and ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("document.defaultPath", c.Document.DefaultPath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("document.defaultTitle", c.Document.DefaultTitle, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("document.baseURL", c.Document.BaseURL, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}

	e := c.Export
	if e.PageWidth < 0 || e.PageHeight < 0 || e.Padding < 0 {
		return fmt.Errorf("%w: export page geometry must not be negative", ErrInvalidValue)
	}
	if e.PageWidth > 0 && 2*e.Padding >= e.PageWidth {
		return fmt.Errorf("%w: export.padding %.1fmm leaves no content width", ErrInvalidValue, e.Padding)
	}
	if e.Scale != 0 && (e.Scale < 1 || e.Scale > 4) {
		return fmt.Errorf("%w: export.scale must be between 1 and 4, got %.2f", ErrInvalidValue, e.Scale)
	}
	switch strings.ToLower(e.SliceMode) {
	case "", "offset", "crop":
	default:
		return fmt.Errorf("%w: export.sliceMode %q (must be offset or crop)", ErrInvalidValue, e.SliceMode)
	}
	if e.Timeout < 0 {
		return fmt.Errorf("%w: export.timeout must not be negative", ErrInvalidValue)
	}

	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.Server.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
			return fmt.Errorf("%w: server.addr %q: %v", ErrInvalidValue, c.Server.Addr, err)
		}
	}
	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("%w: server.maxUploadBytes must not be negative", ErrInvalidValue)
	}
	if c.Server.Workers < 0 {
		return fmt.Errorf("%w: server.workers must not be negative", ErrInvalidValue)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q (must be debug, info, warn, or error)", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q (must be text or json)", ErrInvalidValue, c.Log.Format)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeFile(configPath, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/doceditor/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, configDirName, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
