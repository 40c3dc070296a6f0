package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/stegscan/internal/decoder"
	"github.com/nao1215/stegscan/internal/toolchain"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "stegscan"

	// DefaultToolTimeout bounds each external tool invocation.
	DefaultToolTimeout = toolchain.DefaultTimeout

	// DefaultDecodeThreshold is the likelihood above which analyze decodes.
	DefaultDecodeThreshold = 0.6

	// DefaultBatchSize is the number of images analyzed concurrently.
	DefaultBatchSize = 4

	// DefaultBoost multiplies scaled indicator values before clamping.
	DefaultBoost = 1.7

	// DefaultSteepness is the slope of the logistic scaling curve.
	DefaultSteepness = 20.0

	// DefaultHistoryLimit is the number of records history shows.
	DefaultHistoryLimit = 10
)

// KnownTools lists the external tools whose binaries can be configured.
var KnownTools = []toolchain.Tool{
	toolchain.ToolExiftool,
	toolchain.ToolBinwalk,
	toolchain.ToolSteghide,
	toolchain.ToolOutguess,
}

// Config holds all configuration options for stegscan.
// It is populated from defaults, the config file and CLI flags, and passed
// down explicitly rather than kept in global state.
type Config struct {
	// ToolTimeout bounds each external tool invocation.
	ToolTimeout time.Duration

	// DecodeThreshold is the likelihood above which the decoder runs.
	DecodeThreshold float64

	// BatchSize is the number of images analyzed concurrently.
	BatchSize int

	// Boost and Steepness tune the logistic scaling of indicator values.
	Boost     float64
	Steepness float64

	// Passwords are the passphrases tried with steghide and outguess.
	Passwords []string

	// Binaries maps tool names to executable paths. Unset tools are looked
	// up in PATH.
	Binaries map[toolchain.Tool]string

	// TempDir is where scratch directories for tool output are created.
	// Empty means the system temporary directory.
	TempDir string

	// DBDir is the directory holding the record database.
	// Defaults to the XDG data directory (~/.local/share/stegscan on Linux).
	DBDir string

	// SaveToDB controls whether analyses are persisted.
	SaveToDB bool

	// Decode runs the decoder when the likelihood exceeds DecodeThreshold.
	Decode bool

	// ForceDecode runs the decoder regardless of the likelihood.
	ForceDecode bool

	// Seed makes random sampling reproducible when HasSeed is true.
	Seed    uint64
	HasSeed bool

	// UseExiftool prefers exiftool for metadata and falls back to the
	// built-in extractor.
	UseExiftool bool

	// Verbose enables debug logging and detailed reports.
	Verbose bool

	// JSONLog switches log output to JSON.
	JSONLog bool

	// JSONReport and MarkdownReport select the report format.
	// They are mutually exclusive.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file path for reports. Empty means stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ToolTimeout:     DefaultToolTimeout,
		DecodeThreshold: DefaultDecodeThreshold,
		BatchSize:       DefaultBatchSize,
		Boost:           DefaultBoost,
		Steepness:       DefaultSteepness,
		Passwords:       slices.Clone(decoder.DefaultPasswords),
		Binaries:        make(map[toolchain.Tool]string),
		DBDir:           XDGDataDir(),
		SaveToDB:        true,
		UseExiftool:     true,
	}
}

// XDGDataDir returns the XDG data directory for stegscan.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for stegscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.ToolTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.DecodeThreshold < 0 || c.DecodeThreshold > 1 {
		return ErrInvalidThreshold
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.Boost <= 0 {
		return ErrInvalidBoost
	}

	if c.Steepness <= 0 {
		return ErrInvalidSteepness
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	for tool := range c.Binaries {
		if !slices.Contains(KnownTools, tool) {
			return fmt.Errorf("%w: %s", ErrUnknownTool, tool)
		}
	}

	return nil
}

// RunnerOptions returns the toolchain options implied by the configuration.
func (c *Config) RunnerOptions() []toolchain.Option {
	opts := []toolchain.Option{
		toolchain.WithTimeout(c.ToolTimeout),
	}
	for tool, path := range c.Binaries {
		opts = append(opts, toolchain.WithBinary(tool, path))
	}
	if c.TempDir != "" {
		opts = append(opts, toolchain.WithTempDir(c.TempDir))
	}
	return opts
}
