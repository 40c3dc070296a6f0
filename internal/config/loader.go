package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/stegscan/internal/toolchain"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".stegscan"

// File represents the structure of the .stegscan configuration file.
// Zero values leave the corresponding defaults untouched.
type File struct {
	// Detection tunes the likelihood computation.
	Detection DetectionSection `yaml:"detection,omitempty"`

	// Passwords replaces the default passphrase list when non-empty.
	Passwords []string `yaml:"passwords,omitempty"`

	// Tools configures the external tools.
	Tools ToolsSection `yaml:"tools,omitempty"`

	// Database configures the record store.
	Database DatabaseSection `yaml:"database,omitempty"`
}

// DetectionSection holds detection tunables.
type DetectionSection struct {
	Boost           float64 `yaml:"boost,omitempty"`
	Steepness       float64 `yaml:"steepness,omitempty"`
	DecodeThreshold float64 `yaml:"decodeThreshold,omitempty"`
	BatchSize       int     `yaml:"batchSize,omitempty"`
}

// ToolsSection holds external tool settings.
type ToolsSection struct {
	// Timeout bounds each tool invocation, e.g. "30s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Binaries maps tool names to executable paths.
	Binaries map[string]string `yaml:"binaries,omitempty"`

	// TempDir is where scratch directories are created.
	TempDir string `yaml:"tempDir,omitempty"`

	// DisableExiftool uses only the built-in metadata extractor.
	DisableExiftool bool `yaml:"disableExiftool,omitempty"`
}

// DatabaseSection holds record store settings.
type DatabaseSection struct {
	// Dir overrides the database directory.
	Dir string `yaml:"dir,omitempty"`

	// Disabled turns off persistence.
	Disabled bool `yaml:"disabled,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cf.Tools.Binaries == nil {
		cf.Tools.Binaries = make(map[string]string)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .stegscan in the current directory
// 3. Look for .stegscan in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply overlays the non-zero settings of the file onto c.
func (cf *File) Apply(c *Config) {
	if cf.Detection.Boost != 0 {
		c.Boost = cf.Detection.Boost
	}
	if cf.Detection.Steepness != 0 {
		c.Steepness = cf.Detection.Steepness
	}
	if cf.Detection.DecodeThreshold != 0 {
		c.DecodeThreshold = cf.Detection.DecodeThreshold
	}
	if cf.Detection.BatchSize != 0 {
		c.BatchSize = cf.Detection.BatchSize
	}
	if len(cf.Passwords) > 0 {
		c.Passwords = cf.Passwords
	}
	if cf.Tools.Timeout != 0 {
		c.ToolTimeout = cf.Tools.Timeout
	}
	if c.Binaries == nil {
		c.Binaries = make(map[toolchain.Tool]string)
	}
	for name, path := range cf.Tools.Binaries {
		c.Binaries[toolchain.Tool(name)] = path
	}
	if cf.Tools.TempDir != "" {
		c.TempDir = cf.Tools.TempDir
	}
	if cf.Tools.DisableExiftool {
		c.UseExiftool = false
	}
	if cf.Database.Dir != "" {
		c.DBDir = cf.Database.Dir
	}
	if cf.Database.Disabled {
		c.SaveToDB = false
	}
}

// LoadPasswordFile reads one passphrase per line. Blank lines and lines
// starting with '#' are skipped; an empty passphrase can be written as "''".
func LoadPasswordFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided wordlist path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open password file: %w", err)
	}
	defer f.Close()

	passwords := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
			continue
		case trimmed == "''":
			passwords = append(passwords, "")
		default:
			passwords = append(passwords, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read password file: %w", err)
	}
	return passwords, nil
}
