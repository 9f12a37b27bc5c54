// Package config handles the global affil configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matsen/affil/internal/normalize"
)

// Config represents configuration stored in ~/.config/affil/config.yml.
type Config struct {
	PDFDir        string                  `yaml:"pdf_dir,omitempty" json:"pdf_dir,omitempty"`
	CountriesFile string                  `yaml:"countries_file,omitempty" json:"countries_file,omitempty"`
	LogFile       string                  `yaml:"log_file,omitempty" json:"log_file,omitempty"`
	DBPath        string                  `yaml:"db_path,omitempty" json:"db_path,omitempty"`
	PDFReader     string                  `yaml:"pdf_reader,omitempty" json:"pdf_reader,omitempty"`
	NameFixes     []normalize.Replacement `yaml:"name_fixes,omitempty" json:"name_fixes,omitempty"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "affil"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// DBFile is the default index file name under the user cache directory.
	DBFile = "affil.db"

	// EnvConfig overrides the config file path.
	EnvConfig = "AFFIL_CONFIG"
	// EnvDB overrides db_path.
	EnvDB = "AFFIL_DB"
	// EnvPDFDir overrides pdf_dir.
	EnvPDFDir = "AFFIL_PDF_DIR"
)

// ValidReaders lists the supported PDF reader values.
var ValidReaders = []string{"system", "skim", "preview", "zathura", "evince", "okular"}

// configCache caches the loaded config.
var configCache *Config

// LoadEnv loads a .env file from the working directory if present.
func LoadEnv() {
	_ = godotenv.Load()
}

// Path returns the path to the config file.
// AFFIL_CONFIG wins; otherwise respects XDG_CONFIG_HOME, defaulting to
// ~/.config/affil/config.yml.
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return ExpandPath(p)
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load loads the configuration file and applies environment overrides.
// Returns an empty config (not an error) if the file doesn't exist.
func Load() (*Config, error) {
	if configCache != nil {
		return configCache, nil
	}

	var cfg Config
	if path := Path(); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg.PDFDir = ExpandPath(GetConfigValue(EnvPDFDir, cfg.PDFDir))
	cfg.DBPath = ExpandPath(GetConfigValue(EnvDB, cfg.DBPath))
	cfg.CountriesFile = ExpandPath(cfg.CountriesFile)
	cfg.LogFile = ExpandPath(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configCache = &cfg
	return &cfg, nil
}

// ResetCache clears the cached config.
// Useful for testing.
func ResetCache() {
	configCache = nil
}

// GetConfigValue returns the environment variable envKey if set, otherwise value.
func GetConfigValue(envKey, value string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return value
}

// Validate checks the reader name and the name fixes.
func (c *Config) Validate() error {
	if err := ValidatePDFReader(c.PDFReader); err != nil {
		return err
	}
	for i, r := range c.NameFixes {
		if r.From == "" {
			return fmt.Errorf("name_fixes[%d]: empty from", i)
		}
	}
	return nil
}

// ValidatePDFReader checks that the reader value is valid.
func ValidatePDFReader(reader string) error {
	if reader == "" {
		return nil // Empty defaults to "system"
	}

	for _, valid := range ValidReaders {
		if reader == valid {
			return nil
		}
	}

	return fmt.Errorf("invalid pdf_reader: %s (valid: %v)", reader, ValidReaders)
}

// DatabasePath returns db_path, or affil.db under the user cache directory.
func (c *Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return DBFile
	}
	return filepath.Join(cacheDir, ConfigDir, DBFile)
}

// Values returns the effective scalar settings keyed by their YAML names.
func (c *Config) Values() map[string]string {
	return map[string]string{
		"pdf_dir":        c.PDFDir,
		"countries_file": c.CountriesFile,
		"log_file":       c.LogFile,
		"db_path":        c.DatabasePath(),
		"pdf_reader":     c.PDFReader,
		"name_fixes":     fmt.Sprintf("%d entries", len(c.NameFixes)),
	}
}

// Keys returns the known config keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, 6)
	for k := range (&Config{}).Values() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns a single effective setting by its YAML name.
func (c *Config) Get(key string) (string, error) {
	v, ok := c.Values()[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return v, nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

// HelpfulConfigMessage explains where to put the config file.
func HelpfulConfigMessage() string {
	configPath := Path()
	return fmt.Sprintf(`No PDF directory configured.

Tip: Create %s to set defaults:
  mkdir -p %s
  echo 'pdf_dir: /path/to/pdfs' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
