package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/goccy/go-yaml"
	"github.com/inoxlang/quadc/internal/logs"
)

const (
	APP_NAME = "quadc"

	CONFIG_FILE_NAME     = "config.yaml"
	CONFIG_FILE_RELPATH  = APP_NAME + "/" + CONFIG_FILE_NAME
	ARCHIVE_FILE_RELPATH = APP_NAME + "/listings.db"

	DEFAULT_START_ADDRESS = 1
	DEFAULT_LISTING_DIR   = "listings"
	LISTING_FILE_EXT      = ".quad"

	COLOR_AUTO   = "auto"
	COLOR_ALWAYS = "always"
	COLOR_NEVER  = "never"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

type Config struct {
	//address of the first quadruple of each unit.
	StartAddress int `yaml:"start-address"`

	//directory listings are written to, relative paths are resolved against the working directory.
	ListingDir string `yaml:"listing-dir"`

	//path of the listing archive, if empty the archive is stored in the XDG data directory.
	ArchivePath string `yaml:"archive,omitempty"`

	LogLevel string `yaml:"log-level"`
	Color    string `yaml:"color"`
}

func Default() Config {
	return Config{
		StartAddress: DEFAULT_START_ADDRESS,
		ListingDir:   DEFAULT_LISTING_DIR,
		LogLevel:     "info",
		Color:        COLOR_AUTO,
	}
}

// Parse parses a YAML configuration, the missing fields have their default value.
func Parse(data []byte) (Config, error) {
	config := Default()
	if err := yaml.UnmarshalWithOptions(data, &config, yaml.DisallowUnknownField()); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	config, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// LoadDefault searches for the configuration file in the XDG config directories, the default configuration is
// returned if there is no configuration file. The returned path is empty in this case.
func LoadDefault() (Config, string, error) {
	path, err := xdg.SearchConfigFile(CONFIG_FILE_RELPATH)
	if err != nil {
		return Default(), "", nil
	}
	config, err := Load(path)
	return config, path, err
}

func (c Config) Validate() error {
	if c.StartAddress < 1 {
		return fmt.Errorf("%w: start-address should be greater or equal to 1, got %d", ErrInvalidConfig, c.StartAddress)
	}
	if strings.TrimSpace(c.ListingDir) == "" {
		return fmt.Errorf("%w: listing-dir should not be empty", ErrInvalidConfig)
	}
	if _, err := logs.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: invalid log-level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch c.Color {
	case "", COLOR_AUTO, COLOR_ALWAYS, COLOR_NEVER:
	default:
		return fmt.Errorf("%w: color should be %s, %s or %s", ErrInvalidConfig, COLOR_AUTO, COLOR_ALWAYS, COLOR_NEVER)
	}
	return nil
}

// ResolveArchivePath returns the path of the listing archive, the parent directories of the default archive
// are created.
func (c Config) ResolveArchivePath() (string, error) {
	if c.ArchivePath != "" {
		return filepath.Abs(c.ArchivePath)
	}
	return xdg.DataFile(ARCHIVE_FILE_RELPATH)
}

// ListingPath returns the path of the listing of a unit.
func (c Config) ListingPath(unitName string) string {
	return filepath.Join(c.ListingDir, unitName+LISTING_FILE_EXT)
}

func (c Config) ShouldColorize() bool {
	switch c.Color {
	case COLOR_ALWAYS:
		return true
	case COLOR_NEVER:
		return false
	default:
		return SHOULD_COLORIZE
	}
}

// Marshal returns the YAML representation of the configuration.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
