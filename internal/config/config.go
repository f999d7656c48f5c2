package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

const configFileName = "strikeout.toml"

// Paths contains data and log directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	IndexPath string `toml:"index_path"`
	LogDir    string `toml:"log_dir"`
}

// Link contains the hard-link policy.
type Link struct {
	// Overwrite removes an existing destination entry before linking. When
	// false a collision is reported for that file and the run continues.
	Overwrite           bool `toml:"overwrite"`
	CheckSameFilesystem bool `toml:"check_same_filesystem"`
}

// Scan contains directory traversal options.
type Scan struct {
	FollowSymlinks    bool     `toml:"follow_symlinks"`
	IncludeExtensions []string `toml:"include_extensions"`
}

// Journal contains configuration for the SQLite run history.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for strikeout.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Link    Link    `toml:"link"`
	Scan    Scan    `toml:"scan"`
	Journal Journal `toml:"journal"`
	Logging Logging `toml:"logging"`
}

// Load reads the configuration at path, or the first existing default
// location when path is empty, then normalizes and validates it. It also
// returns the path it settled on and whether that file existed; a missing
// file yields the defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// decodeFile strictly decodes path into cfg. Syntax errors carry their
// line and column; unknown keys are listed by name.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	err = decoder.Decode(cfg)
	if err == nil {
		return nil
	}

	var syntaxErr *toml.DecodeError
	if errors.As(err, &syntaxErr) {
		row, col := syntaxErr.Position()
		return fmt.Errorf("parse config %s:%d:%d: %w", path, row, col, err)
	}
	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) {
		return fmt.Errorf("config %s has unknown keys:\n%s", path, strictErr.String())
	}
	return fmt.Errorf("parse config %s: %w", path, err)
}

// resolveConfigPath returns an explicit path as-is, otherwise the first of
// the user config file and ./strikeout.toml that exists. With neither present
// it returns the user config path.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		exists, err := isFile(expanded)
		return expanded, exists, err
	}

	userPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(configFileName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		if ok, _ := isFile(candidate); ok {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// JournalEnabled reports whether run history should be recorded.
func (c *Config) JournalEnabled() bool {
	return c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) != ""
}
