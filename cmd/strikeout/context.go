package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"strikeout/internal/config"
	"strikeout/internal/fileindex"
	"strikeout/internal/journal"
	"strikeout/internal/logging"
	"strikeout/internal/services"
)

type globalFlags struct {
	config     string
	verbose    bool
	workingDir string
}

type commandContext struct {
	flags *globalFlags

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) applyWorkingDir() error {
	dir := strings.TrimSpace(c.flags.workingDir)
	if dir == "" {
		return nil
	}
	expanded, err := config.ExpandPath(dir)
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}
	if err := os.Chdir(expanded); err != nil {
		return services.Wrap(services.ErrValidation, "cli", "change working directory", "", err)
	}
	return nil
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		override := ""
		if c.flags.verbose {
			override = "debug"
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, override)
	})
	return c.logger, c.loggerErr
}

// indexPath resolves the index file: an explicit override, then the configured
// path, then the location derived from the working directory.
func (c *commandContext) indexPath(override string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		return config.ExpandPath(override)
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if cfg.Paths.IndexPath != "" {
		return cfg.Paths.IndexPath, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}
	return fileindex.Location(cfg.Paths.DataDir, cwd), nil
}

func (c *commandContext) openIndex(override string) (*fileindex.Store, error) {
	path, err := c.indexPath(override)
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return fileindex.Open(path, logger)
}

// openJournal returns nil when the journal is disabled.
func (c *commandContext) openJournal() (*journal.Journal, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.JournalEnabled() {
		return nil, nil
	}
	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return j, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
