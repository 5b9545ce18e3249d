package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"dionysia/internal/config"
	"dionysia/internal/jobs"
	"dionysia/internal/logging"
	"dionysia/internal/memo"
)

type globalFlags struct {
	config    string
	cacheFile string
	logFile   string
	verbose   bool
}

type commandContext struct {
	flags *globalFlags

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	logger *slog.Logger
	store  *memo.Store
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.ApplyOverrides(config.Overrides{
			CacheFile: c.flags.cacheFile,
			LogFile:   c.flags.logFile,
			Verbose:   c.flags.verbose,
		}); err != nil {
			c.configErr = err
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

func (c *commandContext) ensureLogger(cmd *cobra.Command) (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	c.logger = logger.With(logging.String(logging.FieldCorrelationID, cmd.Name()))
	return c.logger, nil
}

func (c *commandContext) ensureStore() (*memo.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := memo.Open(cfg.Paths.CacheFile, c.logger)
	if err != nil {
		return nil, err
	}
	c.store = store
	return store, nil
}

// deps wires the config, logger and memo store for a job. A store that
// cannot be opened disables caching instead of failing the command.
func (c *commandContext) deps(cmd *cobra.Command) (*jobs.Deps, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger(cmd)
	if err != nil {
		return nil, err
	}
	store, err := c.ensureStore()
	if err != nil {
		logging.WarnWithContext(logger, "cache unavailable", "cache_open_failed",
			logging.Error(err),
			logging.String("path", cfg.Paths.CacheFile),
			logging.String(logging.FieldErrorHint, "check the --cachefile location"),
			logging.String(logging.FieldImpact, "every lookup goes to the remote service"),
		)
		store = nil
	}
	return jobs.NewDeps(cfg, logger, store), nil
}

func (c *commandContext) close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// withDeps adapts a job body into a RunE that builds the dependencies and
// closes the memo store afterwards.
func (c *commandContext) withDeps(run func(cmd *cobra.Command, deps *jobs.Deps) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		deps, err := c.deps(cmd)
		if err != nil {
			return err
		}
		defer c.close()
		return run(cmd, deps)
	}
}
