package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/spookydecs/circuitry/pkg/buildinfo"
	"github.com/spookydecs/circuitry/pkg/cache"
	"github.com/spookydecs/circuitry/pkg/config"
	pkgerrors "github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/observability"
	"github.com/spookydecs/circuitry/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "circuitry"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath  string
	metricsFile string

	cfg     *config.Config
	metrics *observability.Prometheus
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Circuitry tracks which decoration plugs into which",
		Long: `Circuitry tracks the electrical connections between inventory items in a
deployment: which ports are free, which cord feeds which decoration, and how
the whole power tree looks, zone by zone.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/circuitry/config.toml)")
	root.PersistentFlags().StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")

	// Register all subcommands
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.portsCommand())
	root.AddCommand(c.openCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.disconnectCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.registryCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadConfig loads the configuration once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path() != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path())
	}
	c.cfg = cfg
	return cfg, nil
}

// hooks returns Prometheus hooks when --metrics-file is set.
func (c *CLI) hooks() observability.Hooks {
	if c.metricsFile == "" {
		return observability.Noop()
	}
	if c.metrics == nil {
		c.metrics = observability.NewPrometheus()
	}
	return c.metrics.Hooks()
}

// newRunner opens the configured store and returns a pipeline runner over it.
// The caller must Close the runner.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	builder, err := cfg.Builder()
	if err != nil {
		return nil, err
	}

	hooks := c.hooks()
	st, err := cfg.OpenStore(ctx, hooks.Store, func(err error) {
		c.Logger.Warn("skipping invalid record", "err", err)
	})
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opened store", "backend", cfg.Store.Backend)

	return pipeline.NewRunner(st, builder, c.Logger, hooks.Build), nil
}

// renderer returns a pipeline renderer backed by the user cache directory.
// Caching is skipped when disabled or when the directory is unusable.
func (c *CLI) renderer(noCache bool) pipeline.Renderer {
	if noCache {
		return pipeline.Renderer{}
	}
	dir, err := cache.DefaultDir()
	if err == nil {
		var fc *cache.FileCache
		if fc, err = cache.NewFileCache(dir); err == nil {
			return pipeline.Renderer{Cache: fc, TTL: cache.DefaultTTL}
		}
	}
	c.Logger.Debug("render cache disabled", "err", err)
	return pipeline.Renderer{}
}

// Close writes collected metrics to --metrics-file, if set. It runs after
// failed commands too, so outages show up in the metrics.
func (c *CLI) Close() error {
	if c.metrics == nil || c.metricsFile == "" {
		return nil
	}
	if err := c.metrics.WriteTextfile(c.metricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	c.Logger.Debug("wrote metrics", "path", c.metricsFile)
	return nil
}

// =============================================================================
// Error Presentation
// =============================================================================

// explain prints a hint for errors the user can act on and returns err
// unchanged so cobra still exits non-zero.
func explain(err error) error {
	if err == nil {
		return nil
	}
	switch pkgerrors.GetCode(err) {
	case pkgerrors.ErrCodeStoreUnavailable:
		printError("Store unavailable: %s", pkgerrors.UserMessage(err))
		printNextStep("Check the store settings and retry", appName+" config")
	case pkgerrors.ErrCodePortAlreadyUsed:
		printError("Port already in use: %s", pkgerrors.UserMessage(err))
	case pkgerrors.ErrCodeInvalidPort:
		printError("Invalid port: %s", pkgerrors.UserMessage(err))
	case pkgerrors.ErrCodeNotFound:
		printError("%s", pkgerrors.UserMessage(err))
	}
	if errors.Is(err, context.Canceled) {
		printWarning("Cancelled")
	}
	return err
}
