// Package cli implements the virtualcv command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/fschmidt/virtualcv/pkg/buildinfo"
	"github.com/fschmidt/virtualcv/pkg/cache"
	"github.com/fschmidt/virtualcv/pkg/client"
	"github.com/fschmidt/virtualcv/pkg/config"
	"github.com/fschmidt/virtualcv/pkg/pipeline"
	"github.com/fschmidt/virtualcv/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "virtualcv"

	// defaultAPIURL is the API endpoint used when none is configured.
	defaultAPIURL = "http://localhost:8080"
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

	// configPath is the --config flag value; empty selects the default.
	configPath string
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
		Use:          "virtualcv",
		Short:        "virtualcv renders an interactive CV as an explorable graph",
		Long:         `virtualcv manages a CV as a tree of nodes - profile, categories, items, skills - and renders it as a radial graph or a flat document. It ships the API server behind the editor as well as offline rendering commands.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/virtualcv/config.toml)")

	// Attach the logger to the command context so nested helpers can pick
	// it up without threading the CLI struct around.
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	// Register all subcommands
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.documentCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// loadConfig reads the configuration honoring the --config flag.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(backend, nil, c.Logger), nil
}

// newCache selects the artifact cache backend: disabled, shared Redis when
// configured, or the on-disk default.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return selectCache(ctx, cfg)
}

// selectCache maps config onto a cache backend. Redis wins when configured
// so multiple machines share layouts and artifacts; otherwise the configured
// directory, falling back to the XDG cache dir.
func selectCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if cfg.Redis.Addr != "" {
		return cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// apiClient creates a CV API client, attaching the stored session token if
// one exists.
func (c *CLI) apiClient(apiURL string) (*client.Client, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	api, err := client.New(apiURL, "", cfg.CacheTTL())
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	if store, err := session.NewCLIStore(); err == nil {
		if sess, err := store.GetSession(context.Background()); err == nil && sess != nil {
			api.SetToken(sess.Token)
		}
	}
	return api, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/virtualcv/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// pipelineSource picks the data source: a local file when --file is set,
// otherwise the API.
func (c *CLI) pipelineSource(file, apiURL string) (pipeline.Source, error) {
	if file != "" {
		return pipeline.FileSource{Path: file}, nil
	}
	api, err := c.apiClient(apiURL)
	if err != nil {
		return nil, err
	}
	return pipeline.APISource{Client: api}, nil
}
