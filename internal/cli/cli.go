// Package cli implements the depscope command-line interface.
//
// The main commands are:
//   - analyze: build the dependency graph described by a config file and
//     print trees, diagrams, and snapshots
//   - serve: expose the same analysis over an HTTP API
//   - cache: manage the registry response cache
//
// All commands support --verbose (-v) for debug-level logging. The logger
// lives on the CLI struct and is shared by all commands.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/internal/config"
	"github.com/matzehuels/depscope/pkg/buildinfo"
	"github.com/matzehuels/depscope/pkg/cache"
	"github.com/matzehuels/depscope/pkg/depgraph"
	"github.com/matzehuels/depscope/pkg/source/fixture"
	"github.com/matzehuels/depscope/pkg/source/npm"
)

// appName is the application name used for directories and display.
const appName = "depscope"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Depscope analyzes package dependency closures",
		Long:         `Depscope discovers the direct and transitive dependencies of a package, detects dependency cycles, and renders the result as an ASCII tree or a Graphviz diagram.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// progress tracks the start time of an operation and logs completion with
// elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since the tracker was created.
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// newSource builds the dependency source selected by the configuration.
// The returned fixture repository is non-nil only for the fixture source;
// the analyze command uses it to ingest every fixture package before
// reverse dependency queries.
func (c *CLI) newSource(ctx context.Context, cfg *config.Config) (depgraph.Source, *fixture.Repository, error) {
	switch cfg.Source {
	case config.SourceFixture:
		repo, err := fixture.Load(cfg.FixturePath)
		if err != nil {
			return nil, nil, err
		}
		c.Logger.Debugf("loaded fixture %s: %d packages", cfg.FixturePath, repo.Len())
		return repo, repo, nil
	default:
		store, err := c.newCache(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		client := npm.NewClient(cfg.RegistryURL, store, cfg.Cache.TTLDuration(),
			npm.WithVersionHint(cfg.Package, cfg.Version))
		return client, nil, nil
	}
}

// newCache builds the cache backend selected by the configuration.
// Cache setup failures degrade to a null cache rather than aborting, except
// for an unreachable Redis, which is a configuration-level problem.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.Cache.RedisAddr})
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		store, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warnf("file cache disabled: %v", err)
			return cache.NewNullCache(), nil
		}
		return store, nil
	}
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/depscope/).
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
