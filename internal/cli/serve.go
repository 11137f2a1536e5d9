package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/internal/config"
	"github.com/matzehuels/depscope/internal/server"
	"github.com/matzehuels/depscope/pkg/depgraph"
	"github.com/matzehuels/depscope/pkg/source/fixture"
	"github.com/matzehuels/depscope/pkg/source/npm"
)

// serveCommand creates the serve command, exposing analysis over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		cfgPath string
		addr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dependency analysis over an HTTP API",
		Long: `Serve starts an HTTP API that analyzes packages on demand using the
source configured in the config file.

Example:
  depscope serve -c config.yaml --addr :8080
  curl 'localhost:8080/api/analyze?package=react'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				printError("%v", err)
				return err
			}
			return c.runServer(cmd.Context(), cfg, addr)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to the configuration file")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func (c *CLI) runServer(ctx context.Context, cfg *config.Config, addr string) error {
	factory, err := c.sourceFactory(ctx, cfg)
	if err != nil {
		printError("%v", err)
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(c.Logger, factory).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	c.Logger.Infof("listening on %s (source: %s)", addr, cfg.Source)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// sourceFactory prepares per-request dependency sources. The fixture
// repository is loaded once and shared; registry clients are created per
// request so version hints can vary.
func (c *CLI) sourceFactory(ctx context.Context, cfg *config.Config) (server.SourceFactory, error) {
	if cfg.Source == config.SourceFixture {
		repo, err := fixture.Load(cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		return func(pkg, version string) (depgraph.Source, error) {
			return repo, nil
		}, nil
	}

	store, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return func(pkg, version string) (depgraph.Source, error) {
		return npm.NewClient(cfg.RegistryURL, store, cfg.Cache.TTLDuration(),
			npm.WithVersionHint(pkg, version)), nil
	}, nil
}
