package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/desertthunder/crate/internal/activity"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/server"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/store"
	"github.com/urfave/cli/v3"
)

// Serve runs the catalog server until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.serveConfig(cmd)
	if err != nil {
		return err
	}

	level, err := shared.ParseLogLevel(config.Log.Level)
	if err != nil {
		return err
	}
	shared.SetLogLevel(r.logger, level)

	handler, closeFn, err := r.buildCatalog(config)
	if err != nil {
		return err
	}
	defer closeFn()

	ln, err := net.Listen("tcp", config.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", config.Server.Addr(), err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, srv, ln, config.Server.Shutdown(), r.logger)
}

// serveConfig loads the config and applies the serve flag overrides.
func (r *Runner) serveConfig(cmd *cli.Command) (*shared.Config, error) {
	loaded, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	config := *loaded

	if addr := cmd.String("addr"); addr != "" {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("%w: --addr %q: %v", shared.ErrInvalidFlag, addr, err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("%w: --addr port %q is not a number", shared.ErrInvalidFlag, port)
		}
		config.Server.Host = host
		config.Server.Port = p
	}
	if seed := cmd.String("seed"); seed != "" {
		config.Seed.Path = seed
	}
	if level := cmd.String("log-level"); level != "" {
		config.Log.Level = level
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// buildCatalog creates the guarded store, seeds it, opens the activity recorder and
// assembles the router. The returned func releases the recorder.
func (r *Runner) buildCatalog(config *shared.Config) (http.Handler, func(), error) {
	guard := store.NewItemGuard()

	if path := config.Seed.Path; path != "" {
		items, err := store.LoadSeed[models.Item](path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load seed: %w", err)
		}
		stored, err := guard.Seed(items)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		r.logger.Info("seeded catalog", "path", path, "entities", len(stored))
	}

	recorder, err := activity.New(config, r.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open activity backend: %w", err)
	}

	closeFn := func() {
		if recorder == nil {
			return
		}
		if err := recorder.Close(); err != nil {
			r.logger.Warn("failed to close activity backend", "error", err)
		}
	}

	router := server.NewCatalogRouter(server.Options{
		Config:   config,
		Store:    guard,
		Activity: recorder,
		Logger:   r.logger,
	})

	r.logger.Info("catalog ready",
		"resource", "/"+config.Server.Resource,
		"activity", config.Activity.Backend,
		"rate_limit", config.Server.RateLimit,
	)
	return router, closeFn, nil
}
