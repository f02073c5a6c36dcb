package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/activity"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/time/rate"
)

// CatalogStore is the store the catalog routes run against.
type CatalogStore interface {
	models.Repository[models.Item]
}

// Options configures [NewCatalogRouter].
type Options struct {
	Config   *shared.Config
	Store    CatalogStore
	Activity activity.Recorder // nil disables recording and the activity route
	Logger   *log.Logger
}

// NewCatalogRouter assembles the middleware stack and every catalog route.
func NewCatalogRouter(opts Options) *BasicRouter {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	cfg := opts.Config.Server

	router := NewBasicRouter()
	router.Use(Recover(opts.Logger), RequestLogger(opts.Logger))
	if cfg.RateLimit > 0 {
		router.Use(RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))))
	}
	if opts.Activity != nil {
		router.Use(RecordActivity(opts.Activity, opts.Logger))
		router.Handler(NewActivityHandler(opts.Activity, opts.Logger))
	}

	router.Handler(NewHealthHandler(opts.Store))
	router.Handler(NewItemHandler(opts.Store, ResourceConfig{
		Resource:  cfg.Resource,
		BodyLimit: cfg.BodyLimit,
		Logger:    opts.Logger,
	}))

	return router
}

// Serve runs srv on ln until ctx is cancelled, then shuts it down within timeout.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, logger *log.Logger) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", timeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
