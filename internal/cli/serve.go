package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/plancheck"
	"github.com/aretw0/plancheck/internal/config"
	httpAdapter "github.com/aretw0/plancheck/pkg/adapters/http"
	"github.com/aretw0/plancheck/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions configures the report server.
type ServeOptions struct {
	Config config.Config
	Stdout io.Writer
	Logger *slog.Logger
	// Listener overrides Config.HTTP.Addr; used by tests.
	Listener net.Listener
}

// Serve exposes POST /checks, stored reports and metrics until ctx is done.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger := opts.Logger
	b, err := openBackends(opts.Config)
	if err != nil {
		return err
	}
	defer b.Close()
	if b.Store == nil {
		return fmt.Errorf("serve needs a report store, store.driver is %q", opts.Config.Store.Driver)
	}

	metrics := observability.NewMetrics()
	checkerOpts := append(checkerOptions(opts.Config, b, logger),
		plancheck.WithLifecycleHooks(metrics.Hooks()),
		plancheck.WithLifecycleHooks(observability.LoggingHooks(logger)),
	)
	checker, err := plancheck.New(checkerOpts...)
	if err != nil {
		return err
	}
	defer checker.Close()

	srv := &http.Server{
		Addr: opts.Config.HTTP.Addr,
		Handler: httpAdapter.NewHandler(b.Store,
			httpAdapter.WithChecker(checker),
			httpAdapter.WithMetrics(metrics.Handler()),
			httpAdapter.WithVersion(plancheck.Version),
			httpAdapter.WithLogger(logger),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln := opts.Listener
	if ln == nil {
		if ln, err = net.Listen("tcp", srv.Addr); err != nil {
			return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
		}
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(opts.Stdout, "Serving plancheck on %s (workspace %s)", ln.Addr(), checker.Workspace())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
		_ = srv.Close()
	}
	printSystemMessage(opts.Stdout, "Server stopped gracefully")
	return nil
}
