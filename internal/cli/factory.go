package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/plancheck"
	"github.com/aretw0/plancheck/internal/config"
	"github.com/aretw0/plancheck/pkg/adapters/file"
	"github.com/aretw0/plancheck/pkg/adapters/memory"
	"github.com/aretw0/plancheck/pkg/adapters/redis"
	"github.com/aretw0/plancheck/pkg/domain"
	"github.com/aretw0/plancheck/pkg/persistence/middleware"
	"github.com/aretw0/plancheck/pkg/ports"
)

// backends are the report store and workspace lock selected by config.
type backends struct {
	Store  ports.ReportStore
	Locker ports.Locker
	close  func() error
}

func (b *backends) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// openBackends maps store.driver onto adapters. The redis driver shares one client
// between the store and the lock so that runs on different hosts serialize on the
// same workspace key.
func openBackends(cfg config.Config) (*backends, error) {
	b, err := selectBackends(cfg)
	if err != nil || b.Store == nil {
		return b, err
	}

	redact, err := middleware.NewRedactMiddleware(cfg.Store.Redact)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.Store = middleware.Chain(b.Store, redact, middleware.NewTruncateMiddleware(cfg.Store.MaxLogBytes))
	return b, nil
}

func selectBackends(cfg config.Config) (*backends, error) {
	switch cfg.Store.Driver {
	case config.StoreNone:
		return &backends{Locker: memory.NewLocker()}, nil
	case config.StoreMemory:
		return &backends{Store: memory.NewStore(), Locker: memory.NewLocker()}, nil
	case config.StoreFile:
		return &backends{Store: file.New(cfg.Store.Path), Locker: memory.NewLocker()}, nil
	case config.StoreRedis:
		rc := cfg.Store.Redis
		store := redis.New(rc.Addr, rc.Password, rc.DB, redis.WithPrefix(rc.Prefix+"run:"), redis.WithTTL(rc.TTL))
		return &backends{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), rc.Prefix),
			close:  store.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// checkerOptions translates the config into facade options.
func checkerOptions(cfg config.Config, b *backends, logger *slog.Logger) []plancheck.Option {
	opts := []plancheck.Option{
		plancheck.WithSolver(cfg.Solver),
		plancheck.WithValidator(cfg.Validator.Tool),
		plancheck.WithMarker(cfg.Validator.Marker),
		plancheck.WithGracePeriod(cfg.GracePeriod),
		plancheck.WithArtifact(cfg.Artifact),
		plancheck.WithLogger(logger),
		plancheck.WithLocker(b.Locker, 0),
	}
	if cfg.Workspace != "" {
		opts = append(opts, plancheck.WithWorkspace(cfg.Workspace))
	}
	if b.Store != nil {
		opts = append(opts, plancheck.WithStore(b.Store))
	}
	return opts
}

// ExitCode maps a Run outcome onto the process exit status.
func ExitCode(report domain.RunReport, err error) int {
	if err != nil {
		return domain.ExitSolveFailed
	}
	return report.ExitCode
}

// describe turns infrastructure errors into an operator-facing line.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrLockAcquire):
		return "Another check is using the workspace: " + err.Error()
	default:
		return err.Error()
	}
}
