// Package cli holds the problemlog subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dedirosandiaj/problem-log-new/internal/config"
	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/observability"
	"github.com/dedirosandiaj/problem-log-new/internal/persistence"
)

// systemActor attributes CLI changes in the activity log.
var systemActor = domain.Actor{Name: "System", Role: "CLI"}

// runtime is the shared infrastructure a command runs against.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
	redis  *persistence.Redis
}

// bootstrap loads configuration and opens Postgres. Redis is opened only when withRedis is set.
func bootstrap(ctx context.Context, withRedis bool) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger, pg: pg}
	if withRedis {
		rt.redis = persistence.NewRedis(ctx, cfg.Redis, logger)
	}
	return rt, nil
}

// requireDatabase fails commands that cannot work without Postgres.
func (rt *runtime) requireDatabase() error {
	if rt.pg.PoolHandle() == nil {
		return errors.New("POSTGRES_DSN is required for this command")
	}
	return nil
}

func (rt *runtime) close() {
	rt.redis.Close()
	rt.pg.Close()
	_ = rt.logger.Sync()
}
