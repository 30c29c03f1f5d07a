package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/skillgraph"
	"github.com/aretw0/skillgraph/internal/config"
	"github.com/aretw0/skillgraph/pkg/adapters/file"
	"github.com/aretw0/skillgraph/pkg/adapters/memory"
	"github.com/aretw0/skillgraph/pkg/adapters/postgres"
	"github.com/aretw0/skillgraph/pkg/adapters/redis"
	"github.com/aretw0/skillgraph/pkg/adapters/sqlite"
	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/persistence/middleware"
	"github.com/aretw0/skillgraph/pkg/ports"
)

// Backend bundles the graph store and locker picked by configuration.
type Backend struct {
	Store  ports.GraphStore
	Locker ports.Locker
	Close  func()
}

// OpenBackend connects the store named by cfg.Backend. Redis also provides
// the distributed locker; every other backend locks in process.
func OpenBackend(ctx context.Context, cfg config.StoreConfig) (*Backend, error) {
	b := &Backend{Locker: memory.NewLocker(), Close: func() {}}
	switch cfg.Backend {
	case config.BackendMemory:
		b.Store = memory.NewStore()
	case config.BackendFile:
		format := file.JSON
		if cfg.Format != "" {
			format = file.Format(cfg.Format)
		}
		b.Store = file.New(cfg.Dir, file.WithFormat(format))
	case config.BackendRedis:
		s := redis.New(cfg.RedisAddr, "", 0, redis.WithPrefix(cfg.RedisPrefix), redis.WithTTL(cfg.RedisTTL))
		if err := s.Client().Ping(ctx).Err(); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		b.Store = s
		b.Locker = redis.NewLocker(s.Client(), cfg.RedisPrefix)
		b.Close = func() { _ = s.Close() }
	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.Store = s
		b.Close = func() { _ = s.Close() }
	case config.BackendPostgres:
		s, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		b.Store = s
		b.Close = s.Close
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	mws, err := storeMiddleware(cfg)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Store = middleware.Chain(b.Store, mws...)
	return b, nil
}

// storeMiddleware masks before it encrypts, so sealed documents never
// carry sensitive values either.
func storeMiddleware(cfg config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.MaskPatterns) > 0 {
		mw, err := middleware.NewPIIMiddleware(cfg.MaskPatterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	active, fallback, err := cfg.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return mws, nil
}

// NewEngine builds an engine over the configured backend. The caller owns
// the returned Backend and must Close it.
func NewEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, hooks domain.SkillHooks) (*skillgraph.Engine, *Backend, error) {
	b, err := OpenBackend(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing store: %w", err)
	}
	logger.Debug("store ready", "backend", cfg.Store.Backend)

	engine := skillgraph.New(
		skillgraph.WithStore(b.Store),
		skillgraph.WithLocker(b.Locker),
		skillgraph.WithLogger(logger),
		skillgraph.WithHooks(hooks),
	)
	return engine, b, nil
}
