package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guestbook/internal/config"
	"guestbook/internal/repo"
	"guestbook/migrations"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// App is the process-wide application context: store, cache and router.
// Build it once with New and share it between requests.
type App struct {
	cfg      config.Config
	log      zerolog.Logger
	db       *pgxpool.Pool
	kv       *badger.DB
	kvRepo   *repo.BadgerEntryRepo
	redis    *redis.Client
	entries  repo.EntryRepo
	registry *prometheus.Registry
	router   *gin.Engine
}

func New(cfg config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	if err := a.openStore(); err != nil {
		_ = a.close()
		return nil, err
	}

	if cfg.Redis.Enabled() {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			_ = a.close()
			return nil, err
		}
		a.redis = rdb
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.router = newRouter(a)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Close releases the cache and the store. It returns ctx's error if ctx ends
// first; the release keeps running in the background.
func (a *App) Close(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- a.close() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("app close: %w", ctx.Err())
	}
}

func (a *App) close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.kvRepo != nil {
		errs = append(errs, a.kvRepo.Close())
	}
	if a.kv != nil {
		errs = append(errs, a.kv.Close())
	}
	if a.db != nil {
		a.db.Close()
	}
	return errors.Join(errs...)
}

func (a *App) openStore() error {
	switch a.cfg.Store.Driver {
	case config.DriverBadger:
		kv, err := newBadger(a.cfg.Store.BadgerPath, a.log)
		if err != nil {
			return err
		}
		a.kv = kv
		r, err := repo.NewBadgerEntryRepo(kv)
		if err != nil {
			return err
		}
		a.kvRepo = r
		a.entries = r
	default:
		db, err := newPostgres(a.cfg.PG.DSN)
		if err != nil {
			return err
		}
		a.db = db
		if err := runMigrations(db, a.log); err != nil {
			return err
		}
		a.entries = repo.NewPGEntryRepo(db)
	}
	a.log.Info().Str("driver", a.cfg.Store.Driver).Msg("entry store ready")
	return nil
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newBadger(path string, log zerolog.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{log: log.With().Str("component", "badger").Logger()})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open %s: %w", path, err)
	}
	return db, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// runMigrations applies the embedded goose migrations.
func runMigrations(pool *pgxpool.Pool, log zerolog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		log.Info().
			Str("migration", r.Source.Path).
			Dur("took", r.Duration).
			Msg("migration applied")
	}
	return nil
}

func newRouter(a *App) *gin.Engine {
	if a.cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, a)
	return r
}

// badgerLogger routes badger's internal logging through zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.log.Error().Msgf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.log.Warn().Msgf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.log.Debug().Msgf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.log.Debug().Msgf(f, v...) }
