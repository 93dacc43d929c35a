package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/seek/internal/auth"
	"github.com/MrSnakeDoc/seek/internal/bangs"
	"github.com/MrSnakeDoc/seek/internal/config"
	"github.com/MrSnakeDoc/seek/internal/domain"
	"github.com/MrSnakeDoc/seek/internal/httpserver"
	"github.com/MrSnakeDoc/seek/internal/httpserver/deps"
	"github.com/MrSnakeDoc/seek/internal/index"
	"github.com/MrSnakeDoc/seek/internal/instant"
	"github.com/MrSnakeDoc/seek/internal/logger"
	"github.com/MrSnakeDoc/seek/internal/redis"
	"github.com/MrSnakeDoc/seek/internal/scheduler"
	"github.com/MrSnakeDoc/seek/internal/search"
	"github.com/MrSnakeDoc/seek/internal/store/postgres"
	redisstore "github.com/MrSnakeDoc/seek/internal/store/redis"
	"github.com/MrSnakeDoc/seek/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	pool        *pgxpool.Pool
	redisClient *goredis.Client
	reloader    *scheduler.CatalogReloader
	pruner      *scheduler.HistoryPruner
}

// NewLogger builds the process logger from the logging settings.
func NewLogger(cfg *config.Config) logger.Logger {
	return logger.NewWithFile(cfg.LogLevel, cfg.PrettyLog, logger.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
}

// ConnectPostgres opens the pool with the configured retry policy.
func ConnectPostgres(ctx context.Context, cfg *config.Config, log logger.Logger) (*pgxpool.Pool, error) {
	return postgres.Connect(ctx, postgres.ConnectOptions{
		URL:            cfg.DatabaseURL,
		MaxConns:       cfg.DBMaxConns,
		ConnectTimeout: cfg.DBConnectTimeout,
		RetryInterval:  cfg.DBRetryInterval,
	}, log)
}

func connectRedis(ctx context.Context, cfg *config.Config, log logger.Logger) (*goredis.Client, error) {
	return redis.New(ctx, redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, log)
}

// New connects the backing services and wires the HTTP server.
// Postgres is required. Without Redis the service runs uncached.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	pool, err := ConnectPostgres(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	if cfg.MigrateOnStart {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		loggerClient.Info("database migrations checked",
			logger.Int("applied", len(applied)))
	}

	redisClient, err := connectRedis(ctx, cfg, loggerClient)
	if err != nil {
		loggerClient.Warn("running without redis, caches and usage stats disabled",
			logger.Error(err))
		redisClient = nil
	}

	catalogIndex := index.NewCatalogIndex(domain.DefaultCatalog())

	// Interfaces stay nil when Redis is down; a typed nil pointer would not.
	var (
		store       *redisstore.Store
		bangCache   bangs.Cache
		searchCache search.Cache
		usage       deps.UsageCounter
		redisPinger deps.Pinger
	)
	if redisClient != nil {
		store = redisstore.NewStore(redisClient)
		bangCache, searchCache, usage, redisPinger = store, store, store, store

		// Restore the last catalog extras so the catalog is complete even when
		// the catalog file is unreadable right now.
		syncer := scheduler.NewRedisSyncer(store, catalogIndex, loggerClient)
		if err := syncer.Sync(ctx); err != nil {
			loggerClient.Warn("failed to sync catalog extras from redis",
				logger.Error(err))
		}
	}

	bangRepo := postgres.NewBangRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	historyRepo := postgres.NewHistoryRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	bangService := bangs.NewService(bangRepo, settingsRepo, bangCache, catalogIndex, cfg.BangCacheTTL, loggerClient)
	authService := auth.NewService(userRepo, auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL), loggerClient)

	searchClient, err := search.NewClient(search.Options{
		BaseURL:         cfg.SearxngURL,
		Timeout:         cfg.SearxngTimeout,
		RatePerSec:      cfg.SearxngRatePerSec,
		Burst:           cfg.SearxngBurst,
		BreakerFailures: uint32(max(cfg.SearxngBreakerFailures, 0)),
		BreakerTimeout:  cfg.SearxngBreakerTimeout,
		CacheTTL:        cfg.SearchCacheTTL,
	}, searchCache, loggerClient)
	if err != nil {
		pool.Close()
		return nil, err
	}

	var weather deps.WeatherLookup
	if cfg.WeatherEnabled {
		weather = instant.NewWeatherClient(cfg.GeocodingURL, cfg.ForecastURL, cfg.InstantTimeout, searchCache, loggerClient)
	} else {
		loggerClient.Info("weather answers disabled")
	}

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewCatalogReloader(
		cfg.CatalogFile,
		store,
		catalogIndex,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	pruner := scheduler.NewHistoryPruner(
		historyRepo,
		loggerClient,
		cfg.HistoryPruneEvery,
		cfg.HistoryRetention,
	)

	d := deps.Deps{
		Logger:             loggerClient,
		StartTime:          time.Now(),
		Version:            version.Version,
		Commit:             version.Commit,
		BuildDate:          version.BuildDate,
		GoVersion:          version.GoVersion,
		TimeNow:            time.Now,
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		AllowedOrigins:     cfg.AllowedOrigins,
		TrustProxy:         cfg.TrustProxy,
		RequestTimeout:     cfg.RequestTimeout,
		RateLimitBurst:     cfg.RateLimitBurst,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		FrontendURL:        cfg.FrontendURL,
		Catalog:            catalogIndex,
		Bangs:              bangService,
		Auth:               authService,
		Settings:           settingsRepo,
		History:            historyRepo,
		Search:             searchClient,
		Weather:            weather,
		Usage:              usage,
		Postgres:           pool,
		Redis:              redisPinger,
		ReloadTrigger:      reloadTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		pool:        pool,
		redisClient: redisClient,
		reloader:    reloader,
		pruner:      pruner,
	}, nil
}

// Run starts the background jobs and the HTTP server, then blocks until
// SIGINT/SIGTERM or a server error, and shuts everything down.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting %s on %s", version.String(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.reloader.Start(ctx); err != nil {
		a.close()
		return fmt.Errorf("failed to start catalog reloader: %w", err)
	}
	a.logger.Info("catalog reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	if err := a.pruner.Start(ctx); err != nil {
		a.reloader.Stop()
		a.close()
		return fmt.Errorf("failed to start history pruner: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.reloader.Stop()
	a.pruner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.close()
	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ seek stopped cleanly")
	return nil
}

func (a *App) close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}
	a.pool.Close()
	a.logger.Info("✅ Postgres pool closed")
}
