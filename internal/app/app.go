package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/plugmarket/plugmarket/internal/config"
	"github.com/plugmarket/plugmarket/internal/github"
	"github.com/plugmarket/plugmarket/internal/httpserver"
	"github.com/plugmarket/plugmarket/internal/httpserver/deps"
	"github.com/plugmarket/plugmarket/internal/index"
	"github.com/plugmarket/plugmarket/internal/logger"
	"github.com/plugmarket/plugmarket/internal/redis"
	"github.com/plugmarket/plugmarket/internal/scheduler"
	"github.com/plugmarket/plugmarket/internal/sources/catalog"
	redisstore "github.com/plugmarket/plugmarket/internal/store/redis"
	"github.com/plugmarket/plugmarket/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	memIndex    *index.MemoryIndex
	refresher   *scheduler.IndexRefresher
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	cat, err := catalog.Load(cfg.CategoryFile)
	if err != nil {
		loggerClient.Errorf("Failed to load category catalog: %v", err)
		os.Exit(1)
	}

	// Redis is optional: without it, submission reservations and the
	// index cache are disabled but submissions still work.
	var redisClient *goredis.Client
	var store *redisstore.Store
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisClient, err = redis.New(redis.ConnectOptions{
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
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		store = redisstore.NewStore(redisClient)
	} else {
		loggerClient.Info("redis not configured, submission reservations disabled")
	}

	memIndex := index.NewMemoryIndex()

	// The Contents client needs a token. Without one the service comes up
	// read-degraded: submissions answer 500 until a token is provided.
	var contents *github.Client
	var refresher *scheduler.IndexRefresher
	var refreshTrigger chan struct{}
	if cfg.GitHubToken != "" {
		contents = github.New(github.Options{
			Token:   cfg.GitHubToken,
			Repo:    cfg.GitHubRepo,
			Branch:  cfg.GitHubBranch,
			BaseURL: cfg.GitHubAPIURL,
		}, loggerClient)

		refreshTrigger = make(chan struct{}, 1)
		refresher = scheduler.NewIndexRefresher(
			contents,
			cfg.IndexPath,
			store,
			memIndex,
			loggerClient,
			cfg.RefreshInterval,
			refreshTrigger,
		)
	} else {
		loggerClient.Warn("github token not configured, submissions will be rejected")
	}

	d := deps.Deps{
		Logger:           loggerClient,
		StartTime:        time.Now(),
		Version:          version.Version,
		Commit:           version.Commit,
		BuildDate:        version.BuildDate,
		GoVersion:        version.GoVersion,
		TimeNow:          time.Now,
		AllowedHosts:     cfg.AllowedHosts,
		AllowedCIDRS:     cfg.AllowedCIDRS,
		TrustProxy:       cfg.TrustProxy,
		RedisClient:      redisClient,
		Store:            store,
		MemoryIndex:      memIndex,
		Contents:         contents,
		Catalog:          cat,
		DownloadBaseURL:  cfg.DownloadBaseURL,
		IndexPath:        cfg.IndexPath,
		IndexMaxRetries:  cfg.IndexMaxRetries,
		LegacyWriteOrder: cfg.LegacyWriteOrder,
		LockTTL:          cfg.LockTTL,
		RefreshTrigger:   refreshTrigger,
		RateBurst:        cfg.RateBurst,
		RatePerMin:       cfg.RatePerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		memIndex:    memIndex,
		refresher:   refresher,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting plugmarket v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("plugmarket %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.refresher != nil {
		if err := a.refresher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start index refresher: %w", err)
		}
		a.logger.Info("index refresher started",
			logger.Duration("interval", a.cfg.RefreshInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.refresher != nil {
		a.refresher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ plugmarket stopped cleanly")
	return nil
}
