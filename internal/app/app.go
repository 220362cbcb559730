package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/bookmarks/internal/config"
	"github.com/MrSnakeDoc/bookmarks/internal/connect"
	"github.com/MrSnakeDoc/bookmarks/internal/domain"
	"github.com/MrSnakeDoc/bookmarks/internal/httpserver"
	"github.com/MrSnakeDoc/bookmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarks/internal/httpserver/mw"
	"github.com/MrSnakeDoc/bookmarks/internal/logger"
	"github.com/MrSnakeDoc/bookmarks/internal/seed"
	redisstore "github.com/MrSnakeDoc/bookmarks/internal/store/redis"
	"github.com/MrSnakeDoc/bookmarks/internal/store/sqlite"
	"github.com/MrSnakeDoc/bookmarks/internal/utils"
	"github.com/MrSnakeDoc/bookmarks/internal/version"
)

// backend is a store the app owns and must close on shutdown.
type backend interface {
	domain.Store
	io.Closer
}

type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server
	store  backend
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	loggerClient.Debugf("cfg: %+v", cfg.Redacted())

	// Open the store early - fail fast if unavailable
	store, addr, err := openStore(cfg, loggerClient)
	if err != nil {
		loggerClient.Error("failed to open store", logger.String("store", cfg.Store), logger.Error(err))
		os.Exit(1)
	}

	err = connect.WaitReady(context.Background(), cfg.Store, addr, store, connect.Options{
		ConnectTimeout: cfg.ConnectTimeout,
		RetryInterval:  cfg.RetryInterval,
		MaxWait:        cfg.MaxWait,
		PingTimeout:    cfg.PingTimeout,
		WarnThreshold:  cfg.WarnThreshold,
	}, loggerClient)
	if err != nil {
		utils.MustClose(store, cfg.Store, loggerClient)
		loggerClient.Error("store not reachable", logger.Error(err))
		os.Exit(1)
	}

	service := domain.NewBookmarkService(store, domain.NewSanitizer(), loggerClient.With(logger.String("component", "bookmarks")))

	if cfg.SeedFile != "" {
		if err := applySeed(cfg.SeedFile, service, loggerClient); err != nil {
			utils.MustClose(store, cfg.Store, loggerClient)
			loggerClient.Error("failed to seed store", logger.String("file", cfg.SeedFile), logger.Error(err))
			os.Exit(1)
		}
	}

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		Service:        service,
		StoreName:      cfg.Store,
		APIToken:       cfg.APIToken,
		RequestTimeout: cfg.RequestTimeout,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		RateLimit: mw.RateLimitConfig{
			Burst:      cfg.RateLimitBurst,
			PerMinute:  cfg.RateLimitPerMin,
			MaxEntries: 10_000,
			TrustProxy: cfg.TrustProxy,
		},
	}

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: httpserver.New(cfg.ListenPort, d),
		store:  store,
	}
}

// openStore builds the configured backend. addr only labels log lines.
func openStore(cfg *config.Config, log logger.Logger) (backend, string, error) {
	switch cfg.Store {
	case config.StoreRedis:
		client := redisstore.NewClient(redisstore.Options{
			Addr:         cfg.RedisAddr,
			User:         cfg.RedisUser,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  cfg.RedisDT,
			ReadTimeout:  cfg.RedisRT,
			WriteTimeout: cfg.RedisWT,
			PoolSize:     cfg.RedisPoolSize,
		})
		return redisstore.NewStore(client), cfg.RedisAddr, nil
	case config.StoreSQLite:
		s, err := sqlite.Open(cfg.SQLitePath, log)
		if err != nil {
			return nil, "", err
		}
		return s, cfg.SQLitePath, nil
	default:
		return nil, "", fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func applySeed(path string, service *domain.BookmarkService, log logger.Logger) error {
	file, err := seed.NewLoader(path).Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	_, err = seed.Apply(ctx, service, file, log)
	return err
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting bookmarks %s on %s (store=%s)", version.String(), a.cfg.ListenPort, a.cfg.Store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer utils.MustClose(a.store, a.cfg.Store, a.logger)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ bookmarks stopped cleanly")
	return nil
}
