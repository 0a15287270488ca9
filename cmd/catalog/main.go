package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/internal/catalog/assets"
	"github.com/narwhalmedia/catalog/internal/catalog/handler"
	"github.com/narwhalmedia/catalog/internal/catalog/ingest"
	"github.com/narwhalmedia/catalog/internal/catalog/repository"
	"github.com/narwhalmedia/catalog/internal/catalog/service"
	"github.com/narwhalmedia/catalog/internal/metrics"
	"github.com/narwhalmedia/catalog/pkg/auth"
	"github.com/narwhalmedia/catalog/pkg/config"
	"github.com/narwhalmedia/catalog/pkg/database"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
	"github.com/narwhalmedia/catalog/pkg/logger"
)

const pageTimeout = 30 * time.Second

func main() {
	// A missing .env file is fine, the environment may already be set
	_ = godotenv.Load()

	cfg := config.MustLoadServiceConfig("catalog", config.GetDefaults())

	zapLogger, err := logger.NewFromConfig(cfg.Logger.ToLoggerConfig())
	if err != nil {
		panic(err)
	}
	defer func() { _ = zapLogger.Sync() }()
	var log interfaces.Logger = zapLogger

	log.Info("Catalog starting",
		interfaces.String("version", config.GetServiceVersion(&cfg.Service)),
		interfaces.String("environment", cfg.Service.Environment))

	if insecure := cfg.InsecureDefaults(); len(insecure) > 0 {
		if config.IsProduction(&cfg.Service) {
			log.Error("Development defaults are in use in production, override them", interfaces.Any("settings", insecure))
		} else {
			log.Warn("Running with development defaults", interfaces.Any("settings", insecure))
		}
	}

	log.Info("Connecting to database...", interfaces.String("driver", cfg.Database.Driver))
	db, err := database.Open(cfg.Database.ToDatabaseConfig(), log)
	if err != nil {
		log.Fatal("Failed to connect to database", interfaces.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	log.Info("Running database migrations...")
	if err := database.RunMigrations(db, log); err != nil {
		log.Fatal("Failed to run migrations", interfaces.Error(err))
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
	}

	store, err := assets.NewStore(assets.Config{
		BaseDir:  cfg.Storage.BaseDir,
		VideoDir: cfg.Storage.VideoDir,
		CoverDir: cfg.Storage.CoverDir,
	}, log, m)
	if err != nil {
		log.Fatal("Failed to prepare storage directories", interfaces.Error(err))
	}

	fetcher, err := newDriveFetcher(cfg.Drive, log)
	if err != nil {
		log.Fatal("Failed to create Google Drive client", interfaces.Error(err))
	}

	repo := repository.NewGormRepository(db, log)
	acquirer := ingest.NewAcquirer(store, fetcher, cfg.Drive.Timeout, log, m)
	catalog := service.NewCatalogService(repo, store, acquirer, log)

	authenticator, err := auth.NewAuthenticator(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, cfg.Auth.AdminPasswordHash)
	if err != nil {
		log.Fatal("Failed to configure admin credentials", interfaces.Error(err))
	}
	sessions, err := auth.NewSessionManager(auth.Config{
		Secret:       cfg.Auth.SessionSecret,
		Issuer:       cfg.Service.Name,
		TTL:          cfg.Auth.SessionTTL,
		CookieName:   cfg.Auth.CookieName,
		CookieSecure: cfg.Auth.CookieSecure,
	})
	if err != nil {
		log.Fatal("Failed to configure sessions", interfaces.Error(err))
	}

	routerCfg := handler.Config{
		Catalog:        catalog,
		Authenticator:  authenticator,
		Sessions:       sessions,
		Logger:         log,
		Metrics:        m,
		CoverRoot:      store.CoverRoot(),
		MaxUploadBytes: cfg.Service.MaxUploadBytes,
		RequestTimeout: pageTimeout,
		Health:         pingDatabase(db),
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsPath = cfg.Metrics.Path
	}
	router, err := handler.NewRouter(routerCfg)
	if err != nil {
		log.Fatal("Failed to build router", interfaces.Error(err))
	}

	server := &http.Server{
		Addr:              config.GetListenAddress(&cfg.Service),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Service.ReadTimeout,
		WriteTimeout:      cfg.Service.WriteTimeout,
	}

	go func() {
		log.Info("HTTP server starting",
			interfaces.String("address", server.Addr),
			interfaces.String("base_dir", store.BaseDir()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", interfaces.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down catalog...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", interfaces.Error(err))
	}

	log.Info("Catalog stopped")
}

// newDriveFetcher uses the Drive API when a key is configured and the public
// download endpoint otherwise.
func newDriveFetcher(cfg config.DriveConfig, log interfaces.Logger) (ingest.DriveFetcher, error) {
	if cfg.APIKey != "" {
		log.Info("Using Google Drive API for downloads")
		return ingest.NewAPIDriveFetcher(context.Background(), cfg.APIKey, cfg.UserAgent, log)
	}
	return ingest.NewHTTPDriveFetcher(log, ingest.WithUserAgent(cfg.UserAgent)), nil
}

func pingDatabase(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
