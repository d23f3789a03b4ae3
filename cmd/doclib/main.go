package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/doclib/internal/config"
	dbRedis "github.com/kailas-cloud/doclib/internal/db/redis"
	logpkg "github.com/kailas-cloud/doclib/internal/logger"
	"github.com/kailas-cloud/doclib/internal/metrics"
	directoryrepo "github.com/kailas-cloud/doclib/internal/repository/directory"
	noderepo "github.com/kailas-cloud/doclib/internal/repository/node"
	permissionrepo "github.com/kailas-cloud/doclib/internal/repository/permission"
	preferencerepo "github.com/kailas-cloud/doclib/internal/repository/preference"
	thumbnailrepo "github.com/kailas-cloud/doclib/internal/repository/thumbnail"
	chiTransport "github.com/kailas-cloud/doclib/internal/transport/chi"
	actionuc "github.com/kailas-cloud/doclib/internal/usecase/action"
	"github.com/kailas-cloud/doclib/internal/usecase/evaluator"
	favouriteuc "github.com/kailas-cloud/doclib/internal/usecase/favourite"
	"github.com/kailas-cloud/doclib/internal/usecase/filterquery"
	healthuc "github.com/kailas-cloud/doclib/internal/usecase/health"
	listinguc "github.com/kailas-cloud/doclib/internal/usecase/listing"
	"github.com/kailas-cloud/doclib/internal/usecase/resolver"
	siteuc "github.com/kailas-cloud/doclib/internal/usecase/site"
	"github.com/kailas-cloud/doclib/internal/version"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting doclib API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Bool("auth_enabled", cfg.Auth.JWTSecret != ""),
	)
	if cfg.Auth.JWTSecret == "" && len(cfg.Auth.Admins) > 0 {
		logger.Warn("Token checks are off, configured admins are ignored")
	}

	// Valkey with the search module speaks the same FT.* and JSON.* commands.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterListingMetrics()

	nodes := noderepo.New(store)
	if err := nodes.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create node index", zap.Error(err))
	}
	if _, err := nodes.EnsureRoot(ctx); err != nil {
		logger.Fatal("Failed to create repository root", zap.Error(err))
	}

	dir := directoryrepo.New(store)
	acl := permissionrepo.New(store, cfg.Auth.EffectiveAdmins())
	prefs := preferencerepo.New(store)

	// Pass a nil interface, not a typed nil pointer, when thumbnails are off.
	var thumbs evaluator.ThumbnailQueue
	if cfg.Thumbnails.Enabled {
		thumbs = thumbnailrepo.New(store, cfg.Thumbnails.Rendition, time.Duration(cfg.Thumbnails.PendingSec)*time.Second)
	}

	resolverSvc := resolver.New(nodes, dir, acl)
	builder := filterquery.New(prefs, nodes, filterquery.Options{
		MaxResults:  cfg.Search.MaxResults,
		RecentDays:  cfg.Search.RecentDays,
		RecentLimit: cfg.Search.RecentLimit,
	})
	eval := evaluator.New(nodes, acl, thumbs, metrics.ThumbnailRequestsTotal).
		WithThumbnailTimeout(time.Duration(cfg.Thumbnails.TimeoutSec) * time.Second)

	listingSvc := listinguc.New(resolverSvc, builder, nodes, eval, dir).
		WithMetrics(metrics.DirectoryLookupsTotal, metrics.ListingItemsTotal)
	actionSvc := actionuc.New(resolverSvc, nodes, acl).
		WithMaxItems(cfg.Search.MaxActionItems).
		WithMetrics(metrics.ActionItemsTotal)
	favouriteSvc := favouriteuc.New(prefs, nodes)
	siteSvc := siteuc.New(noderepo.RootID, nodes, dir, acl)
	healthSvc := healthuc.New(store, nodes)

	server := chiTransport.NewServer(listingSvc, actionSvc, favouriteSvc, siteSvc, healthSvc, chiTransport.Options{
		DefaultPageSize:  cfg.Search.DefaultPageSize,
		MaxPageSize:      cfg.Search.MaxPageSize,
		MaxActionItems:   cfg.Search.MaxActionItems,
		DefaultContainer: cfg.Library.DefaultContainer,
	})

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.CORS(cfg.CORS.AllowedOrigins, time.Duration(cfg.CORS.MaxAgeSec)*time.Second))
	r.Use(chiTransport.BearerAuthMiddleware(chiTransport.AuthConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.Issuer,
	}))
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
