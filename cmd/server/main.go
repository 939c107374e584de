package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uxdj/backend/internal/ai"
	"github.com/uxdj/backend/internal/config"
	"github.com/uxdj/backend/internal/handler"
	"github.com/uxdj/backend/internal/imageguard"
	"github.com/uxdj/backend/internal/intake"
	"github.com/uxdj/backend/internal/logging"
	"github.com/uxdj/backend/internal/repository"
	"github.com/uxdj/backend/internal/service"
	"github.com/uxdj/backend/internal/storage"
	"github.com/uxdj/backend/pkg/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("load config failed", "error", err)
	}
	closeLog := logging.Setup(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	statsDB, err := repository.OpenStatsDB(ctx, cfg.Database.URL)
	if err != nil {
		logging.Fatal("failed to open stats database", "error", err)
	}
	defer statsDB.Close()

	mux := http.NewServeMux()

	// Image storage. "none" disables uploads and makes every generated
	// illustration the placeholder.
	var store storage.Storage
	switch cfg.Storage.Driver {
	case "s3":
		s3, err := storage.NewS3Storage(storage.S3Config{
			Bucket:        cfg.Storage.S3.Bucket,
			Region:        cfg.Storage.S3.Region,
			Endpoint:      cfg.Storage.S3.Endpoint,
			AccessKey:     cfg.Storage.S3.AccessKey,
			SecretKey:     cfg.Storage.S3.SecretKey,
			Prefix:        cfg.Storage.S3.Prefix,
			PublicBaseURL: cfg.Storage.S3.PublicBaseURL,
		}, slog.Default())
		if err != nil {
			logging.Fatal("failed to init s3 storage", "error", err)
		}
		store = s3
	case "local":
		local := storage.NewLocalStorage(cfg.Storage.LocalDir, cfg.Storage.LocalURLPrefix)
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.BaseDir()))))
		store = local
	}
	slog.Info("image storage configured", "driver", cfg.Storage.Driver)

	httpClient := &http.Client{Timeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second}
	var uploader imageguard.Uploader
	if store != nil {
		uploader = imageguard.NewStoreUploader(store, httpClient)
	}
	guard := imageguard.New(uploader, slog.Default())

	articleRepo := repository.NewPgArticleRepository(pool)
	adRepo := repository.NewPgAdRepository(pool)
	contactRepo := repository.NewPgContactRepository(pool)
	subscriberRepo := repository.NewPgSubscriberRepository(pool)
	popupRepo := repository.NewPgPopupRepository(pool)
	leadRepo := repository.NewPgPopupLeadRepository(pool)
	userRepo := repository.NewPgUserRepository(pool)
	statsRepo := repository.NewSqlxStatsRepository(statsDB)

	// Limiters
	contactLimiter := intake.NewRateLimiter(cfg.Intake.ContactQuota, cfg.Intake.ContactWindow)
	go contactLimiter.Run(ctx, cfg.Intake.CleanupInterval)
	var publicLimiter *intake.RateLimiter
	if cfg.Intake.PublicPerMinute > 0 {
		publicLimiter = intake.NewRateLimiter(cfg.Intake.PublicPerMinute, time.Minute)
		go publicLimiter.Run(ctx, cfg.Intake.CleanupInterval)
	}

	// AI clients stay nil without keys.
	var writer ai.Writer
	if cfg.AI.AnthropicKey != "" {
		writer = ai.NewLLMWriter(ai.WriterConfig{
			APIKey:      cfg.AI.AnthropicKey,
			Model:       cfg.AI.Model,
			MaxTokens:   cfg.AI.MaxTokens,
			Temperature: cfg.AI.Temperature,
		})
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set, article generation disabled")
	}
	var images ai.ImageGenerator
	if cfg.AI.OpenAIKey != "" {
		images = ai.NewImageClient(ai.ImageConfig{
			APIKey:  cfg.AI.OpenAIKey,
			BaseURL: cfg.AI.OpenAIBaseURL,
			Model:   cfg.AI.ImageModel,
			Timeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		})
	} else {
		slog.Warn("OPENAI_API_KEY not set, generated articles use the placeholder image")
	}
	extractor := ai.NewExtractor(httpClient)

	authService := service.NewAuthService(userRepo, auth.SessionSecretBytes(cfg.Auth.SessionSecret), cfg.Auth.SessionTTL)
	adService := service.NewAdService(adRepo)
	articleService := service.NewArticleService(articleRepo, guard)

	if cfg.Auth.AdminEmail != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			logging.Fatal("failed to ensure admin user", "error", err)
		}
	}

	routes := &handler.Routes{
		Health:         handler.NewHealthHandler(pool, cfg.Version, os.Getenv("GIT_COMMIT_SHA")),
		Public:         handler.NewPublicHandler(service.NewPublicService(articleRepo, adService)),
		Subscribers:    handler.NewSubscriberHandler(service.NewSubscriberService(subscriberRepo)),
		Contacts:       handler.NewContactHandler(service.NewContactService(contactRepo, contactLimiter), cfg.HTTP.TrustedProxies),
		Popups:         handler.NewPopupHandler(service.NewPopupService(popupRepo, leadRepo, subscriberRepo), cfg.HTTP.TrustedProxies),
		Articles:       handler.NewArticleHandler(articleService),
		Ads:            handler.NewAdHandler(adService),
		Users:          handler.NewAdminUserHandler(service.NewAdminUserService(userRepo)),
		Auth:           handler.NewAuthHandler(authService, cfg.Auth.CookieSecure),
		Stats:          handler.NewStatsHandler(service.NewStatsService(statsRepo)),
		Images:         handler.NewImageHandler(store),
		AI:             handler.NewAIHandler(service.NewAIService(articleService, articleRepo, writer, images, extractor, guard)).WithWriteTimeout(cfg.HTTP.AIWriteTimeout),
		SessionSecret:  auth.SessionSecretBytes(cfg.Auth.SessionSecret),
		PublicLimiter:  publicLimiter,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}
	routes.Register(mux)
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	server := &http.Server{
		Addr:         cfg.HTTP.ListenAddr,
		Handler:      handler.Chain(mux, cfg.HTTP.Origins()),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "version", cfg.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
