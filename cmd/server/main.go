package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/photomap/backend/internal/config"
	"github.com/photomap/backend/internal/handlers"
	"github.com/photomap/backend/internal/logging"
	appMiddleware "github.com/photomap/backend/internal/middleware"
	"github.com/photomap/backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON, SetDefault: true})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	users, files, mongoClient, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if mongoClient != nil {
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := mongoClient.Disconnect(dctx); err != nil {
				logger.Warn("mongo disconnect", "err", err)
			}
		}()
	}

	downloader := services.NewDownloader(cfg.DownloadTimeout, cfg.MaxDownloadMB)
	sessions := services.NewSlackSessionFactory(cfg.Slack.AccessToken, cfg.Slack.APIURL, downloader)
	resolver := services.NewUserResolver(users, cfg.UserCacheSize, cfg.UserCacheTTL)

	var opts []services.PipelineOption
	if cfg.SafeSearch {
		screener, err := services.NewVisionScreener(ctx)
		if err != nil {
			return err
		}
		opts = append(opts, services.WithScreener(screener))
		logger.Info("safe search screening enabled")
	}

	var archive services.ImageArchive
	if cfg.ArchiveBucket != "" {
		gcs, err := services.NewGCSArchive(ctx, cfg.ArchiveBucket)
		if err != nil {
			return err
		}
		defer gcs.Close()
		archive = gcs
		opts = append(opts, services.WithArchive(gcs))
		logger.Info("image archive enabled", "bucket", cfg.ArchiveBucket)
	}

	pipeline := services.NewPipeline(cfg.Slack.VerificationToken, sessions, resolver, files, logger, opts...)
	responder := services.NewResponder(cfg.Slack.VerificationToken, sessions, resolver, files, archive, logger)
	dispatcher := services.NewDispatcher(logger)

	slackHandler := handlers.NewSlackHandler(cfg.Slack.VerificationToken, cfg.Slack.SigningSecret, pipeline, responder, dispatcher, logger)
	filesHandler := handlers.NewFilesHandler(files, logger)

	adminAuth, err := adminMiddleware(ctx, cfg, logger)
	if err != nil {
		return err
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appMiddleware.Metrics)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Slack callbacks
	r.Route("/slack", func(r chi.Router) {
		r.Post("/events", slackHandler.Events)
		r.Post("/actions", slackHandler.Actions)
	})

	// Map API
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/files", filesHandler.ListFiles)
		r.Get("/files/{fileId}", filesHandler.GetFile)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(adminAuth)
			r.Get("/admin/files", filesHandler.ListAllFiles)
			r.Delete("/admin/files/{fileId}", filesHandler.DeleteFile)
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("photomap server starting", "addr", cfg.ServerAddress, "mongo", mongoClient != nil)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Warn("http shutdown", "err", err)
		}
	}

	// Let in-flight events finish before the stores go away.
	dispatcher.Wait()
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.UserStore, services.FileStore, *mongo.Client, error) {
	if cfg.UsesMongo() {
		client, err := services.ConnectMongo(ctx, cfg.Mongo.URI, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return services.NewMongoUserService(client, cfg.Mongo.Database),
			services.NewMongoFileService(ctx, client, cfg.Mongo.Database),
			client, nil
	}

	logger.Warn("MONGO_URI not set, using local snapshot store", "data_dir", cfg.DataDir)
	users, err := services.NewPersistentUserStore(cfg.DataDir)
	if err != nil {
		return nil, nil, nil, err
	}
	files, err := services.NewPersistentFileStore(cfg.DataDir)
	if err != nil {
		return nil, nil, nil, err
	}
	return users, files, nil, nil
}

// adminMiddleware prefers Firebase ID tokens when a project is configured and
// falls back to HMAC bearer tokens.
func adminMiddleware(ctx context.Context, cfg *config.Config, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	if cfg.Firebase.ProjectID != "" {
		client, err := appMiddleware.NewFirebaseAuthClient(ctx, appMiddleware.FirebaseAuthConfig{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsJSON: cfg.Firebase.CredentialsJSON,
		})
		if err != nil {
			return nil, err
		}
		return appMiddleware.FirebaseAuth(client), nil
	}
	if cfg.JWTSecret == "" {
		logger.Warn("no admin credentials configured, admin API is closed")
		return func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "admin API disabled", http.StatusServiceUnavailable)
			})
		}, nil
	}
	return appMiddleware.JWTAuth(cfg.JWTSecret), nil
}
