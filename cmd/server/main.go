package main

import (
	"alcyxob/fitcoach/internal/api"
	"alcyxob/fitcoach/internal/app"
	"alcyxob/fitcoach/internal/cache"
	"alcyxob/fitcoach/internal/config"
	"alcyxob/fitcoach/internal/metrics"
	"alcyxob/fitcoach/internal/notify"
	"alcyxob/fitcoach/internal/report"
	"alcyxob/fitcoach/internal/service"
	"alcyxob/fitcoach/internal/storage"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"
)

// @title Fitness Coaching API
// @version 1.0
// @description API for trainers and their clients: training plans, workouts, exercise logs and videos.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	configPath := flag.String("config", ".", "directory with config.yaml and .env")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}
	app.SetupLogging(cfg.Log)

	if err := run(cfg); err != nil {
		log.Fatalln(err)
	}
	log.Println("server exiting")
}

// run wires and serves the application until SIGINT or SIGTERM. Deferred
// clean up runs on every return path.
func run(cfg config.Config) error {
	log.Println("starting fitcoach server ...")

	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}

	store, closeStore, err := app.OpenStore(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer closeStore()

	ctx := context.Background()
	fileStorage, err := storage.NewS3Storage(ctx, cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize s3 storage: %w", err)
	}

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("fitcoach", "main", promRegistry)

	sender, err := notify.NewSender(cfg.Mail)
	if err != nil {
		return fmt.Errorf("failed to initialize mail sender: %w", err)
	}
	notifier := notify.NewNotifier(sender, metricsManager)

	routeOpts := api.RouteOptions{
		Metrics:        metricsManager,
		Registry:       promRegistry,
		LoginPerMinute: cfg.Server.LoginPerMinute,
	}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Errorf("failed to close redis client: %s", err)
			}
		}()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to ping redis: %w", err)
		}
		routeOpts.LoginLimiter = redis_rate.NewLimiter(rdb)
	} else {
		log.Warnln("redis.addr not set, login rate limiting is disabled")
	}

	services := api.Services{
		Auth:    service.NewAuthService(store.Users, cfg.JWT.Secret, cfg.JWT.Expiration),
		Trainer: service.NewTrainerService(store, fileStorage),
		Client:  service.NewClientService(store, notifier, metricsManager),
		Catalog: service.NewCatalogService(store, cache.NewJSONCache(cfg.Cache.SizeMB, cfg.Cache.CatalogTTL)),
		Video:   service.NewVideoService(store, fileStorage, cfg.S3.URLExpiry, metricsManager),
	}

	if cfg.Reports.Enabled {
		scheduler, err := report.NewScheduler(cfg.Reports.Schedule, report.NewWeeklyReporter(store, notifier, metricsManager))
		if err != nil {
			return fmt.Errorf("failed to set up weekly reports: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Infof("weekly reports scheduled: %s", cfg.Reports.Schedule)
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, cfg.JWT.Secret, services, routeOpts)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen and serve: %w", err)
	case <-quit:
	}
	log.Println("shutting down server ...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
