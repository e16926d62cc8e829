// Package main provides the main entry point for the Escapadas GO deal pipeline
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mmutvidal/escapadas-go/app/handlers"
	"github.com/mmutvidal/escapadas-go/app/middleware"
	"github.com/mmutvidal/escapadas-go/app/router"
	"github.com/mmutvidal/escapadas-go/app/scheduler"
	"github.com/mmutvidal/escapadas-go/app/services"
	businessflow "github.com/mmutvidal/escapadas-go/business_flow"
	"github.com/mmutvidal/escapadas-go/config"
	"github.com/mmutvidal/escapadas-go/models"
	"github.com/mmutvidal/escapadas-go/repository"
)

// Application holds the wired components and their shutdown hooks
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	stopFuncs []func()
}

func main() {
	log.Println("Starting Escapadas GO application...")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(&models.PipelineRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// initializeProviders builds the flight search providers. Ryanair needs no
// credential; Kiwi joins only when an API key is configured.
func initializeProviders(cfg config.SearchConfig) []services.FlightSearchProvider {
	providers := []services.FlightSearchProvider{
		services.NewRyanairClient(cfg.RyanairBaseURL, cfg.Currency, cfg.Timeout),
	}
	if cfg.KiwiAPIKey != "" {
		providers = append(providers, services.NewKiwiClient(cfg.KiwiBaseURL, cfg.KiwiAPIKey, cfg.Currency, cfg.Timeout))
	}
	return providers
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	var searchCache services.SearchCache = services.NoopSearchCache{}
	if rc != nil {
		searchCache = services.NewRedisSearchCache(rc, cfg.Cache.TTL)
		stopFuncs = append(stopFuncs, func() { _ = rc.Close() })
	}

	runRepo := repository.NewPipelineRunRepository(db)
	historyRepo := repository.NewPublishedHistoryRepository(cfg.History.FilePath)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	classifier := businessflow.NewClassifier(nil, nil, rng)
	scorer := businessflow.NewScorer(cfg.Pipeline.Scoring)
	selector := businessflow.NewSelector(historyRepo, classifier, scorer, cfg.Pipeline, rng)

	markets := cfg.Markets
	if len(markets) == 0 {
		markets = config.DefaultMarkets
	}

	dealFlow := businessflow.NewDealSelectionFlow(
		initializeProviders(cfg.Search),
		searchCache,
		services.NewGeoService(),
		selector,
		runRepo,
		cfg.Search,
		cfg.Pipeline,
		rng,
		nil,
	)

	var reviewChannel services.ReviewChannel
	if cfg.Telegram.Enabled {
		reviewChannel = services.NewTelegramClient(cfg.Telegram.BaseURL, cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Timeout)
	}
	var publishChannel services.PublishChannel
	if cfg.Instagram.Enabled {
		publishChannel = services.NewInstagramClient(
			cfg.Instagram.BaseURL, cfg.Instagram.AccessToken, cfg.Instagram.IGUserID,
			cfg.Instagram.PollInterval, cfg.Instagram.PollTimeout)
	}

	publishFlow := businessflow.NewPublishFlow(
		reviewChannel,
		publishChannel,
		historyRepo,
		businessflow.NewWebExporter(cfg.Export.WebJSONDir, cfg.Export.MaxEntries),
		services.NewReportService(cfg.Export.ReportDir),
		cfg.Export,
		nil,
	)

	tokenService, err := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	authHandler := handlers.NewAuthHandler(tokenService, cfg.Admin, cfg.JWT.AccessTokenTTL)
	dealHandler := handlers.NewDealHandler(dealFlow, publishFlow, runRepo, markets)
	authMW := middleware.NewAuthMiddleware(tokenService)

	r := router.NewFiberRouter(cfg.Server, authHandler, dealHandler, authMW)

	if cfg.Scheduler.Enabled {
		sched := scheduler.NewDailyScheduler(dealFlow, markets, cfg.Scheduler, cfg.Logging)
		stop := sched.Start(context.Background())
		stopFuncs = append(stopFuncs, stop)
		log.Printf("Scheduler started, interval %s across %d markets", cfg.Scheduler.Interval, len(markets))
	}

	return &Application{
		router:    r,
		config:    cfg,
		stopFuncs: stopFuncs,
	}, nil
}
