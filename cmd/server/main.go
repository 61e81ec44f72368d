package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/setal/compliance-intel/internal/analytics"
	"github.com/setal/compliance-intel/internal/api"
	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/enrichment"
	"github.com/setal/compliance-intel/internal/reports"
	"github.com/setal/compliance-intel/internal/scheduler"
	"github.com/setal/compliance-intel/internal/scoring"
	"github.com/setal/compliance-intel/internal/store"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	db, err := store.New(cfg.Store.URL, cfg.Store.Key())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}

	// Redis backs the distributed job locks; the service runs without it.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v — job locks disabled", cfg.Redis.Addr, err)
			redisClient.Close()
			redisClient = nil
		} else {
			log.Printf("Redis connected: %s (distributed job locks enabled)", cfg.Redis.Addr)
		}
		pingCancel()
	} else {
		log.Println("Redis not configured (REDIS_ADDR not set) — job locks disabled")
	}

	intel := enrichment.NewOrchestrator(cfg.Providers, db)

	landlordScorer := scoring.NewLandlordScorer(db, cfg.Scoring)
	listingScorer := scoring.NewListingScorer(db, cfg.Scoring)
	areaAssessor := scoring.NewAreaAssessor(db, cfg.Scoring)

	complianceAnalyser := analytics.NewComplianceAnalyser(db)
	forecaster := analytics.NewForecaster(db, cfg.Seasonal)
	hotspotDetector := analytics.NewHotspotDetector(db, cfg.Scoring)
	seasonalAnalyser := analytics.NewSeasonalAnalyser(db, cfg.Seasonal)
	demandPredictor := analytics.NewDemandPredictor(cfg.Seasonal)

	weeklyGen := reports.NewWeeklyGenerator(db)
	monthlyGen := reports.NewMonthlyGenerator(db, hotspotDetector, seasonalAnalyser)
	enforcementGen := reports.NewEnforcementGenerator(db)
	trendRecorder := reports.NewTrendRecorder(db)

	runner := scheduler.NewRunner(scheduler.RunnerDeps{
		Store:       db,
		Landlords:   landlordScorer,
		Listings:    listingScorer,
		Areas:       areaAssessor,
		Seasonal:    seasonalAnalyser,
		Weekly:      weeklyGen,
		Monthly:     monthlyGen,
		Enforcement: enforcementGen,
		Trends:      trendRecorder,
		Redis:       redisClient,
	}, cfg.Jobs)

	sched := scheduler.New(cfg.Jobs.Enabled)
	for _, job := range runner.Jobs(cfg.Jobs) {
		if err := sched.Register(job); err != nil {
			log.Fatalf("Failed to register job: %v", err)
		}
	}
	sched.Start()

	handlers := api.NewHandlers(api.HandlerDeps{
		Store:       db,
		Landlords:   landlordScorer,
		Listings:    listingScorer,
		Areas:       areaAssessor,
		Compliance:  complianceAnalyser,
		Revenue:     forecaster,
		Hotspots:    hotspotDetector,
		Seasonal:    seasonalAnalyser,
		Demand:      demandPredictor,
		Weekly:      weeklyGen,
		Monthly:     monthlyGen,
		Enforcement: enforcementGen,
		Jobs:        sched,
		Refresher:   runner,
		Intel:       intel,
		Environment: cfg.Server.Environment,
		Version:     version,
	})
	server := api.NewServer(cfg.Server, handlers)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s (env: %s, version: %s)", cfg.Server.Addr(), cfg.Server.Environment, version)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	sched.Stop(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}

	log.Println("Server stopped")
}
