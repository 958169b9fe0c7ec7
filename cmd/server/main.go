package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/trafficwatch/service-planner/internal/application"
	"github.com/trafficwatch/service-planner/internal/auth"
	"github.com/trafficwatch/service-planner/internal/config"
	"github.com/trafficwatch/service-planner/internal/database"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"github.com/trafficwatch/service-planner/internal/events"
	"github.com/trafficwatch/service-planner/internal/handler"
	"github.com/trafficwatch/service-planner/internal/health"
	"github.com/trafficwatch/service-planner/internal/logger"
	"github.com/trafficwatch/service-planner/internal/middleware"
	"github.com/trafficwatch/service-planner/internal/provider/nominatim"
	"github.com/trafficwatch/service-planner/internal/provider/osrm"
	"github.com/trafficwatch/service-planner/internal/provider/simulated"
	"github.com/trafficwatch/service-planner/internal/provider/tomtom"
	"github.com/trafficwatch/service-planner/internal/provider/transit"
	"github.com/trafficwatch/service-planner/internal/repository"
	"go.uber.org/zap"
)

func main() {
	// Load .env if present (local development convenience)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "service-planner")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-planner",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	// Connect to database
	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(&repository.RouteModel{}, &repository.PinModel{}); err != nil {
		log.Fatal("failed to run auto-migration", zap.Error(err))
	}
	log.Info("database migration completed")

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 15*time.Minute)

	// Initialize Kafka publisher (best-effort event channel)
	var publisher application.EventPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher := events.NewPublisher(cfg.Kafka.Brokers, log)
		defer func() { _ = kafkaPublisher.Close() }()
		publisher = kafkaPublisher
		log.Info("kafka publisher enabled", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	// Initialize external providers
	timeout := cfg.Providers.RequestTimeout
	routingProvider := osrm.NewClient(cfg.Providers.OSRMBaseURL, timeout, log)
	geocoder := nominatim.NewClient(cfg.Providers.NominatimBaseURL, cfg.Providers.SearchViewbox, timeout, log)
	transitProvider := transit.NewClient(cfg.Providers.TransitBaseURL, timeout, log)
	simulatedFlow := simulated.NewFlowProvider()

	var liveFlow planner.TrafficFlowProvider
	if cfg.Providers.TomTomAPIKey != "" {
		liveFlow = tomtom.NewClient(cfg.Providers.TomTomBaseURL, cfg.Providers.TomTomAPIKey, timeout, log)
	} else {
		log.Warn("tomtom api key not configured, traffic coloring runs on simulation only")
	}

	// Initialize domain services
	congestionModel := planner.NewCongestionModel()
	normalizer := planner.NewModeNormalizer(routingProvider, congestionModel)

	// Initialize repositories
	routeRepo := repository.NewGormRouteRepository(db)
	pinRepo := repository.NewGormPinRepository(db)

	// Initialize application services
	trafficService := application.NewTrafficService(liveFlow, simulatedFlow, log)
	plannerService := application.NewPlannerService(normalizer, geocoder, transitProvider, trafficService, publisher, log)
	routeService := application.NewRouteService(routeRepo, plannerService, publisher, log)
	pinService := application.NewPinService(pinRepo, plannerService, publisher, log)
	analyticsService := application.NewAnalyticsService(congestionModel, routeRepo, log)

	// Initialize HTTP handlers
	plannerHandler := handler.NewPlannerHandler(plannerService)
	trafficHandler := handler.NewTrafficHandler(trafficService)
	geocodeHandler := handler.NewGeocodeHandler(geocoder)
	transitHandler := handler.NewTransitHandler(transitProvider)
	routeHandler := handler.NewRouteHandler(routeService)
	pinHandler := handler.NewPinHandler(pinService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-planner")
	healthHandler.RegisterRoutes(router)

	// Register routes
	plannerHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	trafficHandler.RegisterRoutes(&router.RouterGroup)
	geocodeHandler.RegisterRoutes(&router.RouterGroup)
	transitHandler.RegisterRoutes(&router.RouterGroup)
	routeHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	pinHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	analyticsHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-planner...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-planner stopped")
}
