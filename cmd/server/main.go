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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"faceswap-go/internal/api/handlers"
	"faceswap-go/internal/cleanup"
	"faceswap-go/internal/config"
	"faceswap-go/internal/core/processor"
	"faceswap-go/internal/core/swap"
	"faceswap-go/internal/db"
	"faceswap-go/internal/db/repository"
	"faceswap-go/internal/imaging"
	"faceswap-go/internal/integrations/mqtt"
	"faceswap-go/internal/logger"
	"faceswap-go/internal/model"
)

const defaultConfigPath = "/config/config.yaml"

func main() {
	// Load configuration
	configPath := os.Getenv("FACESWAP_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		// Use logrus fatal even before full initialization if config fails
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Log); err != nil {
		// Log the error but continue, the logger might have defaulted
		log.Errorf("Failed to initialize logger completely: %v", err)
	}

	// Initialize database connection
	log.Info("Initializing database...")
	if err := db.Initialize(cfg.DB); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	log.Info("Database initialization complete.")

	repo := repository.NewSQLiteRepository(db.DB)

	// Load the swap model bundle. The service cannot run without it,
	// so a load failure aborts startup.
	provider := model.NewProvider(cfg.Model)
	swapModel, err := provider.Get()
	if err != nil {
		log.Fatalf("Failed to load swap model: %v", err)
	}
	defer provider.Close()

	// Initialize Cleanup Service
	cleanupService := cleanup.NewService(repo, cfg.Cleanup.RetentionDays, 24*time.Hour)
	if cleanupService != nil {
		cleanupService.StartBackgroundCleanup()
		defer cleanupService.StopBackgroundCleanup()
	}

	// Initialize MQTT Client if enabled
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient = mqtt.NewClient(cfg.MQTT)
		if err := mqttClient.Start(); err != nil {
			log.Warnf("Failed to connect MQTT client: %v. Continuing without MQTT.", err)
			mqttClient = nil
		} else {
			defer mqttClient.Stop()
		}
	} else {
		log.Info("MQTT is disabled in config.")
	}

	// --- Setup processing pipeline ---
	engine := swap.NewEngine(imaging.Codec{}, swapModel.Locator(), swapModel)

	var publisher processor.EventPublisher
	if mqttClient != nil {
		publisher = mqttClient
	}
	swapProcessor := processor.NewSwapProcessor(engine, repo, publisher)

	workerPool := processor.NewWorkerPool(swapProcessor)
	defer workerPool.Shutdown()

	// --- Setup API Handlers & Router ---
	apiHandler := handlers.NewAPIHandler(cfg, workerPool, repo, provider, workerPool)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	apiGroup := router.Group("/api")
	apiHandler.RegisterRoutes(apiGroup)

	// Start the server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", serverAddr)
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case sig := <-sigCh:
		log.Infof("Received signal %s, shutting down...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Errorf("Server shutdown failed: %v", err)
		}
	}

	log.Info("Server stopped.")
}
