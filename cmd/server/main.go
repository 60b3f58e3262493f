package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stepladder/practice-app/internal/api"
	"stepladder/practice-app/internal/catalog"
	"stepladder/practice-app/internal/config"
	"stepladder/practice-app/internal/logger"
	"stepladder/practice-app/internal/repository/mongo"
	"stepladder/practice-app/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		os.Stderr.WriteString("FATAL: could not load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		os.Stderr.WriteString("FATAL: could not build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("starting StepLadder server")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal("could not connect to MongoDB", "error", err)
	}
	defer func() {
		log.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("database connection established", "database", cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureClientIndexes(ctx, appDB.Collection("clients"))
		mongo.EnsureAssignmentIndexes(ctx, appDB.Collection("worksheet_assignments"))
		mongo.EnsureMagicLinkIndexes(ctx, appDB.Collection("client_magic_links"))
		mongo.EnsureHierarchyItemIndexes(ctx, appDB.Collection("erp_hierarchy_items"))
		mongo.EnsureExposureRunIndexes(ctx, appDB.Collection("erp_exposure_runs"))
		log.Info("index creation completed")
	}()

	// --- Worksheet Catalog ---
	registry := catalog.Default()
	log.Info("worksheet catalog loaded", "templates", len(registry.All()))

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	clientRepo := mongo.NewMongoClientRepository(appDB)
	assignmentRepo := mongo.NewMongoAssignmentRepository(appDB)
	magicLinkRepo := mongo.NewMongoMagicLinkRepository(appDB)
	hierarchyRepo := mongo.NewMongoHierarchyItemRepository(appDB)
	exposureRunRepo := mongo.NewMongoExposureRunRepository(appDB)

	// --- Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	therapistService := service.NewTherapistService(clientRepo, assignmentRepo, magicLinkRepo, registry)
	portalService := service.NewPortalService(clientRepo, assignmentRepo, magicLinkRepo, registry)
	erpService := service.NewERPService(clientRepo, assignmentRepo, hierarchyRepo, exposureRunRepo)

	// --- Router ---
	if cfg.Log.Mode == "prod" || cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	api.SetupRoutes(router, cfg, log, authService, therapistService, portalService, erpService, registry)

	// --- HTTP Server with Graceful Shutdown ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
	}
	log.Info("server exited")
}
