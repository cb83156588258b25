package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tmutasa/herdmarket-server/internal/api"
	"github.com/tmutasa/herdmarket-server/internal/config"
	"github.com/tmutasa/herdmarket-server/internal/logger"
	"github.com/tmutasa/herdmarket-server/internal/metrics"
	"github.com/tmutasa/herdmarket-server/internal/repository"
	"github.com/tmutasa/herdmarket-server/internal/service"
	"github.com/tmutasa/herdmarket-server/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	log := logger.NewStructured(cfg.Log.Level, cfg.Log.Format).
		WithFields(map[string]interface{}{"service": "herdmarket-server"})

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		log.WithError(err).Error("failed to set up database", nil)
		return
	}
	defer db.Close()

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// Create file store
	store := storage.NewDiskStore(cfg.Storage.Dir, cfg.Storage.MaxFileBytes)

	// Create service
	svc := service.NewDefaultService(repo, store, log, cfg.Auth.JWTSecret)

	// Create API handler
	handler := api.NewHandler(svc, log)

	// Set up Gin router
	router := gin.Default()
	router.Use(metrics.Middleware())

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(cfg.Auth.JWTSecret))
		c.Next()
	})

	// Set up routes
	handler.SetupRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("starting server", map[string]interface{}{"addr": serverAddr})
	if err := http.ListenAndServe(serverAddr, router); err != nil {
		log.WithError(err).Error("server stopped", nil)
	}
}
