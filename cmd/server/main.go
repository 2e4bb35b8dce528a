package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samfeldman824/putr/internal/api"
	"github.com/samfeldman824/putr/internal/config"
	"github.com/samfeldman824/putr/internal/leaderboard"
	"github.com/samfeldman824/putr/internal/logger"
	"github.com/samfeldman824/putr/internal/repository/mongodb"
	"github.com/samfeldman824/putr/internal/services"
	"github.com/samfeldman824/putr/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("PUTR Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("mongo_database=%s", cfg.MongoDatabase)
	log.Debug("players_collection=%s", cfg.PlayersCollection())
	log.Debug("redis_addr=%s", cfg.RedisAddr)
	log.Debug("dev_mode=%t", cfg.DevMode)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("cache_ttl=%v", cfg.CacheTTL)
	log.Debug("refresh_worker_count=%d", cfg.RefreshWorkerCount)
	log.Debug("refresh_queue_size=%d", cfg.RefreshQueueSize)
	log.Debug("upload_max_bytes=%d", cfg.UploadMaxBytes)

	// Connect to the player store
	mongoClient, err := mongodb.Connect(cfg.MongoURI)
	if err != nil {
		log.Error("failed to connect to MongoDB: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("disconnecting from MongoDB")
		_ = mongoClient.Disconnect(context.Background())
	}()
	log.Info("connected to MongoDB")

	// Connect to the session cache
	redisClient, err := leaderboard.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Error("failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing Redis connection")
		_ = redisClient.Close()
	}()
	log.Info("connected to Redis")

	playerRepo := mongodb.NewPlayerRepository(mongoClient, cfg.MongoDatabase, cfg.PlayersCollection())
	cache := leaderboard.NewCache(redisClient, cfg.PlayersCollection(), cfg.CacheTTL)
	board := leaderboard.NewSyncer(playerRepo, cache)
	refreshPool := worker.NewPool(cfg.RefreshWorkerCount, cfg.RefreshQueueSize)

	srv := &api.Server{
		PlayerService:  services.NewPlayerService(playerRepo),
		UploadService:  services.NewUploadService(playerRepo),
		Board:          board,
		RefreshPool:    refreshPool,
		UploadMaxBytes: cfg.UploadMaxBytes,
	}

	ctx, cancel := context.WithCancel(context.Background())
	refreshPool.Start(ctx)

	if err := board.Start(ctx); err != nil {
		log.Error("failed to start leaderboard syncer: %v", err)
		os.Exit(1)
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping leaderboard syncer")
	board.Stop()
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping refresh pool")
	refreshPool.Stop()

	log.Info("===========================================")
	log.Info("PUTR Server Stopped")
	log.Info("===========================================")
}
