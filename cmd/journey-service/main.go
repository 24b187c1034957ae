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

	"github.com/gorilla/mux"
	"github.com/journeyboard/platform/pkg/common/config"
	"github.com/journeyboard/platform/pkg/common/database"
	"github.com/journeyboard/platform/pkg/common/kafka"
	"github.com/journeyboard/platform/pkg/common/logger"
	"github.com/journeyboard/platform/pkg/journey"
)

func main() {
	logger.Init()
	cfg := config.Load()

	var remote *journey.Repository
	db, err := database.GetPostgres()
	if err != nil {
		if !errors.Is(err, database.ErrPostgresNotConfigured) {
			logger.Log.WithError(err).Fatal("failed to connect to postgres")
		}
		logger.Log.Info("no remote store configured, running local-only")
	} else {
		remote = journey.NewRepository(db)
		if err := remote.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("failed to migrate journey tables")
		}
	}

	local := journey.NewLocalStore(database.GetRedis())

	board, err := journey.LoadBoardConfig(cfg.BoardConfigPath)
	if err != nil {
		logger.Log.WithError(err).WithField("path", cfg.BoardConfigPath).Warn("board config unreadable, using defaults")
	}

	coord := journey.NewCoordinator(
		journey.PersistenceConfig{RemoteConfigured: remote != nil},
		remote, local,
	)
	svc := journey.NewService(coord, board)
	svc.Load(context.Background())

	handler := journey.NewHTTPHandler(svc, cfg.MaxRequestBody)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Journey Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	go svc.RunMidnightRefresh(ctx)

	consumer := kafka.NewConsumer(cfg.LeadEventTopic, cfg.KafkaGroupID)
	defer consumer.Close()
	go func() {
		if err := consumer.Consume(ctx, svc.IngestLead); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.WithError(err).Error("lead consumer stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Journey Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}
	database.CloseRedis()
	database.ClosePostgres()

	logger.Log.Info("Journey Service stopped")
}
