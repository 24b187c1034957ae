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
	"github.com/journeyboard/platform/pkg/connect"
	"github.com/journeyboard/platform/pkg/leads"
	"github.com/journeyboard/platform/pkg/notify"
)

func main() {
	logger.Init()
	cfg := config.Load()

	producer := kafka.NewProducer(cfg.LeadEventTopic)
	defer producer.Close()

	notifier := notify.NewLogNotifier(cfg.TelegramBotToken != "" && cfg.TelegramChatID != "")
	svc := leads.NewService(producer, notifier)
	handler := leads.NewHTTPHandler(svc, cfg.MaxRequestBody)

	var tokens *connect.TokenRepository
	db, err := database.GetPostgres()
	if err != nil {
		if !errors.Is(err, database.ErrPostgresNotConfigured) {
			logger.Log.WithError(err).Fatal("failed to connect to postgres")
		}
		logger.Log.Info("no database configured, oauth tokens will not be stored")
	} else {
		tokens = connect.NewTokenRepository(db)
		if err := tokens.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("failed to migrate oauth token table")
		}
	}
	connectHandler := connect.NewHTTPHandler(connect.NewProviders(cfg), tokens)

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
	connectHandler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.BridgePort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.BridgePort,
		}).Info("Lead Bridge Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Lead Bridge Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}
	database.ClosePostgres()

	logger.Log.Info("Lead Bridge Service stopped")
}
