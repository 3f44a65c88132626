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

	"github.com/sirupsen/logrus"

	"github.com/sheikh-saqib/traffic-penalty-ledger/internal/config"
	"github.com/sheikh-saqib/traffic-penalty-ledger/internal/events"
	"github.com/sheikh-saqib/traffic-penalty-ledger/internal/events/kafka"
	"github.com/sheikh-saqib/traffic-penalty-ledger/internal/httpapi"
	"github.com/sheikh-saqib/traffic-penalty-ledger/internal/ledger"
	"github.com/sheikh-saqib/traffic-penalty-ledger/internal/storage/memory"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(cfg.LogLevel)

	opts := []ledger.Option{ledger.WithLogger(logger)}
	if cfg.EventsEnabled() {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		dispatcher := events.NewDispatcher(publisher, cfg.EventQueueSize, cfg.KafkaPublishTimeout, logger)
		defer func() {
			drainCtx, cancel := context.WithTimeout(context.Background(), cfg.KafkaPublishTimeout)
			defer cancel()
			if err := dispatcher.Close(drainCtx); err != nil {
				logger.WithError(err).Error("Failed to drain payment events")
			}
			if err := publisher.Close(); err != nil {
				logger.WithError(err).Error("Failed to close kafka publisher")
			}
		}()
		opts = append(opts, ledger.WithPublisher(dispatcher, cfg.KafkaPublishTimeout))
		logger.WithField("topic", cfg.KafkaTopic).Info("Publishing payment events to kafka")
	}

	penaltyLedger := ledger.NewPenaltyLedger(memory.NewPenaltyStore(), memory.NewPaymentStore(), opts...)
	h := httpapi.NewHandler(penaltyLedger, logger)

	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      h.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
	logger.Info("Server stopped")
}
