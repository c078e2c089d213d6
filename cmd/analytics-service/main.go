package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"restaurant-analytics-service/internal/auth"
	"restaurant-analytics-service/internal/config"
	"restaurant-analytics-service/internal/db"
	"restaurant-analytics-service/internal/events"
	httphandler "restaurant-analytics-service/internal/http"
	"restaurant-analytics-service/internal/http/middleware"
	"restaurant-analytics-service/internal/logger"
	"restaurant-analytics-service/internal/queue"
	"restaurant-analytics-service/internal/repository"
	"restaurant-analytics-service/internal/scheduler"
	"restaurant-analytics-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	summaryRepo := repository.NewSummaryRepository(database)
	orderRepo := repository.NewOrderRepository(database)
	reservationRepo := repository.NewReservationRepository(database)

	guard := service.NewResourceGuard(cfg.Analytics.MemoryLimitBytes, cfg.Analytics.MemoryThreshold)
	regenerator := service.NewRegenerator(summaryRepo, orderRepo, reservationRepo, guard, cfg.Analytics.GenerationTimeout, appLogger)
	updater := service.NewIncrementalUpdater(summaryRepo, regenerator, appLogger)
	analyticsService := service.NewAnalyticsService(summaryRepo, orderRepo, regenerator, appLogger)

	dispatcher := events.NewDispatcher()
	dispatcher.Subscribe(updater)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Scheduler.Enabled {
		rollups := scheduler.New(regenerator, appLogger)
		if err := rollups.Start(ctx); err != nil {
			appLogger.Fatal().Err(err).Msg("failed to start rollup scheduler")
		}
		defer rollups.Stop()
	}

	if cfg.AMQP.URL != "" {
		amqpClient, err := queue.New(cfg.AMQP.URL)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to connect message broker")
		}
		defer amqpClient.Close()

		consumer, err := queue.NewOrderEventConsumer(amqpClient, dispatcher, cfg.AMQP.Exchange, cfg.AMQP.Queue, appLogger)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to set up order event consumer")
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				appLogger.Error().Err(err).Msg("order event consumer stopped")
			}
		}()
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(analyticsService, regenerator, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	adminMiddleware := middleware.RequireAdmin()
	router := httphandler.NewRouter(handler, authMiddleware, adminMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting analytics service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
