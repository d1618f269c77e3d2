package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qrave1/GiftRoulette/internal/application/config"
	"github.com/qrave1/GiftRoulette/internal/application/constant"
	"github.com/qrave1/GiftRoulette/internal/application/metric"
	"github.com/qrave1/GiftRoulette/internal/infra/adapters/postgres"
	"github.com/qrave1/GiftRoulette/internal/infra/adapters/postgres/repository"
	"github.com/qrave1/GiftRoulette/internal/infra/ports/http/handlers"
	"github.com/qrave1/GiftRoulette/internal/infra/ports/http/server"
	"github.com/qrave1/GiftRoulette/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	setupLogger(cfg)

	slog.Info("Running app", slog.Bool("debug", cfg.Debug))

	dbConn, err := postgres.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		slog.Error("connect to postgres", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer dbConn.Close()

	roomRepo := repository.NewRoomRepo(dbConn)
	roomUsecase := usecase.NewRoomUsecase(roomRepo)
	roomHandler := handlers.NewRoomHandler(roomUsecase, cfg.DefaultRoomID)

	echoSrv := server.New(cfg, roomHandler)
	metricsSrv := metric.NewServer(dbConn)

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	go func() {
		slog.Info("HTTP server starting", slog.String("port", cfg.Port))
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	go func() {
		slog.Info("Metrics server starting", slog.String("port", cfg.MetricPort))
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		slog.Error("HTTP server failed", slog.Any(constant.Error, err))
		os.Exit(1)
	case err := <-metricsSrvCh:
		slog.Error("Metrics server failed", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	// ctx уже отменён, таймаут отсчитываем от Background
	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}
}
