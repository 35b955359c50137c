package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"query-proxy/configs"
	"query-proxy/internal/logger"
	"query-proxy/internal/server"
	"query-proxy/internal/sqlproxy"
	"query-proxy/internal/version"
	"query-proxy/pkg/db"
	"query-proxy/pkg/middleware"
	"query-proxy/pkg/redis"
)

type AppDeps struct {
	Config    *configs.Config
	Logger    *slog.Logger
	Publisher sqlproxy.Publisher
}

func App(deps AppDeps) http.Handler {
	conf := deps.Config
	router := http.NewServeMux()

	// repositories
	repository := sqlproxy.NewRepository(db.Options{
		ConnectTimeout: conf.DbConfig.ConnectTimeout,
	})

	// services
	service := sqlproxy.NewService(sqlproxy.ServiceDeps{
		Connector:        repository,
		StatementTimeout: conf.DbConfig.StatementTimeout,
		Publisher:        deps.Publisher,
		PublishTimeout:   conf.RedisConfig.Timeout,
		Logger:           deps.Logger,
	})

	// controllers
	sqlproxy.NewController(router, sqlproxy.ControllerDeps{
		Service:      service,
		Version:      version.Get(),
		MaxBodyBytes: conf.MaxBodyBytes,
	})

	return middleware.Logging(deps.Logger, router)
}

func main() {
	conf := configs.LoadConfig()
	log := logger.New(os.Stderr, conf.LogLevel)
	slog.SetDefault(log)

	deps := AppDeps{Config: conf, Logger: log}

	if conf.RedisConfig.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), conf.RedisConfig.Timeout)
		publisher, err := redis.NewPublisher(ctx, conf.RedisConfig)
		cancel()
		if err != nil {
			log.Warn("execution events disabled", slog.Any("error", err))
		} else {
			defer publisher.Close()
			deps.Publisher = publisher
		}
	}

	srv := server.New(conf.Addr, App(deps), log)
	if err := srv.Start(); err != nil {
		log.Error("server failed to start", slog.Any("error", err))
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srv.Errors():
		if err != nil {
			log.Error("server stopped", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-sigCh:
		log.Info("shutdown signal", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			log.Error("shutdown error", slog.Any("error", err))
		}
		if err := <-srv.Errors(); err != nil {
			log.Error("server stopped", slog.Any("error", err))
		}
	}
}
