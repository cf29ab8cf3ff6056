package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dawakart/internal/backend"
	"dawakart/internal/checkout"
	"dawakart/internal/config"
	"dawakart/internal/httpapi"
	"dawakart/internal/logger"
	"dawakart/internal/order"
	"dawakart/internal/payment"
	"dawakart/internal/shipping"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	storeClient := backend.NewClient("store", cfg.BackendBaseURL, cfg.AuthToken, nil)
	paymentClient := backend.NewClient("payments", cfg.PaymentBaseURL, cfg.AuthToken, nil)

	var resumeStore checkout.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.L().Warn("redis unreachable, resume state will not survive restarts", zap.Error(err))
			resumeStore = checkout.NewMemoryStore()
		} else {
			resumeStore = checkout.NewRedisStore(rdb)
		}
	} else {
		resumeStore = checkout.NewMemoryStore()
	}

	srv := httpapi.NewServer(checkout.Deps{
		Store:     resumeStore,
		Estimator: shipping.NewEstimator(storeClient),
		Composer:  order.NewComposer(storeClient),
		Gateway:   payment.NewHTTPGateway(paymentClient),
		Backend:   storeClient,
		Payment:   payment.DefaultConfig(),
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.L().Info("checkout service listening", zap.String("port", cfg.AppPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.L().Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.L().Error("graceful shutdown failed", zap.Error(err))
	}
}
