package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"duitku-go/internal/callback"
	"duitku-go/internal/config"
	"duitku-go/internal/duitku"
	"duitku-go/internal/logger"
	"duitku-go/internal/middleware"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.L().Fatal("failed to load config", zap.Error(err))
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	client, err := duitku.New(cfg.Duitku())
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.CallbackRateLimit, cfg.CallbackBurst)
	go limiter.RunSweeper(ctx, time.Minute, 3*time.Minute)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           setupRouter(callback.NewHandler(client, logNotification), limiter),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("duitku callback server listening",
			zap.String("addr", srv.Addr),
			zap.String("variant", string(cfg.Variant)),
			zap.String("environment", string(cfg.Environment)),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupRouter(callbackHandler http.Handler, limiter *middleware.RateLimiter) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/callback/duitku", limiter.Middleware(callbackHandler))

	return logger.RequestIDMiddleware(logger.LoggingMiddleware(mux))
}

// logNotification is the default processor: the receiver only records
// verified callbacks; settling orders belongs to the host application.
func logNotification(ctx context.Context, n *duitku.NotificationPayload) error {
	logger.FromCtx(ctx).Info("payment notification verified",
		zap.String("merchant_order_id", n.MerchantOrderID),
		zap.String("reference", n.Reference),
		zap.String("amount", n.Amount),
		zap.String("payment_code", n.PaymentCode),
		zap.String("result", n.ResultCode.Name()),
		zap.String("settlement_date", n.SettlementDate),
	)
	return nil
}
