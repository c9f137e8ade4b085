package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"rollcall/internal/notify"
	"rollcall/internal/otp"
	"rollcall/internal/participant"
	"rollcall/internal/platform/config"
	"rollcall/internal/platform/httpserver"
	"rollcall/internal/platform/logger"
	"rollcall/internal/platform/metrics"
	redisclient "rollcall/internal/platform/redis"
	"rollcall/internal/registration"
	httptransport "rollcall/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal packages.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := redisclient.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", logger.Err(err))
		os.Exit(1)
	}
	defer rdb.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	codes := otp.NewRedisStore(rdb.Client, cfg.CodeTTL)
	verifier := otp.NewVerifier(codes, log)
	participants := participant.NewRedisStore(rdb.Client)

	mailer := notify.NewSMTPSender(cfg.SMTP)

	// SMS is an optional secondary channel; a missing region disables it.
	var sms notify.SMSSender
	if cfg.SNS.Region != "" {
		sender, err := notify.NewSNSSender(ctx, cfg.SNS)
		if err != nil {
			log.Warn("sns sender not available", logger.Err(err))
		} else {
			sms = sender
		}
	}

	welcome := make(chan registration.Event, cfg.WelcomeQueueSize)
	worker := registration.NewWorker(mailer, welcome, log, m)

	service := registration.NewService(
		participants, codes, verifier, mailer, sms, welcome,
		registration.Options{CodeLength: cfg.CodeLength, ResendWindow: cfg.ResendWindow},
		log, m,
	)

	handler := httptransport.NewHandler(service, rdb, log)
	router := httptransport.NewRouter(handler, cfg.AllowedOrigins)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting rollcall", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := worker.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", logger.Err(err))
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
