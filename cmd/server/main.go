package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"qosic/internal/carrier"
	"qosic/internal/gateway"
	"qosic/internal/payment/metrics"
	"qosic/internal/payment/service"
	"qosic/internal/payment/tracer"
	"qosic/internal/platform/config"
	"qosic/internal/platform/logger"
	httptransport "qosic/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing qosic gateway client",
		"addr", cfg.Addr,
		"base_url", cfg.BaseURL,
	)

	instruments := metrics.New(prometheus.DefaultRegisterer)

	transport, err := gateway.NewClient(cfg.BaseURL, cfg.Login, cfg.Password,
		gateway.WithLogger(log),
		gateway.WithObserver(metrics.NewGatewayObserver(instruments)),
	)
	if err != nil {
		log.Error("gateway client init failed", "error", err)
		os.Exit(1)
	}

	mtn, err := carrier.MTN(cfg.MTNClientID, carrier.WithPollPolicy(carrier.PollPolicy{
		Step:        cfg.PollStep,
		Timeout:     cfg.PollTimeout,
		MaxAttempts: cfg.PollMaxAttempts,
	}))
	if err != nil {
		log.Error("mtn profile init failed", "error", err)
		os.Exit(1)
	}
	moov, err := carrier.Moov(cfg.MoovClientID)
	if err != nil {
		log.Error("moov profile init failed", "error", err)
		os.Exit(1)
	}

	payments, err := service.New(transport, []*carrier.Profile{mtn, moov},
		service.WithLogger(log),
		service.WithMetrics(instruments),
		service.WithTracer(tracer.NewOTel()),
	)
	if err != nil {
		log.Error("payment service init failed", "error", err)
		os.Exit(1)
	}

	handler := httptransport.NewHandler(payments, log)
	router := httptransport.NewRouter(handler, log)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 6 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
