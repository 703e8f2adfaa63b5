package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pix-checkout-api/config"
	"pix-checkout-api/database"
	"pix-checkout-api/handlers"
	"pix-checkout-api/metrics"
	"pix-checkout-api/middleware"
	"pix-checkout-api/services/lookup"
	"pix-checkout-api/services/notify"
	"pix-checkout-api/services/payment"
	"pix-checkout-api/services/payment/gateway"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs only slow or failed requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		elapsed := time.Since(start)
		if elapsed > 500*time.Millisecond || wrapper.status >= 400 {
			zap.L().Info("request",
				zap.String("method", r.Method),
				zap.String("uri", r.RequestURI),
				zap.String("remote", r.RemoteAddr),
				zap.Int("status", wrapper.status),
				zap.Duration("elapsed", elapsed),
			)
		}
	})
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pix-checkout-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger, err := newLogger(cfg.IsDevelopment())
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	cfg.LogSummary(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	opts := []payment.Option{payment.WithMetrics(m)}

	// Optional persistence.
	var dbPinger handlers.Pinger
	if cfg.Database.Enabled() {
		db, err := database.NewConnection(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		store := database.NewChargeStore(db)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = store.EnsureSchema(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to prepare database schema: %w", err)
		}

		opts = append(opts, payment.WithStore(store))
		dbPinger = db
		logger.Info("charge persistence enabled")
	}

	var notifier notify.Notifier
	if cfg.Notify.PushcutURL != "" {
		notifier = notify.NewPushcut(cfg.Notify.PushcutURL)
	}

	paymentService, err := payment.NewPaymentService(cfg.Payment, notifier, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize payment gateway: %w", err)
	}
	switch cfg.Payment.Provider {
	case "for4payments":
		logger.Info("payment gateway ready", zap.String("gateway", paymentService.Gateway()),
			zap.String("secret_key", gateway.MaskSecret(cfg.Payment.For4Payments.SecretKey)))
	default:
		logger.Info("payment gateway ready", zap.String("gateway", paymentService.Gateway()),
			zap.String("secret_key", gateway.MaskSecret(cfg.Payment.Cashtime.SecretKey)))
	}

	sessions := handlers.NewSessionStore(cfg.Session)
	pageHandler := handlers.NewPageHandler(
		sessions,
		lookup.NewLeadsClient(cfg.Lookup.LeadsURL),
		lookup.NewCPFClient(cfg.Lookup.CPFURL, cfg.Lookup.CPFToken),
		m,
		cfg.Payment,
	)
	pixHandler := handlers.NewPixHandler(paymentService, sessions, cfg.Payment)

	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(loggingMiddleware)

	generatePix := http.Handler(http.HandlerFunc(pixHandler.GeneratePix))
	paymentStatus := http.Handler(http.HandlerFunc(pixHandler.PaymentStatus))

	var redisPinger handlers.Pinger
	if cfg.Redis.URL != "" {
		limiter, err := middleware.NewRateLimiter(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to initialize rate limiter: %w", err)
		}
		defer limiter.Close()
		limit := limiter.RateLimitMiddleware()
		generatePix = limit(generatePix)
		paymentStatus = limit(paymentStatus)
		redisPinger = limiter
		logger.Info("rate limiting enabled for /generate-pix and /payment-status")
	}

	healthHandler := handlers.NewHealthHandler(paymentService.Gateway(), dbPinger, redisPinger)

	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods("GET")
	router.PathPrefix("/static/").Handler(handlers.StaticHandler()).Methods("GET")

	router.Handle("/generate-pix", generatePix).Methods("POST", "OPTIONS")
	router.Handle("/payment-status/{id}", paymentStatus).Methods("GET", "OPTIONS")

	router.HandleFunc("/", pageHandler.Index).Methods("GET")
	router.HandleFunc("/verificar-cpf", pageHandler.VerificarCPF).Methods("GET")
	router.HandleFunc("/buscar-cpf", pageHandler.BuscarCPF).Methods("GET")
	// Catch-all; must stay last.
	router.HandleFunc("/{cpf:.+}", pageHandler.CustomerByCPF).Methods("GET")

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   45 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited properly")
	return nil
}
