package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hospital-booking/internal/auth"
	"hospital-booking/internal/config"
	"hospital-booking/internal/handler"
	"hospital-booking/internal/health"
	"hospital-booking/internal/logging"
	"hospital-booking/internal/metrics"
	"hospital-booking/internal/middleware"
	"hospital-booking/internal/store"
)

type backend interface {
	handler.Store
	SeedDoctors(ctx context.Context) (int, error)
}

func main() {
	seed := flag.Bool("seed", false, "insert the demo doctors and continue")
	flag.Parse()

	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogOutput)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// storage
	var st backend
	switch cfg.StoreBackend {
	case "memory":
		st = store.NewMemory()
		log.Info("using in-memory store")
	default:
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
		log.Info("migrations applied")

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("db", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			log.Fatal("db ping", zap.Error(err))
		}
		log.Info("connected to postgres")
		st = store.New(pool)
	}

	if *seed {
		n, err := st.SeedDoctors(ctx)
		if err != nil {
			log.Fatal("seed doctors", zap.Error(err))
		}
		log.Info("seeded doctors", zap.Int("count", n))
	}

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// http api
	rl := middleware.NewRateLimiter(cfg.AuthRateRPS, cfg.AuthRateBurst)
	go rl.Cleanup(ctx)

	h := handler.New(st, auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), log, m)
	httpSrv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: h.Router(handler.RouterConfig{
			Logger:           log,
			Metrics:          m,
			MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			AuthLimiter:      rl,
			APIRatePerSecond: cfg.APIRatePerSecond,
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			TrustProxy:       cfg.TrustProxy,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http", zap.Error(err))
			stop()
		}
	}()

	// grpc health
	hs := health.NewServer(log)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("listen", zap.Error(err))
	}
	go func() {
		log.Info("grpc health listening", zap.String("addr", lis.Addr().String()))
		if err := hs.Serve(lis); err != nil {
			log.Error("grpc", zap.Error(err))
		}
	}()
	hs.SetServing(true)

	// graceful shutdown
	<-ctx.Done()
	log.Info("shutting down")
	hs.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
}
