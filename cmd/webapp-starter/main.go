package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-webapp-starter/internal/config"
	apphttp "github.com/pribylovaa/go-webapp-starter/internal/http"
	"github.com/pribylovaa/go-webapp-starter/internal/security/cors"
	"github.com/pribylovaa/go-webapp-starter/internal/security/csrf"
	"github.com/pribylovaa/go-webapp-starter/internal/security/headers"
	"github.com/pribylovaa/go-webapp-starter/internal/security/ratelimit"
	"github.com/pribylovaa/go-webapp-starter/internal/service"
	"github.com/pribylovaa/go-webapp-starter/internal/storage"
	"github.com/pribylovaa/go-webapp-starter/internal/storage/memory"
	"github.com/pribylovaa/go-webapp-starter/internal/storage/postgres"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting webapp-starter", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	// Хранилище выбирается один раз по явной конфигурации.
	st, err := newStorage(rootCtx, cfg)
	if err != nil {
		log.Error("storage_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	// CSRF-стор: Redis для multi-instance, иначе память процесса.
	csrfStore, err := newCSRFStore(cfg)
	if err != nil {
		log.Error("csrf_store_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if cerr := csrfStore.Close(); cerr != nil {
			log.Warn("csrf_store_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	csrfManager := csrf.NewManager(csrfStore, cfg.Security.CSRFTTL)

	rl := cfg.Security.RateLimit
	authLimiter := ratelimit.New(rl.AuthMax, rl.AuthWindow)
	loginLimiter := ratelimit.New(rl.LoginMax, rl.LoginWindow)

	// Фоновая уборка истекших окон — живёт до shutdown.
	go authLimiter.Run(rootCtx, rl.SweepInterval)
	go loginLimiter.Run(rootCtx, rl.SweepInterval)

	svc := service.New(st, cfg.Auth)

	prod := cfg.Env == config.EnvProd
	apiHandler := apphttp.NewRouter(apphttp.Options{
		Logger:       log,
		Timeout:      cfg.Timeouts.Service,
		Service:      svc,
		CSRF:         csrfManager,
		CORS:         cors.New(!prod, cfg.Security.AllowedOrigins),
		Headers:      headers.New(prod),
		AuthLimiter:  authLimiter,
		LoginLimiter: loginLimiter,
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.Handle("/", apiHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("service_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
}

// newStorage — postgres при заданном DATABASE_URL, иначе память процесса.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.DB.DatabaseURL == "" {
		slog.Info("storage_memory_selected")
		return memory.New(), nil
	}

	slog.Info("storage_postgres_selected")
	return postgres.New(ctx, cfg.DB.DatabaseURL)
}

// newCSRFStore — Redis при заданном REDIS_URL, иначе память процесса.
func newCSRFStore(cfg *config.Config) (csrf.Store, error) {
	if cfg.Redis.RedisURL == "" {
		slog.Info("csrf_store_memory_selected")
		return csrf.NewMemoryStore(), nil
	}

	slog.Info("csrf_store_redis_selected")
	return csrf.NewRedisStore(cfg.Redis.RedisURL, "")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case config.EnvLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
