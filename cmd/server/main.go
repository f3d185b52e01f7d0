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

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"evidgate/internal/notify"
	"evidgate/internal/platform/config"
	"evidgate/internal/platform/httpserver"
	"evidgate/internal/platform/logger"
	"evidgate/internal/platform/metrics"
	platformredis "evidgate/internal/platform/redis"
	"evidgate/internal/registration/handler"
	"evidgate/internal/registration/models"
	"evidgate/internal/registration/service"
	"evidgate/internal/registration/store"
	"evidgate/internal/session"
	"evidgate/internal/wallet"
	"evidgate/pkg/platform/httputil"
	"evidgate/pkg/platform/middleware/auth"
	"evidgate/pkg/platform/middleware/metadata"
	"evidgate/pkg/platform/middleware/requestid"
	"evidgate/pkg/platform/middleware/requesttime"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	mx := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	local := store.NewFileStore(cfg.LocalStorePath)

	remote, cleanup, err := buildRemoteStore(ctx, cfg, log)
	if err != nil {
		// The local tier keeps the gateway usable; degraded, not down.
		log.Warn("remote store unavailable, continuing on local tier", "error", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	facade, err := store.NewFacade(remote, local,
		store.WithLogger(log),
		store.WithMetrics(mx),
	)
	if err != nil {
		return err
	}

	var provider wallet.Provider
	if cfg.ProviderRPCURL != "" {
		provider = wallet.NewRPCProvider(cfg.ProviderRPCURL)
		log.Info("wallet provider configured", "url", cfg.ProviderRPCURL)
	} else {
		provider = wallet.NewDemoProvider()
		log.Info("no wallet provider configured, running in demo mode")
	}
	adapter := wallet.NewAdapter(provider)

	recorder, closeRecorders := buildRecorders(cfg, log)
	defer closeRecorders()

	tokens := session.NewTokenService(cfg.JWTSigningKey, cfg.SessionTTL)

	machine, err := service.New(facade, adapter,
		service.WithLogger(log),
		service.WithMetrics(mx),
		service.WithRecorder(recorder),
		service.WithTokens(tokens),
	)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Use(requestid.Middleware)
	router.Use(requesttime.Middleware)
	router.Use(metadata.ClientMetadata)
	router.Use(auth.Optional(tokens))

	handler.New(machine, log).Register(router)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())

	server := httpserver.New(cfg.Addr, router)
	watcher := wallet.NewWatcher(adapter, cfg.AccountPollInterval, log)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	group.Go(func() error {
		err := watcher.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		for change := range watcher.Changes() {
			sess := &models.Session{}
			if _, err := machine.Invalidate(ctx, sess, change.Accounts); err != nil {
				log.Warn("session invalidation failed", "error", err)
			}
		}
		return nil
	})

	if ga, ok := recorderOf[*notify.GARecorder](recorder); ok {
		group.Go(func() error {
			err := ga.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	return group.Wait()
}

// buildRemoteStore selects the remote record tier: Postgres when a DSN is
// configured, otherwise Redis, otherwise none.
func buildRemoteStore(ctx context.Context, cfg config.Server, log *slog.Logger) (store.RecordStore, func(), error) {
	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("remote store configured", "tier", "postgres")
		return pg, pool.Close, nil
	}

	if cfg.RedisURL != "" {
		client, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("remote store configured", "tier", "redis")
		return store.NewRedisStore(client.Client), func() { _ = client.Close() }, nil
	}

	return nil, nil, nil
}

// buildRecorders assembles the best-effort event sinks that are configured.
func buildRecorders(cfg config.Server, log *slog.Logger) (notify.Recorder, func()) {
	var sinks notify.Multi
	closers := make([]func(), 0, 2)

	if ga := notify.NewGARecorder(cfg.GAMeasurementID, cfg.GAAPISecret, log); ga != nil {
		sinks = append(sinks, ga)
		log.Info("analytics recorder configured")
	}

	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := notify.NewKafkaRecorder(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Warn("kafka recorder unavailable", "error", err)
		} else {
			sinks = append(sinks, kafka)
			closers = append(closers, kafka.Close)
			log.Info("kafka recorder configured", "topic", cfg.KafkaTopic)
		}
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	if len(sinks) == 0 {
		return nil, closeAll
	}
	return sinks, closeAll
}

// recorderOf digs a concrete recorder out of a possibly fanned-out sink.
func recorderOf[T notify.Recorder](r notify.Recorder) (T, bool) {
	if typed, ok := r.(T); ok {
		return typed, true
	}
	if multi, ok := r.(notify.Multi); ok {
		for _, inner := range multi {
			if typed, ok := inner.(T); ok {
				return typed, true
			}
		}
	}
	var zero T
	return zero, false
}
