// Command jwtsecurity-server is a reference service protected by the
// jwtsecurity filter chain.
//
// Try it out with:
//
//	JWT_SECRET=change-me go run ./cmd/jwtsecurity-server
//	curl -i -u demo:demo -X POST localhost:8080/login
//	curl -i -H "Authorization: Bearer <token>" localhost:8080/me
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/catuns/go-jwt-security/auth"
	"github.com/catuns/go-jwt-security/config"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stderr)

	if err := run(log); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newUserStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler, err := setupHandler(cfg, store, registry, log)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newUserStore connects to Redis when configured and falls back to an
// in-memory store seeded with the demo user.
func newUserStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (auth.UserStore, func(), error) {
	if cfg.Redis.Addr == "" {
		log.Warn("REDIS_ADDR not set, using in-memory user store with demo credentials")
		store, err := demoStore()
		return store, func() {}, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	log.WithField("addr", cfg.Redis.Addr).Info("using redis user store")
	return auth.NewRedisStore(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil
}

func demoStore() (*auth.MemoryStore, error) {
	hash, err := auth.BcryptHasher{}.Hash("demo")
	if err != nil {
		return nil, err
	}
	return auth.NewMemoryStore(auth.UserRecord{
		Username:     "demo",
		PasswordHash: hash,
		Authorities:  []string{"ROLE_USER"},
	}), nil
}
