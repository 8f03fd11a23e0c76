package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"postfeed/app/cache"
	"postfeed/app/config"
	"postfeed/app/gateway"
	"postfeed/app/logger"
	"postfeed/app/models"
	"postfeed/app/repositories"
	"postfeed/app/routes"
	"postfeed/app/services"
)

func newServeCmd() *cobra.Command {
	var configPath, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the posts API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			return runServer(ctx, a.server, cfg.Server.ShutdownTimeout, log)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

// app holds everything serve opens and must release.
type app struct {
	server *http.Server
	store  repositories.CacheStore
}

func newApp(cfg config.Config, log *logger.Logger) (*app, error) {
	store, err := repositories.Open(cfg.Cache.Backend, repositories.Options{
		BadgerPath: cfg.Cache.BadgerPath,
		RedisAddr:  cfg.Cache.RedisAddr,
		RedisDB:    cfg.Cache.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("open cache store: %w", err)
	}

	var gw gateway.Gateway = gateway.NewHTTPGateway(cfg.Remote.BaseURL, cfg.Remote.Timeout, &http.Client{}, log)
	gw = gateway.NewRetryingGateway(gw, cfg.Remote.Retries, log)

	authors := services.NewAuthorResolver(gw, cfg.Aggregation.AuthorWorkers, log)
	merged := cache.New[[]models.MergedPost](store, cfg.Cache.TTL, log)
	postService := services.NewPostService(gw, authors, merged, cfg.Aggregation.CommentWorkers, log)

	router, err := routes.SetupRoutes(postService, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	log.Info("application wired",
		"remote", cfg.Remote.BaseURL,
		"cache_backend", cfg.Cache.Backend,
		"author_workers", cfg.Aggregation.AuthorWorkers,
		"comment_workers", cfg.Aggregation.CommentWorkers,
	)

	return &app{
		server: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		store: store,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// runServer serves until ctx is done, then drains in-flight requests.
func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
