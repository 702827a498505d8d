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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"photobooth-admin/config"
	"photobooth-admin/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a.cfg, a.log)
		},
	}
}

// serve runs the HTTP server until ctx is cancelled, then stops every
// session and shuts the server down.
func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	photos, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info("photo store initialized", zap.String("driver", cfg.Store.Driver))

	g, ctx := errgroup.WithContext(ctx)

	hub := web.NewHub(log.Named("ws"))
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	sessions := web.NewSessions(ctx, photos, hub, log.Named("session"), web.SessionOptions{
		TTL:             cfg.Session.TTL,
		CleanupInterval: time.Minute,
		PollInterval:    cfg.Poll.Interval,
		Location:        cfg.Display.Location(),
	})
	handler := web.NewHandler(sessions, hub, log.Named("web"), web.Options{
		Location:      cfg.Display.Location(),
		BoothURL:      cfg.Display.BoothURL,
		ThumbnailSize: uint(cfg.Display.ThumbnailSize),
	})
	router := web.NewRouter(handler, log.Named("http"), web.RouterOptions{
		RateLimit:         rate.Limit(cfg.Server.RateLimitPerSec),
		RateBurst:         cfg.Server.RateLimitBurst,
		ThumbnailCacheTTL: time.Duration(cfg.Server.ThumbnailCacheTTLSec) * time.Second,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server ListenAndServe: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutdown signal received, stopping services")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
		defer cancel()

		sessions.Close()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server Shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server gracefully stopped")
	return nil
}
