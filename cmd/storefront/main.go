// Package main provides the storefront binary entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/bellamaterna/storefront/config"
	"github.com/bellamaterna/storefront/internal/api"
	"github.com/bellamaterna/storefront/internal/auth"
	"github.com/bellamaterna/storefront/internal/coupon"
	"github.com/bellamaterna/storefront/internal/devices"
	"github.com/bellamaterna/storefront/internal/localstore"
	"github.com/bellamaterna/storefront/internal/notice"
	"github.com/bellamaterna/storefront/internal/notify"
	"github.com/bellamaterna/storefront/internal/repository"
	"github.com/bellamaterna/storefront/pkg/db"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "storefront",
		Short:   "Storefront core service: pricing, cart, coupons and sessions",
		Version: version,
	}

	var configPath string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	serve.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	root.AddCommand(serve)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(configPath string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(logger).Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	conn, err := db.NewPostgresConnection(cfg.DB)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer conn.Close()

	snapshots, err := localstore.New(cfg.State.Dir, logger)
	if err != nil {
		return fmt.Errorf("open state dir: %w", err)
	}

	authRepo := repository.NewAuthRepo(conn)
	adminRepo := repository.NewAdminRepo(conn)
	profileRepo := repository.NewProfileRepo(conn)
	notificationRepo := repository.NewNotificationRepo(conn)
	couponRepo := repository.NewCouponRepo(conn)

	authSvc := auth.NewPostgresService(authRepo, logger)
	couponSvc := coupon.NewService(couponRepo)
	registry := devices.NewRegistry(snapshots, notice.LogNotifier{Logger: logger}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// order events are optional; without NATS the shop still works, the
	// notification list just stays empty
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("storefront"))
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()

		ingester := notify.NewIngester(nc, notificationRepo, couponRepo, logger)
		if err := ingester.Start(ctx); err != nil {
			return fmt.Errorf("start ingester: %w", err)
		}
		defer ingester.Stop()
	}

	handler := api.NewRouter(api.Deps{
		Auth:          authSvc,
		Admins:        adminRepo,
		Profiles:      profileRepo,
		Notifications: notificationRepo,
		Coupons:       couponRepo,
		CouponSvc:     couponSvc,
		Devices:       registry,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting storefront", slog.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
	return nil
}
