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

	"github.com/avelkin/storefront/internal/admin"
	"github.com/avelkin/storefront/internal/auth"
	"github.com/avelkin/storefront/internal/cart"
	"github.com/avelkin/storefront/internal/catalog"
	"github.com/avelkin/storefront/internal/config"
	"github.com/avelkin/storefront/internal/es"
	"github.com/avelkin/storefront/internal/events"
	"github.com/avelkin/storefront/internal/httpserver"
	"github.com/avelkin/storefront/internal/logging"
	"github.com/avelkin/storefront/internal/order"
	"github.com/avelkin/storefront/internal/search"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	logger.Info("database ready")

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
		publisher = producer
		logger.Info("kafka producer ready", "brokers", cfg.KafkaBrokers)
	} else {
		logger.Warn("no kafka brokers configured, events disabled")
	}

	var searchSvc *search.Service
	if cfg.ESURL != "" {
		client, err := es.NewClient(es.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
		})
		if err != nil {
			return err
		}
		searchSvc = &search.Service{ES: client, Index: cfg.ESIndex}
		logger.Info("elasticsearch ready", "index", cfg.ESIndex)
	} else {
		logger.Warn("no elasticsearch configured, search disabled")
	}

	catalogRepo := &catalog.GormRepo{DB: db}
	cartRepo := &cart.GormRepo{DB: db}
	orderRepo := &order.GormRepo{DB: db}

	deps := httpserver.Deps{
		Logger:    logger,
		Auth:      &auth.Service{DB: db, JWTSecret: cfg.JWTSecret},
		Admin:     &admin.Service{DB: db},
		Catalog:   &catalog.Service{Repo: catalogRepo},
		Cart:      &cart.Service{Repo: cartRepo, Products: catalogRepo},
		Orders:    order.NewService(orderRepo, cartRepo),
		Search:    searchSvc,
		Events:    publisher,
		JWTSecret: cfg.JWTSecret,
	}

	e := httpserver.New(deps)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		logger.Info("server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
