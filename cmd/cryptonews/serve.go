package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pevans/cryptonews/discovery"
	"github.com/pevans/cryptonews/logger"
	"github.com/pevans/cryptonews/newsfeed"
	"github.com/pevans/cryptonews/sources"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the refresh scheduler and the web server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "address to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if flagAddr != "" {
		cfg.Addr = flagAddr
	}

	parser, err := newParser(cfg)
	if err != nil {
		return err
	}

	store, err := sources.NewSourceStore(cfg.MetadataDSN)
	if err != nil {
		return fmt.Errorf("failed to open source store: %w", err)
	}
	defer store.Close()

	if err := store.Sync(cfg.Sources); err != nil {
		return fmt.Errorf("failed to sync sources: %w", err)
	}

	feed := newsfeed.NewNewsFeed()
	discoveryConfig := &discovery.DiscoveryConfig{
		Interval:     cfg.RefreshInterval,
		FetchTimeout: cfg.FetchTimeout,
		Concurrency:  cfg.Concurrency,
	}
	fetcher := discovery.NewFetcher(parser, discoveryConfig, store)
	service := discovery.NewDiscoveryService(feed, cfg.Sources, fetcher, discoveryConfig)

	router := newsfeed.NewAPIServer(feed, cfg.StaticDir).SetupRouter()
	sources.NewSourceAPIServer(store).RegisterRoutes(router.Group("/api"))

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serviceDone := make(chan struct{})
	go func() {
		defer close(serviceDone)
		if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf("Discovery service failed: %v", err)
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on http://%s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Infof("Shutting down")
	case err := <-serverErr:
		stop()
		<-serviceDone
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}

	<-serviceDone
	return nil
}
