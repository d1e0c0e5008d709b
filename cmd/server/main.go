package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/campaign-intel/internal/api"
	"github.com/ignite/campaign-intel/internal/cache"
	"github.com/ignite/campaign-intel/internal/config"
	"github.com/ignite/campaign-intel/internal/insight"
	"github.com/ignite/campaign-intel/internal/pkg/logger"
	"github.com/ignite/campaign-intel/internal/warehouse"
)

// checkPortAvailable verifies that the target port is not already in use,
// to avoid confusion from a stale stub-backend occupying it.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		logger.Error("pre-flight check failed", "error", err)
		os.Exit(1)
	}

	client := insight.NewClient(cfg.Insight)
	logger.Info("insight backend configured", "base_url", cfg.Insight.BaseURL,
		"submit_timeout", cfg.Insight.SubmitTimeout())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthCtx, healthCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := client.HealthCheck(healthCtx); err != nil {
		// The backend may come up after us; requests will retry
		logger.Warn("insight backend not reachable yet", "error", err)
	} else {
		logger.Info("insight backend reachable")
	}
	healthCancel()

	var resultsCache *cache.ResultsCache
	if cfg.Cache.Enabled {
		resultsCache, err = cache.New(ctx, cfg.Cache)
		if err != nil {
			// The cache is never load-bearing; run without it
			logger.Warn("results cache unavailable, continuing without", "addr", cfg.Cache.Addr, "error", err)
			resultsCache = nil
		} else {
			defer resultsCache.Close()
			logger.Info("results cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL())
		}
	}

	var wh *warehouse.Client
	if cfg.Warehouse.Enabled {
		wh, err = warehouse.NewClient(cfg.Warehouse)
		if err == nil {
			// sql.Open does not dial; verify the connection before relying on it
			pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
			err = wh.Ping(pingCtx)
			pingCancel()
		}
		if err != nil {
			logger.Warn("warehouse unavailable, SQL previews disabled", "error", err)
			if wh != nil {
				wh.Close()
			}
			wh = nil
		} else {
			defer wh.Close()
			logger.Info("warehouse previews enabled", "database", cfg.Warehouse.Database)
		}
	}

	server := api.NewServer(cfg.Server, client, resultsCache, wh)
	addr := fmt.Sprintf("%s:%d", host, cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("campaign-intel console listening", "addr", addr)
		errCh <- server.ListenAndServe(addr)
	}()

	select {
	case err := <-errCh:
		logger.Error("server exited", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
