// SPDX-License-Identifier: MIT

// Command quiver-mcp serves a quiver sheet to MCP clients on stdio.
//
// Usage:
//
//	quiver-mcp [-store sqlite|redis|none] [-db path] [-redis-addr host:port] [-metrics-addr :9100]
//
// Logs go to stderr; stdout carries the protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/katalvlaran/mathtoys/config"
	"github.com/katalvlaran/mathtoys/descent"
	"github.com/katalvlaran/mathtoys/mcpserver"
	"github.com/katalvlaran/mathtoys/metrics"
	"github.com/katalvlaran/mathtoys/store"
	"github.com/katalvlaran/mathtoys/store/redis"
	"github.com/katalvlaran/mathtoys/store/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	log.SetOutput(os.Stderr)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("config: %v", err)
	}

	st, err := openStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	collector, err := metrics.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Printf("metrics listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
	}

	srv := mcpserver.NewServer(st, cfg.Threshold, cfg.QuiverOptions(descent.WithObserver(collector))...)
	log.Printf("serving MCP on stdio (store=%s)", cfg.Store)
	if err := srv.Serve(); err != nil {
		log.Fatalf("mcp: %v", err)
	}
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		return sqlite.Open(cfg.DBPath)
	case config.StoreRedis:
		return redis.Dial(ctx, cfg.RedisAddr)
	default:
		return store.NewMemory(), nil
	}
}
