// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

// Package main is the entry point for the Medfeed server.
//
// Medfeed serves a personalized article feed: it maintains a
// preference vector per user, learned from read articles, and uses
// cosine similarity against article embeddings to rank the catalog.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered settings from defaults, YAML file, and
//     environment variables (Koanf v2)
//  2. Logging: structured zerolog output
//  3. Store: embedded Badger database for profiles and the audit trail
//  4. Catalog: article source (JSON file or RSS feeds) with outlet
//     fallback vectors
//  5. Extraction: optional keyword extraction API behind a circuit
//     breaker
//  6. HTTP Server: REST API plus Prometheus metrics
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it
// stops accepting new connections, waits up to 10 seconds for
// in-flight requests, drains the audit buffer, and closes the store.
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

	badger "github.com/dgraph-io/badger/v4"

	"github.com/medfeed/medfeed/internal/api"
	"github.com/medfeed/medfeed/internal/audit"
	"github.com/medfeed/medfeed/internal/catalog"
	"github.com/medfeed/medfeed/internal/config"
	"github.com/medfeed/medfeed/internal/engagement"
	"github.com/medfeed/medfeed/internal/extract"
	"github.com/medfeed/medfeed/internal/logging"
	"github.com/medfeed/medfeed/internal/profile"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("catalog_source", cfg.Catalog.Source).
		Msg("Starting medfeed")

	// Embedded store for profiles and the audit trail.
	opts := badger.DefaultOptions(cfg.Store.Path).WithLogger(nil)
	if cfg.Store.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Store close failed")
		}
	}()

	// Article catalog.
	var source catalog.Source
	switch cfg.Catalog.Source {
	case "rss":
		source = catalog.NewRSSSource(cfg.Catalog.FeedURLs)
	default:
		source = catalog.NewFileSource(cfg.Catalog.Path)
	}
	var vectors catalog.OutletVectors
	if len(cfg.Catalog.OutletVectors) > 0 {
		vectors = catalog.OutletVectors(cfg.Catalog.OutletVectors)
	}
	cat := catalog.NewServer(source, vectors, cfg.Catalog.PageSize)
	sessions := catalog.NewSessionRegistry()

	// Profiles.
	profiles := profile.NewManager(profile.NewBadgerStore(db), cfg.Profile.Categories, len(cfg.Profile.Categories))

	// Optional keyword extraction.
	var extractor extract.Extractor
	if cfg.Extractor.Enabled {
		extractor = extract.NewClient(extract.Config{
			APIKey:  cfg.Extractor.APIKey,
			BaseURL: cfg.Extractor.BaseURL,
			Model:   cfg.Extractor.Model,
			Timeout: cfg.Extractor.Timeout,
		})
		logging.Info().Str("model", cfg.Extractor.Model).Msg("Keyword extraction enabled")
	} else {
		logging.Info().Msg("Keyword extraction disabled, using catalog keywords")
	}

	// Audit trail.
	var auditStore audit.Store
	var auditLogger *audit.Logger
	if cfg.Audit.Enabled {
		auditStore = audit.NewBadgerStore(db)
		auditLogger = audit.NewLogger(auditStore, &audit.Config{
			Enabled:    true,
			BufferSize: cfg.Audit.BufferSize,
		})
		defer auditLogger.Close()
	}

	tracker := engagement.NewTracker(profiles, extractor, auditLogger, 2*cfg.Extractor.Timeout)

	// HTTP surface.
	handler := api.NewHandler(cat, sessions, profiles, tracker, auditStore)
	router := api.NewRouter(handler, api.NewMiddleware(&api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.API.CORSOrigins,
		RateLimitRequests:  cfg.API.RateLimitReqs,
		RateLimitWindow:    cfg.API.RateLimitWindow,
	}))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown timed out")
	}

	logging.Info().Msg("Server stopped")
	return nil
}
