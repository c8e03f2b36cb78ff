// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

// Package config loads layered service configuration: built-in
// defaults, then an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Store     StoreConfig     `koanf:"store"`
	Extractor ExtractorConfig `koanf:"extractor"`
	Audit     AuditConfig     `koanf:"audit"`
	Profile   ProfileConfig   `koanf:"profile"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// CatalogConfig configures where articles come from.
type CatalogConfig struct {
	// Source selects the article backend: "file" or "rss".
	Source   string   `koanf:"source"`
	Path     string   `koanf:"path"`
	FeedURLs []string `koanf:"feed_urls"`
	PageSize int      `koanf:"page_size"`

	// OutletVectors overrides the built-in outlet fallback vectors.
	// Empty means the defaults apply.
	OutletVectors map[string][]float64 `koanf:"outlet_vectors"`
}

// StoreConfig configures the embedded profile and audit store.
type StoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// ExtractorConfig configures the upstream keyword extraction API.
type ExtractorConfig struct {
	Enabled bool          `koanf:"enabled"`
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

// AuditConfig configures the engagement audit trail.
type AuditConfig struct {
	Enabled    bool `koanf:"enabled"`
	BufferSize int  `koanf:"buffer_size"`
}

// ProfileConfig configures preference profiles.
type ProfileConfig struct {
	// Categories maps onboarding categories to vector dimensions in
	// order. The vector dimension count follows from its length.
	Categories []string `koanf:"categories"`
}

// APIConfig configures API behavior.
type APIConfig struct {
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}

	switch c.Catalog.Source {
	case "file":
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required when catalog.source is file")
		}
	case "rss":
		if len(c.Catalog.FeedURLs) == 0 {
			return fmt.Errorf("catalog.feed_urls is required when catalog.source is rss")
		}
	default:
		return fmt.Errorf("catalog.source must be file or rss, got %q", c.Catalog.Source)
	}

	if c.Catalog.PageSize < 1 {
		return fmt.Errorf("catalog.page_size must be positive, got %d", c.Catalog.PageSize)
	}

	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path is required unless store.in_memory is set")
	}

	if c.Extractor.Enabled && c.Extractor.APIKey == "" {
		return fmt.Errorf("extractor.api_key is required when extractor.enabled is set")
	}

	if len(c.Profile.Categories) == 0 {
		return fmt.Errorf("profile.categories must not be empty")
	}

	for outlet, vec := range c.Catalog.OutletVectors {
		if len(vec) != len(c.Profile.Categories) {
			return fmt.Errorf("catalog.outlet_vectors[%q] has %d dimensions, want %d",
				outlet, len(vec), len(c.Profile.Categories))
		}
	}

	return nil
}
