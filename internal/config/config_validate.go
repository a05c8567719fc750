// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package config

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/careguide/internal/validation"
)

// knownSections lists the section names accepted in recommend.section_caps.
var knownSections = map[string]bool{
	"recommended": true,
	"weekFocus":   true,
	"quickHelp":   true,
	"comingUp":    true,
}

// Validate checks field constraints declared in struct tags, then the
// rules that span several fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	validators := []func() error{
		c.validateRecommend,
		c.validateCache,
		c.validateNATS,
		c.validateUpstream,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateRecommend() error {
	for section := range c.Recommend.SectionCaps {
		if !knownSections[section] {
			return fmt.Errorf("recommend.section_caps: unknown section %q", section)
		}
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Backend == "badger" && c.Cache.Path == "" && c.IsProduction() {
		return fmt.Errorf("cache.path is required for the badger backend in production")
	}
	return nil
}

// validateNATS validates NATS configuration (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	if c.NATS.EmbeddedServer {
		if c.NATS.StoreDir == "" {
			return fmt.Errorf("nats.store_dir is required when nats.embedded_server=true")
		}
		if c.NATS.MaxMemory < natsMinMemory {
			return fmt.Errorf("nats.max_memory must be at least 64MB (67108864 bytes)")
		}
		if c.NATS.MaxStore < natsMinStore {
			return fmt.Errorf("nats.max_store must be at least 100MB (104857600 bytes)")
		}
	} else if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("nats.url is invalid: %w", err)
	}

	if c.NATS.StreamName == "" {
		return fmt.Errorf("nats.stream_name is required when nats.enabled=true")
	}
	if c.NATS.DurableName == "" {
		return fmt.Errorf("nats.durable_name is required when nats.enabled=true")
	}
	return nil
}

func (c *Config) validateUpstream() error {
	if c.Upstream.RateLimit > 0 && c.Upstream.Burst < 1 {
		return fmt.Errorf("upstream.burst must be at least 1 when upstream.rate_limit is set")
	}
	return nil
}

const (
	natsMinMemory = 64 * 1024 * 1024  // 64MB
	natsMinStore  = 100 * 1024 * 1024 // 100MB
)

// validateNATSURL validates a NATS URL
func validateNATSURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	validSchemes := map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}
	if !validSchemes[parsedURL.Scheme] {
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:4222, nats.example.com)")
	}
	return nil
}
