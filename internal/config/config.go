// Package config loads and validates the YAML analysis configuration.
//
// A configuration document names the root package, selects a dependency
// source (live registry or fixture file), and toggles the renderers:
//
//	package: react
//	version: latest
//	source: registry
//	registry_url: https://registry.npmjs.org
//	filter: test
//	render:
//	  tree: true
//	  compact: false
//	  diagram: true
//
// Malformed or incomplete configuration is rejected here, before any
// traversal begins.
package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/depscope/pkg/errors"
)

// Source selectors for dependency data.
const (
	SourceRegistry = "registry"
	SourceFixture  = "fixture"
)

// Cache backend selectors.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// DefaultCacheTTL is used when the cache block does not set a TTL.
const DefaultCacheTTL = 24 * time.Hour

// Config is the root configuration document.
type Config struct {
	Package     string `yaml:"package"`      // root package name (required)
	Version     string `yaml:"version"`      // version hint for the root (required; "latest" allowed)
	Source      string `yaml:"source"`       // "registry" or "fixture" (required)
	RegistryURL string `yaml:"registry_url"` // registry base URL (required for registry source)
	FixturePath string `yaml:"fixture_path"` // fixture file path (required for fixture source)
	Filter      string `yaml:"filter"`       // case-insensitive exclusion substring (optional)

	Render Render      `yaml:"render"`
	Output Output      `yaml:"output"`
	Cache  CacheConfig `yaml:"cache"`
}

// Render toggles the text renderers.
type Render struct {
	Tree    bool `yaml:"tree"`    // expanded ASCII tree
	Compact bool `yaml:"compact"` // compact ASCII tree
	Diagram bool `yaml:"diagram"` // DOT diagram
}

// Output names optional artifact files. Empty paths mean no artifact.
type Output struct {
	Dot  string `yaml:"dot"`  // DOT text
	SVG  string `yaml:"svg"`  // rendered SVG
	JSON string `yaml:"json"` // graph snapshot
}

// CacheConfig selects and configures the response cache backend.
type CacheConfig struct {
	Backend   string `yaml:"backend"`    // "file" (default), "redis", or "none"
	Dir       string `yaml:"dir"`        // file backend directory (default ~/.cache/depscope)
	TTL       string `yaml:"ttl"`        // entry lifetime as a duration string (default "24h")
	RedisAddr string `yaml:"redis_addr"` // redis backend host:port

	ttl time.Duration // parsed during validation
}

// TTLDuration returns the parsed cache entry lifetime.
func (c *CacheConfig) TTLDuration() time.Duration { return c.ttl }

// Load reads, parses, and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks required fields and normalizes string values.
func (c *Config) validate() error {
	c.Package = strings.TrimSpace(c.Package)
	c.Version = strings.TrimSpace(c.Version)
	c.Source = strings.TrimSpace(strings.ToLower(c.Source))
	c.RegistryURL = strings.TrimSpace(c.RegistryURL)
	c.FixturePath = strings.TrimSpace(c.FixturePath)
	c.Filter = strings.TrimSpace(c.Filter)

	var missing []string
	if c.Package == "" {
		missing = append(missing, "package")
	}
	if c.Version == "" {
		missing = append(missing, "version")
	}
	if c.Source == "" {
		missing = append(missing, "source")
	}
	if len(missing) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "missing required fields: %s", strings.Join(missing, ", "))
	}

	switch c.Source {
	case SourceRegistry:
		if c.RegistryURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "registry_url is required when source is %q", SourceRegistry)
		}
	case SourceFixture:
		if c.FixturePath == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "fixture_path is required when source is %q", SourceFixture)
		}
		if _, err := os.Stat(c.FixturePath); err != nil {
			return errors.New(errors.ErrCodeFileNotFound, "fixture file not found: %s", c.FixturePath)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "source must be %q or %q, got %q", SourceRegistry, SourceFixture, c.Source)
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheFile
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required when cache.backend is %q", CacheRedis)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be one of %q, %q, %q", CacheFile, CacheRedis, CacheNone)
	}
	c.Cache.ttl = DefaultCacheTTL
	if c.Cache.TTL != "" {
		ttl, err := time.ParseDuration(c.Cache.TTL)
		if err != nil || ttl < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl is not a valid duration: %q", c.Cache.TTL)
		}
		c.Cache.ttl = ttl
	}

	return nil
}
