// Package config loads engine tuning parameters from a YAML file, with
// sensible defaults when no file is given.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables for geometry, search, sessions, and the HTTP
// surface. Zero values are replaced by defaults on load.
type Config struct {
	CorridorWidthNM  float64 `yaml:"corridorWidthNm"`
	MinProgressNM    float64 `yaml:"minProgressNm"`
	NodeBudget       int     `yaml:"nodeBudget"`
	MaxAutoStops     int     `yaml:"maxAutoStops"`
	SessionTTLSec    int     `yaml:"sessionTtlSec"`
	DefaultCruiseKt  float64 `yaml:"defaultCruiseKt"`
	MaxResults       int     `yaml:"maxResults"`
	RateLimitRPS     float64 `yaml:"rateLimitRps"`
	RateLimitBurst   int     `yaml:"rateLimitBurst"`
	ListenAddr       string  `yaml:"listenAddr"`
	JanitorPeriodSec int     `yaml:"janitorPeriodSec"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CorridorWidthNM:  50,
		MinProgressNM:    25,
		NodeBudget:       2000,
		MaxAutoStops:     4,
		SessionTTLSec:    1800,
		DefaultCruiseKt:  120,
		MaxResults:       25,
		RateLimitRPS:     20,
		RateLimitBurst:   40,
		ListenAddr:       ":8080",
		JanitorPeriodSec: 60,
	}
}

// Load reads path and overlays it on the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.CorridorWidthNM <= 0 {
		c.CorridorWidthNM = d.CorridorWidthNM
	}
	if c.MinProgressNM <= 0 {
		c.MinProgressNM = d.MinProgressNM
	}
	if c.NodeBudget <= 0 {
		c.NodeBudget = d.NodeBudget
	}
	if c.MaxAutoStops <= 0 {
		c.MaxAutoStops = d.MaxAutoStops
	}
	if c.SessionTTLSec <= 0 {
		c.SessionTTLSec = d.SessionTTLSec
	}
	if c.DefaultCruiseKt <= 0 {
		c.DefaultCruiseKt = d.DefaultCruiseKt
	}
	if c.MaxResults <= 0 {
		c.MaxResults = d.MaxResults
	}
	if c.RateLimitRPS <= 0 {
		c.RateLimitRPS = d.RateLimitRPS
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = d.RateLimitBurst
	}
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.JanitorPeriodSec <= 0 {
		c.JanitorPeriodSec = d.JanitorPeriodSec
	}
}
