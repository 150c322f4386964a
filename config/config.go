/*
Package config loads server configuration.

PURPOSE:
  One TOML file describes the deployment: HTTP server, upstream PMS,
  database path, desk-session tuning. Secrets never live in the file -
  the PMS API token comes from the environment, optionally seeded from
  a local .env during development.

PRECEDENCE (lowest to highest):
  1. Built-in defaults
  2. TOML file (-config flag)
  3. Environment variables (FRONTDESK_*)

EXAMPLE (frontdesk.toml):
  [server]
  port = 8080

  [pms]
  base_url = "https://pms.example.com"
  timeout_seconds = 15

  [database]
  path = "./data/frontdesk.db"

  [desk]
  refresh_seconds = 30
  session_idle_minutes = 60

ENVIRONMENT:
  FRONTDESK_PMS_TOKEN    bearer token for the PMS API (required)
  FRONTDESK_PORT         overrides server.port
  FRONTDESK_DB_PATH      overrides database.path
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ErrMissingToken means no PMS token was provided anywhere.
var ErrMissingToken = errors.New("config: FRONTDESK_PMS_TOKEN is not set")

// Config is the full server configuration.
type Config struct {
	Server   Server   `toml:"server"`
	PMS      PMS      `toml:"pms"`
	Database Database `toml:"database"`
	Desk     Desk     `toml:"desk"`
}

// Server configures the HTTP listener.
type Server struct {
	Port            int      `toml:"port"`
	AllowedOrigins  []string `toml:"allowed_origins"`
	ReadTimeoutSec  int      `toml:"read_timeout_seconds"`
	WriteTimeoutSec int      `toml:"write_timeout_seconds"`
}

// PMS configures the upstream property-management client.
type PMS struct {
	BaseURL    string `toml:"base_url"`
	TimeoutSec int    `toml:"timeout_seconds"`

	// Token is environment-only; it has no TOML tag on purpose.
	Token string `toml:"-"`
}

// Database configures the activity ledger store.
type Database struct {
	Path string `toml:"path"`
}

// Desk tunes session behavior.
type Desk struct {
	RefreshSec     int `toml:"refresh_seconds"`
	CascadeDelayMs int `toml:"cascade_delay_ms"`
	SessionIdleMin int `toml:"session_idle_minutes"`
}

// Load reads the TOML file (path may be empty), overlays the environment,
// and validates. A local .env is loaded first when present; its absence is
// not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.PMS.Token == "" {
		return nil, ErrMissingToken
	}
	if cfg.PMS.BaseURL == "" {
		return nil, errors.New("config: pms.base_url is required")
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: Server{
			Port:            8080,
			AllowedOrigins:  []string{"http://localhost:5173", "http://localhost:8080"},
			ReadTimeoutSec:  15,
			WriteTimeoutSec: 15,
		},
		PMS: PMS{
			TimeoutSec: 15,
		},
		Database: Database{
			Path: "frontdesk.db",
		},
		Desk: Desk{
			RefreshSec:     30,
			CascadeDelayMs: 2000,
			SessionIdleMin: 60,
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FRONTDESK_PMS_TOKEN"); v != "" {
		cfg.PMS.Token = v
	}
	if v := os.Getenv("FRONTDESK_PMS_BASE_URL"); v != "" {
		cfg.PMS.BaseURL = v
	}
	if v := os.Getenv("FRONTDESK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FRONTDESK_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
}

// Derived durations.

func (p PMS) Timeout() time.Duration          { return time.Duration(p.TimeoutSec) * time.Second }
func (s Server) ReadTimeout() time.Duration   { return time.Duration(s.ReadTimeoutSec) * time.Second }
func (s Server) WriteTimeout() time.Duration  { return time.Duration(s.WriteTimeoutSec) * time.Second }
func (d Desk) RefreshInterval() time.Duration { return time.Duration(d.RefreshSec) * time.Second }
func (d Desk) CascadeDelay() time.Duration    { return time.Duration(d.CascadeDelayMs) * time.Millisecond }
func (d Desk) SessionIdle() time.Duration     { return time.Duration(d.SessionIdleMin) * time.Minute }
