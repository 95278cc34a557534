package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const defaultConfigFileName = "lcstatusd.toml"

type TLSConfig struct {
	Enabled    bool   `toml:"enabled"`
	ListenAddr string `toml:"listen_addr"`
	Domain     string `toml:"domain"`
	Email      string `toml:"email"`
	CacheDir   string `toml:"cache_dir"`
}

type EventLogConfig struct {
	// HotDays is how many trailing calendar days stay in the hot events
	// file before being compacted into compressed day archives.
	HotDays int `toml:"hot_days,omitempty"`
}

type ServerConfig struct {
	ListenAddr              string         `toml:"listen_addr"`
	Timezone                string         `toml:"timezone"`
	DataDir                 string         `toml:"data_dir"`
	FinalizeIntervalSeconds int            `toml:"finalize_interval_seconds,omitempty"`
	EventLog                EventLogConfig `toml:"eventlog"`
	TLS                     TLSConfig      `toml:"tls"`
}

func DefaultServerConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultConfigFileName
	}
	return filepath.Join(home, ".config", "leetcode-status-tracker", defaultConfigFileName)
}

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "lcstatusd-data"
	}
	return filepath.Join(home, ".cache", "leetcode-status-tracker")
}

func DefaultTLSCacheDir() string {
	return filepath.Join(DefaultDataDir(), "tls-autocert")
}

func NewDefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ListenAddr:              "127.0.0.1:3001",
		Timezone:                "UTC",
		DataDir:                 DefaultDataDir(),
		FinalizeIntervalSeconds: 300,
		EventLog: EventLogConfig{
			HotDays: 30,
		},
		TLS: TLSConfig{
			Enabled:    false,
			ListenAddr: ":443",
			CacheDir:   DefaultTLSCacheDir(),
		},
	}
}

// LoadServerConfig reads the TOML config at path. A missing file is not an
// error: the defaults describe a fully working local setup.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cfg := NewDefaultServerConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.Normalize()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *ServerConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	b, err := marshalTOML(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func marshalTOML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentSymbol("  ")
	enc.SetIndentTables(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out, nil
}

func (c *ServerConfig) Normalize() {
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = "127.0.0.1:3001"
	}
	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	c.DataDir = strings.TrimSpace(c.DataDir)
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.FinalizeIntervalSeconds <= 0 {
		c.FinalizeIntervalSeconds = 300
	}
	if c.EventLog.HotDays <= 0 {
		c.EventLog.HotDays = 30
	}
	c.TLS.ListenAddr = strings.TrimSpace(c.TLS.ListenAddr)
	if c.TLS.ListenAddr == "" {
		c.TLS.ListenAddr = ":443"
	}
	c.TLS.Domain = strings.TrimSpace(c.TLS.Domain)
	c.TLS.Email = strings.TrimSpace(c.TLS.Email)
	c.TLS.CacheDir = strings.TrimSpace(c.TLS.CacheDir)
	if c.TLS.CacheDir == "" {
		c.TLS.CacheDir = DefaultTLSCacheDir()
	}
}

func (c *ServerConfig) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q is not a valid IANA zone: %w", c.Timezone, err)
	}
	if c.EventLog.HotDays < 8 {
		// The weekly rollup reads the trailing 7 days from the hot file.
		return errors.New("eventlog.hot_days must be >= 8")
	}
	if c.TLS.Enabled && c.TLS.Domain == "" {
		return errors.New("tls.domain is required when tls.enabled=true")
	}
	return nil
}

// Location resolves the configured timezone. Validate guarantees it loads.
func (c *ServerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *ServerConfig) StatePath() string     { return filepath.Join(c.DataDir, "status.json") }
func (c *ServerConfig) EventLogDir() string   { return filepath.Join(c.DataDir, "eventlog") }
func (c *ServerConfig) SnapshotsPath() string { return filepath.Join(c.DataDir, "snapshots.json") }
