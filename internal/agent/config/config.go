// Package config loads settings for the sync agent.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see Default).
//  2. An optional TOML file named by --config.
//  3. Command-line flags that were set explicitly.
//
// Example file:
//
//	server_url    = "http://127.0.0.1:8080"
//	live_addr     = "127.0.0.1:50051"
//	workspace     = "/home/alice/code/demo"
//	exclude       = ["node_modules/**", "*.log"]
//	max_file_size = 1048576
//	poll_interval = "2s"
//	log_level     = "info"
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/sharelink/internal/agent/workspace"
	"github.com/dmitrijs2005/sharelink/internal/logging"
	"github.com/dmitrijs2005/sharelink/internal/timex"
)

const (
	DefaultServerURL    = "http://127.0.0.1:8080"
	DefaultLiveAddr     = "127.0.0.1:50051"
	DefaultPollInterval = 2 * time.Second
	StateFileName       = "state.db"
)

type Config struct {
	ServerURL    string         `toml:"server_url"`
	LiveAddr     string         `toml:"live_addr"`
	Workspace    string         `toml:"workspace"`
	StatePath    string         `toml:"state_path,omitempty"`
	Exclude      []string       `toml:"exclude"`
	MaxFileSize  int64          `toml:"max_file_size"`
	PollInterval timex.Duration `toml:"poll_interval"`
	LogLevel     string         `toml:"log_level"`
}

func Default() *Config {
	return &Config{
		ServerURL:    DefaultServerURL,
		LiveAddr:     DefaultLiveAddr,
		Workspace:    ".",
		Exclude:      append([]string(nil), workspace.DefaultExcludes...),
		MaxFileSize:  workspace.DefaultMaxFileSize,
		PollInterval: timex.Duration{Duration: DefaultPollInterval},
		LogLevel:     "info",
	}
}

// Read decodes a TOML document over the defaults. Unknown keys are
// rejected so typos do not go unnoticed.
func Read(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config keys: %v", undecoded)
	}
	return cfg, nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Resolve makes Workspace absolute and fills StatePath from it when unset.
func (c *Config) Resolve() error {
	ws, err := filepath.Abs(c.Workspace)
	if err != nil {
		return fmt.Errorf("workspace path: %w", err)
	}
	c.Workspace = ws
	if c.StatePath == "" {
		c.StatePath = filepath.Join(ws, workspace.StateDir, StateFileName)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("server_url must be an http(s) URL, got %q", c.ServerURL))
	}
	if c.LiveAddr == "" {
		errs = append(errs, errors.New("live_addr is required"))
	}
	if c.Workspace == "" {
		errs = append(errs, errors.New("workspace is required"))
	}
	if c.MaxFileSize <= 0 {
		errs = append(errs, errors.New("max_file_size must be positive"))
	}
	if c.PollInterval.Duration <= 0 {
		errs = append(errs, errors.New("poll_interval must be positive"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
