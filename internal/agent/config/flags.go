package config

import (
	"github.com/spf13/pflag"
)

// AddFlags registers the agent flags on fs. Help shows the built-in
// defaults; Load only applies flags that were set explicitly, so a config
// file value is not clobbered by a flag default.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.StringP("config", "c", "", "path to TOML config file")
	fs.StringP("server", "s", d.ServerURL, "server base URL")
	fs.String("live", d.LiveAddr, "live channel address (host:port)")
	fs.StringP("workspace", "w", d.Workspace, "workspace directory")
	fs.String("state", "", "state database path (default <workspace>/.sharelink/state.db)")
	fs.StringSlice("exclude", nil, "additional exclude pattern, repeatable")
	fs.Int64("max-file-size", d.MaxFileSize, "largest file synced, in bytes")
	fs.Duration("poll-interval", d.PollInterval.Duration, "workspace poll interval")
	fs.String("log-level", d.LogLevel, "log level: debug | info | warn | error")
}

// Load builds the effective Config from defaults, the --config file and
// explicitly set flags, then resolves and validates it.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	if path, _ := fs.GetString("config"); path != "" {
		c, err := ReadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	if err := overlay(cfg, fs); err != nil {
		return nil, err
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlay(cfg *Config, fs *pflag.FlagSet) error {
	var err error

	str := func(name string, dst *string) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetString(name)
		}
	}
	str("server", &cfg.ServerURL)
	str("live", &cfg.LiveAddr)
	str("workspace", &cfg.Workspace)
	str("state", &cfg.StatePath)
	str("log-level", &cfg.LogLevel)

	if err == nil && fs.Changed("exclude") {
		var extra []string
		extra, err = fs.GetStringSlice("exclude")
		cfg.Exclude = append(cfg.Exclude, extra...)
	}
	if err == nil && fs.Changed("max-file-size") {
		cfg.MaxFileSize, err = fs.GetInt64("max-file-size")
	}
	if err == nil && fs.Changed("poll-interval") {
		cfg.PollInterval.Duration, err = fs.GetDuration("poll-interval")
	}
	return err
}
