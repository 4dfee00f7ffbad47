// Package config loads ibtopo settings from a TOML file.
//
// The file holds persistent defaults; command-line flags override it. Every
// key is optional and unknown keys are rejected so typos do not go unnoticed:
//
//	color = false
//	labels = true
//	show_guid = true
//	switch_label = "{name}\nLID {lid}\n{free}"
//	host_label = "{name}"
//	formats = ["svg", "pdf"]
//	layout = "dot"
//	dialect = "auto"
//	adapter_markers = ["HCA", "mlx5"]
//	high_speed = 100
//	low_speed = 40
//	output = "fabric"
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ibtopo/pkg/errors"
	"github.com/matzehuels/ibtopo/pkg/pipeline"
)

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Config mirrors the TOML file. Pointer fields distinguish an absent key
// from its zero value.
type Config struct {
	Color          *bool    `toml:"color"`
	Labels         *bool    `toml:"labels"`
	ShowGUID       *bool    `toml:"show_guid"`
	SwitchLabel    *string  `toml:"switch_label"`
	HostLabel      *string  `toml:"host_label"`
	Formats        []string `toml:"formats"`
	Layout         *string  `toml:"layout"`
	Dialect        *string  `toml:"dialect"`
	AdapterMarkers []string `toml:"adapter_markers"`
	HighSpeed      *float64 `toml:"high_speed"`
	LowSpeed       *float64 `toml:"low_speed"`
	Output         *string  `toml:"output"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`

	// Path is the file the config was read from; empty for defaults.
	Path string `toml:"-"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	RedisURL string `toml:"redis_url"`
}

// ServerConfig configures `ibtopo serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultPath returns $XDG_CONFIG_HOME/ibtopo/config.toml, falling back to
// the OS user config directory.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "ibtopo", FileName), nil
}

// Load reads the config at path. When path is empty the default location is
// used and a missing file yields an empty config; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return &Config{}, nil
		}
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "stat %s", path)
	}

	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	return &cfg, nil
}

// Apply copies every key set in the file onto opts.
func (c *Config) Apply(opts *pipeline.Options) {
	if c.Color != nil {
		opts.NoColor = !*c.Color
	}
	if c.Labels != nil {
		opts.Labels = *c.Labels
	}
	if c.ShowGUID != nil {
		opts.ShowGUID = *c.ShowGUID
	}
	if c.SwitchLabel != nil {
		opts.SwitchTemplate = *c.SwitchLabel
	}
	if c.HostLabel != nil {
		opts.EndpointTemplate = *c.HostLabel
	}
	if c.Formats != nil {
		opts.Formats = c.Formats
	}
	if c.Layout != nil {
		opts.Layout = *c.Layout
	}
	if c.Dialect != nil {
		opts.Dialect = *c.Dialect
	}
	if c.AdapterMarkers != nil {
		opts.AdapterMarkers = c.AdapterMarkers
	}
	if c.HighSpeed != nil {
		opts.HighSpeed = *c.HighSpeed
	}
	if c.LowSpeed != nil {
		opts.LowSpeed = *c.LowSpeed
	}
	if c.Output != nil {
		opts.Basename = *c.Output
	}
}
