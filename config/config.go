// Package config loads host settings from a TOML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	BackendObject = "object" //goloader linked object files
	BackendPlugin = "plugin" //go plugins, can't be unloaded
	BackendStatic = "static" //entry points linked into the host
)

type Config struct {
	Module      ModuleConfig `toml:"module"`
	Interval    Duration     `toml:"interval"`
	MetricsAddr string       `toml:"metrics_addr"`
	LogLevel    string       `toml:"log_level"`
	Debug       bool         `toml:"debug"`
}

type ModuleConfig struct {
	Name          string `toml:"name"`
	BuildRoot     string `toml:"build_root"`
	Profile       string `toml:"profile"`
	Package       string `toml:"package"`
	CreateSymbol  string `toml:"create_symbol"`
	DestroySymbol string `toml:"destroy_symbol"`
	Backend       string `toml:"backend"`
}

// Duration decodes TOML strings like "1s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the settings for the sample counter module.
func Default() Config {
	return Config{
		Module: ModuleConfig{
			Name:          "counter",
			BuildRoot:     "target",
			Profile:       "debug",
			Package:       "counter",
			CreateSymbol:  "Create",
			DestroySymbol: "Destroy",
			Backend:       BackendObject,
		},
		Interval: Duration{time.Second},
	}
}

// Load reads path over the defaults and validates the result. An empty path returns the defaults.
func Load(path string) (cfg Config, err error) {
	if cfg, err = Read(path); err != nil {
		return
	}
	if err = Validate(cfg); err != nil {
		return Config{}, err
	}
	return
}

// Read reads path over the defaults without validating, for callers applying overrides first.
func Read(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	m := cfg.Module
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("module config missing name")
	}
	if strings.ContainsAny(m.Name, `/\`) {
		return fmt.Errorf("module name %q must not contain a path separator", m.Name)
	}
	if strings.TrimSpace(m.CreateSymbol) == "" || strings.TrimSpace(m.DestroySymbol) == "" {
		return fmt.Errorf("module config missing entry symbols")
	}
	if m.CreateSymbol == m.DestroySymbol {
		return fmt.Errorf("create and destroy symbols must differ")
	}
	switch m.Backend {
	case BackendObject, BackendPlugin, BackendStatic:
	default:
		return fmt.Errorf("unknown backend %q", m.Backend)
	}
	if cfg.Interval.Duration <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	return nil
}
