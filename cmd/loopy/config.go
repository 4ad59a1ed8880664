package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envLoopyConfig = "LOOPY_CONFIG"

// Config represents the loopy configuration file
// (~/.config/loopy/config.yaml). Pointer fields distinguish "not set" from
// zero values.
type Config struct {
	NumBeliefs *int64   `yaml:"num_beliefs"`
	Sweeps     *int64   `yaml:"sweeps"`
	Sigma      *float64 `yaml:"sigma"`
	Floor      *float64 `yaml:"floor"`
	Workers    *int64   `yaml:"workers"`
	Scale      *float64 `yaml:"scale"`
	Upscale    *int64   `yaml:"upscale"`

	OutDir    string `yaml:"out_dir"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	if p := os.Getenv(envLoopyConfig); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "loopy", "config.yaml")
}

// LoadConfig reads the config file. A missing file yields a zero Config; a
// file that exists but does not parse is an error.
func LoadConfig() (Config, error) {
	path := configPath()
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// applyModelConfig applies config defaults to the model and output flags
// that were not set explicitly.
func applyModelConfig(c *cli.Command, cfg Config) {
	if cfg.NumBeliefs != nil && !c.IsSet("beliefs") {
		numBeliefs = *cfg.NumBeliefs
	}
	if cfg.Sweeps != nil && !c.IsSet("sweeps") {
		sweeps = *cfg.Sweeps
	}
	if cfg.Sigma != nil && !c.IsSet("sigma") {
		sigma = *cfg.Sigma
	}
	if cfg.Floor != nil && !c.IsSet("floor") {
		floor = *cfg.Floor
	}
	if cfg.Workers != nil && !c.IsSet("workers") {
		workers = *cfg.Workers
	}
	if cfg.Scale != nil && !c.IsSet("scale") {
		scale = *cfg.Scale
	}
	if cfg.Upscale != nil && !c.IsSet("upscale") {
		upscale = *cfg.Upscale
	}
}

// applyServeConfig applies config defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	applyModelConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
