// Package config loads settings for the lsbsteg CLI and HTTP server.
//
// Configuration comes from at most one YAML file, named by the --config
// flag or the LSBSTEG_CONFIG environment variable, layered over built-in
// defaults. PORT overrides server.port, as container platforms expect.
package config

import (
	"bmp-steganography/stego"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "LSBSTEG_CONFIG"

type Config struct {
	Server ServerConfig `yaml:"server"`
	Stego  StegoConfig  `yaml:"stego"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowOrigins   []string `yaml:"allow_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
}

type StegoConfig struct {
	// MaxFieldBytes bounds any decoded field length, so a corrupt length
	// prefix cannot force a huge allocation.
	MaxFieldBytes      int64  `yaml:"max_field_bytes"`
	StrictBMP          bool   `yaml:"strict_bmp"`
	DecodedBaseName    string `yaml:"decoded_base_name"`
	DefaultStegoOutput string `yaml:"default_stego_output"`
	// MinPSNR is the quality floor in dB below which an encode is logged
	// as a warning. Zero disables the check.
	MinPSNR float64 `yaml:"min_psnr"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			AllowOrigins:   []string{"http://localhost:3000"},
			MaxUploadBytes: 32 << 20,
		},
		Stego: StegoConfig{
			MaxFieldBytes:      stego.DefaultMaxFieldBytes,
			StrictBMP:          true,
			DecodedBaseName:    stego.DefaultDecodedBaseName,
			DefaultStegoOutput: stego.DefaultStegoOutput,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path (or $LSBSTEG_CONFIG when path is empty) over the
// defaults. With neither set, the defaults are returned as is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the tools cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.Stego.MaxFieldBytes <= 0 {
		errs = append(errs, errors.New("stego.max_field_bytes must be positive"))
	}
	if c.Stego.MaxFieldBytes > int64(^uint32(0)) {
		errs = append(errs, errors.New("stego.max_field_bytes must fit a 32-bit length"))
	}
	if c.Stego.MinPSNR < 0 {
		errs = append(errs, errors.New("stego.min_psnr must not be negative"))
	}
	if c.Stego.DecodedBaseName == "" {
		errs = append(errs, errors.New("stego.decoded_base_name is required"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	return errors.Join(errs...)
}
