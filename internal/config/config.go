package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/scienceol/tea/internal/state"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultWakeInterval = 60 * time.Second
	defaultStopTimeout  = 5 * time.Second
)

type Config struct {
	WakeInterval time.Duration `yaml:"wake_interval"`
	StopTimeout  time.Duration `yaml:"stop_timeout"`
	StateFile    string        `yaml:"state_file"`
	Socket       string        `yaml:"socket"`
	LogLevel     string        `yaml:"log_level"`
	LogFormat    string        `yaml:"log_format"`
	Tray         bool          `yaml:"tray"`
}

// Flags carries command-line overrides. Zero values mean "not set".
type Flags struct {
	ConfigFile string
	Socket     string
	LogLevel   string
	Tray       bool
}

// Load resolves configuration from flags > env > config file > defaults.
func Load(flags Flags) (*Config, error) {
	cfg := &Config{}

	// 1. Load config file as base
	cfgPath := flags.ConfigFile
	if cfgPath == "" {
		cfgPath = defaultConfigPath()
	}
	if cfgPath != "" {
		data, err := os.ReadFile(cfgPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("invalid config file %s: %w", cfgPath, err)
			}
		case flags.ConfigFile != "":
			// An explicitly requested file must exist.
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 2. Environment variables override config file
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	// 3. CLI flags override everything
	if flags.Socket != "" {
		cfg.Socket = flags.Socket
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	if flags.Tray {
		cfg.Tray = true
	}

	if err := cfg.fillDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("TEA_WAKE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TEA_WAKE_INTERVAL: %w", err)
		}
		cfg.WakeInterval = d
	}
	if v := os.Getenv("TEA_STOP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TEA_STOP_TIMEOUT: %w", err)
		}
		cfg.StopTimeout = d
	}
	if v := os.Getenv("TEA_STATE_FILE"); v != "" {
		cfg.StateFile = v
	}
	if v := os.Getenv("TEA_SOCKET"); v != "" {
		cfg.Socket = v
	}
	if v := os.Getenv("TEA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TEA_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	return nil
}

func (c *Config) fillDefaults() error {
	if c.WakeInterval == 0 {
		c.WakeInterval = defaultWakeInterval
	}
	if c.StopTimeout == 0 {
		c.StopTimeout = defaultStopTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.StateFile == "" {
		p, err := state.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to resolve state file path: %w", err)
		}
		c.StateFile = p
	}
	if c.Socket == "" {
		p, err := SocketPath()
		if err != nil {
			return fmt.Errorf("failed to resolve control socket path: %w", err)
		}
		c.Socket = p
	}
	return nil
}

func (c *Config) validate() error {
	if c.WakeInterval < 0 {
		return fmt.Errorf("wake_interval must be positive, got %s", c.WakeInterval)
	}
	if c.StopTimeout < 0 {
		return fmt.Errorf("stop_timeout must be positive, got %s", c.StopTimeout)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tea", "config.yaml")
}
