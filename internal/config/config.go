// Package config loads chatlens configuration: hardcoded defaults, then an
// optional YAML file, then CHATLENS_-prefixed environment variables, each
// layer overriding the previous one.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Logs    LogsConfig    `koanf:"logs"`
	Catalog CatalogConfig `koanf:"catalog"`
	Export  ExportConfig  `koanf:"export"`
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	List    ListConfig    `koanf:"list"`
}

type LogsConfig struct {
	// Root is the projects directory holding per-project .jsonl logs.
	Root string `koanf:"root"`
}

type CatalogConfig struct {
	Path string `koanf:"path"`
}

type ExportConfig struct {
	Dir string `koanf:"dir"`
}

type ServerConfig struct {
	Host  string `koanf:"host"`
	Port  int    `koanf:"port"`
	Watch bool   `koanf:"watch"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type ListConfig struct {
	// MinMessages excludes conversations at or below this raw line count.
	MinMessages int `koanf:"min_messages"`
}

// Load reads configuration from the YAML file at configPath (default
// ~/.config/chatlens/config.yaml) and the environment. A missing file is
// fine; defaults cover everything.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "chatlens", "config.yaml")
	}

	if content, err := os.ReadFile(configPath); err == nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	// CHATLENS_SERVER_PORT -> server.port, CHATLENS_LIST_MIN_MESSAGES ->
	// list.min_messages: first underscore separates section from field.
	if err := k.Load(env.Provider("CHATLENS_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "CHATLENS_"))
		parts := strings.SplitN(s, "_", 2)
		if len(parts) == 1 {
			return s
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) error {
	if cfg.Logs.Root == "" {
		root, err := DetectLogsRoot("")
		if err != nil {
			return err
		}
		cfg.Logs.Root = root
	}
	if cfg.Catalog.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.Catalog.Path = filepath.Join(home, ".local", "share", "chatlens", "catalog.json")
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8420
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q (want console or json)", c.Log.Format)
	}
	if c.List.MinMessages < 0 {
		return fmt.Errorf("list.min_messages must not be negative")
	}
	return nil
}

// DetectLogsRoot resolves the projects directory: explicit value, then
// CLAUDE_HOME, then ~/.claude, each with "projects" appended when the value
// names the home rather than the projects dir itself.
func DetectLogsRoot(explicit string) (string, error) {
	if explicit != "" {
		return filepath.Clean(explicit), nil
	}
	if fromEnv := os.Getenv("CLAUDE_HOME"); fromEnv != "" {
		return filepath.Join(filepath.Clean(fromEnv), "projects"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".claude", "projects"), nil
}
