package app

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL        string `yaml:"base_url"`
	RequestTimeout int    `yaml:"request_timeout_seconds"`
	DownloadDir    string `yaml:"download_dir"`
	Theme          string `yaml:"theme"`
	LogFile        string `yaml:"log_file"`
	Debug          bool   `yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		RequestTimeout: 120,
		DownloadDir:    defaultDownloadDir(),
		Theme:          "porcelain",
		LogFile:        defaultLogPath(),
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return applyEnv(cfg), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 120
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = defaultDownloadDir()
	}
	if cfg.Theme == "" {
		cfg.Theme = "porcelain"
	}
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogPath()
	}
	return applyEnv(cfg), nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv("LAWCLERK_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("LAWCLERK_DOWNLOAD_DIR"); v != "" {
		cfg.DownloadDir = v
	}
	if os.Getenv("LAWCLERK_DEBUG") == "1" {
		cfg.Debug = true
	}
	return cfg
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "lawclerk", "config.yml")
}

func defaultDownloadDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, "Downloads")
	}
	return os.TempDir()
}

func defaultLogPath() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, "lawclerk", "lawclerk.log")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "lawclerk", "lawclerk.log")
	}
	return filepath.Join(os.TempDir(), "lawclerk", "lawclerk.log")
}
