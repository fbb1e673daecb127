// Package config loads techfolio settings from defaults, an optional YAML
// file and TECHFOLIO_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "TECHFOLIO_CONFIG"

// Config defines techfolio configuration.
type Config struct {
	DataDir  string         `yaml:"data_dir"`
	Server   ServerConfig   `yaml:"server"`
	DB       DBConfig       `yaml:"db"`
	Log      LogConfig      `yaml:"log"`
	Feed     FeedConfig     `yaml:"feed"`
	Timeline TimelineConfig `yaml:"timeline"`
	Stats    StatsConfig    `yaml:"stats"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type FeedConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	QiitaBaseURL string        `yaml:"qiita_base_url"`
	QiitaToken   string        `yaml:"qiita_token"`
	PerPage      int           `yaml:"per_page"`
}

type TimelineConfig struct {
	PageSize int `yaml:"page_size"`
}

type StatsConfig struct {
	Limit int `yaml:"limit"`
}

// Default returns the built-in configuration. Load derives DB.Path from
// DataDir when nothing sets it.
func Default() Config {
	return Config{
		DataDir: defaultDataDir(),
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
		},
		Feed: FeedConfig{
			Timeout:      15 * time.Second,
			QiitaBaseURL: "https://qiita.com",
			PerPage:      20,
		},
		Timeline: TimelineConfig{PageSize: 20},
		Stats:    StatsConfig{Limit: 10},
	}
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "techfolio")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "techfolio")
	}
	return "."
}

// Load reads configuration from an optional YAML file and environment
// variables. An explicit path wins over TECHFOLIO_CONFIG.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DB.Path == "" {
		cfg.DB.Path = filepath.Join(cfg.DataDir, "techfolio.db")
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if dir := os.Getenv("TECHFOLIO_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if host := os.Getenv("TECHFOLIO_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if err := envInt("TECHFOLIO_SERVER_PORT", &cfg.Server.Port); err != nil {
		return err
	}
	if dbPath := os.Getenv("TECHFOLIO_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("TECHFOLIO_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if s := os.Getenv("TECHFOLIO_FEED_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid TECHFOLIO_FEED_TIMEOUT: %w", err)
		}
		cfg.Feed.Timeout = d
	}
	if u := os.Getenv("TECHFOLIO_QIITA_BASE_URL"); u != "" {
		cfg.Feed.QiitaBaseURL = u
	}
	if token := os.Getenv("TECHFOLIO_QIITA_TOKEN"); token != "" {
		cfg.Feed.QiitaToken = token
	}
	if err := envInt("TECHFOLIO_FEED_PER_PAGE", &cfg.Feed.PerPage); err != nil {
		return err
	}
	if err := envInt("TECHFOLIO_PAGE_SIZE", &cfg.Timeline.PageSize); err != nil {
		return err
	}
	return envInt("TECHFOLIO_STATS_LIMIT", &cfg.Stats.Limit)
}

func envInt(name string, dst *int) error {
	s := os.Getenv(name)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = n
	return nil
}

// LockPath is the cross-process sync lock file.
func (c Config) LockPath() string {
	return filepath.Join(c.DataDir, "sync.lock")
}

// ParseLogLevel maps a config level name to a slog level. Unknown names
// mean info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
