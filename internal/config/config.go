package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete TaskAdemic configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	User      UserConfig      `mapstructure:"user"`
	AI        AIConfig        `mapstructure:"ai"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
}

// DatabaseConfig controls where the SQLite database lives.
type DatabaseConfig struct {
	// Path is the SQLite database file path. Empty means the default
	// location under the user's data directory.
	Path string `mapstructure:"path"`
}

// ServerConfig controls the HTTP API listener.
type ServerConfig struct {
	// ListenAddr is the address the daemon binds to.
	ListenAddr string `mapstructure:"listen_addr"`
}

// UserConfig identifies the local user. All analysis caching and
// schedule storage is keyed by this id.
type UserConfig struct {
	ID string `mapstructure:"id"`
}

// AIConfig controls the reasoning service used for schedule generation.
// An empty APIKey disables the service and schedules come from the
// deterministic packer.
type AIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// SchedulerConfig tunes schedule generation.
type SchedulerConfig struct {
	// ShouldTaskLimit caps how many should-bucket tasks are offered to
	// the planner per day.
	ShouldTaskLimit int `mapstructure:"should_task_limit"`
	// BufferMinutes is the gap inserted after each scheduled task.
	BufferMinutes int `mapstructure:"buffer_minutes"`
}

// AnalysisConfig tunes the priority-analysis cache.
type AnalysisConfig struct {
	// CacheTTLMinutes is how long a computed analysis stays fresh
	// without task mutations.
	CacheTTLMinutes int `mapstructure:"cache_ttl_minutes"`
}

// CacheTTL returns the analysis cache TTL as a time.Duration.
func (a *AnalysisConfig) CacheTTL() time.Duration {
	return time.Duration(a.CacheTTLMinutes) * time.Minute
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "", // Empty means ConfigDir()/taskademic.db
		},
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:8642",
		},
		User: UserConfig{
			ID: "local",
		},
		AI: AIConfig{
			APIKey:  "",
			BaseURL: "https://openrouter.ai/api/v1",
			Model:   "deepseek/deepseek-r1:free",
		},
		Scheduler: SchedulerConfig{
			ShouldTaskLimit: 5,
			BufferMinutes:   10,
		},
		Analysis: AnalysisConfig{
			CacheTTLMinutes: 60,
		},
	}
}

// SetDefaults registers default values with viper.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("database.path", defaults.Database.Path)
	viper.SetDefault("server.listen_addr", defaults.Server.ListenAddr)
	viper.SetDefault("user.id", defaults.User.ID)
	viper.SetDefault("ai.api_key", defaults.AI.APIKey)
	viper.SetDefault("ai.base_url", defaults.AI.BaseURL)
	viper.SetDefault("ai.model", defaults.AI.Model)
	viper.SetDefault("scheduler.should_task_limit", defaults.Scheduler.ShouldTaskLimit)
	viper.SetDefault("scheduler.buffer_minutes", defaults.Scheduler.BufferMinutes)
	viper.SetDefault("analysis.cache_ttl_minutes", defaults.Analysis.CacheTTLMinutes)
}

// Init wires viper to the config file and TASKADEMIC_* environment
// variables. A missing config file is not an error.
func Init(cfgFile string) error {
	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(ConfigDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("taskademic")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Load reads the configuration from viper into a Config struct and
// validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration values that would break the scheduler.
func (c *Config) Validate() error {
	if c.User.ID == "" {
		return fmt.Errorf("user.id must not be empty")
	}
	if c.Scheduler.ShouldTaskLimit < 0 {
		return fmt.Errorf("scheduler.should_task_limit must not be negative")
	}
	if c.Scheduler.BufferMinutes < 0 {
		return fmt.Errorf("scheduler.buffer_minutes must not be negative")
	}
	if c.Analysis.CacheTTLMinutes <= 0 {
		return fmt.Errorf("analysis.cache_ttl_minutes must be positive")
	}
	return nil
}

// DatabasePath resolves the SQLite file path, falling back to the
// config directory.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(ConfigDir(), "taskademic.db")
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskademic")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskademic"
	}
	return filepath.Join(home, ".config", "taskademic")
}
