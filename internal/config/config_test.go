package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Server.ListenAddr != "127.0.0.1:8642" {
		t.Errorf("Server.ListenAddr = %q, want %q", cfg.Server.ListenAddr, "127.0.0.1:8642")
	}
	if cfg.User.ID != "local" {
		t.Errorf("User.ID = %q, want %q", cfg.User.ID, "local")
	}
	if cfg.AI.APIKey != "" {
		t.Error("AI.APIKey should be empty by default")
	}
	if cfg.AI.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("AI.BaseURL = %q", cfg.AI.BaseURL)
	}
	if cfg.Scheduler.ShouldTaskLimit != 5 {
		t.Errorf("Scheduler.ShouldTaskLimit = %d, want 5", cfg.Scheduler.ShouldTaskLimit)
	}
	if cfg.Scheduler.BufferMinutes != 10 {
		t.Errorf("Scheduler.BufferMinutes = %d, want 10", cfg.Scheduler.BufferMinutes)
	}
	if cfg.Analysis.CacheTTLMinutes != 60 {
		t.Errorf("Analysis.CacheTTLMinutes = %d, want 60", cfg.Analysis.CacheTTLMinutes)
	}
}

func TestCacheTTL(t *testing.T) {
	a := AnalysisConfig{CacheTTLMinutes: 90}
	if got := a.CacheTTL(); got != 90*time.Minute {
		t.Errorf("CacheTTL() = %v, want 90m", got)
	}
}

func TestLoadUsesDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Scheduler.ShouldTaskLimit != 5 {
		t.Errorf("Scheduler.ShouldTaskLimit = %d, want 5", cfg.Scheduler.ShouldTaskLimit)
	}
	if cfg.Analysis.CacheTTL() != time.Hour {
		t.Errorf("Analysis.CacheTTL() = %v, want 1h", cfg.Analysis.CacheTTL())
	}
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()
	viper.Set("scheduler.should_task_limit", 3)
	viper.Set("user.id", "alice")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Scheduler.ShouldTaskLimit != 3 {
		t.Errorf("Scheduler.ShouldTaskLimit = %d, want 3", cfg.Scheduler.ShouldTaskLimit)
	}
	if cfg.User.ID != "alice" {
		t.Errorf("User.ID = %q, want alice", cfg.User.ID)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"empty user id", func(c *Config) { c.User.ID = "" }, true},
		{"negative should limit", func(c *Config) { c.Scheduler.ShouldTaskLimit = -1 }, true},
		{"negative buffer", func(c *Config) { c.Scheduler.BufferMinutes = -5 }, true},
		{"zero cache ttl", func(c *Config) { c.Analysis.CacheTTLMinutes = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
