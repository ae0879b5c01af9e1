package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:                "8080",
		DataBackend:         BackendMemory,
		YieldSchedule:       DefaultYieldSchedule,
		YieldAccountTimeout: 30 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		errorString string
	}{
		{name: "valid memory backend", mutate: func(c *Config) {}},
		{
			name:   "valid postgres backend",
			mutate: func(c *Config) { c.DataBackend = BackendPostgres; c.DatabaseURI = "postgres://localhost/wealth" },
		},
		{
			name:        "invalid port",
			mutate:      func(c *Config) { c.Port = "abc" },
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "port out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "postgres without uri",
			mutate:      func(c *Config) { c.DataBackend = BackendPostgres },
			errorString: "DATABASE_URI is required",
		},
		{
			name:        "unknown backend",
			mutate:      func(c *Config) { c.DataBackend = "sqlite" },
			errorString: "invalid data backend 'sqlite'",
		},
		{
			name:        "bad schedule",
			mutate:      func(c *Config) { c.YieldSchedule = "BYHOUR=9" },
			errorString: "invalid yield schedule",
		},
		{
			name:        "timeout too short",
			mutate:      func(c *Config) { c.YieldAccountTimeout = 10 * time.Millisecond },
			errorString: "invalid yield account timeout",
		},
		{
			name:        "telegram without chat",
			mutate:      func(c *Config) { c.TelegramToken = "token" },
			errorString: "TELEGRAM_CHAT_ID is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.errorString)
			}
			if !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errorString)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_BACKEND", "YIELD_SCHEDULE", "YIELD_ACCOUNT_TIMEOUT", "TELEGRAM_CHAT_ID"} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DataBackend != BackendPostgres || cfg.YieldSchedule != DefaultYieldSchedule {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.YieldAccountTimeout != 30*time.Second {
		t.Errorf("YieldAccountTimeout = %v, want 30s", cfg.YieldAccountTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("YIELD_ACCOUNT_TIMEOUT", "5s")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	cfg, _ := Load()
	if cfg.YieldAccountTimeout != 5*time.Second {
		t.Errorf("YieldAccountTimeout = %v, want 5s", cfg.YieldAccountTimeout)
	}
	if cfg.TelegramChatID != -100123 {
		t.Errorf("TelegramChatID = %d", cfg.TelegramChatID)
	}
}
