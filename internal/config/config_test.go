package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.JWT.Expiration != time.Hour {
		t.Errorf("JWT.Expiration = %v, want 1h", cfg.JWT.Expiration)
	}
	if cfg.Redis.TTL != 5*time.Minute {
		t.Errorf("Redis.TTL = %v, want 5m", cfg.Redis.TTL)
	}
	if cfg.RateLimit.RequestsPerMinute != 100 {
		t.Errorf("RateLimit.RequestsPerMinute = %d, want 100", cfg.RateLimit.RequestsPerMinute)
	}
	if cfg.OpenAI.Model != "gpt-3.5-turbo" {
		t.Errorf("OpenAI.Model = %s, want gpt-3.5-turbo", cfg.OpenAI.Model)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRATION", "30m")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("WS_MAX_CONN_PER_STUDENT", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
	}
	if cfg.JWT.Expiration != 30*time.Minute {
		t.Errorf("JWT.Expiration = %v, want 30m", cfg.JWT.Expiration)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %s", cfg.Redis.Addr)
	}
	if cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled = true, want false")
	}
	if cfg.WebSocket.MaxConnPerUser != 2 {
		t.Errorf("WebSocket.MaxConnPerUser = %d, want 2", cfg.WebSocket.MaxConnPerUser)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("JWT_EXPIRATION", "forever")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid JWT_EXPIRATION")
	}
}
