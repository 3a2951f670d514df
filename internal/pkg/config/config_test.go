package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Errorf("expected memory storage, got %q", cfg.StorageDriver)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.Chat.Burst != 5 || cfg.Chat.RatePerSec != 2 {
		t.Errorf("unexpected chat limits: %+v", cfg.Chat)
	}
	if cfg.Stats.Schedule != "@every 1m" {
		t.Errorf("unexpected stats schedule %q", cfg.Stats.Schedule)
	}
	if cfg.Redis.Enabled {
		t.Errorf("redis must be disabled by default")
	}
	if cfg.Redis.PoolSize != 10 || cfg.Redis.Timeout != 3*time.Second || cfg.Redis.Password != "" {
		t.Errorf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if !cfg.IsDevelopment() {
		t.Errorf("expected development env by default")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":             "production",
		"JWT_SECRET":      "s3cret",
		"STORAGE_DRIVER":  "mongo",
		"MONGO_DB":        "kyzmat",
		"REDIS_ENABLED":   "true",
		"REDIS_PASSWORD":  "r3dis",
		"REDIS_POOL_SIZE": "32",
		"REDIS_TIMEOUT":   "750ms",
		"NOTIFY_WORKERS":  "16",
	}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.Mongo.Database != "kyzmat" || cfg.StorageDriver != StorageMongo {
		t.Errorf("unexpected mongo config: %+v / %q", cfg.Mongo, cfg.StorageDriver)
	}
	if !cfg.Redis.Enabled || cfg.Notifications.Workers != 16 {
		t.Errorf("unexpected overrides: %+v %+v", cfg.Redis, cfg.Notifications)
	}
	if cfg.Redis.Password != "r3dis" || cfg.Redis.PoolSize != 32 || cfg.Redis.Timeout != 750*time.Millisecond {
		t.Errorf("unexpected redis connection settings: %+v", cfg.Redis)
	}
}

func TestLoadWith_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":         {"STORAGE_DRIVER": "postgres"},
		"missing secret in prod": {"ENV": "production"},
		"bad int":                {"REDIS_DB": "zero"},
		"bad duration":           {"REDIS_TIMEOUT": "soon"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
