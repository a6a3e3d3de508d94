package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func lookupFrom(env map[string]string) envLookup {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(nil, lookupFrom(map[string]string{"DATABASE_URI": "postgres://db"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RunAddress != defaultRunAddress {
		t.Fatalf("unexpected run address: %s", cfg.RunAddress)
	}
	if cfg.GraceWindowDays != 1 {
		t.Fatalf("unexpected grace window: %d", cfg.GraceWindowDays)
	}
	if cfg.SweepInterval != time.Hour {
		t.Fatalf("unexpected sweep interval: %s", cfg.SweepInterval)
	}
	if cfg.SweepLookback != 7 {
		t.Fatalf("unexpected sweep lookback: %d", cfg.SweepLookback)
	}
	if cfg.NotifyAddress != "" {
		t.Fatalf("notify address must default to empty, got %q", cfg.NotifyAddress)
	}
}

func TestLoadMissingDatabase(t *testing.T) {
	if _, err := load(nil, lookupFrom(nil)); err == nil {
		t.Fatal("expected error without database URI")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	env := map[string]string{
		"DATABASE_URI":        "postgres://db",
		"RUN_ADDRESS":         ":9090",
		"GRACE_WINDOW_DAYS":   "2",
		"SWEEP_INTERVAL":      "30m",
		"SWEEP_LOOKBACK_DAYS": "14",
		"WORKER_POOL_SIZE":    "8",
		"NOTIFY_ADDRESS":      "http://notify:9000",
	}
	cfg, err := load(nil, lookupFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RunAddress != ":9090" || cfg.GraceWindowDays != 2 || cfg.SweepLookback != 14 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.SweepInterval != 30*time.Minute {
		t.Fatalf("unexpected sweep interval: %s", cfg.SweepInterval)
	}
	if cfg.WorkerPoolSize != 8 {
		t.Fatalf("unexpected worker pool size: %d", cfg.WorkerPoolSize)
	}
	if cfg.NotifyAddress != "http://notify:9000" {
		t.Fatalf("unexpected notify address: %s", cfg.NotifyAddress)
	}
}

func TestLoadFlagOverrides(t *testing.T) {
	args := []string{"-a", ":7070", "-d", "postgres://flags", "-grace-days", "3", "-sweep-interval", "15m"}
	cfg, err := load(args, lookupFrom(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RunAddress != ":7070" || cfg.DatabaseURI != "postgres://flags" {
		t.Fatalf("flag overrides not applied: %+v", cfg)
	}
	if cfg.GraceWindowDays != 3 {
		t.Fatalf("unexpected grace window: %d", cfg.GraceWindowDays)
	}
	if cfg.SweepInterval != 15*time.Minute {
		t.Fatalf("unexpected sweep interval: %s", cfg.SweepInterval)
	}
}

func TestLoadInvalidSweepInterval(t *testing.T) {
	args := []string{"-d", "postgres://db", "-sweep-interval", "nonsense"}
	if _, err := load(args, lookupFrom(nil)); err == nil {
		t.Fatal("expected error for invalid sweep interval")
	}
}

func TestLoadJWTSecretFile(t *testing.T) {
	dir := t.TempDir()
	secretPath := filepath.Join(dir, "secret")
	if err := os.WriteFile(secretPath, []byte("from-file"), 0o600); err != nil {
		t.Fatalf("write secret file: %v", err)
	}
	env := map[string]string{
		"DATABASE_URI":    "postgres://db",
		"JWT_SECRET_FILE": secretPath,
	}
	cfg, err := load(nil, lookupFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.JWTSecret != "from-file" {
		t.Fatalf("unexpected secret: %q", cfg.JWTSecret)
	}
}

func TestLoadJWTSecretFileMissing(t *testing.T) {
	env := map[string]string{
		"DATABASE_URI":    "postgres://db",
		"JWT_SECRET_FILE": "/does/not/exist",
	}
	if _, err := load(nil, lookupFrom(env)); err == nil {
		t.Fatal("expected error for missing secret file")
	}
}

func TestLoadNegativeValuesFallBack(t *testing.T) {
	env := map[string]string{
		"DATABASE_URI":      "postgres://db",
		"GRACE_WINDOW_DAYS": "-5",
		"WORKER_POOL_SIZE":  "-1",
		"SWEEP_BATCH_SIZE":  "0",
	}
	cfg, err := load(nil, lookupFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GraceWindowDays != defaultGraceWindowDays {
		t.Fatalf("unexpected grace window: %d", cfg.GraceWindowDays)
	}
	if cfg.WorkerPoolSize != defaultWorkerPoolSize {
		t.Fatalf("unexpected worker pool size: %d", cfg.WorkerPoolSize)
	}
	if cfg.SweepBatchSize != defaultSweepBatchSize {
		t.Fatalf("unexpected sweep batch size: %d", cfg.SweepBatchSize)
	}
}
