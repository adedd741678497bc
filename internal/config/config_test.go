package config

import (
	"os"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DB_PATH", "GRPC_ADDRESS", "HTTP_ADDRESS", "JWT_SECRET", "STORE_BACKEND", "MONGO_URI",
		"SMTP_PORT", "SMTP_PASSWORD", "NOTIFY_TIMEOUT", "NATS_URL", "LOCAL_TIMEZONE"} {
		// t.Setenv registers restoration; Unsetenv then removes it for this test.
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadWithDefaults_Succeeds(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.GRPC.Address == "" || cfg.Database.Path == "" || cfg.Auth.JWTSecret == "" {
		t.Fatalf("unexpected empty defaults: %+v", cfg)
	}
	if cfg.Database.Backend != BackendSQLite || cfg.SMTP.Port != 587 || cfg.Notify.Timeout != 5*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Donation.Location != time.UTC {
		t.Fatalf("default zone = %v, want UTC", cfg.Donation.Location)
	}
}

func TestLoad_LocalTimezone(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOCAL_TIMEZONE", "Asia/Kolkata")
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.Donation.Location.String() != "Asia/Kolkata" {
		t.Fatalf("zone = %v", cfg.Donation.Location)
	}
	if !strings.Contains(cfg.String(), "Zone: Asia/Kolkata") {
		t.Fatalf("zone missing from %s", cfg.String())
	}
	t.Setenv("LOCAL_TIMEZONE", "Mars/Olympus")
	if _, err := LoadWithDefaults(); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "test.db")
	t.Setenv("GRPC_ADDRESS", ":1234")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is not set")
	}
	t.Setenv("JWT_SECRET", "x")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with secret set: %v", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMTP_PORT", "abc")
	if _, err := LoadWithDefaults(); err == nil {
		t.Fatalf("expected error for bad SMTP_PORT")
	}
	t.Setenv("SMTP_PORT", "25")
	t.Setenv("NOTIFY_TIMEOUT", "soon")
	if _, err := LoadWithDefaults(); err == nil {
		t.Fatalf("expected error for bad NOTIFY_TIMEOUT")
	}
	t.Setenv("NOTIFY_TIMEOUT", "2s")
	t.Setenv("STORE_BACKEND", "mongo")
	if _, err := LoadWithDefaults(); err == nil {
		t.Fatalf("expected error for mongo without MONGO_URI")
	}
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	cfg, err := LoadWithDefaults()
	if err != nil || cfg.Notify.Timeout != 2*time.Second || cfg.SMTP.Port != 25 {
		t.Fatalf("LoadWithDefaults: %v %+v", err, cfg)
	}
	t.Setenv("STORE_BACKEND", "postgres")
	if _, err := LoadWithDefaults(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestString_MasksSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "topsecret")
	t.Setenv("SMTP_PASSWORD", "hunter2")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := cfg.String()
	if strings.Contains(s, "topsecret") || strings.Contains(s, "hunter2") {
		t.Fatalf("secret leaked: %s", s)
	}
}
