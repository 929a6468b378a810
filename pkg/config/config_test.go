package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("config-test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServiceName != "config-test" {
		t.Errorf("service name = %q, want config-test", cfg.ServiceName)
	}
	if cfg.Order.DebtGraceDays != 30 {
		t.Errorf("debt grace days = %d, want 30", cfg.Order.DebtGraceDays)
	}
	if cfg.JWT.RefreshTTL != 7*24*time.Hour {
		t.Errorf("refresh ttl = %s, want 168h", cfg.JWT.RefreshTTL)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("ORDER_DEBT_GRACE_DAYS", "14")
	t.Setenv("JWT_ACCESS_TTL", "15m")

	cfg, err := Load("config-test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB.Host != "db.internal" {
		t.Errorf("db host = %q, want db.internal", cfg.DB.Host)
	}
	if cfg.Order.DebtGraceDays != 14 {
		t.Errorf("debt grace days = %d, want 14", cfg.Order.DebtGraceDays)
	}
	if cfg.JWT.AccessTTL != 15*time.Minute {
		t.Errorf("access ttl = %s, want 15m", cfg.JWT.AccessTTL)
	}
}

func TestLogConfigFields(t *testing.T) {
	cfg, err := Load("config-test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	fields := cfg.LogConfig()
	want := map[string]bool{
		"service":     false,
		"environment": false,
		"db_host":     false,
		"db_port":     false,
		"db_name":     false,
		"server_port": false,
	}
	for _, f := range fields {
		if _, ok := want[f.Key]; ok {
			want[f.Key] = true
		}
	}
	for key, seen := range want {
		if !seen {
			t.Errorf("startup log fields missing %q", key)
		}
	}
}
