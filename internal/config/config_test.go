package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("does-not-exist.env")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "3000" {
		t.Errorf("Server.Port = %q, want 3000", cfg.Server.Port)
	}
	if cfg.Inventory.DefaultProjectType != "arsitektur" {
		t.Errorf("DefaultProjectType = %q, want arsitektur", cfg.Inventory.DefaultProjectType)
	}
	if cfg.Inventory.StrictOutWarehouse {
		t.Error("StrictOutWarehouse should default to false")
	}
	if cfg.Redis.LockTTL != 10*time.Second {
		t.Errorf("LockTTL = %v, want 10s", cfg.Redis.LockTTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("INVENTORY_STRICT_OUT_WAREHOUSE", "true")
	t.Setenv("JWT_EXPIRE_HOURS", "12")
	t.Setenv("LOCK_TTL", "3s")

	cfg, err := Load("does-not-exist.env")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if !cfg.Inventory.StrictOutWarehouse {
		t.Error("StrictOutWarehouse should be true")
	}
	if cfg.JWT.ExpireHours != 12 {
		t.Errorf("JWT.ExpireHours = %d, want 12", cfg.JWT.ExpireHours)
	}
	if cfg.Redis.LockTTL != 3*time.Second {
		t.Errorf("LockTTL = %v, want 3s", cfg.Redis.LockTTL)
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Driver: "postgres", Host: "db", User: "u", Password: "p", Name: "n", Port: "5432"}
	want := "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=Asia/Jakarta"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	d.URL = "postgres://override"
	if got := d.DSN(); got != "postgres://override" {
		t.Errorf("DSN() with URL = %q", got)
	}

	s := DatabaseConfig{Driver: "sqlite", Name: "local"}
	if got := s.DSN(); got != "local.db" {
		t.Errorf("sqlite DSN() = %q, want local.db", got)
	}
}
