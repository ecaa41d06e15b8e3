package config_test

import (
	"testing"
	"time"

	"github.com/antigravity/stationselect/internal/config"
)

func TestLoad_DefaultsApplyWithoutEnvFile(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8080 {
		t.Fatalf("Server = %+v, want default host 0.0.0.0 port 8080", cfg.Server)
	}
	if cfg.Server.ReadTimeout != 5*time.Second || cfg.Server.WriteTimeout != 60*time.Second {
		t.Fatalf("Server timeouts = %+v, want 5s/60s", cfg.Server)
	}
	if cfg.Postgres.Port != 5432 || cfg.Postgres.DBName != "stationselect" {
		t.Fatalf("Postgres = %+v, want default port 5432 db stationselect", cfg.Postgres)
	}
	if cfg.Solver.Provider != "highs" || cfg.Solver.TimeLimit != 30*time.Second {
		t.Fatalf("Solver = %+v, want default provider highs time limit 30s", cfg.Solver)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestPostgresConfig_DSNFormatsConnectionString(t *testing.T) {
	p := config.PostgresConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", DBName: "d", SSLMode: "disable",
	}
	want := "postgres://u:p@db:5432/d?sslmode=disable"
	if got := p.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
}

func TestServerConfig_AddrFormatsHostPort(t *testing.T) {
	s := config.ServerConfig{Host: "0.0.0.0", Port: 8080}
	if got := s.Addr(); got != "0.0.0.0:8080" {
		t.Fatalf("Addr() = %q, want %q", got, "0.0.0.0:8080")
	}
}
