package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
postgres:
  password: "secret"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Service.Port != 8080 {
		t.Errorf("port = %d", cfg.Service.Port)
	}
	if cfg.Postgres.Schema != "siciap" {
		t.Errorf("schema = %s", cfg.Postgres.Schema)
	}
	if cfg.Ingest.BatchSize != 1000 {
		t.Errorf("batch size = %d", cfg.Ingest.BatchSize)
	}
	if cfg.Cloud != nil {
		t.Error("cloud should be nil when omitted")
	}
}

func TestLoadRequiresPassword(t *testing.T) {
	path := writeConfig(t, `
postgres:
  host: "localhost"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing password")
	}
}

func TestLoadCloudDefaultsSchema(t *testing.T) {
	path := writeConfig(t, `
postgres:
  password: "secret"
cloud:
  host: "db.example.com"
  password: "cloudsecret"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cloud.Schema != "public" {
		t.Errorf("cloud schema = %q, want public", cfg.Cloud.Schema)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("DB_HOST", "db.internal")
	path := writeConfig(t, `
postgres:
  password: "from-file"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Postgres.Password != "from-env" || cfg.Postgres.Host != "db.internal" {
		t.Errorf("env overrides not applied: %+v", cfg.Postgres)
	}
}

func TestDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "localhost", Port: 5432, User: "postgres",
		Password: "pw", Database: "siciap_local", SSLMode: "disable",
	}
	want := "host=localhost port=5432 user=postgres password=pw dbname=siciap_local sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN = %q", got)
	}
}
