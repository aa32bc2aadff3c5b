package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/domains")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("BASE_DOMAIN", "i-ep.app")
	t.Setenv("CLOUDFLARE_API_TOKEN", "cf-token")
	t.Setenv("CLOUDFLARE_ZONE_ID", "zone-1")
	t.Setenv("CLOUDFLARE_EDGE_IP", "203.0.113.10")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Domain.Provider != ProviderCloudflare {
		t.Errorf("Expected default provider %q, got %q", ProviderCloudflare, cfg.Domain.Provider)
	}
	if cfg.Domain.BaseDomain != "i-ep.app" {
		t.Errorf("Expected base domain i-ep.app, got %s", cfg.Domain.BaseDomain)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}
	if !cfg.VerifyWorker.Enabled || cfg.VerifyWorker.IntervalSec != 60 {
		t.Errorf("Unexpected worker defaults: %+v", cfg.VerifyWorker)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"missing DSN", "MYSQL_DSN"},
		{"missing JWT secret", "JWT_SECRET"},
		{"missing base domain", "BASE_DOMAIN"},
		{"missing cloudflare token", "CLOUDFLARE_API_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			if _, err := Load(); err == nil {
				t.Errorf("Expected error when %s is missing", tt.unset)
			}
		})
	}
}

func TestLoad_VercelProvider(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DOMAIN_PROVIDER", "vercel")

	// Vercel selected but unconfigured
	if _, err := Load(); err == nil {
		t.Error("Expected error when vercel credentials are missing")
	}

	t.Setenv("VERCEL_TOKEN", "v-token")
	t.Setenv("VERCEL_PROJECT_ID", "prj_1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Domain.Provider != ProviderVercel || cfg.Vercel.ProjectID != "prj_1" {
		t.Errorf("Unexpected vercel config: %+v", cfg.Vercel)
	}
}

func TestLoad_UnknownProvider(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DOMAIN_PROVIDER", "route53")

	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestLoadFromINI(t *testing.T) {
	iniContent := `
[mysql]
dsn = user:pass@tcp(localhost:3306)/domains

[jwt]
secret = ini-secret

[domain]
provider = cloudflare
base_domain = i-ep.app

[cloudflare]
api_token = cf-token
zone_id = zone-1
edge_ip = 203.0.113.10

[verify_worker]
interval_sec = 30
`
	path := t.TempDir() + "/config.ini"
	if err := os.WriteFile(path, []byte(iniContent), 0o600); err != nil {
		t.Fatalf("failed to write ini: %v", err)
	}

	cfg, err := LoadFromINI(path)
	if err != nil {
		t.Fatalf("LoadFromINI() failed: %v", err)
	}
	if cfg.JWT.Secret != "ini-secret" {
		t.Errorf("Expected JWT secret from INI, got %q", cfg.JWT.Secret)
	}
	if cfg.VerifyWorker.IntervalSec != 30 {
		t.Errorf("Expected interval 30 from INI, got %d", cfg.VerifyWorker.IntervalSec)
	}

	// ENV wins over INI
	t.Setenv("JWT_SECRET", "env-secret")
	cfg, err = LoadFromINI(path)
	if err != nil {
		t.Fatalf("LoadFromINI() with env override failed: %v", err)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Errorf("Expected env override, got %q", cfg.JWT.Secret)
	}
}
