package config

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	v := NewViper()
	v.Set("auth.signing_secret", "secret")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if cfg.HTTPAddress != "0.0.0.0:8080" {
		t.Fatalf("unexpected http address %s", cfg.HTTPAddress)
	}
	if cfg.DatabasePath != "yearview.db" {
		t.Fatalf("unexpected database path %s", cfg.DatabasePath)
	}
	if cfg.AuthIssuer != "yearview-auth" || cfg.AuthAudience != "yearview-api" {
		t.Fatalf("unexpected auth defaults %s / %s", cfg.AuthIssuer, cfg.AuthAudience)
	}
	if cfg.SyncInterval != 5*time.Minute || cfg.SyncEnabled {
		t.Fatalf("unexpected sync defaults %v / %v", cfg.SyncInterval, cfg.SyncEnabled)
	}
}

func TestLoadRequiresSigningSecret(t *testing.T) {
	if _, err := Load(NewViper()); err == nil {
		t.Fatalf("expected error for missing signing secret")
	}
}

func TestLoadRequiresCredentialsWhenSyncEnabled(t *testing.T) {
	v := NewViper()
	v.Set("auth.signing_secret", "secret")
	v.Set("sync.enabled", true)

	if _, err := Load(v); err == nil {
		t.Fatalf("expected error for missing google credentials")
	}

	v.Set("google.credentials_file", "/etc/yearview/credentials.json")
	if _, err := Load(v); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	v := NewViper()
	v.Set("auth.signing_secret", "secret")
	v.Set("sync.interval", "0s")

	if _, err := Load(v); err == nil {
		t.Fatalf("expected error for non-positive interval")
	}
}
