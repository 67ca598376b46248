package config

import "testing"

func TestLoadAppliesFlagDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIHost != "localhost" || cfg.APIPort != 8080 {
		t.Fatalf("unexpected address defaults: %+v", cfg)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.Addr() != "localhost:8080" {
		t.Fatalf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadRejectsPIDLockWithoutPIDPath(t *testing.T) {
	if _, err := Load([]string{"-pid-lock"}); err == nil {
		t.Fatal("expected an error when -pid-lock is set without -pid")
	}
}

func TestLoadOverridesFromFlags(t *testing.T) {
	cfg, err := Load([]string{"-api-port", "9999", "-max-retries", "5"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIPort != 9999 || cfg.MaxRetries != 5 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}
