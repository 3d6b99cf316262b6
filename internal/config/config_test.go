package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Usb.Dir != "./usb-sim" {
		t.Fatalf("expected default usb dir, got %q", cfg.Usb.Dir)
	}
	if cfg.Sandbox.FuelDeadlineMS != 2000 {
		t.Fatalf("expected default fuel deadline, got %d", cfg.Sandbox.FuelDeadlineMS)
	}
}

func TestLoadMergesConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("usb:\n  dir: /mnt/signer\nlogging:\n  level: debug\n")
	if err := os.WriteFile(filepath.Join(dir, "appliance.yaml"), yaml, 0o644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Usb.Dir != "/mnt/signer" {
		t.Fatalf("expected overridden usb dir, got %q", cfg.Usb.Dir)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected overridden logging level, got %q", cfg.Logging.Level)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Se.StatePath != "./se-state.json" {
		t.Fatalf("expected default se state path to survive merge, got %q", cfg.Se.StatePath)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AIRGAP_USB_DIR", "/from/env")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Usb.Dir != "/from/env" {
		t.Fatalf("expected env override, got %q", cfg.Usb.Dir)
	}
}
