package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.APIPrefix != "/api" || cfg.TimeoutSeconds != 45 || cfg.ShiftModel != "single" || cfg.AuditPolicy != "always" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "console" {
		t.Fatalf("log defaults = %+v", cfg.Log)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	in := DefaultConfig()
	in.Email = "ana@example.com"
	in.ShiftModel = "split"
	in.KeyFormat = "mdy"
	in.Approvals = true
	in.Output.JSONDefault = true

	if err := Save(in, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v", info.Mode().Perm())
	}

	out, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestLoadFileRejectsBadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("shift_model: triple\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for invalid shift model")
	}

	if err := os.WriteFile(path, []byte("log:\n  format: xml\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for invalid log format")
	}
}

func TestConfigPathEnvOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(PathEnv, want)
	got, err := ConfigPath()
	if err != nil || got != want {
		t.Fatalf("ConfigPath = %q, %v", got, err)
	}
}

func TestResolveTimezone(t *testing.T) {
	loc, err := ResolveTimezone(Config{Timezone: "UTC"})
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("ResolveTimezone = %v, %v", loc, err)
	}
	if _, err := ResolveTimezone(Config{Timezone: "Mars/Olympus"}); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
}
