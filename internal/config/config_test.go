package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Loop.MaxStepsPerFrame != 5 {
		t.Errorf("expected 5 max steps, got %d", cfg.Loop.MaxStepsPerFrame)
	}
	if cfg.Population.WalkerTarget != 40 {
		t.Errorf("expected walker target 40, got %d", cfg.Population.WalkerTarget)
	}
	if cfg.Combat.Cooldown != 500*time.Millisecond {
		t.Errorf("expected 500ms cooldown, got %v", cfg.Combat.Cooldown)
	}
}

func TestParseOverlaysYAML(t *testing.T) {
	cfg := Default()
	doc := []byte(`
world:
  width: 1024
combat:
  cooldown: 250ms
areas:
  - id: 7
    name: Swamp
    walkerHealth: 15
    walkerSpeed: 30
    soulMultiplier: 3
    walkerColors: ["#00ff00"]
`)
	if err := Parse(doc, &cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.World.Width != 1024 {
		t.Errorf("width = %v, want 1024", cfg.World.Width)
	}
	if cfg.World.Height != 600 {
		t.Errorf("height should keep default, got %v", cfg.World.Height)
	}
	if cfg.Combat.Cooldown != 250*time.Millisecond {
		t.Errorf("cooldown = %v, want 250ms", cfg.Combat.Cooldown)
	}
	if len(cfg.Areas) != 1 || cfg.Areas[0].Name != "Swamp" {
		t.Errorf("areas not replaced: %+v", cfg.Areas)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	if err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"zero width", func(c *AppConfig) { c.World.Width = 0 }},
		{"zero steps", func(c *AppConfig) { c.Loop.MaxStepsPerFrame = 0 }},
		{"no areas", func(c *AppConfig) { c.Areas = nil }},
		{"duplicate area", func(c *AppConfig) { c.Areas = append(c.Areas, c.Areas[0]) }},
		{"negative cooldown", func(c *AppConfig) { c.Combat.Cooldown = -time.Second }},
		{"retarget inverted", func(c *AppConfig) { c.Population.RetargetMax = time.Millisecond }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WORLD_WIDTH", "1280")
	t.Setenv("WALKER_TARGET", "0")
	t.Setenv("ZOMBIE_ATTACK_COOLDOWN", "1s")
	t.Setenv("PORT", "8081")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.World.Width != 1280 || cfg.World.ViewportWidth != 1280 {
		t.Errorf("width override not applied: %+v", cfg.World)
	}
	if cfg.Population.WalkerTarget != 0 {
		t.Errorf("walker target = %d, want 0", cfg.Population.WalkerTarget)
	}
	if cfg.Combat.Cooldown != time.Second {
		t.Errorf("cooldown = %v", cfg.Combat.Cooldown)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	if err := os.WriteFile(path, []byte("loop:\n  maxStepsPerFrame: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SIM_CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Loop.MaxStepsPerFrame != 3 {
		t.Errorf("maxStepsPerFrame = %d, want 3", cfg.Loop.MaxStepsPerFrame)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SOUL_HARVEST_TEST_KEY=yes\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SOUL_HARVEST_TEST_KEY", "")
	os.Unsetenv("SOUL_HARVEST_TEST_KEY")

	got, ok := LoadDotEnv(filepath.Join(dir, "missing.env"), path)
	if !ok || got != path {
		t.Fatalf("LoadDotEnv = %q, %v", got, ok)
	}
	if os.Getenv("SOUL_HARVEST_TEST_KEY") != "yes" {
		t.Error("env var not loaded")
	}
}
