package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test graphics defaults
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Test lighting defaults
	if !cfg.Lighting.Shadows {
		t.Error("expected shadows to be enabled by default")
	}
	if cfg.Lighting.ArenaCapacity != 0 {
		t.Errorf("expected arena capacity 0 (engine default), got %d", cfg.Lighting.ArenaCapacity)
	}
	if cfg.Lighting.AmbientColor != [3]float32{0.1, 0.1, 0.15} {
		t.Errorf("unexpected ambient color: %v", cfg.Lighting.AmbientColor)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

lighting:
  arena_capacity: 65536
  pool_size: 64
  batch_capacity: 4096
  shadows: false
  ambient_color: [0.2, 0.2, 0.2]

logging:
  level: "debug"
  log_file: "lumen.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}

	if cfg.Lighting.ArenaCapacity != 65536 {
		t.Errorf("expected arena capacity 65536, got %d", cfg.Lighting.ArenaCapacity)
	}
	if cfg.Lighting.PoolSize != 64 {
		t.Errorf("expected pool size 64, got %d", cfg.Lighting.PoolSize)
	}
	if cfg.Lighting.BatchCapacity != 4096 {
		t.Errorf("expected batch capacity 4096, got %d", cfg.Lighting.BatchCapacity)
	}
	if cfg.Lighting.Shadows {
		t.Error("expected shadows to be false")
	}
	if cfg.Lighting.AmbientColor != [3]float32{0.2, 0.2, 0.2} {
		t.Errorf("unexpected ambient color: %v", cfg.Lighting.AmbientColor)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "lumen.log" {
		t.Errorf("expected log file 'lumen.log', got %s", cfg.Logging.LogFile)
	}
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "saved", "config.yaml")

	cfg := Default()
	cfg.Graphics.Width = 800
	cfg.Lighting.Shadows = false

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	reloaded := Default()
	if err := loadFromFile(reloaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}

	if reloaded.Graphics.Width != 800 {
		t.Errorf("expected width 800 after reload, got %d", reloaded.Graphics.Width)
	}
	if reloaded.Lighting.Shadows {
		t.Error("expected shadows to be false after reload")
	}
}
