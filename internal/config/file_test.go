package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fileconverter.yaml")
	content := `
tools:
  ffmpeg: /opt/ffmpeg/bin/ffmpeg
presets:
  file: ./my-presets.yaml
  default: To WEBM
processing:
  recursive: true
history:
  enabled: false
  db: /tmp/history.sqlite
watch:
  debounce: 500ms
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	cfg := DefaultConfig()
	if err := fc.ApplyToConfig(cfg); err != nil {
		t.Fatalf("ApplyToConfig() error = %v", err)
	}

	if cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("FFmpegPath = %q", cfg.FFmpegPath)
	}
	if cfg.PresetsFile != "./my-presets.yaml" || cfg.Preset != "To WEBM" {
		t.Errorf("presets = %q / %q", cfg.PresetsFile, cfg.Preset)
	}
	if !cfg.Recursive {
		t.Error("Recursive should be true")
	}
	if !cfg.NoHistory {
		t.Error("NoHistory should be true")
	}
	if cfg.DBPath != "/tmp/history.sqlite" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.WatchDebounce != 500*time.Millisecond {
		t.Errorf("WatchDebounce = %v, want 500ms", cfg.WatchDebounce)
	}
}

func TestLoadFromFile_NotExist(t *testing.T) {
	fc, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Errorf("LoadFromFile() error = %v, want nil", err)
	}
	if fc != nil {
		t.Error("LoadFromFile() should return nil for missing file")
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("tools: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("LoadFromFile() expected parse error")
	}
}

func TestApplyToConfig_BadDebounce(t *testing.T) {
	fc := &FileConfig{Watch: &WatchConfig{Debounce: "soon"}}
	if err := fc.ApplyToConfig(DefaultConfig()); err == nil {
		t.Error("ApplyToConfig() expected error")
	}
}

func TestApplyToConfig_Nil(t *testing.T) {
	var fc *FileConfig
	cfg := DefaultConfig()
	if err := fc.ApplyToConfig(cfg); err != nil {
		t.Errorf("ApplyToConfig() error = %v", err)
	}
}

func TestFindAndLoadConfig_Explicit(t *testing.T) {
	if _, _, err := FindAndLoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("FindAndLoadConfig() expected error for missing explicit file")
	}

	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("processing:\n  verbose: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	fc, used, err := FindAndLoadConfig(path)
	if err != nil {
		t.Fatalf("FindAndLoadConfig() error = %v", err)
	}
	if used != path || fc == nil || fc.Processing == nil || !fc.Processing.Verbose {
		t.Errorf("FindAndLoadConfig() = %+v, %q", fc, used)
	}
}

func TestGenerateExampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.yaml")
	if err := os.WriteFile(path, []byte(GenerateExampleConfig()), 0644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("example config does not parse: %v", err)
	}

	cfg := DefaultConfig()
	if err := fc.ApplyToConfig(cfg); err != nil {
		t.Fatalf("ApplyToConfig() error = %v", err)
	}
	if cfg.NoHistory {
		t.Error("example config should keep history enabled")
	}
}

func TestFromConfig_RoundTrip(t *testing.T) {
	src := &Config{
		Preset:        "To MP3",
		Recursive:     true,
		NoHistory:     true,
		MagickPath:    "/usr/bin/magick",
		WatchDebounce: 3 * time.Second,
	}

	path := filepath.Join(t.TempDir(), "sub", "p.yaml")
	if err := FromConfig(src).SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	fc, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	dst := DefaultConfig()
	if err := fc.ApplyToConfig(dst); err != nil {
		t.Fatal(err)
	}

	if dst.Preset != src.Preset || dst.Recursive != src.Recursive || dst.NoHistory != src.NoHistory ||
		dst.MagickPath != src.MagickPath || dst.WatchDebounce != src.WatchDebounce {
		t.Errorf("round trip = %+v, want %+v", dst, src)
	}
}

func TestFromConfig_Custom(t *testing.T) {
	src := &Config{Format: "webp", Width: 1280}

	fc := FromConfig(src)
	if fc.Presets == nil || fc.Presets.Custom == nil {
		t.Fatalf("FromConfig() presets = %+v", fc.Presets)
	}

	dst := DefaultConfig()
	if err := fc.ApplyToConfig(dst); err != nil {
		t.Fatal(err)
	}
	if !dst.HasOverride() || dst.Format != "webp" || dst.Width != 1280 || dst.Preset != "" {
		t.Errorf("ApplyToConfig() = %+v", dst)
	}
}
