package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/artemshloyda/fileconverter/internal/preset"
)

// withHome подменяет домашнюю директорию на временную.
func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if cfg.WatchDebounce != 2*time.Second {
		t.Errorf("WatchDebounce = %v, want 2s", cfg.WatchDebounce)
	}
	if cfg.NoHistory {
		t.Error("history should be enabled by default")
	}
	if cfg.HasOverride() {
		t.Error("default config should not have override")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     &Config{Inputs: []string{"a.jpg"}, Preset: "To PNG", DBPath: "/tmp/h.sqlite"},
			wantErr: false,
		},
		{
			name:    "missing inputs",
			cfg:     &Config{Preset: "To PNG"},
			wantErr: true,
		},
		{
			name:    "negative width",
			cfg:     &Config{Inputs: []string{"a.jpg"}, Width: -1},
			wantErr: true,
		},
		{
			name:    "preset with override",
			cfg:     &Config{Inputs: []string{"a.jpg"}, Preset: "To PNG", Format: "webp"},
			wantErr: true,
		},
		{
			name:    "custom name with override",
			cfg:     &Config{Inputs: []string{"a.jpg"}, Preset: preset.CustomName, Format: "webp"},
			wantErr: false,
		},
		{
			name:    "negative debounce",
			cfg:     &Config{Inputs: []string{"a.jpg"}, WatchDebounce: -time.Second},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateSetsDBPath(t *testing.T) {
	home := withHome(t)
	cfg := &Config{Inputs: []string{"a.jpg"}}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	want := filepath.Join(home, ".config", AppName, "history.sqlite")
	if cfg.DBPath != want {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, want)
	}
}

func TestConfig_Override(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want *preset.Preset
	}{
		{"none", Config{}, nil},
		{"format", Config{Format: "webp"}, &preset.Preset{Name: preset.CustomName, Action: preset.ActionConvert, Format: "webp"}},
		{"resize", Config{Height: 720}, &preset.Preset{Name: preset.CustomName, Action: preset.ActionResize, Height: 720}},
		{"compress", Config{Quality: "screen"}, &preset.Preset{Name: preset.CustomName, Action: preset.ActionCompress, Quality: "screen"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.Override()
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Override() = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("Override() = %+v, want %+v", *got, *tt.want)
			}
		})
	}
}

func TestConfig_ResolvePresetsFile(t *testing.T) {
	home := withHome(t)
	cfg := DefaultConfig()

	if got := cfg.ResolvePresetsFile(); got != "" {
		t.Errorf("ResolvePresetsFile() = %q, want builtin", got)
	}

	userFile := filepath.Join(home, ".config", AppName, "presets.yaml")
	if err := os.MkdirAll(filepath.Dir(userFile), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(userFile, []byte("IMAGE: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := cfg.ResolvePresetsFile(); got != userFile {
		t.Errorf("ResolvePresetsFile() = %q, want %q", got, userFile)
	}

	cfg.PresetsFile = "/explicit.yaml"
	if got := cfg.ResolvePresetsFile(); got != "/explicit.yaml" {
		t.Errorf("ResolvePresetsFile() = %q, want explicit", got)
	}
}

func TestConfig_Describe(t *testing.T) {
	cfg := &Config{Preset: "To MP3", Recursive: true}
	got := cfg.Describe()
	if !strings.Contains(got, "To MP3") || !strings.Contains(got, "рекурсивно") {
		t.Errorf("Describe() = %q", got)
	}

	cfg = &Config{Width: 640}
	if got := cfg.Describe(); !strings.Contains(got, "resize 640xauto") {
		t.Errorf("Describe() = %q", got)
	}
}
