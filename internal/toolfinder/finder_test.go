package toolfinder

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"ffmpeg", "ffmpeg version 6.1.1-3ubuntu5 Copyright (c) 2000-2023 the FFmpeg developers\nbuilt with gcc 13", "6.1.1-3"},
		{"ffmpeg git", "ffmpeg version n7.0 Copyright", "7.0"},
		{"imagemagick 7", "Version: ImageMagick 7.1.1-21 Q16-HDRI aarch64\nCopyright: (C) 1999 ImageMagick Studio LLC", "7.1.1-21"},
		{"imagemagick 6", "Version: ImageMagick 6.9.11-60 Q16 x86_64 2021-01-25", "6.9.11-60"},
		{"ghostscript", "10.02.1\n", "10.02.1"},
		{"unknown", "  custom build  ", "custom build"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseVersion(tt.output); got != tt.want {
				t.Errorf("parseVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFinder_CustomPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell-скрипты не поддерживаются на Windows")
	}

	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\necho 'ffmpeg version 5.1.4 Copyright'\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	info, err := NewFinder(FFmpeg, path).Find()
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if info.Path != path {
		t.Errorf("Path = %q, want %q", info.Path, path)
	}
	if info.Version != "5.1.4" {
		t.Errorf("Version = %q, want 5.1.4", info.Version)
	}
}

func TestFinder_EnvVar(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell-скрипты не поддерживаются на Windows")
	}

	path := filepath.Join(t.TempDir(), "gs")
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho 10.03.0\n"), 0755); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tool := Tool{Name: "Fake", Binaries: []string{"fileconverter-no-such-tool"}, VersionArgs: []string{"--version"}, EnvVar: "FILECONVERTER_TEST_TOOL"}
	t.Setenv(tool.EnvVar, path)

	info, err := NewFinder(tool, "").Find()
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if info.Version != "10.03.0" {
		t.Errorf("Version = %q, want 10.03.0", info.Version)
	}
}

func TestFinder_NotFound(t *testing.T) {
	tool := Tool{
		Name:        "Fake",
		Binaries:    []string{"fileconverter-no-such-tool"},
		VersionArgs: []string{"--version"},
		EnvVar:      "FILECONVERTER_TEST_MISSING",
		Hint:        "не устанавливается",
	}

	_, err := NewFinder(tool, filepath.Join(t.TempDir(), "missing")).Find()
	if err == nil {
		t.Fatal("Find() expected error")
	}
	if !strings.Contains(err.Error(), "FILECONVERTER_TEST_MISSING") {
		t.Errorf("error should mention env var: %v", err)
	}
}

func TestFinder_BrokenBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell-скрипты не поддерживаются на Windows")
	}

	path := filepath.Join(t.TempDir(), "broken")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 1\n"), 0755); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tool := Tool{Name: "Fake", Binaries: []string{"fileconverter-no-such-tool"}, VersionArgs: []string{"-version"}}
	if _, err := NewFinder(tool, path).Find(); err == nil {
		t.Error("Find() expected error for broken binary")
	}
}
