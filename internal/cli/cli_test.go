package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/artemshloyda/fileconverter/internal/filetype"
	"github.com/artemshloyda/fileconverter/internal/scanner"
)

// isolateHome переносит домашнюю директорию во временную.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, "fileconverter "+Version) {
		t.Errorf("version output = %q", out)
	}
}

func TestPresetsListCmd(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, "presets", "list", "clip.MOV")
	if err != nil {
		t.Fatalf("presets list error = %v", err)
	}
	if !strings.Contains(out, "* To MP4") {
		t.Errorf("output missing default video preset: %q", out)
	}
	if strings.Contains(out, "To PNG") {
		t.Errorf("output contains image presets: %q", out)
	}

	if _, err := execute(t, "presets", "list", "notes.txt"); err == nil {
		t.Error("presets list expected error for unknown type")
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	isolateHome(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "fc.yaml")
	doc := `presets:
  default: "To WEBP"
processing:
  recursive: true
history:
  enabled: false
  db: /file/history.sqlite
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "--config", path, "--db", "/flag/history.sqlite", "config", "show"); err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if cfg.DBPath != "/flag/history.sqlite" {
		t.Errorf("DBPath = %q, want flag value", cfg.DBPath)
	}
	if cfg.Preset != "To WEBP" || !cfg.Recursive || !cfg.NoHistory {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if configSource != path {
		t.Errorf("configSource = %q, want %q", configSource, path)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	isolateHome(t)

	if _, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "version"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestBuildJobs(t *testing.T) {
	isolateHome(t)
	NewRootCmd()

	files := []scanner.File{{Path: "/a.jpg"}, {Path: "/b.mp4"}}

	cfg.Preset = "To PNG"
	jobs := buildJobs(files, cfg)
	if len(jobs) != 2 || jobs[0].PresetName != "To PNG" || jobs[0].Override != nil {
		t.Errorf("buildJobs() = %+v", jobs)
	}

	cfg.Preset = ""
	cfg.Format = "webp"
	jobs = buildJobs(files, cfg)
	if jobs[1].Override == nil || jobs[1].Override.Format != "webp" {
		t.Errorf("buildJobs() override = %+v", jobs[1].Override)
	}
}

func TestDescribeCounts(t *testing.T) {
	got := describeCounts(map[filetype.Category]int{
		filetype.Audio:   2,
		filetype.Image:   1,
		filetype.Unknown: 3,
	})
	want := "image: 1, audio: 2, unknown: 3"
	if got != want {
		t.Errorf("describeCounts() = %q, want %q", got, want)
	}
}

func TestToolsFor(t *testing.T) {
	tools := toolsFor(map[filetype.Category]int{filetype.Audio: 1, filetype.Video: 2})
	if len(tools) != 1 || tools[0].Name != "FFmpeg" {
		t.Errorf("toolsFor() = %+v", tools)
	}
}

// fakeMagick создаёт скрипт, который отвечает на -version и пишет последний аргумент.
func fakeMagick(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-скрипты не поддерживаются на Windows")
	}

	path := filepath.Join(t.TempDir(), "magick")
	script := `#!/bin/sh
case "$1" in -version) echo "Version: ImageMagick 7.1.1-21"; exit 0;; esac
for last; do :; done
echo img > "$last"
`
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvert_BrokenPresetsFile(t *testing.T) {
	isolateHome(t)
	tool := fakeMagick(t)

	dir := t.TempDir()
	presets := filepath.Join(dir, "presets.yaml")
	if err := os.WriteFile(presets, []byte("IMAGE: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	input := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(input, []byte("jpg"), 0644); err != nil {
		t.Fatal(err)
	}

	common := []string{"--presets-file", presets, "--magick-path", tool, "--no-history", "--no-progress"}

	// Пользовательские параметры не зависят от каталога.
	if _, err := execute(t, append(common, "--format", "png", input)...); err != nil {
		t.Fatalf("convert with override error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a_converted.png")); err != nil {
		t.Errorf("output not created: %v", err)
	}

	// Задача по пресету падает сама, запуск не прерывается до обработки.
	_, err := execute(t, append(common, "--preset", "To WEBP", input)...)
	if err == nil || !strings.Contains(err.Error(), "завершено с 1") {
		t.Errorf("convert by preset error = %v, want one failed job", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a_converted.webp")); err == nil {
		t.Error("output must not be created without a preset")
	}
}
