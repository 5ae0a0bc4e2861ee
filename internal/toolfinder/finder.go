// Package toolfinder отвечает за поиск внешних утилит конвертации
// (ImageMagick, FFmpeg, FFprobe, Ghostscript).
package toolfinder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"
)

// probeTimeout - сколько ждать ответа на запрос версии.
const probeTimeout = 10 * time.Second

// Tool описывает внешнюю утилиту.
type Tool struct {
	// Name - имя для сообщений.
	Name string

	// Binaries - имена бинарников в порядке предпочтения.
	Binaries []string

	// VersionArgs - аргументы для вывода версии.
	VersionArgs []string

	// EnvVar - переменная окружения с путём к утилите.
	EnvVar string

	// Hint - подсказка по установке.
	Hint string
}

var (
	// ImageMagick - magick (v7) или convert (v6).
	ImageMagick = Tool{
		Name:        "ImageMagick",
		Binaries:    imageMagickBinaries(),
		VersionArgs: []string{"-version"},
		EnvVar:      "FILECONVERTER_MAGICK",
		Hint:        "apt install imagemagick / brew install imagemagick",
	}

	// FFmpeg - конвертация видео и аудио.
	FFmpeg = Tool{
		Name:        "FFmpeg",
		Binaries:    []string{"ffmpeg"},
		VersionArgs: []string{"-version"},
		EnvVar:      "FILECONVERTER_FFMPEG",
		Hint:        "apt install ffmpeg / brew install ffmpeg",
	}

	// FFprobe - информация о медиафайлах.
	FFprobe = Tool{
		Name:        "FFprobe",
		Binaries:    []string{"ffprobe"},
		VersionArgs: []string{"-version"},
		EnvVar:      "FILECONVERTER_FFPROBE",
		Hint:        "входит в пакет ffmpeg",
	}

	// Ghostscript - сжатие PDF.
	Ghostscript = Tool{
		Name:        "Ghostscript",
		Binaries:    ghostscriptBinaries(),
		VersionArgs: []string{"--version"},
		EnvVar:      "FILECONVERTER_GS",
		Hint:        "apt install ghostscript / brew install ghostscript",
	}
)

// Info содержит информацию о найденной утилите.
type Info struct {
	// Path - абсолютный путь к бинарнику.
	Path string

	// Version - версия (например, "6.1.1").
	Version string
}

// Finder ищет бинарник утилиты.
type Finder struct {
	// Tool - что ищем.
	Tool Tool

	// CustomPath - пользовательский путь (из флага или конфига).
	CustomPath string
}

// NewFinder создаёт новый Finder.
func NewFinder(tool Tool, customPath string) *Finder {
	return &Finder{
		Tool:       tool,
		CustomPath: customPath,
	}
}

// Find ищет утилиту в следующем порядке:
// 1. CustomPath (если задан)
// 2. Переменная окружения Tool.EnvVar
// 3. PATH
// 4. Рядом с исполняемым файлом в ./bin/<os-arch>/
func (f *Finder) Find() (*Info, error) {
	var candidates []string

	// 1. Пользовательский путь
	if f.CustomPath != "" {
		candidates = append(candidates, f.CustomPath)
	}

	// 2. Переменная окружения
	if f.Tool.EnvVar != "" {
		if envPath := os.Getenv(f.Tool.EnvVar); envPath != "" {
			candidates = append(candidates, envPath)
		}
	}

	// 3. PATH
	for _, name := range f.Tool.Binaries {
		if p, err := exec.LookPath(name); err == nil {
			candidates = append(candidates, p)
		}
	}

	// 4. Рядом с бинарником
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		platformDir := fmt.Sprintf("%s-%s", runtime.GOOS, runtime.GOARCH)

		for _, name := range f.Tool.Binaries {
			bin := binaryName(name)
			candidates = append(candidates,
				filepath.Join(execDir, "bin", platformDir, bin),
				filepath.Join(execDir, "bin", bin),
				filepath.Join(execDir, bin),
			)
		}
	}

	for _, path := range candidates {
		if info, err := f.check(path); err == nil {
			return info, nil
		}
	}

	return nil, fmt.Errorf("%s не найден. Проверьте:\n"+
		"  1. Установлен ли %s в системе (%s)\n"+
		"  2. Установлена ли переменная окружения %s\n"+
		"  3. Указан ли путь в конфиге или флагом\n"+
		"  4. Находится ли бинарник рядом с утилитой в ./bin/<os-arch>/",
		f.Tool.Name, f.Tool.Name, f.Tool.Hint, f.Tool.EnvVar)
}

// check проверяет, является ли путь рабочей утилитой.
func (f *Finder) check(path string) (*Info, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("файл не найден: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить абсолютный путь: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, absPath, f.Tool.VersionArgs...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("не удалось выполнить %s %s: %w", path, strings.Join(f.Tool.VersionArgs, " "), err)
	}

	return &Info{
		Path:    absPath,
		Version: parseVersion(out.String()),
	}, nil
}

// versionRe находит номер версии вида 6.1.1 или 7.1.1-21.
var versionRe = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?(?:-\d+)?`)

// parseVersion извлекает версию из первой строки вывода.
// Примеры: "ffmpeg version 6.1.1-3ubuntu5 ...", "Version: ImageMagick 7.1.1-21 Q16", "10.02.1".
func parseVersion(output string) string {
	line := strings.TrimSpace(output)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}

	if v := versionRe.FindString(line); v != "" {
		return v
	}

	// Возвращаем как есть
	return line
}

// binaryName возвращает имя бинарника для текущей ОС.
func binaryName(name string) string {
	if runtime.GOOS == "windows" && !strings.HasSuffix(name, ".exe") {
		return name + ".exe"
	}
	return name
}

func imageMagickBinaries() []string {
	// convert.exe в Windows - системная утилита файловой системы.
	if runtime.GOOS == "windows" {
		return []string{"magick"}
	}
	return []string{"magick", "convert"}
}

func ghostscriptBinaries() []string {
	if runtime.GOOS == "windows" {
		return []string{"gswin64c", "gswin32c"}
	}
	return []string{"gs"}
}

/*
Возможные расширения:
- Кэширование результата поиска
- Проверка минимальной версии утилит
- Список поддерживаемых форматов (magick -list format, ffmpeg -formats)
*/
