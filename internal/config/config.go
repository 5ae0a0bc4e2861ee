// Package config содержит конфигурацию приложения.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/artemshloyda/fileconverter/internal/preset"
)

// AppName - имя приложения для путей конфигурации.
const AppName = "fileconverter"

// Config содержит все настройки запуска.
type Config struct {
	// Inputs - файлы и директории для конвертации.
	Inputs []string

	// Preset - имя пресета (пусто = первый пресет категории).
	Preset string

	// Format - пользовательский формат (переопределяет пресет).
	Format string

	// Width - пользовательская ширина (0 = авто).
	Width int

	// Height - пользовательская высота (0 = авто).
	Height int

	// Quality - пользовательский уровень сжатия PDF.
	Quality string

	// PresetsFile - путь к документу пресетов (пусто = встроенный).
	PresetsFile string

	// Recursive - обходить вложенные директории.
	Recursive bool

	// DBPath - путь к SQLite базе истории.
	DBPath string

	// NoHistory - не вести историю конвертаций.
	NoHistory bool

	// Verbose - подробный вывод.
	Verbose bool

	// NoProgress - отключить прогресс-бар.
	NoProgress bool

	// MagickPath - путь к ImageMagick (опционально).
	MagickPath string

	// FFmpegPath - путь к ffmpeg (опционально).
	FFmpegPath string

	// FFprobePath - путь к ffprobe (опционально).
	FFprobePath string

	// GhostscriptPath - путь к Ghostscript (опционально).
	GhostscriptPath string

	// WatchDebounce - пауза после последнего события перед конвертацией.
	WatchDebounce time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() *Config {
	return &Config{
		Recursive:     false,
		NoHistory:     false,
		Verbose:       false,
		WatchDebounce: 2 * time.Second,
	}
}

// Validate проверяет корректность конфигурации.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return fmt.Errorf("не указаны файлы для конвертации")
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("размеры не могут быть отрицательными: %dx%d", c.Width, c.Height)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("debounce не может быть отрицательным: %s", c.WatchDebounce)
	}
	if c.HasOverride() && c.Preset != "" && c.Preset != preset.CustomName {
		return fmt.Errorf("нельзя одновременно указать --preset %q и пользовательские параметры", c.Preset)
	}

	// Устанавливаем путь к БД по умолчанию
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath()
	}

	return nil
}

// HasOverride сообщает, заданы ли пользовательские параметры вместо пресета.
func (c *Config) HasOverride() bool {
	return c.Format != "" || c.Width > 0 || c.Height > 0 || c.Quality != ""
}

// Override возвращает пользовательский пресет или nil.
func (c *Config) Override() *preset.Preset {
	if !c.HasOverride() {
		return nil
	}
	p := preset.Custom(c.Format, c.Width, c.Height, c.Quality)
	return &p
}

// ConfigDir возвращает ~/.config/fileconverter.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("не удалось получить домашнюю директорию: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// DefaultDBPath возвращает путь к базе истории по умолчанию.
// Без домашней директории база создаётся в текущей.
func DefaultDBPath() string {
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join("."+AppName, "history.sqlite")
	}
	return filepath.Join(dir, "history.sqlite")
}

// UserPresetsPath возвращает путь к пользовательскому документу пресетов,
// если он существует. Иначе пустую строку (встроенные пресеты).
func UserPresetsPath() string {
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range []string{"presets.yaml", "presets.yml", "presets.json"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ResolvePresetsFile возвращает документ пресетов с учётом пользовательского файла.
func (c *Config) ResolvePresetsFile() string {
	if c.PresetsFile != "" {
		return c.PresetsFile
	}
	return UserPresetsPath()
}

// ToolPaths возвращает пользовательские пути к утилитам по имени.
func (c *Config) ToolPaths() map[string]string {
	return map[string]string{
		"imagemagick": c.MagickPath,
		"ffmpeg":      c.FFmpegPath,
		"ffprobe":     c.FFprobePath,
		"ghostscript": c.GhostscriptPath,
	}
}

// Describe возвращает параметры запуска для вывода.
func (c *Config) Describe() string {
	var parts []string
	switch {
	case c.HasOverride():
		parts = append(parts, "пресет: "+c.Override().Describe())
	case c.Preset != "":
		parts = append(parts, "пресет: "+c.Preset)
	default:
		parts = append(parts, "пресет: по умолчанию для категории")
	}
	if c.Recursive {
		parts = append(parts, "рекурсивно")
	}
	if c.NoHistory {
		parts = append(parts, "без истории")
	}
	return strings.Join(parts, ", ")
}

/*
Возможные расширения:
- Выходная директория вместо размещения рядом с исходником
- Таймаут на один файл
- Параллельная обработка разных категорий
*/
