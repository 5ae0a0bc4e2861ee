// Package config содержит конфигурацию приложения.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig представляет структуру конфигурационного файла YAML.
// Все поля опциональны - если не указаны, используются значения по умолчанию.
type FileConfig struct {
	// Tools - пути к внешним утилитам.
	Tools *ToolsConfig `yaml:"tools,omitempty"`

	// Presets - настройки пресетов.
	Presets *PresetsConfig `yaml:"presets,omitempty"`

	// Processing - настройки обработки.
	Processing *ProcessingConfig `yaml:"processing,omitempty"`

	// History - настройки истории конвертаций.
	History *HistoryConfig `yaml:"history,omitempty"`

	// Watch - настройки режима слежения.
	Watch *WatchConfig `yaml:"watch,omitempty"`
}

// ToolsConfig содержит пути к утилитам (пусто = автопоиск).
type ToolsConfig struct {
	ImageMagick string `yaml:"imagemagick,omitempty"`
	FFmpeg      string `yaml:"ffmpeg,omitempty"`
	FFprobe     string `yaml:"ffprobe,omitempty"`
	Ghostscript string `yaml:"ghostscript,omitempty"`
}

// PresetsConfig содержит настройки пресетов.
type PresetsConfig struct {
	// File - путь к документу пресетов.
	File string `yaml:"file,omitempty"`

	// Default - имя пресета по умолчанию.
	Default string `yaml:"default,omitempty"`

	// Custom - пользовательские параметры вместо пресета.
	Custom *CustomConfig `yaml:"custom,omitempty"`
}

// CustomConfig содержит пользовательские параметры конвертации.
type CustomConfig struct {
	Format  string `yaml:"format,omitempty"`
	Width   int    `yaml:"width,omitempty"`
	Height  int    `yaml:"height,omitempty"`
	Quality string `yaml:"quality,omitempty"`
}

// ProcessingConfig содержит настройки обработки.
type ProcessingConfig struct {
	// Recursive - обходить вложенные директории.
	Recursive bool `yaml:"recursive,omitempty"`

	// Verbose - подробный вывод.
	Verbose bool `yaml:"verbose,omitempty"`

	// NoProgress - отключить прогресс-бар.
	NoProgress bool `yaml:"no_progress,omitempty"`
}

// HistoryConfig содержит настройки истории.
type HistoryConfig struct {
	// Enabled - вести историю (по умолчанию true).
	Enabled *bool `yaml:"enabled,omitempty"`

	// DB - путь к SQLite базе данных.
	DB string `yaml:"db,omitempty"`
}

// WatchConfig содержит настройки режима слежения.
type WatchConfig struct {
	// Debounce - пауза после последнего изменения файла, например "2s".
	Debounce string `yaml:"debounce,omitempty"`
}

// DefaultConfigPaths возвращает список путей для поиска конфигурационного файла.
// Поиск выполняется в следующем порядке:
// 1. ./fileconverter.yaml (текущая директория)
// 2. ./fileconverter.yml
// 3. ~/.config/fileconverter/config.yaml
// 4. ~/.config/fileconverter/config.yml
func DefaultConfigPaths() []string {
	paths := []string{
		AppName + ".yaml",
		AppName + ".yml",
	}

	if dir, err := ConfigDir(); err == nil {
		paths = append(paths,
			filepath.Join(dir, "config.yaml"),
			filepath.Join(dir, "config.yml"),
		)
	}

	return paths
}

// LoadFromFile загружает конфигурацию из указанного файла.
// Возвращает nil, nil если файл не существует.
func LoadFromFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML в %s: %w", path, err)
	}

	return &fc, nil
}

// SaveToFile сохраняет конфигурацию в YAML файл.
func (fc *FileConfig) SaveToFile(path string) error {
	data, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать конфигурацию: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("не удалось записать %s: %w", path, err)
	}
	return nil
}

// FindAndLoadConfig ищет и загружает конфигурационный файл из стандартных путей.
// Если configPath указан явно, использует только его.
// Возвращает nil, nil если файл не найден.
func FindAndLoadConfig(configPath string) (*FileConfig, string, error) {
	// Если путь указан явно
	if configPath != "" {
		fc, err := LoadFromFile(configPath)
		if err != nil {
			return nil, "", err
		}
		if fc == nil {
			return nil, "", fmt.Errorf("файл конфигурации не найден: %s", configPath)
		}
		return fc, configPath, nil
	}

	// Ищем в стандартных путях
	for _, path := range DefaultConfigPaths() {
		fc, err := LoadFromFile(path)
		if err != nil {
			return nil, "", err
		}
		if fc != nil {
			return fc, path, nil
		}
	}

	return nil, "", nil
}

// ApplyToConfig применяет настройки из файла к основной конфигурации.
// CLI флаги имеют приоритет над файлом конфигурации, поэтому
// эта функция должна вызываться до применения CLI флагов.
func (fc *FileConfig) ApplyToConfig(cfg *Config) error {
	if fc == nil {
		return nil
	}

	// Tools
	if fc.Tools != nil {
		if fc.Tools.ImageMagick != "" {
			cfg.MagickPath = fc.Tools.ImageMagick
		}
		if fc.Tools.FFmpeg != "" {
			cfg.FFmpegPath = fc.Tools.FFmpeg
		}
		if fc.Tools.FFprobe != "" {
			cfg.FFprobePath = fc.Tools.FFprobe
		}
		if fc.Tools.Ghostscript != "" {
			cfg.GhostscriptPath = fc.Tools.Ghostscript
		}
	}

	// Presets
	if fc.Presets != nil {
		if fc.Presets.File != "" {
			cfg.PresetsFile = fc.Presets.File
		}
		if fc.Presets.Default != "" {
			cfg.Preset = fc.Presets.Default
		}
		if c := fc.Presets.Custom; c != nil {
			cfg.Format = c.Format
			cfg.Width = c.Width
			cfg.Height = c.Height
			cfg.Quality = c.Quality
		}
	}

	// Processing
	if fc.Processing != nil {
		if fc.Processing.Recursive {
			cfg.Recursive = true
		}
		if fc.Processing.Verbose {
			cfg.Verbose = true
		}
		if fc.Processing.NoProgress {
			cfg.NoProgress = true
		}
	}

	// History
	if fc.History != nil {
		if fc.History.Enabled != nil {
			cfg.NoHistory = !*fc.History.Enabled
		}
		if fc.History.DB != "" {
			cfg.DBPath = fc.History.DB
		}
	}

	// Watch
	if fc.Watch != nil && fc.Watch.Debounce != "" {
		d, err := time.ParseDuration(fc.Watch.Debounce)
		if err != nil {
			return fmt.Errorf("некорректный watch.debounce %q: %w", fc.Watch.Debounce, err)
		}
		cfg.WatchDebounce = d
	}

	return nil
}

// FromConfig строит FileConfig из текущих настроек (для сохранения профиля).
func FromConfig(cfg *Config) *FileConfig {
	fc := &FileConfig{}

	if cfg.MagickPath != "" || cfg.FFmpegPath != "" || cfg.FFprobePath != "" || cfg.GhostscriptPath != "" {
		fc.Tools = &ToolsConfig{
			ImageMagick: cfg.MagickPath,
			FFmpeg:      cfg.FFmpegPath,
			FFprobe:     cfg.FFprobePath,
			Ghostscript: cfg.GhostscriptPath,
		}
	}

	if cfg.PresetsFile != "" || cfg.Preset != "" || cfg.HasOverride() {
		fc.Presets = &PresetsConfig{
			File:    cfg.PresetsFile,
			Default: cfg.Preset,
		}
		if cfg.HasOverride() {
			fc.Presets.Custom = &CustomConfig{
				Format:  cfg.Format,
				Width:   cfg.Width,
				Height:  cfg.Height,
				Quality: cfg.Quality,
			}
		}
	}

	if cfg.Recursive || cfg.Verbose || cfg.NoProgress {
		fc.Processing = &ProcessingConfig{
			Recursive:  cfg.Recursive,
			Verbose:    cfg.Verbose,
			NoProgress: cfg.NoProgress,
		}
	}

	enabled := !cfg.NoHistory
	fc.History = &HistoryConfig{Enabled: &enabled, DB: cfg.DBPath}

	if cfg.WatchDebounce > 0 {
		fc.Watch = &WatchConfig{Debounce: cfg.WatchDebounce.String()}
	}

	return fc
}

// GenerateExampleConfig генерирует пример конфигурационного файла.
func GenerateExampleConfig() string {
	return `# FileConverter Configuration File
# Все параметры опциональны - если не указаны, используются значения по умолчанию.
# CLI флаги имеют приоритет над этим файлом.

tools:
  # Пути к утилитам (по умолчанию автопоиск: env, PATH, ./bin/<os-arch>/)
  imagemagick: ""
  ffmpeg: ""
  ffprobe: ""
  ghostscript: ""

presets:
  # Документ пресетов (YAML или JSON). Пусто = встроенные пресеты
  # или ~/.config/fileconverter/presets.yaml, если существует.
  file: ""
  # Пресет по умолчанию. Пусто = первый пресет категории файла.
  default: ""
  # Пользовательские параметры вместо пресета (нельзя вместе с default)
  # custom:
  #   format: webp
  #   width: 1280
  #   height: 0
  #   quality: ebook

processing:
  # Обходить вложенные директории
  recursive: false
  # Подробный вывод
  verbose: false
  # Отключить прогресс-бар
  no_progress: false

history:
  # Вести историю конвертаций в SQLite
  enabled: true
  # Путь к базе (по умолчанию ~/.config/fileconverter/history.sqlite)
  db: ""

watch:
  # Пауза после последнего изменения файла перед конвертацией
  debounce: 2s
`
}

/*
Возможные расширения:
- Добавить поддержку TOML формата
- Добавить поддержку переменных окружения в конфиге
*/
