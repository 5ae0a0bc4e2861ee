// Package cli содержит CLI интерфейс приложения.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/artemshloyda/fileconverter/internal/config"
)

var (
	// Version будет установлена при сборке.
	Version = "dev"

	// BuildTime будет установлена при сборке.
	BuildTime = "unknown"
)

// cfg содержит глобальную конфигурацию.
var cfg = config.DefaultConfig()

var (
	// configPath - явный путь к файлу конфигурации.
	configPath string

	// profileName - загрузить именованный профиль вместо файла конфигурации.
	profileName string

	// saveProfileName - сохранить параметры запуска как профиль.
	saveProfileName string

	// configSource - откуда загружены настройки (для вывода).
	configSource string
)

// NewRootCmd создаёт корневую команду CLI.
func NewRootCmd() *cobra.Command {
	cfg = config.DefaultConfig()
	configPath, profileName, saveProfileName, configSource = "", "", "", ""

	rootCmd := &cobra.Command{
		Use:   "fileconverter [файлы или директории...]",
		Short: "Конвертация изображений, видео, аудио и PDF по пресетам",
		Long: `FileConverter - CLI утилита для конвертации медиафайлов.

Использует внешние утилиты: ImageMagick (изображения), FFmpeg (видео и аудио),
Ghostscript (PDF). Файлы обрабатываются по одному, результат кладётся рядом
с исходником с суффиксом _converted. Ctrl+C отменяет текущий файл и очередь.

Примеры:
  # Конвертировать по пресету по умолчанию для каждого типа
  fileconverter photo.jpg clip.mov

  # Выбрать пресет по имени
  fileconverter --preset "To WEBP" ./photos

  # Пользовательские параметры вместо пресета
  fileconverter --format webm --height 720 clip.mp4

  # Сжать PDF
  fileconverter --preset "Compress (Low)" report.pdf

  # Список пресетов для файла
  fileconverter presets list clip.mp4`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		RunE:              runConvert,
	}

	// Глобальные флаги
	pflags := rootCmd.PersistentFlags()
	pflags.StringVar(&configPath, "config", "", "Путь к файлу конфигурации (по умолчанию ./fileconverter.yaml или ~/.config/fileconverter/config.yaml)")
	pflags.StringVar(&profileName, "profile", "", "Загрузить сохранённый профиль настроек")
	pflags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Подробный вывод")
	pflags.StringVar(&cfg.PresetsFile, "presets-file", cfg.PresetsFile, "Документ пресетов (YAML или JSON)")
	pflags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Путь к SQLite базе истории")
	pflags.StringVar(&cfg.MagickPath, "magick-path", cfg.MagickPath, "Путь к ImageMagick (magick/convert)")
	pflags.StringVar(&cfg.FFmpegPath, "ffmpeg-path", cfg.FFmpegPath, "Путь к ffmpeg")
	pflags.StringVar(&cfg.FFprobePath, "ffprobe-path", cfg.FFprobePath, "Путь к ffprobe")
	pflags.StringVar(&cfg.GhostscriptPath, "gs-path", cfg.GhostscriptPath, "Путь к Ghostscript")

	addConvertFlags(rootCmd.Flags())
	rootCmd.Flags().StringVar(&saveProfileName, "save-profile", "", "Сохранить параметры запуска как профиль")

	// Подкоманды
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newPresetsCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newToolsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// addConvertFlags регистрирует параметры конвертации (общие для convert и watch).
func addConvertFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&cfg.Preset, "preset", "p", cfg.Preset, "Имя пресета (по умолчанию первый пресет типа файла)")
	flags.StringVarP(&cfg.Format, "format", "f", cfg.Format, "Пользовательский формат вместо пресета (png, mp4, mp3...)")
	flags.IntVar(&cfg.Width, "width", cfg.Width, "Пользовательская ширина (0 = авто)")
	flags.IntVar(&cfg.Height, "height", cfg.Height, "Пользовательская высота (0 = авто)")
	flags.StringVar(&cfg.Quality, "quality", cfg.Quality, "Уровень сжатия PDF: screen, ebook, printer, prepress")
	flags.BoolVarP(&cfg.Recursive, "recursive", "r", cfg.Recursive, "Обходить вложенные директории")
	flags.BoolVar(&cfg.NoHistory, "no-history", cfg.NoHistory, "Не вести историю конвертаций")
	flags.BoolVar(&cfg.NoProgress, "no-progress", cfg.NoProgress, "Отключить прогресс-бар")
}

// fileFlags - флаги, значения которых может задать файл конфигурации.
// При явном указании флага значение из файла отбрасывается.
var fileFlags = map[string]func(dst, src *config.Config){
	"verbose":      func(d, s *config.Config) { d.Verbose = s.Verbose },
	"presets-file": func(d, s *config.Config) { d.PresetsFile = s.PresetsFile },
	"db":           func(d, s *config.Config) { d.DBPath = s.DBPath },
	"magick-path":  func(d, s *config.Config) { d.MagickPath = s.MagickPath },
	"ffmpeg-path":  func(d, s *config.Config) { d.FFmpegPath = s.FFmpegPath },
	"ffprobe-path": func(d, s *config.Config) { d.FFprobePath = s.FFprobePath },
	"gs-path":      func(d, s *config.Config) { d.GhostscriptPath = s.GhostscriptPath },
	"preset":       func(d, s *config.Config) { d.Preset = s.Preset },
	"format":       func(d, s *config.Config) { d.Format = s.Format },
	"width":        func(d, s *config.Config) { d.Width = s.Width },
	"height":       func(d, s *config.Config) { d.Height = s.Height },
	"quality":      func(d, s *config.Config) { d.Quality = s.Quality },
	"recursive":    func(d, s *config.Config) { d.Recursive = s.Recursive },
	"no-history":   func(d, s *config.Config) { d.NoHistory = s.NoHistory },
	"no-progress":  func(d, s *config.Config) { d.NoProgress = s.NoProgress },
	"debounce":     func(d, s *config.Config) { d.WatchDebounce = s.WatchDebounce },
}

// loadConfig применяет файл конфигурации или профиль. CLI флаги имеют приоритет.
func loadConfig(cmd *cobra.Command, args []string) error {
	var (
		fc     *config.FileConfig
		source string
		err    error
	)

	if profileName != "" {
		fc, source, err = config.LoadProfile(profileName)
	} else {
		fc, source, err = config.FindAndLoadConfig(configPath)
	}
	if err != nil {
		return err
	}
	if fc == nil {
		return nil
	}

	before := snapshotConfig()
	if err := fc.ApplyToConfig(cfg); err != nil {
		return err
	}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if restore, ok := fileFlags[f.Name]; ok {
			restore(cfg, before)
		}
	})

	// Пресет и пользовательские параметры взаимоисключающие: явный выбор в CLI
	// заменяет противоположный выбор из файла.
	switch {
	case cmd.Flags().Changed("preset") && !overrideFlagsChanged(cmd):
		cfg.Format, cfg.Width, cfg.Height, cfg.Quality = "", 0, 0, ""
	case overrideFlagsChanged(cmd) && !cmd.Flags().Changed("preset"):
		cfg.Preset = ""
	}

	configSource = source
	return nil
}

func overrideFlagsChanged(cmd *cobra.Command) bool {
	for _, name := range []string{"format", "width", "height", "quality"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func snapshotConfig() *config.Config {
	c := *cfg
	return &c
}

// newLogger создаёт консольный логгер в stderr.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// newVersionCmd создаёт команду version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fileconverter %s (built %s)\n", Version, BuildTime)
		},
	}
}

// Execute запускает CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		// Не выводим ошибку, cobra уже вывела
		os.Exit(1)
	}
}

/*
Возможные расширения:
- Добавить команду retry для повторной обработки failed из истории
- Добавить вывод событий в JSON для интеграции с файловыми менеджерами
*/
