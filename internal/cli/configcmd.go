package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/fileconverter/internal/config"
)

// newConfigCmd создаёт команду config.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Работа с файлом конфигурации",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

// newConfigInitCmd создаёт команду config init.
func newConfigInitCmd() *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Создать пример файла конфигурации",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := output
			if path == "" {
				dir, err := config.ConfigDir()
				if err != nil {
					return err
				}
				path = filepath.Join(dir, "config.yaml")
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("файл %s уже существует (используйте --force)", path)
			}

			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("не удалось создать директорию: %w", err)
			}
			if err := os.WriteFile(path, []byte(config.GenerateExampleConfig()), 0644); err != nil {
				return fmt.Errorf("не удалось записать %s: %w", path, err)
			}

			fmt.Printf("✅ Конфигурация создана: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Путь к файлу (по умолчанию ~/.config/fileconverter/config.yaml)")
	cmd.Flags().BoolVar(&force, "force", false, "Перезаписать существующий файл")

	return cmd
}

// newConfigShowCmd создаёт команду config show.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Показать итоговые настройки",
		Run: func(cmd *cobra.Command, args []string) {
			source := configSource
			if source == "" {
				source = "по умолчанию"
			}

			fmt.Printf("⚙️  Конфигурация: %s\n", source)
			fmt.Printf("   Пресеты: %s\n", orDefault(cfg.ResolvePresetsFile(), "встроенные"))
			fmt.Printf("   Пресет по умолчанию: %s\n", orDefault(cfg.Preset, "первый в категории"))
			fmt.Printf("   История: %s\n", historyState(cfg))
			fmt.Printf("   Рекурсивно: %v\n", cfg.Recursive)
			fmt.Printf("   Debounce watch: %s\n", cfg.WatchDebounce)
			for _, t := range []struct{ name, path string }{
				{"ImageMagick", cfg.MagickPath},
				{"FFmpeg", cfg.FFmpegPath},
				{"FFprobe", cfg.FFprobePath},
				{"Ghostscript", cfg.GhostscriptPath},
			} {
				if t.path != "" {
					fmt.Printf("   %s: %s\n", t.name, t.path)
				}
			}
		},
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func historyState(c *config.Config) string {
	if c.NoHistory {
		return "выключена"
	}
	return orDefault(c.DBPath, config.DefaultDBPath())
}
