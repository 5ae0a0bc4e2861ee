// Package cli содержит CLI команды приложения.
package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/fileconverter/internal/filetype"
	"github.com/artemshloyda/fileconverter/internal/preset"
)

// newPresetsCmd создаёт команду для просмотра пресетов.
func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Просмотр пресетов конвертации",
		Long: `Просмотр пресетов конвертации.

Пресеты берутся из --presets-file, из ~/.config/fileconverter/presets.yaml
или из встроенного набора. Первый пресет категории используется по умолчанию.

Примеры:
  # Все пресеты
  fileconverter presets list

  # Пресеты, подходящие для файла
  fileconverter presets list clip.mov`,
	}

	cmd.AddCommand(newPresetsListCmd())

	return cmd
}

// newPresetsListCmd создаёт команду для списка пресетов.
func newPresetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [файл]",
		Short: "Показать пресеты (для всех категорий или для типа файла)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := preset.NewCatalog(cfg.ResolvePresetsFile(), newLogger(cfg.Verbose))
			if err := catalog.Load(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			cats := catalog.Categories()

			if len(args) == 1 {
				cat := filetype.Classify(args[0])
				if cat == filetype.Unknown {
					return fmt.Errorf("неподдерживаемый тип файла: %s", args[0])
				}
				cats = []filetype.Category{cat}
			}

			fmt.Fprintf(out, "📦 Пресеты (%s):\n", catalog.Source())
			for _, cat := range cats {
				writePresets(out, cat, catalog.PresetsFor(cat))
			}
			return nil
		},
	}
}

// writePresets выводит таблицу пресетов категории.
func writePresets(out io.Writer, cat filetype.Category, set *preset.Set) {
	fmt.Fprintf(out, "\n%s:\n", cat)
	if set.Len() == 0 {
		fmt.Fprintln(out, "  (нет пресетов)")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, p := range set.All() {
		mark := " "
		if i == 0 {
			mark = "*"
		}
		fmt.Fprintf(w, "  %s %s\t%s\n", mark, p.Name, p.Describe())
	}
	_ = w.Flush()
}

/*
Возможные расширения:
- Добавить команду 'presets export' для выгрузки встроенного документа
- Добавить проверку документа пресетов без запуска конвертации
*/
