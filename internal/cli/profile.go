package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/artemshloyda/fileconverter/internal/config"
)

// newProfileCmd создаёт команду для управления профилями настроек.
func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Управление сохранёнными профилями настроек",
		Long: `Управление сохранёнными профилями настроек.

Профили хранятся в ~/.config/fileconverter/profiles/ и позволяют
сохранять и загружать параметры запуска для разных задач.

Примеры:
  # Сохранить текущие настройки как профиль
  fileconverter --format webp --width 1280 ./photos --save-profile web

  # Запустить конвертацию с профилем
  fileconverter --profile web ./photos

  # Список профилей
  fileconverter profile list

  # Удалить профиль
  fileconverter profile delete web`,
	}

	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileDeleteCmd())

	return cmd
}

// newProfileListCmd создаёт команду для списка профилей.
func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Показать список сохранённых профилей",
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return fmt.Errorf("ошибка получения списка профилей: %w", err)
			}

			if len(profiles) == 0 {
				fmt.Println("Профили не найдены.")
				fmt.Println()
				fmt.Println("Сохраните профиль командой:")
				fmt.Println("  fileconverter --preset \"To WEBP\" ./photos --save-profile web")
				return nil
			}

			fmt.Printf("📦 Сохранённые профили (%d):\n\n", len(profiles))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ИМЯ\tПРЕСЕТ\tПУТЬ")
			fmt.Fprintln(w, "---\t------\t----")

			for _, p := range profiles {
				presetName := "-"
				if p.Config != nil && p.Config.Presets != nil && p.Config.Presets.Default != "" {
					presetName = p.Config.Presets.Default
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, presetName, p.Path)
			}
			_ = w.Flush()

			return nil
		},
	}
}

// newProfileDeleteCmd создаёт команду для удаления профиля.
func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Удалить профиль",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if err := config.DeleteProfile(name); err != nil {
				return err
			}

			fmt.Printf("✅ Профиль '%s' удалён\n", name)
			return nil
		},
	}
}

// newProfileShowCmd создаёт команду для отображения профиля.
func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Показать содержимое профиля",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			fc, path, err := config.LoadProfile(name)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(fc)
			if err != nil {
				return fmt.Errorf("не удалось сериализовать профиль: %w", err)
			}

			fmt.Printf("📦 Профиль: %s\n", name)
			fmt.Printf("📁 Путь: %s\n\n", path)
			fmt.Print(string(data))

			return nil
		},
	}
}
