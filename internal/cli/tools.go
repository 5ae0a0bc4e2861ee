package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/fileconverter/internal/toolfinder"
)

// newToolsCmd создаёт команду tools.
func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Проверить наличие внешних утилит",
		RunE: func(cmd *cobra.Command, args []string) error {
			missing := 0
			for _, tool := range []toolfinder.Tool{
				toolfinder.ImageMagick,
				toolfinder.FFmpeg,
				toolfinder.FFprobe,
				toolfinder.Ghostscript,
			} {
				info, err := toolfinder.NewFinder(tool, customPath(cfg, tool)).Find()
				if err != nil {
					missing++
					fmt.Printf("❌ %-12s не найден (%s)\n", tool.Name, tool.Hint)
					continue
				}
				fmt.Printf("📦 %-12s %s (версия %s)\n", tool.Name, info.Path, info.Version)
			}

			if missing > 0 {
				fmt.Printf("\n⚠️  Не найдено утилит: %d. Файлы соответствующих типов не будут сконвертированы.\n", missing)
			}
			return nil
		},
	}
}
