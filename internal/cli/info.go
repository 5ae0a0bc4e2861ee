package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/fileconverter/internal/mediainfo"
	"github.com/artemshloyda/fileconverter/internal/toolfinder"
)

// newInfoCmd создаёт команду info.
func newInfoCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info [файлы...]",
		Short: "Показать сведения о медиафайлах (ffprobe, EXIF)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cfg.Verbose)

			var ffprobe string
			if info, err := toolfinder.NewFinder(toolfinder.FFprobe, cfg.FFprobePath).Find(); err != nil {
				logger.Warn().Err(err).Msg("ffprobe недоступен")
			} else {
				ffprobe = info.Path
			}

			prober := mediainfo.NewProber(ffprobe, logger)
			out := cmd.OutOrStdout()

			var infos []*mediainfo.Info
			var failed int
			for _, path := range args {
				info, err := prober.Probe(cmd.Context(), path)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "❌ %s: %v\n", path, err)
					continue
				}
				infos = append(infos, info)
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(infos); err != nil {
					return fmt.Errorf("не удалось сериализовать: %w", err)
				}
			} else {
				for i, info := range infos {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprint(out, info.String())
				}
			}

			if failed > 0 {
				return fmt.Errorf("не удалось прочитать %d файлов", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Вывод в JSON")

	return cmd
}
