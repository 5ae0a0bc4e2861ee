package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/fileconverter/internal/config"
	"github.com/artemshloyda/fileconverter/internal/filetype"
	"github.com/artemshloyda/fileconverter/internal/storage"
)

// newStatsCmd создаёт команду stats.
func newStatsCmd() *cobra.Command {
	var (
		recent int
		prune  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Показать статистику из истории конвертаций",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := cfg.DBPath
			if dbPath == "" {
				dbPath = config.DefaultDBPath()
			}
			if _, err := os.Stat(dbPath); err != nil {
				fmt.Printf("📭 История пуста (%s)\n", dbPath)
				return nil
			}

			store, err := storage.New(dbPath)
			if err != nil {
				return fmt.Errorf("не удалось открыть БД: %w", err)
			}
			defer func() { _ = store.Close() }()

			if prune > 0 {
				n, err := store.Prune(prune)
				if err != nil {
					return err
				}
				fmt.Printf("🧹 Удалено записей старше %s: %d\n\n", prune, n)
			}

			st, err := store.GetStats()
			if err != nil {
				return fmt.Errorf("не удалось получить статистику: %w", err)
			}

			fmt.Printf("📊 Статистика истории (%s):\n", dbPath)
			fmt.Printf("   Всего записей: %d\n", st.Total)
			fmt.Printf("   Успешно: %d\n", st.Completed)
			fmt.Printf("   Ошибок: %d\n", st.Failed)
			fmt.Printf("   Отменено: %d\n", st.Cancelled)
			fmt.Printf("   В процессе: %d\n", st.InProgress)
			for _, cat := range filetype.Known() {
				if n := st.ByCategory[cat.String()]; n > 0 {
					fmt.Printf("   %s: %d\n", cat, n)
				}
			}

			if recent <= 0 {
				return nil
			}

			jobs, err := store.Recent(recent)
			if err != nil {
				return err
			}

			fmt.Printf("\n🕘 Последние %d:\n", len(jobs))
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ВРЕМЯ\tФАЙЛ\tПРЕСЕТ\tСТАТУС\tДЛИТЕЛЬНОСТЬ\tОШИБКА")
			for _, j := range jobs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					j.StartedAt.Format("2006-01-02 15:04"),
					filepath.Base(j.SrcPath),
					j.Preset,
					j.Status,
					j.Duration.Round(time.Millisecond),
					j.Error,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 10, "Показать последние N записей (0 = не показывать)")
	cmd.Flags().DurationVar(&prune, "prune", 0, "Удалить записи старше указанного возраста (например 720h)")

	return cmd
}
