package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artemshloyda/fileconverter/internal/config"
	"github.com/artemshloyda/fileconverter/internal/filetype"
	"github.com/artemshloyda/fileconverter/internal/preset"
	"github.com/artemshloyda/fileconverter/internal/progress"
	"github.com/artemshloyda/fileconverter/internal/scanner"
	"github.com/artemshloyda/fileconverter/internal/storage"
	"github.com/artemshloyda/fileconverter/internal/worker"
)

// История реализует Recorder раннера.
var _ worker.Recorder = (*storage.Storage)(nil)

// runConvert выполняет основную логику конвертации.
func runConvert(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	if len(args) == 0 {
		return cmd.Help()
	}
	cfg.Inputs = args

	// Валидация конфигурации
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	logger := newLogger(cfg.Verbose)

	if saveProfileName != "" {
		path, err := config.SaveProfile(saveProfileName, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("💾 Профиль '%s' сохранён: %s\n", saveProfileName, path)
	}

	// Собираем файлы
	files, err := scanner.New(cfg.Recursive, logger).Collect(context.Background(), cfg.Inputs)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("📭 Нет файлов для конвертации")
		return nil
	}

	catalog := preset.NewCatalog(cfg.ResolvePresetsFile(), logger)
	if err := catalog.Load(); err != nil {
		// Каталог остаётся пустым: задачи по пресетам получат Invalid Preset
		fmt.Fprintf(os.Stderr, "⚠️  %v\n", err)
	}

	counts := scanner.CountByCategory(files)
	tools, toolErrs := findTools(cfg, counts, logger)
	for _, err := range toolErrs {
		fmt.Fprintf(os.Stderr, "⚠️  %v\n", err)
	}

	opts := []worker.Option{worker.WithLogger(logger)}
	if store := openHistory(cfg, logger); store != nil {
		defer func() { _ = store.Close() }()
		opts = append(opts, worker.WithRecorder(store))
	}

	runner := worker.New(catalog, buildEngines(tools, logger), opts...)

	// Выводим параметры
	fmt.Printf("🚀 Запуск конвертации:\n")
	fmt.Printf("   Файлов: %d (%s)\n", len(files), describeCounts(counts))
	fmt.Printf("   Параметры: %s\n", cfg.Describe())
	fmt.Printf("   Пресеты: %s\n", catalog.Source())
	if configSource != "" {
		fmt.Printf("   Конфигурация: %s\n", configSource)
	}
	fmt.Println()

	stats, err := runBatch(runner, buildJobs(files, cfg), !cfg.NoProgress, cfg.Verbose)
	if err != nil {
		return err
	}

	printSummary(stats, time.Since(startTime))

	if stats.Failed > 0 {
		return fmt.Errorf("завершено с %d ошибками", stats.Failed)
	}
	return nil
}

// buildJobs превращает найденные файлы в задачи.
func buildJobs(files []scanner.File, c *config.Config) []worker.Job {
	override := c.Override()
	jobs := make([]worker.Job, len(files))
	for i, f := range files {
		jobs[i] = worker.Job{Path: f.Path, PresetName: c.Preset, Override: override}
	}
	return jobs
}

// openHistory открывает базу истории. При ошибке работа продолжается без неё.
func openHistory(c *config.Config, logger zerolog.Logger) *storage.Storage {
	if c.NoHistory {
		return nil
	}

	store, err := storage.New(c.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  История отключена: %v\n", err)
		return nil
	}

	// Очищаем прерванные задачи
	cleaned, err := store.CleanupInProgress()
	if err != nil {
		logger.Warn().Err(err).Msg("не удалось очистить in_progress")
	} else if cleaned > 0 {
		fmt.Printf("🧹 Очищено %d прерванных задач\n", cleaned)
	}

	return store
}

// runBatch запускает пакет и отображает его ход до завершения.
// SIGINT и SIGTERM отменяют пакет.
func runBatch(runner *worker.Runner, jobs []worker.Job, showProgress, verbose bool) (worker.Stats, error) {
	events, err := runner.Start(context.Background(), jobs)
	if err != nil {
		return worker.Stats{}, err
	}

	// Обработка сигналов завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigChan:
			fmt.Println("\n⚠️  Получен сигнал завершения, отменяем...")
			runner.Cancel()
		case <-done:
		}
	}()

	bar := progress.New(progress.Options{
		Total:    int64(len(jobs)),
		Disabled: !showProgress,
	})

	stats := report(events, bar, verbose)
	bar.Finish()

	return stats, nil
}

// report отображает события пакета и возвращает его итог.
func report(events <-chan worker.Event, bar *progress.Bar, verbose bool) worker.Stats {
	var stats worker.Stats
	for ev := range events {
		switch ev.Kind {
		case worker.EventProgress:
			bar.Update(ev.Path, ev.Percent)

		case worker.EventFinished:
			name := filepath.Base(ev.Path)
			switch ev.Status {
			case worker.StatusCompleted:
				bar.Done(progress.OutcomeCompleted)
				if verbose || bar.IsDisabled() {
					bar.WriteMessage("✅ %s → %s\n", name, filepath.Base(ev.OutputPath))
				}
			case worker.StatusCancelled:
				bar.Done(progress.OutcomeCancelled)
				bar.WriteMessage("⏹  %s: %s\n", name, ev.Message)
			default:
				bar.Done(progress.OutcomeFailed)
				bar.WriteMessage("❌ %s: %s\n", name, ev.Message)
			}

		case worker.EventAllFinished:
			stats = ev.Stats
		}
	}
	return stats
}

// describeCounts форматирует количество файлов по категориям.
func describeCounts(counts map[filetype.Category]int) string {
	var out string
	for _, cat := range append(filetype.Known(), filetype.Unknown) {
		n := counts[cat]
		if n == 0 {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += fmt.Sprintf("%s: %d", cat, n)
	}
	return out
}

// printSummary выводит итог пакета.
func printSummary(stats worker.Stats, duration time.Duration) {
	fmt.Println()
	fmt.Printf("📊 Результаты:\n")
	fmt.Printf("   Успешно: %d\n", stats.Completed)
	fmt.Printf("   Ошибок: %d\n", stats.Failed)
	if stats.Cancelled > 0 || stats.Pending() > 0 {
		fmt.Printf("   Отменено: %d, не начато: %d\n", stats.Cancelled, stats.Pending())
	}
	if stats.InputBytes > 0 {
		fmt.Printf("   Размер: %s → %s (%+.1f%%)\n",
			worker.FormatBytes(stats.InputBytes), worker.FormatBytes(stats.OutputBytes), -stats.SavedPercent())
	}
	fmt.Printf("   Время: %s\n", duration.Round(time.Millisecond))
}
