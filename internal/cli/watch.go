package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/fileconverter/internal/filetype"
	"github.com/artemshloyda/fileconverter/internal/preset"
	"github.com/artemshloyda/fileconverter/internal/progress"
	"github.com/artemshloyda/fileconverter/internal/watcher"
	"github.com/artemshloyda/fileconverter/internal/worker"
)

// newWatchCmd создаёт команду watch.
func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [директории...]",
		Short: "Следить за директориями и конвертировать новые файлы",
		Long: `Следить за директориями и конвертировать новые файлы.

Файл конвертируется, когда он не менялся в течение --debounce.
Результаты конвертации (*_converted*) и скрытые файлы пропускаются.

Пример:
  fileconverter watch --preset "To WEBP" --debounce 3s ~/Downloads`,
		Args: cobra.MinimumNArgs(1),
		RunE: runWatch,
	}

	addConvertFlags(cmd.Flags())
	cmd.Flags().DurationVar(&cfg.WatchDebounce, "debounce", cfg.WatchDebounce, "Пауза после последнего изменения файла")

	return cmd
}

// runWatch конвертирует новые файлы по мере появления, по одному.
func runWatch(cmd *cobra.Command, args []string) error {
	cfg.Inputs = args
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	logger := newLogger(cfg.Verbose)

	catalog := preset.NewCatalog(cfg.ResolvePresetsFile(), logger)
	if err := catalog.Load(); err != nil {
		// Каталог остаётся пустым: задачи по пресетам получат Invalid Preset
		fmt.Fprintf(os.Stderr, "⚠️  %v\n", err)
	}

	all := map[filetype.Category]int{}
	for _, cat := range filetype.Known() {
		all[cat] = 1
	}
	tools, toolErrs := findTools(cfg, all, logger)
	for _, err := range toolErrs {
		fmt.Fprintf(os.Stderr, "⚠️  %v\n", err)
	}

	opts := []worker.Option{worker.WithLogger(logger)}
	if store := openHistory(cfg, logger); store != nil {
		defer func() { _ = store.Close() }()
		opts = append(opts, worker.WithRecorder(store))
	}
	runner := worker.New(catalog, buildEngines(tools, logger), opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(cfg.WatchDebounce, cfg.Recursive, logger)
	if err != nil {
		return err
	}
	files, err := w.Watch(ctx, args)
	if err != nil {
		return err
	}

	fmt.Printf("👀 Слежение: %s (%s)\n", strings.Join(args, ", "), cfg.Describe())
	fmt.Println("   Ctrl+C для выхода")

	override := cfg.Override()
	var total worker.Stats
	for path := range files {
		events, err := runner.Start(ctx, []worker.Job{{Path: path, PresetName: cfg.Preset, Override: override}})
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("не удалось запустить конвертацию")
			continue
		}

		bar := progress.New(progress.Options{Total: 1, Disabled: cfg.NoProgress})
		stats := report(events, bar, true)
		bar.Finish()

		total.Total += stats.Total
		total.Completed += stats.Completed
		total.Failed += stats.Failed
		total.Cancelled += stats.Cancelled
		total.InputBytes += stats.InputBytes
		total.OutputBytes += stats.OutputBytes
	}

	fmt.Printf("\n👋 Слежение остановлено: %s\n", total.Summary())
	return nil
}
