// Package watcher предоставляет функциональность слежения за директорией.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/artemshloyda/fileconverter/internal/filetype"
	"github.com/artemshloyda/fileconverter/internal/outpath"
)

// tickInterval - период проверки отложенных файлов.
const tickInterval = 100 * time.Millisecond

// Watcher следит за директориями и отдаёт новые поддерживаемые файлы.
type Watcher struct {
	// watcher - fsnotify watcher.
	watcher *fsnotify.Watcher

	// debounceTime - время ожидания после последнего события по файлу.
	// Нужно для того, чтобы файл успел полностью записаться.
	debounceTime time.Duration

	// recursive - следить за вложенными директориями.
	recursive bool

	logger zerolog.Logger

	// pending - файлы, ожидающие обработки (для debounce).
	// Доступен только из горутины run.
	pending map[string]time.Time
}

// New создаёт новый Watcher.
func New(debounce time.Duration, recursive bool, logger zerolog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("не удалось создать watcher: %w", err)
	}

	return &Watcher{
		watcher:      w,
		debounceTime: debounce,
		recursive:    recursive,
		logger:       logger,
		pending:      make(map[string]time.Time),
	}, nil
}

// Watch начинает слежение за директориями и возвращает канал путей.
// Канал закрывается при отмене контекста.
func (w *Watcher) Watch(ctx context.Context, dirs []string) (<-chan string, error) {
	for _, dir := range dirs {
		if err := w.add(dir); err != nil {
			_ = w.watcher.Close()
			return nil, err
		}
	}

	files := make(chan string, 100)
	go w.run(ctx, files)

	return files, nil
}

// add добавляет директорию (и поддиректории в рекурсивном режиме).
func (w *Watcher) add(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("не удалось прочитать %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s не является директорией", dir)
	}

	if !w.recursive {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("не удалось добавить директорию %s: %w", dir, err)
		}
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("не удалось добавить директорию %s: %w", path, err)
			}
		}
		return nil
	})
}

// run обрабатывает события fsnotify и отдаёт файлы после debounce.
func (w *Watcher) run(ctx context.Context, files chan<- string) {
	defer close(files)
	defer func() { _ = w.watcher.Close() }()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("ошибка watcher")

		case now := <-ticker.C:
			for _, path := range w.ready(now) {
				select {
				case files <- path:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handle откладывает файл или добавляет новую директорию.
func (w *Watcher) handle(event fsnotify.Event) {
	// Обрабатываем только создание и запись файлов
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}

	if info.IsDir() {
		// Новая директория - добавляем в watcher
		if w.recursive && event.Op&fsnotify.Create != 0 {
			if err := w.watcher.Add(event.Name); err != nil {
				w.logger.Warn().Err(err).Str("path", event.Name).Msg("не удалось добавить директорию")
			}
		}
		return
	}

	if !Accept(event.Name) {
		return
	}

	w.pending[event.Name] = time.Now()
}

// ready возвращает файлы, по которым debounce истёк, в порядке имён.
func (w *Watcher) ready(now time.Time) []string {
	var out []string
	for path, last := range w.pending {
		if now.Sub(last) < w.debounceTime {
			continue
		}
		delete(w.pending, path)

		// Файл могли удалить за время ожидания
		if _, err := os.Stat(path); err != nil {
			continue
		}
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Accept сообщает, нужно ли конвертировать файл, появившийся в директории.
// Скрытые файлы, неизвестные расширения и собственные результаты пропускаются.
func Accept(path string) bool {
	base := filepath.Base(path)
	if base == "" || base[0] == '.' {
		return false
	}
	if filetype.Classify(path) == filetype.Unknown {
		return false
	}
	if outpath.IsConverted(path) {
		return false
	}
	// Временные файлы движков: name.converting.ext
	if filepath.Ext(trimExt(base)) == ".converting" {
		return false
	}
	return true
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

// Close закрывает watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

/*
Возможные расширения:
- Добавить фильтрацию по паттерну (glob)
- Добавить обработку переименования файлов
- Добавить rate limiting для большого количества файлов
*/
