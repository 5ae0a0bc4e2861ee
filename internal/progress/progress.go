// Package progress предоставляет прогресс-бар с ETA для отображения прогресса конвертации.
package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// unitsPerFile - делений шкалы на один файл (проценты).
const unitsPerFile = 100

// Outcome - итог одного файла для счётчиков.
type Outcome int

const (
	// OutcomeCompleted - файл сконвертирован.
	OutcomeCompleted Outcome = iota
	// OutcomeFailed - ошибка.
	OutcomeFailed
	// OutcomeCancelled - отменён.
	OutcomeCancelled
)

// Bar представляет прогресс-бар пакета с поддержкой ETA.
// Шкала складывается из процентов текущего файла и числа завершённых файлов.
type Bar struct {
	// bar - внутренний progressbar.
	bar *progressbar.ProgressBar

	// mu защищает доступ к bar и счётчикам.
	mu sync.Mutex

	// disabled - флаг отключения прогресс-бара.
	disabled bool

	// total - общее количество файлов.
	total int64

	// finished - завершённых файлов (любой итог).
	finished int64

	// current - файл, который сейчас конвертируется.
	current string

	completed int64
	failed    int64
	cancelled int64

	// startTime - время начала обработки.
	startTime time.Time

	// writer - куда выводить (по умолчанию os.Stderr).
	writer io.Writer
}

// Options содержит настройки для прогресс-бара.
type Options struct {
	// Total - общее количество файлов для обработки.
	Total int64

	// Description - описание задачи до старта первого файла.
	Description string

	// Disabled - отключить прогресс-бар (только текстовый вывод).
	Disabled bool

	// Writer - куда выводить (по умолчанию os.Stderr).
	Writer io.Writer
}

// New создаёт новый прогресс-бар.
func New(opts Options) *Bar {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	b := &Bar{
		disabled:  opts.Disabled,
		total:     opts.Total,
		startTime: time.Now(),
		writer:    writer,
	}

	if !opts.Disabled && opts.Total > 0 {
		description := opts.Description
		if description == "" {
			description = "Конвертация"
		}

		b.bar = progressbar.NewOptions64(
			opts.Total*unitsPerFile,
			progressbar.OptionSetWriter(writer),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowBytes(false),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]█[reset]",
				SaucerHead:    "[green]▓[reset]",
				SaucerPadding: "░",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(writer)
			}),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	return b
}

// Update отражает процент текущего файла.
func (b *Bar) Update(path string, percent int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	if path != b.current {
		b.current = path
		if b.bar != nil {
			b.bar.Describe(fmt.Sprintf("[%d/%d] %s", b.finished+1, b.total, filepath.Base(path)))
		}
	}

	if b.bar != nil {
		_ = b.bar.Set64(b.finished*unitsPerFile + int64(percent))
	}
}

// Done фиксирует итог файла и двигает шкалу на следующий.
func (b *Bar) Done(outcome Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch outcome {
	case OutcomeCompleted:
		b.completed++
	case OutcomeFailed:
		b.failed++
	case OutcomeCancelled:
		b.cancelled++
	}

	b.finished++
	b.current = ""

	if b.bar != nil {
		_ = b.bar.Set64(b.finished * unitsPerFile)
	}
}

// Finish завершает прогресс-бар.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Finish()
	}
}

// Clear очищает прогресс-бар (для вывода сообщений).
func (b *Bar) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Clear()
	}
}

// Stats возвращает текущую статистику.
func (b *Bar) Stats() (completed, failed, cancelled int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.completed, b.failed, b.cancelled
}

// Finished возвращает число завершённых файлов.
func (b *Bar) Finished() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.finished
}

// Duration возвращает время с начала обработки.
func (b *Bar) Duration() time.Duration {
	return time.Since(b.startTime)
}

// IsDisabled возвращает true, если прогресс-бар отключён.
func (b *Bar) IsDisabled() bool {
	return b.disabled
}

// WriteMessage выводит сообщение, временно скрывая прогресс-бар.
func (b *Bar) WriteMessage(format string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Clear()
	}

	fmt.Fprintf(b.writer, format, args...)

	if b.bar != nil {
		_ = b.bar.RenderBlank()
	}
}

/*
Возможные расширения:
- Отдельная строка для текущего файла и для пакета
- Добавить историю скорости обработки
- Добавить вывод в файл лога параллельно с прогресс-баром
*/
