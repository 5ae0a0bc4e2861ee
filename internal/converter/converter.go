// Package converter содержит движки конвертации поверх внешних утилит
// (ImageMagick, FFmpeg, Ghostscript).
package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/artemshloyda/fileconverter/internal/preset"
)

var (
	// ErrUnsupportedAction - движок не умеет выполнять действие пресета.
	ErrUnsupportedAction = errors.New("действие не поддерживается")

	// ErrToolFailed - утилита завершилась с ненулевым кодом.
	ErrToolFailed = errors.New("ошибка утилиты")

	// ErrToolMissing - путь к утилите не задан.
	ErrToolMissing = errors.New("утилита не найдена")

	// ErrCancelled - конвертация прервана отменой.
	ErrCancelled = errors.New("конвертация отменена")
)

const (
	// maxStderr - сколько байт stderr хранить в результате.
	maxStderr = 16 * 1024

	// waitDelay - сколько ждать закрытия stderr после завершения процесса.
	waitDelay = 2 * time.Second
)

// Engine конвертирует один файл.
// Ошибки не возвращаются отдельно: любая проблема даёт Result с Success=false.
type Engine interface {
	// Name возвращает имя движка для логов.
	Name() string

	// Convert выполняет конвертацию и блокируется до завершения процесса.
	Convert(ctx context.Context, req Request) *Result
}

// Request описывает одну конвертацию.
type Request struct {
	// InputPath - исходный файл.
	InputPath string

	// OutputPath - итоговый файл.
	OutputPath string

	// Preset - действие и его параметры.
	Preset preset.Preset

	// Progress получает проценты 0..100 (может быть nil).
	Progress chan<- int

	// Tracker регистрирует запущенный процесс для отмены (может быть nil).
	Tracker *ProcessTracker
}

// Result содержит результат конвертации.
type Result struct {
	// Success - успешна ли конвертация.
	Success bool

	// OutputPath - путь к выходному файлу.
	OutputPath string

	// Err - ошибка (если есть).
	Err error

	// Stderr - хвост stderr утилиты.
	Stderr string

	// ExitCode - код выхода утилиты (-1, если процесс не завершился сам).
	ExitCode int

	// Duration - время конвертации.
	Duration time.Duration
}

// Cancelled сообщает, что конвертация была прервана.
func (r *Result) Cancelled() bool {
	return errors.Is(r.Err, ErrCancelled)
}

// Message возвращает текст для статуса задачи.
func (r *Result) Message() string {
	if r.Success {
		return "Completed"
	}
	if r.Err == nil {
		return "Failed"
	}
	return r.Err.Error()
}

func failed(start time.Time, err error) *Result {
	return &Result{
		Success:  false,
		Err:      err,
		ExitCode: -1,
		Duration: time.Since(start),
	}
}

// tempPath возвращает путь временного файла рядом с результатом.
// Расширение сохраняется: утилиты определяют формат по нему.
func tempPath(dstPath string) string {
	ext := filepath.Ext(dstPath)
	return strings.TrimSuffix(dstPath, ext) + ".converting" + ext
}

// prepareOutput создаёт директорию назначения.
func prepareOutput(dstPath string) error {
	dir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
	}
	return nil
}

// execution - итог запуска внешнего процесса.
type execution struct {
	stderr   string
	exitCode int
	err      error
}

// execute запускает утилиту, регистрирует процесс в трекере и ждёт завершения.
// Если onLine задан, stderr разбирается построчно (разделители \n и \r).
func execute(ctx context.Context, tracker *ProcessTracker, tool string, args []string, onLine func(string)) execution {
	cmd := exec.CommandContext(ctx, tool, args...)
	// После kill не ждём вечно потомков, держащих stderr открытым.
	cmd.WaitDelay = waitDelay

	tail := newTailBuffer(maxStderr)
	var lines *lineWriter
	if onLine != nil {
		lines = newLineWriter(tail, onLine)
		cmd.Stderr = lines
	} else {
		cmd.Stderr = tail
	}

	if err := cmd.Start(); err != nil {
		return execution{exitCode: -1, err: fmt.Errorf("не удалось запустить %s: %w", tool, err)}
	}

	tracker.Set(cmd.Process)
	err := cmd.Wait()
	tracker.Clear(cmd.Process)

	if lines != nil {
		lines.Flush()
	}

	res := execution{stderr: tail.String()}
	if err == nil {
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.exitCode = exitErr.ExitCode()
	} else {
		res.exitCode = -1
	}
	res.err = err
	return res
}

// finish превращает итог процесса в Result и переносит временный файл.
func finish(ctx context.Context, start time.Time, name, tmpPath, dstPath string, ex execution) *Result {
	duration := time.Since(start)

	if ctx.Err() != nil {
		_ = os.Remove(tmpPath)
		return &Result{
			Err:      ErrCancelled,
			Stderr:   ex.stderr,
			ExitCode: ex.exitCode,
			Duration: duration,
		}
	}

	if ex.err != nil {
		_ = os.Remove(tmpPath)

		var err error
		if ex.exitCode >= 0 {
			err = fmt.Errorf("%w: %s exit code %d: %s", ErrToolFailed, name, ex.exitCode, stderrText(ex.stderr))
		} else {
			err = fmt.Errorf("%w: %s: %v", ErrToolFailed, name, ex.err)
		}

		return &Result{
			Err:      err,
			Stderr:   ex.stderr,
			ExitCode: ex.exitCode,
			Duration: duration,
		}
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return &Result{
			Err:      fmt.Errorf("не удалось переименовать %s -> %s: %w", tmpPath, dstPath, err),
			Stderr:   ex.stderr,
			Duration: duration,
		}
	}

	return &Result{
		Success:    true,
		OutputPath: dstPath,
		Stderr:     ex.stderr,
		Duration:   duration,
	}
}

// stderrText возвращает вывод утилиты без изменений, только без крайних пробелов.
// Размер уже ограничен tailBuffer.
func stderrText(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "нет вывода"
	}
	return s
}

// tailBuffer хранит только последние limit байт записанного.
type tailBuffer struct {
	buf   []byte
	limit int
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

// Write реализует io.Writer.
func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.buf)
}

/*
Возможные расширения:
- Таймаут на одну конвертацию (по аналогии с batch-режимом)
- Retry при временных ошибках утилит
- Приоритет процесса (nice) для фоновых конвертаций
*/
