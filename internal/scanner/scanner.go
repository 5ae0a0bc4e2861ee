// Package scanner разворачивает входные пути в список файлов для конвертации.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/artemshloyda/fileconverter/internal/filetype"
	"github.com/artemshloyda/fileconverter/internal/outpath"
)

// File представляет файл для обработки.
type File struct {
	// Path - абсолютный путь к файлу.
	Path string

	// Category - категория по расширению.
	Category filetype.Category

	// Size - размер в байтах.
	Size int64
}

// Scanner собирает файлы из списка путей.
type Scanner struct {
	recursive bool
	logger    zerolog.Logger
}

// New создаёт новый Scanner.
func New(recursive bool, logger zerolog.Logger) *Scanner {
	return &Scanner{recursive: recursive, logger: logger}
}

// Collect разворачивает входные пути.
// Явно указанный файл попадает в список всегда, даже с неизвестным расширением:
// раннер сообщит о нём как о неподдерживаемом. Из директорий берутся только
// известные категории, без скрытых файлов и результатов прошлых конвертаций.
func (s *Scanner) Collect(ctx context.Context, inputs []string) ([]File, error) {
	var files []File

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return files, err
		}

		absPath, err := filepath.Abs(input)
		if err != nil {
			absPath = input
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("не удалось прочитать %s: %w", input, err)
		}

		if !info.IsDir() {
			files = append(files, File{
				Path:     absPath,
				Category: filetype.Classify(absPath),
				Size:     info.Size(),
			})
			continue
		}

		found, err := s.walk(ctx, absPath)
		if err != nil {
			return files, err
		}
		files = append(files, found...)
	}

	return files, nil
}

// walk обходит директорию.
func (s *Scanner) walk(ctx context.Context, root string) ([]File, error) {
	var files []File

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		// Проверяем контекст
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			// Логируем ошибку, но продолжаем
			s.logger.Warn().Err(err).Str("path", path).Msg("не удалось прочитать")
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if !s.recursive || isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if isHidden(d.Name()) || outpath.IsConverted(path) {
			return nil
		}

		cat := filetype.Classify(path)
		if cat == filetype.Unknown {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("не удалось получить info")
			return nil
		}

		files = append(files, File{Path: path, Category: cat, Size: info.Size()})
		return nil
	})

	return files, err
}

// isHidden проверяет скрытые файлы и macOS metadata (._*).
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Paths возвращает пути файлов в исходном порядке.
func Paths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

// CountByCategory считает файлы по категориям.
func CountByCategory(files []File) map[filetype.Category]int {
	counts := make(map[filetype.Category]int)
	for _, f := range files {
		counts[f.Category]++
	}
	return counts
}

/*
Возможные расширения:
- Добавить поддержку glob-паттернов для фильтрации
- Добавить поддержку exclude-паттернов
- Добавить поддержку symlinks
*/
