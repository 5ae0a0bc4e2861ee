// Package outpath вычисляет путь выходного файла без перезаписи существующих.
package outpath

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/artemshloyda/fileconverter/internal/preset"
)

// Suffix добавляется к имени исходного файла.
const Suffix = "_converted"

// convertedStem совпадает с концом имени, которое выдаёт resolve.
var convertedStem = regexp.MustCompile(regexp.QuoteMeta(Suffix) + `(\(\d+\))?$`)

// Resolve возвращает свободный путь для результата конвертации.
// Расширение меняется на формат пресета только для convert с заданным форматом.
// Кандидаты: name_converted.ext, затем name_converted(1).ext, (2) и т.д.
func Resolve(inputPath string, p preset.Preset) string {
	return resolve(inputPath, p, exists)
}

// Resolver - резолвер с резервированием путей.
// Каждый выданный путь считается занятым для последующих вызовов,
// поэтому задачи одного пакета не получат одинаковый выходной файл.
type Resolver struct {
	mu       sync.Mutex
	reserved map[string]struct{}
}

// NewResolver создаёт резолвер с пустым набором резервов.
func NewResolver() *Resolver {
	return &Resolver{reserved: make(map[string]struct{})}
}

// Resolve возвращает свободный путь и резервирует его.
func (r *Resolver) Resolve(inputPath string, p preset.Preset) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := resolve(inputPath, p, func(candidate string) bool {
		if _, ok := r.reserved[candidate]; ok {
			return true
		}
		return exists(candidate)
	})
	r.reserved[path] = struct{}{}
	return path
}

// Release снимает резерв (например, если задача не была запущена).
func (r *Resolver) Release(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reserved, path)
}

// TargetExt возвращает расширение результата (с точкой).
func TargetExt(inputPath string, p preset.Preset) string {
	if p.ChangesFormat() {
		return "." + p.Format
	}
	return filepath.Ext(inputPath)
}

func resolve(inputPath string, p preset.Preset, taken func(string) bool) string {
	dir := filepath.Dir(inputPath)
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	ext := TargetExt(inputPath, p)

	candidate := filepath.Join(dir, stem+Suffix+ext)
	for n := 1; taken(candidate); n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s%s(%d)%s", stem, Suffix, n, ext))
	}
	return candidate
}

// IsConverted сообщает, похож ли файл на результат конвертации.
// Имя должно заканчиваться на _converted или _converted(N), как у resolve.
// Используется сканером и watch-режимом, чтобы не обрабатывать собственные выходы.
func IsConverted(path string) bool {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.TrimSuffix(stem, ".converting")
	return convertedStem.MatchString(stem)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
