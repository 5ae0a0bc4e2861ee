// Package preset содержит каталог именованных пресетов конвертации.
package preset

import (
	"errors"
	"fmt"
	"strings"
)

// Action определяет, что делает пресет.
type Action string

const (
	// ActionConvert - смена формата (format).
	ActionConvert Action = "convert"
	// ActionResize - изменение размеров (width/height).
	ActionResize Action = "resize"
	// ActionCompress - сжатие с уровнем качества (quality).
	ActionCompress Action = "compress"
)

// CustomName - имя пресета-заглушки для пользовательских настроек.
const CustomName = "Custom..."

// ErrPresetNotFound возвращается, если пресета нет в каталоге.
var ErrPresetNotFound = errors.New("пресет не найден")

// ErrInvalidPreset возвращается при некорректных параметрах пресета.
var ErrInvalidPreset = errors.New("некорректный пресет")

// Preset - именованное действие с параметрами.
type Preset struct {
	// Name - имя пресета (уникально внутри категории).
	Name string `yaml:"-" json:"name"`

	// Action - convert, resize или compress.
	Action Action `yaml:"action" json:"action"`

	// Format - целевое расширение без точки (для convert).
	Format string `yaml:"format,omitempty" json:"format,omitempty"`

	// Width - ширина в пикселях (0 = авто).
	Width int `yaml:"width,omitempty" json:"width,omitempty"`

	// Height - высота в пикселях (0 = авто).
	Height int `yaml:"height,omitempty" json:"height,omitempty"`

	// Quality - уровень сжатия (для compress).
	Quality string `yaml:"quality,omitempty" json:"quality,omitempty"`
}

// Validate проверяет параметры пресета.
func (p Preset) Validate() error {
	switch p.Action {
	case ActionConvert, ActionResize, ActionCompress:
	default:
		return fmt.Errorf("%w: неизвестное действие %q", ErrInvalidPreset, p.Action)
	}
	if p.Width < 0 || p.Height < 0 {
		return fmt.Errorf("%w: отрицательный размер %dx%d", ErrInvalidPreset, p.Width, p.Height)
	}
	if strings.ContainsAny(p.Format, `/\`) {
		return fmt.Errorf("%w: недопустимый формат %q", ErrInvalidPreset, p.Format)
	}
	return nil
}

// ChangesFormat сообщает, меняет ли пресет расширение выходного файла.
func (p Preset) ChangesFormat() bool {
	return p.Action == ActionConvert && p.Format != ""
}

// Describe возвращает короткое описание параметров для вывода.
func (p Preset) Describe() string {
	switch p.Action {
	case ActionConvert:
		if p.Format == "" {
			return "convert"
		}
		return "convert -> " + p.Format
	case ActionResize:
		w, h := "auto", "auto"
		if p.Width > 0 {
			w = fmt.Sprintf("%d", p.Width)
		}
		if p.Height > 0 {
			h = fmt.Sprintf("%d", p.Height)
		}
		return fmt.Sprintf("resize %sx%s", w, h)
	case ActionCompress:
		if p.Quality == "" {
			return "compress"
		}
		return "compress /" + p.Quality
	default:
		return string(p.Action)
	}
}

// Custom строит пресет из пользовательских настроек.
// Формат задаёт convert; ненулевые размеры переключают действие на resize;
// уровень качества переключает на compress.
func Custom(format string, width, height int, quality string) Preset {
	p := Preset{
		Name:   CustomName,
		Action: ActionConvert,
		Format: normalizeFormat(format),
	}

	if width > 0 || height > 0 {
		p.Action = ActionResize
		p.Width = width
		p.Height = height
	}

	if quality != "" {
		p.Action = ActionCompress
		p.Quality = quality
	}

	return p
}

// normalizeFormat приводит формат к виду "png" (без точки, lowercase).
func normalizeFormat(f string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
}

// Set - упорядоченный набор пресетов одной категории.
// Порядок совпадает с порядком в документе, первый пресет - по умолчанию.
type Set struct {
	names []string
	items map[string]Preset
}

// newSet создаёт пустой набор.
func newSet() *Set {
	return &Set{items: make(map[string]Preset)}
}

// add добавляет пресет. Повторное имя заменяет значение, сохраняя позицию.
func (s *Set) add(p Preset) {
	if _, ok := s.items[p.Name]; !ok {
		s.names = append(s.names, p.Name)
	}
	s.items[p.Name] = p
}

// Len возвращает количество пресетов.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names возвращает имена пресетов в порядке документа.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Get возвращает пресет по имени.
func (s *Set) Get(name string) (Preset, bool) {
	if s == nil {
		return Preset{}, false
	}
	p, ok := s.items[name]
	return p, ok
}

// Default возвращает первый пресет набора.
func (s *Set) Default() (Preset, bool) {
	if s.Len() == 0 {
		return Preset{}, false
	}
	return s.items[s.names[0]], true
}

// All возвращает пресеты в порядке документа.
func (s *Set) All() []Preset {
	if s == nil {
		return nil
	}
	out := make([]Preset, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.items[name])
	}
	return out
}
