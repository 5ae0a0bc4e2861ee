package worker

import "fmt"

// Stats содержит статистику пакета.
type Stats struct {
	// Total - количество задач в пакете.
	Total int

	// Completed - успешно сконвертированные файлы.
	Completed int

	// Failed - задачи с ошибками.
	Failed int

	// Cancelled - задача, прерванная отменой (0 или 1).
	Cancelled int

	// InputBytes - общий размер входных файлов (успешных).
	InputBytes int64

	// OutputBytes - общий размер выходных файлов.
	OutputBytes int64
}

// Pending возвращает количество задач, до которых не дошла очередь.
func (s Stats) Pending() int {
	return s.Total - s.Completed - s.Failed - s.Cancelled
}

// SavedBytes возвращает количество сэкономленных байт.
func (s Stats) SavedBytes() int64 {
	return s.InputBytes - s.OutputBytes
}

// SavedPercent возвращает процент экономии.
func (s Stats) SavedPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.SavedBytes()) / float64(s.InputBytes) * 100
}

// Summary форматирует итог пакета одной строкой.
func (s Stats) Summary() string {
	return fmt.Sprintf("всего %d, успешно %d, ошибок %d, отменено %d, не начато %d",
		s.Total, s.Completed, s.Failed, s.Cancelled, s.Pending())
}

// FormatBytes форматирует байты в человекочитаемый формат.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
