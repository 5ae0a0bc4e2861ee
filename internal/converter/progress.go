package converter

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
)

var (
	// durationRe находит "Duration: 00:01:02.50" в заголовке FFmpeg.
	durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

	// timeRe находит "time=00:00:31.25" в строке статуса FFmpeg.
	timeRe = regexp.MustCompile(`time=\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

	clockRe = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2}(?:\.\d+)?)$`)
)

// ParseClock разбирает "HH:MM:SS.ss" в секунды.
func ParseClock(s string) (float64, bool) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	return clockSeconds(m[1], m[2], m[3])
}

func clockSeconds(h, m, s string) (float64, bool) {
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return float64(hours*3600+minutes*60) + seconds, true
}

// ProgressParser извлекает процент выполнения из лога FFmpeg.
// Первая разобранная длительность задаёт общий объём, каждая отметка
// time= даёт процент. Строки без маркеров игнорируются.
type ProgressParser struct {
	total float64
}

// Total возвращает найденную длительность в секундах (0, если ещё нет).
func (p *ProgressParser) Total() float64 {
	return p.total
}

// Feed разбирает одну строку лога.
// Возвращает процент и true, если строка содержала отметку времени
// и длительность уже известна.
func (p *ProgressParser) Feed(line string) (int, bool) {
	if p.total <= 0 {
		if m := durationRe.FindStringSubmatch(line); m != nil {
			if d, ok := clockSeconds(m[1], m[2], m[3]); ok && d > 0 {
				p.total = d
			}
		}
		return 0, false
	}

	m := timeRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	cur, ok := clockSeconds(m[1], m[2], m[3])
	if !ok {
		return 0, false
	}

	pct := int(cur / p.total * 100)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

// maxPendingLine - предел незавершённой строки в lineWriter.
const maxPendingLine = 64 * 1024

// lineWriter режет поток на строки по \n и \r.
// FFmpeg обновляет строку статуса через \r, поэтому оба символа - разделители.
type lineWriter struct {
	tail    *tailBuffer
	onLine  func(string)
	pending []byte
}

func newLineWriter(tail *tailBuffer, onLine func(string)) *lineWriter {
	return &lineWriter{tail: tail, onLine: onLine}
}

// Write реализует io.Writer.
func (w *lineWriter) Write(p []byte) (int, error) {
	_, _ = w.tail.Write(p)
	w.pending = append(w.pending, p...)

	for {
		i := bytes.IndexAny(w.pending, "\r\n")
		if i < 0 {
			break
		}
		if i > 0 {
			w.onLine(string(w.pending[:i]))
		}
		w.pending = w.pending[i+1:]
	}

	if over := len(w.pending) - maxPendingLine; over > 0 {
		w.pending = w.pending[over:]
	}
	return len(p), nil
}

// Flush отдаёт последнюю строку без перевода строки.
func (w *lineWriter) Flush() {
	if len(w.pending) > 0 {
		w.onLine(string(w.pending))
		w.pending = nil
	}
}
