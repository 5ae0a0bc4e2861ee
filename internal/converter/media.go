package converter

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/artemshloyda/fileconverter/internal/preset"
)

// MediaKind различает видео и аудио для FFmpeg.
type MediaKind string

const (
	// KindVideo - видео: convert и resize.
	KindVideo MediaKind = "video"
	// KindAudio - аудио: только convert.
	KindAudio MediaKind = "audio"
)

// MediaEngine конвертирует видео и аудио через FFmpeg с отслеживанием прогресса.
type MediaEngine struct {
	kind MediaKind

	// tool - путь к ffmpeg.
	tool string

	logger zerolog.Logger
}

// NewMediaEngine создаёт движок FFmpeg для указанного типа.
func NewMediaEngine(kind MediaKind, tool string, logger zerolog.Logger) *MediaEngine {
	return &MediaEngine{
		kind:   kind,
		tool:   tool,
		logger: logger.With().Str("engine", string(kind)).Logger(),
	}
}

// Name возвращает имя движка.
func (e *MediaEngine) Name() string {
	return "ffmpeg"
}

// Kind возвращает тип медиа.
func (e *MediaEngine) Kind() MediaKind {
	return e.kind
}

// MediaArgs строит аргументы FFmpeg:
// -y -i <input> -hide_banner [-vf scale=...] <output>.
// Масштабирование только для видео; -2 сохраняет пропорции с чётным размером.
// Resize для аудио сводится к перекодированию без фильтра.
func MediaArgs(kind MediaKind, input, output string, p preset.Preset) ([]string, error) {
	args := []string{"-y", "-i", input, "-hide_banner"}

	switch p.Action {
	case preset.ActionConvert:
	case preset.ActionResize:
		if kind != KindVideo {
			break
		}
		switch {
		case p.Width > 0 && p.Height > 0:
			args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", p.Width, p.Height))
		case p.Width > 0:
			args = append(args, "-vf", fmt.Sprintf("scale=%d:-2", p.Width))
		case p.Height > 0:
			args = append(args, "-vf", fmt.Sprintf("scale=-2:%d", p.Height))
		}
	default:
		return nil, fmt.Errorf("%w: %s для %s", ErrUnsupportedAction, p.Action, kind)
	}

	return append(args, output), nil
}

// Convert запускает FFmpeg и отправляет проценты в req.Progress по мере чтения stderr.
func (e *MediaEngine) Convert(ctx context.Context, req Request) *Result {
	start := time.Now()

	if e.tool == "" {
		return failed(start, fmt.Errorf("%w: FFmpeg", ErrToolMissing))
	}
	if err := prepareOutput(req.OutputPath); err != nil {
		return failed(start, err)
	}

	tmp := tempPath(req.OutputPath)
	args, err := MediaArgs(e.kind, req.InputPath, tmp, req.Preset)
	if err != nil {
		return failed(start, err)
	}

	var parser ProgressParser
	last := -1
	onLine := func(line string) {
		pct, ok := parser.Feed(line)
		if !ok || pct == last || req.Progress == nil {
			return
		}
		last = pct
		select {
		case req.Progress <- pct:
		case <-ctx.Done():
		}
	}

	e.logger.Debug().Str("tool", e.tool).Strs("args", args).Msg("запуск")
	ex := execute(ctx, req.Tracker, e.tool, args, onLine)

	if parser.Total() == 0 {
		e.logger.Debug().Str("input", req.InputPath).Msg("длительность не найдена, прогресс недоступен")
	}

	return finish(ctx, start, e.Name(), tmp, req.OutputPath, ex)
}
