package converter

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/artemshloyda/fileconverter/internal/preset"
)

// DefaultQuality - уровень сжатия PDF по умолчанию.
const DefaultQuality = "ebook"

// qualityTiers - допустимые значения -dPDFSETTINGS.
var qualityTiers = map[string]bool{
	"screen":   true,
	"ebook":    true,
	"printer":  true,
	"prepress": true,
	"default":  true,
}

// DocumentEngine сжимает PDF через Ghostscript.
type DocumentEngine struct {
	// tool - путь к gs (gswin64c на Windows).
	tool string

	logger zerolog.Logger
}

// NewDocumentEngine создаёт движок PDF.
func NewDocumentEngine(tool string, logger zerolog.Logger) *DocumentEngine {
	return &DocumentEngine{
		tool:   tool,
		logger: logger.With().Str("engine", "document").Logger(),
	}
}

// Name возвращает имя движка.
func (e *DocumentEngine) Name() string {
	return "ghostscript"
}

// QualityTiers возвращает допустимые уровни сжатия.
func QualityTiers() []string {
	return []string{"screen", "ebook", "printer", "prepress", "default"}
}

// DocumentArgs строит аргументы Ghostscript pdfwrite.
// Поддерживается только compress; пустое качество означает ebook.
func DocumentArgs(input, output string, p preset.Preset) ([]string, error) {
	if p.Action != preset.ActionCompress {
		return nil, fmt.Errorf("%w: %s для PDF", ErrUnsupportedAction, p.Action)
	}

	quality := p.Quality
	if quality == "" {
		quality = DefaultQuality
	}
	if !qualityTiers[quality] {
		return nil, fmt.Errorf("неизвестный уровень сжатия %q (допустимо: screen, ebook, printer, prepress, default)", quality)
	}

	return []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/" + quality,
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=" + output,
		input,
	}, nil
}

// Convert сжимает PDF. Вызов блокирующий, промежуточного прогресса нет.
func (e *DocumentEngine) Convert(ctx context.Context, req Request) *Result {
	start := time.Now()

	// Проверка действия до запуска чего-либо.
	tmp := tempPath(req.OutputPath)
	args, err := DocumentArgs(req.InputPath, tmp, req.Preset)
	if err != nil {
		return failed(start, err)
	}

	if e.tool == "" {
		return failed(start, fmt.Errorf("%w: Ghostscript", ErrToolMissing))
	}
	if err := prepareOutput(req.OutputPath); err != nil {
		return failed(start, err)
	}

	e.logger.Debug().Str("tool", e.tool).Strs("args", args).Msg("запуск")
	ex := execute(ctx, req.Tracker, e.tool, args, nil)
	return finish(ctx, start, e.Name(), tmp, req.OutputPath, ex)
}

/*
Возможные расширения:
- Конвертация PDF -> изображения (-sDEVICE=png16m)
- Склейка нескольких PDF в один
- Линеаризация для веба (-dFastWebView)
*/
