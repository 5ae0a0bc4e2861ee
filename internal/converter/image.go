package converter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/artemshloyda/fileconverter/internal/preset"
)

// ImageEngine конвертирует изображения через ImageMagick (magick или convert).
type ImageEngine struct {
	// tool - путь к бинарнику ImageMagick.
	tool string

	logger zerolog.Logger
}

// NewImageEngine создаёт движок изображений.
func NewImageEngine(tool string, logger zerolog.Logger) *ImageEngine {
	return &ImageEngine{
		tool:   tool,
		logger: logger.With().Str("engine", "image").Logger(),
	}
}

// Name возвращает имя движка.
func (e *ImageEngine) Name() string {
	return "imagemagick"
}

// ImageArgs строит аргументы ImageMagick: <input> [-resize Wx | xH] <output>.
// При заданных ширине и высоте используется ширина.
func ImageArgs(input, output string, p preset.Preset) ([]string, error) {
	switch p.Action {
	case preset.ActionConvert:
		return []string{input, output}, nil
	case preset.ActionResize:
		args := []string{input}
		switch {
		case p.Width > 0:
			args = append(args, "-resize", strconv.Itoa(p.Width)+"x")
		case p.Height > 0:
			args = append(args, "-resize", "x"+strconv.Itoa(p.Height))
		}
		return append(args, output), nil
	default:
		return nil, fmt.Errorf("%w: %s для изображений", ErrUnsupportedAction, p.Action)
	}
}

// Convert выполняет конвертацию изображения. Вызов блокирующий,
// промежуточного прогресса нет.
func (e *ImageEngine) Convert(ctx context.Context, req Request) *Result {
	start := time.Now()

	if e.tool == "" {
		return failed(start, fmt.Errorf("%w: ImageMagick", ErrToolMissing))
	}
	if err := prepareOutput(req.OutputPath); err != nil {
		return failed(start, err)
	}

	// Атомарная запись: пишем во временный файл, затем переименовываем.
	tmp := tempPath(req.OutputPath)
	args, err := ImageArgs(req.InputPath, tmp, req.Preset)
	if err != nil {
		return failed(start, err)
	}

	e.logger.Debug().Str("tool", e.tool).Strs("args", args).Msg("запуск")
	ex := execute(ctx, req.Tracker, e.tool, args, nil)
	return finish(ctx, start, e.Name(), tmp, req.OutputPath, ex)
}
