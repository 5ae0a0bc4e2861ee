package cli

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/artemshloyda/fileconverter/internal/config"
	"github.com/artemshloyda/fileconverter/internal/converter"
	"github.com/artemshloyda/fileconverter/internal/filetype"
	"github.com/artemshloyda/fileconverter/internal/toolfinder"
)

// toolPaths - найденные пути к утилитам (пусто = не найдена).
type toolPaths struct {
	Magick      string
	FFmpeg      string
	Ghostscript string
}

// toolsFor возвращает утилиты, нужные для категорий.
func toolsFor(cats map[filetype.Category]int) []toolfinder.Tool {
	var tools []toolfinder.Tool
	if cats[filetype.Image] > 0 {
		tools = append(tools, toolfinder.ImageMagick)
	}
	if cats[filetype.Video] > 0 || cats[filetype.Audio] > 0 {
		tools = append(tools, toolfinder.FFmpeg)
	}
	if cats[filetype.Document] > 0 {
		tools = append(tools, toolfinder.Ghostscript)
	}
	return tools
}

// customPath возвращает путь к утилите из конфигурации.
func customPath(c *config.Config, tool toolfinder.Tool) string {
	return c.ToolPaths()[strings.ToLower(tool.Name)]
}

// findTools ищет утилиты для категорий пакета.
// Ненайденная утилита не ошибка: движок вернёт понятную ошибку по каждому файлу.
func findTools(c *config.Config, cats map[filetype.Category]int, logger zerolog.Logger) (toolPaths, []error) {
	var (
		paths toolPaths
		errs  []error
	)

	for _, tool := range toolsFor(cats) {
		info, err := toolfinder.NewFinder(tool, customPath(c, tool)).Find()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		logger.Debug().Str("tool", tool.Name).Str("path", info.Path).Str("version", info.Version).Msg("утилита найдена")

		switch tool.Name {
		case toolfinder.ImageMagick.Name:
			paths.Magick = info.Path
		case toolfinder.FFmpeg.Name:
			paths.FFmpeg = info.Path
		case toolfinder.Ghostscript.Name:
			paths.Ghostscript = info.Path
		}
	}

	return paths, errs
}

// buildEngines создаёт движки по категориям.
func buildEngines(tools toolPaths, logger zerolog.Logger) map[filetype.Category]converter.Engine {
	return map[filetype.Category]converter.Engine{
		filetype.Image:    converter.NewImageEngine(tools.Magick, logger),
		filetype.Video:    converter.NewMediaEngine(converter.KindVideo, tools.FFmpeg, logger),
		filetype.Audio:    converter.NewMediaEngine(converter.KindAudio, tools.FFmpeg, logger),
		filetype.Document: converter.NewDocumentEngine(tools.Ghostscript, logger),
	}
}
