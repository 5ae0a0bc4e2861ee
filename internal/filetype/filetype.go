// Package filetype определяет категорию файла по расширению.
package filetype

import (
	"path/filepath"
	"strings"
)

// Category - грубый тип файла, от которого зависят движок и набор пресетов.
type Category string

const (
	// Image - растровые изображения (ImageMagick).
	Image Category = "image"
	// Video - видео (FFmpeg).
	Video Category = "video"
	// Audio - аудио (FFmpeg).
	Audio Category = "audio"
	// Document - PDF документы (Ghostscript).
	Document Category = "document"
	// Unknown - неподдерживаемое расширение.
	Unknown Category = "unknown"
)

// extensions - таблица расширение -> категория (lowercase, с точкой).
var extensions = map[string]Category{
	".jpg":  Image,
	".jpeg": Image,
	".png":  Image,
	".webp": Image,
	".bmp":  Image,
	".tiff": Image,
	// Сверх базового набора: ImageMagick читает их без отдельных делегатов,
	// кроме .heic (нужен libheif).
	".tif":  Image,
	".gif":  Image,
	".heic": Image,

	".mp4":  Video,
	".avi":  Video,
	".mov":  Video,
	".mkv":  Video,
	".webm": Video,

	".mp3":  Audio,
	".wav":  Audio,
	".flac": Audio,
	".ogg":  Audio,
	".aac":  Audio,
	".m4a":  Audio,
	".wma":  Audio,

	".pdf": Document,
}

// Classify возвращает категорию файла по его расширению.
// Регистр не учитывается, неизвестные расширения дают Unknown.
func Classify(path string) Category {
	ext := strings.ToLower(filepath.Ext(path))
	if c, ok := extensions[ext]; ok {
		return c
	}
	return Unknown
}

// ParseCategory разбирает имя категории из документа пресетов.
// Принимает как новые имена (image, document), так и старые ключи (IMAGE, PDF).
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image":
		return Image
	case "video":
		return Video
	case "audio":
		return Audio
	case "document", "pdf":
		return Document
	default:
		return Unknown
	}
}

// Known возвращает все поддерживаемые категории в фиксированном порядке.
func Known() []Category {
	return []Category{Image, Video, Audio, Document}
}

// Supported сообщает, есть ли у расширения категория.
func Supported(path string) bool {
	return Classify(path) != Unknown
}

// String возвращает имя категории.
func (c Category) String() string {
	return string(c)
}
