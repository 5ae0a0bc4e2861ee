// Package mediainfo извлекает сведения о медиафайле через ffprobe и EXIF.
package mediainfo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/artemshloyda/fileconverter/internal/filetype"
)

// ErrNoProbe возвращается, если ffprobe не задан, а файл не изображение.
var ErrNoProbe = errors.New("ffprobe не найден")

// probeTimeout - максимальное время работы ffprobe.
const probeTimeout = 30 * time.Second

// Info - упрощённое описание файла.
type Info struct {
	// File - имя файла.
	File string `json:"file"`

	// Path - путь к файлу.
	Path string `json:"path"`

	// SizeBytes - размер в байтах.
	SizeBytes int64 `json:"size_bytes"`

	// SizeStr - размер в читаемом виде.
	SizeStr string `json:"size_str"`

	// Category - категория файла.
	Category filetype.Category `json:"category"`

	// Format - контейнер (MP4, MKV...), N/A без ffprobe.
	Format string `json:"format"`

	// Duration - длительность в секундах как её отдал ffprobe, N/A если нет.
	Duration string `json:"duration"`

	// Streams - потоки файла.
	Streams []Stream `json:"streams,omitempty"`

	// EXIF - метаданные камеры (только изображения).
	EXIF *Exif `json:"exif,omitempty"`
}

// Stream - описание одного потока.
type Stream struct {
	Index int    `json:"index"`
	Type  string `json:"type"`
	Codec string `json:"codec"`

	// Видео
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	FPS    string `json:"fps,omitempty"`

	// Аудио
	Channels   int    `json:"channels,omitempty"`
	SampleRate string `json:"sample_rate,omitempty"`
}

// Exif - выбранные EXIF теги.
type Exif struct {
	Make        string    `json:"make,omitempty"`
	Model       string    `json:"model,omitempty"`
	Taken       time.Time `json:"taken,omitempty"`
	Orientation int       `json:"orientation,omitempty"`
	Lat         float64   `json:"lat,omitempty"`
	Long        float64   `json:"long,omitempty"`
}

// Prober запускает ffprobe.
type Prober struct {
	ffprobe string
	logger  zerolog.Logger
}

// NewProber создаёт Prober. Пустой путь отключает ffprobe.
func NewProber(ffprobe string, logger zerolog.Logger) *Prober {
	return &Prober{ffprobe: ffprobe, logger: logger}
}

// Probe собирает сведения о файле.
// Для изображений ошибка ffprobe не фатальна, если удалось прочитать EXIF.
func (p *Prober) Probe(ctx context.Context, path string) (*Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать %s: %w", path, err)
	}

	cat := filetype.Classify(path)

	var info *Info
	var probeErr error
	if p.ffprobe == "" {
		probeErr = ErrNoProbe
	} else {
		var out []byte
		out, probeErr = p.run(ctx, path)
		if probeErr == nil {
			info, probeErr = Parse(out, path, st.Size())
		}
	}

	if probeErr != nil {
		if cat != filetype.Image {
			return nil, probeErr
		}
		p.logger.Debug().Err(probeErr).Str("path", path).Msg("ffprobe недоступен, только EXIF")
		info = newInfo(path, st.Size())
	}
	info.Category = cat

	if cat == filetype.Image {
		x, err := ReadExif(path)
		if err != nil {
			p.logger.Debug().Err(err).Str("path", path).Msg("EXIF не прочитан")
		} else {
			info.EXIF = x
		}
	}

	return info, nil
}

func (p *Prober) run(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe завершился с ошибкой: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// probeOutput - интересующая часть JSON ffprobe.
type probeOutput struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		Index      int    `json:"index"`
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		Channels   int    `json:"channels"`
		SampleRate string `json:"sample_rate"`
	} `json:"streams"`
}

// Parse разбирает вывод ffprobe -print_format json.
func Parse(data []byte, path string, size int64) (*Info, error) {
	var po probeOutput
	if err := json.Unmarshal(data, &po); err != nil {
		return nil, fmt.Errorf("не удалось разобрать вывод ffprobe: %w", err)
	}

	info := newInfo(path, size)
	info.Format = CleanFormat(po.Format.FormatName, path)
	if po.Format.Duration != "" {
		info.Duration = po.Format.Duration
	}

	for _, s := range po.Streams {
		st := Stream{Index: s.Index, Type: s.CodecType, Codec: s.CodecName}
		switch s.CodecType {
		case "video":
			st.Width = s.Width
			st.Height = s.Height
			st.FPS = s.RFrameRate
		case "audio":
			st.Channels = s.Channels
			st.SampleRate = s.SampleRate
		}
		info.Streams = append(info.Streams, st)
	}

	return info, nil
}

func newInfo(path string, size int64) *Info {
	return &Info{
		File:      filepath.Base(path),
		Path:      path,
		SizeBytes: size,
		SizeStr:   HumanSize(size),
		Category:  filetype.Classify(path),
		Format:    "N/A",
		Duration:  "N/A",
	}
}

// CleanFormat выбирает понятное имя контейнера.
// Для списка вида "mov,mp4,m4a" берётся совпадающее с расширением, иначе первое.
func CleanFormat(formatName, path string) string {
	if formatName == "" {
		return "UNKNOWN"
	}
	if !strings.Contains(formatName, ",") {
		return strings.ToUpper(formatName)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	candidates := strings.Split(formatName, ",")
	for _, c := range candidates {
		if c == ext {
			return strings.ToUpper(ext)
		}
	}
	return strings.ToUpper(candidates[0])
}

// HumanSize форматирует размер с двумя знаками: "1.50 MB".
func HumanSize(size int64) string {
	v := float64(size)
	units := []string{"B", "KB", "MB", "GB"}
	for i, unit := range units {
		if v < 1024 || i == len(units)-1 {
			return fmt.Sprintf("%.2f %s", v, unit)
		}
		v /= 1024
	}
	return ""
}

// ReadExif читает EXIF теги изображения.
func ReadExif(path string) (*Exif, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть файл: %w", err)
	}
	defer func() { _ = f.Close() }()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать EXIF: %w", err)
	}

	out := &Exif{}
	if tag, err := x.Get(exif.Make); err == nil {
		out.Make, _ = tag.StringVal()
	}
	if tag, err := x.Get(exif.Model); err == nil {
		out.Model, _ = tag.StringVal()
	}
	if tag, err := x.Get(exif.Orientation); err == nil {
		out.Orientation, _ = tag.Int(0)
	}
	if dt, err := x.DateTime(); err == nil {
		out.Taken = dt
	}
	if lat, long, err := x.LatLong(); err == nil {
		out.Lat, out.Long = lat, long
	}

	return out, nil
}

// String возвращает многострочное описание для CLI.
func (i *Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Файл:         %s\n", i.File)
	fmt.Fprintf(&b, "Категория:    %s\n", i.Category)
	fmt.Fprintf(&b, "Размер:       %s\n", i.SizeStr)
	fmt.Fprintf(&b, "Формат:       %s\n", i.Format)
	fmt.Fprintf(&b, "Длительность: %s\n", i.Duration)

	for _, s := range i.Streams {
		switch s.Type {
		case "video":
			fmt.Fprintf(&b, "  #%d video %s %dx%d @ %s\n", s.Index, s.Codec, s.Width, s.Height, s.FPS)
		case "audio":
			fmt.Fprintf(&b, "  #%d audio %s %d ch, %s Hz\n", s.Index, s.Codec, s.Channels, s.SampleRate)
		default:
			fmt.Fprintf(&b, "  #%d %s %s\n", s.Index, s.Type, s.Codec)
		}
	}

	if x := i.EXIF; x != nil {
		if x.Make != "" || x.Model != "" {
			fmt.Fprintf(&b, "Камера:       %s\n", strings.TrimSpace(x.Make+" "+x.Model))
		}
		if !x.Taken.IsZero() {
			fmt.Fprintf(&b, "Снято:        %s\n", x.Taken.Format("2006-01-02 15:04:05"))
		}
		if x.Lat != 0 || x.Long != 0 {
			fmt.Fprintf(&b, "GPS:          %.6f, %.6f\n", x.Lat, x.Long)
		}
	}

	return b.String()
}

/*
Возможные расширения:
- Битрейт потоков и общий
- Разрешение изображений без ffprobe (image.DecodeConfig)
*/
