package converter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/artemshloyda/fileconverter/internal/preset"
)

func TestImageArgs(t *testing.T) {
	tests := []struct {
		name    string
		preset  preset.Preset
		want    []string
		wantErr error
	}{
		{
			name:   "convert",
			preset: preset.Preset{Action: preset.ActionConvert, Format: "png"},
			want:   []string{"in.jpg", "out.png"},
		},
		{
			name:   "resize width",
			preset: preset.Preset{Action: preset.ActionResize, Width: 800},
			want:   []string{"in.jpg", "-resize", "800x", "out.png"},
		},
		{
			name:   "resize height",
			preset: preset.Preset{Action: preset.ActionResize, Height: 600},
			want:   []string{"in.jpg", "-resize", "x600", "out.png"},
		},
		{
			name:   "width wins",
			preset: preset.Preset{Action: preset.ActionResize, Width: 800, Height: 600},
			want:   []string{"in.jpg", "-resize", "800x", "out.png"},
		},
		{
			name:   "resize without size",
			preset: preset.Preset{Action: preset.ActionResize},
			want:   []string{"in.jpg", "out.png"},
		},
		{
			name:    "compress",
			preset:  preset.Preset{Action: preset.ActionCompress},
			wantErr: ErrUnsupportedAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImageArgs("in.jpg", "out.png", tt.preset)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ImageArgs() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ImageArgs() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ImageArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMediaArgs(t *testing.T) {
	base := []string{"-y", "-i", "in.mov", "-hide_banner"}

	tests := []struct {
		name    string
		kind    MediaKind
		preset  preset.Preset
		extra   []string
		wantErr bool
	}{
		{"video convert", KindVideo, preset.Preset{Action: preset.ActionConvert, Format: "mp4"}, nil, false},
		{"audio convert", KindAudio, preset.Preset{Action: preset.ActionConvert, Format: "mp3"}, nil, false},
		{"both sides", KindVideo, preset.Preset{Action: preset.ActionResize, Width: 1280, Height: 720}, []string{"-vf", "scale=1280:720"}, false},
		{"width only", KindVideo, preset.Preset{Action: preset.ActionResize, Width: 1280}, []string{"-vf", "scale=1280:-2"}, false},
		{"height only", KindVideo, preset.Preset{Action: preset.ActionResize, Height: 720}, []string{"-vf", "scale=-2:720"}, false},
		{"no size", KindVideo, preset.Preset{Action: preset.ActionResize}, nil, false},
		{"audio resize", KindAudio, preset.Preset{Action: preset.ActionResize, Width: 10}, nil, false},
		{"compress", KindVideo, preset.Preset{Action: preset.ActionCompress}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MediaArgs(tt.kind, "in.mov", "out.mp4", tt.preset)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedAction) {
					t.Errorf("MediaArgs() error = %v, want ErrUnsupportedAction", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("MediaArgs() error = %v", err)
			}

			want := append(append(append([]string{}, base...), tt.extra...), "out.mp4")
			if !reflect.DeepEqual(got, want) {
				t.Errorf("MediaArgs() = %v, want %v", got, want)
			}
		})
	}
}

func TestDocumentArgs(t *testing.T) {
	got, err := DocumentArgs("in.pdf", "out.pdf", preset.Preset{Action: preset.ActionCompress})
	if err != nil {
		t.Fatalf("DocumentArgs() error = %v", err)
	}
	want := []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/ebook",
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=out.pdf",
		"in.pdf",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DocumentArgs() = %v, want %v", got, want)
	}

	for _, q := range QualityTiers() {
		args, err := DocumentArgs("in.pdf", "out.pdf", preset.Preset{Action: preset.ActionCompress, Quality: q})
		if err != nil {
			t.Errorf("DocumentArgs(%s) error = %v", q, err)
			continue
		}
		if args[2] != "-dPDFSETTINGS=/"+q {
			t.Errorf("DocumentArgs(%s) settings = %s", q, args[2])
		}
	}

	if _, err := DocumentArgs("in.pdf", "out.pdf", preset.Preset{Action: preset.ActionCompress, Quality: "ultra"}); err == nil {
		t.Error("DocumentArgs() expected error for unknown tier")
	}
	if _, err := DocumentArgs("in.pdf", "out.pdf", preset.Preset{Action: preset.ActionConvert, Format: "png"}); !errors.Is(err, ErrUnsupportedAction) {
		t.Errorf("DocumentArgs() error = %v, want ErrUnsupportedAction", err)
	}
}
