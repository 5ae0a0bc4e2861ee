package converter

import (
	"reflect"
	"testing"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"00:00:00.00", 0, true},
		{"00:01:02.50", 62.5, true},
		{"01:00:00", 3600, true},
		{"10:30:15.25", 37815.25, true},
		{"N/A", 0, false},
		{"1:2:3", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseClock(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseClock(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestProgressParser(t *testing.T) {
	lines := []string{
		"Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'in.mov':",
		"  Duration: N/A, bitrate: N/A",
		"frame=    1 fps=0.0 q=0.0 size=       0kB time=00:00:01.00 bitrate=N/A",
		"  Duration: 00:01:40.00, start: 0.000000, bitrate: 1205 kb/s",
		"  Duration: 00:00:10.00, start: 0.000000, bitrate: 1205 kb/s",
		"frame=  100 fps=25 q=28.0 size=     256kB time=00:00:25.00 bitrate= 83.9kbits/s",
		"frame=  200 fps=25 q=28.0 size=     512kB time=N/A bitrate= 83.9kbits/s",
		"frame=  250 fps=25 q=28.0 size=     640kB time=00:00:50.50 bitrate= 83.9kbits/s",
		"frame=  500 fps=25 q=28.0 size=    1280kB time=00:01:40.00 bitrate= 83.9kbits/s",
		"frame=  600 fps=25 q=28.0 size=    1500kB time=00:02:00.00 bitrate= 83.9kbits/s",
	}

	var p ProgressParser
	var got []int
	for _, l := range lines {
		if pct, ok := p.Feed(l); ok {
			got = append(got, pct)
		}
	}

	// Первая разобранная длительность (100 с) фиксирует общий объём,
	// значение сверх 100% обрезается.
	want := []int{25, 50, 100, 100}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("progress = %v, want %v", got, want)
	}
	if p.Total() != 100 {
		t.Errorf("Total() = %v, want 100", p.Total())
	}
}

func TestProgressParser_NoDuration(t *testing.T) {
	var p ProgressParser
	if _, ok := p.Feed("frame=1 time=00:00:05.00"); ok {
		t.Error("Feed() reported progress without duration")
	}
}

func TestLineWriter(t *testing.T) {
	var got []string
	w := newLineWriter(newTailBuffer(8), func(s string) { got = append(got, s) })

	_, _ = w.Write([]byte("first\rsec"))
	_, _ = w.Write([]byte("ond\r\nthird\nfou"))
	_, _ = w.Write([]byte("rth"))
	w.Flush()

	want := []string{"first", "second", "third", "fourth"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}

	if tail := w.tail.String(); tail != "d\nfourth" {
		t.Errorf("tail = %q, want %q", tail, "d\nfourth")
	}
}

func TestStderrText(t *testing.T) {
	if got := stderrText("\n  a\nb\r\nc\n\n"); got != "a\nb\r\nc" {
		t.Errorf("stderrText() = %q, want %q", got, "a\nb\r\nc")
	}
	if got := stderrText(" \n"); got != "нет вывода" {
		t.Errorf("stderrText(empty) = %q", got)
	}
}
