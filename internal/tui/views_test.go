package tui

import (
	"testing"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

func TestTruncateName(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "fits untouched", in: "Tetris.zip", width: 20, want: "Tetris.zip"},
		{name: "ascii cut with ellipsis", in: "Super Mario Land (World).zip", width: 10, want: "Super Mar…"},
		{name: "japanese cut on rune boundary", in: "ゼルダの伝説.zip", width: 6, want: "ゼル…"},
		{name: "exact width untouched", in: "abcde", width: 5, want: "abcde"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateName(tt.in, tt.width)
			if got != tt.want {
				t.Errorf("truncateName(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncateName produced invalid UTF-8: %q", got)
			}
			if w := runewidth.StringWidth(got); w > tt.width {
				t.Errorf("truncated width = %d, want <= %d", w, tt.width)
			}
		})
	}
}

func TestMarqueeWindow(t *testing.T) {
	// Double-width glyphs: each rune occupies two cells, so a 6-cell
	// window holds three of them.
	name := "ポケモンスタジアム.gb"

	for phase := 0; phase < 15; phase++ {
		got := marqueeWindow(name, phase, 6)
		if !utf8.ValidString(got) {
			t.Fatalf("phase %d produced invalid UTF-8: %q", phase, got)
		}
		if w := runewidth.StringWidth(got); w > 6 {
			t.Errorf("phase %d width = %d, want <= 6", phase, w)
		}
	}

	if got := marqueeWindow(name, 0, 6); got != "ポケモ" {
		t.Errorf("phase 0 window = %q, want %q", got, "ポケモ")
	}
	if got := marqueeWindow(name, 2, 6); got != "モンス" {
		t.Errorf("phase 2 window = %q, want %q", got, "モンス")
	}

	// ASCII scrolls one cell per phase.
	if got := marqueeWindow("abcdefgh", 3, 4); got != "defg" {
		t.Errorf("ascii window = %q, want %q", got, "defg")
	}
}
