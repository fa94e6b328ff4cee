package engine

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanCaption(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"it&#39;s", "it's"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"<font color=\"#fff\">hi</font>  there\n", "hi there"},
		{"  \n ", ""},
	}
	for _, tt := range tests {
		if got := CleanCaption(tt.in); got != tt.want {
			t.Errorf("CleanCaption(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateRunes_UTF8(t *testing.T) {
	s := strings.Repeat("ё", 20)
	got := TruncateRunes(s, 10, "")
	if !utf8.ValidString(got) {
		t.Fatalf("invalid utf-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n > 10 {
		t.Errorf("got %d runes, want <= 10", n)
	}
	if TruncateRunes("short", 10, "...") != "short" {
		t.Error("short strings must pass through unchanged")
	}
}
