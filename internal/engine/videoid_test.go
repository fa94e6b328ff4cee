package engine

import (
	"strings"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"bare id with spaces", "  dQw4w9WgXcQ\n", "dQw4w9WgXcQ", true},
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch url extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s&list=PL1", "dQw4w9WgXcQ", true},
		{"watch url v not first", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"duplicate v keeps first", "https://www.youtube.com/watch?v=AAAAAAAAAAA&v=BBBBBBBBBBB", "AAAAAAAAAAA", true},
		{"v after params then duplicate", "https://www.youtube.com/watch?t=1&v=AAAAAAAAAAA&v=BBBBBBBBBBB", "AAAAAAAAAAA", true},
		{"param ending in v is not v", "https://www.youtube.com/watch?xv=AAAAAAAAAAA&v=BBBBBBBBBBB", "BBBBBBBBBBB", true},
		{"no www", "https://youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short link with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", true},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"v path", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"schemeless", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"evil host", "https://evil.com/watch?v=AAAAAAAAAAA", "", false},
		{"evil host with youtube path", "https://evil.com/youtube.com/watch?v=AAAAAAAAAAA", "", false},
		{"lookalike host", "https://youtube.com.evil.com/watch?v=AAAAAAAAAAA", "", false},
		{"empty", "", "", false},
		{"whitespace", " \t\n ", "", false},
		{"too short", "dQw4w9WgXc", "", false},
		{"too long", "dQw4w9WgXcQQ", "", false},
		{"bad chars", "dQw4w9WgX!Q", "", false},
		{"malformed url", "http://[::1", "", false},
		{"youtube without id", "https://www.youtube.com/feed/trending", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractVideoID(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractVideoID(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExtractVideoID_AnyValidID(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	for i := 0; i < len(alphabet); i++ {
		var b strings.Builder
		for j := 0; j < 11; j++ {
			b.WriteByte(alphabet[(i+j*7)%len(alphabet)])
		}
		id := b.String()

		if got, ok := ExtractVideoID(id); !ok || got != id {
			t.Errorf("bare %q: got (%q, %v)", id, got, ok)
		}
		url := "https://www.youtube.com/watch?v=" + id + "&t=1"
		if got, ok := ExtractVideoID(url); !ok || got != id {
			t.Errorf("url %q: got (%q, %v)", url, got, ok)
		}
	}
}

func TestIsVideoID(t *testing.T) {
	if !IsVideoID("a_b-c1234XY") {
		t.Error("expected valid id")
	}
	if IsVideoID("a b-c1234XY") {
		t.Error("space must be rejected")
	}
}
