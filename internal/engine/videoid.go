package engine

import (
	"net/url"
	"regexp"
	"strings"
)

// allowedVideoHosts are the only hosts accepted when the input carries one.
var allowedVideoHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
}

var (
	videoURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`youtube\.com/watch\?(?:[^#&]*&)*?v=([a-zA-Z0-9_-]{11})`), // first v= wins
		regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/v/([a-zA-Z0-9_-]{11})`),
	}
	videoIDRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// IsVideoID reports whether s is a well-formed 11-char video ID.
func IsVideoID(s string) bool {
	return videoIDRE.MatchString(s)
}

// ExtractVideoID resolves a URL or bare ID into a canonical video ID.
// Inputs naming a host outside allowedVideoHosts are rejected before any pattern matching.
func ExtractVideoID(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	// Unparsable input is not fatal here; it falls through to raw-token matching.
	if u, err := url.Parse(s); err == nil && u.Host != "" && !allowedVideoHosts[u.Host] {
		return "", false
	}

	for _, re := range videoURLPatterns {
		if m := re.FindStringSubmatch(s); len(m) >= 2 && IsVideoID(m[1]) {
			return m[1], true
		}
	}

	if IsVideoID(s) {
		return s, true
	}
	return "", false
}
