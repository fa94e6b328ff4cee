package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go_ytsummary/internal/engine"
)

// YouTube transcript fetching.
// Primary:  watch page ytInitialPlayerResponse → caption track → timedtext XML
// Fallback: ANDROID Innertube /player → captionTracks → timedtext XML

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page scripts.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects the best usable caption track for the given language preferences.
// Tracks that require a PoToken only work in a browser and are skipped.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	// 1. Manual track in preferred language
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	// 2. Auto-generated track in preferred language
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	// 3. Any English track
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// extractJSON returns the first balanced JSON object at the start of data.
func extractJSON(data []byte) []byte {
	start := -1
	depth := 0
	inString, escaped := false, false
	for i, c := range data {
		if start < 0 {
			if c == '{' {
				start, depth = i, 1
			} else if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				return nil
			}
			continue
		}
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return data[start : i+1]
			}
		}
	}
	return nil
}

// parseTimedText decodes timedtext XML into caption segments, skipping empty cues.
func parseTimedText(body []byte) ([]engine.TranscriptSegment, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}
	segs := make([]engine.TranscriptSegment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := engine.CleanCaption(line.Text)
		if text == "" {
			continue
		}
		segs = append(segs, engine.TranscriptSegment{Text: text, Start: line.Start, Duration: line.Dur})
	}
	return segs, nil
}

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL.
func fetchTimedText(ctx context.Context, baseURL string) ([]engine.TranscriptSegment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", engine.RandomUserAgent())

	resp, err := engine.Cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch timedtext: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, err
	}
	segs, err := parseTimedText(body)
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return nil, errors.New("timedtext has no cues")
	}
	return segs, nil
}

// findPlayerResponse scans watch page <script> tags for ytInitialPlayerResponse.
func findPlayerResponse(page io.Reader) (*innertubePlayerResp, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}

	var jsonData []byte
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, ytInitialPlayerResponseMarker)
		if idx < 0 {
			return true
		}
		jsonData = extractJSON([]byte(text[idx+len(ytInitialPlayerResponseMarker):]))
		return jsonData == nil
	})
	if jsonData == nil {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(jsonData, &playerResp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return &playerResp, nil
}

// tracksFrom returns the caption tracks of a player response, or why there are none.
func tracksFrom(playerResp *innertubePlayerResp) ([]captionTrack, error) {
	if playerResp.Captions == nil {
		if playerResp.PlayabilityStatus != nil && playerResp.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", playerResp.PlayabilityStatus.Reason)
		}
		return nil, errors.New("no captions in player response")
	}
	tracks := playerResp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, errors.New("no caption tracks")
	}
	return tracks, nil
}

// resolveTrackURL makes a caption base URL absolute against the configured YouTube host.
func resolveTrackURL(baseURL string) (string, error) {
	ref, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("caption url: %w", err)
	}
	base, err := url.Parse(engine.Cfg.YouTubeBaseURL)
	if err != nil {
		return "", fmt.Errorf("youtube base url: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// fetchFromPlayerResponse picks a track from playerResp and downloads its cues.
func fetchFromPlayerResponse(ctx context.Context, playerResp *innertubePlayerResp, langs []string) ([]engine.TranscriptSegment, error) {
	tracks, err := tracksFrom(playerResp)
	if err != nil {
		return nil, err
	}
	track, ok := pickBestTrack(tracks, langs)
	if !ok {
		return nil, errors.New("all caption tracks require PoToken")
	}
	trackURL, err := resolveTrackURL(track.BaseURL)
	if err != nil {
		return nil, err
	}
	return fetchTimedText(ctx, trackURL)
}

// fetchTranscriptViaPageScrape scrapes the watch page HTML and extracts the
// caption track XML URL from ytInitialPlayerResponse. Works from any IP.
func fetchTranscriptViaPageScrape(ctx context.Context, videoID string, langs []string) ([]engine.TranscriptSegment, error) {
	watchURL := engine.Cfg.YouTubeBaseURL + "/watch?v=" + url.QueryEscape(videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", engine.RandomUserAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := engine.Cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page: HTTP %d", resp.StatusCode)
	}

	playerResp, err := findPlayerResponse(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return nil, err
	}
	return fetchFromPlayerResponse(ctx, playerResp, langs)
}

// fetchTranscriptViaPlayer uses the ANDROID Innertube /player endpoint.
// Works from non-blocked (residential/cloud) IP addresses.
func fetchTranscriptViaPlayer(ctx context.Context, videoID string, langs []string) ([]engine.TranscriptSegment, error) {
	playerResp, err := postInnerTubeAndroid(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return fetchFromPlayerResponse(ctx, playerResp, langs)
}

// FetchYouTubeTranscript fetches the ordered caption segments of a YouTube video.
// Primary:  scrape watch page ytInitialPlayerResponse → caption XML
// Fallback: ANDROID Innertube /player → captionTracks
func FetchYouTubeTranscript(ctx context.Context, videoID string, langs []string) ([]engine.TranscriptSegment, error) {
	segs, err := fetchTranscriptViaPageScrape(ctx, videoID, langs)
	if err == nil {
		return segs, nil
	}
	slog.Debug("youtube: page scrape failed, trying player",
		slog.String("id", videoID), slog.Any("err", err))

	segs, perr := fetchTranscriptViaPlayer(ctx, videoID, langs)
	if perr != nil {
		return nil, fmt.Errorf("page scrape: %v; player: %w", err, perr)
	}
	return segs, nil
}

// YouTubeTranscripts is the engine.TranscriptSource backed by YouTube captions,
// using the preferred languages from engine.Cfg.
var YouTubeTranscripts engine.TranscriptSource = engine.TranscriptSourceFunc(
	func(ctx context.Context, videoID string) ([]engine.TranscriptSegment, error) {
		return FetchYouTubeTranscript(ctx, videoID, engine.Cfg.TranscriptLangs)
	},
)
