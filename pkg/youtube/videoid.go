package youtube

import (
	"regexp"
	"strings"
)

// VideoID is the 11-character identifier of a YouTube video.
type VideoID string

func (id VideoID) String() string {
	return string(id)
}

// WatchURL is the canonical page URL for id.
func (id VideoID) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + string(id)
}

var (
	markerPattern = regexp.MustCompile(`(?:v=|/shorts/|/embed/|youtu\.be/)([0-9A-Za-z_-]{11})`)
	barePattern   = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
	queryPattern  = regexp.MustCompile(`[?&]v=([0-9A-Za-z_-]{11})`)
)

// ExtractVideoID normalizes watch, shorts, embed and youtu.be links, or a bare
// identifier, to a VideoID. It performs no I/O.
func ExtractVideoID(raw string) (VideoID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if m := markerPattern.FindStringSubmatch(raw); m != nil {
		return VideoID(m[1]), true
	}
	if barePattern.MatchString(raw) {
		return VideoID(raw), true
	}
	if m := queryPattern.FindStringSubmatch(raw); m != nil {
		return VideoID(m[1]), true
	}
	return "", false
}
