package engine

import (
	"net/url"
	"regexp"
	"strings"
)

// videoIDRE matches a canonical 11-char video ID.
var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ytPathPrefixes are youtube.com paths whose first segment after the prefix is the ID.
var ytPathPrefixes = []string{"/embed/", "/shorts/", "/live/", "/v/"}

// ExtractVideoID isolates the video ID from a YouTube URL or a bare ID.
//
// Accepted forms: youtube.com/watch?v=ID (www., m., music. hosts, scheme
// optional, v anywhere in the query), youtu.be/ID, youtube.com/{embed,shorts,live,v}/ID
// and a bare 11-character ID.
func ExtractVideoID(raw string) (VideoID, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &InvalidURLError{Input: raw, Reason: "empty input"}
	}

	// No URL punctuation: treat as a bare ID.
	if !strings.ContainsAny(s, "/.?=&:") {
		if !videoIDRE.MatchString(s) {
			return "", &InvalidURLError{Input: raw, Reason: "bare video id must be 11 characters of [A-Za-z0-9_-]"}
		}
		return VideoID(s), nil
	}

	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", &InvalidURLError{Input: raw, Reason: "malformed url"}
	}

	var candidate string
	switch canonicalHost(u.Hostname()) {
	case "youtu.be":
		candidate = firstSegment(u.Path)
	case "youtube.com", "youtube-nocookie.com":
		if strings.TrimSuffix(u.Path, "/") == "/watch" {
			candidate = u.Query().Get("v")
			break
		}
		for _, prefix := range ytPathPrefixes {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				candidate = firstSegment(rest)
				break
			}
		}
	default:
		return "", &InvalidURLError{Input: raw, Reason: "not a youtube host"}
	}

	if candidate == "" {
		return "", &InvalidURLError{Input: raw, Reason: "no video id in url"}
	}
	if !videoIDRE.MatchString(candidate) {
		return "", &InvalidURLError{Input: raw, Reason: "malformed video id"}
	}
	return VideoID(candidate), nil
}

func canonicalHost(host string) string {
	host = strings.ToLower(host)
	for _, p := range []string{"www.", "m.", "music."} {
		host = strings.TrimPrefix(host, p)
	}
	return host
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}
