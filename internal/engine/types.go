package engine

import (
	"fmt"
	"strings"
)

// --- Core domain types ---

// VideoID keys a transcript and its summaries: the canonical 11-character
// YouTube video identifier, or an AudioSourceID for transcribed audio files.
type VideoID string

func (id VideoID) String() string { return string(id) }

// IsAudio reports whether id was generated for an audio file.
func (id VideoID) IsAudio() bool { return strings.HasPrefix(string(id), audioIDPrefix) }

// WatchURL returns the canonical watch page URL for the video, or "" for audio.
func (id VideoID) WatchURL() string {
	if id.IsAudio() {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + string(id)
}

// SourceType tells where a transcript came from.
type SourceType string

const (
	SourceYouTube SourceType = "youtube"
	SourceAudio   SourceType = "audio"
)

// ParseSourceType accepts youtube, audio, or all/"" (no filter, returned as "").
func ParseSourceType(raw string) (SourceType, error) {
	switch st := SourceType(strings.ToLower(strings.TrimSpace(raw))); st {
	case "", "all":
		return "", nil
	case SourceYouTube, SourceAudio:
		return st, nil
	default:
		return "", &InvalidArgumentError{
			Name:   "source_type",
			Reason: fmt.Sprintf("unknown source type %q (valid: all, youtube, audio)", raw),
		}
	}
}

// Kind is a summary output style.
type Kind string

const (
	KindConcise   Kind = "concise"
	KindDetailed  Kind = "detailed"
	KindKeyPoints Kind = "key_points"

	// KindTitle is stored alongside summaries but never produced by Summarize.
	KindTitle Kind = "title"
)

// AllKinds is the fixed order in which summary kinds are attempted.
var AllKinds = []Kind{KindConcise, KindDetailed, KindKeyPoints}

// Valid reports whether k is one of the three summary kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindConcise, KindDetailed, KindKeyPoints:
		return true
	}
	return false
}

// ParseKinds normalises a caller-supplied kind list.
// Empty input selects all kinds. Output follows AllKinds order without duplicates.
func ParseKinds(raw []string) ([]Kind, error) {
	if len(raw) == 0 {
		return AllKinds, nil
	}
	want := make(map[Kind]bool, len(raw))
	for _, r := range raw {
		k := Kind(strings.ToLower(strings.TrimSpace(r)))
		if k == "" {
			continue
		}
		if !k.Valid() {
			return nil, &InvalidArgumentError{
				Name:   "kinds",
				Reason: fmt.Sprintf("unknown summary kind %q (valid: concise, detailed, key_points)", r),
			}
		}
		want[k] = true
	}
	if len(want) == 0 {
		return AllKinds, nil
	}
	kinds := make([]Kind, 0, len(want))
	for _, k := range AllKinds {
		if want[k] {
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

// Segment is one timed caption line. Timing is in seconds.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// --- Tool input types ---

type SummarizeInput struct {
	URL   string   `json:"url" jsonschema:"YouTube video URL (watch, youtu.be, shorts, embed) or bare 11-character video ID"`
	Kinds []string `json:"kinds,omitempty" jsonschema:"Summary kinds to produce: concise, detailed, key_points (default: all three)"`
}

type TranscriptInput struct {
	URL       string `json:"url" jsonschema:"YouTube video URL or bare 11-character video ID"`
	MaxLength int    `json:"max_length,omitempty" jsonschema:"Max transcript characters to return (default: no limit)"`
}

type HistoryInput struct {
	Limit      int    `json:"limit,omitempty" jsonschema:"Max videos to list (default: 10, max: 100)"`
	SourceType string `json:"source_type,omitempty" jsonschema:"Filter by source: all, youtube, audio (default: all)"`
}

type TitleInput struct {
	URL string `json:"url" jsonschema:"YouTube video URL or bare video ID of an already processed video"`
}

// --- Tool output types ---

type SummarizeOutput struct {
	VideoID   string            `json:"video_id"`
	URL       string            `json:"url"`
	Summaries map[string]string `json:"summaries"`
	Cached    []string          `json:"cached,omitempty"`   // kinds served from the summary store
	Failures  map[string]string `json:"failures,omitempty"` // kind → error message
}

type TranscriptOutput struct {
	VideoID         string `json:"video_id"`
	URL             string `json:"url"`
	Transcript      string `json:"transcript"`
	Chars           int    `json:"chars"`
	EstimatedTokens int    `json:"estimated_tokens"`
	Chunks          int    `json:"chunks"`
	Truncated       bool   `json:"truncated"`
}

type HistoryItem struct {
	VideoID         string   `json:"video_id"`
	SourceType      string   `json:"source_type"`
	URL             string   `json:"url,omitempty"`
	Filename        string   `json:"filename,omitempty"`
	DurationSeconds int      `json:"duration_seconds,omitempty"`
	Title           string   `json:"title,omitempty"`
	FetchedAt       string   `json:"fetched_at"`
	Summaries       []string `json:"summaries,omitempty"`
}

type HistoryOutput struct {
	Videos []HistoryItem `json:"videos"`
	Total  int           `json:"total"`
}

type TitleOutput struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
}
