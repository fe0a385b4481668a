package sources

// YouTube captions provider is split across three files by responsibility:
//   youtube.go           : provider type, options, strategy chain, HTTP helper
//   youtube_innertube.go : Innertube API types, constants and request payloads
//   youtube_transcript.go: watch-page scrape, engagement panel, ANDROID player, timedtext parsing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
)

const defaultYouTubeBase = "https://www.youtube.com"

// YouTube fetches timed captions for a video. It makes a single attempt per
// strategy and never retries.
type YouTube struct {
	client *http.Client
	langs  []string
	logger *slog.Logger
	base   string // scheme+host serving /watch and /youtubei/v1
}

// YouTubeOption configures a YouTube provider.
type YouTubeOption func(*YouTube)

func WithHTTPClient(c *http.Client) YouTubeOption {
	return func(y *YouTube) {
		if c != nil {
			y.client = c
		}
	}
}

// WithLanguages sets caption language preferences, most preferred first.
func WithLanguages(langs []string) YouTubeOption {
	return func(y *YouTube) {
		var clean []string
		for _, l := range langs {
			if l = strings.TrimSpace(l); l != "" {
				clean = append(clean, l)
			}
		}
		if len(clean) > 0 {
			y.langs = clean
		}
	}
}

func WithLogger(l *slog.Logger) YouTubeOption {
	return func(y *YouTube) {
		if l != nil {
			y.logger = l
		}
	}
}

// WithBaseURL points the provider at another host (tests, mirrors).
func WithBaseURL(base string) YouTubeOption {
	return func(y *YouTube) { y.base = strings.TrimSuffix(base, "/") }
}

// NewYouTube returns a provider with a 20s HTTP timeout and English captions preferred.
func NewYouTube(opts ...YouTubeOption) *YouTube {
	y := &YouTube{
		client: &http.Client{
			Timeout: 20 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		langs:  []string{"en"},
		logger: slog.Default(),
		base:   defaultYouTubeBase,
	}
	for _, fn := range opts {
		fn(y)
	}
	y.logger = y.logger.With(slog.String("component", "youtube"))
	return y
}

// FetchCaptions returns the ordered caption segments of a video.
// Primary:  scrape watch page ytInitialPlayerResponse → caption XML (works from any IP)
// Fallback: engagement panel /next → /get_transcript (works from datacenter IPs)
// Fallback: ANDROID Innertube /player → captionTracks
func (y *YouTube) FetchCaptions(ctx context.Context, id engine.VideoID) ([]engine.Segment, error) {
	strategies := []struct {
		name string
		fn   func(context.Context, engine.VideoID) ([]engine.Segment, error)
	}{
		{"page_scrape", y.viaPageScrape},
		{"engagement_panel", y.viaEngagementPanel},
		{"player", y.viaPlayer},
	}

	var errs []error
	for _, s := range strategies {
		segs, err := s.fn(ctx, id)
		if err == nil && len(segs) > 0 {
			y.logger.Debug("captions fetched",
				slog.String("video_id", id.String()),
				slog.String("strategy", s.name),
				slog.Int("segments", len(segs)))
			return segs, nil
		}
		if err == nil {
			err = errors.New("no caption segments")
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		if ctx.Err() != nil {
			break
		}
		y.logger.Warn("captions strategy failed",
			slog.String("video_id", id.String()),
			slog.String("strategy", s.name),
			slog.Any("error", err))
	}
	return nil, errors.Join(errs...)
}

// do sends req and returns the body of a 200 response, read up to limit bytes.
func (y *YouTube) do(req *http.Request, limit int64) ([]byte, error) {
	resp, err := y.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &engine.HTTPStatusError{StatusCode: resp.StatusCode, URL: req.URL.Path}
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// setBrowserHeaders applies Chrome-like headers with a rotating User-Agent.
func setBrowserHeaders(req *http.Request) {
	for k, v := range stealth.ChromeHeaders() {
		req.Header.Set(k, v)
	}
	// Leave compression to net/http so bodies are decoded transparently.
	req.Header.Del("Accept-Encoding")
	req.Header.Set("User-Agent", stealth.RandomUserAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}
