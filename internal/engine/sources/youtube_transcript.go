package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"

	nethtml "golang.org/x/net/html"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
)

// --- Strategy 1: watch page scrape ---

// ytPlayerResponseVar names the watch page variable holding the player JSON.
var ytPlayerResponseVar = []byte("ytInitialPlayerResponse")

func (y *YouTube) viaPageScrape(ctx context.Context, id engine.VideoID) ([]engine.Segment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.base+"/watch?v="+url.QueryEscape(id.String()), nil)
	if err != nil {
		return nil, err
	}
	setBrowserHeaders(req)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Cookie", "CONSENT=YES+1")

	body, err := y.do(req, 6*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	raw := findPlayerResponse(body)
	if raw == nil {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	var pr playerResp
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return y.segmentsFromPlayer(ctx, pr)
}

// findPlayerResponse scans the page's <script> elements for the player JSON object.
func findPlayerResponse(page []byte) []byte {
	z := nethtml.NewTokenizer(bytes.NewReader(page))
	inScript := false
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			return nil
		case nethtml.StartTagToken:
			name, _ := z.TagName()
			inScript = string(name) == "script"
		case nethtml.EndTagToken:
			inScript = false
		case nethtml.TextToken:
			if !inScript {
				continue
			}
			if obj := playerJSONFromScript(z.Text()); obj != nil {
				return obj
			}
		}
	}
}

func playerJSONFromScript(script []byte) []byte {
	for {
		idx := bytes.Index(script, ytPlayerResponseVar)
		if idx < 0 {
			return nil
		}
		script = script[idx+len(ytPlayerResponseVar):]
		eq := bytes.IndexByte(script, '=')
		if eq < 0 {
			return nil
		}
		if obj := extractJSON(bytes.TrimLeft(script[eq+1:], " \t\r\n")); obj != nil {
			return obj
		}
	}
}

// extractJSON returns the balanced JSON object at the start of b, or nil.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, esc := false, false
	for i, c := range b {
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// --- Strategy 2: engagement panel ---

// transcriptParamsRE finds the get_transcript continuation in a /next body.
var transcriptParamsRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

func extractTranscriptToken(data []byte) (string, error) {
	m := transcriptParamsRE.FindSubmatch(data)
	if len(m) < 2 {
		return "", errors.New("getTranscriptEndpoint not found in engagement panels")
	}
	// /next returns the params URL-encoded; /get_transcript wants raw base64.
	decoded, err := url.QueryUnescape(string(m[1]))
	if err != nil {
		return string(m[1]), nil
	}
	return decoded, nil
}

// viaEngagementPanel reads the transcript panel the web player shows: /next
// yields a continuation token which /get_transcript exchanges for segments.
func (y *YouTube) viaEngagementPanel(ctx context.Context, id engine.VideoID) ([]engine.Segment, error) {
	visitorID := newVisitorID()

	nextData, err := y.postWeb(ctx, ytNextPath, innertubeRequest{
		VideoID: id.String(),
		Context: webClient(visitorID),
	}, visitorID)
	if err != nil {
		return nil, fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	data, err := y.postWeb(ctx, ytGetTranscriptPath, innertubeRequest{
		Params:  token,
		Context: webClient(visitorID),
	}, visitorID)
	if err != nil {
		return nil, fmt.Errorf("/get_transcript: %w", err)
	}

	var resp transcriptResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	segs := parseTranscriptSegments(resp)
	if len(segs) == 0 {
		return nil, errors.New("empty transcript segments")
	}
	return segs, nil
}

// parseTranscriptSegments converts /get_transcript list items into timed segments.
func parseTranscriptSegments(resp transcriptResponse) []engine.Segment {
	var segs []engine.Segment
	for _, item := range resp.items() {
		r := item.Segment
		if r == nil {
			continue
		}
		var sb strings.Builder
		for _, run := range r.Snippet.Runs {
			sb.WriteString(run.Text)
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}
		start := msToSeconds(r.StartMs)
		segs = append(segs, engine.Segment{
			Text:     text,
			Start:    start,
			Duration: max(msToSeconds(r.EndMs)-start, 0),
		})
	}
	return segs
}

// --- Strategy 3: ANDROID player ---

// viaPlayer asks /player as the ANDROID client, whose caption URLs are
// usually downloadable without cookies.
func (y *YouTube) viaPlayer(ctx context.Context, id engine.VideoID) ([]engine.Segment, error) {
	body, err := json.Marshal(innertubeRequest{
		VideoID:        id.String(),
		Context:        androidClient(),
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.base+ytPlayerPath+"?prettyPrint=false", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", ytAndroidUA)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)

	data, err := y.do(req, 3*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}
	var pr playerResp
	if err := json.Unmarshal(data, &pr); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return y.segmentsFromPlayer(ctx, pr)
}

// segmentsFromPlayer picks the best caption track of a player response and downloads it.
func (y *YouTube) segmentsFromPlayer(ctx context.Context, pr playerResp) ([]engine.Segment, error) {
	tracks := pr.tracks()
	if len(tracks) == 0 {
		if reason := pr.unplayableReason(); reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", reason)
		}
		return nil, errors.New("no caption tracks")
	}
	track, ok := pickBestTrack(tracks, y.langs)
	if !ok {
		return nil, errors.New("all caption tracks require PoToken")
	}
	return y.fetchTimedText(ctx, track.BaseURL)
}

// needsPoToken reports whether a track URL carries the &exp=xpe marker;
// those downloads are rejected without a browser-issued proof-of-origin token.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack ranks the downloadable tracks: manual captions in langs order,
// then auto-generated ones in langs order, then any English track, then the first.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	best, bestRank := -1, 0
	for i, tr := range tracks {
		if tr.BaseURL == "" || needsPoToken(tr.BaseURL) {
			continue
		}
		r := trackRank(tr, langs)
		if best < 0 || r < bestRank {
			best, bestRank = i, r
		}
	}
	if best < 0 {
		return captionTrack{}, false
	}
	return tracks[best], true
}

func trackRank(tr captionTrack, langs []string) int {
	n := len(langs)
	if i := slices.Index(langs, tr.LanguageCode); i >= 0 {
		if tr.Kind == "asr" {
			return n + i
		}
		return i
	}
	if strings.HasPrefix(tr.LanguageCode, "en") {
		return 2 * n
	}
	return 2*n + 1
}

// fetchTimedText downloads and parses a timedtext caption URL.
func (y *YouTube) fetchTimedText(ctx context.Context, baseURL string) ([]engine.Segment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("timedtext url: %w", err)
	}
	setBrowserHeaders(req)

	body, err := y.do(req, 2*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty timedtext response")
	}
	return parseTimedText(body)
}

// parseTimedText decodes classic and srv3 timedtext XML into segments.
func parseTimedText(body []byte) ([]engine.Segment, error) {
	var tt timedTextDoc
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	var segs []engine.Segment
	for _, line := range tt.Lines {
		if text := captionText(line.Text); text != "" {
			segs = append(segs, engine.Segment{Text: text, Start: line.Start, Duration: line.Dur})
		}
	}
	if tt.Body != nil {
		for _, p := range tt.Body.Paras {
			if text := captionText(p.Text); text != "" {
				segs = append(segs, engine.Segment{
					Text:     text,
					Start:    float64(p.StartMs) / 1000,
					Duration: float64(p.DurMs) / 1000,
				})
			}
		}
	}
	return segs, nil
}

// captionText turns raw inner XML into plain text. The first decode undoes
// the XML escaping, CleanHTML the HTML escaping inside the caption itself.
func captionText(inner string) string {
	return engine.CleanHTML(html.UnescapeString(inner))
}
