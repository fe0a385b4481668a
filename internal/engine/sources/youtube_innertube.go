package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
)

// Innertube endpoints and the wire shapes this package reads from them.

const (
	ytPlayerPath        = "/youtubei/v1/player"
	ytNextPath          = "/youtubei/v1/next"
	ytGetTranscriptPath = "/youtubei/v1/get_transcript"
	ytWebVersion        = "2.20250222.10.00"
	ytAndroidVersion    = "20.10.38"
	ytAndroidUA         = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
)

// innertubeRequest is the body of /player, /next and /get_transcript calls.
// /player sets VideoID, /next sets VideoID, /get_transcript sets Params.
type innertubeRequest struct {
	VideoID        string        `json:"videoId,omitempty"`
	Params         string        `json:"params,omitempty"`
	Context        clientContext `json:"context"`
	RacyCheckOk    bool          `json:"racyCheckOk,omitempty"`
	ContentCheckOk bool          `json:"contentCheckOk,omitempty"`
}

type clientContext struct {
	Client clientInfo `json:"client"`
}

type clientInfo struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	VisitorData       string `json:"visitorData,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

func webClient(visitorData string) clientContext {
	return clientContext{Client: clientInfo{
		ClientName:    "WEB",
		ClientVersion: ytWebVersion,
		VisitorData:   visitorData,
		Hl:            "en",
		Gl:            "US",
	}}
}

func androidClient() clientContext {
	return clientContext{Client: clientInfo{
		ClientName:        "ANDROID",
		ClientVersion:     ytAndroidVersion,
		AndroidSdkVersion: 30,
		Hl:                "en",
		Gl:                "US",
	}}
}

// playerResp is both the ANDROID /player answer and the watch page's
// ytInitialPlayerResponse.
type playerResp struct {
	Captions          *captionsInfo `json:"captions"`
	PlayabilityStatus *playability  `json:"playabilityStatus"`
	VideoDetails      *videoDetails `json:"videoDetails"`
}

type captionsInfo struct {
	Tracklist struct {
		CaptionTracks []captionTrack `json:"captionTracks"`
	} `json:"playerCaptionsTracklistRenderer"`
}

type playability struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type videoDetails struct {
	Title string `json:"title"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" marks auto-generated captions
}

func (p playerResp) tracks() []captionTrack {
	if p.Captions == nil {
		return nil
	}
	return p.Captions.Tracklist.CaptionTracks
}

func (p playerResp) unplayableReason() string {
	s := p.PlayabilityStatus
	if s == nil || s.Status == "OK" {
		return ""
	}
	if s.Reason != "" {
		return s.Reason
	}
	return s.Status
}

// timedTextDoc matches both caption XML layouts: <transcript><text start dur>
// in seconds and srv3 <timedtext><body><p t d> in milliseconds.
type timedTextDoc struct {
	Lines []timedLine `xml:"text"`
	Body  *struct {
		Paras []timedPara `xml:"p"`
	} `xml:"body"`
}

type timedLine struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Text  string  `xml:",innerxml"`
}

type timedPara struct {
	StartMs int64  `xml:"t,attr"`
	DurMs   int64  `xml:"d,attr"`
	Text    string `xml:",innerxml"`
}

// transcriptResponse is the /get_transcript answer. Segments sit at
// actions[].updateEngagementPanelAction.content.transcriptRenderer.content
// .transcriptSearchPanelRenderer.body.transcriptSegmentListRenderer.initialSegments.
type transcriptResponse struct {
	Actions []struct {
		Update *panelUpdate `json:"updateEngagementPanelAction"`
	} `json:"actions"`
}

type panelUpdate struct {
	Content struct {
		Renderer struct {
			Content struct {
				SearchPanel struct {
					Body struct {
						List struct {
							InitialSegments []segmentItem `json:"initialSegments"`
						} `json:"transcriptSegmentListRenderer"`
					} `json:"body"`
				} `json:"transcriptSearchPanelRenderer"`
			} `json:"content"`
		} `json:"transcriptRenderer"`
	} `json:"content"`
}

// segmentItem is one list entry; section headers leave Segment nil.
type segmentItem struct {
	Segment *struct {
		StartMs string `json:"startMs"`
		EndMs   string `json:"endMs"`
		Snippet struct {
			Runs []struct {
				Text string `json:"text"`
			} `json:"runs"`
		} `json:"snippet"`
	} `json:"transcriptSegmentRenderer"`
}

func (r transcriptResponse) items() []segmentItem {
	var out []segmentItem
	for _, a := range r.Actions {
		if a.Update != nil {
			out = append(out, a.Update.Content.Renderer.Content.SearchPanel.Body.List.InitialSegments...)
		}
	}
	return out
}

// msToSeconds parses a millisecond string; bad input yields 0.
func msToSeconds(ms string) float64 {
	n, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return 0
	}
	return float64(n) / 1000
}

// newVisitorID returns a random 11-character visitor ID.
func newVisitorID() string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	id := make([]byte, 11)
	for i := range id {
		id[i] = alphabet[rand.IntN(len(alphabet))] //nolint:gosec // not a secret
	}
	return string(id)
}

// postWeb sends an Innertube request as the WEB client.
func (y *YouTube) postWeb(ctx context.Context, path string, payload innertubeRequest, visitorID string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.base+path+"?prettyPrint=false", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	setBrowserHeaders(req)
	for k, v := range map[string]string{
		"Content-Type":             "application/json",
		"Accept":                   "*/*",
		"X-Youtube-Client-Name":    "1",
		"X-Youtube-Client-Version": ytWebVersion,
		"X-Goog-Visitor-Id":        visitorID,
		"Origin":                   "https://www.youtube.com",
		"Referer":                  "https://www.youtube.com/",
	} {
		req.Header.Set(k, v)
	}

	data, err := y.do(req, 3<<20)
	if err != nil {
		return nil, fmt.Errorf("innertube %s: %w", path, err)
	}
	return data, nil
}
