package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// MaxAudioBytes is the upload limit of the transcription endpoint.
const MaxAudioBytes = 25 << 20

const audioIDPrefix = "audio_"

// AudioExtensions lists the file types the transcription endpoint accepts.
var AudioExtensions = []string{"flac", "m4a", "mp3", "mp4", "mpeg", "mpga", "oga", "ogg", "wav", "webm"}

// AllowedAudioFile reports whether name has a supported audio extension.
func AllowedAudioFile(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return ext != "" && slices.Contains(AudioExtensions, ext)
}

// AudioSourceID derives a stable ID from the file content, so the same
// recording maps to the same stored transcript under any file name.
func AudioSourceID(content []byte) VideoID {
	sum := sha256.Sum256(content)
	return VideoID(audioIDPrefix + hex.EncodeToString(sum[:8]))
}

// AudioTranscript is the speech-to-text result for one file.
type AudioTranscript struct {
	Text     string
	Duration time.Duration // zero when the service does not report it
}

// AudioTranscriber turns a local audio file into text.
type AudioTranscriber interface {
	TranscribeAudio(ctx context.Context, path string) (AudioTranscript, error)
}

// WhisperTranscriber calls the audio transcriptions API through go-openai.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

// NewWhisperTranscriber creates a transcriber for model (default whisper-1).
// baseURL may be empty for the public OpenAI endpoint.
func NewWhisperTranscriber(apiKey, baseURL, model string, hc *http.Client) *WhisperTranscriber {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Minute}
	}
	cfg.HTTPClient = hc
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperTranscriber{client: openai.NewClientWithConfig(cfg), model: model}
}

func (w *WhisperTranscriber) TranscribeAudio(ctx context.Context, path string) (AudioTranscript, error) {
	metrics.AudioTranscriptions.Add(1)
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: path,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
			return AudioTranscript{}, fmt.Errorf("openai transcription: %w: %w", &HTTPStatusError{StatusCode: apiErr.HTTPStatusCode}, err)
		}
		return AudioTranscript{}, fmt.Errorf("openai transcription: %w", err)
	}
	return AudioTranscript{
		Text:     resp.Text,
		Duration: time.Duration(resp.Duration * float64(time.Second)),
	}, nil
}
