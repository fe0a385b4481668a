package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Process-wide counters for transcript and summary work.
var metrics struct {
	TranscriptRequests  atomic.Int64
	TranscriptCacheHits atomic.Int64
	TranscriptFetches   atomic.Int64
	TranscriptErrors    atomic.Int64
	SummaryCacheHits    atomic.Int64
	SummariesGenerated  atomic.Int64
	SummaryFailures     atomic.Int64
	TitlesGenerated     atomic.Int64
	LLMCalls            atomic.Int64
	LLMErrors           atomic.Int64
	AudioTranscriptions atomic.Int64
}

// metricKeys fixes the output order of FormatMetrics.
var metricKeys = []string{
	"transcript_requests", "transcript_cache_hits", "transcript_fetches", "transcript_errors",
	"summary_cache_hits", "summaries_generated", "summary_failures",
	"titles_generated",
	"llm_calls", "llm_errors",
	"audio_transcriptions",
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"transcript_requests":   metrics.TranscriptRequests.Load(),
		"transcript_cache_hits": metrics.TranscriptCacheHits.Load(),
		"transcript_fetches":    metrics.TranscriptFetches.Load(),
		"transcript_errors":     metrics.TranscriptErrors.Load(),
		"summary_cache_hits":    metrics.SummaryCacheHits.Load(),
		"summaries_generated":   metrics.SummariesGenerated.Load(),
		"summary_failures":      metrics.SummaryFailures.Load(),
		"titles_generated":      metrics.TitlesGenerated.Load(),
		"llm_calls":             metrics.LLMCalls.Load(),
		"llm_errors":            metrics.LLMErrors.Load(),
		"audio_transcriptions":  metrics.AudioTranscriptions.Load(),
	}
}

// FormatMetrics renders the counters as "name value" lines in metricKeys order.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the summarize and sources sub-packages.
func IncrTranscriptRequests()  { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptCacheHits() { metrics.TranscriptCacheHits.Add(1) }
func IncrTranscriptFetches()   { metrics.TranscriptFetches.Add(1) }
func IncrTranscriptErrors()    { metrics.TranscriptErrors.Add(1) }
func IncrSummaryCacheHits()    { metrics.SummaryCacheHits.Add(1) }
func IncrSummariesGenerated()  { metrics.SummariesGenerated.Add(1) }
func IncrSummaryFailures()     { metrics.SummaryFailures.Add(1) }
func IncrTitlesGenerated()     { metrics.TitlesGenerated.Add(1) }

// TrackOperation runs fn and warns when it outlasts threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
