package engine

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrInvalidURL            = errors.New("invalid youtube url")
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	ErrSummarization         = errors.New("summarization failed")
	ErrInvalidArgument       = errors.New("invalid argument")
)

// InvalidURLError reports input from which no video ID could be isolated.
type InvalidURLError struct {
	Input  string
	Reason string
}

func (e *InvalidURLError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid youtube url %q", e.Input)
	}
	return fmt.Sprintf("invalid youtube url %q: %s", e.Input, e.Reason)
}

func (e *InvalidURLError) Is(target error) bool { return target == ErrInvalidURL }

// TranscriptUnavailableError reports a captions provider failure.
// Transient marks network and retryable-status causes; it is diagnostic only.
type TranscriptUnavailableError struct {
	VideoID   VideoID
	Transient bool
	Cause     error
}

func (e *TranscriptUnavailableError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("transcript unavailable for %s", e.VideoID)
	}
	return fmt.Sprintf("transcript unavailable for %s: %v", e.VideoID, e.Cause)
}

func (e *TranscriptUnavailableError) Unwrap() error { return e.Cause }

func (e *TranscriptUnavailableError) Is(target error) bool {
	return target == ErrTranscriptUnavailable
}

// SummarizationError reports the failure of one summary kind.
type SummarizationError struct {
	Kind  Kind
	Cause error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarize %s: %v", e.Kind, e.Cause)
}

func (e *SummarizationError) Unwrap() error { return e.Cause }

func (e *SummarizationError) Is(target error) bool { return target == ErrSummarization }

// InvalidArgumentError reports programmer misuse such as a non-positive chunk size.
type InvalidArgumentError struct {
	Name   string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Name, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }
