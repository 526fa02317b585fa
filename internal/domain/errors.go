package domain

import (
	"context"
	"errors"
)

var (
	ErrPermission      = errors.New("microphone access denied or unavailable")
	ErrInvalidInput    = errors.New("unsupported file type")
	ErrEmptyInput      = errors.New("transcript is empty")
	ErrTranscription   = errors.New("transcription failed")
	ErrSummarization   = errors.New("summarization failed")
	ErrSpeechSynthesis = errors.New("speech synthesis failed")

	ErrNoActiveSession = errors.New("no active recording session")
	ErrCaptureBusy     = errors.New("a transcription is already in progress")
	ErrSummaryInFlight = errors.New("a summary is already being generated")
	ErrAudioBusy       = errors.New("audio device is in use")
	ErrClosed          = errors.New("component is closed")
)

// ErrorCode identifies which part of the pipeline failed.
type ErrorCode string

const (
	ErrorCodeStartup       ErrorCode = "startup"
	ErrorCodePermission    ErrorCode = "permission"
	ErrorCodeInvalidInput  ErrorCode = "invalid_input"
	ErrorCodeEmptyInput    ErrorCode = "empty_input"
	ErrorCodeAudioStop     ErrorCode = "audio_stop"
	ErrorCodeAudioStream   ErrorCode = "audio_stream"
	ErrorCodeAudioBusy     ErrorCode = "audio_busy"
	ErrorCodeTranscription ErrorCode = "transcription"
	ErrorCodeSummarization ErrorCode = "summarization"
	ErrorCodeSpeech        ErrorCode = "speech"
	ErrorCodePlayback      ErrorCode = "playback"
	ErrorCodeClipboard     ErrorCode = "clipboard"
	ErrorCodeExport        ErrorCode = "export"
)

// CodeOf classifies an error into an ErrorCode.
func CodeOf(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrPermission):
		return ErrorCodePermission
	case errors.Is(err, ErrInvalidInput):
		return ErrorCodeInvalidInput
	case errors.Is(err, ErrEmptyInput):
		return ErrorCodeEmptyInput
	case errors.Is(err, ErrAudioBusy):
		return ErrorCodeAudioBusy
	case errors.Is(err, ErrTranscription), errors.Is(err, ErrCaptureBusy):
		return ErrorCodeTranscription
	case errors.Is(err, ErrSummarization), errors.Is(err, ErrSummaryInFlight):
		return ErrorCodeSummarization
	case errors.Is(err, ErrSpeechSynthesis):
		return ErrorCodeSpeech
	default:
		return ""
	}
}

// UserMessage converts any pipeline error into the single sentence shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrPermission):
		return "Microphone access was denied or no microphone is available."
	case errors.Is(err, ErrInvalidInput):
		return "That file type is not supported."
	case errors.Is(err, ErrEmptyInput):
		return "Please provide a transcript to summarize."
	case errors.Is(err, ErrCaptureBusy):
		return "Please wait for the current transcription to finish."
	case errors.Is(err, ErrSummaryInFlight):
		return "A summary is already being generated."
	case errors.Is(err, ErrAudioBusy):
		return "Audio is busy. Stop recording or playback first."
	case errors.Is(err, ErrTranscription):
		return "Failed to transcribe the audio. Please try again."
	case errors.Is(err, ErrSummarization):
		return "Failed to generate the summary. Please try again."
	case errors.Is(err, ErrSpeechSynthesis):
		return "Failed to generate or play the audio summary."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please try again."
	default:
		return err.Error()
	}
}
