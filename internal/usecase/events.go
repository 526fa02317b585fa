package usecase

import "meetscribe/internal/domain"

// NopEventSink discards every event. Headless callers poll state instead.
type NopEventSink struct{}

func (NopEventSink) CaptureStateChanged(domain.CaptureState, domain.CaptureReason) {}
func (NopEventSink) RecordingElapsed(int)                                          {}
func (NopEventSink) PlaybackStateChanged(domain.PlaybackState)                     {}
func (NopEventSink) WorkspaceChanged(domain.WorkspaceSnapshot)                     {}
func (NopEventSink) TranscriptReady(string, string)                                {}
func (NopEventSink) Error(domain.ErrorCode, string)                                {}
