package domain

// CaptureState models the recording lifecycle.
type CaptureState string

const (
	CaptureStateIdle         CaptureState = "idle"
	CaptureStateRecording    CaptureState = "recording"
	CaptureStateTranscribing CaptureState = "transcribing"
)

// CaptureReason provides a structured reason for capture transitions.
type CaptureReason string

const (
	CaptureReasonReady               CaptureReason = "ready"
	CaptureReasonRecordingStarted    CaptureReason = "recording_started"
	CaptureReasonRecordingRestarted  CaptureReason = "recording_restarted"
	CaptureReasonTranscribing        CaptureReason = "transcribing"
	CaptureReasonTranscribingFile    CaptureReason = "transcribing_file"
	CaptureReasonTranscriptReady     CaptureReason = "transcript_ready"
	CaptureReasonRecordingDiscarded  CaptureReason = "recording_discarded"
	CaptureReasonPermissionDenied    CaptureReason = "permission_denied"
	CaptureReasonNoAudio             CaptureReason = "no_audio"
	CaptureReasonTranscriptionFailed CaptureReason = "transcription_failed"
)

// PlaybackState models the speech playback lifecycle.
type PlaybackState string

const (
	PlaybackStateIdle    PlaybackState = "idle"
	PlaybackStateLoading PlaybackState = "loading"
	PlaybackStatePlaying PlaybackState = "playing"
)

// Tab is the active transcript input view.
type Tab string

const (
	TabText  Tab = "text"
	TabAudio Tab = "audio"
)

// CaptureStatus summarizes the capture controller for the UI.
type CaptureStatus struct {
	State          CaptureState `json:"state"`
	Active         bool         `json:"active"`
	ElapsedSeconds int          `json:"elapsedSeconds"`
}

// SpeechAudio is a synthesized speech payload: raw little-endian 16-bit PCM.
type SpeechAudio struct {
	PCM        []byte `json:"-"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
	MIMEType   string `json:"mimeType"`
}

// AudioBlob is a finished recording ready for transcription.
type AudioBlob struct {
	Data     []byte
	MIMEType string
}
