package transcript

import (
	"fmt"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/youtube"
)

// FailureKind classifies why no transcript was produced.
type FailureKind string

const (
	InvalidIdentifier    FailureKind = "InvalidIdentifier"
	UpstreamUnavailable  FailureKind = "UpstreamUnavailable"
	DownloadFailure      FailureKind = "DownloadFailure"
	ModelUnavailable     FailureKind = "ModelUnavailable"
	TranscriptionFailure FailureKind = "TranscriptionFailure"
	EmptyResult          FailureKind = "EmptyResult"
)

// Source names the strategy that produced the text.
type Source string

const (
	SourceCaptions  Source = "captions"
	SourceTimedText Source = "timedtext"
	SourceSpeech    Source = "speech"
)

// Reason codes reported with an Unavailable result.
const (
	ReasonInvalidID           = "invalid_id"
	ReasonTranscriptsDisabled = "transcripts_disabled"
	ReasonDownloaderMissing   = "yt_dlp_missing"
	ReasonAudioFileMissing    = "audio_file_missing"
	ReasonEmptyTranscript     = "empty_transcript"
	ReasonUnknown             = "unknown"

	reasonOfficialAPIPrefix   = "official_api_error:"
	reasonOfficialListPrefix  = "official_list_error:"
	reasonDownloaderPrefix    = "yt_dlp_error:"
	reasonSTTInitPrefix       = "stt_init_error:"
	reasonSTTTranscribePrefix = "stt_transcribe_error:"
)

const (
	invalidInputMessage = "Invalid YouTube URL or video ID."
	unavailableMessage  = "No transcript available. This can happen if captions are disabled, region-restricted, " +
		"members-only/age-restricted, or due to temporary network/rate limits."
)

// AcquisitionResult is either non-empty Text or Unavailable with a reason.
type AcquisitionResult struct {
	RequestID string          `json:"request_id"`
	VideoID   youtube.VideoID `json:"video_id,omitempty"`
	Text      string          `json:"text,omitempty"`
	Source    Source          `json:"source,omitempty"`
	// Translation is set for caption results.
	Translation youtube.TranslationStatus `json:"translation,omitempty"`
	CachedAudio bool                      `json:"cached_audio,omitempty"`
	Failure     FailureKind               `json:"failure,omitempty"`
	Reason      string                    `json:"reason,omitempty"`
	// CaptionReason is why the caption stage failed, when it recorded one.
	CaptionReason string `json:"caption_reason,omitempty"`
}

func textResult(id youtube.VideoID, text string, source Source) AcquisitionResult {
	return AcquisitionResult{VideoID: id, Text: text, Source: source}
}

func unavailable(id youtube.VideoID, kind FailureKind, reason string) AcquisitionResult {
	return AcquisitionResult{VideoID: id, Failure: kind, Reason: reason}
}

// OK reports a successful acquisition.
func (r AcquisitionResult) OK() bool {
	return r.Failure == "" && r.Text != ""
}

// DebugReason is the recorded reason, or "unknown" when no stage recorded one.
func (r AcquisitionResult) DebugReason() string {
	if r.Reason == "" {
		return ReasonUnknown
	}
	return r.Reason
}

// Message is the user-facing explanation of a failed acquisition.
func (r AcquisitionResult) Message() string {
	if r.OK() {
		return ""
	}
	if r.Failure == InvalidIdentifier {
		return invalidInputMessage
	}
	return fmt.Sprintf("%s\n(debug: %s)", unavailableMessage, r.DebugReason())
}
