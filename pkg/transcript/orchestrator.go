package transcript

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/media"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/stt"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/youtube"
	"golang.org/x/sync/singleflight"
)

type CaptionFetcher interface {
	Fetch(ctx context.Context, id youtube.VideoID) (youtube.CaptionResult, error)
}

type TimedTextFetcher interface {
	Fetch(ctx context.Context, id youtube.VideoID) (string, error)
}

type AudioCache interface {
	Lookup(id string) (string, bool)
}

type AudioDownloader interface {
	Download(ctx context.Context, sourceURL, id string) (string, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Orchestrator resolves a video reference to text by trying captions, timed
// text, then cached or downloaded audio through speech-to-text. The first
// non-empty text wins and no stage is retried.
type Orchestrator struct {
	captions    CaptionFetcher
	timedText   TimedTextFetcher
	cache       AudioCache
	downloader  AudioDownloader
	transcriber Transcriber
	metrics     *Metrics

	// audio serializes the cache-or-download decision per video id.
	audio singleflight.Group
}

type Option func(*Orchestrator)

func WithMetrics(metrics *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = metrics
	}
}

func NewOrchestrator(
	captions CaptionFetcher,
	timedText TimedTextFetcher,
	cache AudioCache,
	downloader AudioDownloader,
	transcriber Transcriber,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		captions:    captions,
		timedText:   timedText,
		cache:       cache,
		downloader:  downloader,
		transcriber: transcriber,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

type audioResult struct {
	path   string
	cached bool
}

// Acquire runs the fallback chain for raw, a URL or bare video id.
func (o *Orchestrator) Acquire(ctx context.Context, raw string) AcquisitionResult {
	start := time.Now()
	requestID := logging.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = logging.WithRequestID(ctx, requestID)
	}

	result := o.acquire(ctx, raw)
	result.RequestID = requestID
	o.metrics.observeAcquisition(result.Source, time.Since(start))

	log := logging.NewLogger(ctx)
	if result.OK() {
		log.Infof("transcript video_id=%q source=%q chars=%d elapsed_ms=%d", result.VideoID, result.Source, len(result.Text), time.Since(start).Milliseconds())
	} else {
		log.Warnf("transcript video_id=%q failure=%q reason=%q elapsed_ms=%d", result.VideoID, result.Failure, result.DebugReason(), time.Since(start).Milliseconds())
	}
	return result
}

func (o *Orchestrator) acquire(ctx context.Context, raw string) AcquisitionResult {
	log := logging.NewLogger(ctx)

	id, ok := youtube.ExtractVideoID(raw)
	if !ok {
		return unavailable("", InvalidIdentifier, ReasonInvalidID)
	}

	// captionReason is kept for diagnostics; every later terminal path
	// records its own reason.
	captionReason := ""

	if o.captions != nil {
		captions, err := o.captions.Fetch(ctx, id)
		if err == nil && strings.TrimSpace(captions.Text) != "" {
			o.metrics.recordStage(StageCaptions, OutcomeSuccess)
			result := textResult(id, captions.Text, SourceCaptions)
			result.Translation = captions.Translation
			return result
		}
		o.metrics.recordStage(StageCaptions, OutcomeFailure)
		if err != nil {
			log.Infof("stage=%q video_id=%q failed: %v", StageCaptions, id, err)
			captionReason = captionFailureReason(err)
		}
	}

	if o.timedText != nil {
		text, err := o.timedText.Fetch(ctx, id)
		if err == nil && strings.TrimSpace(text) != "" {
			o.metrics.recordStage(StageTimedText, OutcomeSuccess)
			return textResult(id, text, SourceTimedText)
		}
		o.metrics.recordStage(StageTimedText, OutcomeFailure)
		if err != nil {
			log.Infof("stage=%q video_id=%q failed: %v", StageTimedText, id, err)
		}
	}

	fail := func(kind FailureKind, reason string) AcquisitionResult {
		result := unavailable(id, kind, reason)
		result.CaptionReason = captionReason
		return result
	}

	audio, err := o.audioFor(ctx, id)
	if err != nil {
		log.Warnf("stage=%q video_id=%q failed: %v", StageDownload, id, err)
		return fail(DownloadFailure, downloadReason(err))
	}

	if o.transcriber == nil {
		return fail(ModelUnavailable, reasonSTTInitPrefix+"Error")
	}
	text, err := o.transcriber.Transcribe(ctx, audio.path)
	if err != nil {
		o.metrics.recordStage(StageTranscribe, OutcomeFailure)
		log.Warnf("stage=%q video_id=%q failed: %v", StageTranscribe, id, err)
		return fail(transcribeReason(err))
	}
	if strings.TrimSpace(text) == "" {
		o.metrics.recordStage(StageTranscribe, OutcomeFailure)
		return fail(EmptyResult, ReasonEmptyTranscript)
	}
	o.metrics.recordStage(StageTranscribe, OutcomeSuccess)

	result := textResult(id, strings.TrimSpace(text), SourceSpeech)
	result.CachedAudio = audio.cached
	return result
}

// audioFor returns cached audio for id or downloads it. Concurrent callers
// for the same id share one decision and one download.
func (o *Orchestrator) audioFor(ctx context.Context, id youtube.VideoID) (audioResult, error) {
	value, err, shared := o.audio.Do(id.String(), func() (any, error) {
		if o.cache != nil {
			if path, ok := o.cache.Lookup(id.String()); ok {
				o.metrics.recordStage(StageCache, OutcomeHit)
				return audioResult{path: path, cached: true}, nil
			}
		}
		o.metrics.recordStage(StageCache, OutcomeMiss)

		if o.downloader == nil {
			return nil, &media.DownloadError{Reason: media.DownloadToolMissing, Err: media.ErrDownloaderMissing}
		}
		path, err := o.downloader.Download(ctx, id.WatchURL(), id.String())
		if err != nil {
			o.metrics.recordStage(StageDownload, OutcomeFailure)
			return nil, err
		}
		o.metrics.recordStage(StageDownload, OutcomeSuccess)
		return audioResult{path: path}, nil
	})
	if err != nil {
		return audioResult{}, err
	}
	if shared {
		logging.NewLogger(ctx).Debugf("stage=%q video_id=%q shared in-flight result", StageDownload, id)
	}
	return value.(audioResult), nil
}

func captionFailureReason(err error) string {
	switch {
	case errors.Is(err, youtube.ErrTranscriptsDisabled):
		return ReasonTranscriptsDisabled
	case errors.Is(err, youtube.ErrNoTranscriptFound):
		return ""
	}

	captionErr := &youtube.CaptionError{}
	if errors.As(err, &captionErr) && captionErr.Stage == youtube.CaptionStageFallback {
		return reasonOfficialListPrefix + youtubeErrorKind(err)
	}
	return reasonOfficialAPIPrefix + youtubeErrorKind(err)
}

func youtubeErrorKind(err error) string {
	if errors.Is(err, youtube.ErrTooManyRequests) {
		return "TooManyRequests"
	}
	return utils.ErrorKind(err)
}

func downloadReason(err error) string {
	downloadErr := &media.DownloadError{}
	if !errors.As(err, &downloadErr) {
		return reasonDownloaderPrefix + utils.ErrorKind(err)
	}

	switch downloadErr.Reason {
	case media.DownloadToolMissing:
		return ReasonDownloaderMissing
	case media.DownloadFileMissing:
		return ReasonAudioFileMissing
	default:
		return reasonDownloaderPrefix + utils.ErrorKind(downloadErr.Err)
	}
}

func transcribeReason(err error) (FailureKind, string) {
	engineErr := &stt.EngineError{}
	if errors.As(err, &engineErr) && engineErr.Stage == stt.StageLoad {
		return ModelUnavailable, reasonSTTInitPrefix + utils.ErrorKind(engineErr.Err)
	}
	return TranscriptionFailure, reasonSTTTranscribePrefix + utils.ErrorKind(err)
}
