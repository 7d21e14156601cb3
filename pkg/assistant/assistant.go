package assistant

import (
	"context"
	"errors"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/analytics"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/llms/huggingface"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/transcript"
)

var (
	ErrEmptyInput      = errors.New("input is empty")
	ErrMalformedOutput = errors.New("model output is not the expected JSON")
	ErrNoTranscripts   = errors.New("transcript acquisition is not configured")
)

const defaultTemperature = 0.2

// TextAnalyzer runs the hosted summarization and classification models.
type TextAnalyzer interface {
	Summarize(ctx context.Context, text string, opts huggingface.SummaryOptions) (string, error)
	Sentiment(ctx context.Context, text string) (huggingface.Scores, error)
	Emotions(ctx context.Context, text string) (huggingface.Scores, error)
}

type TranscriptSource interface {
	Acquire(ctx context.Context, raw string) transcript.AcquisitionResult
}

// Assistant implements the study features on top of a chat model, the
// inference tasks and the transcript pipeline. Every feature records a usage event.
type Assistant struct {
	chat        Completer
	analyzer    TextAnalyzer
	transcripts TranscriptSource
	usage       analytics.Sink
	temperature float64
}

type Option func(*Assistant)

func WithTranscripts(source TranscriptSource) Option {
	return func(a *Assistant) {
		a.transcripts = source
	}
}

func WithUsage(sink analytics.Sink) Option {
	return func(a *Assistant) {
		if sink != nil {
			a.usage = sink
		}
	}
}

// WithTemperature sets the temperature for plain chat features.
func WithTemperature(value float64) Option {
	return func(a *Assistant) {
		a.temperature = value
	}
}

func New(chat Completer, analyzer TextAnalyzer, opts ...Option) *Assistant {
	a := &Assistant{
		chat:        chat,
		analyzer:    analyzer,
		usage:       analytics.Discard{},
		temperature: defaultTemperature,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Usage reports per-feature event counts.
func (a *Assistant) Usage(ctx context.Context) (analytics.Usage, error) {
	return a.usage.Counts(ctx)
}

func (a *Assistant) Events(ctx context.Context, limit int) ([]analytics.Event, error) {
	return a.usage.Events(ctx, limit)
}

// record never fails the feature; a broken usage log only warns.
func (a *Assistant) record(ctx context.Context, kind analytics.Kind, payload map[string]any) {
	if err := a.usage.Record(ctx, kind, payload); err != nil {
		logging.NewLogger(ctx).Warnf("usage event=%q not recorded: %v", kind, err)
	}
}

func (a *Assistant) complete(ctx context.Context, request ChatRequest) (string, error) {
	text, meta, err := a.chat.Complete(ctx, request)
	if err != nil {
		return "", err
	}
	logging.NewLogger(ctx).Debugf(
		"chat feature=%q provider=%q model=%q latency_ms=%s total_tokens=%s",
		request.Feature,
		meta[model.MetadataKeyProvider],
		meta[model.MetadataKeyModel],
		meta[model.MetadataKeyLatencyMs],
		meta[model.MetadataKeyTotalTokens],
	)
	return text, nil
}
