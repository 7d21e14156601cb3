package assistant

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/analytics"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/llms/huggingface"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/transcript"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
	"golang.org/x/sync/errgroup"
)

const (
	// EmptySummaryMessage is returned in place of a summary for blank input.
	EmptySummaryMessage = "Please provide text to summarize."

	defaultMinLength = 50
	defaultMaxLength = 220

	singlePassLimit  = 3500
	chunkLimit       = 3000
	chunkConcurrency = 3
	wordsPerMinute   = 200.0
)

type SummaryOptions struct {
	MinLength int `json:"min_length"`
	MaxLength int `json:"max_length"`
}

func (o SummaryOptions) resolve() huggingface.SummaryOptions {
	opts := huggingface.SummaryOptions{MinLength: o.MinLength, MaxLength: o.MaxLength}
	if opts.MinLength <= 0 {
		opts.MinLength = defaultMinLength
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = defaultMaxLength
	}
	if opts.MinLength > opts.MaxLength {
		opts.MinLength = opts.MaxLength
	}
	return opts
}

// Summarize condenses text. Blank text yields EmptySummaryMessage.
func (a *Assistant) Summarize(ctx context.Context, text string, opts SummaryOptions) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return EmptySummaryMessage, nil
	}

	summary, err := a.smartSummarize(ctx, text, opts.resolve())
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	a.record(ctx, analytics.KindSummaries, map[string]any{"chars": len(text)})
	return summary, nil
}

// smartSummarize summarizes short text in one pass. Longer text is split on
// sentence boundaries, each chunk summarized, and the joined partials
// summarized once more.
func (a *Assistant) smartSummarize(ctx context.Context, text string, opts huggingface.SummaryOptions) (string, error) {
	if len(text) <= singlePassLimit {
		return a.analyzer.Summarize(ctx, text, opts)
	}

	chunks := chunkSentences(text, chunkLimit)
	partials := make([]string, len(chunks))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(chunkConcurrency)
	for i, chunk := range chunks {
		group.Go(func() error {
			partial, err := a.analyzer.Summarize(groupCtx, chunk, opts)
			if err != nil {
				return err
			}
			partials[i] = partial
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return "", utils.WrapIfNotNil(err)
	}

	return a.analyzer.Summarize(ctx, strings.Join(partials, " "), opts)
}

// chunkSentences groups ". "-separated sentences into chunks of at most limit
// bytes. A single longer sentence forms its own chunk.
func chunkSentences(text string, limit int) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var (
		chunks []string
		acc    []string
		accLen int
	)
	for _, sentence := range strings.Split(text, ". ") {
		if !strings.HasSuffix(sentence, ".") {
			sentence += "."
		}
		if accLen+len(sentence) > limit && len(acc) > 0 {
			chunks = append(chunks, strings.Join(acc, " "))
			acc, accLen = nil, 0
		}
		acc = append(acc, sentence)
		accLen += len(sentence)
	}
	if len(acc) > 0 {
		chunks = append(chunks, strings.Join(acc, " "))
	}
	return chunks
}

// ReadingTime estimates reading time at 200 words per minute.
func ReadingTime(text string) string {
	words := len(strings.Fields(text))
	if words < 1 {
		words = 1
	}
	minutes := int(math.Round(float64(words) / wordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("~%d min read · %d words", minutes, words)
}

type VideoSummary struct {
	Transcript  transcript.AcquisitionResult `json:"transcript"`
	Summary     string                       `json:"summary,omitempty"`
	ReadingTime string                       `json:"reading_time,omitempty"`
}

// TranscriptUnavailableError carries the failed acquisition.
type TranscriptUnavailableError struct {
	Result transcript.AcquisitionResult
}

func (e *TranscriptUnavailableError) Error() string {
	return e.Result.Message()
}

// Transcript acquires the transcript for a video reference and records it.
func (a *Assistant) Transcript(ctx context.Context, raw string) (transcript.AcquisitionResult, error) {
	if a.transcripts == nil {
		return transcript.AcquisitionResult{}, utils.WrapIfNotNil(ErrNoTranscripts)
	}
	result := a.transcripts.Acquire(ctx, raw)
	if !result.OK() {
		return result, &TranscriptUnavailableError{Result: result}
	}
	a.record(ctx, analytics.KindTranscripts, map[string]any{
		"source":  "youtube",
		"len":     len(result.Text),
		"stage":   string(result.Source),
		"video_id":string(result.VideoID),
	})
	return result, nil
}

// SummarizeVideo acquires a transcript and summarizes it.
func (a *Assistant) SummarizeVideo(ctx context.Context, raw string, opts SummaryOptions) (VideoSummary, error) {
	result, err := a.Transcript(ctx, raw)
	if err != nil {
		return VideoSummary{Transcript: result}, err
	}

	summary, err := a.smartSummarize(ctx, result.Text, opts.resolve())
	if err != nil {
		return VideoSummary{Transcript: result}, utils.WrapIfNotNil(err)
	}
	a.record(ctx, analytics.KindSummaries, map[string]any{"chars": len(result.Text), "source": "youtube"})
	return VideoSummary{
		Transcript:  result,
		Summary:     summary,
		ReadingTime: ReadingTime(result.Text),
	}, nil
}
