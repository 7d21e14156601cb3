package openai

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"
)

const defaultAudioTranscriptionModelName = "whisper-1"

type audioTranscriptionGenerator struct {
	client   openai.Client
	filePath string
	opts     model.AudioOptions
}

// NewAudioTranscriptionGenerator transcribes filePath through
// /audio/transcriptions, asking for verbose JSON so segments come back.
func NewAudioTranscriptionGenerator(
	filePath string,
	opts model.AudioOptions,
) (model.AudioTranscriptionGenerator, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, utils.WrapIfNotNil(errors.New("file path is required"))
	}

	return &audioTranscriptionGenerator{
		client:   newClient(audioGeneratorConfigFromOptions(opts)),
		filePath: filePath,
		opts:     cloneAudioOptions(opts),
	}, nil
}

func (g *audioTranscriptionGenerator) Generate(ctx context.Context) (model.AudioTranscript, model.GenerationMetadata, error) {
	start := time.Now()
	modelName := resolveAudioTranscriptionModelName(g.opts)
	meta := model.NewGenerationMetadata(providerName, modelName, "transcription")
	defer meta.SetLatency(start)

	log := logging.NewLogger(ctx)
	log.Infof("audio_transcription_request model=%q language=%q vad_filter=%t file=%q", modelName, g.opts.Language, g.opts.VADFilter, g.filePath)

	transcript, response, err := g.runAudioTranscription(ctx, g.filePath, g.opts)
	if err != nil {
		log.Errorf("error: %v", err)
		return model.AudioTranscript{}, meta, utils.WrapIfNotNil(err)
	}

	applyAudioTranscriptionMetadata(meta, response)
	return transcript, meta, nil
}

func (g *audioTranscriptionGenerator) runAudioTranscription(
	ctx context.Context,
	filePath string,
	opts model.AudioOptions,
) (model.AudioTranscript, *openai.AudioTranscriptionNewResponseUnion, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return model.AudioTranscript{}, nil, utils.WrapIfNotNil(err)
	}
	defer func() {
		_ = file.Close()
	}()

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(resolveAudioTranscriptionModelName(opts)),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}
	if lang := strings.TrimSpace(opts.Language); lang != "" {
		params.Language = param.NewOpt(lang)
	}
	if opts.Temperature != nil {
		params.Temperature = param.NewOpt(*opts.Temperature)
	}
	if opts.VADFilter {
		// faster-whisper-server reads vad_filter; multipart extras must be strings.
		params.SetExtraFields(map[string]any{"vad_filter": "true"})
	}

	response, err := g.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return model.AudioTranscript{}, nil, utils.WrapIfNotNil(err)
	}
	if response == nil {
		return model.AudioTranscript{}, nil, utils.WrapIfNotNil(errors.New("audio transcriptions API returned nil response"))
	}

	segments := make([]model.AudioSegment, 0, len(response.Segments))
	for _, segment := range response.Segments {
		segments = append(segments, model.AudioSegment{
			Start: segment.Start,
			End:   segment.End,
			Text:  segment.Text,
		})
	}

	return model.AudioTranscript{
		Text:     strings.TrimSpace(response.Text),
		Segments: segments,
	}, response, nil
}

func resolveAudioTranscriptionModelName(opts model.AudioOptions) string {
	if modelName := strings.TrimSpace(opts.Model); modelName != "" {
		return modelName
	}
	return defaultAudioTranscriptionModelName
}

func audioGeneratorConfigFromOptions(opts model.AudioOptions) model.GeneratorConfig {
	cfg := model.GeneratorConfig{
		URL:       opts.URL,
		AuthToken: opts.AuthToken,
	}
	if modelName := strings.TrimSpace(opts.Model); modelName != "" {
		cfg.Model = &modelName
	}
	return cfg
}

func cloneAudioOptions(opts model.AudioOptions) model.AudioOptions {
	cloned := opts
	if opts.Temperature != nil {
		temperature := *opts.Temperature
		cloned.Temperature = &temperature
	}
	return cloned
}

func applyAudioTranscriptionMetadata(meta model.GenerationMetadata, response *openai.AudioTranscriptionNewResponseUnion) {
	if meta == nil || response == nil {
		return
	}

	if response.Usage.TotalTokens > 0 {
		meta.SetTokenUsage(response.Usage.InputTokens, response.Usage.OutputTokens, response.Usage.TotalTokens)
	}
}
