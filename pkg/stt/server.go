package stt

import (
	"context"
	"errors"
	"strings"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/config"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/llms/openai"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

// serverEngine sends audio to an OpenAI-compatible transcription server such
// as faster-whisper-server.
type serverEngine struct {
	opts model.AudioOptions
	// newGenerator is swapped in tests.
	newGenerator func(filePath string, opts model.AudioOptions) (model.AudioTranscriptionGenerator, error)
}

func serverLoader(cfg config.WhisperConfig) Loader {
	return func(ctx context.Context) (Engine, error) {
		if strings.TrimSpace(cfg.ServerURL) == "" {
			return nil, utils.WrapIfNotNil(errors.New("WHISPER_SERVER_URL is required for the openai stt backend"))
		}

		temperature := 0.0
		logging.NewLogger(ctx).Infof("stt backend=openai url=%q model=%q vad=%t", cfg.ServerURL, cfg.ServerModel, cfg.VAD)
		return &serverEngine{
			opts: model.AudioOptions{
				URL:         cfg.ServerURL,
				AuthToken:   cfg.ServerAPIKey,
				Model:       cfg.ServerModel,
				Language:    Language,
				Temperature: &temperature,
				VADFilter:   cfg.VAD,
			},
			newGenerator: openai.NewAudioTranscriptionGenerator,
		}, nil
	}
}

func (e *serverEngine) Transcribe(ctx context.Context, audioPath string) (model.AudioTranscript, error) {
	generator, err := e.newGenerator(audioPath, e.opts)
	if err != nil {
		return model.AudioTranscript{}, utils.WrapIfNotNil(err)
	}

	transcript, meta, err := generator.Generate(ctx)
	if err != nil {
		return model.AudioTranscript{}, utils.WrapIfNotNil(err)
	}

	logging.NewLogger(ctx).Infof(
		"stt file=%q segments=%d latency_ms=%s",
		audioPath, len(transcript.Segments), meta[model.MetadataKeyLatencyMs],
	)
	return transcript, nil
}
