package openai

import (
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultModelName = "gpt-4o-mini"
	providerName     = "openai"
)

// newClient builds an SDK client for any OpenAI-compatible API: OpenAI
// itself, Groq, or a local faster-whisper server.
func newClient(cfg model.GeneratorConfig) openai.Client {
	requestOpts := make([]option.RequestOption, 0, 3)
	if cfg.URL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(cfg.URL))
	}
	if cfg.AuthToken != "" {
		requestOpts = append(requestOpts, option.WithAPIKey(cfg.AuthToken))
	}
	if cfg.Timeout > 0 {
		requestOpts = append(requestOpts, option.WithRequestTimeout(cfg.Timeout))
	}
	return openai.NewClient(requestOpts...)
}
