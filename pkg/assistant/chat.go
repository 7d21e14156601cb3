package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/config"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/llms/bedrock"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/llms/gemini"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/llms/huggingface"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/llms/ollama"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/llms/openai"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

// ChatRequest is one system + user exchange.
type ChatRequest struct {
	// Feature tags provider logs and metadata, e.g. "quiz".
	Feature     string
	System      string
	User        string
	JSONMode    bool
	Temperature float64
}

// Completer answers a chat request with the model's text.
type Completer interface {
	Complete(ctx context.Context, request ChatRequest) (string, model.GenerationMetadata, error)
}

// ProviderChat adapts a provider's content generator factory to Completer.
type ProviderChat struct {
	provider     string
	newGenerator model.NewStringContentGeneratorFunc
	opts         []model.GeneratorOption
	// missingKey is returned on use when the provider needs a key that is not configured.
	missingKey error
}

// NewProviderChat builds the chat backend named by cfg.Provider. A missing API
// key is reported when the first request is made, not here.
func NewProviderChat(cfg config.LLMConfig) (*ProviderChat, error) {
	chat, err := providerChat(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.MaxTokens > 0 {
		chat.opts = append(chat.opts, model.WithMaxTokens(cfg.MaxTokens))
	}
	return chat, nil
}

func providerChat(cfg config.LLMConfig) (*ProviderChat, error) {
	switch cfg.Provider {
	case config.ProviderGroq, "":
		chat := newProviderChat(config.ProviderGroq, openai.NewStringContentGenerator, providerOptions(cfg.Groq)...)
		if strings.TrimSpace(cfg.Groq.APIKey) == "" {
			chat.missingKey = errors.New("GROQ_API_KEY is missing. Put it in .env")
		}
		return chat, nil
	case config.ProviderGemini:
		return newProviderChat(cfg.Provider, gemini.NewStringContentGenerator, providerOptions(cfg.Gemini)...), nil
	case config.ProviderOllama:
		return newProviderChat(cfg.Provider, ollama.NewStringContentGenerator, providerOptions(cfg.Ollama)...), nil
	case config.ProviderBedrock:
		return newProviderChat(cfg.Provider, bedrock.NewStringContentGenerator, providerOptions(cfg.Bedrock)...), nil
	case config.ProviderHuggingFace:
		chat := newProviderChat(cfg.Provider, huggingface.NewStringContentGenerator, providerOptions(cfg.HuggingFace)...)
		if strings.TrimSpace(cfg.HuggingFace.APIKey) == "" {
			chat.missingKey = huggingface.ErrMissingAPIKey
		}
		return chat, nil
	default:
		return nil, utils.WrapIfNotNil(fmt.Errorf("unknown LLM provider %q", cfg.Provider))
	}
}

func newProviderChat(provider string, factory model.NewStringContentGeneratorFunc, opts ...model.GeneratorOption) *ProviderChat {
	return &ProviderChat{provider: provider, newGenerator: factory, opts: opts}
}

func providerOptions(cfg config.ProviderConfig) []model.GeneratorOption {
	opts := make([]model.GeneratorOption, 0, 3)
	if value := strings.TrimSpace(cfg.BaseURL); value != "" {
		opts = append(opts, model.WithURL(value))
	}
	if value := strings.TrimSpace(cfg.APIKey); value != "" {
		opts = append(opts, model.WithAuthToken(value))
	}
	if value := strings.TrimSpace(cfg.Model); value != "" {
		opts = append(opts, model.WithModel(value))
	}
	return opts
}

func (c *ProviderChat) Provider() string {
	return c.provider
}

func (c *ProviderChat) Complete(ctx context.Context, request ChatRequest) (string, model.GenerationMetadata, error) {
	if c.missingKey != nil {
		return "", nil, utils.WrapIfNotNil(c.missingKey)
	}

	opts := append([]model.GeneratorOption(nil), c.opts...)
	opts = append(opts,
		model.WithTemperature(request.Temperature),
		model.WithJSONMode(request.JSONMode),
		model.WithFeature(request.Feature),
	)
	generator, err := c.newGenerator(request.User, opts...)
	if err != nil {
		return "", nil, utils.WrapIfNotNil(err)
	}
	if strings.TrimSpace(request.System) != "" {
		generator.AddPromptContext(ctx, model.ContextMessageTypeSystem, request.System)
	}

	text, meta, err := generator.Generate(ctx)
	if err != nil {
		return "", meta, utils.WrapIfNotNil(err)
	}
	return text, meta, nil
}
