package model

import (
	"context"
	"time"
)

// NewStringContentGeneratorFunc is the factory every chat provider exposes.
type NewStringContentGeneratorFunc func(prompt string, opts ...GeneratorOption) (ContentGenerator[string], error)

// ContentGenerator runs one prompt, optionally preceded by context messages.
type ContentGenerator[T any] interface {
	Generate(ctx context.Context) (T, GenerationMetadata, error)
	AddPromptContext(ctx context.Context, messageType ContextMessageType, content string)
}

type ContextMessageType string

const (
	ContextMessageTypeSystem    ContextMessageType = "system"    // persona and task instructions
	ContextMessageTypeAssistant ContextMessageType = "assistant" // earlier assistant turns
)

// Role is the chat-completions role for the message type.
func (t ContextMessageType) Role() string {
	switch t {
	case ContextMessageTypeSystem:
		return "system"
	case ContextMessageTypeAssistant:
		return "assistant"
	default:
		return "user"
	}
}

type GeneratorOption interface {
	apply(*GeneratorConfig)
}

type generatorOptionFunc func(*GeneratorConfig)

func (f generatorOptionFunc) apply(cfg *GeneratorConfig) {
	f(cfg)
}

type GeneratorConfig struct {
	URL         string
	AuthToken   string
	Temperature *float64
	MaxTokens   *int
	Model       *string
	// JSONMode asks the provider for a single JSON object as output.
	JSONMode bool
	Timeout  time.Duration
	// Feature names the study feature the call serves; it is logged and echoed in metadata.
	Feature string
}

func ResolveGeneratorOpts(opts ...GeneratorOption) GeneratorConfig {
	cfg := GeneratorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}
	return cfg
}

// ModelOr returns the configured model name, or fallback when none is set.
func (c GeneratorConfig) ModelOr(fallback string) string {
	if c.Model != nil && *c.Model != "" {
		return *c.Model
	}
	return fallback
}

func WithURL(value string) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.URL = value
	})
}

func WithAuthToken(value string) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.AuthToken = value
	})
}

func WithTemperature(value float64) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.Temperature = &value
	})
}

func WithMaxTokens(value int) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.MaxTokens = &value
	})
}

func WithModel(value string) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.Model = &value
	})
}

func WithJSONMode(value bool) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.JSONMode = value
	})
}

func WithTimeout(value time.Duration) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.Timeout = value
	})
}

func WithFeature(value string) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.Feature = value
	})
}

// JSONModeInstruction is appended to the prompt by providers without a native JSON mode.
const JSONModeInstruction = "Return ONLY valid JSON. Do not include markdown fences or commentary."
