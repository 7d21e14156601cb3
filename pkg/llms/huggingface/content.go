package huggingface

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

type textGenerator struct {
	model.Conversation
	client *apiClient
	prompt string
	cfg    model.GeneratorConfig
}

func NewStringContentGenerator(prompt string, opts ...model.GeneratorOption) (model.ContentGenerator[string], error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, utils.WrapIfNotNil(errors.New("prompt is required"))
	}

	cfg := model.ResolveGeneratorOpts(opts...)
	client, err := newAPIClient(cfg)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return &textGenerator{client: client, prompt: prompt, cfg: cfg}, nil
}

func (g *textGenerator) Generate(ctx context.Context) (string, model.GenerationMetadata, error) {
	start := time.Now()
	modelName := g.cfg.ModelOr(defaultModelName)
	meta := model.NewGenerationMetadata(providerName, modelName, g.cfg.Feature)
	defer meta.SetLatency(start)

	request := g.chatRequest(modelName)
	log := logging.NewLogger(ctx)
	log.Infof(
		"feature=%q prompt=%q messages=%d model=%q temperature=%v json_mode=%t",
		g.cfg.Feature,
		utils.Truncate(g.prompt, 200),
		len(request.Messages),
		modelName,
		g.cfg.Temperature,
		g.cfg.JSONMode,
	)

	response, err := g.client.createChatCompletion(ctx, request)
	if err != nil {
		log.Errorf("feature=%q huggingface chat failed: %v", g.cfg.Feature, err)
		return "", meta, utils.WrapIfNotNil(err)
	}
	applyChatMetadata(meta, response)

	text := strings.TrimSpace(response.Choices[0].Message.Content)
	if text == "" {
		return "", meta, utils.WrapIfNotNil(errors.New("response output is empty"))
	}
	return text, meta, nil
}

func (g *textGenerator) chatRequest(modelName string) chatCompletionRequest {
	messages := g.Messages(g.prompt)
	request := chatCompletionRequest{
		Model:       modelName,
		Messages:    make([]chatMessage, 0, len(messages)),
		MaxTokens:   defaultMaxTokens,
		Temperature: g.cfg.Temperature,
	}
	for _, message := range messages {
		request.Messages = append(request.Messages, chatMessage{Role: message.Role, Content: message.Content})
	}
	if g.cfg.MaxTokens != nil && *g.cfg.MaxTokens > 0 {
		request.MaxTokens = *g.cfg.MaxTokens
	}
	if g.cfg.JSONMode {
		request.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return request
}
