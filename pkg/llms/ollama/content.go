package ollama

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
	ollamasdk "github.com/rozoomcool/go-ollama-sdk"
)

type textGenerator struct {
	model.Conversation
	client *client
	prompt string
	cfg    model.GeneratorConfig
}

func NewStringContentGenerator(prompt string, opts ...model.GeneratorOption) (model.ContentGenerator[string], error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, utils.WrapIfNotNil(errors.New("prompt is required"))
	}

	cfg := model.ResolveGeneratorOpts(opts...)
	return &textGenerator{
		client: newClient(cfg),
		prompt: prompt,
		cfg:    cfg,
	}, nil
}

func (g *textGenerator) Generate(ctx context.Context) (string, model.GenerationMetadata, error) {
	start := time.Now()
	modelName := g.cfg.ModelOr(defaultGenerationModelName)
	meta := model.NewGenerationMetadata(providerName, modelName, g.cfg.Feature)
	defer meta.SetLatency(start)

	log := logging.NewLogger(ctx)
	messages := g.Messages(g.prompt)
	log.Infof(
		"feature=%q prompt=%q messages=%d model=%q json_mode=%t base_url=%q",
		g.cfg.Feature,
		utils.Truncate(g.prompt, 200),
		len(messages),
		modelName,
		g.cfg.JSONMode,
		g.client.baseURL,
	)

	var (
		text string
		err  error
	)
	if usesPlainChat(g.cfg) {
		text, err = g.client.apiClient.Chat(modelName, toSDKMessages(messages))
	} else {
		text, err = g.chatWithOptions(ctx, modelName, messages, meta)
	}
	if err != nil {
		log.Errorf("feature=%q ollama chat failed: %v", g.cfg.Feature, err)
		return "", meta, utils.WrapIfNotNil(err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", meta, utils.WrapIfNotNil(errors.New("response output is empty"))
	}
	return text, meta, nil
}

func (g *textGenerator) chatWithOptions(
	ctx context.Context,
	modelName string,
	messages []model.Message,
	meta model.GenerationMetadata,
) (string, error) {
	request := chatRequest{
		Model:    modelName,
		Messages: toChatMessages(messages),
		Options:  buildChatOptions(g.cfg),
	}
	if g.cfg.JSONMode {
		request.Format = "json"
	}

	response, err := g.client.chat(ctx, request)
	if err != nil {
		return "", err
	}
	meta.SetTokenUsage(response.PromptEvalCount, response.EvalCount, 0)
	meta.Set(model.MetadataKeyResponseStatus, response.DoneReason)
	return response.Message.Content, nil
}

// usesPlainChat reports whether the SDK's option-less chat can serve the request.
func usesPlainChat(cfg model.GeneratorConfig) bool {
	return !cfg.JSONMode && cfg.Temperature == nil && cfg.MaxTokens == nil
}

func toSDKMessages(messages []model.Message) []ollamasdk.ChatMessage {
	out := make([]ollamasdk.ChatMessage, 0, len(messages))
	for _, message := range messages {
		out = append(out, ollamasdk.ChatMessage{Role: message.Role, Content: message.Content})
	}
	return out
}

func toChatMessages(messages []model.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, message := range messages {
		out = append(out, chatMessage{Role: message.Role, Content: message.Content})
	}
	return out
}

func buildChatOptions(cfg model.GeneratorConfig) *chatOptions {
	if cfg.Temperature == nil && cfg.MaxTokens == nil {
		return nil
	}

	options := &chatOptions{}
	if cfg.Temperature != nil {
		temperature := *cfg.Temperature
		options.Temperature = &temperature
	}
	if cfg.MaxTokens != nil {
		numPredict := *cfg.MaxTokens
		options.NumPredict = &numPredict
	}
	return options
}
