package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

type textGenerator struct {
	model.Conversation
	client openai.Client
	prompt string
	cfg    model.GeneratorConfig
}

// NewStringContentGenerator builds a chat-completions generator. Groq is
// reached by pointing WithURL at its OpenAI-compatible base URL.
func NewStringContentGenerator(prompt string, opts ...model.GeneratorOption) (model.ContentGenerator[string], error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, utils.WrapIfNotNil(errors.New("prompt is required"))
	}

	cfg := model.ResolveGeneratorOpts(opts...)
	return &textGenerator{client: newClient(cfg), prompt: prompt, cfg: cfg}, nil
}

func (g *textGenerator) Generate(ctx context.Context) (string, model.GenerationMetadata, error) {
	start := time.Now()
	modelName := g.cfg.ModelOr(defaultModelName)
	meta := model.NewGenerationMetadata(providerName, modelName, g.cfg.Feature)
	defer meta.SetLatency(start)

	log := logging.NewLogger(ctx)
	params := g.chatParams(modelName)
	log.Infof(
		"feature=%q prompt=%q messages=%d model=%q temperature=%v json_mode=%t",
		g.cfg.Feature,
		utils.Truncate(g.prompt, 200),
		len(params.Messages),
		modelName,
		g.cfg.Temperature,
		g.cfg.JSONMode,
	)

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Errorf("feature=%q chat completion failed: %v", g.cfg.Feature, err)
		return "", meta, utils.WrapIfNotNil(err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return "", meta, utils.WrapIfNotNil(errors.New("chat completion returned no choices"))
	}

	meta.SetTokenUsage(completion.Usage.PromptTokens, completion.Usage.CompletionTokens, completion.Usage.TotalTokens)
	meta.Set(model.MetadataKeyResponseID, completion.ID)
	meta.Set(model.MetadataKeyResponseStatus, string(completion.Choices[0].FinishReason))
	return strings.TrimSpace(completion.Choices[0].Message.Content), meta, nil
}

func (g *textGenerator) chatParams(modelName string) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelName),
		Messages: toChatMessages(g.Messages(g.prompt)),
	}
	if g.cfg.Temperature != nil {
		params.Temperature = openai.Float(*g.cfg.Temperature)
	}
	if g.cfg.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*g.cfg.MaxTokens))
	}
	if g.cfg.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return params
}

func toChatMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, message := range messages {
		switch message.Role {
		case "system":
			out = append(out, openai.SystemMessage(message.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(message.Content))
		default:
			out = append(out, openai.UserMessage(message.Content))
		}
	}
	return out
}
