package bedrock

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	bedrocktypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

type textGenerator struct {
	model.Conversation
	prompt string
	cfg    model.GeneratorConfig
	env    envLookup
}

func NewStringContentGenerator(prompt string, opts ...model.GeneratorOption) (model.ContentGenerator[string], error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, utils.WrapIfNotNil(errors.New("prompt is required"))
	}

	return &textGenerator{
		prompt: prompt,
		cfg:    model.ResolveGeneratorOpts(opts...),
	}, nil
}

func (g *textGenerator) Generate(ctx context.Context) (string, model.GenerationMetadata, error) {
	start := time.Now()
	modelName := g.cfg.ModelOr(defaultModelName)
	meta := model.NewGenerationMetadata(providerName, modelName, g.cfg.Feature)
	defer meta.SetLatency(start)

	log := logging.NewLogger(ctx)
	client, err := newClient(ctx, g.cfg, g.env)
	if err != nil {
		log.Errorf("feature=%q bedrock client: %v", g.cfg.Feature, err)
		return "", meta, utils.WrapIfNotNil(err)
	}

	input := g.converseInput(modelName)
	log.Infof(
		"feature=%q prompt=%q messages=%d model=%q temperature=%v json_mode=%t",
		g.cfg.Feature,
		utils.Truncate(g.prompt, 200),
		len(input.Messages),
		modelName,
		g.cfg.Temperature,
		g.cfg.JSONMode,
	)

	output, err := client.Converse(ctx, input)
	if err != nil {
		log.Errorf("feature=%q bedrock converse failed: %v", g.cfg.Feature, err)
		return "", meta, utils.WrapIfNotNil(err)
	}
	applyConverseMetadata(meta, output)

	message, err := extractOutputMessage(output.Output)
	if err != nil {
		return "", meta, utils.WrapIfNotNil(err)
	}
	text := extractTextFromMessage(message)
	if text == "" {
		return "", meta, utils.WrapIfNotNil(errors.New("response output is empty"))
	}
	return text, meta, nil
}

// converseInput maps system messages to Converse system blocks. Converse has
// no JSON mode, so the instruction rides on the prompt instead.
func (g *textGenerator) converseInput(modelName string) *bedrockruntime.ConverseInput {
	prompt := g.prompt
	if g.cfg.JSONMode {
		prompt += "\n\n" + model.JSONModeInstruction
	}
	system, turns := g.SplitSystem(prompt)

	input := &bedrockruntime.ConverseInput{
		ModelId:         aws.String(modelName),
		InferenceConfig: buildInferenceConfig(g.cfg),
	}
	for _, text := range system {
		input.System = append(input.System, &bedrocktypes.SystemContentBlockMemberText{Value: text})
	}
	for _, turn := range turns {
		role := bedrocktypes.ConversationRoleUser
		if turn.Role == "assistant" {
			role = bedrocktypes.ConversationRoleAssistant
		}
		input.Messages = append(input.Messages, textMessage(role, turn.Content))
	}
	return input
}

func textMessage(role bedrocktypes.ConversationRole, text string) bedrocktypes.Message {
	return bedrocktypes.Message{
		Role:    role,
		Content: []bedrocktypes.ContentBlock{&bedrocktypes.ContentBlockMemberText{Value: text}},
	}
}

func buildInferenceConfig(cfg model.GeneratorConfig) *bedrocktypes.InferenceConfiguration {
	if cfg.MaxTokens == nil && cfg.Temperature == nil {
		return nil
	}

	inference := &bedrocktypes.InferenceConfiguration{}
	if cfg.MaxTokens != nil {
		inference.MaxTokens = aws.Int32(int32(*cfg.MaxTokens))
	}
	if cfg.Temperature != nil {
		inference.Temperature = aws.Float32(float32(*cfg.Temperature))
	}
	return inference
}

func extractOutputMessage(output bedrocktypes.ConverseOutput) (bedrocktypes.Message, error) {
	messageOutput, ok := output.(*bedrocktypes.ConverseOutputMemberMessage)
	if !ok || messageOutput == nil {
		return bedrocktypes.Message{}, utils.WrapIfNotNil(errors.New("converse output is not a message"))
	}
	return messageOutput.Value, nil
}

// extractTextFromMessage joins the non-blank text blocks with newlines.
func extractTextFromMessage(message bedrocktypes.Message) string {
	parts := make([]string, 0, len(message.Content))
	for _, block := range message.Content {
		textBlock, ok := block.(*bedrocktypes.ContentBlockMemberText)
		if !ok || textBlock == nil {
			continue
		}
		if value := strings.TrimSpace(textBlock.Value); value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, "\n")
}
