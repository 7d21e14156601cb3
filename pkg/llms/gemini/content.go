package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
	"google.golang.org/genai"
)

type textGenerator struct {
	model.Conversation
	prompt string
	cfg    model.GeneratorConfig
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
	modelName := g.cfg.ModelOr(defaultGenerationModelName)
	meta := model.NewGenerationMetadata(providerName, modelName, g.cfg.Feature)
	defer meta.SetLatency(start)

	log := logging.NewLogger(ctx)
	system, turns := g.SplitSystem(g.prompt)
	client, err := newAPIClient(ctx, g.cfg)
	if err != nil {
		log.Errorf("feature=%q gemini client: %v", g.cfg.Feature, err)
		return "", meta, utils.WrapIfNotNil(err)
	}

	log.Infof(
		"feature=%q prompt=%q turns=%d model=%q temperature=%v json_mode=%t",
		g.cfg.Feature,
		utils.Truncate(g.prompt, 200),
		len(turns),
		modelName,
		g.cfg.Temperature,
		g.cfg.JSONMode,
	)

	response, err := client.Models.GenerateContent(ctx, modelName, toContents(turns), buildGenerateContentConfig(g.cfg, system))
	if err != nil {
		log.Errorf("feature=%q gemini generate failed: %v", g.cfg.Feature, err)
		return "", meta, utils.WrapIfNotNil(err)
	}
	applyResponseMetadata(meta, response)

	text := strings.TrimSpace(response.Text())
	if text == "" {
		return "", meta, utils.WrapIfNotNil(errors.New("response output is empty"))
	}
	return text, meta, nil
}

func toContents(turns []model.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		role := genai.Role(genai.RoleUser)
		if turn.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	return contents
}

// buildGenerateContentConfig folds all system messages into one instruction.
func buildGenerateContentConfig(cfg model.GeneratorConfig, system []string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	if cfg.Temperature != nil {
		temperature := float32(*cfg.Temperature)
		config.Temperature = &temperature
	}
	if cfg.MaxTokens != nil {
		config.MaxOutputTokens = int32(*cfg.MaxTokens)
	}
	if cfg.JSONMode {
		config.ResponseMIMEType = jsonMIMEType
	}
	return config
}
