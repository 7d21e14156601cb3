package gemini

import (
	"context"
	"strings"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
	"google.golang.org/genai"
)

const (
	providerName               = "gemini"
	defaultGenerationModelName = "gemini-2.5-flash"
	jsonMIMEType               = "application/json"
)

func newAPIClient(ctx context.Context, cfg model.GeneratorConfig) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  strings.TrimSpace(cfg.AuthToken),
	}
	if baseURL := strings.TrimSpace(cfg.URL); baseURL != "" {
		clientCfg.HTTPOptions.BaseURL = baseURL
	}
	if cfg.Timeout > 0 {
		timeout := cfg.Timeout
		clientCfg.HTTPOptions.Timeout = &timeout
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return client, nil
}

func applyResponseMetadata(meta model.GenerationMetadata, response *genai.GenerateContentResponse) {
	if response == nil {
		return
	}
	if usage := response.UsageMetadata; usage != nil {
		meta.SetTokenUsage(int64(usage.PromptTokenCount), int64(usage.CandidatesTokenCount), int64(usage.TotalTokenCount))
	}
	meta.Set(model.MetadataKeyResponseID, response.ResponseID)
	if len(response.Candidates) > 0 && response.Candidates[0] != nil {
		meta.Set(model.MetadataKeyResponseStatus, string(response.Candidates[0].FinishReason))
	}
}
