package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

const (
	providerName       = "huggingface"
	defaultModelName   = "Qwen/Qwen2.5-72B-Instruct"
	defaultBaseURL     = "https://router.huggingface.co"
	defaultMaxTokens   = 1024
	defaultHTTPTimeout = 90 * time.Second
)

// apiClient speaks the router's OpenAI-compatible chat completions API.
type apiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
}

func newAPIClient(cfg model.GeneratorConfig) (*apiClient, error) {
	apiKey := strings.TrimSpace(cfg.AuthToken)
	if apiKey == "" {
		return nil, utils.WrapIfNotNil(ErrMissingAPIKey)
	}

	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &apiClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}, nil
}

func (c *apiClient) createChatCompletion(ctx context.Context, request chatCompletionRequest) (*chatCompletionResponse, error) {
	requestBits, err := json.Marshal(request)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(requestBits))
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	defer httpResponse.Body.Close()

	responseBits, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	if httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300 {
		return nil, &APIError{
			Model:      request.Model,
			StatusCode: httpResponse.StatusCode,
			Message:    errorMessage(httpResponse.StatusCode, responseBits),
		}
	}

	var response chatCompletionResponse
	if err := json.Unmarshal(responseBits, &response); err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	if len(response.Choices) == 0 {
		return nil, utils.WrapIfNotNil(errors.New("chat completion returned no choices"))
	}
	return &response, nil
}

func applyChatMetadata(meta model.GenerationMetadata, response *chatCompletionResponse) {
	if response.Usage != nil {
		meta.SetTokenUsage(response.Usage.PromptTokens, response.Usage.CompletionTokens, response.Usage.TotalTokens)
	}
	meta.Set(model.MetadataKeyResponseID, response.ID)
	meta.Set(model.MetadataKeyResponseStatus, response.Choices[0].FinishReason)
	meta.Set(model.MetadataKeyModel, response.Model)
}
