package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
	ollamasdk "github.com/rozoomcool/go-ollama-sdk"
)

const (
	providerName               = "ollama"
	defaultGenerationModelName = "llama3.1"
	defaultBaseURL             = "http://localhost:11434"
	defaultHTTPTimeout         = 180 * time.Second
)

// client pairs the SDK, used for plain chats, with a raw /api/chat caller
// for requests that need JSON format or sampling options the SDK lacks.
type client struct {
	apiClient  *ollamasdk.OllamaClient
	httpClient *http.Client
	baseURL    string
}

func newClient(cfg model.GeneratorConfig) *client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &client{
		apiClient:  ollamasdk.NewClient(baseURL),
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
}

type chatOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  *int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Model           string      `json:"model"`
	Message         chatMessage `json:"message"`
	DoneReason      string      `json:"done_reason,omitempty"`
	PromptEvalCount int64       `json:"prompt_eval_count,omitempty"`
	EvalCount       int64       `json:"eval_count,omitempty"`
	Error           string      `json:"error,omitempty"`
}

func (c *client) chat(ctx context.Context, request chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Accept", "application/json")

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	defer httpResponse.Body.Close()

	rawBody, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	var response chatResponse
	decodeErr := json.Unmarshal(rawBody, &response)
	if httpResponse.StatusCode < http.StatusOK || httpResponse.StatusCode >= http.StatusMultipleChoices {
		message := strings.TrimSpace(response.Error)
		if decodeErr != nil || message == "" {
			message = strings.TrimSpace(string(rawBody))
		}
		return nil, utils.WrapIfNotNil(fmt.Errorf("ollama chat request failed with status %d: %s", httpResponse.StatusCode, message))
	}
	if decodeErr != nil {
		return nil, utils.WrapIfNotNil(decodeErr)
	}
	if message := strings.TrimSpace(response.Error); message != "" {
		return nil, utils.WrapIfNotNil(errors.New(message))
	}
	return &response, nil
}
