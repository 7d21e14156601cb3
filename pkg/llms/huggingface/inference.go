package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/config"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

const (
	defaultInferenceURL     = "https://api-inference.huggingface.co"
	defaultInferenceTimeout = 25 * time.Second
	loadingRetryDelay       = 2 * time.Second
)

var ErrMissingAPIKey = errors.New("HF_API_KEY is missing. Put it in .env")

// APIError is a non-success response from the inference API.
type APIError struct {
	Model      string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HuggingFace API error for '%s': %s", e.Model, e.Message)
}

// loading reports a cold model, which the API signals with 503 and a "loading" message.
func (e *APIError) loading() bool {
	return e.StatusCode == http.StatusServiceUnavailable &&
		utils.ContainsErrorSubstring(e, "loading")
}

func (e *APIError) Kind() string {
	if e.StatusCode == http.StatusTooManyRequests {
		return "TooManyRequests"
	}
	return "HTTPError"
}

// Scores maps lower-cased classifier labels to their scores.
type Scores map[string]float64

// Top returns the highest scoring label; ties go to the alphabetically first label.
func (s Scores) Top() (string, bool) {
	if len(s) == 0 {
		return "", false
	}
	labels := make([]string, 0, len(s))
	for label := range s {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	best := labels[0]
	for _, label := range labels[1:] {
		if s[label] > s[best] {
			best = label
		}
	}
	return best, true
}

type SummaryOptions struct {
	MinLength int
	MaxLength int
}

// InferenceClient calls hosted task models: summarization and text classification.
type InferenceClient struct {
	httpClient         *http.Client
	baseURL            string
	apiKey             string
	summarizationModel string
	sentimentModel     string
	emotionModel       string
	retryDelay         time.Duration
}

type InferenceOption func(*InferenceClient)

func WithInferenceHTTPClient(client *http.Client) InferenceOption {
	return func(c *InferenceClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func withRetryDelay(delay time.Duration) InferenceOption {
	return func(c *InferenceClient) {
		c.retryDelay = delay
	}
}

func NewInferenceClient(cfg config.HFConfig, opts ...InferenceOption) *InferenceClient {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = defaultInferenceTimeout
	}
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.InferenceURL), "/")
	if baseURL == "" {
		baseURL = defaultInferenceURL
	}

	c := &InferenceClient{
		httpClient:         &http.Client{Timeout: timeout},
		baseURL:            baseURL,
		apiKey:             strings.TrimSpace(cfg.APIKey),
		summarizationModel: cfg.SummarizationModel,
		sentimentModel:     cfg.SentimentModel,
		emotionModel:       cfg.EmotionModel,
		retryDelay:         loadingRetryDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type inferenceRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Summarize runs the summarization model with sampling disabled.
func (c *InferenceClient) Summarize(ctx context.Context, text string, opts SummaryOptions) (string, error) {
	body, err := c.request(ctx, c.summarizationModel, inferenceRequest{
		Inputs: text,
		Parameters: map[string]any{
			"max_length": opts.MaxLength,
			"min_length": opts.MinLength,
			"do_sample":  false,
		},
	})
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	return summaryText(body), nil
}

func (c *InferenceClient) Sentiment(ctx context.Context, text string) (Scores, error) {
	body, err := c.request(ctx, c.sentimentModel, inferenceRequest{Inputs: text})
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return classificationScores(body), nil
}

func (c *InferenceClient) Emotions(ctx context.Context, text string) (Scores, error) {
	body, err := c.request(ctx, c.emotionModel, inferenceRequest{
		Inputs:     text,
		Parameters: map[string]any{"return_all_scores": true},
	})
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return classificationScores(body), nil
}

// request posts payload to the model. A cold model answering 503 "loading"
// gets exactly one more attempt after a short pause.
func (c *InferenceClient) request(ctx context.Context, modelID string, payload inferenceRequest) ([]byte, error) {
	if c.apiKey == "" {
		return nil, utils.WrapIfNotNil(ErrMissingAPIKey)
	}
	requestBits, err := json.Marshal(payload)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	status, body, err := c.post(ctx, modelID, requestBits)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	if apiErr := checkStatus(modelID, status, body); apiErr != nil && apiErr.loading() {
		logging.NewLogger(ctx).Infof("huggingface model=%q is loading; retrying in %s", modelID, c.retryDelay)
		select {
		case <-ctx.Done():
			return nil, utils.WrapIfNotNil(ctx.Err())
		case <-time.After(c.retryDelay):
		}
		status, body, err = c.post(ctx, modelID, requestBits)
		if err != nil {
			return nil, utils.WrapIfNotNil(err)
		}
	}

	if apiErr := checkStatus(modelID, status, body); apiErr != nil {
		return nil, apiErr
	}
	return body, nil
}

func checkStatus(modelID string, status int, body []byte) *APIError {
	if status >= 200 && status < 300 {
		return nil
	}
	return &APIError{Model: modelID, StatusCode: status, Message: errorMessage(status, body)}
}

func (c *InferenceClient) post(ctx context.Context, modelID string, requestBits []byte) (int, []byte, error) {
	httpRequest, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/models/"+modelID,
		bytes.NewReader(requestBits),
	)
	if err != nil {
		return 0, nil, err
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return 0, nil, err
	}
	defer httpResponse.Body.Close()

	body, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return 0, nil, err
	}
	return httpResponse.StatusCode, body, nil
}

func errorMessage(status int, body []byte) string {
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return strings.TrimSpace(string(body))
	}
	switch message := decoded["error"].(type) {
	case string:
		return message
	case map[string]any:
		// chat completions nest it: {"error":{"message":...}}
		if text, ok := message["message"].(string); ok && text != "" {
			return text
		}
		return fmt.Sprint(message)
	case nil:
	default:
		return fmt.Sprint(message)
	}
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}

func summaryText(body []byte) string {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return strings.TrimSpace(string(body))
	}

	switch value := decoded.(type) {
	case []any:
		if len(value) > 0 {
			if first, ok := value[0].(map[string]any); ok {
				if text, ok := first["summary_text"].(string); ok {
					return text
				}
			}
		}
	case map[string]any:
		if text, ok := value["generated_text"].(string); ok {
			return text
		}
	}
	return strings.TrimSpace(string(body))
}

// classificationScores accepts both [{label,score}] and [[{label,score}]].
func classificationScores(body []byte) Scores {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Scores{}
	}

	scores := Scores{}
	for _, item := range unwrapItems(decoded) {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		label, hasLabel := entry["label"].(string)
		score, hasScore := entry["score"].(float64)
		if !hasLabel || !hasScore {
			continue
		}
		scores[strings.ToLower(label)] = score
	}
	return scores
}

func unwrapItems(decoded any) []any {
	items, ok := decoded.([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	if nested, ok := items[0].([]any); ok {
		return nested
	}
	return items
}
