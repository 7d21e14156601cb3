package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/config"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/stretchr/testify/suite"
)

type recordingGenerator struct {
	prompt   string
	cfg      model.GeneratorConfig
	contexts []*model.PromptContext
}

func (g *recordingGenerator) Generate(context.Context) (string, model.GenerationMetadata, error) {
	return "generated", model.GenerationMetadata{model.MetadataKeyProvider: "recording"}, nil
}

func (g *recordingGenerator) AddPromptContext(_ context.Context, messageType model.ContextMessageType, content string) {
	g.contexts = append(g.contexts, &model.PromptContext{MessageType: messageType, Content: content})
}

type ChatSuite struct {
	suite.Suite
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, new(ChatSuite))
}

func (s *ChatSuite) TestCompletePassesOptionsAndSystemPrompt() {
	var generator *recordingGenerator
	factory := func(prompt string, opts ...model.GeneratorOption) (model.ContentGenerator[string], error) {
		generator = &recordingGenerator{prompt: prompt, cfg: model.ResolveGeneratorOpts(opts...)}
		return generator, nil
	}
	chat := newProviderChat("test", factory, providerOptions(config.ProviderConfig{
		BaseURL: " http://llm.local ",
		APIKey:  "key",
		Model:   "tiny",
	})...)

	text, meta, err := chat.Complete(context.Background(), ChatRequest{
		Feature:     "quiz",
		System:      "be brief",
		User:        "hello",
		JSONMode:    true,
		Temperature: 0.4,
	})
	s.Require().NoError(err)
	s.Equal("generated", text)
	s.Equal("recording", meta[model.MetadataKeyProvider])

	s.Equal("hello", generator.prompt)
	s.Equal("http://llm.local", generator.cfg.URL)
	s.Equal("key", generator.cfg.AuthToken)
	s.Equal("tiny", *generator.cfg.Model)
	s.True(generator.cfg.JSONMode)
	s.Equal("quiz", generator.cfg.Feature)
	s.InDelta(0.4, *generator.cfg.Temperature, 1e-9)
	s.Require().Len(generator.contexts, 1)
	s.Equal(model.ContextMessageTypeSystem, generator.contexts[0].MessageType)
}

func (s *ChatSuite) TestBlankSystemPromptIsSkipped() {
	var generator *recordingGenerator
	chat := newProviderChat("test", func(prompt string, opts ...model.GeneratorOption) (model.ContentGenerator[string], error) {
		generator = &recordingGenerator{prompt: prompt}
		return generator, nil
	})

	_, _, err := chat.Complete(context.Background(), ChatRequest{User: "hi"})
	s.Require().NoError(err)
	s.Empty(generator.contexts)
}

func (s *ChatSuite) TestProviderSelection() {
	for _, provider := range []string{
		config.ProviderGroq,
		config.ProviderGemini,
		config.ProviderOllama,
		config.ProviderBedrock,
		config.ProviderHuggingFace,
	} {
		cfg := config.Default().LLM
		cfg.Provider = provider
		chat, err := NewProviderChat(cfg)
		s.Require().NoError(err, provider)
		s.Equal(provider, chat.Provider())
	}

	_, err := NewProviderChat(config.LLMConfig{Provider: "mystery"})
	s.Error(err)
}

func (s *ChatSuite) TestMaxTokensFromConfig() {
	cfg := config.Default().LLM
	cfg.Groq.APIKey = "gsk_test"

	chat, err := NewProviderChat(cfg)
	s.Require().NoError(err)
	s.Nil(model.ResolveGeneratorOpts(chat.opts...).MaxTokens)

	cfg.MaxTokens = 700
	chat, err = NewProviderChat(cfg)
	s.Require().NoError(err)
	resolved := model.ResolveGeneratorOpts(chat.opts...)
	s.Require().NotNil(resolved.MaxTokens)
	s.Equal(700, *resolved.MaxTokens)
}

func (s *ChatSuite) TestMissingGroqKeyFailsOnUse() {
	cfg := config.Default().LLM
	chat, err := NewProviderChat(cfg)
	s.Require().NoError(err)

	_, _, err = chat.Complete(context.Background(), ChatRequest{User: "hi"})
	s.Require().Error(err)
	s.Contains(err.Error(), "GROQ_API_KEY is missing. Put it in .env")
}

func (s *ChatSuite) TestGroqChatCompletionRoundTrip() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/chat/completions", r.URL.Path)
		s.Equal("Bearer gsk_test", r.Header.Get("Authorization"))

		var payload struct {
			Model          string `json:"model"`
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		s.NoError(json.NewDecoder(r.Body).Decode(&payload))
		s.Equal("llama-3.1-8b-instant", payload.Model)
		s.Equal("json_object", payload.ResponseFormat.Type)
		s.Require().Len(payload.Messages, 2)
		s.Equal("system", payload.Messages[0].Role)
		s.Equal("user", payload.Messages[1].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "llama-3.1-8b-instant",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"topic\":\"Sets\",\"questions\":[]}"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	cfg := config.Default().LLM
	cfg.Groq.BaseURL = server.URL
	cfg.Groq.APIKey = "gsk_test"
	chat, err := NewProviderChat(cfg)
	s.Require().NoError(err)

	text, meta, err := chat.Complete(context.Background(), ChatRequest{
		System:   "You are a strict quiz generator.",
		User:     "quiz please",
		JSONMode: true,
	})
	s.Require().NoError(err)
	s.Equal(`{"topic":"Sets","questions":[]}`, text)
	s.Equal("15", meta[model.MetadataKeyTotalTokens])
}

type EvaluationSuite struct {
	suite.Suite
}

func TestEvaluationSuite(t *testing.T) {
	suite.Run(t, new(EvaluationSuite))
}

func (s *EvaluationSuite) TestScoreQuiz() {
	s.Equal(QuizScore{Correct: 2, Total: 3, Accuracy: 0.667}, ScoreQuiz([]int{1, 2, 0}, []int{1, 2, 3}))
	s.Equal(QuizScore{Correct: 1, Total: 2, Accuracy: 0.5}, ScoreQuiz([]int{0}, []int{0, 1}))
	s.Equal(QuizScore{Correct: 1, Total: 1, Accuracy: 1}, ScoreQuiz([]int{3, 3}, []int{3}))
	s.Equal(QuizScore{}, ScoreQuiz(nil, nil))
}

func (s *EvaluationSuite) TestRouge() {
	identical := Rouge("The cat sat.", "the CAT sat")
	s.Equal(RougeScores{Rouge1: 1, RougeL: 1}, identical)

	// reference: the cat sat on the mat (6); candidate: the cat on mat (4)
	// overlap 4: p=1, r=4/6 -> f=0.8; lcs 4 -> 0.8
	scores := Rouge("the cat sat on the mat", "the cat on mat")
	s.InDelta(0.8, scores.Rouge1, 1e-9)
	s.InDelta(0.8, scores.RougeL, 1e-9)

	// order matters only for rougeL: lcs of "a b c" vs "c b a" is 1
	reversed := Rouge("a b c", "c b a")
	s.Equal(1.0, reversed.Rouge1)
	s.InDelta(0.3333, reversed.RougeL, 1e-9)

	s.Equal(RougeScores{}, Rouge("", "text"))
	s.Equal(RougeScores{}, Rouge("text", "!!!"))
}

func (s *EvaluationSuite) TestReadingTime() {
	s.Equal("~1 min read · 1 words", ReadingTime(""))
	s.Equal("~3 min read · 500 words", ReadingTime(strings.Repeat("w ", 500)))
}
