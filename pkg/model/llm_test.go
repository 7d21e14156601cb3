package model

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type GeneratorOptionsSuite struct {
	suite.Suite
}

func TestGeneratorOptionsSuite(t *testing.T) {
	suite.Run(t, new(GeneratorOptionsSuite))
}

func (s *GeneratorOptionsSuite) TestResolveGeneratorOptsAppliesAll() {
	cfg := ResolveGeneratorOpts(
		WithURL("https://api.groq.com/openai/v1"),
		WithAuthToken("gsk_test"),
		WithTemperature(0.2),
		WithMaxTokens(512),
		WithModel("llama-3.1-8b-instant"),
		WithJSONMode(true),
		WithTimeout(25*time.Second),
		nil,
	)

	s.Equal("https://api.groq.com/openai/v1", cfg.URL)
	s.Equal("gsk_test", cfg.AuthToken)
	s.Require().NotNil(cfg.Temperature)
	s.InDelta(0.2, *cfg.Temperature, 1e-9)
	s.Require().NotNil(cfg.MaxTokens)
	s.Equal(512, *cfg.MaxTokens)
	s.Require().NotNil(cfg.Model)
	s.Equal("llama-3.1-8b-instant", *cfg.Model)
	s.True(cfg.JSONMode)
	s.Equal(25*time.Second, cfg.Timeout)
}

func (s *GeneratorOptionsSuite) TestResolveGeneratorOptsEmpty() {
	cfg := ResolveGeneratorOpts()
	s.Nil(cfg.Temperature)
	s.Nil(cfg.Model)
	s.False(cfg.JSONMode)
}

func (s *GeneratorOptionsSuite) TestLaterOptionWins() {
	cfg := ResolveGeneratorOpts(WithTemperature(0.9), WithTemperature(0.1))
	s.InDelta(0.1, *cfg.Temperature, 1e-9)
}

func (s *GeneratorOptionsSuite) TestFeatureAndModelFallback() {
	cfg := ResolveGeneratorOpts(WithFeature("quiz"))
	s.Equal("quiz", cfg.Feature)
	s.Equal("llama3.1", cfg.ModelOr("llama3.1"))

	cfg = ResolveGeneratorOpts(WithModel(""))
	s.Equal("fallback", cfg.ModelOr("fallback"))
	s.Equal("tiny", ResolveGeneratorOpts(WithModel("tiny")).ModelOr("fallback"))
}

type ConversationSuite struct {
	suite.Suite
}

func TestConversationSuite(t *testing.T) {
	suite.Run(t, new(ConversationSuite))
}

func (s *ConversationSuite) TestMessagesKeepOrderAndDropBlank() {
	var conversation Conversation
	ctx := context.Background()
	conversation.AddPromptContext(ctx, ContextMessageTypeSystem, " tutor ")
	conversation.AddPromptContext(ctx, ContextMessageTypeAssistant, "   ")
	conversation.AddPromptContext(ctx, ContextMessageType("note"), "transcript")
	conversation.AddPromptContext(ctx, ContextMessageTypeAssistant, "earlier answer")

	s.Len(conversation.Contexts(), 3)
	s.Equal([]Message{
		{Role: "system", Content: "tutor"},
		{Role: "user", Content: "transcript"},
		{Role: "assistant", Content: "earlier answer"},
		{Role: "user", Content: "question"},
	}, conversation.Messages("question"))
}

func (s *ConversationSuite) TestSplitSystem() {
	var conversation Conversation
	conversation.AddPromptContext(context.Background(), ContextMessageTypeSystem, "rule one")
	conversation.AddPromptContext(context.Background(), ContextMessageTypeSystem, "rule two")

	system, turns := conversation.SplitSystem("prompt")
	s.Equal([]string{"rule one", "rule two"}, system)
	s.Equal([]Message{{Role: "user", Content: "prompt"}}, turns)
}

func (s *ConversationSuite) TestMetadata() {
	meta := NewGenerationMetadata("groq", "", "")
	s.Equal("unknown", meta[MetadataKeyModel])
	_, hasFeature := meta[MetadataKeyFeature]
	s.False(hasFeature)

	meta = NewGenerationMetadata("groq", "llama", "quiz")
	s.Equal("quiz", meta[MetadataKeyFeature])
	meta.SetTokenUsage(10, 5, 0)
	s.Equal("15", meta[MetadataKeyTotalTokens])
	meta.Set(MetadataKeyResponseID, " ")
	s.NotContains(meta, MetadataKeyResponseID)

	var nilMeta GenerationMetadata
	nilMeta.SetLatency(time.Now())
	nilMeta.SetTokenUsage(1, 1, 2)
}
