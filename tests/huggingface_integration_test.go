package tests

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/llms/huggingface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type HuggingFaceInferenceIntegrationSuite struct {
	ExternalDependenciesSuite
	client *huggingface.InferenceClient
}

func (s *HuggingFaceInferenceIntegrationSuite) SetupSuite() {
	s.ExternalDependenciesSuite.SetupSuite()

	cfg := s.Config()
	if strings.TrimSpace(cfg.HF.APIKey) == "" {
		s.T().Skip("HF_API_KEY is not set; skipping external dependency integration test")
	}
	s.client = huggingface.NewInferenceClient(cfg.HF)
}

func (s *HuggingFaceInferenceIntegrationSuite) TestSummarize() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	text := strings.Repeat("Photosynthesis converts light energy into chemical energy stored in glucose. ", 12)
	summary, err := s.client.Summarize(ctx, text, huggingface.SummaryOptions{MinLength: 10, MaxLength: 60})
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), strings.TrimSpace(summary))
}

func (s *HuggingFaceInferenceIntegrationSuite) TestSentimentAndEmotions() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	sentiment, err := s.client.Sentiment(ctx, "I finally understood recursion and I am thrilled!")
	require.NoError(s.T(), err)
	top, ok := sentiment.Top()
	require.True(s.T(), ok)
	assert.Equal(s.T(), "positive", top)

	emotions, err := s.client.Emotions(ctx, "My exam is tomorrow and I am terrified.")
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), emotions)
}

func TestHuggingFaceInferenceIntegrationSuite(t *testing.T) {
	suite.Run(t, new(HuggingFaceInferenceIntegrationSuite))
}
