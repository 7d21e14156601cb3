package tests

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/media"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/stt"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/transcript"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/youtube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const defaultLiveVideo = "https://www.youtube.com/watch?v=aircAruvnKk"

// YouTubeTranscriptIntegrationSuite runs the full fallback chain against YouTube.
type YouTubeTranscriptIntegrationSuite struct {
	ExternalDependenciesSuite
	video        string
	orchestrator *transcript.Orchestrator
}

func (s *YouTubeTranscriptIntegrationSuite) SetupSuite() {
	s.ExternalDependenciesSuite.SetupSuite()
	s.RequireFlag("RUN_YOUTUBE_TESTS")

	s.video = strings.TrimSpace(os.Getenv("YOUTUBE_TEST_VIDEO"))
	if s.video == "" {
		s.video = defaultLiveVideo
	}

	cfg := s.Config()
	cfg.YouTube.CacheDir = s.T().TempDir()

	cache, err := media.NewCache(cfg.YouTube.CacheDir)
	require.NoError(s.T(), err)
	s.orchestrator = transcript.NewOrchestrator(
		youtube.NewCaptionClient(youtube.WithCaptionLanguages(cfg.YouTube.Languages)),
		youtube.NewTimedTextClient(youtube.WithTimedTextTimeout(cfg.YouTube.TimedTextTimeout())),
		cache,
		media.NewDownloader(cache, media.WithDownloaderBinary(cfg.YouTube.DownloaderBinary)),
		stt.New(cfg.Whisper),
	)
}

func (s *YouTubeTranscriptIntegrationSuite) TestAcquire() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result := s.orchestrator.Acquire(ctx, s.video)
	require.True(s.T(), result.OK(), "acquisition failed: %s", result.DebugReason())
	assert.NotEmpty(s.T(), result.RequestID)
	assert.NotEmpty(s.T(), result.Source)
	assert.NotContains(s.T(), result.Text, "\n")
}

func (s *YouTubeTranscriptIntegrationSuite) TestInvalidIdentifier() {
	result := s.orchestrator.Acquire(context.Background(), "https://example.com/not-a-video")
	assert.Equal(s.T(), transcript.InvalidIdentifier, result.Failure)
	assert.Equal(s.T(), transcript.ReasonInvalidID, result.Reason)
}

func TestYouTubeTranscriptIntegrationSuite(t *testing.T) {
	suite.Run(t, new(YouTubeTranscriptIntegrationSuite))
}
