package assistant

import (
	"context"
	"strings"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/analytics"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/llms/huggingface"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// Disclaimer accompanies every wellness report.
const Disclaimer = "This assistant offers general well-being guidance and is not a substitute for professional care. " +
	"If you feel unsafe or in crisis, please seek local emergency help immediately."

var (
	distressEmotions = map[string]struct{}{"anxiety": {}, "fear": {}, "sadness": {}, "grief": {}, "nervousness": {}}
	positiveEmotions = map[string]struct{}{"joy": {}, "approval": {}, "gratitude": {}, "pride": {}}

	distressTips = []string{
		"Try 4-7-8 breathing for 1 minute.",
		"Write 3 worries, then 3 actions you can take.",
		"Take a brief walk and hydrate.",
	}
	positiveTips = []string{
		"Note what worked and plan to repeat it.",
		"Share your win with a friend.",
		"Set a tiny goal for tomorrow.",
	}
	neutralTips = []string{
		"Do a 5-minute stretch break.",
		"Message someone you trust.",
		"List one thing you can control today.",
	}
)

type WellnessReport struct {
	Sentiment  huggingface.Scores `json:"sentiment"`
	Emotions   huggingface.Scores `json:"emotions"`
	TopEmotion string             `json:"top_emotion,omitempty"`
	Tips       []string           `json:"tips"`
	Disclaimer string             `json:"disclaimer"`
}

// Wellness classifies sentiment and emotions concurrently and picks tips for the top emotion.
func (a *Assistant) Wellness(ctx context.Context, text string) (WellnessReport, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return WellnessReport{}, utils.WrapIfNotNil(ErrEmptyInput)
	}

	var sentiment, emotions huggingface.Scores
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		scores, err := a.analyzer.Sentiment(groupCtx, text)
		sentiment = scores
		return err
	})
	group.Go(func() error {
		scores, err := a.analyzer.Emotions(groupCtx, text)
		emotions = scores
		return err
	})
	if err := group.Wait(); err != nil {
		return WellnessReport{}, utils.WrapIfNotNil(err)
	}

	top, _ := emotions.Top()
	report := WellnessReport{
		Sentiment:  sentiment,
		Emotions:   emotions,
		TopEmotion: top,
		Tips:       TipsFor(top),
		Disclaimer: Disclaimer,
	}
	a.record(ctx, analytics.KindWellness, map[string]any{"len": len(text)})
	return report, nil
}

// TipsFor returns the coping tips for an emotion label.
func TipsFor(emotion string) []string {
	emotion = strings.ToLower(strings.TrimSpace(emotion))
	var tips []string
	switch {
	case contains(distressEmotions, emotion):
		tips = distressTips
	case contains(positiveEmotions, emotion):
		tips = positiveTips
	default:
		tips = neutralTips
	}
	return append([]string(nil), tips...)
}

func contains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
