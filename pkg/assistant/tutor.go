package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/analytics"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

const (
	defaultDomain   = "general"
	defaultLanguage = "python"
	planTemperature = 0.3
)

// AcademicQA answers a question as a tutor for domain.
func (a *Assistant) AcademicQA(ctx context.Context, question, domain string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", utils.WrapIfNotNil(ErrEmptyInput)
	}
	domain = valueOr(domain, defaultDomain)

	answer, err := a.complete(ctx, ChatRequest{
		Feature:     "qna",
		System:      fmt.Sprintf("You are a precise academic Q&A tutor for %s. Cite concepts, keep it concise.", domain),
		User:        question,
		Temperature: a.temperature,
	})
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	a.record(ctx, analytics.KindQnA, map[string]any{"question": utils.Truncate(question, 120), "domain": domain})
	return answer, nil
}

func (a *Assistant) CodeReview(ctx context.Context, code, lang string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", utils.WrapIfNotNil(ErrEmptyInput)
	}
	lang = valueOr(lang, defaultLanguage)

	review, err := a.complete(ctx, ChatRequest{
		Feature:     "code_review",
		System:      "You are a senior code reviewer. Provide specific, safe improvements and explain why.",
		User:        fmt.Sprintf("Language: %s\nCode:\n%s\n\nReturn: issues, fixes, and improved snippet if applicable.", lang, code),
		Temperature: a.temperature,
	})
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	a.record(ctx, analytics.KindCoding, map[string]any{"type": "review", "lang": lang})
	return review, nil
}

func (a *Assistant) DebugHelp(ctx context.Context, errText, snippet, lang string) (string, error) {
	if strings.TrimSpace(errText) == "" {
		return "", utils.WrapIfNotNil(ErrEmptyInput)
	}
	lang = valueOr(lang, defaultLanguage)

	diagnosis, err := a.complete(ctx, ChatRequest{
		Feature:     "debug",
		System:      "You are a debugging assistant. Diagnose root causes and propose fixes.",
		User:        fmt.Sprintf("Language: %s\nError:\n%s\nSnippet:\n%s", lang, errText, snippet),
		Temperature: a.temperature,
	})
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	a.record(ctx, analytics.KindCoding, map[string]any{"type": "debug", "lang": lang})
	return diagnosis, nil
}

func (a *Assistant) ExplainConcept(ctx context.Context, concept, lang string) (string, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return "", utils.WrapIfNotNil(ErrEmptyInput)
	}
	lang = valueOr(lang, defaultLanguage)

	explanation, err := a.complete(ctx, ChatRequest{
		Feature:     "explain",
		System:      fmt.Sprintf("Explain programming concepts with short examples and clarity. Use %s for examples.", lang),
		User:        concept,
		Temperature: a.temperature,
	})
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	a.record(ctx, analytics.KindCoding, map[string]any{"type": "explain", "lang": lang})
	return explanation, nil
}

type PlanRequest struct {
	Name         string `json:"name"`
	Course       string `json:"course"`
	Grade        string `json:"grade"`
	Goals        string `json:"goals"`
	HoursPerWeek int    `json:"hours_per_week"`
}

// StudyPlan drafts a four-week plan for the student.
func (a *Assistant) StudyPlan(ctx context.Context, request PlanRequest) (string, error) {
	if strings.TrimSpace(request.Course) == "" {
		return "", utils.WrapIfNotNil(ErrEmptyInput)
	}
	if request.HoursPerWeek <= 0 {
		request.HoursPerWeek = 6
	}

	user := fmt.Sprintf(`Student: %s
Course: %s
Current grade/level: %s
Goals: %s
Time available: %d hours/week

Produce:
- 4-week plan (weekly bullets)
- Daily micro-habits
- Recommended resources (free only)
- Risks & mitigation
Keep it compact and practical.`,
		valueOr(request.Name, "Student"), request.Course, valueOr(request.Grade, "unspecified"),
		valueOr(request.Goals, "unspecified"), request.HoursPerWeek)

	plan, err := a.complete(ctx, ChatRequest{
		Feature:     "study_plan",
		System:      "You design concise, actionable study plans.",
		User:        user,
		Temperature: planTemperature,
	})
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	a.record(ctx, analytics.KindQnA, map[string]any{"feature": "personalized_plan", "course": request.Course})
	return plan, nil
}

func valueOr(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
