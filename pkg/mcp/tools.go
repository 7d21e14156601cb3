package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/assistant"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
)

const (
	ToolTranscript = "youtube_transcript"
	ToolSummarize  = "summarize_text"
	ToolQuiz       = "generate_quiz"
	ToolFlashcards = "generate_flashcards"
	ToolAsk        = "academic_qa"
	ToolWellness   = "wellness_check"
	ToolUsage      = "usage_counts"
)

type toolset struct {
	assistant Assistant
}

func (t *toolset) tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool(ToolTranscript,
				mcp.WithDescription("Fetch the transcript of a YouTube video, falling back to speech recognition when captions are unavailable."),
				mcp.WithString("url", mcp.Required(), mcp.Description("YouTube URL or 11-character video id")),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: t.transcript,
		},
		{
			Tool: mcp.NewTool(ToolSummarize,
				mcp.WithDescription("Summarize text; long inputs are summarized in chunks."),
				mcp.WithString("text", mcp.Required(), mcp.Description("Text to summarize")),
				mcp.WithNumber("min_length", mcp.Description("Minimum summary tokens"), mcp.Min(1)),
				mcp.WithNumber("max_length", mcp.Description("Maximum summary tokens"), mcp.Min(1)),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: t.summarize,
		},
		{
			Tool: mcp.NewTool(ToolQuiz,
				mcp.WithDescription("Generate a multiple-choice quiz with four options per question."),
				mcp.WithString("topic", mcp.Required(), mcp.Description("Quiz topic")),
				mcp.WithNumber("n", mcp.Description("Number of questions"), mcp.DefaultNumber(5), mcp.Min(1), mcp.Max(20)),
				mcp.WithString("difficulty", mcp.Enum("easy", "medium", "hard"), mcp.DefaultString("easy")),
			),
			Handler: t.quiz,
		},
		{
			Tool: mcp.NewTool(ToolFlashcards,
				mcp.WithDescription("Generate front/back study flashcards for a topic."),
				mcp.WithString("topic", mcp.Required(), mcp.Description("Flashcard topic")),
				mcp.WithNumber("n", mcp.Description("Number of cards"), mcp.DefaultNumber(10), mcp.Min(1), mcp.Max(30)),
			),
			Handler: t.flashcards,
		},
		{
			Tool: mcp.NewTool(ToolAsk,
				mcp.WithDescription("Answer an academic question step by step."),
				mcp.WithString("question", mcp.Required()),
				mcp.WithString("domain", mcp.Description("Subject area, for example Physics")),
			),
			Handler: t.ask,
		},
		{
			Tool: mcp.NewTool(ToolWellness,
				mcp.WithDescription("Score sentiment and emotions of a check-in and suggest study tips. Not medical advice."),
				mcp.WithString("text", mcp.Required(), mcp.Description("How the student is feeling")),
			),
			Handler: t.wellness,
		},
		{
			Tool: mcp.NewTool(ToolUsage,
				mcp.WithDescription("Return per-feature usage counts."),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: t.usage,
		},
	}
}

type transcriptArgs struct {
	URL string `json:"url"`
}

type summarizeArgs struct {
	Text      string `json:"text"`
	MinLength int    `json:"min_length"`
	MaxLength int    `json:"max_length"`
}

type quizArgs struct {
	Topic      string `json:"topic"`
	N          int    `json:"n"`
	Difficulty string `json:"difficulty"`
}

type askArgs struct {
	Question string `json:"question"`
	Domain   string `json:"domain"`
}

func (t *toolset) transcript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args transcriptArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	result, err := t.assistant.Transcript(ctx, args.URL)
	if err != nil {
		var unavailable *assistant.TranscriptUnavailableError
		if errors.As(err, &unavailable) {
			toolResult := mcp.NewToolResultStructured(unavailable.Result, unavailable.Result.Message())
			toolResult.IsError = true
			return toolResult, nil
		}
		return toolError(err), nil
	}
	return mcp.NewToolResultStructured(result, result.Text), nil
}

func (t *toolset) summarize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args summarizeArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	summary, err := t.assistant.Summarize(ctx, args.Text, assistant.SummaryOptions{
		MinLength: args.MinLength,
		MaxLength: args.MaxLength,
	})
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(summary), nil
}

func (t *toolset) quiz(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args quizArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	quiz, err := t.assistant.GenerateQuiz(ctx, args.Topic, args.N, args.Difficulty)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultStructured(quiz, quizText(quiz)), nil
}

func (t *toolset) flashcards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args quizArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	set, err := t.assistant.Flashcards(ctx, args.Topic, args.N)
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	for i, card := range set.Cards {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, card.Front, card.Back)
	}
	return mcp.NewToolResultStructured(set, strings.TrimSpace(b.String())), nil
}

func (t *toolset) ask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args askArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	answer, err := t.assistant.AcademicQA(ctx, args.Question, args.Domain)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(answer), nil
}

func (t *toolset) wellness(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := t.assistant.Wellness(ctx, text)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultStructuredOnly(report), nil
}

func (t *toolset) usage(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	usage, err := t.assistant.Usage(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultStructuredOnly(usage), nil
}

// toolError reports a failure as tool output so the calling model can see it.
func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

func quizText(quiz assistant.Quiz) string {
	var b strings.Builder
	for i, question := range quiz.Questions {
		fmt.Fprintf(&b, "Q%d. %s\n", i+1, question.Question)
		for j, choice := range question.Choices {
			fmt.Fprintf(&b, "   %c) %s\n", 'A'+j, choice)
		}
	}
	return strings.TrimSpace(b.String())
}

func requestContext(ctx context.Context, r *http.Request) context.Context {
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return logging.WithRequestID(ctx, requestID)
}
