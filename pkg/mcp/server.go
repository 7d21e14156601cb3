package mcp

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/analytics"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/assistant"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/transcript"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

const (
	serverName          = "LearnNext"
	defaultEndpointPath = "/mcp"
)

// Assistant is the subset of study features exposed as MCP tools.
type Assistant interface {
	Transcript(ctx context.Context, raw string) (transcript.AcquisitionResult, error)
	Summarize(ctx context.Context, text string, opts assistant.SummaryOptions) (string, error)
	GenerateQuiz(ctx context.Context, topic string, n int, difficulty string) (assistant.Quiz, error)
	Flashcards(ctx context.Context, topic string, n int) (assistant.FlashcardSet, error)
	AcademicQA(ctx context.Context, question, domain string) (string, error)
	Wellness(ctx context.Context, text string) (assistant.WellnessReport, error)
	Usage(ctx context.Context) (analytics.Usage, error)
}

// NewServer registers every LearnNext tool on a fresh MCP server.
func NewServer(svc Assistant, version string) *server.MCPServer {
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
		server.WithToolHandlerMiddleware(logToolCalls),
		server.WithRecovery(),
		server.WithInstructions("Study tools: YouTube transcripts, summaries, quizzes, flashcards, Q&A and wellness check-ins."),
	)

	t := &toolset{assistant: svc}
	s.AddTools(t.tools()...)
	return s
}

// ServeStdio serves s over stdin/stdout until ctx is done.
func ServeStdio(ctx context.Context, s *server.MCPServer) error {
	stdio := server.NewStdioServer(s)
	stdio.SetContextFunc(func(ctx context.Context) context.Context {
		return logging.WithRequestID(ctx, uuid.NewString())
	})
	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return utils.WrapIfNotNil(err)
}

// NewHTTPServer wraps s in a streamable HTTP transport mounted at path.
func NewHTTPServer(s *server.MCPServer, path string) *server.StreamableHTTPServer {
	if path == "" {
		path = defaultEndpointPath
	}
	return server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath(path),
		server.WithHTTPContextFunc(requestContext),
	)
}

func logToolCalls(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if logging.RequestIDFromContext(ctx) == "" {
			ctx = logging.WithRequestID(ctx, uuid.NewString())
		}
		start := time.Now()
		result, err := next(ctx, request)

		isError := result != nil && result.IsError
		logging.NewLogger(ctx).Infof(
			"mcp tool=%q latency_ms=%d is_error=%t err=%v",
			request.Params.Name,
			time.Since(start).Milliseconds(),
			isError,
			err,
		)
		return result, err
	}
}
