package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/analytics"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/assistant"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/llms/huggingface"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/transcript"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Assistant is the feature surface served over HTTP.
type Assistant interface {
	Transcript(ctx context.Context, raw string) (transcript.AcquisitionResult, error)
	SummarizeVideo(ctx context.Context, raw string, opts assistant.SummaryOptions) (assistant.VideoSummary, error)
	Summarize(ctx context.Context, text string, opts assistant.SummaryOptions) (string, error)
	SummarizeDocument(ctx context.Context, name string, data []byte, opts assistant.SummaryOptions) (assistant.DocumentSummary, error)
	GenerateQuiz(ctx context.Context, topic string, n int, difficulty string) (assistant.Quiz, error)
	GradeQuiz(ctx context.Context, quiz assistant.Quiz, answers []int) assistant.QuizScore
	Flashcards(ctx context.Context, topic string, n int) (assistant.FlashcardSet, error)
	AcademicQA(ctx context.Context, question, domain string) (string, error)
	CodeReview(ctx context.Context, code, lang string) (string, error)
	DebugHelp(ctx context.Context, errText, snippet, lang string) (string, error)
	ExplainConcept(ctx context.Context, concept, lang string) (string, error)
	StudyPlan(ctx context.Context, request assistant.PlanRequest) (string, error)
	Wellness(ctx context.Context, text string) (assistant.WellnessReport, error)
	Usage(ctx context.Context) (analytics.Usage, error)
	Events(ctx context.Context, limit int) ([]analytics.Event, error)
}

const maxUploadBytes = 20 << 20

type handlers struct {
	assistant Assistant
}

// NewRouter wires the API, health and metrics routes. gatherer may be nil
// to use the default registry.
func NewRouter(svc Assistant, reg prometheus.Registerer, gatherer prometheus.Gatherer) *gin.Engine {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(NewMetrics(reg)))
	router.MaxMultipartMemory = maxUploadBytes

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	h := &handlers{assistant: svc}
	v1 := router.Group("/api/v1")
	{
		v1.POST("/transcripts", h.transcript)
		v1.POST("/summaries", h.summarize)
		v1.POST("/summaries/video", h.summarizeVideo)
		v1.POST("/summaries/document", h.summarizeDocument)
		v1.POST("/quiz", h.generateQuiz)
		v1.POST("/quiz/score", h.scoreQuiz)
		v1.POST("/flashcards", h.flashcards)
		v1.POST("/qa", h.academicQA)
		v1.POST("/coding/review", h.codeReview)
		v1.POST("/coding/debug", h.debugHelp)
		v1.POST("/coding/explain", h.explainConcept)
		v1.POST("/plan", h.studyPlan)
		v1.POST("/wellness", h.wellness)
		v1.POST("/rouge", h.rouge)
		v1.GET("/usage", h.usage)
		v1.GET("/events", h.events)
	}
	return router
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

// failWith maps feature errors to HTTP statuses.
func failWith(c *gin.Context, err error) {
	var unavailable *assistant.TranscriptUnavailableError
	var upstream *huggingface.APIError
	switch {
	case errors.As(err, &unavailable):
		status := http.StatusUnprocessableEntity
		if unavailable.Result.Failure == transcript.InvalidIdentifier {
			status = http.StatusBadRequest
		}
		c.AbortWithStatusJSON(status, gin.H{
			"success": false,
			"error":   unavailable.Result.Message(),
			"data":    unavailable.Result,
		})
	case errors.Is(err, assistant.ErrEmptyInput),
		errors.Is(err, assistant.ErrEmptyFile),
		errors.Is(err, assistant.ErrUnsupportedFile),
		errors.Is(err, assistant.ErrNoExtractableText):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, assistant.ErrNoTranscripts), errors.Is(err, huggingface.ErrMissingAPIKey):
		fail(c, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &upstream) && upstream.StatusCode == http.StatusTooManyRequests:
		fail(c, http.StatusTooManyRequests, upstream.Error())
	case errors.Is(err, context.DeadlineExceeded):
		fail(c, http.StatusGatewayTimeout, err.Error())
	default:
		fail(c, http.StatusBadGateway, err.Error())
	}
}
