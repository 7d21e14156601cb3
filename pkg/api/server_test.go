package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/analytics"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/assistant"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/llms/huggingface"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/transcript"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

type fakeAssistant struct {
	transcript transcript.AcquisitionResult
	err        error
	answer     string
	quiz       assistant.Quiz
	document   string
	usage      analytics.Usage
	limit      int
	plan       assistant.PlanRequest
}

func (f *fakeAssistant) Transcript(_ context.Context, _ string) (transcript.AcquisitionResult, error) {
	return f.transcript, f.err
}

func (f *fakeAssistant) SummarizeVideo(_ context.Context, _ string, _ assistant.SummaryOptions) (assistant.VideoSummary, error) {
	if f.err != nil {
		return assistant.VideoSummary{}, f.err
	}
	return assistant.VideoSummary{Transcript: f.transcript, Summary: f.answer}, nil
}

func (f *fakeAssistant) Summarize(_ context.Context, text string, _ assistant.SummaryOptions) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", assistant.ErrEmptyInput
	}
	return f.answer, f.err
}

func (f *fakeAssistant) SummarizeDocument(_ context.Context, name string, data []byte, _ assistant.SummaryOptions) (assistant.DocumentSummary, error) {
	f.document = name + ":" + string(data)
	if f.err != nil {
		return assistant.DocumentSummary{}, f.err
	}
	return assistant.DocumentSummary{Name: name, Chars: len(data), Summary: f.answer}, nil
}

func (f *fakeAssistant) GenerateQuiz(_ context.Context, _ string, _ int, _ string) (assistant.Quiz, error) {
	if f.err != nil {
		return assistant.Quiz{}, f.err
	}
	return f.quiz, nil
}

func (f *fakeAssistant) GradeQuiz(_ context.Context, quiz assistant.Quiz, answers []int) assistant.QuizScore {
	return assistant.ScoreQuiz(answers, quiz.AnswerKey())
}

func (f *fakeAssistant) Flashcards(_ context.Context, topic string, _ int) (assistant.FlashcardSet, error) {
	return assistant.FlashcardSet{Topic: topic, Cards: []assistant.Flashcard{{Front: "f", Back: "b"}}}, f.err
}

func (f *fakeAssistant) AcademicQA(_ context.Context, _, _ string) (string, error) {
	return f.answer, f.err
}

func (f *fakeAssistant) CodeReview(_ context.Context, code, _ string) (string, error) {
	return "review:" + code, f.err
}

func (f *fakeAssistant) DebugHelp(_ context.Context, errText, _, _ string) (string, error) {
	return "debug:" + errText, f.err
}

func (f *fakeAssistant) ExplainConcept(_ context.Context, concept, _ string) (string, error) {
	return "explain:" + concept, f.err
}

func (f *fakeAssistant) StudyPlan(_ context.Context, request assistant.PlanRequest) (string, error) {
	f.plan = request
	return f.answer, f.err
}

func (f *fakeAssistant) Wellness(_ context.Context, _ string) (assistant.WellnessReport, error) {
	if f.err != nil {
		return assistant.WellnessReport{}, f.err
	}
	return assistant.WellnessReport{TopEmotion: "joy", Tips: assistant.TipsFor("joy"), Disclaimer: assistant.Disclaimer}, nil
}

func (f *fakeAssistant) Usage(_ context.Context) (analytics.Usage, error) {
	return f.usage, f.err
}

func (f *fakeAssistant) Events(_ context.Context, limit int) ([]analytics.Event, error) {
	f.limit = limit
	return []analytics.Event{{ID: "1", Kind: analytics.KindQnA}}, f.err
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type ServerSuite struct {
	suite.Suite
	assistant *fakeAssistant
	registry  *prometheus.Registry
	router    *gin.Engine
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *ServerSuite) SetupTest() {
	s.assistant = &fakeAssistant{answer: "answer"}
	s.registry = prometheus.NewRegistry()
	s.router = NewRouter(s.assistant, s.registry, s.registry)
}

func (s *ServerSuite) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		bits, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(bits)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *ServerSuite) TestHealthz() {
	rec, _ := s.do(http.MethodGet, "/healthz", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.NotEmpty(rec.Header().Get(requestIDHeader))
}

func (s *ServerSuite) TestRequestIDIsEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal("abc-123", rec.Header().Get(requestIDHeader))
}

func (s *ServerSuite) TestTranscriptSuccess() {
	s.assistant.transcript = transcript.AcquisitionResult{VideoID: "dQw4w9WgXcQ", Text: "hello", Source: transcript.SourceCaptions}

	rec, env := s.do(http.MethodPost, "/api/v1/transcripts", gin.H{"url": "https://youtu.be/dQw4w9WgXcQ"})
	s.Equal(http.StatusOK, rec.Code)
	s.True(env.Success)

	var result transcript.AcquisitionResult
	s.Require().NoError(json.Unmarshal(env.Data, &result))
	s.Equal("hello", result.Text)
	s.Equal(transcript.SourceCaptions, result.Source)
}

func (s *ServerSuite) TestTranscriptUnavailable() {
	result := transcript.AcquisitionResult{
		VideoID: "dQw4w9WgXcQ",
		Failure: transcript.UpstreamUnavailable,
		Reason:  transcript.ReasonTranscriptsDisabled,
	}
	s.assistant.transcript = result
	s.assistant.err = &assistant.TranscriptUnavailableError{Result: result}

	rec, env := s.do(http.MethodPost, "/api/v1/transcripts", gin.H{"url": "dQw4w9WgXcQ"})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.False(env.Success)
	s.Equal(result.Message(), env.Error)
	s.Contains(string(env.Data), transcript.ReasonTranscriptsDisabled)
}

func (s *ServerSuite) TestTranscriptInvalidIdentifier() {
	result := transcript.AcquisitionResult{Failure: transcript.InvalidIdentifier, Reason: transcript.ReasonInvalidID}
	s.assistant.err = &assistant.TranscriptUnavailableError{Result: result}

	rec, env := s.do(http.MethodPost, "/api/v1/transcripts", gin.H{"url": "nope"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(result.Message(), env.Error)
}

func (s *ServerSuite) TestBindingErrors() {
	rec, env := s.do(http.MethodPost, "/api/v1/transcripts", gin.H{})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.False(env.Success)
	s.Contains(env.Error, "invalid request")

	rec, _ = s.do(http.MethodPost, "/api/v1/quiz", gin.H{"n": 3})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestSummarize() {
	rec, env := s.do(http.MethodPost, "/api/v1/summaries", gin.H{"text": "some words here"})
	s.Equal(http.StatusOK, rec.Code)

	var data map[string]string
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.Equal("answer", data["summary"])
	s.Equal(assistant.ReadingTime("some words here"), data["reading_time"])

	rec, env = s.do(http.MethodPost, "/api/v1/summaries", gin.H{"text": "  "})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(assistant.ErrEmptyInput.Error(), env.Error)
}

func (s *ServerSuite) TestSummarizeDocumentUpload() {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "notes.txt")
	s.Require().NoError(err)
	_, err = part.Write([]byte("lecture notes"))
	s.Require().NoError(err)
	s.Require().NoError(writer.WriteField("max_length", "100"))
	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/summaries/document", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("notes.txt:lecture notes", s.assistant.document)
}

func (s *ServerSuite) TestSummarizeDocumentRequiresFile() {
	rec, env := s.do(http.MethodPost, "/api/v1/summaries/document", gin.H{})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("file is required", env.Error)
}

func (s *ServerSuite) TestQuizAndScore() {
	s.assistant.quiz = assistant.Quiz{
		Topic: "go",
		Questions: []assistant.QuizQuestion{
			{Question: "q1", Choices: []string{"a", "b", "c", "d"}, AnswerIndex: 1},
			{Question: "q2", Choices: []string{"a", "b", "c", "d"}, AnswerIndex: 2},
		},
	}

	rec, env := s.do(http.MethodPost, "/api/v1/quiz", gin.H{"topic": "go"})
	s.Equal(http.StatusOK, rec.Code)
	var quiz assistant.Quiz
	s.Require().NoError(json.Unmarshal(env.Data, &quiz))
	s.Len(quiz.Questions, 2)

	rec, env = s.do(http.MethodPost, "/api/v1/quiz/score", gin.H{"quiz": quiz, "answers": []int{1, 0}})
	s.Equal(http.StatusOK, rec.Code)
	var score assistant.QuizScore
	s.Require().NoError(json.Unmarshal(env.Data, &score))
	s.Equal(1, score.Correct)
	s.Equal(2, score.Total)
	s.InDelta(0.5, score.Accuracy, 1e-9)
}

func (s *ServerSuite) TestMalformedQuizIsBadGateway() {
	s.assistant.err = fmt.Errorf("quiz: %w", assistant.ErrMalformedOutput)
	rec, env := s.do(http.MethodPost, "/api/v1/quiz", gin.H{"topic": "go"})
	s.Equal(http.StatusBadGateway, rec.Code)
	s.False(env.Success)
}

func (s *ServerSuite) TestCodingRoutes() {
	cases := map[string]string{
		"/api/v1/coding/review":  "review:x := 1",
		"/api/v1/coding/debug":   "debug:nil pointer",
		"/api/v1/coding/explain": "explain:closures",
	}
	body := gin.H{"code": "x := 1", "error": "nil pointer", "concept": "closures", "lang": "go"}
	for path, expected := range cases {
		rec, env := s.do(http.MethodPost, path, body)
		s.Equal(http.StatusOK, rec.Code, path)
		var data map[string]string
		s.Require().NoError(json.Unmarshal(env.Data, &data))
		s.Equal(expected, data["answer"], path)
	}
}

func (s *ServerSuite) TestQAAndPlan() {
	rec, env := s.do(http.MethodPost, "/api/v1/qa", gin.H{"question": "What is a goroutine?"})
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"answer":"answer"}`, string(env.Data))

	rec, _ = s.do(http.MethodPost, "/api/v1/plan", gin.H{"name": "Sam", "course": "Algorithms", "hours_per_week": 4})
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Algorithms", s.assistant.plan.Course)
}

func (s *ServerSuite) TestWellness() {
	rec, env := s.do(http.MethodPost, "/api/v1/wellness", gin.H{"text": "feeling great"})
	s.Equal(http.StatusOK, rec.Code)
	var report assistant.WellnessReport
	s.Require().NoError(json.Unmarshal(env.Data, &report))
	s.Equal("joy", report.TopEmotion)
	s.Equal(assistant.Disclaimer, report.Disclaimer)
}

func (s *ServerSuite) TestMissingKeyIsServiceUnavailable() {
	s.assistant.err = fmt.Errorf("sentiment: %w", huggingface.ErrMissingAPIKey)
	rec, env := s.do(http.MethodPost, "/api/v1/wellness", gin.H{"text": "x"})
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Contains(env.Error, "HF_API_KEY")
}

func (s *ServerSuite) TestRateLimitedUpstream() {
	s.assistant.err = &huggingface.APIError{Model: "m", StatusCode: http.StatusTooManyRequests, Message: "slow down"}
	rec, _ := s.do(http.MethodPost, "/api/v1/summaries", gin.H{"text": "x"})
	s.Equal(http.StatusTooManyRequests, rec.Code)
}

func (s *ServerSuite) TestGenericErrorIsBadGateway() {
	s.assistant.err = errors.New("upstream broke")
	rec, env := s.do(http.MethodPost, "/api/v1/qa", gin.H{"question": "q"})
	s.Equal(http.StatusBadGateway, rec.Code)
	s.Equal("upstream broke", env.Error)
}

func (s *ServerSuite) TestRouge() {
	rec, env := s.do(http.MethodPost, "/api/v1/rouge", gin.H{"reference": "the cat sat", "candidate": "the cat sat"})
	s.Equal(http.StatusOK, rec.Code)
	var scores assistant.RougeScores
	s.Require().NoError(json.Unmarshal(env.Data, &scores))
	s.InDelta(1.0, scores.Rouge1, 1e-9)
	s.InDelta(1.0, scores.RougeL, 1e-9)
}

func (s *ServerSuite) TestUsageAndEvents() {
	s.assistant.usage = analytics.Usage{Counts: map[analytics.Kind]int{analytics.KindQnA: 2}, Total: 2}

	rec, env := s.do(http.MethodGet, "/api/v1/usage", nil)
	s.Equal(http.StatusOK, rec.Code)
	var usage analytics.Usage
	s.Require().NoError(json.Unmarshal(env.Data, &usage))
	s.Equal(2, usage.Total)

	rec, _ = s.do(http.MethodGet, "/api/v1/events?limit=7", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(7, s.assistant.limit)
}

func (s *ServerSuite) TestMetricsEndpoint() {
	s.do(http.MethodGet, "/healthz", nil)

	rec, _ := s.do(http.MethodGet, "/metrics", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `learnnext_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}
