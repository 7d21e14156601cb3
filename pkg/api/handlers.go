package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/assistant"
)

type videoRequest struct {
	URL       string `json:"url" binding:"required"`
	MinLength int    `json:"min_length"`
	MaxLength int    `json:"max_length"`
}

type summaryRequest struct {
	Text      string `json:"text"`
	MinLength int    `json:"min_length"`
	MaxLength int    `json:"max_length"`
}

type quizRequest struct {
	Topic      string `json:"topic" binding:"required"`
	N          int    `json:"n"`
	Difficulty string `json:"difficulty"`
}

type scoreRequest struct {
	Quiz    assistant.Quiz `json:"quiz"`
	Answers []int          `json:"answers"`
}

type flashcardsRequest struct {
	Topic string `json:"topic" binding:"required"`
	N     int    `json:"n"`
}

type qaRequest struct {
	Question string `json:"question" binding:"required"`
	Domain   string `json:"domain"`
}

type codeRequest struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Snippet string `json:"snippet"`
	Concept string `json:"concept"`
	Lang    string `json:"lang"`
}

type textRequest struct {
	Text string `json:"text" binding:"required"`
}

type rougeRequest struct {
	Reference string `json:"reference"`
	Candidate string `json:"candidate"`
}

func bind(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

func (h *handlers) transcript(c *gin.Context) {
	var req videoRequest
	if !bind(c, &req) {
		return
	}
	result, err := h.assistant.Transcript(c.Request.Context(), req.URL)
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, result)
}

func (h *handlers) summarizeVideo(c *gin.Context) {
	var req videoRequest
	if !bind(c, &req) {
		return
	}
	video, err := h.assistant.SummarizeVideo(c.Request.Context(), req.URL, assistant.SummaryOptions{
		MinLength: req.MinLength,
		MaxLength: req.MaxLength,
	})
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, video)
}

func (h *handlers) summarize(c *gin.Context) {
	var req summaryRequest
	if !bind(c, &req) {
		return
	}
	summary, err := h.assistant.Summarize(c.Request.Context(), req.Text, assistant.SummaryOptions{
		MinLength: req.MinLength,
		MaxLength: req.MaxLength,
	})
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, gin.H{"summary": summary, "reading_time": assistant.ReadingTime(req.Text)})
}

// summarizeDocument takes a multipart "file" plus optional min_length/max_length form fields.
func (h *handlers) summarizeDocument(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	minLength, _ := strconv.Atoi(c.PostForm("min_length"))
	maxLength, _ := strconv.Atoi(c.PostForm("max_length"))

	summary, err := h.assistant.SummarizeDocument(c.Request.Context(), header.Filename, data, assistant.SummaryOptions{
		MinLength: minLength,
		MaxLength: maxLength,
	})
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, summary)
}

func (h *handlers) generateQuiz(c *gin.Context) {
	var req quizRequest
	if !bind(c, &req) {
		return
	}
	quiz, err := h.assistant.GenerateQuiz(c.Request.Context(), req.Topic, req.N, req.Difficulty)
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, quiz)
}

func (h *handlers) scoreQuiz(c *gin.Context) {
	var req scoreRequest
	if !bind(c, &req) {
		return
	}
	ok(c, h.assistant.GradeQuiz(c.Request.Context(), req.Quiz, req.Answers))
}

func (h *handlers) flashcards(c *gin.Context) {
	var req flashcardsRequest
	if !bind(c, &req) {
		return
	}
	set, err := h.assistant.Flashcards(c.Request.Context(), req.Topic, req.N)
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, set)
}

func (h *handlers) academicQA(c *gin.Context) {
	var req qaRequest
	if !bind(c, &req) {
		return
	}
	answer, err := h.assistant.AcademicQA(c.Request.Context(), req.Question, req.Domain)
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, gin.H{"answer": answer})
}

func (h *handlers) codeReview(c *gin.Context) {
	var req codeRequest
	if !bind(c, &req) {
		return
	}
	review, err := h.assistant.CodeReview(c.Request.Context(), req.Code, req.Lang)
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, gin.H{"answer": review})
}

func (h *handlers) debugHelp(c *gin.Context) {
	var req codeRequest
	if !bind(c, &req) {
		return
	}
	diagnosis, err := h.assistant.DebugHelp(c.Request.Context(), req.Error, req.Snippet, req.Lang)
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, gin.H{"answer": diagnosis})
}

func (h *handlers) explainConcept(c *gin.Context) {
	var req codeRequest
	if !bind(c, &req) {
		return
	}
	explanation, err := h.assistant.ExplainConcept(c.Request.Context(), req.Concept, req.Lang)
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, gin.H{"answer": explanation})
}

func (h *handlers) studyPlan(c *gin.Context) {
	var req assistant.PlanRequest
	if !bind(c, &req) {
		return
	}
	plan, err := h.assistant.StudyPlan(c.Request.Context(), req)
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, gin.H{"plan": plan})
}

func (h *handlers) wellness(c *gin.Context) {
	var req textRequest
	if !bind(c, &req) {
		return
	}
	report, err := h.assistant.Wellness(c.Request.Context(), req.Text)
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, report)
}

func (h *handlers) rouge(c *gin.Context) {
	var req rougeRequest
	if !bind(c, &req) {
		return
	}
	ok(c, assistant.Rouge(req.Reference, req.Candidate))
}

func (h *handlers) usage(c *gin.Context) {
	usage, err := h.assistant.Usage(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, usage)
}

func (h *handlers) events(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := h.assistant.Events(c.Request.Context(), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, events)
}
