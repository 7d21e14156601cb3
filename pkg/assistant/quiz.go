package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/analytics"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/structured"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

const (
	choicesPerQuestion = 4
	defaultQuizSize    = 5
	maxQuizSize        = 20
	defaultDeckSize    = 10
	maxDeckSize        = 30
	defaultDifficulty  = "easy"
)

type QuizQuestion struct {
	Question    string   `json:"q" jsonschema:"description=The question text"`
	Choices     []string `json:"choices" jsonschema:"minItems=4,maxItems=4"`
	AnswerIndex int      `json:"answer_index" jsonschema:"minimum=0,maximum=3"`
	Explanation string   `json:"explanation" jsonschema:"description=Short factual explanation"`
}

type Quiz struct {
	Topic     string         `json:"topic"`
	Questions []QuizQuestion `json:"questions"`
}

// Validate checks a question has four distinct non-blank choices and an answer among them.
func (q QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("question text is empty")
	}
	if len(q.Choices) != choicesPerQuestion {
		return fmt.Errorf("expected %d choices, got %d", choicesPerQuestion, len(q.Choices))
	}
	seen := make(map[string]struct{}, len(q.Choices))
	for _, choice := range q.Choices {
		key := strings.ToLower(strings.TrimSpace(choice))
		if key == "" {
			return errors.New("choice is empty")
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate choice %q", choice)
		}
		seen[key] = struct{}{}
	}
	if q.AnswerIndex < 0 || q.AnswerIndex >= choicesPerQuestion {
		return fmt.Errorf("answer_index %d out of range", q.AnswerIndex)
	}
	return nil
}

// AnswerKey returns the correct choice index per question.
func (q Quiz) AnswerKey() []int {
	key := make([]int, len(q.Questions))
	for i, question := range q.Questions {
		key[i] = question.AnswerIndex
	}
	return key
}

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type FlashcardSet struct {
	Topic string      `json:"topic"`
	Cards []Flashcard `json:"cards"`
}

// GenerateQuiz asks for a multiple-choice quiz and keeps only well-formed questions.
func (a *Assistant) GenerateQuiz(ctx context.Context, topic string, n int, difficulty string) (Quiz, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Quiz{}, utils.WrapIfNotNil(ErrEmptyInput)
	}
	n = clamp(n, defaultQuizSize, maxQuizSize)
	difficulty = valueOr(difficulty, defaultDifficulty)

	schema, err := schemaInstruction[Quiz]()
	if err != nil {
		return Quiz{}, utils.WrapIfNotNil(err)
	}
	user := fmt.Sprintf(`Create a multiple-choice quiz on %q with %d questions (difficulty: %s).

Rules:
- Choices must be plausible and unique
- The correct answer_index must be 0..3
- Explanations must be short and factual

%s`, topic, n, difficulty, schema)

	text, err := a.complete(ctx, ChatRequest{
		Feature:  "quiz",
		System:   "You are a strict quiz generator. Always return valid JSON exactly matching the schema.",
		User:     user,
		JSONMode: true,
	})
	if err != nil {
		return Quiz{}, utils.WrapIfNotNil(err)
	}

	quiz, ok := structured.Decode[Quiz](text)
	if !ok {
		return Quiz{}, utils.WrapIfNotNil(ErrMalformedOutput)
	}
	log := logging.NewLogger(ctx)
	valid := make([]QuizQuestion, 0, len(quiz.Questions))
	for i, question := range quiz.Questions {
		if err := question.Validate(); err != nil {
			log.Warnf("quiz topic=%q question=%d dropped: %v", topic, i, err)
			continue
		}
		valid = append(valid, question)
	}
	if len(valid) == 0 {
		return Quiz{}, utils.WrapIfNotNil(fmt.Errorf("%w: no valid questions", ErrMalformedOutput))
	}
	quiz.Questions = valid
	if strings.TrimSpace(quiz.Topic) == "" {
		quiz.Topic = topic
	}
	return quiz, nil
}

// GradeQuiz scores answers against the quiz key and records the attempt.
func (a *Assistant) GradeQuiz(ctx context.Context, quiz Quiz, answers []int) QuizScore {
	score := ScoreQuiz(answers, quiz.AnswerKey())
	a.record(ctx, analytics.KindQuiz, map[string]any{
		"topic": quiz.Topic,
		"n":     len(quiz.Questions),
		"acc":   score.Accuracy,
	})
	return score
}

// Flashcards asks for n front/back cards on topic.
func (a *Assistant) Flashcards(ctx context.Context, topic string, n int) (FlashcardSet, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return FlashcardSet{}, utils.WrapIfNotNil(ErrEmptyInput)
	}
	n = clamp(n, defaultDeckSize, maxDeckSize)

	schema, err := schemaInstruction[FlashcardSet]()
	if err != nil {
		return FlashcardSet{}, utils.WrapIfNotNil(err)
	}
	text, err := a.complete(ctx, ChatRequest{
		Feature:  "flashcards",
		System:   "You create compact flashcards as JSON.",
		User:     fmt.Sprintf("Create %d flashcards for topic %q.\nKeep the back short and factual.\n%s", n, topic, schema),
		JSONMode: true,
	})
	if err != nil {
		return FlashcardSet{}, utils.WrapIfNotNil(err)
	}

	set, ok := structured.Decode[FlashcardSet](text)
	if !ok {
		return FlashcardSet{}, utils.WrapIfNotNil(ErrMalformedOutput)
	}
	cards := set.Cards[:0]
	for _, card := range set.Cards {
		if strings.TrimSpace(card.Front) == "" || strings.TrimSpace(card.Back) == "" {
			continue
		}
		cards = append(cards, card)
	}
	set.Cards = cards
	if strings.TrimSpace(set.Topic) == "" {
		set.Topic = topic
	}
	a.record(ctx, analytics.KindQnA, map[string]any{"feature": "flashcards", "topic": set.Topic})
	return set, nil
}

func clamp(n, fallback, limit int) int {
	if n <= 0 {
		return fallback
	}
	if n > limit {
		return limit
	}
	return n
}
