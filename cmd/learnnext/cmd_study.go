package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/assistant"
	"github.com/spf13/cobra"
)

func newSummarizeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "summarize [TEXT|-]",
		Short: "Summarize text, a document (--file) or a YouTube video (--video)",
		Example: `  learnnext summarize "long lecture notes..."
  cat notes.txt | learnnext summarize -
  learnnext summarize --file chapter3.pdf
  learnnext summarize --video dQw4w9WgXcQ`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			minLength, _ := cmd.Flags().GetInt("min-length")
			maxLength, _ := cmd.Flags().GetInt("max-length")
			opts := assistant.SummaryOptions{MinLength: minLength, MaxLength: maxLength}
			ctx := cmd.Context()

			if video, _ := cmd.Flags().GetString("video"); video != "" {
				summary, err := a.assistant.SummarizeVideo(ctx, video, opts)
				if err != nil {
					return err
				}
				return printOutput(cmd, summary.Summary+"\n\n"+summary.ReadingTime, summary)
			}

			if path, _ := cmd.Flags().GetString("file"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				summary, err := a.assistant.SummarizeDocument(ctx, filepath.Base(path), data, opts)
				if err != nil {
					return err
				}
				return printOutput(cmd, summary.Summary+"\n\n"+summary.ReadingTime, summary)
			}

			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			summary, err := a.assistant.Summarize(ctx, text, opts)
			if err != nil {
				return err
			}
			return printOutput(cmd, summary, map[string]string{
				"summary":      summary,
				"reading_time": assistant.ReadingTime(text),
			})
		},
	}
	c.Flags().String("file", "", "document to summarize (.txt, .pdf, .docx)")
	c.Flags().String("video", "", "YouTube URL or id to transcribe and summarize")
	c.Flags().Int("min-length", 0, "minimum summary tokens")
	c.Flags().Int("max-length", 0, "maximum summary tokens")
	return c
}

func newQuizCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "quiz TOPIC",
		Short: "Generate a multiple-choice quiz, optionally grading --answers",
		Example: `  learnnext quiz "photosynthesis" -n 3
  learnnext quiz "binary search" --difficulty hard --answers 1,0,3,2,2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			n, _ := cmd.Flags().GetInt("n")
			difficulty, _ := cmd.Flags().GetString("difficulty")
			quiz, err := a.assistant.GenerateQuiz(cmd.Context(), strings.Join(args, " "), n, difficulty)
			if err != nil {
				return err
			}

			answers, _ := cmd.Flags().GetIntSlice("answers")
			if !cmd.Flags().Changed("answers") {
				return printOutput(cmd, quizText(quiz, false), quiz)
			}
			score := a.assistant.GradeQuiz(cmd.Context(), quiz, answers)
			text := fmt.Sprintf("%s\n\nScore: %d/%d (%.0f%%)", quizText(quiz, true), score.Correct, score.Total, score.Accuracy*100)
			return printOutput(cmd, text, map[string]any{"quiz": quiz, "score": score})
		},
	}
	c.Flags().IntP("n", "n", 5, "number of questions")
	c.Flags().String("difficulty", "easy", "easy, medium or hard")
	c.Flags().IntSlice("answers", nil, "zero-based answer index per question, to grade the quiz")
	return c
}

func quizText(quiz assistant.Quiz, reveal bool) string {
	var b strings.Builder
	for i, question := range quiz.Questions {
		fmt.Fprintf(&b, "Q%d. %s\n", i+1, question.Question)
		for j, choice := range question.Choices {
			marker := " "
			if reveal && j == question.AnswerIndex {
				marker = "*"
			}
			fmt.Fprintf(&b, "  %s %c) %s\n", marker, 'A'+j, choice)
		}
		if reveal && question.Explanation != "" {
			fmt.Fprintf(&b, "    %s\n", question.Explanation)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func newFlashcardsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "flashcards TOPIC",
		Short: "Generate study flashcards",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			n, _ := cmd.Flags().GetInt("n")
			set, err := a.assistant.Flashcards(cmd.Context(), strings.Join(args, " "), n)
			if err != nil {
				return err
			}
			var b strings.Builder
			for i, card := range set.Cards {
				fmt.Fprintf(&b, "%d. %s\n   -> %s\n", i+1, card.Front, card.Back)
			}
			return printOutput(cmd, strings.TrimRight(b.String(), "\n"), set)
		},
	}
	c.Flags().IntP("n", "n", 10, "number of cards")
	return c
}

func newAskCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Ask an academic question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			domain, _ := cmd.Flags().GetString("domain")
			answer, err := a.assistant.AcademicQA(cmd.Context(), strings.Join(args, " "), domain)
			if err != nil {
				return err
			}
			return printOutput(cmd, answer, map[string]string{"answer": answer})
		},
	}
	c.Flags().String("domain", "General", "subject area")
	return c
}

func newCodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Coding help: review, debug and explain",
	}
	cmd.AddCommand(newCodeReviewCmd())
	cmd.AddCommand(newCodeDebugCmd())
	cmd.AddCommand(newCodeExplainCmd())
	return cmd
}

func newCodeReviewCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "review [FILE]",
		Short: "Review code from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var code string
			if len(args) == 1 && args[0] != "-" {
				bits, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				code = string(bits)
			} else {
				text, err := inputText(cmd, nil)
				if err != nil {
					return err
				}
				code = text
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			lang, _ := cmd.Flags().GetString("lang")
			review, err := a.assistant.CodeReview(cmd.Context(), code, lang)
			if err != nil {
				return err
			}
			return printOutput(cmd, review, map[string]string{"answer": review})
		},
	}
	c.Flags().String("lang", "Python", "programming language")
	return c
}

func newCodeDebugCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "debug",
		Short: "Diagnose an error message and optional snippet",
		RunE: func(cmd *cobra.Command, args []string) error {
			errText, err := fileOrFlag(cmd, "error")
			if err != nil {
				return err
			}
			snippet, err := fileOrFlag(cmd, "snippet")
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			lang, _ := cmd.Flags().GetString("lang")
			diagnosis, err := a.assistant.DebugHelp(cmd.Context(), errText, snippet, lang)
			if err != nil {
				return err
			}
			return printOutput(cmd, diagnosis, map[string]string{"answer": diagnosis})
		},
	}
	c.Flags().String("error", "", "error message or traceback")
	c.Flags().String("error-file", "", "read the error from this file")
	c.Flags().String("snippet", "", "related code snippet")
	c.Flags().String("snippet-file", "", "read the snippet from this file")
	c.Flags().String("lang", "Python", "programming language")
	return c
}

func newCodeExplainCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "explain CONCEPT",
		Short: "Explain a programming concept",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			lang, _ := cmd.Flags().GetString("lang")
			explanation, err := a.assistant.ExplainConcept(cmd.Context(), strings.Join(args, " "), lang)
			if err != nil {
				return err
			}
			return printOutput(cmd, explanation, map[string]string{"answer": explanation})
		},
	}
	c.Flags().String("lang", "Python", "programming language")
	return c
}

func newPlanCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "plan",
		Short: "Build a personalised weekly study plan",
		Example: `  learnnext plan --course "Linear Algebra" --grade B --goals "ace the final" --hours 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			request := assistant.PlanRequest{}
			request.Name, _ = cmd.Flags().GetString("name")
			request.Course, _ = cmd.Flags().GetString("course")
			request.Grade, _ = cmd.Flags().GetString("grade")
			request.Goals, _ = cmd.Flags().GetString("goals")
			request.HoursPerWeek, _ = cmd.Flags().GetInt("hours")

			plan, err := a.assistant.StudyPlan(cmd.Context(), request)
			if err != nil {
				return err
			}
			return printOutput(cmd, plan, map[string]string{"plan": plan})
		},
	}
	c.Flags().String("name", "", "student name")
	c.Flags().String("course", "", "course or subject")
	c.Flags().String("grade", "", "current grade")
	c.Flags().String("goals", "", "learning goals")
	c.Flags().Int("hours", 6, "study hours per week")
	return c
}

func newWellnessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wellness [TEXT|-]",
		Short: "Check in on how you feel and get study tips (not medical advice)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.assistant.Wellness(cmd.Context(), text)
			if err != nil {
				return err
			}

			var b strings.Builder
			if report.TopEmotion != "" {
				fmt.Fprintf(&b, "Top emotion: %s\n", report.TopEmotion)
			}
			for _, tip := range report.Tips {
				fmt.Fprintf(&b, "- %s\n", tip)
			}
			b.WriteString("\n" + report.Disclaimer)
			return printOutput(cmd, b.String(), report)
		},
	}
}
