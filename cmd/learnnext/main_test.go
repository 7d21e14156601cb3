package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/assistant"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/suite"
)

type CLISuite struct {
	suite.Suite
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) TestRootRegistersCommands() {
	root := newRootCmd()
	names := map[string]bool{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}
	for _, name := range []string{"transcript", "summarize", "quiz", "flashcards", "ask", "code", "plan", "wellness", "usage", "serve", "mcp"} {
		s.True(names[name], name)
	}
}

func (s *CLISuite) TestLongRunningCommandsWarmSpeechByDefault() {
	for _, cmd := range []*cobra.Command{newServeCmd(), newMCPCmd()} {
		s.True(shouldWarm(cmd), cmd.Name())
		s.Require().NoError(cmd.Flags().Set("warm", "false"))
		s.False(shouldWarm(cmd), cmd.Name())
	}
	s.False(shouldWarm(&cobra.Command{Use: "transcript"}))
}

func (s *CLISuite) TestCodeSubcommands() {
	code := newCodeCmd()
	names := []string{}
	for _, cmd := range code.Commands() {
		names = append(names, cmd.Name())
	}
	s.ElementsMatch([]string{"review", "debug", "explain"}, names)
}

func (s *CLISuite) newCmd(stdin string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "test"}
	addGlobalFlags(cmd)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader(stdin))
	return cmd, out
}

func (s *CLISuite) TestPrintOutputFormats() {
	cmd, out := s.newCmd("")
	s.Require().NoError(printOutput(cmd, "plain", map[string]int{"n": 1}))
	s.Equal("plain\n", out.String())

	out.Reset()
	s.Require().NoError(cmd.PersistentFlags().Set("output", "json"))
	s.Require().NoError(printOutput(cmd, "plain", map[string]int{"n": 1}))
	s.JSONEq(`{"n":1}`, out.String())

	s.Require().NoError(cmd.PersistentFlags().Set("output", "yaml"))
	s.Error(printOutput(cmd, "plain", nil))
}

func (s *CLISuite) TestInputText() {
	cmd, _ := s.newCmd("from stdin")

	text, err := inputText(cmd, []string{"hello", "world"})
	s.Require().NoError(err)
	s.Equal("hello world", text)

	text, err = inputText(cmd, []string{"-"})
	s.Require().NoError(err)
	s.Equal("from stdin", text)
}

func (s *CLISuite) TestFileOrFlag() {
	cmd, _ := s.newCmd("")
	cmd.Flags().String("error", "", "")
	cmd.Flags().String("error-file", "", "")
	s.Require().NoError(cmd.Flags().Set("error", "inline"))

	value, err := fileOrFlag(cmd, "error")
	s.Require().NoError(err)
	s.Equal("inline", value)

	path := s.T().TempDir() + "/trace.txt"
	s.Require().NoError(writeFile(path, "from file"))
	s.Require().NoError(cmd.Flags().Set("error-file", path))
	value, err = fileOrFlag(cmd, "error")
	s.Require().NoError(err)
	s.Equal("from file", value)
}

func (s *CLISuite) TestQuizText() {
	quiz := assistant.Quiz{Questions: []assistant.QuizQuestion{
		{Question: "2+2?", Choices: []string{"3", "4", "5", "6"}, AnswerIndex: 1, Explanation: "basic sum"},
	}}

	s.Equal("Q1. 2+2?\n    A) 3\n    B) 4\n    C) 5\n    D) 6", quizText(quiz, false))
	s.Equal("Q1. 2+2?\n    A) 3\n  * B) 4\n    C) 5\n    D) 6\n    basic sum", quizText(quiz, true))
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o600)
}
