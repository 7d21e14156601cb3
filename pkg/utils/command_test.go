package utils

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/suite"
)

type CommandSuite struct {
	suite.Suite
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandSuite))
}

func (s *CommandSuite) TestLastLine() {
	s.Equal("/tmp/b.webm", CommandResult{Stdout: "noise\n/tmp/b.webm\n\n"}.LastLine())
	s.Empty(CommandResult{Stdout: "  \n"}.LastLine())
}

func (s *CommandSuite) TestNewCommandLogCopiesArgs() {
	args := []string{"-f", "x"}
	log := NewCommandLog("yt-dlp", args, CommandResult{ExitCode: 2, Stderr: "bad"})
	args[0] = "mutated"

	s.Equal("yt-dlp", log.Command)
	s.Equal([]string{"-f", "x"}, log.Args)
	s.Equal(2, log.ExitCode)
	s.Equal("bad", log.Stderr)
}

func (s *CommandSuite) TestExecRunnerMissingBinary() {
	runner := &ExecRunner{}
	_, err := runner.Run(context.Background(), "learnnext-definitely-missing-binary")

	s.Require().Error(err)
	s.ErrorIs(err, exec.ErrNotFound)
	s.Equal("ExecutableNotFound", ErrorKind(err))
}
