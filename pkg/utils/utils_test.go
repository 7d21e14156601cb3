package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsSuite struct {
	suite.Suite
}

func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsSuite))
}

func (s *UtilsSuite) TestWrapIfNotNilNil() {
	s.NoError(WrapIfNotNil(nil))
}

func (s *UtilsSuite) TestWrapIfNotNilAddsCallerAndContext() {
	base := errors.New("boom")
	err := WrapIfNotNil(base, "video_id=abc")

	s.ErrorIs(err, base)
	s.Contains(err.Error(), "TestWrapIfNotNilAddsCallerAndContext")
	s.Contains(err.Error(), "video_id=abc - boom")
}

func (s *UtilsSuite) TestContainsErrorSubstring() {
	err := fmt.Errorf("outer: %w", errors.New("Model is currently loading"))
	s.True(ContainsErrorSubstring(err, "loading"))
	s.False(ContainsErrorSubstring(err, "quota"))
	s.False(ContainsErrorSubstring(nil, "loading"))
}

type kindedError struct{}

func (kindedError) Error() string { return "kinded" }
func (kindedError) Kind() string  { return "HTTPError" }

func (s *UtilsSuite) TestErrorKind() {
	var syntaxErr error
	syntaxErr = json.Unmarshal([]byte("{"), &struct{}{})

	_, statErr := os.Stat("/definitely/not/here")

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", fmt.Errorf("wrap: %w", context.DeadlineExceeded), "Timeout"},
		{"canceled", context.Canceled, "Canceled"},
		{"not found", &exec.Error{Name: "yt-dlp", Err: exec.ErrNotFound}, "ExecutableNotFound"},
		{"net", &net.OpError{Op: "dial", Err: errors.New("refused")}, "NetworkError"},
		{"decode", syntaxErr, "DecodeError"},
		{"path", statErr, "PathError"},
		{"classifier", fmt.Errorf("wrap: %w", kindedError{}), "HTTPError"},
		{"generic", errors.New("x"), "Error"},
	}

	for _, tc := range cases {
		s.Equal(tc.want, ErrorKind(tc.err), tc.name)
	}
}

func (s *UtilsSuite) TestJoinNonBlank() {
	s.Equal("Hello world.", JoinNonBlank([]string{" Hello ", "", "  ", "world."}))
	s.Equal("", JoinNonBlank(nil))
}

func (s *UtilsSuite) TestTruncate() {
	s.Equal("héll", Truncate("héllo", 4))
	s.Equal("hi", Truncate("hi", 10))
	s.Equal("", Truncate("hi", 0))
}
