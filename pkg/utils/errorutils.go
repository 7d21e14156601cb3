package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os/exec"
	"runtime"
	"strings"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
)

// ContainsErrorSubstring checks if the error or any of its wrapped errors contain the target substring.
func ContainsErrorSubstring(err error, target string) bool {
	for err != nil {
		if strings.Contains(err.Error(), target) {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

func WrapIfNotNil(err error, context ...string) error {
	if err == nil {
		return nil
	}

	callerName := "unknown"
	if pc, _, _, ok := runtime.Caller(1); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			callerName = fn.Name()
		}
	}

	parts := make([]string, 0, 1+len(context))
	parts = append(parts, callerName)
	parts = append(parts, context...)

	return fmt.Errorf("%s: %w", strings.Join(parts, " - "), err)
}

// KindClassifier lets an error report its own kind to ErrorKind.
type KindClassifier interface {
	Kind() string
}

// ErrorKind reduces err to a short CamelCase label suitable for reason codes.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	var classifier KindClassifier
	if errors.As(err, &classifier) {
		if kind := strings.TrimSpace(classifier.Kind()); kind != "" {
			return kind
		}
	}

	var (
		netErr    net.Error
		exitErr   *exec.ExitError
		pathErr   *fs.PathError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Timeout"
	case errors.Is(err, context.Canceled):
		return "Canceled"
	case errors.Is(err, exec.ErrNotFound):
		return "ExecutableNotFound"
	case errors.As(err, &exitErr):
		return "ExitError"
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return "Timeout"
		}
		return "NetworkError"
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return "DecodeError"
	case errors.As(err, &pathErr):
		return "PathError"
	default:
		return "Error"
	}
}

func PrintStack(title string, log logging.Logger) {
	log.Errorf(" %s Stack trace:", title)
	// skip = 2 to ignore printStack and its caller (defer wrapper)
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		log.Errorf("     *** %s (%s:%d)", fn.Name(), file, line)
	}
}
