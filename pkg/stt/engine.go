package stt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/config"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

// Language is pinned so the engine never runs language detection.
const Language = "en"

// Engine is a loaded speech model.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) (model.AudioTranscript, error)
}

// Loader builds an Engine. It runs at most once per Handle.
type Loader func(ctx context.Context) (Engine, error)

type Stage string

const (
	StageLoad       Stage = "load"
	StageTranscribe Stage = "transcribe"
)

// EngineError tags a failure with the step that produced it.
type EngineError struct {
	Stage Stage
	Err   error
}

func (e *EngineError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("stt %s: %v", e.Stage, e.Err)
}

func (e *EngineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Handle owns one lazily loaded Engine. A failed load is remembered and
// returned to every later caller without retrying, except when the load was
// cut short by the caller's context.
type Handle struct {
	loader Loader

	mu      sync.Mutex
	loaded  bool
	engine  Engine
	loadErr error
}

func NewHandle(loader Loader) *Handle {
	return &Handle{loader: loader}
}

type options struct {
	runner   utils.CommandRunner
	lookPath func(file string) (string, error)
	stat     func(name string) (os.FileInfo, error)
}

type Option func(*options)

// WithCommandRunner replaces process execution for the whispercpp backend.
func WithCommandRunner(runner utils.CommandRunner) Option {
	return func(o *options) {
		if runner != nil {
			o.runner = runner
		}
	}
}

func withLookPath(lookPath func(file string) (string, error)) Option {
	return func(o *options) {
		o.lookPath = lookPath
	}
}

// New picks the backend named by cfg.Backend.
func New(cfg config.WhisperConfig, opts ...Option) *Handle {
	o := options{
		runner:   &utils.ExecRunner{},
		lookPath: exec.LookPath,
		stat:     os.Stat,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	switch cfg.Backend {
	case config.STTBackendOpenAI:
		return NewHandle(serverLoader(cfg))
	default:
		return NewHandle(whisperCPPLoader(cfg, o))
	}
}

// Load returns the engine, loading it on first use.
func (h *Handle) Load(ctx context.Context) (Engine, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loaded {
		return h.engine, h.loadErr
	}
	if h.loader == nil {
		h.loaded = true
		h.loadErr = errors.New("no speech engine configured")
		return nil, h.loadErr
	}

	engine, err := h.loader(ctx)
	if err != nil && ctx.Err() != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	h.loaded = true
	h.engine = engine
	h.loadErr = utils.WrapIfNotNil(err)
	return h.engine, h.loadErr
}

// Warm loads the engine ahead of the first request. Failure is only logged;
// the same error is reported by the first Transcribe.
func (h *Handle) Warm(ctx context.Context) {
	if _, err := h.Load(ctx); err != nil {
		logging.NewLogger(ctx).Warnf("stt warm load failed: %v", err)
		return
	}
	logging.NewLogger(ctx).Infof("stt engine ready")
}

// Transcribe returns the segment texts of audioPath joined by single spaces
// in chronological order. The text may be empty.
func (h *Handle) Transcribe(ctx context.Context, audioPath string) (string, error) {
	engine, err := h.Load(ctx)
	if err != nil {
		return "", &EngineError{Stage: StageLoad, Err: err}
	}

	transcript, err := engine.Transcribe(ctx, audioPath)
	if err != nil {
		return "", &EngineError{Stage: StageTranscribe, Err: err}
	}
	return transcriptText(transcript), nil
}

func transcriptText(transcript model.AudioTranscript) string {
	if len(transcript.Segments) == 0 {
		return strings.TrimSpace(transcript.Text)
	}
	segments := append([]model.AudioSegment(nil), transcript.Segments...)
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
	texts := make([]string, 0, len(segments))
	for _, segment := range segments {
		texts = append(texts, segment.Text)
	}
	return utils.JoinNonBlank(texts)
}
