package main

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/analytics"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/assistant"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/config"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/llms/huggingface"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/media"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/stt"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/transcript"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/youtube"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// app holds the wired services for one command invocation.
type app struct {
	cfg       config.Config
	registry  *prometheus.Registry
	speech    *stt.Handle
	assistant *assistant.Assistant
	closers   []io.Closer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logCloser, err := logging.Configure(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, closers: []io.Closer{logCloser}}

	log := logging.NewLogger(cmd.Context())
	for _, warning := range cfg.Warnings {
		log.Warnf("config: %s", warning)
	}
	log.Debugf("config loaded: %+v", cfg.Redacted())

	sink, err := analytics.Open(cfg.Analytics)
	if err != nil {
		log.Warnf("analytics disabled: %v", err)
		sink = analytics.Discard{}
	}
	a.closers = append(a.closers, sink)

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	orchestrator, speech, err := newOrchestrator(cfg, a.registry)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.speech = speech

	chat, err := assistant.NewProviderChat(cfg.LLM)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.assistant = assistant.New(
		chat,
		huggingface.NewInferenceClient(cfg.HF),
		assistant.WithTranscripts(orchestrator),
		assistant.WithUsage(sink),
		assistant.WithTemperature(cfg.LLM.Temperature),
	)
	return a, nil
}

func newOrchestrator(cfg config.Config, reg prometheus.Registerer) (*transcript.Orchestrator, *stt.Handle, error) {
	var limiter *rate.Limiter
	if cfg.YouTube.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.YouTube.RequestsPerSecond), 1)
	}

	cache, err := media.NewCache(cfg.YouTube.CacheDir)
	if err != nil {
		return nil, nil, err
	}
	downloader := media.NewDownloader(
		cache,
		media.WithDownloaderBinary(cfg.YouTube.DownloaderBinary),
		media.WithCookieFile(cfg.YouTube.CookieFile),
	)
	captions := youtube.NewCaptionClient(
		youtube.WithCaptionLanguages(cfg.YouTube.Languages),
		youtube.WithCaptionLimiter(limiter),
	)
	timedText := youtube.NewTimedTextClient(
		youtube.WithTimedTextTimeout(cfg.YouTube.TimedTextTimeout()),
		youtube.WithTimedTextLimiter(limiter),
	)
	speech := stt.New(cfg.Whisper)

	orchestrator := transcript.NewOrchestrator(
		captions,
		timedText,
		cache,
		downloader,
		speech,
		transcript.WithMetrics(transcript.NewMetrics(reg)),
	)
	return orchestrator, speech, nil
}

// loadConfig reads configuration, honouring --config and --log-level.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if path := flagString(cmd, "config"); strings.TrimSpace(path) != "" {
		if err := os.Setenv("LEARNNEXT_CONFIG", path); err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if level := flagString(cmd, "log-level"); strings.TrimSpace(level) != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

// warmSpeech loads the speech model in the background so the first
// speech-to-text request does not pay for it.
func (a *app) warmSpeech(ctx context.Context) {
	go a.speech.Warm(ctx)
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
