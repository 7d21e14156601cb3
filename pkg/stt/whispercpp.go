package stt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/config"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

// whisperCPPEngine runs ffmpeg to get 16 kHz mono PCM and whisper-cli to
// transcribe it.
type whisperCPPEngine struct {
	whisperPath string
	ffmpegPath  string
	modelPath   string
	vadModel    string
	threads     int
	workers     int
	gpu         bool

	runner    utils.CommandRunner
	mkdirTemp func(dir, pattern string) (string, error)
	removeAll func(path string) error
	readFile  func(name string) ([]byte, error)
}

func whisperCPPLoader(cfg config.WhisperConfig, o options) Loader {
	return func(ctx context.Context) (Engine, error) {
		whisperPath, err := o.lookPath(cfg.Binary)
		if err != nil {
			return nil, utils.WrapIfNotNil(err, "binary="+cfg.Binary)
		}
		ffmpegPath, err := o.lookPath(cfg.FFmpegBinary)
		if err != nil {
			return nil, utils.WrapIfNotNil(err, "binary="+cfg.FFmpegBinary)
		}

		modelPath, err := resolveModelPath(cfg, o.stat)
		if err != nil {
			return nil, utils.WrapIfNotNil(err)
		}

		vadModel := ""
		if cfg.VAD {
			candidate := cfg.VADModelPath()
			if info, err := o.stat(candidate); err != nil {
				logging.NewLogger(ctx).Warnf("stt vad model %q unavailable, running without vad: %v", candidate, err)
			} else if info.IsDir() {
				logging.NewLogger(ctx).Warnf("stt vad model %q is a directory, running without vad", candidate)
			} else {
				vadModel = candidate
			}
		}

		logging.NewLogger(ctx).Infof(
			"stt backend=whispercpp model=%q device=%q compute=%q threads=%d workers=%d vad=%t",
			modelPath, cfg.Device(), cfg.ComputeType(), cfg.Threads, cfg.Workers, vadModel != "",
		)

		return &whisperCPPEngine{
			whisperPath: whisperPath,
			ffmpegPath:  ffmpegPath,
			modelPath:   modelPath,
			vadModel:    vadModel,
			threads:     max(1, cfg.Threads),
			workers:     max(1, cfg.Workers),
			gpu:         cfg.Device() == config.DeviceCUDA,
			runner:      o.runner,
			mkdirTemp:   os.MkdirTemp,
			removeAll:   os.RemoveAll,
			readFile:    os.ReadFile,
		}, nil
	}
}

// resolveModelPath maps the model size to ggml-{size}.bin under ModelDir. On
// CPU with int8 compute a q8_0 quantized file is used when present.
func resolveModelPath(cfg config.WhisperConfig, stat func(name string) (os.FileInfo, error)) (string, error) {
	size := strings.TrimSpace(cfg.ModelSize)
	if size == "" {
		return "", errors.New("model size is required")
	}

	if cfg.ComputeType() == "int8" {
		quantized := filepath.Join(cfg.ModelDir, "ggml-"+size+"-q8_0.bin")
		if info, err := stat(quantized); err == nil && !info.IsDir() {
			return quantized, nil
		}
	}

	modelPath := filepath.Join(cfg.ModelDir, "ggml-"+size+".bin")
	info, err := stat(modelPath)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("model path is a directory: %s", modelPath)
	}
	return modelPath, nil
}

func (e *whisperCPPEngine) Transcribe(ctx context.Context, audioPath string) (model.AudioTranscript, error) {
	log := logging.NewLogger(ctx)

	tempDir, err := e.mkdirTemp("", "learnnext-stt-*")
	if err != nil {
		return model.AudioTranscript{}, utils.WrapIfNotNil(err)
	}
	defer func() {
		_ = e.removeAll(tempDir)
	}()

	wavPath := filepath.Join(tempDir, "audio-16k-mono.wav")
	ffmpegArgs := buildFFmpegArgs(audioPath, wavPath)
	result, err := e.runner.Run(ctx, e.ffmpegPath, ffmpegArgs...)
	if err != nil {
		log.Warnf("stt ffmpeg failed exit=%d stderr=%q", result.ExitCode, utils.Truncate(result.Stderr, 500))
		return model.AudioTranscript{}, utils.WrapIfNotNil(err, "ffmpeg")
	}

	outputBase := filepath.Join(tempDir, "transcript")
	whisperArgs := e.buildWhisperArgs(wavPath, outputBase)
	result, err = e.runner.Run(ctx, e.whisperPath, whisperArgs...)
	if err != nil {
		log.Warnf("stt whisper failed exit=%d stderr=%q", result.ExitCode, utils.Truncate(result.Stderr, 500))
		return model.AudioTranscript{}, utils.WrapIfNotNil(err, "whisper")
	}

	content, err := e.readFile(outputBase + ".json")
	if err != nil {
		return model.AudioTranscript{}, utils.WrapIfNotNil(err)
	}
	transcript, err := parseWhisperJSON(content)
	if err != nil {
		return model.AudioTranscript{}, utils.WrapIfNotNil(err)
	}

	log.Infof("stt file=%q segments=%d", audioPath, len(transcript.Segments))
	return transcript, nil
}

func buildFFmpegArgs(inputPath, outPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		outPath,
	}
}

// buildWhisperArgs pins English, greedy single-beam decoding, zero
// temperature and no carried-over context.
func (e *whisperCPPEngine) buildWhisperArgs(wavPath, outputBase string) []string {
	args := []string{
		"-m", e.modelPath,
		"-f", wavPath,
		"-l", Language,
		"-bs", "1",
		"-bo", "1",
		"-tp", "0",
		"-mc", "0",
		"-t", strconv.Itoa(e.threads),
		"-p", strconv.Itoa(e.workers),
		"-oj",
		"-of", outputBase,
	}
	if !e.gpu {
		args = append(args, "-ng")
	}
	if e.vadModel != "" {
		args = append(args, "--vad", "-vm", e.vadModel)
	}
	return args
}

type whisperJSON struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseWhisperJSON(content []byte) (model.AudioTranscript, error) {
	parsed := whisperJSON{}
	if err := json.Unmarshal(content, &parsed); err != nil {
		return model.AudioTranscript{}, err
	}

	segments := make([]model.AudioSegment, 0, len(parsed.Transcription))
	texts := make([]string, 0, len(parsed.Transcription))
	for _, item := range parsed.Transcription {
		segments = append(segments, model.AudioSegment{
			Start: float64(item.Offsets.From) / 1000,
			End:   float64(item.Offsets.To) / 1000,
			Text:  item.Text,
		})
		texts = append(texts, item.Text)
	}
	return model.AudioTranscript{Text: utils.JoinNonBlank(texts), Segments: segments}, nil
}
