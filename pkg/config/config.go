package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGroq        = "groq"
	ProviderGemini      = "gemini"
	ProviderOllama      = "ollama"
	ProviderBedrock     = "bedrock"
	ProviderHuggingFace = "huggingface"

	STTBackendWhisperCPP = "whispercpp"
	STTBackendOpenAI     = "openai"

	AnalyticsSQLite = "sqlite"
	AnalyticsJSON   = "json"

	DeviceCPU  = "cpu"
	DeviceCUDA = "cuda"

	envConfigFile = "LEARNNEXT_CONFIG"
)

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	HF        HFConfig        `yaml:"huggingface"`
	Whisper   WhisperConfig   `yaml:"whisper"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`

	// Warnings collects values that were present but unusable and fell back to defaults.
	Warnings []string `yaml:"-"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type LLMConfig struct {
	Provider    string         `yaml:"provider"`
	Temperature float64        `yaml:"temperature"`
	// MaxTokens caps chat completions; 0 leaves the provider default.
	MaxTokens   int            `yaml:"max_tokens"`
	Groq        ProviderConfig `yaml:"groq"`
	Gemini      ProviderConfig `yaml:"gemini"`
	Ollama      ProviderConfig `yaml:"ollama"`
	Bedrock     ProviderConfig `yaml:"bedrock"`
	HuggingFace ProviderConfig `yaml:"huggingface"`
}

type HFConfig struct {
	APIKey             string  `yaml:"api_key"`
	InferenceURL       string  `yaml:"inference_url"`
	SummarizationModel string  `yaml:"summarization_model"`
	SentimentModel     string  `yaml:"sentiment_model"`
	EmotionModel       string  `yaml:"emotion_model"`
	TimeoutSec         float64 `yaml:"timeout_sec"`
}

func (c HFConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec * float64(time.Second))
}

type WhisperConfig struct {
	Backend   string `yaml:"backend"`
	ModelSize string `yaml:"model_size"`
	Compute   string `yaml:"compute"`
	UseCUDA   bool   `yaml:"use_cuda"`
	Threads   int    `yaml:"threads"`
	Workers   int    `yaml:"workers"`
	VAD       bool   `yaml:"vad"`

	ModelDir     string `yaml:"model_dir"`
	VADModel     string `yaml:"vad_model"`
	Binary       string `yaml:"binary"`
	FFmpegBinary string `yaml:"ffmpeg_binary"`

	ServerURL    string `yaml:"server_url"`
	ServerAPIKey string `yaml:"server_api_key"`
	ServerModel  string `yaml:"server_model"`
}

// DefaultVADModel is the whisper.cpp Silero VAD file looked up under ModelDir.
const DefaultVADModel = "ggml-silero-v5.1.2.bin"

// VADModelPath is VADModel, or DefaultVADModel under ModelDir when unset.
func (c WhisperConfig) VADModelPath() string {
	if path := strings.TrimSpace(c.VADModel); path != "" {
		return path
	}
	return filepath.Join(c.ModelDir, DefaultVADModel)
}

func (c WhisperConfig) Device() string {
	if c.UseCUDA {
		return DeviceCUDA
	}
	return DeviceCPU
}

// ComputeType is the effective precision; GPU always runs float16.
func (c WhisperConfig) ComputeType() string {
	if c.UseCUDA {
		return "float16"
	}
	if strings.TrimSpace(c.Compute) == "" {
		return "int8"
	}
	return c.Compute
}

type YouTubeConfig struct {
	CacheDir            string   `yaml:"cache_dir"`
	CookieFile          string   `yaml:"cookie_file"`
	DownloaderBinary    string   `yaml:"downloader_binary"`
	Languages           []string `yaml:"languages"`
	TimedTextTimeoutSec float64  `yaml:"timedtext_timeout_sec"`
	RequestsPerSecond   float64  `yaml:"requests_per_second"`
}

func (c YouTubeConfig) TimedTextTimeout() time.Duration {
	return time.Duration(c.TimedTextTimeoutSec * float64(time.Second))
}

type AnalyticsConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}

	return Config{
		LLM: LLMConfig{
			Provider:    ProviderGroq,
			Temperature: 0.2,
			Groq: ProviderConfig{
				BaseURL: "https://api.groq.com/openai/v1",
				Model:   "llama-3.1-8b-instant",
			},
			Gemini:      ProviderConfig{Model: "gemini-2.5-flash"},
			Ollama:      ProviderConfig{BaseURL: "http://localhost:11434", Model: "llama3.1"},
			Bedrock:     ProviderConfig{Model: "us.anthropic.claude-3-5-sonnet-20241022-v2:0"},
			HuggingFace: ProviderConfig{BaseURL: "https://router.huggingface.co", Model: "Qwen/Qwen2.5-72B-Instruct"},
		},
		HF: HFConfig{
			InferenceURL:       "https://api-inference.huggingface.co",
			SummarizationModel: "sshleifer/distilbart-cnn-12-6",
			SentimentModel:     "distilbert-base-uncased-finetuned-sst-2-english",
			EmotionModel:       "j-hartmann/emotion-english-distilroberta-base",
			TimeoutSec:         25,
		},
		Whisper: WhisperConfig{
			Backend:      STTBackendWhisperCPP,
			ModelSize:    "tiny.en",
			Compute:      "int8",
			Threads:      defaultThreads(),
			Workers:      1,
			VAD:          true,
			ModelDir:     filepath.Join(home, ".cache", "learnnext", "models"),
			Binary:       "whisper-cli",
			FFmpegBinary: "ffmpeg",
			ServerModel:  "Systran/faster-whisper-tiny.en",
		},
		YouTube: YouTubeConfig{
			CacheDir:            filepath.Join(home, ".cache", "learnnext", "yt"),
			DownloaderBinary:    "yt-dlp",
			Languages:           []string{"en", "en-US", "en-GB"},
			TimedTextTimeoutSec: 30,
			RequestsPerSecond:   5,
		},
		Analytics: AnalyticsConfig{
			Backend: AnalyticsSQLite,
			Path:    filepath.Join(home, ".learnnext", "analytics.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads .env (if present), an optional YAML file named by LEARNNEXT_CONFIG,
// then environment overrides.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return LoadWith(os.LookupEnv)
}

// LoadWith builds a Config from defaults, the YAML file named by the lookup and
// the lookup's overrides. It does not touch the process environment.
func LoadWith(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path, ok := lookup(envConfigFile); ok && strings.TrimSpace(path) != "" {
		if err := cfg.mergeYAMLFile(strings.TrimSpace(path)); err != nil {
			return Config{}, err
		}
	}

	env := envReader{lookup: lookup, cfg: &cfg}
	env.apply()
	if cfg.Whisper.Threads == 0 {
		cfg.Whisper.Threads = defaultThreads()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeYAMLFile(path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(contents, c); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	var problems []string

	switch c.LLM.Provider {
	case ProviderGroq, ProviderGemini, ProviderOllama, ProviderBedrock, ProviderHuggingFace:
	default:
		problems = append(problems, fmt.Sprintf("invalid LLM_PROVIDER: %q", c.LLM.Provider))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		problems = append(problems, fmt.Sprintf("invalid LLM_TEMPERATURE: %v (must be 0-2)", c.LLM.Temperature))
	}
	if c.LLM.MaxTokens < 0 {
		problems = append(problems, fmt.Sprintf("invalid LLM_MAX_TOKENS: %d (must be >= 0)", c.LLM.MaxTokens))
	}
	switch c.Whisper.Backend {
	case STTBackendWhisperCPP, STTBackendOpenAI:
	default:
		problems = append(problems, fmt.Sprintf("invalid STT_BACKEND: %q", c.Whisper.Backend))
	}
	if c.Whisper.Threads < 1 {
		problems = append(problems, "FAST_WHISPER_THREADS must be >= 1")
	}
	if c.Whisper.Workers < 1 {
		problems = append(problems, "FAST_WHISPER_WORKERS must be >= 1")
	}
	switch c.Analytics.Backend {
	case AnalyticsSQLite, AnalyticsJSON:
	default:
		problems = append(problems, fmt.Sprintf("invalid ANALYTICS_BACKEND: %q", c.Analytics.Backend))
	}
	if strings.TrimSpace(c.YouTube.CacheDir) == "" {
		problems = append(problems, "YT_CACHE_DIR must not be empty")
	}
	if c.HF.TimeoutSec <= 0 {
		problems = append(problems, "HF_TIMEOUT_SEC must be > 0")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	out := c
	out.LLM.Groq.APIKey = maskSecret(c.LLM.Groq.APIKey)
	out.LLM.Gemini.APIKey = maskSecret(c.LLM.Gemini.APIKey)
	out.LLM.Ollama.APIKey = maskSecret(c.LLM.Ollama.APIKey)
	out.LLM.Bedrock.APIKey = maskSecret(c.LLM.Bedrock.APIKey)
	out.LLM.HuggingFace.APIKey = maskSecret(c.LLM.HuggingFace.APIKey)
	out.HF.APIKey = maskSecret(c.HF.APIKey)
	out.Whisper.ServerAPIKey = maskSecret(c.Whisper.ServerAPIKey)
	return out
}

func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "****" + value[len(value)-2:]
}

func defaultThreads() int {
	threads := runtime.NumCPU() - 1
	if threads < 1 {
		return 1
	}
	return threads
}

type envReader struct {
	lookup func(string) (string, bool)
	cfg    *Config
}

func (e envReader) apply() {
	c := e.cfg

	e.str(&c.LLM.Provider, "LLM_PROVIDER")
	e.float(&c.LLM.Temperature, "LLM_TEMPERATURE")
	e.int(&c.LLM.MaxTokens, "LLM_MAX_TOKENS")
	e.str(&c.LLM.Groq.APIKey, "GROQ_API_KEY")
	e.str(&c.LLM.Groq.Model, "GROQ_MODEL")
	e.str(&c.LLM.Groq.BaseURL, "GROQ_BASE_URL")
	e.str(&c.LLM.Gemini.APIKey, "GEMINI_KEY")
	e.str(&c.LLM.Gemini.Model, "GEMINI_MODEL")
	e.str(&c.LLM.Ollama.BaseURL, "OLLAMA_BASE_URL")
	e.str(&c.LLM.Ollama.Model, "OLLAMA_MODEL")
	e.str(&c.LLM.Bedrock.BaseURL, "BEDROCK_BASE_URL")
	e.str(&c.LLM.Bedrock.Model, "BEDROCK_MODEL")
	e.str(&c.LLM.HuggingFace.BaseURL, "HF_BASE_URL")
	e.str(&c.LLM.HuggingFace.Model, "HF_MODEL")

	e.str(&c.HF.APIKey, "HF_TOKEN")
	e.str(&c.HF.APIKey, "HF_API_KEY")
	e.str(&c.HF.InferenceURL, "HF_INFERENCE_URL")
	e.str(&c.HF.SummarizationModel, "HF_SUMMARIZATION_MODEL")
	e.str(&c.HF.SentimentModel, "HF_SENTIMENT_MODEL")
	e.str(&c.HF.EmotionModel, "HF_EMOTION_MODEL")
	e.float(&c.HF.TimeoutSec, "HF_TIMEOUT_SEC")
	if c.LLM.HuggingFace.APIKey == "" {
		c.LLM.HuggingFace.APIKey = c.HF.APIKey
	}

	e.str(&c.Whisper.Backend, "STT_BACKEND")
	e.str(&c.Whisper.ModelSize, "FAST_WHISPER_MODEL")
	e.str(&c.Whisper.Compute, "FAST_WHISPER_COMPUTE")
	e.threads(&c.Whisper.Threads, "FAST_WHISPER_THREADS")
	e.int(&c.Whisper.Workers, "FAST_WHISPER_WORKERS")
	e.flag(&c.Whisper.UseCUDA, "USE_CUDA")
	e.flag(&c.Whisper.VAD, "WHISPER_VAD")
	e.str(&c.Whisper.ModelDir, "WHISPER_MODEL_DIR")
	e.str(&c.Whisper.VADModel, "WHISPER_VAD_MODEL")
	e.str(&c.Whisper.Binary, "WHISPER_BIN")
	e.str(&c.Whisper.FFmpegBinary, "FFMPEG_BIN")
	e.str(&c.Whisper.ServerURL, "WHISPER_SERVER_URL")
	e.str(&c.Whisper.ServerAPIKey, "WHISPER_SERVER_API_KEY")
	e.str(&c.Whisper.ServerModel, "WHISPER_SERVER_MODEL")

	e.str(&c.YouTube.CacheDir, "YT_CACHE_DIR")
	e.str(&c.YouTube.CookieFile, "YT_COOKIES")
	e.str(&c.YouTube.DownloaderBinary, "YT_DLP_BIN")
	e.list(&c.YouTube.Languages, "YT_LANGUAGES")
	e.float(&c.YouTube.TimedTextTimeoutSec, "YT_TIMEDTEXT_TIMEOUT_SEC")
	e.float(&c.YouTube.RequestsPerSecond, "YT_REQUESTS_PER_SEC")

	e.str(&c.Analytics.Backend, "ANALYTICS_BACKEND")
	e.str(&c.Analytics.Path, "ANALYTICS_PATH")

	e.str(&c.Log.Level, "LOG_LEVEL")
	e.str(&c.Log.Format, "LOG_FORMAT")
	e.str(&c.Log.File, "LOG_FILE")

	e.str(&c.Server.Addr, "LEARNNEXT_ADDR")
}

func (e envReader) value(key string) (string, bool) {
	raw, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func (e envReader) str(target *string, key string) {
	if v, ok := e.value(key); ok {
		*target = v
	}
}

func (e envReader) int(target *int, key string) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		e.warn(key, v)
		return
	}
	*target = parsed
}

// threads accepts 0 as the engine default; negative or non-numeric values
// keep the current setting.
func (e envReader) threads(target *int, key string) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		e.warn(key, v)
		return
	}
	*target = parsed
}

func (e envReader) float(target *float64, key string) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.warn(key, v)
		return
	}
	*target = parsed
}

// flag treats "1" and strconv-style true values as set.
func (e envReader) flag(target *bool, key string) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		e.warn(key, v)
		return
	}
	*target = parsed
}

func (e envReader) list(target *[]string, key string) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) > 0 {
		*target = out
	}
}

func (e envReader) warn(key, value string) {
	e.cfg.Warnings = append(e.cfg.Warnings, fmt.Sprintf("%s=%q is not valid; using default", key, value))
}
