// Package config provides configuration and CLI argument parsing for Eve.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/agalue/eve/internal/sherpa"
	"github.com/agalue/eve/internal/trigger"
	"github.com/agalue/eve/internal/vad"
)

// LLM providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderOllama     = "ollama"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	openAIBaseURL     = "https://api.openai.com/v1"
	ollamaBaseURL     = "http://localhost:11434"
)

var defaultModels = map[string]string{
	ProviderOpenRouter: "deepseek/deepseek-r1",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderOllama:     "gemma3:1b",
}

// ErrMissingAPIKey is returned when a remote provider has no credential.
var ErrMissingAPIKey = errors.New("missing API key")

// Config holds all configuration for the assistant.
// Populated from defaults, a YAML file, .env, environment variables and CLI flags.
type Config struct {
	// Audio
	SampleRate    int    `yaml:"sample_rate"`
	AudioBackend  string `yaml:"audio_backend"` // malgo or portaudio
	MicIndex      int    `yaml:"mic_index"`     // -1 = system default
	AudioBufferMs uint32 `yaml:"audio_buffer_ms"`

	// Wake detection
	WakeWord         string        `yaml:"wake_word"`
	WakeWindow       time.Duration `yaml:"wake_window"`
	WakePollInterval time.Duration `yaml:"wake_poll_interval"`
	PushToTalkKey    string        `yaml:"push_to_talk_key"` // "none" disables

	// Voice activity and recording
	VADMode           string        `yaml:"vad_mode"` // webrtc or energy
	VADFrame          time.Duration `yaml:"vad_frame"`
	VADAggressiveness int           `yaml:"vad_aggressiveness"`
	EnergyFrame       time.Duration `yaml:"energy_frame"`
	CalibrationWindow time.Duration `yaml:"calibration_window"`
	VoiceBoost        float64       `yaml:"voice_boost"`
	NoiseFloorAdd     float64       `yaml:"noise_floor_add"`
	SilenceTimeout    time.Duration `yaml:"silence_timeout"`
	MaxCommand        time.Duration `yaml:"max_command"`

	// Models
	ModelDir   string `yaml:"model_dir"`
	Provider   string `yaml:"provider"` // auto, cpu, cuda, coreml
	NumThreads int    `yaml:"num_threads"`
	VADThreads int    `yaml:"-"`
	STTThreads int    `yaml:"-"`
	TTSThreads int    `yaml:"-"`

	// Speech recognition
	STTEngine          string  `yaml:"stt_engine"` // sherpa or whispercpp
	STTLanguage        string  `yaml:"stt_language"`
	STTVADFilter       bool    `yaml:"stt_vad_filter"`
	VADThreshold       float32 `yaml:"vad_threshold"`
	VADSilenceDuration float32 `yaml:"vad_silence_duration"`
	WhisperCPPModel    string  `yaml:"whispercpp_model"`

	// Derived model paths
	VADModel       string `yaml:"-"`
	WhisperEncoder string `yaml:"-"`
	WhisperDecoder string `yaml:"-"`
	WhisperTokens  string `yaml:"-"`
	TTSModel       string `yaml:"-"`
	TTSVoices      string `yaml:"-"`
	TTSTokens      string `yaml:"-"`
	TTSData        string `yaml:"-"`
	TTSLexicon     string `yaml:"-"`
	TTSLanguage    string `yaml:"-"`
	TTSSpeakerID   int    `yaml:"-"`

	// Speech synthesis
	TTSEngine        string  `yaml:"tts_engine"` // kokoro or piper
	TTSVoice         string  `yaml:"tts_voice"`
	TTSSpeed         float32 `yaml:"tts_speed"`
	TTSOutput        string  `yaml:"tts_output"`
	PiperBinary      string  `yaml:"piper_binary"`
	PiperModel       string  `yaml:"piper_model"`
	PiperModelConfig string  `yaml:"piper_model_config"`

	// Language model
	LLMProvider  string        `yaml:"llm_provider"`
	LLMBaseURL   string        `yaml:"llm_base_url"`
	LLMModel     string        `yaml:"llm_model"`
	LLMTimeout   time.Duration `yaml:"llm_timeout"`
	Temperature  float64       `yaml:"temperature"`
	SystemPrompt string        `yaml:"system_prompt"`
	Referer      string        `yaml:"referer"`
	Title        string        `yaml:"title"`
	APIKey       string        `yaml:"-"`

	// Dialogue
	Greeting          string        `yaml:"greeting"`
	Fallback          string        `yaml:"fallback"`
	Farewell          string        `yaml:"farewell"`
	ErrorPause        time.Duration `yaml:"error_pause"`
	PostPlaybackDelay time.Duration `yaml:"post_playback_delay"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	Verbose  bool   `yaml:"verbose"`

	// One-shot commands
	ListVoices bool   `yaml:"-"`
	VoiceInfo  string `yaml:"-"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		SampleRate:    16000,
		AudioBackend:  "malgo",
		MicIndex:      -1,
		AudioBufferMs: 100,

		WakeWord:         "eve",
		WakeWindow:       1200 * time.Millisecond,
		WakePollInterval: 300 * time.Millisecond,
		PushToTalkKey:    "f9",

		VADMode:           "webrtc",
		VADFrame:          vad.FrameDuration(vad.StrategyWebRTC),
		VADAggressiveness: 2,
		EnergyFrame:       vad.FrameDuration(vad.StrategyEnergy),
		CalibrationWindow: 800 * time.Millisecond,
		VoiceBoost:        3.0,
		NoiseFloorAdd:     300,
		SilenceTimeout:    1200 * time.Millisecond,
		MaxCommand:        15 * time.Second,

		ModelDir: filepath.Join(homeDir, ".eve", "models"),
		Provider: "auto",

		STTEngine:          "sherpa",
		STTLanguage:        "en",
		STTVADFilter:       true,
		VADThreshold:       0.5,
		VADSilenceDuration: 0.8,

		// Kokoro af_bella, American female
		TTSEngine:   "kokoro",
		TTSVoice:    "af_bella",
		TTSSpeed:    0.93,
		PiperBinary: "piper",

		LLMProvider:  ProviderOpenRouter,
		LLMTimeout:   60 * time.Second,
		Temperature:  0.7,
		SystemPrompt: "You are Eve, a helpful, concise voice assistant. Keep responses brief, maximum 2-3 short sentences. Your responses will be read aloud, so you must NEVER use markdown, asterisks, underscores, backticks, brackets, code blocks, bullet points, numbered lists, special characters, or any formatting. Use only plain text with normal punctuation. Speak naturally as if having a conversation.",
		Referer:      "local-eve",
		Title:        "Eve Voice",

		Greeting:          "Hey, what's up? What can I do for you?",
		Fallback:          "I didn't catch that. Try again.",
		Farewell:          "Bye!",
		ErrorPause:        500 * time.Millisecond,
		PostPlaybackDelay: 300 * time.Millisecond,

		LogLevel: "info",
	}
}

// Load builds a Config from args (without the program name).
// Precedence, lowest first: defaults, --config YAML, --env-file, environment, flags.
func Load(args []string) (*Config, error) {
	cfg := Default()

	// First pass only finds the files to read; the full flag set parses later.
	pre := pflag.NewFlagSet("eve", pflag.ContinueOnError)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.SetOutput(io.Discard)
	pre.Usage = func() {}
	configPath := pre.String("config", "", "")
	envFile := pre.String("env-file", ".env", "")
	pre.BoolP("help", "h", false, "")
	_ = pre.Parse(args)

	if *configPath != "" {
		if err := cfg.loadYAML(*configPath); err != nil {
			return nil, err
		}
	}

	dotenv, err := readDotEnv(*envFile, pre.Changed("env-file"))
	if err != nil {
		return nil, err
	}
	getenv := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}

	fs := cfg.flagSet()
	fs.String("config", *configPath, "YAML configuration file")
	fs.String("env-file", *envFile, "File with KEY=value credentials, never overrides the environment")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.ListVoices || cfg.VoiceInfo != "" {
		return cfg, nil
	}

	cfg.resolveLLM(getenv)
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// readDotEnv returns the file's values without touching the process
// environment. A missing default file is not an error.
func readDotEnv(path string, explicit bool) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("reading env file: %w", err)
	}
	return values, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("EVE_LLM_PROVIDER", &c.LLMProvider)
	str("EVE_LLM_MODEL", &c.LLMModel)
	str("EVE_LLM_BASE_URL", &c.LLMBaseURL)
	str("EVE_WAKE_WORD", &c.WakeWord)
	str("EVE_VAD_MODE", &c.VADMode)
	str("EVE_MODEL_DIR", &c.ModelDir)
	str("EVE_LOG_LEVEL", &c.LogLevel)
	str("EVE_API_KEY", &c.APIKey)

	if v := getenv("EVE_MIC_INDEX"); v != "" {
		idx, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid EVE_MIC_INDEX %q: %w", v, err)
		}
		c.MicIndex = idx
	}
	return nil
}

func (c *Config) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("eve", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.BoolVar(&c.ListVoices, "list-voices", false, "List all available Kokoro voices and exit")
	fs.StringVar(&c.VoiceInfo, "voice-info", "", "Show information about a Kokoro voice and exit")

	// Audio
	fs.IntVar(&c.SampleRate, "sample-rate", c.SampleRate, "Capture sample rate in Hz")
	fs.StringVar(&c.AudioBackend, "audio-backend", c.AudioBackend, "Capture backend: malgo or portaudio")
	fs.IntVar(&c.MicIndex, "mic-index", c.MicIndex, "Input device index (-1 = system default)")
	fs.Uint32Var(&c.AudioBufferMs, "audio-buffer-ms", c.AudioBufferMs, "Playback buffer in ms (20 for wired, 100 for Bluetooth)")

	// Wake detection
	fs.StringVar(&c.WakeWord, "wake-word", c.WakeWord, "Wake phrase, matched case-insensitively")
	fs.DurationVar(&c.WakeWindow, "wake-window", c.WakeWindow, "Audio captured per wake check")
	fs.DurationVar(&c.WakePollInterval, "wake-poll-interval", c.WakePollInterval, "Pause between wake checks")
	fs.StringVar(&c.PushToTalkKey, "push-to-talk-key", c.PushToTalkKey, "Global hotkey that wakes the assistant (e.g. f9, ctrl+shift+space, none)")

	// Voice activity and recording
	fs.StringVar(&c.VADMode, "vad-mode", c.VADMode, "Voice activity strategy: webrtc or energy")
	fs.DurationVar(&c.VADFrame, "vad-frame", c.VADFrame, "Frame length for the webrtc strategy")
	fs.IntVar(&c.VADAggressiveness, "vad-aggressiveness", c.VADAggressiveness, "WebRTC VAD aggressiveness (0-3)")
	fs.DurationVar(&c.EnergyFrame, "energy-frame", c.EnergyFrame, "Frame length for the energy strategy")
	fs.DurationVar(&c.CalibrationWindow, "calibration-window", c.CalibrationWindow, "Noise calibration window for the energy strategy")
	fs.Float64Var(&c.VoiceBoost, "voice-boost", c.VoiceBoost, "Energy threshold multiplier over the baseline")
	fs.Float64Var(&c.NoiseFloorAdd, "noise-floor-add", c.NoiseFloorAdd, "Energy threshold offset over the boosted baseline")
	fs.DurationVar(&c.SilenceTimeout, "silence-timeout", c.SilenceTimeout, "Silence that ends a command")
	fs.DurationVar(&c.MaxCommand, "max-command", c.MaxCommand, "Hard cap on command length")

	// Models
	fs.StringVar(&c.ModelDir, "model-dir", c.ModelDir, "Directory containing model files (Whisper, VAD, TTS)")
	fs.StringVar(&c.Provider, "provider", c.Provider, "Hardware acceleration provider (auto, cpu, cuda, coreml)")
	fs.IntVar(&c.NumThreads, "num-threads", c.NumThreads, "Threads per model (0 = auto-detect based on CPU cores)")

	// Speech recognition
	fs.StringVar(&c.STTEngine, "stt-engine", c.STTEngine, "Speech recognition engine: sherpa or whispercpp")
	fs.StringVar(&c.STTLanguage, "stt-language", c.STTLanguage, "STT language code (e.g. 'en', 'es', 'auto' for detection)")
	fs.BoolVar(&c.STTVADFilter, "stt-vad-filter", c.STTVADFilter, "Run Silero VAD before Whisper and decode only speech")
	fs.Float32Var(&c.VADThreshold, "vad-threshold", c.VADThreshold, "Silero VAD threshold (0.0-1.0)")
	fs.Float32Var(&c.VADSilenceDuration, "vad-silence-duration", c.VADSilenceDuration, "Silero VAD silence in seconds that splits segments")
	fs.StringVar(&c.WhisperCPPModel, "whispercpp-model", c.WhisperCPPModel, "GGML model for the whispercpp engine")

	// Speech synthesis
	fs.StringVar(&c.TTSEngine, "tts-engine", c.TTSEngine, "Speech synthesis engine: kokoro or piper")
	fs.StringVar(&c.TTSVoice, "tts-voice", c.TTSVoice, "Kokoro voice name (see --list-voices)")
	fs.Float32Var(&c.TTSSpeed, "tts-speed", c.TTSSpeed, "Text-to-speech speed multiplier")
	fs.StringVar(&c.TTSOutput, "tts-output", c.TTSOutput, "Also write each reply to this WAV file")
	fs.StringVar(&c.PiperBinary, "piper-binary", c.PiperBinary, "Piper executable")
	fs.StringVar(&c.PiperModel, "piper-model", c.PiperModel, "Piper voice model (.onnx)")
	fs.StringVar(&c.PiperModelConfig, "piper-model-config", c.PiperModelConfig, "Piper voice config (.onnx.json)")

	// Language model
	fs.StringVar(&c.LLMProvider, "llm-provider", c.LLMProvider, "Language model provider: openrouter, openai or ollama")
	fs.StringVar(&c.LLMBaseURL, "llm-base-url", c.LLMBaseURL, "Override the provider endpoint")
	fs.StringVar(&c.LLMModel, "llm-model", c.LLMModel, "Model name (defaults per provider)")
	fs.DurationVar(&c.LLMTimeout, "llm-timeout", c.LLMTimeout, "Deadline for one model request")
	fs.Float64Var(&c.Temperature, "temperature", c.Temperature, "Ollama temperature (0.0-2.0)")
	fs.StringVar(&c.SystemPrompt, "system-prompt", c.SystemPrompt, "System persona sent with every request")

	// Dialogue
	fs.StringVar(&c.Greeting, "greeting", c.Greeting, "Spoken after the wake phrase")
	fs.StringVar(&c.Fallback, "fallback", c.Fallback, "Spoken when nothing was understood")
	fs.StringVar(&c.Farewell, "farewell", c.Farewell, "Printed on shutdown")
	fs.DurationVar(&c.ErrorPause, "error-pause", c.ErrorPause, "Pause after a failed turn")
	fs.DurationVar(&c.PostPlaybackDelay, "post-playback-delay", c.PostPlaybackDelay, "Wait after speaking before listening, so speaker echo dies down")

	// Logging
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Also write logs to this file")
	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "Enable verbose logging")

	return fs
}

// resolveLLM fills the API key, endpoint and model for the provider. With no
// OpenRouter key but an OpenAI one, the OpenAI endpoint is used instead.
func (c *Config) resolveLLM(getenv func(string) string) {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))

	switch c.LLMProvider {
	case ProviderOpenRouter:
		if c.APIKey == "" {
			c.APIKey = getenv("OPENROUTER_API_KEY")
		}
		if c.APIKey == "" {
			if key := getenv("OPENAI_API_KEY"); key != "" {
				log.Info().Msg("No OpenRouter key found, falling back to OpenAI")
				c.LLMProvider = ProviderOpenAI
				c.APIKey = key
				if c.LLMModel == defaultModels[ProviderOpenRouter] {
					c.LLMModel = ""
				}
			}
		}
	case ProviderOpenAI:
		if c.APIKey == "" {
			c.APIKey = getenv("OPENAI_API_KEY")
		}
	}

	if c.LLMBaseURL == "" {
		switch c.LLMProvider {
		case ProviderOpenRouter:
			c.LLMBaseURL = openRouterBaseURL
		case ProviderOpenAI:
			c.LLMBaseURL = openAIBaseURL
		case ProviderOllama:
			c.LLMBaseURL = ollamaBaseURL
		}
	}
	if c.LLMModel == "" {
		c.LLMModel = defaultModels[c.LLMProvider]
	}
}

// finalize derives model paths, the hardware provider and thread counts.
func (c *Config) finalize() error {
	if c.Verbose {
		c.LogLevel = "debug"
	}
	c.VADMode = strings.ToLower(c.VADMode)
	c.STTEngine = strings.ToLower(c.STTEngine)
	c.TTSEngine = strings.ToLower(c.TTSEngine)
	c.AudioBackend = strings.ToLower(c.AudioBackend)

	provider, err := sherpa.ResolveProvider(c.Provider)
	if err != nil {
		return err
	}
	c.Provider = provider
	c.normalizeThreadCounts()

	c.VADModel = filepath.Join(c.ModelDir, "silero_vad.onnx")
	c.WhisperEncoder = filepath.Join(c.ModelDir, "whisper", "whisper-small-encoder.int8.onnx")
	c.WhisperDecoder = filepath.Join(c.ModelDir, "whisper", "whisper-small-decoder.int8.onnx")
	c.WhisperTokens = filepath.Join(c.ModelDir, "whisper", "whisper-small-tokens.txt")
	if c.WhisperCPPModel == "" {
		c.WhisperCPPModel = filepath.Join(c.ModelDir, "whisper", "ggml-small.bin")
	}

	// Kokoro multi-lang v1.0
	ttsDir := filepath.Join(c.ModelDir, "tts", "kokoro-multi-lang-v1_0")
	c.TTSModel = filepath.Join(ttsDir, "model.onnx")
	c.TTSVoices = filepath.Join(ttsDir, "voices.bin")
	c.TTSTokens = filepath.Join(ttsDir, "tokens.txt")
	c.TTSData = filepath.Join(ttsDir, "espeak-ng-data")
	c.TTSLexicon = lexiconForVoice(ttsDir, c.TTSVoice)
	c.TTSLanguage = languageForVoice(c.TTSVoice)
	if v := GetVoice(c.TTSVoice); v != nil {
		c.TTSSpeakerID = v.SpeakerID
	}
	return nil
}

// normalizeThreadCounts picks thread counts from the CPU count.
// VAD is lightweight and gets one thread; Whisper and Kokoro get cores/3,
// which leaves headroom on small edge boards.
func (c *Config) normalizeThreadCounts() {
	cpuCores := runtime.NumCPU()
	if c.NumThreads <= 0 {
		c.NumThreads = max(1, cpuCores/3)
	}
	c.VADThreads = 1
	c.STTThreads = c.NumThreads
	c.TTSThreads = c.NumThreads

	log.Debug().Int("cores", cpuCores).Int("vad", c.VADThreads).Int("stt", c.STTThreads).
		Int("tts", c.TTSThreads).Msg("Thread counts")
}

// FrameDuration returns the recorder frame for the configured VAD strategy.
func (c *Config) FrameDuration() time.Duration {
	if vad.Strategy(c.VADMode) == vad.StrategyEnergy {
		return c.EnergyFrame
	}
	return c.VADFrame
}

// Validate checks settings that would otherwise fail mid-conversation.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.SampleRate > 0, "sample rate must be positive, got %d", c.SampleRate)
	check(oneOf(c.AudioBackend, "malgo", "portaudio"), "unknown audio backend %q", c.AudioBackend)
	check(strings.TrimSpace(c.WakeWord) != "", "wake word must not be empty")
	check(c.WakeWindow > 0, "wake window must be positive")
	check(c.WakePollInterval >= 0, "wake poll interval must not be negative")

	switch c.VADMode {
	case "webrtc":
		check(c.VADAggressiveness >= 0 && c.VADAggressiveness <= 3,
			"vad aggressiveness must be 0-3, got %d", c.VADAggressiveness)
		check(oneOf(strconv.Itoa(c.SampleRate), "8000", "16000", "32000", "48000"),
			"webrtc vad needs 8000, 16000, 32000 or 48000 Hz, got %d", c.SampleRate)
		check(c.VADFrame >= 10*time.Millisecond, "vad frame must be at least 10ms, got %v", c.VADFrame)
	case "energy":
		check(c.EnergyFrame > 0, "energy frame must be positive")
		check(c.CalibrationWindow > 0, "calibration window must be positive")
		check(c.VoiceBoost > 0, "voice boost must be positive")
	default:
		errs = append(errs, fmt.Errorf("unknown vad mode %q (must be 'webrtc' or 'energy')", c.VADMode))
	}
	check(c.SilenceTimeout > 0, "silence timeout must be positive")
	check(c.MaxCommand > 0, "max command must be positive")
	check(c.PostPlaybackDelay >= 0, "post playback delay must not be negative")

	check(oneOf(c.STTEngine, "sherpa", "whispercpp"), "unknown stt engine %q", c.STTEngine)
	check(oneOf(c.TTSEngine, "kokoro", "piper"), "unknown tts engine %q", c.TTSEngine)
	if c.TTSEngine == "kokoro" {
		check(VoiceExists(c.TTSVoice), "voice '%s' not found. Run with --list-voices to see available voices", c.TTSVoice)
		check(c.TTSSpeed > 0, "tts speed must be positive")
	}
	if c.TTSEngine == "piper" {
		check(c.PiperModel != "", "--piper-model is required for the piper engine")
	}

	switch c.LLMProvider {
	case ProviderOpenRouter, ProviderOpenAI:
		if c.APIKey == "" {
			errs = append(errs, fmt.Errorf("%w for %s: set OPENROUTER_API_KEY, OPENAI_API_KEY or EVE_API_KEY", ErrMissingAPIKey, c.LLMProvider))
		}
	case ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLMProvider))
	}
	check(c.LLMTimeout > 0, "llm timeout must be positive")

	if c.PushToTalkKey != "" && c.PushToTalkKey != "none" {
		if _, err := trigger.ParseHotkey(c.PushToTalkKey); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// CheckModels verifies that the files for the selected engines exist.
func (c *Config) CheckModels() error {
	var required []string
	switch c.STTEngine {
	case "sherpa":
		required = append(required, c.WhisperEncoder, c.WhisperDecoder, c.WhisperTokens)
	case "whispercpp":
		required = append(required, c.WhisperCPPModel)
	}
	if c.STTVADFilter {
		required = append(required, c.VADModel)
	}
	switch c.TTSEngine {
	case "kokoro":
		required = append(required, c.TTSModel, c.TTSVoices, c.TTSTokens)
	case "piper":
		required = append(required, c.PiperModel)
	}

	for _, path := range required {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("required file not found: %s; download the models into --model-dir", path)
		}
	}
	return nil
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

// lexiconForVoice returns the lexicon files for a Kokoro voice.
//   - af_*, am_*: lexicon-us-en.txt
//   - bf_*, bm_*: lexicon-gb-en.txt
//   - zf_*, zm_*: lexicon-zh.txt combined with English
//   - other languages use espeak-ng through the lang parameter
func lexiconForVoice(ttsDir, voiceName string) string {
	voice := GetVoice(voiceName)
	if voice == nil {
		return filepath.Join(ttsDir, "lexicon-us-en.txt")
	}

	switch voice.EspeakCode {
	case "en-us":
		return filepath.Join(ttsDir, "lexicon-us-en.txt")
	case "en-gb":
		return filepath.Join(ttsDir, "lexicon-gb-en.txt")
	case "cmn":
		return filepath.Join(ttsDir, "lexicon-us-en.txt") + "," + filepath.Join(ttsDir, "lexicon-zh.txt")
	default:
		return ""
	}
}

// languageForVoice returns the espeak-ng code for voices without a lexicon.
func languageForVoice(voiceName string) string {
	voice := GetVoice(voiceName)
	if voice == nil {
		return ""
	}
	switch voice.EspeakCode {
	case "en-us", "en-gb", "cmn":
		return ""
	}
	return voice.EspeakCode
}
