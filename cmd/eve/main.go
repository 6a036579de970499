// Eve - a wake-word voice assistant.
//
// Say the wake word (or hold the push-to-talk key), speak a command, and Eve
// answers out loud:
//   - Voice activity gating (WebRTC VAD or calibrated energy threshold)
//   - Speech-to-Text (Whisper via sherpa-onnx or whisper.cpp)
//   - Language model (OpenRouter, OpenAI or Ollama)
//   - Text-to-Speech (Kokoro via sherpa-onnx or Piper)
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/agalue/eve/internal/assistant"
	"github.com/agalue/eve/internal/audio"
	"github.com/agalue/eve/internal/config"
	"github.com/agalue/eve/internal/llm"
	"github.com/agalue/eve/internal/logging"
	"github.com/agalue/eve/internal/recorder"
	"github.com/agalue/eve/internal/stt"
	"github.com/agalue/eve/internal/trigger"
	"github.com/agalue/eve/internal/tts"
	"github.com/agalue/eve/internal/vad"
)

func run() {
	os.Exit(eve(os.Args[1:]))
}

func eve(args []string) int {
	cfg, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	if cfg.ListVoices {
		config.PrintVoices(os.Stdout)
		return 0
	}
	if cfg.VoiceInfo != "" {
		if err := config.PrintVoiceInfo(os.Stdout, cfg.VoiceInfo); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	closeLog, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Verbose: cfg.Verbose, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}
	defer closeLog()

	if err := cfg.CheckModels(); err != nil {
		log.Error().Err(err).Msg("Configuration error")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("🎤 Eve starting...")
	log.Info().Str("provider", cfg.Provider).Int("threads", cfg.NumThreads).Msg("⚡ Acceleration")

	brain, err := newBrain(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create LLM client")
		return 1
	}

	player, err := audio.NewPlayer(cfg.AudioBufferMs)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create audio player")
		return 1
	}
	defer player.Close()

	var (
		transcriber stt.Transcriber
		speaker     tts.Speaker
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("engine", cfg.STTEngine).Msg("🧠 Loading speech recognition models...")
		t, err := newTranscriber(cfg)
		if err != nil {
			return fmt.Errorf("failed to create STT engine: %w", err)
		}
		transcriber = t
		log.Info().Msg("✅ Speech recognition ready")
		return nil
	})
	g.Go(func() error {
		log.Info().Str("engine", cfg.TTSEngine).Str("voice", cfg.TTSVoice).Msg("🔊 Loading text-to-speech models...")
		s, err := newSpeaker(cfg, player)
		if err != nil {
			return fmt.Errorf("failed to create TTS engine: %w", err)
		}
		speaker = s
		log.Info().Msg("✅ Text-to-speech ready")
		return nil
	})
	if err := g.Wait(); err != nil {
		closeIfCloser(transcriber)
		closeIfCloser(speaker)
		log.Error().Err(err).Msg("Startup failed")
		return 1
	}
	defer closeIfCloser(transcriber)
	defer closeIfCloser(speaker)

	src, err := newSource(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open microphone")
		return 1
	}
	defer src.Close()

	gate, err := vad.New(vad.Config{
		Strategy:       vad.Strategy(cfg.VADMode),
		Aggressiveness: cfg.VADAggressiveness,
		VoiceBoost:     cfg.VoiceBoost,
		NoiseFloorAdd:  cfg.NoiseFloorAdd,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create voice activity gate")
		return 1
	}
	rec := recorder.New(src, gate, recorder.Config{
		FrameDuration:     cfg.FrameDuration(),
		SilenceTimeout:    cfg.SilenceTimeout,
		MaxDuration:       cfg.MaxCommand,
		CalibrationWindow: cfg.CalibrationWindow,
	})

	flag := &trigger.Flag{}
	startPushToTalk(ctx, cfg.PushToTalkKey, flag)

	a := assistant.New(assistant.Options{
		Wake: assistant.NewWakeListener(src, transcriber, flag, assistant.WakeConfig{
			Phrase:       cfg.WakeWord,
			Window:       cfg.WakeWindow,
			PollInterval: cfg.WakePollInterval,
		}),
		Recorder:    rec,
		Transcriber: transcriber,
		Brain:       brain,
		Speaker:     speaker,
		Console:     os.Stdout,
		Greeting:    cfg.Greeting,
		Fallback:    cfg.Fallback,
		Farewell:    cfg.Farewell,
		ErrorPause:  cfg.ErrorPause,
		SettleDelay: cfg.PostPlaybackDelay,
	})
	if err := a.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Assistant stopped")
		return 1
	}
	log.Info().Msg("✅ Shutdown complete")
	return 0
}

func newBrain(ctx context.Context, cfg *config.Config) (*llm.Brain, error) {
	var client llm.Client
	switch cfg.LLMProvider {
	case config.ProviderOllama:
		c, err := llm.NewOllama(llm.OllamaConfig{
			Host:        cfg.LLMBaseURL,
			Model:       cfg.LLMModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.LLMTimeout,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("url", cfg.LLMBaseURL).Msg("🔗 Checking Ollama connection...")
		if err := c.HealthCheck(ctx); err != nil {
			return nil, err
		}
		client = c
	default:
		c, err := llm.NewOpenAI(llm.OpenAIConfig{
			BaseURL: cfg.LLMBaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
			Referer: cfg.Referer,
			Title:   cfg.Title,
		})
		if err != nil {
			return nil, err
		}
		client = c
	}
	log.Info().Str("provider", cfg.LLMProvider).Str("model", cfg.LLMModel).Msg("✅ Language model configured")
	return llm.NewBrain(client, cfg.SystemPrompt, cfg.LLMTimeout), nil
}

func newTranscriber(cfg *config.Config) (stt.Transcriber, error) {
	if cfg.STTEngine == "whispercpp" {
		w, err := stt.NewWhisperCPP(cfg.WhisperCPPModel, cfg.STTLanguage, cfg.STTThreads)
		if err != nil || !cfg.STTVADFilter {
			return w, err
		}
		return stt.NewSpeechFilter(w, stt.NewSilero(stt.SileroConfig{
			Model:           cfg.VADModel,
			Threshold:       cfg.VADThreshold,
			SilenceDuration: cfg.VADSilenceDuration,
			SampleRate:      cfg.SampleRate,
			Threads:         cfg.VADThreads,
		})), nil
	}
	return stt.NewSherpa(&stt.SherpaConfig{
		WhisperEncoder:     cfg.WhisperEncoder,
		WhisperDecoder:     cfg.WhisperDecoder,
		WhisperTokens:      cfg.WhisperTokens,
		Language:           cfg.STTLanguage,
		Provider:           cfg.Provider,
		Threads:            cfg.STTThreads,
		SampleRate:         cfg.SampleRate,
		Verbose:            cfg.Verbose,
		VADFilter:          cfg.STTVADFilter,
		VADModel:           cfg.VADModel,
		VADThreshold:       cfg.VADThreshold,
		VADSilenceDuration: cfg.VADSilenceDuration,
		VADThreads:         cfg.VADThreads,
	})
}

func newSpeaker(cfg *config.Config, player *audio.Player) (tts.Speaker, error) {
	if cfg.TTSEngine == "piper" {
		return tts.NewPiper(tts.PiperConfig{
			Binary:      cfg.PiperBinary,
			Model:       cfg.PiperModel,
			ModelConfig: cfg.PiperModelConfig,
			OutputPath:  cfg.TTSOutput,
		}, player)
	}
	return tts.NewKokoro(&tts.KokoroConfig{
		Model:      cfg.TTSModel,
		Voices:     cfg.TTSVoices,
		Tokens:     cfg.TTSTokens,
		DataDir:    cfg.TTSData,
		Lexicon:    cfg.TTSLexicon,
		Language:   cfg.TTSLanguage,
		SpeakerID:  cfg.TTSSpeakerID,
		Speed:      cfg.TTSSpeed,
		Provider:   cfg.Provider,
		Threads:    cfg.TTSThreads,
		Verbose:    cfg.Verbose,
		OutputPath: cfg.TTSOutput,
	}, player)
}

func newSource(cfg *config.Config) (audio.Source, error) {
	capture := audio.CaptureConfig{SampleRate: cfg.SampleRate, DeviceIndex: cfg.MicIndex}
	if cfg.AudioBackend == "portaudio" {
		return audio.NewPortAudioSource(capture)
	}
	return audio.NewCapturer(capture)
}

// startPushToTalk mirrors the hotkey into flag in the background. A hotkey
// that cannot be registered only disables push-to-talk.
func startPushToTalk(ctx context.Context, combo string, flag *trigger.Flag) {
	if combo == "" || combo == "none" {
		return
	}
	hk, err := trigger.NewHotkey(combo)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Push-to-talk disabled")
		return
	}
	go func() {
		if err := trigger.Watch(ctx, hk, flag); err != nil {
			log.Warn().Err(err).Str("key", combo).Msg("⚠️ Push-to-talk disabled")
		}
	}()
	log.Info().Str("key", combo).Msg("⌨️ Push-to-talk enabled")
}

func closeIfCloser(v any) {
	if c, ok := v.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			log.Debug().Err(err).Msg("Close failed")
		}
	}
}
