//go:build darwin

package sherpa

import impl "github.com/k2-fsa/sherpa-onnx-go-macos"

type (
	VoiceActivityDetector   = impl.VoiceActivityDetector
	VadModelConfig          = impl.VadModelConfig
	SpeechSegment           = impl.SpeechSegment
	OfflineRecognizer       = impl.OfflineRecognizer
	OfflineRecognizerConfig = impl.OfflineRecognizerConfig
	OfflineStream           = impl.OfflineStream
	OfflineTts              = impl.OfflineTts
	OfflineTtsConfig        = impl.OfflineTtsConfig
	GeneratedAudio          = impl.GeneratedAudio
)

var (
	NewVoiceActivityDetector    = impl.NewVoiceActivityDetector
	DeleteVoiceActivityDetector = impl.DeleteVoiceActivityDetector
	NewOfflineRecognizer        = impl.NewOfflineRecognizer
	DeleteOfflineRecognizer     = impl.DeleteOfflineRecognizer
	NewOfflineStream            = impl.NewOfflineStream
	DeleteOfflineStream         = impl.DeleteOfflineStream
	NewOfflineTts               = impl.NewOfflineTts
	DeleteOfflineTts            = impl.DeleteOfflineTts
)

var availableProviders = []string{"cpu", "coreml"}

// defaultProvider uses CoreML, which runs on the Neural Engine where present.
func defaultProvider() string { return "coreml" }
