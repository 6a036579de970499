//go:build linux

package sherpa

import (
	"os"
	"strings"

	impl "github.com/k2-fsa/sherpa-onnx-go-linux"
)

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

// availableProviders on Linux. CUDA needs a sherpa-onnx build with GPU
// support; the prebuilt module is CPU only.
var availableProviders = []string{"cpu", "cuda"}

// gpuIndicators cover discrete cards and Jetson SoCs.
var gpuIndicators = []string{
	"/usr/bin/nvidia-smi",
	"/usr/local/bin/nvidia-smi",
	"/opt/nvidia/bin/nvidia-smi",
	"/dev/nvidia0",
	"/dev/nvhost-gpu",
	"/dev/nvhost-ctrl-gpu",
	"/dev/nvmap",
	"/etc/nv_tegra_release",
	"/sys/devices/gpu.0",
	"/sys/devices/17000000.ga10b",
	"/sys/devices/17000000.gv11b",
}

func defaultProvider() string {
	for _, p := range gpuIndicators {
		if _, err := os.Stat(p); err == nil {
			return "cuda"
		}
	}
	if data, err := os.ReadFile("/proc/device-tree/compatible"); err == nil {
		s := string(data)
		if strings.Contains(s, "nvidia,tegra") || strings.Contains(s, "nvidia,jetson") {
			return "cuda"
		}
	}
	return "cpu"
}
