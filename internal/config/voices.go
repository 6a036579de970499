package config

import (
	"fmt"
	"io"
	"strings"
)

// Voice is what the Kokoro engine needs to speak with one voice.
type Voice struct {
	SpeakerID  int
	EspeakCode string // espeak-ng language for phonemes outside the lexicon
	Language   string
}

type voiceGroup struct {
	language string
	espeak   string
	names    []string
}

// kokoroVoices is the Kokoro multi-lang v1.0 catalogue. Speaker IDs follow
// the order of this list, so entries must never be reordered.
var kokoroVoices = []voiceGroup{
	{"American English", "en-us", []string{
		"af_alloy", "af_aoede", "af_bella", "af_heart", "af_jessica", "af_kore",
		"af_nicole", "af_nova", "af_river", "af_sarah", "af_sky",
		"am_adam", "am_echo", "am_eric", "am_fenrir", "am_liam", "am_michael",
		"am_onyx", "am_puck", "am_santa",
	}},
	{"British English", "en-gb", []string{
		"bf_alice", "bf_emma", "bf_isabella", "bf_lily",
		"bm_daniel", "bm_fable", "bm_george", "bm_lewis",
	}},
	{"Spanish", "es", []string{"ef_dora", "em_alex"}},
	{"French", "fr-fr", []string{"ff_siwis"}},
	{"Hindi", "hi", []string{"hf_alpha", "hf_beta", "hm_omega", "hm_psi"}},
	{"Italian", "it", []string{"if_sara", "im_nicola"}},
	{"Japanese", "ja", []string{"jf_alpha", "jf_gongitsune", "jf_nezumi", "jf_tebukuro", "jm_kumo"}},
	{"Portuguese BR", "pt-br", []string{"pf_dora", "pm_alex", "pm_santa"}},
	{"Mandarin Chinese", "cmn", []string{
		"zf_xiaobei", "zf_xiaoni", "zf_xiaoxiao", "zf_xiaoyi",
		"zm_yunjian", "zm_yunxi", "zm_yunxia", "zm_yunyang",
	}},
}

// Voices indexes the catalogue by voice name.
var Voices = indexVoices(kokoroVoices)

func indexVoices(groups []voiceGroup) map[string]Voice {
	out := make(map[string]Voice)
	id := 0
	for _, g := range groups {
		for _, name := range g.names {
			out[name] = Voice{SpeakerID: id, EspeakCode: g.espeak, Language: g.language}
			id++
		}
	}
	return out
}

// GetVoice returns nil for unknown names.
func GetVoice(name string) *Voice {
	if voice, ok := Voices[name]; ok {
		return &voice
	}
	return nil
}

func VoiceExists(name string) bool {
	_, ok := Voices[name]
	return ok
}

// PrintVoices is the --list-voices output.
func PrintVoices(w io.Writer) {
	fmt.Fprintf(w, "Kokoro TTS v1.0: %d voices\n", len(Voices))
	for _, g := range kokoroVoices {
		fmt.Fprintf(w, "\n── %s (%d) ──\n", g.language, len(g.names))
		fmt.Fprintf(w, "%-15s %-4s %s\n", "VOICE", "ID", "ESPEAK")
		fmt.Fprintln(w, strings.Repeat("─", 40))
		for _, name := range g.names {
			fmt.Fprintf(w, "%-15s %-4d %s\n", name, Voices[name].SpeakerID, g.espeak)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: eve --tts-voice bf_emma")
}

// PrintVoiceInfo is the --voice-info output.
func PrintVoiceInfo(w io.Writer, name string) error {
	voice := GetVoice(name)
	if voice == nil {
		return fmt.Errorf("voice '%s' not found. Run with --list-voices to see available voices", name)
	}
	fmt.Fprintf(w, "Voice:       %s\n", name)
	fmt.Fprintf(w, "Speaker ID:  %d\n", voice.SpeakerID)
	fmt.Fprintf(w, "Language:    %s\n", voice.Language)
	fmt.Fprintf(w, "Espeak code: %s\n", voice.EspeakCode)
	return nil
}
