package audio

import (
	"math"
	"testing"
)

func sine(freq float64, rate, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func TestResampleLengths(t *testing.T) {
	tests := []struct {
		from, to, in, want int
	}{
		{48000, 16000, 4800, 1600},
		{16000, 48000, 1600, 4800},
		{22050, 24000, 2205, 2400},
		{16000, 16000, 100, 100},
	}
	for _, tt := range tests {
		got := Resample(make([]float32, tt.in), tt.from, tt.to)
		if len(got) != tt.want {
			t.Errorf("Resample %d->%d len = %d, want %d", tt.from, tt.to, len(got), tt.want)
		}
	}
}

func TestResampleEmpty(t *testing.T) {
	if got := Resample(nil, 48000, 16000); len(got) != 0 {
		t.Errorf("len = %d", len(got))
	}
	if got := Resample(nil, 16000, 48000); len(got) != 0 {
		t.Errorf("len = %d", len(got))
	}
}

func TestDownsamplePreservesPassband(t *testing.T) {
	in := sine(440, 48000, 48000)
	out := Resample(in, 48000, 16000)

	// skip the filter warm-up
	var inPeak, outPeak float32
	for _, s := range in[4800:] {
		inPeak = max(inPeak, s)
	}
	for _, s := range out[1600:] {
		outPeak = max(outPeak, s)
	}
	if math.Abs(float64(outPeak-inPeak)) > 0.05 {
		t.Errorf("peak %v -> %v", inPeak, outPeak)
	}
}

func TestDownsampleAttenuatesAboveNyquist(t *testing.T) {
	out := Resample(sine(12000, 48000, 48000), 48000, 16000)
	var peak float32
	for _, s := range out[1600:] {
		peak = max(peak, float32(math.Abs(float64(s))))
	}
	if peak > 0.1 {
		t.Errorf("12 kHz tone leaked with peak %v", peak)
	}
}

func TestLinearUpsampleInterpolates(t *testing.T) {
	out := Resample([]float32{0, 1}, 1, 2)
	want := []float32{0, 0.5, 1, 1}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out = %v, want %v", out, want)
		}
	}
}

func TestResampleConstantHasNoEdges(t *testing.T) {
	in := make([]float32, 1440)
	for i := range in {
		in[i] = 0.5
	}
	out := Resample(in, 48000, 16000)
	if len(out) != 480 {
		t.Fatalf("len = %d", len(out))
	}
	for i, s := range out {
		if math.Abs(float64(s)-0.5) > 1e-3 {
			t.Fatalf("out[%d] = %v, want 0.5", i, s)
		}
	}
}

func TestResamplerChunksMatchWhole(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
	}{
		{"down", 48000, 16000},
		{"down fractional", 44100, 16000},
		{"up", 16000, 48000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sine(440, tt.from, 4096)

			whole := newResampler(tt.from, tt.to).process(in)

			r := newResampler(tt.from, tt.to)
			var chunked []float32
			for _, size := range []int{1536, 7, 1536, 1017} {
				chunked = append(chunked, r.process(in[:size])...)
				in = in[size:]
			}

			if len(chunked) != len(whole) {
				t.Fatalf("chunked len = %d, whole len = %d", len(chunked), len(whole))
			}
			for i := range whole {
				if chunked[i] != whole[i] {
					t.Fatalf("sample %d: chunked %v, whole %v", i, chunked[i], whole[i])
				}
			}
		})
	}
}

func TestResamplerResetStartsClean(t *testing.T) {
	in := sine(440, 48000, 960)
	r := newResampler(48000, 16000)
	first := r.process(in)
	r.process(sine(1000, 48000, 960))
	r.reset()
	again := r.process(in)
	if len(again) != len(first) {
		t.Fatalf("len after reset = %d, want %d", len(again), len(first))
	}
	for i := range first {
		if again[i] != first[i] {
			t.Fatalf("sample %d differs after reset", i)
		}
	}
}
