package audio

import "math"

const polyphaseTaps = 64

// resampler converts a stream of chunks between rates. Downsampling runs a
// 64-tap Hamming-windowed sinc low-pass, upsampling interpolates linearly.
// Input is buffered until the whole window of an output sample has arrived,
// so splitting a stream into chunks never changes the result.
type resampler struct {
	step   float64   // input samples per output sample
	taps   []float32 // nil for linear interpolation
	buf    []float32 // unconsumed input, buf[0] is absolute input index base
	base   int
	n      int // index of the next output sample
	primed bool
}

func newResampler(fromRate, toRate int) *resampler {
	r := &resampler{step: float64(fromRate) / float64(toRate)}
	if toRate < fromRate {
		r.taps = lowPass(float64(toRate) / float64(fromRate) * 0.5)
	}
	return r
}

// lowPass builds the windowed sinc cut at cutoff cycles per input sample.
func lowPass(cutoff float64) []float32 {
	taps := make([]float32, polyphaseTaps)
	var sum float32
	for i := range taps {
		n := float64(i) - float64(polyphaseTaps-1)/2
		var v float64
		if n == 0 {
			v = 2 * cutoff
		} else {
			window := 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(polyphaseTaps-1))
			v = math.Sin(2*math.Pi*cutoff*n) / (math.Pi * n) * window
		}
		taps[i] = float32(v)
		sum += taps[i]
	}
	for i := range taps {
		taps[i] /= sum
	}
	return taps
}

// window returns the absolute input range [lo, hi) output sample n reads.
func (r *resampler) window(n int) (lo, hi int) {
	center := int(float64(n) * r.step)
	if r.taps == nil {
		return center, center + 2
	}
	lo = center - polyphaseTaps/2
	return lo, lo + polyphaseTaps
}

// process consumes in and returns every output sample whose window is now
// complete. The first chunk after a reset is edge-extended to the left so
// the filter does not fade in from zero.
func (r *resampler) process(in []float32) []float32 {
	if len(in) == 0 {
		return nil
	}
	if !r.primed {
		lo, _ := r.window(0)
		for i := lo; i < 0; i++ {
			r.buf = append(r.buf, in[0])
		}
		r.base = min(lo, 0)
		r.primed = true
	}
	r.buf = append(r.buf, in...)
	end := r.base + len(r.buf)

	var out []float32
	for {
		lo, hi := r.window(r.n)
		if hi > end {
			break
		}
		win := r.buf[lo-r.base : hi-r.base]
		if r.taps == nil {
			frac := float32(float64(r.n)*r.step - float64(lo))
			out = append(out, win[0]+(win[1]-win[0])*frac)
		} else {
			var acc float32
			for j, tap := range r.taps {
				acc += win[j] * tap
			}
			out = append(out, acc)
		}
		r.n++
	}

	if lo, _ := r.window(r.n); lo > r.base {
		drop := min(lo-r.base, len(r.buf))
		r.buf = append(r.buf[:0], r.buf[drop:]...)
		r.base += drop
	}
	return out
}

func (r *resampler) reset() {
	r.buf = r.buf[:0]
	r.base = 0
	r.n = 0
	r.primed = false
}

// Resample converts a whole buffer between rates, filtering when the rate
// goes down. The tail is edge-extended so the output has exactly
// len(in)*toRate/fromRate samples.
func Resample(in []float32, fromRate, toRate int) []float32 {
	if fromRate == toRate || len(in) == 0 {
		return in
	}
	want := len(in) * toRate / fromRate
	r := newResampler(fromRate, toRate)
	out := r.process(in)
	if len(out) < want {
		pad := make([]float32, polyphaseTaps+2)
		for i := range pad {
			pad[i] = in[len(in)-1]
		}
		out = append(out, r.process(pad)...)
	}
	return out[:want]
}
