package audio

import (
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/mjibson/go-dsp/fft"
)

const (
	stretcherWindowLen     = 8192
	stretcherHalfWindowLen = stretcherWindowLen / 2
)

// hanning returns the classic raised-cosine window of length n.
func hanning(n int) []float32 {
	w := make([]float32, n)
	for i := range w {
		w[i] = 0.5 - float32(math.Cos(2*math.Pi*float64(i)/float64(n-1)))*0.5
	}
	return w
}

// hanningCrossfadeCompensation is paulstretch's correction envelope applied
// to the overlap-add region so successive windows cross-fade without a
// loudness dip.
func hanningCrossfadeCompensation(n int) []float32 {
	hinvSqrt2 := (1.0 + math.Sqrt(math.Sqrt(0.5))) * 0.5
	w := make([]float32, n)
	for i := range w {
		w[i] = float32(0.5 - (1.0-hinvSqrt2)*math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// Stretcher is an offline phase-vocoder time-stretcher: it turns a mono
// input slice into a sequence of stretched windows, each of length 8192.
// Call NextWindow until Done reports true. It is not safe for concurrent
// use and is meant to be built, drained, and dropped on a worker goroutine —
// never on the audio callback thread.
type Stretcher struct {
	sampleRate uint32

	inputBuf  []float32
	outputBuf []float32

	correctedAmpFactor   float32
	ampCorrectionEnvelope []float32
	window                []float32

	sampleStepLen int
	done          bool

	rng *rand.Rand
}

// NewStretcher builds a stretcher over input (mono samples) at sampleRate,
// stretching time by factor (>1 slower, <1 faster). The phase-randomization
// source is seeded for reproducible output; use NewStretcherWithSeed to pin
// a specific seed for tests.
func NewStretcher(sampleRate uint32, input []float32, factor float32) *Stretcher {
	return NewStretcherWithSeed(sampleRate, input, factor, int64(sampleRate)+1)
}

// NewStretcherWithSeed is NewStretcher with an explicit RNG seed, letting
// callers reproduce a specific output sequence deterministically (testable
// property: same seed implies the same window sequence).
func NewStretcherWithSeed(sampleRate uint32, input []float32, factor float32, seed int64) *Stretcher {
	window := hanning(stretcherWindowLen)

	inputBuf := make([]float32, len(input))
	copy(inputBuf, input)

	s := &Stretcher{
		sampleRate:            sampleRate,
		inputBuf:              inputBuf,
		outputBuf:             make([]float32, stretcherHalfWindowLen),
		correctedAmpFactor:    float32(math.Max(4.0, float64(factor)/4.0)),
		ampCorrectionEnvelope: hanningCrossfadeCompensation(stretcherHalfWindowLen),
		window:                window,
		sampleStepLen:         int(float32(stretcherWindowLen) / (factor * 2.0)),
		rng:                   rand.New(rand.NewSource(seed)),
	}
	if s.sampleStepLen < 1 {
		s.sampleStepLen = 1
	}
	return s
}

// Done reports whether the input has been fully consumed; the next call to
// NextWindow (if any) will be the last.
func (s *Stretcher) Done() bool {
	return s.done
}

func (s *Stretcher) ensureInputAvailable(n int) {
	if len(s.inputBuf) < n {
		padded := make([]float32, n)
		copy(padded, s.inputBuf)
		s.inputBuf = padded
		s.done = true
	}
}

// resynth runs one window through forward FFT, randomizes every bin's
// phase, then inverse-transforms and re-applies the window.
//
// go-dsp/fft.IFFT already divides by the transform length as part of its
// definition (unlike rustfft's raw, unnormalized inverse), so unlike the
// reference implementation this does not re-divide by the window length —
// doing so would apply the 1/N scaling twice.
func (s *Stretcher) resynth(samples []float32) []float32 {
	buf := make([]complex128, stretcherWindowLen)
	for i := range buf {
		var v float32
		if i < len(samples) {
			v = samples[i] * s.window[i]
		}
		buf[i] = complex(float64(v), 0)
	}
	buf = fft.FFT(buf)
	for i, c := range buf {
		phase := s.rng.Float64() * 2 * math.Pi
		buf[i] = cmplx.Rect(cmplx.Abs(c), phase)
	}
	buf = fft.IFFT(buf)

	out := make([]float32, stretcherWindowLen)
	for i, c := range buf {
		out[i] = float32(real(c)) * s.window[i]
	}
	return out
}

// NextWindow produces the next stretched window of length 8192. Call
// repeatedly until Done returns true.
func (s *Stretcher) NextWindow() []float32 {
	pos := 0
	for len(s.outputBuf) < stretcherWindowLen+stretcherHalfWindowLen {
		s.ensureInputAvailable(stretcherWindowLen)
		y := s.resynth(s.inputBuf[:stretcherWindowLen])

		for i := 0; i < stretcherHalfWindowLen; i++ {
			s.outputBuf[pos+i] = (y[i] + s.outputBuf[pos+i]) * s.ampCorrectionEnvelope[i] * s.correctedAmpFactor
		}
		s.outputBuf = append(s.outputBuf, y[stretcherHalfWindowLen:]...)
		pos += stretcherHalfWindowLen

		drop := s.sampleStepLen
		if drop > len(s.inputBuf) {
			drop = len(s.inputBuf)
		}
		s.inputBuf = s.inputBuf[drop:]
	}

	result := make([]float32, stretcherWindowLen)
	copy(result, s.outputBuf[:stretcherWindowLen])
	s.outputBuf = s.outputBuf[stretcherHalfWindowLen:]
	return result
}
