package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

// MinSamples is the shortest signal PowerSpectrum accepts.
const MinSamples = 4

type Spectrum struct {
	Freq      []float64 // Hz
	Amplitude []float64
}

// PowerSpectrum returns the amplitude spectrum of samples taken every dt
// seconds. The mean is removed first so the zero bin holds no offset.
func PowerSpectrum(samples []float64, dt float64) (Spectrum, error) {
	if dt <= 0 {
		return Spectrum{}, fmt.Errorf("%w: sample interval must be positive, got %g", dynamo.ErrConfiguration, dt)
	}
	n := len(samples)
	if n < MinSamples {
		return Spectrum{}, fmt.Errorf("%w: %d samples, need at least %d", dynamo.ErrConfiguration, n, MinSamples)
	}

	mean := 0.0
	for _, s := range samples {
		mean += s
	}
	mean /= float64(n)
	centred := make([]float64, n)
	for i, s := range samples {
		centred[i] = s - mean
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centred)
	sp := Spectrum{
		Freq:      make([]float64, len(coeff)),
		Amplitude: make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		sp.Freq[i] = fft.Freq(i) / dt
		sp.Amplitude[i] = 2 * cmplx.Abs(c) / float64(n)
	}
	return sp, nil
}

// Dominant returns the strongest non-zero frequency and its amplitude.
func (s Spectrum) Dominant() (freq, amplitude float64) {
	for i := 1; i < len(s.Amplitude); i++ {
		if s.Amplitude[i] > amplitude {
			freq, amplitude = s.Freq[i], s.Amplitude[i]
		}
	}
	return freq, amplitude
}

// Peak is the strongest oscillation of one coordinate.
type Peak struct {
	Freq      float64
	Period    float64 // +Inf when the coordinate does not oscillate
	Amplitude float64
}

// DominantFrequencies analyses the first nq entries of each state, sampled
// every dt seconds.
func DominantFrequencies(states []dynamo.State, nq int, dt float64) ([]Peak, error) {
	peaks := make([]Peak, nq)
	samples := make([]float64, len(states))
	for c := 0; c < nq; c++ {
		for k, x := range states {
			if len(x) < nq {
				return nil, dynamo.Dimension(fmt.Sprintf("state %d", k), len(x), 2*nq)
			}
			samples[k] = x[c]
		}
		sp, err := PowerSpectrum(samples, dt)
		if err != nil {
			return nil, err
		}
		f, a := sp.Dominant()
		peaks[c] = Peak{Freq: f, Period: math.Inf(1), Amplitude: a}
		if f > 0 {
			peaks[c].Period = 1 / f
		}
	}
	return peaks, nil
}
