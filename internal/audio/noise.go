package audio

import "math/rand"

// WhiteNoise generates a broadband noise clip of the given duration at the
// distribution sample rate. Samples are uniform in [-1, 1); the generator is
// auto-seeded, so successive calls never repeat a waveform.
func WhiteNoise(durationMs int) *Clip {
	if durationMs <= 0 {
		durationMs = 1
	}
	n := DistributionSampleRate * durationMs / 1000
	if n < 1 {
		n = 1
	}

	clip := &Clip{
		SampleRate: DistributionSampleRate,
		Samples:    make([]float64, n),
	}
	for i := range clip.Samples {
		clip.Samples[i] = rand.Float64()*2 - 1
	}
	return clip
}
