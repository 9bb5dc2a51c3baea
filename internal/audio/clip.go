package audio

import "math"

// DistributionSampleRate is the fixed sample rate of every clip handed to the
// transport layer. Clips decoded at other rates are resampled on decode.
const DistributionSampleRate = 16000

// Clip is a mono audio buffer with samples normalized to [-1, 1].
type Clip struct {
	SampleRate int
	Samples    []float64
}

// DurationMs returns the clip duration in whole milliseconds.
func (c *Clip) DurationMs() int {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	return len(c.Samples) * 1000 / c.SampleRate
}

// Truncate cuts the clip down to at most maxMs milliseconds. Shorter clips are
// left untouched.
func (c *Clip) Truncate(maxMs int) {
	if c == nil || maxMs <= 0 {
		return
	}
	limit := c.SampleRate * maxMs / 1000
	if limit < len(c.Samples) {
		c.Samples = c.Samples[:limit]
	}
}

// ApplyGain scales the clip by db decibels. Negative values attenuate.
func (c *Clip) ApplyGain(db float64) {
	if c == nil || db == 0 {
		return
	}
	factor := math.Pow(10, db/20)
	for i := range c.Samples {
		c.Samples[i] *= factor
	}
}

// Overlay additively mixes other into the clip. The result keeps the receiver's
// length; the sum is clamped to [-1, 1].
func (c *Clip) Overlay(other *Clip) {
	if c == nil || other == nil {
		return
	}
	n := len(c.Samples)
	if len(other.Samples) < n {
		n = len(other.Samples)
	}
	for i := 0; i < n; i++ {
		c.Samples[i] = clamp(c.Samples[i] + other.Samples[i])
	}
}

// Clone returns a deep copy of the clip.
func (c *Clip) Clone() *Clip {
	if c == nil {
		return nil
	}
	out := &Clip{
		SampleRate: c.SampleRate,
		Samples:    make([]float64, len(c.Samples)),
	}
	copy(out.Samples, c.Samples)
	return out
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
