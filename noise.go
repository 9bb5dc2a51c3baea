package goCaptcha

import (
	"fmt"

	"github.com/hearsum/goCaptcha/internal"
	"github.com/hearsum/goCaptcha/internal/audio"
)

// noiseInjector overlays attenuated white noise on every outgoing challenge
// clip. The attenuation is drawn fresh per challenge from the configured
// inclusive range, so no two challenges carry an identical noise layer.
type noiseInjector struct {
	cfg NoiseConfig
}

func newNoiseInjector(cfg NoiseConfig) *noiseInjector {
	return &noiseInjector{cfg: cfg}
}

// Inject mutates the clip in place by adding a noise layer of the same
// duration, attenuated by a random amount within the configured range.
func (n *noiseInjector) Inject(clip *audio.Clip) error {
	attenuation, err := internal.RandomRange(n.cfg.MinAttenuationDB, n.cfg.MaxAttenuationDB)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	noise := audio.WhiteNoise(clip.DurationMs())
	noise.ApplyGain(float64(-attenuation))

	clip.Overlay(noise)
	return nil
}
