package audio

import (
	"errors"
	"math"
	"testing"
)

func sineClip(rate, ms int, freq float64) *Clip {
	n := rate * ms / 1000
	c := &Clip{SampleRate: rate, Samples: make([]float64, n)}
	for i := range c.Samples {
		c.Samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return c
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := sineClip(DistributionSampleRate, 100, 440)

	payload, err := EncodeWAV(original)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	decoded, err := DecodeWAV(payload)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if decoded.SampleRate != DistributionSampleRate {
		t.Fatalf("expected rate %d, got %d", DistributionSampleRate, decoded.SampleRate)
	}
	if len(decoded.Samples) != len(original.Samples) {
		t.Fatalf("expected %d samples, got %d", len(original.Samples), len(decoded.Samples))
	}

	// 16-bit quantization bounds the round-trip error.
	for i := range original.Samples {
		if diff := math.Abs(decoded.Samples[i] - original.Samples[i]); diff > 1.0/math.MaxInt16*2 {
			t.Fatalf("sample %d drifted by %v", i, diff)
		}
	}
}

func TestEncodeWAVEmptyClip(t *testing.T) {
	if _, err := EncodeWAV(&Clip{SampleRate: DistributionSampleRate}); !errors.Is(err, ErrEmptyClip) {
		t.Fatalf("expected ErrEmptyClip, got %v", err)
	}
	if _, err := EncodeWAV(nil); !errors.Is(err, ErrEmptyClip) {
		t.Fatalf("expected ErrEmptyClip for nil clip, got %v", err)
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	if _, err := DecodeWAV([]byte("definitely not a wav payload at all......")); !errors.Is(err, ErrInvalidWAV) {
		t.Fatalf("expected ErrInvalidWAV, got %v", err)
	}
}

func TestDecodeWAVStereoDownmix(t *testing.T) {
	mono := sineClip(8000, 50, 200)
	payload, err := EncodeWAV(mono)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	// Rewrite the payload as 2-channel with identical samples per channel.
	stereo := buildStereoFrom(t, mono)
	decoded, err := DecodeWAV(stereo)
	if err != nil {
		t.Fatalf("DecodeWAV stereo failed: %v", err)
	}
	monoDecoded, err := DecodeWAV(payload)
	if err != nil {
		t.Fatalf("DecodeWAV mono failed: %v", err)
	}

	if len(decoded.Samples) != len(monoDecoded.Samples) {
		t.Fatalf("expected %d frames after downmix, got %d", len(monoDecoded.Samples), len(decoded.Samples))
	}
	for i := range decoded.Samples {
		if math.Abs(decoded.Samples[i]-monoDecoded.Samples[i]) > 1e-9 {
			t.Fatalf("downmix mismatch at frame %d", i)
		}
	}
}

func buildStereoFrom(t *testing.T, c *Clip) []byte {
	t.Helper()

	duplicated := &Clip{
		SampleRate: c.SampleRate,
		Samples:    make([]float64, 0, len(c.Samples)*2),
	}
	for _, s := range c.Samples {
		duplicated.Samples = append(duplicated.Samples, s, s)
	}

	payload, err := EncodeWAV(duplicated)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	// Patch the header: 2 channels, same rate, adjusted block align and byte rate.
	payload[22] = 2
	payload[23] = 0
	rate := uint32(c.SampleRate)
	byteRate := rate * 2 * 2
	payload[28] = byte(byteRate)
	payload[29] = byte(byteRate >> 8)
	payload[30] = byte(byteRate >> 16)
	payload[31] = byte(byteRate >> 24)
	payload[32] = 4
	payload[33] = 0

	return payload
}

func TestResampleChangesRateKeepsDuration(t *testing.T) {
	src := sineClip(44100, 200, 440)
	out := Resample(src, DistributionSampleRate)

	if out.SampleRate != DistributionSampleRate {
		t.Fatalf("expected rate %d, got %d", DistributionSampleRate, out.SampleRate)
	}
	if diff := out.DurationMs() - src.DurationMs(); diff < -2 || diff > 2 {
		t.Fatalf("duration drifted from %dms to %dms", src.DurationMs(), out.DurationMs())
	}
}

func TestResampleNoOpAtTargetRate(t *testing.T) {
	src := sineClip(DistributionSampleRate, 50, 440)
	if out := Resample(src, DistributionSampleRate); out != src {
		t.Fatal("expected same clip when already at target rate")
	}
}
