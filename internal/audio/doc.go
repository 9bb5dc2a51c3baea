// Package audio implements the minimal PCM toolkit the challenge pipeline
// needs: a mono clip buffer, 16-bit WAV codec for the fixed distribution
// format, gain/overlay/truncate operations, and a broadband noise generator.
package audio
