package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

const (
	wavHeaderSize   = 44
	wavFormatPCM    = 1
	wavBitsPerSamp  = 16
	wavNumChannels  = 1
	maxDecodedBytes = 32 << 20
)

var (
	ErrInvalidWAV      = errors.New("invalid wav payload")
	ErrUnsupportedWAV  = errors.New("unsupported wav encoding")
	ErrEmptyClip       = errors.New("empty clip")
	errOversizedWAV    = errors.New("wav payload exceeds decode limit")
	errMissingDataWAV  = errors.New("wav payload missing data chunk")
	errShortSampleData = errors.New("wav data chunk truncated")
)

// EncodeWAV serializes the clip as 16-bit mono PCM WAV, the fixed distribution
// format of every issued challenge.
func EncodeWAV(c *Clip) ([]byte, error) {
	if c == nil || len(c.Samples) == 0 {
		return nil, ErrEmptyClip
	}
	rate := c.SampleRate
	if rate <= 0 {
		rate = DistributionSampleRate
	}

	dataLen := len(c.Samples) * 2
	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataLen))

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(wavFormatPCM))
	_ = binary.Write(buf, binary.LittleEndian, uint16(wavNumChannels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(rate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(rate*wavNumChannels*wavBitsPerSamp/8))
	_ = binary.Write(buf, binary.LittleEndian, uint16(wavNumChannels*wavBitsPerSamp/8))
	_ = binary.Write(buf, binary.LittleEndian, uint16(wavBitsPerSamp))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	for _, s := range c.Samples {
		v := int16(math.Round(clamp(s) * math.MaxInt16))
		_ = binary.Write(buf, binary.LittleEndian, v)
	}

	return buf.Bytes(), nil
}

// DecodeWAV parses a 16-bit PCM WAV payload into a Clip. Multi-channel input is
// downmixed to mono by channel averaging. Sample rates other than the
// distribution rate are kept as-is; callers resample via Resample when needed.
func DecodeWAV(payload []byte) (*Clip, error) {
	if len(payload) > maxDecodedBytes {
		return nil, errOversizedWAV
	}
	if len(payload) < wavHeaderSize ||
		string(payload[0:4]) != "RIFF" || string(payload[8:12]) != "WAVE" {
		return nil, ErrInvalidWAV
	}

	var (
		format      uint16
		channels    uint16
		sampleRate  uint32
		bitsPerSamp uint16
		data        []byte
		haveFmt     bool
	)

	// Chunk walk: fmt and data can appear in any order, with vendor chunks
	// between them.
	pos := 12
	for pos+8 <= len(payload) {
		id := string(payload[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(payload[pos+4 : pos+8]))
		body := pos + 8
		if size < 0 || body+size > len(payload) {
			return nil, ErrInvalidWAV
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, ErrInvalidWAV
			}
			format = binary.LittleEndian.Uint16(payload[body : body+2])
			channels = binary.LittleEndian.Uint16(payload[body+2 : body+4])
			sampleRate = binary.LittleEndian.Uint32(payload[body+4 : body+8])
			bitsPerSamp = binary.LittleEndian.Uint16(payload[body+14 : body+16])
			haveFmt = true
		case "data":
			data = payload[body : body+size]
		}

		pos = body + size
		if size%2 == 1 {
			pos++ // chunk bodies are word-aligned
		}
	}

	if !haveFmt {
		return nil, ErrInvalidWAV
	}
	if data == nil {
		return nil, errMissingDataWAV
	}
	if format != wavFormatPCM || bitsPerSamp != wavBitsPerSamp {
		return nil, ErrUnsupportedWAV
	}
	if channels == 0 || sampleRate == 0 {
		return nil, ErrInvalidWAV
	}

	frameSize := int(channels) * 2
	if len(data)%frameSize != 0 {
		return nil, errShortSampleData
	}

	frames := len(data) / frameSize
	clip := &Clip{
		SampleRate: int(sampleRate),
		Samples:    make([]float64, frames),
	}
	for f := 0; f < frames; f++ {
		var sum float64
		for ch := 0; ch < int(channels); ch++ {
			off := f*frameSize + ch*2
			raw := int16(binary.LittleEndian.Uint16(data[off : off+2]))
			sum += float64(raw) / math.MaxInt16
		}
		clip.Samples[f] = clamp(sum / float64(channels))
	}

	return clip, nil
}

// Resample converts the clip to the target rate with linear interpolation.
// Good enough for speech intelligibility; the adversarial noise masks any
// interpolation artifacts anyway.
func Resample(c *Clip, targetRate int) *Clip {
	if c == nil || targetRate <= 0 || c.SampleRate == targetRate || len(c.Samples) == 0 {
		return c
	}

	ratio := float64(c.SampleRate) / float64(targetRate)
	outLen := int(float64(len(c.Samples)) / ratio)
	if outLen < 1 {
		outLen = 1
	}

	out := &Clip{
		SampleRate: targetRate,
		Samples:    make([]float64, outLen),
	}
	for i := 0; i < outLen; i++ {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		if idx >= len(c.Samples)-1 {
			out.Samples[i] = c.Samples[len(c.Samples)-1]
			continue
		}
		frac := srcPos - float64(idx)
		out.Samples[i] = c.Samples[idx]*(1-frac) + c.Samples[idx+1]*frac
	}

	return out
}
