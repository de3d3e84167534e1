package decode

import (
	"bytes"
	"io"
	"math"

	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

// WAV fully decodes a PCM WAV stream into interleaved samples and its
// native sample rate and channel count. Mono files come back as a single
// channel per frame; the caller (audio.NewClipFromBytes) duplicates mono
// into both output channels.
func WAV(r io.Reader) (samples []float32, sampleRate uint32, channels int, err error) {
	// wav.NewDecoder needs to seek; a plain reader is buffered in memory.
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, 0, 0, errors.Wrap(err, "read wav")
		}
		rs = bytes.NewReader(data)
	}
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, 0, 0, errors.New("not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, errors.Wrap(err, "decode wav")
	}

	maxVal := float64(int64(1) << uint(buf.SourceBitDepth-1))
	samples = make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = clamp(float32(float64(v) / maxVal))
	}
	return samples, uint32(buf.Format.SampleRate), buf.Format.NumChannels, nil
}

func clamp(v float32) float32 {
	return float32(math.Max(-1, math.Min(1, float64(v))))
}
