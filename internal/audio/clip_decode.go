package audio

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"audiocore/internal/audio/decode"
)

// ClipFormat selects which convenience decoder NewClipFromBytes uses.
type ClipFormat int

const (
	// FormatOGG decodes an OGG Vorbis stream.
	FormatOGG ClipFormat = iota
	// FormatWAV decodes a PCM WAV stream.
	FormatWAV
)

// NewClipFromBytes decodes a whole clip from an in-memory byte stream. It is
// the convenience path spec'd alongside NewClipFromRaw: external to the
// real-time core, safe to call from any goroutine, and intended for
// loading sfx and short music stings at startup rather than streaming.
func NewClipFromBytes(format ClipFormat, data []byte) (*AudioClip, error) {
	switch format {
	case FormatOGG:
		samples, sampleRate, err := decode.OGG(io.NopCloser(bytes.NewReader(data)))
		if err != nil {
			return nil, errors.Wrap(err, "new clip from ogg bytes")
		}
		return NewClipFromRaw(interleavedToFrames(samples), sampleRate), nil
	case FormatWAV:
		samples, sampleRate, channels, err := decode.WAV(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "new clip from wav bytes")
		}
		if channels == 1 {
			return NewClipFromRaw(monoToFrames(samples), sampleRate), nil
		}
		return NewClipFromRaw(interleavedToFrames(samples), sampleRate), nil
	default:
		return nil, errors.New("unknown clip format")
	}
}

func interleavedToFrames(samples []float32) []Frame {
	frames := make([]Frame, len(samples)/2)
	for i := range frames {
		frames[i] = Frame{L: samples[i*2], R: samples[i*2+1]}
	}
	return frames
}

func monoToFrames(samples []float32) []Frame {
	frames := make([]Frame, len(samples))
	for i, s := range samples {
		frames[i] = Frame{L: s, R: s}
	}
	return frames
}
