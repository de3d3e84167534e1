// Package decode provides convenience byte-stream-to-PCM decoders external
// to the real-time mixing core: neither is on the audio callback path, both
// return plain interleaved float32 samples that audio.NewClipFromBytes
// converts to frames for audio.NewClipFromRaw.
package decode

import (
	"io"

	"github.com/gopxl/beep/vorbis"
	"github.com/pkg/errors"
)

// OGG fully decodes an OGG Vorbis stream into interleaved stereo samples and
// its native sample rate. It reads the whole stream into memory; it is meant
// for short clips and sfx, not for streaming whole music tracks.
func OGG(r io.ReadCloser) (samples []float32, sampleRate uint32, err error) {
	streamer, format, err := vorbis.Decode(r)
	if err != nil {
		return nil, 0, errors.Wrap(err, "decode ogg vorbis")
	}
	defer streamer.Close()

	buf := make([][2]float64, 4096)
	for {
		n, ok := streamer.Stream(buf)
		for i := 0; i < n; i++ {
			samples = append(samples, float32(buf[i][0]), float32(buf[i][1]))
		}
		if !ok {
			break
		}
	}
	return samples, uint32(format.SampleRate), nil
}
