package audio

// AudioClip is an immutable, shared PCM buffer and the sample rate it was
// authored at. It is safe to share a single clip across an unbounded number
// of renderers — it is never mutated after construction.
type AudioClip struct {
	frames     []Frame
	sampleRate uint32
}

// NewClipFromRaw wraps a frame buffer and its sample rate. frames must already
// be stereo (mono sources are expected to have been duplicated to both
// channels by the caller/decoder).
func NewClipFromRaw(frames []Frame, sampleRate uint32) *AudioClip {
	return &AudioClip{frames: frames, sampleRate: sampleRate}
}

// SampleRate returns the rate the clip was authored at, in Hz.
func (c *AudioClip) SampleRate() uint32 {
	return c.sampleRate
}

// FrameCount returns the number of frames in the clip.
func (c *AudioClip) FrameCount() int {
	return len(c.frames)
}

// Length returns the clip's duration in seconds.
func (c *AudioClip) Length() float32 {
	return float32(c.FrameCount()) / float32(c.sampleRate)
}

// Frames exposes the underlying frame buffer for read-only use (e.g. by the
// stretcher or a waveform renderer). Callers must not mutate the result.
func (c *AudioClip) Frames() []Frame {
	return c.frames
}

// Sample maps a time in seconds to a frame using linear interpolation.
// It returns false once position has advanced past the last frame. Negative
// positions are not clamped — callers in this package never produce them.
func (c *AudioClip) Sample(position float32) (Frame, bool) {
	x := position * float32(c.sampleRate)
	index := int(x)
	if index < 0 || index >= len(c.frames) {
		return Frame{}, false
	}
	frac := x - float32(index)
	frame := c.frames[index]
	next := frame
	if index+1 < len(c.frames) {
		next = c.frames[index+1]
	}
	return frame.Lerp(next, frac), true
}
